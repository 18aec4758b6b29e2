package model

import "time"

// DateLayout is the storage format of Post.PostedDate.
const DateLayout = "2006-01-02"

// Post is one Daily3 entry: three short items written on a given day.
//
// PostedDate duplicates the calendar part of PostedAt. It is indexed together
// with Username so "has this user already posted today?" is a single lookup.
//
// SourceLink is the permalink of the reddit submission or comment the post
// was published as. It is empty when publishing failed or was skipped.
type Post struct {
	ID         string    `json:"id"`
	PostedAt   time.Time `json:"postedAt"`
	PostedDate string    `json:"postedDate"`
	Username   string    `json:"username"`
	Item1      string    `json:"item1"`
	Item2      string    `json:"item2"`
	Item3      string    `json:"item3"`
	SourceLink string    `json:"sourceLink,omitempty"`
}

// Items returns the three items in order.
func (p Post) Items() [3]string {
	return [3]string{p.Item1, p.Item2, p.Item3}
}

// PostView is a Post annotated for one viewer. It is never persisted.
type PostView struct {
	Post
	Faved bool `json:"faved"`
}

// DateOf returns the PostedDate value for t (UTC calendar date).
func DateOf(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
