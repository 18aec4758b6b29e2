package reddit

import (
	"strings"
	"time"
)

// Account is the subset of /api/v1/me used here.
type Account struct {
	Name       string  `json:"name"`
	CreatedUTC float64 `json:"created_utc"`
}

// Created is the account creation time.
func (a *Account) Created() time.Time {
	if a.CreatedUTC <= 0 {
		return time.Time{}
	}
	sec := int64(a.CreatedUTC)
	return time.Unix(sec, 0).UTC()
}

// Link is a submission in a subreddit listing.
type Link struct {
	ID        string `json:"id"`
	Name      string `json:"name"` // fullname, "t3_" + ID
	Title     string `json:"title"`
	Permalink string `json:"permalink"`
	URL       string `json:"url"`
	Stickied  bool   `json:"stickied"`
}

// Comment is a posted comment.
type Comment struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	LinkID    string `json:"link_id"`
	Permalink string `json:"permalink"`
}

// webBase prefixes the relative permalinks reddit returns.
const webBase = "https://www.reddit.com"

// AbsoluteURL turns a permalink into a full URL. Absolute URLs pass through.
func AbsoluteURL(permalink string) string {
	if permalink == "" || strings.HasPrefix(permalink, "http://") || strings.HasPrefix(permalink, "https://") {
		return permalink
	}
	if !strings.HasPrefix(permalink, "/") {
		permalink = "/" + permalink
	}
	return webBase + permalink
}

type thing[T any] struct {
	Kind string `json:"kind"`
	Data T      `json:"data"`
}

type listing struct {
	Kind string `json:"kind"`
	Data struct {
		Children []thing[Link] `json:"children"`
		After    string        `json:"after"`
	} `json:"data"`
}

type submitResponse struct {
	JSON struct {
		Errors jsonErrors `json:"errors"`
		Data   struct {
			ID   string `json:"id"`
			Name string `json:"name"`
			URL  string `json:"url"`
		} `json:"data"`
	} `json:"json"`
}

type commentResponse struct {
	JSON struct {
		Errors jsonErrors `json:"errors"`
		Data   struct {
			Things []thing[Comment] `json:"things"`
		} `json:"data"`
	} `json:"json"`
}

// errorBody is reddit's generic error payload outside api_type=json.
type errorBody struct {
	Error   any    `json:"error"`
	Message string `json:"message"`
	Reason  string `json:"reason"`
}
