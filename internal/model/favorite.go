package model

import "time"

// Favorite records that Username marked PostID as a favorite.
// The datastore keeps at most one row per (Username, PostID).
type Favorite struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	PostID      string    `json:"postId"`
	FavoritedAt time.Time `json:"favoritedAt"`
}

// ToggleAction reports what a favorite toggle did.
type ToggleAction int

const (
	FavoriteAdded ToggleAction = iota + 1
	FavoriteRemoved
)

func (a ToggleAction) String() string {
	switch a {
	case FavoriteAdded:
		return "added"
	case FavoriteRemoved:
		return "removed"
	default:
		return "unknown"
	}
}
