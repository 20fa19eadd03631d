package controllers

import "time"

type PaginationMeta struct {
	CurrentPage int   `json:"currentPage"`
	PageSize    int   `json:"pageSize"`
	TotalItems  int64 `json:"totalItems"`
	TotalPages  int   `json:"totalPages"`
}

// PostView is a post row joined with its author and the derived
// counts. Counts are always recomputed in the query, never stored.
type PostView struct {
	ID              uint      `json:"id"`
	Content         string    `json:"content"`
	MediaURL        *string   `json:"media_url"`
	ParentID        *uint     `json:"parent_id"`
	UserID          uint      `json:"user_id"`
	Username        string    `json:"username"`
	DisplayName     string    `json:"display_name"`
	ProfileImageURL string    `json:"profile_image_url"`
	CreatedAt       time.Time `json:"created_at"`
	LikesCount      int64     `json:"likes_count"`
	RepliesCount    int64     `json:"replies_count"`
	IsLiked         bool      `json:"is_liked"`
}
