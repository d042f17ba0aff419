package models

// Stats is the admin dashboard summary
type Stats struct {
	TotalUsers     int64 `json:"total_users"`
	TotalPosts     int64 `json:"total_posts"`
	TotalComments  int64 `json:"total_comments"`
	PublishedPosts int64 `json:"published_posts"`
}
