package models

import "time"

type Comment struct {
	ID          int64     `json:"id"`
	PostID      int64     `json:"post_id"`
	Author      string    `json:"author"`
	Content     string    `json:"content"`
	CreatedDate time.Time `json:"created_date"`
}

type CommentRequest struct {
	PostID  int64  `json:"post_id"`
	Author  string `json:"author"`
	Content string `json:"content"`
}
