package models

import "time"

type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "PENDING"
	ReviewStatusApproved ReviewStatus = "APPROVED"
	ReviewStatusRejected ReviewStatus = "REJECTED"
)

// Review держит только слабую ссылку на пост (post_id), сам пост никогда
// не загружается и не меняется через review-store.
type Review struct {
	ID          int64        `json:"id"`
	PostID      int64        `json:"post_id"`
	Author      string       `json:"author"`
	Status      ReviewStatus `json:"status"`
	Reviewer    *string      `json:"reviewer,omitempty"`
	Remarks     *string      `json:"remarks,omitempty"`
	SubmittedAt time.Time    `json:"submitted_at"`
	ReviewedAt  *time.Time   `json:"reviewed_at,omitempty"`
}

// ReviewRequest — тело POST /reviews/submit.
type ReviewRequest struct {
	PostID int64  `json:"post_id"`
	Author string `json:"author"`
}

// RejectRequest — тело PUT /reviews/{id}/reject.
type RejectRequest struct {
	Reviewer string `json:"reviewer"`
	Remarks  string `json:"remarks"`
}

// ReviewWithPostDetails — review, обогащённый данными поста из post-service.
type ReviewWithPostDetails struct {
	ReviewID    int64        `json:"review_id"`
	PostID      int64        `json:"post_id"`
	Status      ReviewStatus `json:"status"`
	Author      string       `json:"author"`
	Reviewer    *string      `json:"reviewer,omitempty"`
	Remarks     *string      `json:"remarks,omitempty"`
	SubmittedAt *time.Time   `json:"submitted_at,omitempty"`
	ReviewedAt  *time.Time   `json:"reviewed_at,omitempty"`
	PostTitle   string       `json:"post_title"`
	PostContent string       `json:"post_content"`
}
