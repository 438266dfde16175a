package models

import "time"

type PostStatus string

const (
	PostStatusDraft       PostStatus = "DRAFT"
	PostStatusUnderReview PostStatus = "UNDER_REVIEW"
	PostStatusPublished   PostStatus = "PUBLISHED"
)

func IsValidPostStatus(s string) bool {
	switch PostStatus(s) {
	case PostStatusDraft, PostStatusUnderReview, PostStatusPublished:
		return true
	}
	return false
}

type Post struct {
	ID               int64      `json:"id"`
	Title            string     `json:"title"`
	Content          string     `json:"content"`
	Author           string     `json:"author"`
	Status           PostStatus `json:"status"`
	Remarks          *string    `json:"remarks,omitempty"`
	CreatedDate      time.Time  `json:"created_date"`
	LastModifiedDate time.Time  `json:"last_modified_date"`
}

// PostDraftRequest — тело POST /api/posts. ID = 0 означает новый черновик.
type PostDraftRequest struct {
	ID      int64  `json:"id,omitempty"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Author  string `json:"author"`
}

// PostPatchRequest — частичное обновление, пустые поля не трогаем.
type PostPatchRequest struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Remarks *string `json:"remarks"`
}

// PostSummary — то, что отдаём другим сервисам для обогащения.
type PostSummary struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Author  string `json:"author"`
}
