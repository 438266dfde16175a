package models

const (
	OutcomeApproved = "approved"
	OutcomeRejected = "rejected"
)

// OutcomeEvent — событие решения по ревью. Живёт только в канале доставки,
// в БД не хранится (кроме строки в outbox на время отправки).
type OutcomeEvent struct {
	PostID   int64   `json:"post_id"`
	Outcome  string  `json:"outcome"`
	Reviewer string  `json:"reviewer"`
	Remarks  *string `json:"remarks,omitempty"`
}
