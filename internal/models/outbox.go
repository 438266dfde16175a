package models

import "time"

type OutboxMessage struct {
	ID         int64
	MessageID  string
	Topic      string
	Payload    []byte
	Status     string
	RetryCount int
	CreatedAt  time.Time
	SentAt     *time.Time
	LastError  *string
}
