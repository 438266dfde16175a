package kafka

import (
	"encoding/json"
	"fmt"

	"editorial_platform/internal/models"
)

// В Kafka уходит OutcomeEvent как есть: post_id, outcome, reviewer, remarks.
// Ключ сообщения — post_id, чтобы события одного поста попадали в одну партицию.

func EncodeOutcomeEvent(ev *models.OutcomeEvent) ([]byte, error) {
	if ev == nil {
		return nil, fmt.Errorf("event is nil")
	}
	if ev.PostID <= 0 {
		return nil, fmt.Errorf("post_id is invalid")
	}
	if ev.Outcome != models.OutcomeApproved && ev.Outcome != models.OutcomeRejected {
		return nil, fmt.Errorf("unknown outcome %q", ev.Outcome)
	}

	b, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal outcome event: %w", err)
	}
	return b, nil
}

func DecodeOutcomeEvent(b []byte) (*models.OutcomeEvent, error) {
	var ev models.OutcomeEvent
	if err := json.Unmarshal(b, &ev); err != nil {
		return nil, fmt.Errorf("unmarshal outcome event: %w", err)
	}
	if ev.PostID <= 0 {
		return nil, fmt.Errorf("post_id is invalid")
	}
	if ev.Outcome != models.OutcomeApproved && ev.Outcome != models.OutcomeRejected {
		return nil, fmt.Errorf("unknown outcome %q", ev.Outcome)
	}
	return &ev, nil
}
