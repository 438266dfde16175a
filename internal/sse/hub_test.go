package sse

import (
	"testing"

	"editorial_platform/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubBroadcastReachesAllSubscribers(t *testing.T) {
	hub := NewHub(4, nil)

	a := hub.Register()
	b := hub.Register()
	require.Equal(t, 2, hub.Len())

	ev := models.OutcomeEvent{PostID: 1, Outcome: models.OutcomeApproved, Reviewer: "alice"}
	hub.Broadcast(ev)

	assert.Equal(t, ev, <-a.Events())
	assert.Equal(t, ev, <-b.Events())
}

func TestHubEvictsSlowSubscriberOnly(t *testing.T) {
	hub := NewHub(1, nil)

	slow := hub.Register()
	fast := hub.Register()

	// забиваем буфер slow, не читая из него
	hub.Broadcast(models.OutcomeEvent{PostID: 1, Outcome: models.OutcomeApproved, Reviewer: "r"})
	<-fast.Events()

	// вторая отправка в slow не влезает -> eviction
	hub.Broadcast(models.OutcomeEvent{PostID: 2, Outcome: models.OutcomeRejected, Reviewer: "r"})

	assert.Equal(t, 1, hub.Len())

	select {
	case <-slow.Done():
	default:
		t.Fatal("evicted subscriber must be signalled done")
	}

	// fast продолжает получать события
	got := <-fast.Events()
	assert.Equal(t, int64(2), got.PostID)
}

func TestHubRemoveIsIdempotent(t *testing.T) {
	hub := NewHub(1, nil)

	sub := hub.Register()
	hub.Remove(sub.ID)
	hub.Remove(sub.ID)

	assert.Equal(t, 0, hub.Len())

	select {
	case <-sub.Done():
	default:
		t.Fatal("removed subscriber must be signalled done")
	}

	// broadcast после удаления не паникует и никуда не доставляется
	hub.Broadcast(models.OutcomeEvent{PostID: 3, Outcome: models.OutcomeApproved, Reviewer: "r"})

	select {
	case ev := <-sub.Events():
		t.Fatalf("unexpected event after remove: %+v", ev)
	default:
	}
}

func TestHubCloseAll(t *testing.T) {
	hub := NewHub(1, nil)

	a := hub.Register()
	b := hub.Register()

	hub.CloseAll()

	assert.Equal(t, 0, hub.Len())
	<-a.Done()
	<-b.Done()
}
