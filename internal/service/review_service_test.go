package service

import (
	"context"
	"testing"
	"time"

	"editorial_platform/internal/models"
	"editorial_platform/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(_ context.Context) error { t.committed = true; return nil }
func (t *fakeTx) Rollback(_ context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type fakeDB struct {
	tx *fakeTx
}

func (d *fakeDB) Begin(_ context.Context) (pgx.Tx, error) {
	d.tx = &fakeTx{}
	return d.tx, nil
}

type fakeReviewStore struct {
	reviews map[int64]*models.Review
	nextID  int64
	calls   *[]string
}

func newFakeReviewStore(calls *[]string) *fakeReviewStore {
	return &fakeReviewStore{
		reviews: make(map[int64]*models.Review),
		nextID:  1,
		calls:   calls,
	}
}

func (s *fakeReviewStore) record(op string) {
	if s.calls != nil {
		*s.calls = append(*s.calls, op)
	}
}

func (s *fakeReviewStore) Create(_ context.Context, review *models.Review) error {
	s.record("create")
	review.ID = s.nextID
	s.nextID++
	review.Status = models.ReviewStatusPending
	review.SubmittedAt = time.Now()
	cp := *review
	s.reviews[review.ID] = &cp
	return nil
}

func (s *fakeReviewStore) GetByID(_ context.Context, id int64) (*models.Review, error) {
	r, ok := s.reviews[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *fakeReviewStore) ExistsByPostIDAndStatus(_ context.Context, postID int64, status models.ReviewStatus) (bool, error) {
	for _, r := range s.reviews {
		if r.PostID == postID && r.Status == status {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeReviewStore) DeleteByPostIDAndStatus(_ context.Context, postID int64, status models.ReviewStatus) (int64, error) {
	s.record("delete_pending")
	var n int64
	for id, r := range s.reviews {
		if r.PostID == postID && r.Status == status {
			delete(s.reviews, id)
			n++
		}
	}
	return n, nil
}

func (s *fakeReviewStore) GetAllExceptStatus(_ context.Context, status models.ReviewStatus) ([]*models.Review, error) {
	var res []*models.Review
	for _, r := range s.reviews {
		if r.Status != status {
			cp := *r
			res = append(res, &cp)
		}
	}
	return res, nil
}

func (s *fakeReviewStore) UpdateDecisionTx(_ context.Context, _ pgx.Tx, review *models.Review) error {
	s.record("update_decision")
	stored, ok := s.reviews[review.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Status = review.Status
	stored.Reviewer = review.Reviewer
	stored.Remarks = review.Remarks
	now := time.Now()
	stored.ReviewedAt = &now
	return nil
}

func (s *fakeReviewStore) DeleteTx(_ context.Context, _ pgx.Tx, id int64) error {
	s.record("delete_tx")
	if _, ok := s.reviews[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.reviews, id)
	return nil
}

type fakeDispatcher struct {
	events []*models.OutcomeEvent
	calls  *[]string
}

func (d *fakeDispatcher) Dispatch(_ context.Context, tx pgx.Tx, ev *models.OutcomeEvent) error {
	if tx == nil {
		panic("dispatch must run inside a transaction")
	}
	if d.calls != nil {
		*d.calls = append(*d.calls, "dispatch")
	}
	d.events = append(d.events, ev)
	return nil
}

type fakePostGateway struct {
	published []int64
	summaries map[int64]*models.PostSummary
	calls     *[]string
}

func (g *fakePostGateway) Publish(_ context.Context, postID int64) error {
	if g.calls != nil {
		*g.calls = append(*g.calls, "publish")
	}
	g.published = append(g.published, postID)
	return nil
}

func (g *fakePostGateway) GetPostSummary(_ context.Context, postID int64) (*models.PostSummary, error) {
	s, ok := g.summaries[postID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s, nil
}

// --- tests ---

func TestSubmitForReviewCreatesPending(t *testing.T) {
	store := newFakeReviewStore(nil)
	svc := NewReviewService(&fakeDB{}, store, &fakeDispatcher{}, &fakePostGateway{}, nil)

	id, err := svc.SubmitForReview(context.Background(), 10, "bob")
	require.NoError(t, err)
	require.NotZero(t, id)

	r := store.reviews[id]
	require.NotNil(t, r)
	assert.Equal(t, int64(10), r.PostID)
	assert.Equal(t, "bob", r.Author)
	assert.Equal(t, models.ReviewStatusPending, r.Status)

	has, err := svc.HasActiveReview(context.Background(), 10)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestSubmitForReviewValidatesInput(t *testing.T) {
	svc := NewReviewService(&fakeDB{}, newFakeReviewStore(nil), &fakeDispatcher{}, &fakePostGateway{}, nil)

	_, err := svc.SubmitForReview(context.Background(), 0, "bob")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.SubmitForReview(context.Background(), 10, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestApproveReviewPublishesThenDeletesThenDispatches(t *testing.T) {
	var calls []string
	store := newFakeReviewStore(&calls)
	db := &fakeDB{}
	disp := &fakeDispatcher{calls: &calls}
	gateway := &fakePostGateway{calls: &calls}
	svc := NewReviewService(db, store, disp, gateway, nil)

	id, err := svc.SubmitForReview(context.Background(), 10, "bob")
	require.NoError(t, err)
	calls = calls[:0]

	require.NoError(t, svc.ApproveReview(context.Background(), id, "alice"))

	// порядок: publish -> удаление review -> событие, всё до коммита
	assert.Equal(t, []string{"publish", "delete_tx", "dispatch"}, calls)
	assert.Equal(t, []int64{10}, gateway.published)

	require.NotNil(t, db.tx)
	assert.True(t, db.tx.committed)
	assert.False(t, db.tx.rolledBack)

	// approved review удаляется насовсем
	_, err = store.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.Len(t, disp.events, 1)
	assert.Equal(t, models.OutcomeApproved, disp.events[0].Outcome)
	assert.Equal(t, int64(10), disp.events[0].PostID)
	assert.Equal(t, "alice", disp.events[0].Reviewer)
}

func TestApproveReviewUnknownID(t *testing.T) {
	svc := NewReviewService(&fakeDB{}, newFakeReviewStore(nil), &fakeDispatcher{}, &fakePostGateway{}, nil)

	err := svc.ApproveReview(context.Background(), 999, "alice")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRejectReviewKeepsRow(t *testing.T) {
	store := newFakeReviewStore(nil)
	db := &fakeDB{}
	disp := &fakeDispatcher{}
	svc := NewReviewService(db, store, disp, &fakePostGateway{}, nil)

	id, err := svc.SubmitForReview(context.Background(), 10, "bob")
	require.NoError(t, err)

	require.NoError(t, svc.RejectReview(context.Background(), id, "alice", "too short"))

	r, err := store.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.ReviewStatusRejected, r.Status)
	require.NotNil(t, r.Reviewer)
	assert.Equal(t, "alice", *r.Reviewer)
	require.NotNil(t, r.Remarks)
	assert.Equal(t, "too short", *r.Remarks)
	assert.NotNil(t, r.ReviewedAt)

	require.NotNil(t, db.tx)
	assert.True(t, db.tx.committed)

	require.Len(t, disp.events, 1)
	assert.Equal(t, models.OutcomeRejected, disp.events[0].Outcome)
	require.NotNil(t, disp.events[0].Remarks)
	assert.Equal(t, "too short", *disp.events[0].Remarks)

	// rejected review больше не активен
	has, err := svc.HasActiveReview(context.Background(), 10)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestDeletePendingReviewIsIdempotent(t *testing.T) {
	store := newFakeReviewStore(nil)
	svc := NewReviewService(&fakeDB{}, store, &fakeDispatcher{}, &fakePostGateway{}, nil)

	// нет pending review — всё равно ok
	require.NoError(t, svc.DeletePendingReview(context.Background(), 10))

	id, err := svc.SubmitForReview(context.Background(), 10, "bob")
	require.NoError(t, err)

	require.NoError(t, svc.DeletePendingReview(context.Background(), 10))
	_, err = store.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, svc.DeletePendingReview(context.Background(), 10))
}

func TestListWithPostDetailsUsesFallbackOnEnrichmentFailure(t *testing.T) {
	store := newFakeReviewStore(nil)
	gateway := &fakePostGateway{
		summaries: map[int64]*models.PostSummary{
			10: {ID: 10, Title: "Go Generics", Content: "long read", Author: "bob"},
		},
	}
	svc := NewReviewService(&fakeDB{}, store, &fakeDispatcher{}, gateway, nil)

	_, err := svc.SubmitForReview(context.Background(), 10, "bob")
	require.NoError(t, err)
	_, err = svc.SubmitForReview(context.Background(), 11, "carol")
	require.NoError(t, err)

	list, err := svc.ListWithPostDetails(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)

	byPost := make(map[int64]models.ReviewWithPostDetails, len(list))
	for _, d := range list {
		byPost[d.PostID] = d
	}

	assert.Equal(t, "Go Generics", byPost[10].PostTitle)
	assert.Equal(t, "long read", byPost[10].PostContent)

	// пост 11 недоступен — заглушки вместо падения всего списка
	assert.Equal(t, unknownTitle, byPost[11].PostTitle)
	assert.Equal(t, unknownContent, byPost[11].PostContent)
}

func TestListWithPostDetailsExcludesRejected(t *testing.T) {
	store := newFakeReviewStore(nil)
	svc := NewReviewService(&fakeDB{}, store, &fakeDispatcher{}, &fakePostGateway{}, nil)

	id, err := svc.SubmitForReview(context.Background(), 10, "bob")
	require.NoError(t, err)
	_, err = svc.SubmitForReview(context.Background(), 11, "carol")
	require.NoError(t, err)

	require.NoError(t, svc.RejectReview(context.Background(), id, "alice", "no"))

	list, err := svc.ListWithPostDetails(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(11), list[0].PostID)
}
