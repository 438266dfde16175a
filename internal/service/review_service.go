package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"editorial_platform/internal/metrics"
	"editorial_platform/internal/models"

	"github.com/jackc/pgx/v5"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

// Заглушки для обогащения, когда post-service недоступен: падение одного
// запроса не должно ронять весь список.
const (
	unknownTitle   = "Unknown Title"
	unknownContent = "Unknown Content"
)

type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type ReviewStore interface {
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id int64) (*models.Review, error)
	ExistsByPostIDAndStatus(ctx context.Context, postID int64, status models.ReviewStatus) (bool, error)
	DeleteByPostIDAndStatus(ctx context.Context, postID int64, status models.ReviewStatus) (int64, error)
	GetAllExceptStatus(ctx context.Context, status models.ReviewStatus) ([]*models.Review, error)
	UpdateDecisionTx(ctx context.Context, tx pgx.Tx, review *models.Review) error
	DeleteTx(ctx context.Context, tx pgx.Tx, id int64) error
}

type OutcomeDispatcher interface {
	Dispatch(ctx context.Context, tx pgx.Tx, ev *models.OutcomeEvent) error
}

type PostGateway interface {
	Publish(ctx context.Context, postID int64) error
	GetPostSummary(ctx context.Context, postID int64) (*models.PostSummary, error)
}

// ReviewService — машина состояний одного review:
// PENDING -> APPROVED (строка удаляется) или PENDING -> REJECTED (строка остаётся).
type ReviewService struct {
	db         DB
	reviewRepo ReviewStore
	dispatcher OutcomeDispatcher
	postClient PostGateway
	logger     *log.Logger
}

func NewReviewService(
	db DB,
	reviewRepo ReviewStore,
	dispatcher OutcomeDispatcher,
	postClient PostGateway,
	logger *log.Logger,
) *ReviewService {
	if logger == nil {
		logger = log.Default()
	}

	return &ReviewService{
		db:         db,
		reviewRepo: reviewRepo,
		dispatcher: dispatcher,
		postClient: postClient,
		logger:     logger,
	}
}

// SubmitForReview — новый PENDING review. Вызывающая сторона (post-service)
// обязана перед этим удалить старый pending через DeletePendingReview:
// delete-then-submit и есть гарантия "не больше одного pending на пост".
func (s *ReviewService) SubmitForReview(ctx context.Context, postID int64, author string) (int64, error) {
	if postID <= 0 {
		return 0, fmt.Errorf("%w: post_id is required", ErrInvalidInput)
	}
	if author == "" {
		return 0, fmt.Errorf("%w: author is required", ErrInvalidInput)
	}

	review := &models.Review{
		PostID: postID,
		Author: author,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return 0, fmt.Errorf("create review: %w", err)
	}

	metrics.IncReviewSubmitted()
	s.logger.Printf("review submitted id=%d post_id=%d author=%s", review.ID, postID, author)

	return review.ID, nil
}

func (s *ReviewService) HasActiveReview(ctx context.Context, postID int64) (bool, error) {
	if postID <= 0 {
		return false, fmt.Errorf("%w: post_id is required", ErrInvalidInput)
	}
	return s.reviewRepo.ExistsByPostIDAndStatus(ctx, postID, models.ReviewStatusPending)
}

// DeletePendingReview — идемпотентно: отсутствие pending review это no-op.
func (s *ReviewService) DeletePendingReview(ctx context.Context, postID int64) error {
	if postID <= 0 {
		return fmt.Errorf("%w: post_id is required", ErrInvalidInput)
	}

	n, err := s.reviewRepo.DeleteByPostIDAndStatus(ctx, postID, models.ReviewStatusPending)
	if err != nil {
		return fmt.Errorf("delete pending review: %w", err)
	}
	if n > 0 {
		s.logger.Printf("pending review deleted post_id=%d", postID)
	}

	return nil
}

// ApproveReview: publish поста -> удаление review -> событие approved.
// Порядок важен: крэш между publish и удалением оставит висящий PENDING,
// который можно повторно одобрить, но публикация не теряется.
func (s *ReviewService) ApproveReview(ctx context.Context, reviewID int64, reviewer string) error {
	if reviewer == "" {
		return fmt.Errorf("%w: reviewer is required", ErrInvalidInput)
	}

	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}

	if err := s.postClient.Publish(ctx, review.PostID); err != nil {
		return fmt.Errorf("publish post %d: %w", review.PostID, err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := s.reviewRepo.DeleteTx(ctx, tx, reviewID); err != nil {
		return fmt.Errorf("delete review tx: %w", err)
	}

	ev := &models.OutcomeEvent{
		PostID:   review.PostID,
		Outcome:  models.OutcomeApproved,
		Reviewer: reviewer,
	}
	if err := s.dispatcher.Dispatch(ctx, tx, ev); err != nil {
		return fmt.Errorf("dispatch approved event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	metrics.IncReviewDecided(models.OutcomeApproved)
	s.logger.Printf("review approved id=%d post_id=%d reviewer=%s", reviewID, review.PostID, reviewer)

	return nil
}

// RejectReview — строка review остаётся (история для редакции).
// Статус поста при отказе не трогаем.
func (s *ReviewService) RejectReview(ctx context.Context, reviewID int64, reviewer, remarks string) error {
	if reviewer == "" {
		return fmt.Errorf("%w: reviewer is required", ErrInvalidInput)
	}

	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}

	review.Status = models.ReviewStatusRejected
	review.Reviewer = &reviewer
	review.Remarks = &remarks

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := s.reviewRepo.UpdateDecisionTx(ctx, tx, review); err != nil {
		return fmt.Errorf("update review decision tx: %w", err)
	}

	ev := &models.OutcomeEvent{
		PostID:   review.PostID,
		Outcome:  models.OutcomeRejected,
		Reviewer: reviewer,
		Remarks:  &remarks,
	}
	if err := s.dispatcher.Dispatch(ctx, tx, ev); err != nil {
		return fmt.Errorf("dispatch rejected event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	metrics.IncReviewDecided(models.OutcomeRejected)
	s.logger.Printf("review rejected id=%d post_id=%d reviewer=%s", reviewID, review.PostID, reviewer)

	return nil
}

// ListWithPostDetails — все не-REJECTED review, обогащённые данными поста.
func (s *ReviewService) ListWithPostDetails(ctx context.Context) ([]models.ReviewWithPostDetails, error) {
	reviews, err := s.reviewRepo.GetAllExceptStatus(ctx, models.ReviewStatusRejected)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	res := make([]models.ReviewWithPostDetails, 0, len(reviews))
	for _, rev := range reviews {
		d := models.ReviewWithPostDetails{
			ReviewID:    rev.ID,
			PostID:      rev.PostID,
			Status:      rev.Status,
			Author:      rev.Author,
			Reviewer:    rev.Reviewer,
			Remarks:     rev.Remarks,
			ReviewedAt:  rev.ReviewedAt,
			PostTitle:   unknownTitle,
			PostContent: unknownContent,
		}
		submittedAt := rev.SubmittedAt
		d.SubmittedAt = &submittedAt

		summary, err := s.postClient.GetPostSummary(ctx, rev.PostID)
		if err != nil {
			s.logger.Printf("enrich review %d: get post %d failed: %v", rev.ID, rev.PostID, err)
		} else {
			d.PostTitle = summary.Title
			d.PostContent = summary.Content
		}

		res = append(res, d)
	}

	return res, nil
}
