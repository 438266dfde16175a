package repository

import (
	"context"
	"errors"
	"fmt"

	"editorial_platform/internal/models"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReviewRepository struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewReviewRepository(db *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var reviewColumns = []string{
	"id",
	"post_id",
	"author",
	"status",
	"reviewer",
	"remarks",
	"submitted_at",
	"reviewed_at",
}

// Create — новый PENDING review. Уникальность "один PENDING на пост"
// обеспечивается протоколом (delete-then-submit), индекс в БД только страхует.
func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	if review == nil {
		return fmt.Errorf("review is nil")
	}
	if review.PostID <= 0 {
		return fmt.Errorf("post_id is invalid")
	}
	if review.Author == "" {
		return fmt.Errorf("author is empty")
	}

	q := r.sb.
		Insert("reviews").
		Columns("post_id", "author", "status").
		Values(review.PostID, review.Author, models.ReviewStatusPending).
		Suffix("RETURNING id, submitted_at")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert review sql: %w", err)
	}

	if err := r.db.QueryRow(ctx, sqlStr, args...).
		Scan(&review.ID, &review.SubmittedAt); err != nil {
		return fmt.Errorf("insert review: %w", err)
	}

	review.Status = models.ReviewStatusPending
	return nil
}

func (r *ReviewRepository) GetByID(ctx context.Context, id int64) (*models.Review, error) {
	if id <= 0 {
		return nil, fmt.Errorf("review id is invalid")
	}

	q := r.sb.
		Select(reviewColumns...).
		From("reviews").
		Where(sq.Eq{"id": id}).
		Limit(1)

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get review sql: %w", err)
	}

	row := r.db.QueryRow(ctx, sqlStr, args...)
	rev, err := scanReview(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get review: %w", err)
	}

	return rev, nil
}

func (r *ReviewRepository) ExistsByPostIDAndStatus(ctx context.Context, postID int64, status models.ReviewStatus) (bool, error) {
	if postID <= 0 {
		return false, fmt.Errorf("post_id is invalid")
	}

	q := r.sb.
		Select("1").
		From("reviews").
		Where(sq.Eq{"post_id": postID, "status": status}).
		Limit(1)

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists review sql: %w", err)
	}

	var one int
	err = r.db.QueryRow(ctx, sqlStr, args...).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("exists review: %w", err)
	}

	return true, nil
}

// DeleteByPostIDAndStatus — идемпотентно: ноль удалённых строк это не ошибка.
func (r *ReviewRepository) DeleteByPostIDAndStatus(ctx context.Context, postID int64, status models.ReviewStatus) (int64, error) {
	if postID <= 0 {
		return 0, fmt.Errorf("post_id is invalid")
	}

	q := r.sb.
		Delete("reviews").
		Where(sq.Eq{"post_id": postID, "status": status})

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete review sql: %w", err)
	}

	tag, err := r.db.Exec(ctx, sqlStr, args...)
	if err != nil {
		return 0, fmt.Errorf("delete review by post and status: %w", err)
	}

	return tag.RowsAffected(), nil
}

// GetAllExceptStatus — список для панели редактора (REJECTED скрываем).
func (r *ReviewRepository) GetAllExceptStatus(ctx context.Context, status models.ReviewStatus) ([]*models.Review, error) {
	q := r.sb.
		Select(reviewColumns...).
		From("reviews").
		Where(sq.NotEq{"status": status}).
		OrderBy("submitted_at ASC", "id ASC")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list reviews sql: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	res := make([]*models.Review, 0)
	for rows.Next() {
		rev, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		res = append(res, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}

	return res, nil
}

// UpdateDecisionTx — фиксирует решение (reject) вместе с outbox-записью в одной транзакции.
func (r *ReviewRepository) UpdateDecisionTx(ctx context.Context, tx pgx.Tx, review *models.Review) error {
	if review == nil {
		return fmt.Errorf("review is nil")
	}
	if review.ID <= 0 {
		return fmt.Errorf("review id is invalid")
	}

	q := r.sb.
		Update("reviews").
		Set("status", review.Status).
		Set("reviewer", review.Reviewer).
		Set("remarks", review.Remarks).
		Set("reviewed_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": review.ID})

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update review decision sql: %w", err)
	}

	tag, err := tx.Exec(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("update review decision: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteTx — удаление review после approve, в одной транзакции с outbox-записью.
func (r *ReviewRepository) DeleteTx(ctx context.Context, tx pgx.Tx, id int64) error {
	if id <= 0 {
		return fmt.Errorf("review id is invalid")
	}

	q := r.sb.
		Delete("reviews").
		Where(sq.Eq{"id": id})

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete review sql: %w", err)
	}

	tag, err := tx.Exec(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func scanReview(row pgx.Row) (*models.Review, error) {
	var (
		rev        models.Review
		status     string
		reviewer   pgtype.Text
		remarks    pgtype.Text
		reviewedAt pgtype.Timestamptz
	)

	if err := row.Scan(
		&rev.ID,
		&rev.PostID,
		&rev.Author,
		&status,
		&reviewer,
		&remarks,
		&rev.SubmittedAt,
		&reviewedAt,
	); err != nil {
		return nil, err
	}

	rev.Status = models.ReviewStatus(status)
	if reviewer.Valid {
		s := reviewer.String
		rev.Reviewer = &s
	}
	if remarks.Valid {
		s := remarks.String
		rev.Remarks = &s
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		rev.ReviewedAt = &t
	}

	return &rev, nil
}
