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

type PostRepository struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewPostRepository(db *pgxpool.Pool) *PostRepository {
	return &PostRepository{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var postColumns = []string{
	"id",
	"title",
	"content",
	"author",
	"status",
	"remarks",
	"created_date",
	"last_modified_date",
}

func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	if post == nil {
		return fmt.Errorf("post is nil")
	}
	if post.Author == "" {
		return fmt.Errorf("author is empty")
	}

	q := r.sb.
		Insert("posts").
		Columns("title", "content", "author", "status", "remarks").
		Values(post.Title, post.Content, post.Author, post.Status, post.Remarks).
		Suffix("RETURNING id, created_date, last_modified_date")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert post sql: %w", err)
	}

	if err := r.db.QueryRow(ctx, sqlStr, args...).
		Scan(&post.ID, &post.CreatedDate, &post.LastModifiedDate); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}

	return nil
}

func (r *PostRepository) Update(ctx context.Context, post *models.Post) error {
	if post == nil {
		return fmt.Errorf("post is nil")
	}
	if post.ID <= 0 {
		return fmt.Errorf("post id is invalid")
	}

	q := r.sb.
		Update("posts").
		Set("title", post.Title).
		Set("content", post.Content).
		Set("author", post.Author).
		Set("status", post.Status).
		Set("remarks", post.Remarks).
		Set("last_modified_date", sq.Expr("NOW()")).
		Where(sq.Eq{"id": post.ID}).
		Suffix("RETURNING last_modified_date")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update post sql: %w", err)
	}

	err = r.db.QueryRow(ctx, sqlStr, args...).Scan(&post.LastModifiedDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update post: %w", err)
	}

	return nil
}

// UpdateStatus — единственный способ перевести пост в PUBLISHED.
func (r *PostRepository) UpdateStatus(ctx context.Context, id int64, status models.PostStatus) error {
	if id <= 0 {
		return fmt.Errorf("post id is invalid")
	}

	q := r.sb.
		Update("posts").
		Set("status", status).
		Set("last_modified_date", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id})

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update post status sql: %w", err)
	}

	tag, err := r.db.Exec(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("update post status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	if id <= 0 {
		return nil, fmt.Errorf("post id is invalid")
	}

	q := r.sb.
		Select(postColumns...).
		From("posts").
		Where(sq.Eq{"id": id}).
		Limit(1)

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get post sql: %w", err)
	}

	row := r.db.QueryRow(ctx, sqlStr, args...)
	p, err := scanPost(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}

	return p, nil
}

func (r *PostRepository) GetByStatus(ctx context.Context, status models.PostStatus) ([]*models.Post, error) {
	q := r.sb.
		Select(postColumns...).
		From("posts").
		Where(sq.Eq{"status": status}).
		OrderBy("created_date DESC", "id DESC")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get posts by status sql: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts by status: %w", err)
	}
	defer rows.Close()

	res := make([]*models.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post row: %w", err)
		}
		res = append(res, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate post rows: %w", err)
	}

	return res, nil
}

func scanPost(row pgx.Row) (*models.Post, error) {
	var (
		p       models.Post
		status  string
		remarks pgtype.Text
	)

	if err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Content,
		&p.Author,
		&status,
		&remarks,
		&p.CreatedDate,
		&p.LastModifiedDate,
	); err != nil {
		return nil, err
	}

	p.Status = models.PostStatus(status)
	if remarks.Valid {
		s := remarks.String
		p.Remarks = &s
	}

	return &p, nil
}
