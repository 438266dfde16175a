package repository

import (
	"context"
	"errors"
	"fmt"

	"editorial_platform/internal/models"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CommentRepository struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewCommentRepository(db *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *CommentRepository) Create(ctx context.Context, c *models.Comment) error {
	if c == nil {
		return fmt.Errorf("comment is nil")
	}
	if c.PostID <= 0 {
		return fmt.Errorf("post_id is invalid")
	}
	if c.Content == "" {
		return fmt.Errorf("content is empty")
	}

	q := r.sb.
		Insert("comments").
		Columns("post_id", "author", "content").
		Values(c.PostID, c.Author, c.Content).
		Suffix("RETURNING id, created_date")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert comment sql: %w", err)
	}

	if err := r.db.QueryRow(ctx, sqlStr, args...).Scan(&c.ID, &c.CreatedDate); err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}

	return nil
}

func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	if id <= 0 {
		return nil, fmt.Errorf("comment id is invalid")
	}

	q := r.sb.
		Select("id", "post_id", "author", "content", "created_date").
		From("comments").
		Where(sq.Eq{"id": id}).
		Limit(1)

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get comment sql: %w", err)
	}

	var c models.Comment
	err = r.db.QueryRow(ctx, sqlStr, args...).
		Scan(&c.ID, &c.PostID, &c.Author, &c.Content, &c.CreatedDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}

	return &c, nil
}

func (r *CommentRepository) GetByPostID(ctx context.Context, postID int64) ([]*models.Comment, error) {
	if postID <= 0 {
		return nil, fmt.Errorf("post_id is invalid")
	}

	q := r.sb.
		Select("id", "post_id", "author", "content", "created_date").
		From("comments").
		Where(sq.Eq{"post_id": postID}).
		OrderBy("created_date ASC", "id ASC")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get comments sql: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	res := make([]*models.Comment, 0)
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.Author, &c.Content, &c.CreatedDate); err != nil {
			return nil, fmt.Errorf("scan comment row: %w", err)
		}
		res = append(res, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comment rows: %w", err)
	}

	return res, nil
}

func (r *CommentRepository) UpdateContent(ctx context.Context, id int64, content string) error {
	if id <= 0 {
		return fmt.Errorf("comment id is invalid")
	}
	if content == "" {
		return fmt.Errorf("content is empty")
	}

	q := r.sb.
		Update("comments").
		Set("content", content).
		Where(sq.Eq{"id": id})

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update comment sql: %w", err)
	}

	tag, err := r.db.Exec(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *CommentRepository) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("comment id is invalid")
	}

	q := r.sb.
		Delete("comments").
		Where(sq.Eq{"id": id})

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete comment sql: %w", err)
	}

	tag, err := r.db.Exec(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
