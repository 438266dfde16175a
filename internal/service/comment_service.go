package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"editorial_platform/internal/models"
	"editorial_platform/internal/repository"
)

type CommentStore interface {
	Create(ctx context.Context, c *models.Comment) error
	GetByID(ctx context.Context, id int64) (*models.Comment, error)
	GetByPostID(ctx context.Context, postID int64) ([]*models.Comment, error)
	UpdateContent(ctx context.Context, id int64, content string) error
	Delete(ctx context.Context, id int64) error
}

type PublishedPostGateway interface {
	GetPublished(ctx context.Context, postID int64) (*models.Post, error)
}

// CommentService — комментировать можно только опубликованные посты.
type CommentService struct {
	commentRepo CommentStore
	postClient  PublishedPostGateway
	logger      *log.Logger
}

func NewCommentService(commentRepo CommentStore, postClient PublishedPostGateway, logger *log.Logger) *CommentService {
	if logger == nil {
		logger = log.Default()
	}

	return &CommentService{
		commentRepo: commentRepo,
		postClient:  postClient,
		logger:      logger,
	}
}

func (s *CommentService) AddComment(ctx context.Context, req *models.CommentRequest) (*models.Comment, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is nil", ErrInvalidInput)
	}
	if req.PostID <= 0 {
		return nil, fmt.Errorf("%w: post_id is required", ErrInvalidInput)
	}
	if req.Author == "" {
		return nil, fmt.Errorf("%w: author is required", ErrInvalidInput)
	}
	if req.Content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}

	// неопубликованный пост снаружи выглядит как отсутствующий
	if _, err := s.postClient.GetPublished(ctx, req.PostID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("check post %d: %w", req.PostID, err)
	}

	c := &models.Comment{
		PostID:  req.PostID,
		Author:  req.Author,
		Content: req.Content,
	}
	if err := s.commentRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	return c, nil
}

func (s *CommentService) GetCommentsForPost(ctx context.Context, postID int64) ([]*models.Comment, error) {
	if postID <= 0 {
		return nil, fmt.Errorf("%w: post_id is required", ErrInvalidInput)
	}
	return s.commentRepo.GetByPostID(ctx, postID)
}

func (s *CommentService) EditComment(ctx context.Context, id int64, content string) (*models.Comment, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}

	if err := s.commentRepo.UpdateContent(ctx, id, content); err != nil {
		return nil, err
	}

	return s.commentRepo.GetByID(ctx, id)
}

func (s *CommentService) DeleteComment(ctx context.Context, id int64) error {
	return s.commentRepo.Delete(ctx, id)
}
