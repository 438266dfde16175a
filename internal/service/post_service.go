package service

import (
	"context"
	"fmt"
	"log"

	"editorial_platform/internal/cache"
	"editorial_platform/internal/metrics"
	"editorial_platform/internal/models"
	"editorial_platform/internal/repository"
)

type PostStore interface {
	Create(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, post *models.Post) error
	UpdateStatus(ctx context.Context, id int64, status models.PostStatus) error
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	GetByStatus(ctx context.Context, status models.PostStatus) ([]*models.Post, error)
}

type ReviewGateway interface {
	Submit(ctx context.Context, postID int64, author string) (int64, error)
	DeletePending(ctx context.Context, postID int64) error
	HasActiveReview(ctx context.Context, postID int64) (bool, error)
}

// PostService решает, когда пост уходит на ревью, и единственный меняет
// его статус. Кросс-сервисной транзакции нет: согласованность держится
// на идемпотентности delete-then-submit.
type PostService struct {
	postRepo     PostStore
	reviewClient ReviewGateway
	cache        cache.Cache
	logger       *log.Logger
}

func NewPostService(
	postRepo PostStore,
	reviewClient ReviewGateway,
	c cache.Cache,
	logger *log.Logger,
) *PostService {
	if logger == nil {
		logger = log.Default()
	}

	return &PostService{
		postRepo:     postRepo,
		reviewClient: reviewClient,
		cache:        c,
		logger:       logger,
	}
}

// CreateOrUpdateDraft: новый пост всегда уходит на ревью; существующий —
// только если title или content реально изменились (побайтовое сравнение),
// иначе no-op сохранение заспамит очередь ревью.
func (s *PostService) CreateOrUpdateDraft(ctx context.Context, req *models.PostDraftRequest) (*models.Post, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is nil", ErrInvalidInput)
	}
	if req.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if req.Content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}

	if req.ID <= 0 {
		if req.Author == "" {
			return nil, fmt.Errorf("%w: author is required", ErrInvalidInput)
		}

		post := &models.Post{
			Title:   req.Title,
			Content: req.Content,
			Author:  req.Author,
			Status:  models.PostStatusDraft,
		}
		if err := s.postRepo.Create(ctx, post); err != nil {
			return nil, fmt.Errorf("create post: %w", err)
		}

		if err := s.SendForReview(ctx, post); err != nil {
			return nil, err
		}

		return post, nil
	}

	// снапшот до обновления — на нём построено детектирование изменений
	prior, err := s.postRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		ID:          req.ID,
		Title:       req.Title,
		Content:     req.Content,
		Author:      prior.Author,
		Status:      models.PostStatusDraft,
		Remarks:     prior.Remarks,
		CreatedDate: prior.CreatedDate,
	}
	if req.Author != "" {
		post.Author = req.Author
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	s.invalidateCache(ctx, post.ID)

	if prior.Title != post.Title || prior.Content != post.Content {
		if err := s.SendForReview(ctx, post); err != nil {
			return nil, err
		}
	}

	return post, nil
}

// SendForReview: сперва удалить старый pending, потом submit. Именно этот
// порядок гарантирует "не больше одного PENDING review на пост" — уникальный
// индекс в review-store лишь подстраховка. Крэш между шагами оставит максимум
// один лишний pending или один пропущенный submit; фоновая сверка — следующий шаг.
func (s *PostService) SendForReview(ctx context.Context, post *models.Post) error {
	if post == nil || post.ID <= 0 {
		return fmt.Errorf("%w: post is not persisted", ErrInvalidInput)
	}

	if err := s.reviewClient.DeletePending(ctx, post.ID); err != nil {
		return fmt.Errorf("delete pending review for post %d: %w", post.ID, err)
	}

	reviewID, err := s.reviewClient.Submit(ctx, post.ID, post.Author)
	if err != nil {
		return fmt.Errorf("submit post %d for review: %w", post.ID, err)
	}

	if err := s.postRepo.UpdateStatus(ctx, post.ID, models.PostStatusUnderReview); err != nil {
		return fmt.Errorf("mark post %d under review: %w", post.ID, err)
	}
	post.Status = models.PostStatusUnderReview

	s.logger.Printf("post sent for review post_id=%d review_id=%d", post.ID, reviewID)
	return nil
}

// EditPost — частичное обновление: пустые title/content не затирают старые.
func (s *PostService) EditPost(ctx context.Context, id int64, patch *models.PostPatchRequest) (*models.Post, error) {
	if patch == nil {
		return nil, fmt.Errorf("%w: patch is nil", ErrInvalidInput)
	}

	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldTitle := post.Title
	oldContent := post.Content

	if patch.Title != "" {
		post.Title = patch.Title
	}
	if patch.Content != "" {
		post.Content = patch.Content
	}
	post.Remarks = patch.Remarks

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	s.invalidateCache(ctx, post.ID)

	if post.Status == models.PostStatusDraft &&
		(oldTitle != post.Title || oldContent != post.Content) {
		if err := s.SendForReview(ctx, post); err != nil {
			return nil, err
		}
	}

	return post, nil
}

// Publish — единственная точка входа для review-service; сам по себе пост
// опубликоваться не может.
func (s *PostService) Publish(ctx context.Context, postID int64) error {
	if err := s.postRepo.UpdateStatus(ctx, postID, models.PostStatusPublished); err != nil {
		return err
	}

	s.invalidateCache(ctx, postID)
	metrics.IncPostPublished()
	s.logger.Printf("post published post_id=%d", postID)

	return nil
}

// GetPublished: "нет такого поста" и "пост есть, но не опубликован" снаружи
// неразличимы — черновики не должны светиться.
func (s *PostService) GetPublished(ctx context.Context, id int64) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.Status != models.PostStatusPublished {
		return nil, repository.ErrNotFound
	}
	return post, nil
}

func (s *PostService) GetPublishedPosts(ctx context.Context) ([]*models.Post, error) {
	return s.postRepo.GetByStatus(ctx, models.PostStatusPublished)
}

func (s *PostService) GetDraftPosts(ctx context.Context) ([]*models.Post, error) {
	return s.postRepo.GetByStatus(ctx, models.PostStatusDraft)
}

// GetPostSummary — для обогащения в review-service, доступ только редактору
// (проверяется на уровне роутера).
func (s *PostService) GetPostSummary(ctx context.Context, id int64) (*models.PostSummary, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &models.PostSummary{
		ID:      post.ID,
		Title:   post.Title,
		Content: post.Content,
		Author:  post.Author,
	}, nil
}

func (s *PostService) invalidateCache(ctx context.Context, postID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, cache.PublishedPostKey(postID), cache.PublishedListKey()); err != nil {
		s.logger.Printf("cache invalidate post_id=%d: %v", postID, err)
	}
}
