package service

import (
	"Shortlink-Backend/internal/config"
	"Shortlink-Backend/internal/domain"
	"Shortlink-Backend/internal/metrics"
	"Shortlink-Backend/internal/repository"
	"Shortlink-Backend/internal/validation"
	"Shortlink-Backend/pkg/random"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	fieldOriginalURL = "original_url"

	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Resolver ищет ссылку по короткому коду, например через кеш.
type Resolver interface {
	GetURLByShortCode(ctx context.Context, code string) (*domain.URL, error)
}

// Cache - резолвер, который умеет сбрасывать записи.
type Cache interface {
	Resolver
	Invalidate(ctx context.Context, codes ...string)
}

// Generator возвращает случайный код заданной длины.
type Generator func(n int) (string, error)

type Option func(*URLShortenerService)

// WithCache включает кеширование резолва коротких кодов.
func WithCache(c Cache) Option {
	return func(s *URLShortenerService) {
		s.cache = c
	}
}

// WithGenerator подменяет генератор кодов.
func WithGenerator(g Generator) Option {
	return func(s *URLShortenerService) {
		s.generate = g
	}
}

type URLShortenerService struct {
	storage   repository.Storage
	cache     Cache
	config    *config.URLShortener
	validator *validation.Validator
	generate  Generator
	log       *zap.Logger
}

func NewURLShortener(storage repository.Storage, cfg *config.URLShortener, log *zap.Logger, opts ...Option) *URLShortenerService {
	s := &URLShortenerService{
		storage:   storage,
		config:    cfg,
		validator: validation.New(),
		generate:  random.NewRandomString,
		log:       log.With(zap.String("component", "url_shortener")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Shorten возвращает ссылку для originalURL. Если такой адрес уже сокращен
// тем же владельцем (или анонимно для анонимного запроса), возвращается
// существующая запись и created = false.
func (s *URLShortenerService) Shorten(ctx context.Context, originalURL string, ownerID *int64) (*domain.URL, bool, error) {
	originalURL = strings.TrimSpace(originalURL)
	if err := s.validateURL(originalURL); err != nil {
		return nil, false, err
	}

	existing, err := s.storage.FindURL(ctx, originalURL, ownerID)
	if err == nil {
		metrics.URLsDeduplicated.Inc()
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrURLNotFound) {
		return nil, false, fmt.Errorf("failed to look up existing url: %w", err)
	}

	for attempt := 1; attempt <= s.config.MaxRetries; attempt++ {
		code, err := s.generate(s.config.CodeLength)
		if err != nil {
			return nil, false, fmt.Errorf("failed to generate short code: %w", err)
		}

		exists, err := s.storage.ShortCodeExists(ctx, code)
		if err != nil {
			return nil, false, fmt.Errorf("failed to check short code existence: %w", err)
		}
		if exists {
			metrics.CodeCollisions.Inc()
			s.log.Debug("short code collision", zap.String("short_code", code), zap.Int("attempt", attempt))
			continue
		}

		url := &domain.URL{
			OriginalURL: originalURL,
			ShortCode:   code,
			UserID:      ownerID,
		}
		if err := s.storage.CreateURL(ctx, url); err != nil {
			// код мог занять параллельный запрос между проверкой и вставкой
			if errors.Is(err, repository.ErrShortCodeExists) {
				metrics.CodeCollisions.Inc()
				s.log.Debug("short code taken on insert", zap.String("short_code", code), zap.Int("attempt", attempt))
				continue
			}
			return nil, false, fmt.Errorf("failed to save url: %w", err)
		}

		metrics.URLsCreated.Inc()
		s.log.Info("short url created", zap.String("short_code", code), zap.Int64("url_id", url.ID))
		return url, true, nil
	}

	s.log.Error("short code generation exhausted",
		zap.Int("max_retries", s.config.MaxRetries),
		zap.Int("code_length", s.config.CodeLength))
	return nil, false, ErrGenerationExhausted
}

// Resolve возвращает ссылку для редиректа. Метод ничего не изменяет.
func (s *URLShortenerService) Resolve(ctx context.Context, code string) (*domain.URL, error) {
	if s.cache != nil {
		return s.cache.GetURLByShortCode(ctx, code)
	}
	return s.storage.GetURLByShortCode(ctx, code)
}

// Stats читает ссылку напрямую из хранилища вместе с актуальным счетчиком.
func (s *URLShortenerService) Stats(ctx context.Context, code string) (*domain.URL, error) {
	return s.storage.GetURLByShortCode(ctx, code)
}

// ListForOwner возвращает страницу ссылок владельца, новые первыми.
func (s *URLShortenerService) ListForOwner(ctx context.Context, ownerID int64, offset, limit int) ([]*domain.URL, int64, error) {
	offset, limit = NormalizePage(offset, limit)
	urls, total, err := s.storage.ListURLsByOwner(ctx, ownerID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list urls: %w", err)
	}
	return urls, total, nil
}

// Update меняет исходный адрес ссылки владельца. Короткий код сохраняется.
func (s *URLShortenerService) Update(ctx context.Context, id, ownerID int64, newURL string) (*domain.URL, error) {
	newURL = strings.TrimSpace(newURL)
	if err := s.validateURL(newURL); err != nil {
		return nil, err
	}

	url, err := s.storage.UpdateURL(ctx, id, ownerID, newURL)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, url.ShortCode)
	return url, nil
}

// Delete удаляет ссылку владельца вместе с историей переходов.
func (s *URLShortenerService) Delete(ctx context.Context, id, ownerID int64) error {
	url, err := s.storage.DeleteURL(ctx, id, ownerID)
	if err != nil {
		return err
	}
	s.invalidate(ctx, url.ShortCode)
	s.log.Info("short url deleted", zap.String("short_code", url.ShortCode), zap.Int64("owner_id", ownerID))
	return nil
}

// Clicks возвращает события переходов по ссылке владельца, новые первыми.
func (s *URLShortenerService) Clicks(ctx context.Context, id, ownerID int64, offset, limit int) ([]*domain.Click, int64, error) {
	url, err := s.storage.GetOwnedURL(ctx, id, ownerID)
	if err != nil {
		return nil, 0, err
	}

	offset, limit = NormalizePage(offset, limit)
	clicks, total, err := s.storage.ListClicks(ctx, url.ID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list clicks: %w", err)
	}
	return clicks, total, nil
}

// DeleteAccount удаляет пользователя, его ссылки и их переходы.
func (s *URLShortenerService) DeleteAccount(ctx context.Context, userID int64) error {
	codes, err := s.storage.DeleteUser(ctx, userID)
	if err != nil {
		return err
	}
	s.invalidate(ctx, codes...)
	s.log.Info("account deleted", zap.Int64("user_id", userID), zap.Int("urls", len(codes)))
	return nil
}

// NormalizePage приводит параметры пагинации к допустимым значениям.
func NormalizePage(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return offset, limit
}

func (s *URLShortenerService) validateURL(raw string) error {
	maxLen := s.config.MaxURLLength
	if maxLen <= 0 {
		maxLen = 2048
	}
	tag := "required,max=" + strconv.Itoa(maxLen) + ",http_url"
	if fields := s.validator.Var(fieldOriginalURL, raw, tag); fields != nil {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func (s *URLShortenerService) invalidate(ctx context.Context, codes ...string) {
	if s.cache != nil && len(codes) > 0 {
		s.cache.Invalidate(ctx, codes...)
	}
}
