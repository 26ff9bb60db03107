package http

import (
	"Shortlink-Backend/internal/auth"
	"Shortlink-Backend/internal/domain"
	"Shortlink-Backend/internal/service"
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// URLService операции реестра ссылок
type URLService interface {
	URLResolver
	Shorten(ctx context.Context, originalURL string, ownerID *int64) (*domain.URL, bool, error)
	Stats(ctx context.Context, code string) (*domain.URL, error)
	ListForOwner(ctx context.Context, ownerID int64, offset, limit int) ([]*domain.URL, int64, error)
	Update(ctx context.Context, id, ownerID int64, newURL string) (*domain.URL, error)
	Delete(ctx context.Context, id, ownerID int64) error
	Clicks(ctx context.Context, id, ownerID int64, offset, limit int) ([]*domain.Click, int64, error)
}

// LinksHandler обработчик для работы со ссылками
type LinksHandler struct {
	urls    URLService
	log     *zap.Logger
	baseURL string
}

// NewLinksHandler создает новый обработчик ссылок
func NewLinksHandler(urls URLService, log *zap.Logger, baseURL string) *LinksHandler {
	return &LinksHandler{
		urls:    urls,
		log:     log,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// ShortenRequest структура запроса создания ссылки
type ShortenRequest struct {
	OriginalURL string `json:"original_url" example:"https://example.com/some/long/path"`
}

// URLResponse информация о ссылке
type URLResponse struct {
	ID          int64     `json:"id"`
	ShortCode   string    `json:"short_code"`
	ShortURL    string    `json:"short_url"`
	OriginalURL string    `json:"original_url"`
	Clicks      int64     `json:"clicks"`
	UserID      *int64    `json:"user_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// URLListResponse страница ссылок пользователя
type URLListResponse struct {
	URLs   []URLResponse `json:"urls"`
	Total  int64         `json:"total"`
	Offset int           `json:"offset"`
	Limit  int           `json:"limit"`
}

// StatsResponse структура ответа статистики
type StatsResponse struct {
	ShortCode   string    `json:"short_code"`
	OriginalURL string    `json:"original_url"`
	Clicks      int64     `json:"clicks"`
	CreatedAt   time.Time `json:"created_at"`
}

// ClickListResponse страница событий переходов
type ClickListResponse struct {
	Clicks []*domain.Click `json:"clicks"`
	Total  int64           `json:"total"`
	Offset int             `json:"offset"`
	Limit  int             `json:"limit"`
}

func (h *LinksHandler) toResponse(u *domain.URL) URLResponse {
	return URLResponse{
		ID:          u.ID,
		ShortCode:   u.ShortCode,
		ShortURL:    h.baseURL + "/" + u.ShortCode,
		OriginalURL: u.OriginalURL,
		Clicks:      u.Clicks,
		UserID:      u.UserID,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// Shorten создает анонимную короткую ссылку
//
//	@Summary		Shorten a URL
//	@Description	Create an anonymous short URL. An existing anonymous mapping of the same URL is returned with 200.
//	@Tags			Links
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ShortenRequest	true	"URL to shorten"
//	@Success		201		{object}	URLResponse		"Created"
//	@Success		200		{object}	URLResponse		"Already shortened"
//	@Failure		400		{object}	ErrorResponse	"Invalid URL"
//	@Failure		429		{object}	ErrorResponse
//	@Router			/api/v1/shorten [post]
func (h *LinksHandler) Shorten(w http.ResponseWriter, r *http.Request) {
	h.shorten(w, r, nil)
}

// UserShorten создает ссылку, принадлежащую текущему пользователю
//
//	@Summary	Shorten a URL for the current user
//	@Tags		User URLs
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		ShortenRequest	true	"URL to shorten"
//	@Success	201		{object}	URLResponse
//	@Success	200		{object}	URLResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	401		{object}	ErrorResponse
//	@Router		/api/v1/user/shorten [post]
func (h *LinksHandler) UserShorten(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		auth.WriteUnauthorized(w)
		return
	}
	h.shorten(w, r, &user.ID)
}

func (h *LinksHandler) shorten(w http.ResponseWriter, r *http.Request, ownerID *int64) {
	var req ShortenRequest
	if !decodeJSON(w, r, h.log, &req) {
		return
	}

	url, created, err := h.urls.Shorten(r.Context(), req.OriginalURL, ownerID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, h.toResponse(url), status)
}

// Stats возвращает счетчик переходов по короткому коду
//
//	@Summary	URL statistics
//	@Tags		Links
//	@Produce	json
//	@Param		short_code	path		string	true	"Short code"
//	@Success	200			{object}	StatsResponse
//	@Failure	404			{object}	ErrorResponse
//	@Router		/api/v1/stats/{short_code} [get]
func (h *LinksHandler) Stats(w http.ResponseWriter, r *http.Request) {
	url, err := h.urls.Stats(r.Context(), chi.URLParam(r, "short_code"))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, StatsResponse{
		ShortCode:   url.ShortCode,
		OriginalURL: url.OriginalURL,
		Clicks:      url.Clicks,
		CreatedAt:   url.CreatedAt,
	}, http.StatusOK)
}

// ListUserURLs возвращает ссылки пользователя, новые первыми
//
//	@Summary	List the current user's URLs
//	@Tags		User URLs
//	@Produce	json
//	@Security	BearerAuth
//	@Param		offset	query		int	false	"Offset"	default(0)
//	@Param		limit	query		int	false	"Limit"		default(20)	maximum(100)
//	@Success	200		{object}	URLListResponse
//	@Failure	401		{object}	ErrorResponse
//	@Router		/api/v1/user/urls [get]
func (h *LinksHandler) ListUserURLs(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		auth.WriteUnauthorized(w)
		return
	}

	offset, limit, ok := pageParams(w, r)
	if !ok {
		return
	}

	urls, total, err := h.urls.ListForOwner(r.Context(), user.ID, offset, limit)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	resp := URLListResponse{URLs: make([]URLResponse, 0, len(urls)), Total: total, Offset: offset, Limit: limit}
	for _, u := range urls {
		resp.URLs = append(resp.URLs, h.toResponse(u))
	}
	writeJSON(w, resp, http.StatusOK)
}

// UpdateURL меняет исходный адрес ссылки пользователя
//
//	@Summary	Update a URL
//	@Tags		User URLs
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		int				true	"URL id"
//	@Param		request	body		ShortenRequest	true	"New target"
//	@Success	200		{object}	URLResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Router		/api/v1/user/urls/{id} [put]
func (h *LinksHandler) UpdateURL(w http.ResponseWriter, r *http.Request) {
	user, id, ok := h.ownedTarget(w, r)
	if !ok {
		return
	}

	var req ShortenRequest
	if !decodeJSON(w, r, h.log, &req) {
		return
	}

	url, err := h.urls.Update(r.Context(), id, user.ID, req.OriginalURL)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	// чужая ссылка отдается как несуществующая
	if !auth.AuthorizeOwner(user, url) {
		h.log.Error("update returned a foreign url", zap.Int64("url_id", url.ID), zap.Int64("user_id", user.ID))
		writeNotFound(w)
		return
	}
	writeJSON(w, h.toResponse(url), http.StatusOK)
}

// DeleteURL удаляет ссылку пользователя
//
//	@Summary	Delete a URL
//	@Tags		User URLs
//	@Security	BearerAuth
//	@Param		id	path	int	true	"URL id"
//	@Success	204
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/v1/user/urls/{id} [delete]
func (h *LinksHandler) DeleteURL(w http.ResponseWriter, r *http.Request) {
	user, id, ok := h.ownedTarget(w, r)
	if !ok {
		return
	}

	if err := h.urls.Delete(r.Context(), id, user.ID); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// URLClicks возвращает события переходов по ссылке пользователя
//
//	@Summary	List click events of a URL
//	@Tags		User URLs
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		int	true	"URL id"
//	@Param		offset	query		int	false	"Offset"
//	@Param		limit	query		int	false	"Limit"
//	@Success	200		{object}	ClickListResponse
//	@Failure	404		{object}	ErrorResponse
//	@Router		/api/v1/user/urls/{id}/clicks [get]
func (h *LinksHandler) URLClicks(w http.ResponseWriter, r *http.Request) {
	user, id, ok := h.ownedTarget(w, r)
	if !ok {
		return
	}

	offset, limit, ok := pageParams(w, r)
	if !ok {
		return
	}

	clicks, total, err := h.urls.Clicks(r.Context(), id, user.ID, offset, limit)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	if clicks == nil {
		clicks = []*domain.Click{}
	}
	writeJSON(w, ClickListResponse{Clicks: clicks, Total: total, Offset: offset, Limit: limit}, http.StatusOK)
}

// ownedTarget достает пользователя и id ссылки из запроса
func (h *LinksHandler) ownedTarget(w http.ResponseWriter, r *http.Request) (*domain.User, int64, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		auth.WriteUnauthorized(w)
		return nil, 0, false
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeValidation(w, map[string]string{"id": "must be a positive integer"})
		return nil, 0, false
	}
	return user, id, true
}

func pageParams(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	offset, okOffset := queryInt(r, "offset", 0)
	limit, okLimit := queryInt(r, "limit", service.DefaultPageLimit)

	fields := map[string]string{}
	if !okOffset || offset < 0 {
		fields["offset"] = "must be a non-negative integer"
	}
	if !okLimit || limit < 1 || limit > service.MaxPageLimit {
		fields["limit"] = "must be an integer between 1 and " + strconv.Itoa(service.MaxPageLimit)
	}
	if len(fields) > 0 {
		writeValidation(w, fields)
		return 0, 0, false
	}
	return offset, limit, true
}
