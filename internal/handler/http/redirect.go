package http

import (
	"Shortlink-Backend/internal/analytics"
	"Shortlink-Backend/internal/domain"
	"Shortlink-Backend/internal/metrics"
	"Shortlink-Backend/internal/repository"
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// URLResolver ищет ссылку для редиректа
type URLResolver interface {
	Resolve(ctx context.Context, code string) (*domain.URL, error)
}

// ClickCounter атомарно увеличивает счетчик переходов
type ClickCounter interface {
	IncrementClicks(ctx context.Context, id int64) error
}

// ClickSubmitter принимает события переходов на асинхронную обработку
type ClickSubmitter interface {
	SubmitClick(data analytics.ClickData) error
}

// RedirectHandler обработчик редиректов
type RedirectHandler struct {
	urls    URLResolver
	counter ClickCounter
	clicks  ClickSubmitter
	log     *zap.Logger
}

// NewRedirectHandler создает новый обработчик редиректов
func NewRedirectHandler(urls URLResolver, counter ClickCounter, clicks ClickSubmitter, log *zap.Logger) *RedirectHandler {
	return &RedirectHandler{
		urls:    urls,
		counter: counter,
		clicks:  clicks,
		log:     log,
	}
}

// HandleRedirect перенаправляет на исходный адрес и учитывает переход
//
//	@Summary	Redirect to the original URL
//	@Tags		Redirect
//	@Param		short_code	path	string	true	"Short code"
//	@Success	302
//	@Failure	404	{object}	ErrorResponse
//	@Router		/{short_code} [get]
func (h *RedirectHandler) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "short_code")

	url, err := h.urls.Resolve(r.Context(), code)
	if err != nil {
		if errors.Is(err, repository.ErrURLNotFound) {
			h.log.Debug("short code not found", zap.String("short_code", code))
			writeNotFound(w)
			return
		}
		h.log.Error("failed to resolve short code", zap.String("short_code", code), zap.Error(err))
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// счетчик обновляется синхронно, история переходов пишется в фоне
	if err := h.counter.IncrementClicks(r.Context(), url.ID); err != nil {
		if errors.Is(err, repository.ErrURLNotFound) {
			writeNotFound(w)
			return
		}
		h.log.Error("failed to increment clicks", zap.String("short_code", code), zap.Error(err))
	}

	data := analytics.ClickData{
		URLID:     url.ID,
		ShortCode: code,
		IPAddress: optional(clientIP(r)),
		UserAgent: optional(r.UserAgent()),
		Referrer:  optional(r.Referer()),
		ClickedAt: time.Now().UTC(),
	}
	if h.clicks != nil {
		if err := h.clicks.SubmitClick(data); err != nil {
			h.log.Debug("click event not queued", zap.String("short_code", code), zap.Error(err))
		}
	}

	metrics.Redirects.Inc()
	h.log.Debug("successful redirect",
		zap.String("short_code", code),
		zap.Stringp("ip", data.IPAddress))

	http.Redirect(w, r, url.OriginalURL, http.StatusFound)
}

// clientIP извлекает IP адрес из запроса с учетом прокси
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	return remoteHost(r)
}

// remoteHost возвращает адрес TCP соединения без порта
func remoteHost(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
