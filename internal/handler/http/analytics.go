package http

import (
	"Shortlink-Backend/internal/auth"
	"Shortlink-Backend/internal/domain"
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Summarizer строит сводку переходов за окно в днях
type Summarizer interface {
	Summarize(ctx context.Context, scope domain.Scope, days int, fillZero bool) (*domain.AnalyticsSummary, error)
}

// AnalyticsHandler обработчик аналитики
type AnalyticsHandler struct {
	summaries   Summarizer
	urls        URLResolver
	defaultDays int
	log         *zap.Logger
}

// NewAnalyticsHandler создает обработчик аналитики
func NewAnalyticsHandler(summaries Summarizer, urls URLResolver, defaultDays int, log *zap.Logger) *AnalyticsHandler {
	if defaultDays <= 0 {
		defaultDays = 30
	}
	return &AnalyticsHandler{
		summaries:   summaries,
		urls:        urls,
		defaultDays: defaultDays,
		log:         log,
	}
}

// URLAnalyticsResponse сводка по одной ссылке
type URLAnalyticsResponse struct {
	ShortCode   string `json:"short_code"`
	OriginalURL string `json:"original_url"`
	*domain.AnalyticsSummary
}

// Global сводка по всем ссылкам
//
//	@Summary	Global analytics
//	@Tags		Analytics
//	@Produce	json
//	@Param		days		query		int		false	"Window in days"	default(30)	minimum(1)	maximum(365)
//	@Param		fill_zero	query		bool	false	"Include days without clicks"
//	@Success	200			{object}	domain.AnalyticsSummary
//	@Failure	400			{object}	ErrorResponse
//	@Router		/api/v1/analytics/global [get]
func (h *AnalyticsHandler) Global(w http.ResponseWriter, r *http.Request) {
	h.summarize(w, r, domain.GlobalScope())
}

// ForURL сводка по одной короткой ссылке
//
//	@Summary	URL analytics
//	@Tags		Analytics
//	@Produce	json
//	@Param		short_code	path		string	true	"Short code"
//	@Param		days		query		int		false	"Window in days"	default(30)	minimum(1)	maximum(365)
//	@Param		fill_zero	query		bool	false	"Include days without clicks"
//	@Success	200			{object}	URLAnalyticsResponse
//	@Failure	400			{object}	ErrorResponse
//	@Failure	404			{object}	ErrorResponse
//	@Router		/api/v1/analytics/{short_code} [get]
func (h *AnalyticsHandler) ForURL(w http.ResponseWriter, r *http.Request) {
	days, fillZero, ok := h.windowParams(w, r)
	if !ok {
		return
	}

	url, err := h.urls.Resolve(r.Context(), chi.URLParam(r, "short_code"))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	summary, err := h.summaries.Summarize(r.Context(), domain.URLScope(url.ID), days, fillZero)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, URLAnalyticsResponse{
		ShortCode:        url.ShortCode,
		OriginalURL:      url.OriginalURL,
		AnalyticsSummary: summary,
	}, http.StatusOK)
}

// ForUser сводка по ссылкам текущего пользователя
//
//	@Summary	Analytics of the current user's URLs
//	@Tags		User URLs
//	@Produce	json
//	@Security	BearerAuth
//	@Param		days		query		int		false	"Window in days"	default(30)
//	@Param		fill_zero	query		bool	false	"Include days without clicks"
//	@Success	200			{object}	domain.AnalyticsSummary
//	@Failure	401			{object}	ErrorResponse
//	@Router		/api/v1/user/analytics [get]
func (h *AnalyticsHandler) ForUser(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		auth.WriteUnauthorized(w)
		return
	}
	h.summarize(w, r, domain.OwnerScope(user.ID))
}

func (h *AnalyticsHandler) summarize(w http.ResponseWriter, r *http.Request, scope domain.Scope) {
	days, fillZero, ok := h.windowParams(w, r)
	if !ok {
		return
	}

	summary, err := h.summaries.Summarize(r.Context(), scope, days, fillZero)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, summary, http.StatusOK)
}

func (h *AnalyticsHandler) windowParams(w http.ResponseWriter, r *http.Request) (int, bool, bool) {
	days, okDays := queryInt(r, "days", h.defaultDays)
	fillZero, okFill := queryBool(r, "fill_zero")

	fields := map[string]string{}
	if !okDays {
		fields["days"] = "must be an integer"
	}
	if !okFill {
		fields["fill_zero"] = "must be a boolean"
	}
	if len(fields) > 0 {
		writeValidation(w, fields)
		return 0, false, false
	}
	return days, fillZero, true
}
