package http

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Version задается при сборке через -ldflags
var Version = "dev"

var startTime = time.Now()

// Pinger проверяет доступность хранилища
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatsProvider отдает состояние фоновой обработки
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// HealthHandler обработчик health checks
type HealthHandler struct {
	db        Pinger
	processor StatsProvider
	log       *zap.Logger
}

// NewHealthHandler создает новый health handler. processor может быть nil.
func NewHealthHandler(db Pinger, processor StatsProvider, log *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:        db,
		processor: processor,
		log:       log,
	}
}

// HealthResponse структура ответа health check
type HealthResponse struct {
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
	Version        string    `json:"version"`
	DatabaseStatus string    `json:"database_status"`
	Uptime         string    `json:"uptime,omitempty"`
}

// ReadyResponse структура ответа readiness check
type ReadyResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Analytics map[string]interface{} `json:"analytics,omitempty"`
}

// Health основной health check endpoint
//
//	@Summary	Health check
//	@Tags		System
//	@Produce	json
//	@Success	200	{object}	HealthResponse
//	@Failure	503	{object}	HealthResponse
//	@Router		/health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	dbStatus := "healthy"
	if err := h.ping(r.Context()); err != nil {
		dbStatus = "unhealthy"
		h.log.Error("database health check failed", zap.Error(err))
	}

	status, code := "healthy", http.StatusOK
	if dbStatus != "healthy" {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	writeJSON(w, HealthResponse{
		Status:         status,
		Timestamp:      time.Now().UTC(),
		Version:        Version,
		DatabaseStatus: dbStatus,
		Uptime:         time.Since(startTime).Round(time.Second).String(),
	}, code)
}

// Ready readiness check endpoint
//
//	@Summary	Readiness check
//	@Tags		System
//	@Produce	json
//	@Success	200	{object}	ReadyResponse
//	@Failure	503	{object}	ReadyResponse
//	@Router		/ready [get]
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	resp := ReadyResponse{Status: "ready", Timestamp: time.Now().UTC()}
	code := http.StatusOK

	if err := h.ping(r.Context()); err != nil {
		h.log.Warn("readiness check failed", zap.Error(err))
		resp.Status = "not ready"
		code = http.StatusServiceUnavailable
	}
	if h.processor != nil {
		resp.Analytics = h.processor.GetStats()
	}

	writeJSON(w, resp, code)
}

func (h *HealthHandler) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return h.db.Ping(ctx)
}
