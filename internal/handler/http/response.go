package http

import (
	"Shortlink-Backend/internal/analytics"
	"Shortlink-Backend/internal/repository"
	"Shortlink-Backend/internal/service"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

// ErrorResponse структура ошибки
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, ErrorResponse{Error: message}, statusCode)
}

func writeValidation(w http.ResponseWriter, fields map[string]string) {
	writeJSON(w, ErrorResponse{Error: "validation failed", Fields: fields}, http.StatusBadRequest)
}

func writeNotFound(w http.ResponseWriter) {
	writeError(w, "URL not found", http.StatusNotFound)
}

// writeServiceError переводит ошибки сервисов в HTTP ответы
func writeServiceError(w http.ResponseWriter, log *zap.Logger, err error) {
	var verr *service.ValidationError

	switch {
	case errors.As(err, &verr):
		writeValidation(w, verr.Fields)
	case errors.Is(err, repository.ErrURLNotFound):
		writeNotFound(w)
	case errors.Is(err, analytics.ErrInvalidDays):
		writeValidation(w, map[string]string{"days": err.Error()})
	case errors.Is(err, service.ErrGenerationExhausted):
		log.Error("short code space exhausted", zap.Error(err))
		writeError(w, "Could not allocate a short code, try again later", http.StatusServiceUnavailable)
	default:
		log.Error("request failed", zap.Error(err))
		writeError(w, "Internal server error", http.StatusInternalServerError)
	}
}

// decodeJSON читает тело запроса, отвечая 400 при неверном формате
func decodeJSON(w http.ResponseWriter, r *http.Request, log *zap.Logger, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.Debug("invalid request body", zap.Error(err))
		writeError(w, "Invalid request format", http.StatusBadRequest)
		return false
	}
	return true
}

// queryInt возвращает числовой параметр запроса или def, если он не задан
func queryInt(r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func queryBool(r *http.Request, name string) (bool, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
