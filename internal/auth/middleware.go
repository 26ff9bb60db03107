package auth

import (
	"Shortlink-Backend/internal/domain"
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// contextKey тип для ключей контекста
type contextKey struct{}

var userKey = contextKey{}

// Middleware JWT middleware для HTTP обработчиков
type Middleware struct {
	gate *Gate
	log  *zap.Logger
}

// NewMiddleware создает новый JWT middleware
func NewMiddleware(gate *Gate, log *zap.Logger) *Middleware {
	return &Middleware{
		gate: gate,
		log:  log,
	}
}

// RequireAuth пропускает запрос только с валидным bearer токеном и кладет
// пользователя в контекст.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ExtractTokenFromBearer(r.Header.Get("Authorization"))

		user, err := m.gate.Authenticate(r.Context(), token)
		if err != nil {
			WriteUnauthorized(w)
			return
		}

		m.log.Debug("authenticated user",
			zap.Int64("user_id", user.ID),
			zap.String("username", user.Username))

		next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
	})
}

// ContextWithUser возвращает контекст с аутентифицированным пользователем
func ContextWithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext извлекает пользователя из контекста
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userKey).(*domain.User)
	return user, ok && user != nil
}

// WriteUnauthorized отвечает 401 с заголовком WWW-Authenticate
func WriteUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeError(w, "Could not validate credentials", http.StatusUnauthorized)
}

// CORS middleware для обработки CORS запросов
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowAll := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		o = strings.TrimSpace(o)
		if o == "*" {
			allowAll = true
		}
		allowed[o] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" {
				if _, ok := allowed[origin]; ok || allowAll {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Access-Control-Allow-Credentials", "true")
					w.Header().Add("Vary", "Origin")
				}
			}

			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization")

			// Обработка preflight OPTIONS запросов
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
