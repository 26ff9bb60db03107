package auth

import (
	"Shortlink-Backend/internal/domain"
	"Shortlink-Backend/internal/repository"
	"Shortlink-Backend/internal/validation"
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

const meURLsLimit = 100

// Accounts операции над ссылками и аккаунтом пользователя
type Accounts interface {
	ListForOwner(ctx context.Context, ownerID int64, offset, limit int) ([]*domain.URL, int64, error)
	DeleteAccount(ctx context.Context, userID int64) error
}

// AuthHandlers обработчики аутентификации
type AuthHandlers struct {
	users           repository.UserStorage
	accounts        Accounts
	jwtService      *JWTService
	passwordService *PasswordService
	validator       *validation.Validator
	log             *zap.Logger
}

// NewAuthHandlers создает новые обработчики аутентификации
func NewAuthHandlers(users repository.UserStorage, accounts Accounts, jwtService *JWTService, passwordService *PasswordService, log *zap.Logger) *AuthHandlers {
	return &AuthHandlers{
		users:           users,
		accounts:        accounts,
		jwtService:      jwtService,
		passwordService: passwordService,
		validator:       validation.New(),
		log:             log,
	}
}

// RegisterRequest структура запроса регистрации
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,username_chars,not_reserved" example:"alice"`
	Email    string `json:"email" validate:"required,email,max=100" example:"alice@example.com"`
	Password string `json:"password" validate:"required,min=8,max_bytes=72,password_strength" example:"Secret1!"`
}

// LoginRequest структура запроса входа. В username можно передать email.
type LoginRequest struct {
	Username string `json:"username" example:"alice"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password" example:"Secret1!"`
}

// TokenResponse структура ответа с токеном
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type" example:"bearer"`
	ExpiresIn   int64  `json:"expires_in" example:"1800"`
}

// UserWithURLs профиль пользователя со списком ссылок
type UserWithURLs struct {
	*domain.User
	URLs []domain.URL `json:"urls"`
}

// ErrorResponse структура ошибки
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Register обработчик регистрации
//
//	@Summary		Register a new user
//	@Description	Create a new user account
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RegisterRequest	true	"Registration request"
//	@Success		201		{object}	domain.User		"User registered successfully"
//	@Failure		400		{object}	ErrorResponse	"Invalid request data"
//	@Failure		409		{object}	ErrorResponse	"User already exists"
//	@Router			/api/v1/auth/register [post]
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("invalid registration request", zap.Error(err))
		writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if fields := h.validator.Struct(req); fields != nil {
		writeJSON(w, ErrorResponse{Error: "validation failed", Fields: fields}, http.StatusBadRequest)
		return
	}

	hashedPassword, err := h.passwordService.HashPassword(req.Password)
	if errors.Is(err, ErrInvalidPassword) {
		writeJSON(w, ErrorResponse{
			Error:  "validation failed",
			Fields: map[string]string{"password": "must be at most 72 bytes"},
		}, http.StatusBadRequest)
		return
	}
	if err != nil {
		h.log.Error("failed to hash password", zap.Error(err))
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	user := &domain.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashedPassword,
	}
	if err := h.users.CreateUser(r.Context(), user); err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameTaken):
			writeError(w, "Username already registered", http.StatusConflict)
		case errors.Is(err, repository.ErrEmailTaken):
			writeError(w, "Email already registered", http.StatusConflict)
		default:
			h.log.Error("failed to create user", zap.String("username", req.Username), zap.Error(err))
			writeError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	h.log.Info("user registered successfully", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	writeJSON(w, user, http.StatusCreated)
}

// Login обработчик входа
//
//	@Summary		Login user
//	@Description	Authenticate by username or email and receive a bearer token. Accepts JSON or form data.
//	@Tags			Authentication
//	@Accept			json
//	@Accept			x-www-form-urlencoded
//	@Produce		json
//	@Param			request	body		LoginRequest	true	"Login request"
//	@Success		200		{object}	TokenResponse	"Login successful"
//	@Failure		400		{object}	ErrorResponse	"Invalid request data"
//	@Failure		401		{object}	ErrorResponse	"Invalid credentials"
//	@Router			/api/v1/auth/login [post]
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	req, err := decodeLogin(r)
	if err != nil {
		h.log.Debug("invalid login request", zap.Error(err))
		writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	login := strings.TrimSpace(req.Username)
	if login == "" {
		login = strings.TrimSpace(req.Email)
	}
	if strings.Contains(login, "@") {
		login = strings.ToLower(login)
	}

	fields := map[string]string{}
	if login == "" {
		fields["username"] = "is required"
	}
	if req.Password == "" {
		fields["password"] = "is required"
	}
	if len(fields) > 0 {
		writeJSON(w, ErrorResponse{Error: "validation failed", Fields: fields}, http.StatusBadRequest)
		return
	}

	user, err := h.users.GetUserByLogin(r.Context(), login)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			h.log.Error("failed to load user for login", zap.Error(err))
			writeError(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		h.passwordService.SimulateVerify(req.Password)
		h.log.Debug("user not found for login", zap.String("login", login))
		h.writeBadCredentials(w)
		return
	}

	if err := h.passwordService.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		h.log.Debug("invalid password for user", zap.Int64("user_id", user.ID))
		h.writeBadCredentials(w)
		return
	}

	accessToken, err := h.jwtService.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		h.log.Error("failed to generate access token", zap.Error(err))
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.log.Info("user logged in successfully", zap.Int64("user_id", user.ID))
	writeJSON(w, TokenResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
		ExpiresIn:   int64(h.jwtService.AccessTokenTTL().Seconds()),
	}, http.StatusOK)
}

// Me возвращает профиль текущего пользователя
//
//	@Summary	Current user
//	@Tags		Authentication
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	domain.User
//	@Failure	401	{object}	ErrorResponse
//	@Router		/api/v1/auth/me [get]
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		WriteUnauthorized(w)
		return
	}
	writeJSON(w, user, http.StatusOK)
}

// MeWithURLs возвращает профиль вместе с последними ссылками
//
//	@Summary	Current user with URLs
//	@Tags		Authentication
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	UserWithURLs
//	@Failure	401	{object}	ErrorResponse
//	@Router		/api/v1/auth/me/urls [get]
func (h *AuthHandlers) MeWithURLs(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		WriteUnauthorized(w)
		return
	}

	urls, _, err := h.accounts.ListForOwner(r.Context(), user.ID, 0, meURLsLimit)
	if err != nil {
		h.log.Error("failed to list user urls", zap.Int64("user_id", user.ID), zap.Error(err))
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	profile := UserWithURLs{User: user, URLs: make([]domain.URL, 0, len(urls))}
	for _, u := range urls {
		profile.URLs = append(profile.URLs, *u)
	}
	writeJSON(w, profile, http.StatusOK)
}

// DeleteMe удаляет аккаунт со всеми ссылками
//
//	@Summary	Delete current user
//	@Tags		Authentication
//	@Security	BearerAuth
//	@Success	204
//	@Failure	401	{object}	ErrorResponse
//	@Router		/api/v1/auth/me [delete]
func (h *AuthHandlers) DeleteMe(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		WriteUnauthorized(w)
		return
	}

	if err := h.accounts.DeleteAccount(r.Context(), user.ID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			WriteUnauthorized(w)
			return
		}
		h.log.Error("failed to delete account", zap.Int64("user_id", user.ID), zap.Error(err))
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandlers) writeBadCredentials(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeError(w, "Incorrect username/email or password", http.StatusUnauthorized)
}

// decodeLogin читает учетные данные из JSON или из формы
func decodeLogin(r *http.Request) (LoginRequest, error) {
	var req LoginRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseMultipartForm(1 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return req, err
		}
		req.Username = r.FormValue("username")
		req.Email = r.FormValue("email")
		req.Password = r.FormValue("password")
		return req, nil
	default:
		err := json.NewDecoder(r.Body).Decode(&req)
		return req, err
	}
}

// Helper methods

func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, ErrorResponse{Error: message}, statusCode)
}
