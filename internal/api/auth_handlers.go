package api

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/example/inventory-keeper/internal/api/middleware"
	"github.com/example/inventory-keeper/internal/auth"
	"github.com/example/inventory-keeper/internal/infrastructure/store"
	"github.com/example/inventory-keeper/internal/model"
)

// AuthHandlers handles registration, login and session refresh.
type AuthHandlers struct {
	store  store.RecordStore
	tokens *auth.TokenService
}

// NewAuthHandlers creates a new AuthHandlers instance
func NewAuthHandlers(recordStore store.RecordStore, tokens *auth.TokenService) *AuthHandlers {
	return &AuthHandlers{store: recordStore, tokens: tokens}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse represents user data in responses
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	User    UserResponse `json:"user"`
	Message string       `json:"message,omitempty"`
}

// Register handles user registration
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "入力データが正しくありません", http.StatusBadRequest)
		return
	}

	var details []FieldError
	if _, err := mail.ParseAddress(req.Email); err != nil {
		details = append(details, FieldError{Field: "email", Message: "正しいメールアドレスを入力してください"})
	}
	if req.Name == "" {
		details = append(details, FieldError{Field: "name", Message: "名前は必須です"})
	}
	if len(details) > 0 {
		respondValidationError(w, details)
		return
	}

	if _, err := h.store.GetUserByEmail(r.Context(), req.Email); err == nil {
		respondError(w, "このメールアドレスは既に登録されています", http.StatusConflict)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		if err == auth.ErrPasswordTooShort {
			respondValidationError(w, []FieldError{
				{Field: "password", Message: "パスワードは8文字以上で入力してください"},
			})
			return
		}
		respondError(w, "サーバーエラーが発生しました", http.StatusInternalServerError)
		return
	}

	user, err := h.store.CreateUser(r.Context(), &model.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
	})
	if err != nil {
		respondError(w, "サーバーエラーが発生しました", http.StatusInternalServerError)
		return
	}

	h.setAuthCookies(w, r, user)

	respondJSON(w, http.StatusCreated, AuthResponse{
		User:    toUserResponse(user),
		Message: "登録が完了しました",
	})
}

// Login handles user login
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "入力データが正しくありません", http.StatusBadRequest)
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil || !auth.CheckPassword(req.Password, user.PasswordHash) {
		respondError(w, "メールアドレスまたはパスワードが正しくありません", http.StatusUnauthorized)
		return
	}

	h.setAuthCookies(w, r, user)

	respondJSON(w, http.StatusOK, AuthResponse{
		User:    toUserResponse(user),
		Message: "ログインしました",
	})
}

// Logout clears the caller's sessions and cookies.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if claims, ok := middleware.GetUserFromContext(r.Context()); ok {
		// Best effort; cookies are cleared regardless.
		_ = h.store.DeleteSessionsByUser(r.Context(), claims.UserID)
	}

	h.clearAuthCookies(w)

	respondJSON(w, http.StatusOK, map[string]string{"message": "ログアウトしました"})
}

// Refresh rotates the session: validates the refresh token against the
// stored hash, drops the old session and issues fresh cookies.
func (h *AuthHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshCookie, err := r.Cookie("refresh_token")
	if err != nil {
		respondError(w, "認証が必要です", http.StatusUnauthorized)
		return
	}

	sessionCookie, err := r.Cookie("session_id")
	if err != nil {
		h.clearAuthCookies(w)
		respondError(w, "認証が必要です", http.StatusUnauthorized)
		return
	}

	userID, err := h.tokens.ValidateRefreshToken(refreshCookie.Value)
	if err != nil {
		h.clearAuthCookies(w)
		respondError(w, "認証が必要です", http.StatusUnauthorized)
		return
	}

	session, err := h.store.GetSession(r.Context(), sessionCookie.Value)
	if err != nil {
		h.clearAuthCookies(w)
		respondError(w, "認証が必要です", http.StatusUnauthorized)
		return
	}

	if time.Now().After(session.ExpiresAt) ||
		session.UserID != userID ||
		auth.HashToken(refreshCookie.Value) != session.RefreshTokenHash {
		h.clearAuthCookies(w)
		respondError(w, "認証が必要です", http.StatusUnauthorized)
		return
	}

	user, err := h.store.GetUser(r.Context(), userID)
	if err != nil {
		h.clearAuthCookies(w)
		respondError(w, "認証が必要です", http.StatusUnauthorized)
		return
	}

	_ = h.store.DeleteSessionsByUser(r.Context(), userID)
	h.setAuthCookies(w, r, user)

	respondJSON(w, http.StatusOK, map[string]string{"message": "トークンを更新しました"})
}

// Me returns the current authenticated user's information
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		respondError(w, "認証が必要です", http.StatusUnauthorized)
		return
	}

	user, err := h.store.GetUser(r.Context(), claims.UserID)
	if err != nil {
		respondError(w, "ユーザーが見つかりません", http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, toUserResponse(user))
}

func toUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}

func (h *AuthHandlers) setAuthCookies(w http.ResponseWriter, r *http.Request, user *model.User) {
	accessToken, accessExpiry, _ := h.tokens.IssueAccessToken(user.ID, user.Email, user.Name)
	refreshToken, refreshExpiry, _ := h.tokens.IssueRefreshToken(user.ID)

	sessionID := uuid.New().String()
	_ = h.store.SaveSession(r.Context(), &model.Session{
		ID:               sessionID,
		UserID:           user.ID,
		RefreshTokenHash: auth.HashToken(refreshToken),
		UserAgent:        r.UserAgent(),
		IPAddress:        r.RemoteAddr,
		ExpiresAt:        refreshExpiry,
		CreatedAt:        time.Now(),
	})

	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		Path:     "/",
		Expires:  accessExpiry,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})

	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		Path:     "/api/auth/refresh",
		Expires:  refreshExpiry,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})

	http.SetCookie(w, &http.Cookie{
		Name:     "session_id",
		Value:    sessionID,
		Path:     "/",
		Expires:  refreshExpiry,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandlers) clearAuthCookies(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    "",
		Path:     "/api/auth/refresh",
		MaxAge:   -1,
		HttpOnly: true,
	})

	http.SetCookie(w, &http.Cookie{
		Name:     "session_id",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
