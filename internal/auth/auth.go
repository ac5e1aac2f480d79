package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/ztoursph/booking-api/internal/config"
	"github.com/ztoursph/booking-api/internal/models"
)

const (
	CookieName      = "auth_token"
	StateCookieName = "oauth_state"
	APIKeyHeader    = "X-API-KEY"
	TokenDuration   = 24 * time.Hour
)

var ErrUnauthorized = errors.New("unauthorized")

type AuthHandler struct {
	oauthConfig *oauth2.Config
	db          *gorm.DB
	cfg         *config.Config
}

func NewAuthHandler(cfg *config.Config, db *gorm.DB) *AuthHandler {
	return &AuthHandler{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.OAuthClientID,
			ClientSecret: cfg.OAuthClientSecret,
			RedirectURL:  cfg.OAuthRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.OAuthAuthURL,
				TokenURL: cfg.OAuthTokenURL,
			},
		},
		db:  db,
		cfg: cfg,
	}
}

// AuthInput carries the credentials an operator can present: the session
// cookie or an API key.
type AuthInput struct {
	Cookie string `header:"Cookie"`
	APIKey string `header:"X-API-KEY"`
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		http.Error(w, "Failed to start login", http.StatusInternalServerError)
		return
	}
	state := hex.EncodeToString(buf)
	http.SetCookie(w, &http.Cookie{
		Name:     StateCookieName,
		Value:    state,
		Expires:  time.Now().Add(10 * time.Minute),
		HttpOnly: true,
		Path:     "/",
	})
	url := h.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOnline)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

type userInfo struct {
	Subject string `json:"sub"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Code not found", http.StatusBadRequest)
		return
	}
	state, err := r.Cookie(StateCookieName)
	if err != nil || state.Value == "" || state.Value != r.URL.Query().Get("state") {
		http.Error(w, "Invalid login state", http.StatusBadRequest)
		return
	}

	token, err := h.oauthConfig.Exchange(r.Context(), code)
	if err != nil {
		http.Error(w, "Failed to exchange token", http.StatusInternalServerError)
		return
	}

	client := h.oauthConfig.Client(r.Context(), token)
	resp, err := client.Get(h.cfg.OAuthUserInfoURL)
	if err != nil {
		http.Error(w, "Failed to get user info", http.StatusInternalServerError)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		http.Error(w, "Failed to get user info", http.StatusBadGateway)
		return
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil || info.Subject == "" {
		http.Error(w, "Failed to decode user info", http.StatusInternalServerError)
		return
	}

	var operator models.Operator
	if err := h.db.WithContext(r.Context()).FirstOrInit(&operator, models.Operator{Subject: info.Subject}).Error; err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	operator.Name = info.Name
	operator.Email = info.Email
	operator.Avatar = info.Picture

	if err := h.db.WithContext(r.Context()).Save(&operator).Error; err != nil {
		http.Error(w, "Failed to save operator", http.StatusInternalServerError)
		return
	}

	jwtToken, err := h.GenerateToken(operator.ID)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{Name: StateCookieName, Value: "", MaxAge: -1, Path: "/"})
	http.SetCookie(w, h.sessionCookie(jwtToken))
	http.Redirect(w, r, h.cfg.FrontendURL, http.StatusFound)
}

func (h *AuthHandler) sessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Expires:  time.Now().Add(TokenDuration),
		HttpOnly: true,
		Path:     "/",
	}
}

func (h *AuthHandler) GenerateToken(operatorID uint) (string, error) {
	claims := jwt.MapClaims{
		"operator_id": operatorID,
		"exp":         time.Now().Add(TokenDuration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.JWTSecret))
}

// parseToken returns the operator id in a session token and its expiry.
func (h *AuthHandler) parseToken(tokenString string) (uint, time.Time, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(h.cfg.JWTSecret), nil
	}, jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return 0, time.Time{}, fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, time.Time{}, fmt.Errorf("%w: invalid token claims", ErrUnauthorized)
	}
	id, ok := claims["operator_id"].(float64)
	if !ok {
		return 0, time.Time{}, fmt.Errorf("%w: invalid token claims", ErrUnauthorized)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return 0, time.Time{}, fmt.Errorf("%w: invalid token claims", ErrUnauthorized)
	}
	return uint(id), exp.Time, nil
}

// operatorForKey resolves an API key, stamping its last use.
func (h *AuthHandler) operatorForKey(ctx context.Context, key string) (uint, error) {
	if h.db == nil {
		return 0, fmt.Errorf("%w: api keys unavailable", ErrUnauthorized)
	}
	var keyModel models.APIKey
	if err := h.db.WithContext(ctx).Where(&models.APIKey{Key: key}).First(&keyModel).Error; err != nil {
		return 0, fmt.Errorf("%w: unknown api key", ErrUnauthorized)
	}
	now := time.Now()
	if keyModel.ExpiresAt != nil && now.After(*keyModel.ExpiresAt) {
		return 0, fmt.Errorf("%w: api key expired", ErrUnauthorized)
	}
	h.db.WithContext(ctx).Model(&keyModel).Update("last_used_at", now)
	return keyModel.OperatorID, nil
}

// Authorize resolves the operator behind input. An operator already placed in
// ctx by AuthMiddleware wins, then the API key, then the session cookie.
func (h *AuthHandler) Authorize(ctx context.Context, input *AuthInput) (uint, error) {
	if id, ok := OperatorID(ctx); ok {
		return id, nil
	}
	if input == nil {
		return 0, huma.Error401Unauthorized("Unauthorized: No token found")
	}
	if input.APIKey != "" {
		id, err := h.operatorForKey(ctx, input.APIKey)
		if err != nil {
			return 0, huma.Error401Unauthorized("Unauthorized: Invalid API key")
		}
		return id, nil
	}

	cookies, err := http.ParseCookie(input.Cookie)
	if err != nil {
		return 0, huma.Error401Unauthorized("Unauthorized: No token found")
	}
	for _, c := range cookies {
		if c.Name != CookieName {
			continue
		}
		id, _, err := h.parseToken(c.Value)
		if err != nil {
			return 0, huma.Error401Unauthorized("Unauthorized: Invalid token")
		}
		return id, nil
	}
	return 0, huma.Error401Unauthorized("Unauthorized: No token found")
}

type MeOutput struct {
	Body struct {
		ID     uint   `json:"id"`
		Name   string `json:"name"`
		Email  string `json:"email"`
		Avatar string `json:"avatar"`
	}
}

func (h *AuthHandler) HandleMe(ctx context.Context, input *AuthInput) (*MeOutput, error) {
	operatorID, err := h.Authorize(ctx, input)
	if err != nil {
		return nil, err
	}

	var operator models.Operator
	if err := h.db.WithContext(ctx).First(&operator, operatorID).Error; err != nil {
		return nil, huma.Error404NotFound("Operator not found")
	}

	resp := &MeOutput{}
	resp.Body.ID = operator.ID
	resp.Body.Name = operator.Name
	resp.Body.Email = operator.Email
	resp.Body.Avatar = operator.Avatar
	return resp, nil
}
