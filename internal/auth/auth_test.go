package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ztoursph/booking-api/internal/config"
	"github.com/ztoursph/booking-api/internal/models"
)

func newDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.Operator{}, &models.APIKey{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestHandleMe(t *testing.T) {
	db := newDB(t)

	operator := models.Operator{
		Subject: "123456",
		Name:    "Jeo Invento",
		Email:   "ops@example.com",
		Avatar:  "avatar_url",
	}
	db.Create(&operator)

	cfg := &config.Config{JWTSecret: "test-secret"}
	handler := NewAuthHandler(cfg, db)

	t.Run("Authenticated", func(t *testing.T) {
		token, _ := handler.GenerateToken(operator.ID)
		input := &AuthInput{
			Cookie: "theme=dark; auth_token=" + token,
		}
		resp, err := handler.HandleMe(context.Background(), input)
		if err != nil {
			t.Fatalf("HandleMe returned error: %v", err)
		}

		if resp.Body.Name != operator.Name {
			t.Errorf("expected name %s, got %s", operator.Name, resp.Body.Name)
		}
		if resp.Body.Email != operator.Email {
			t.Errorf("expected email %s, got %s", operator.Email, resp.Body.Email)
		}
	})

	t.Run("APIKey", func(t *testing.T) {
		key := models.APIKey{OperatorID: operator.ID, Key: "k-valid", Name: "scraper"}
		db.Create(&key)

		resp, err := handler.HandleMe(context.Background(), &AuthInput{APIKey: "k-valid"})
		if err != nil {
			t.Fatalf("HandleMe returned error: %v", err)
		}
		if resp.Body.ID != operator.ID {
			t.Errorf("expected operator %d, got %d", operator.ID, resp.Body.ID)
		}

		var stored models.APIKey
		db.First(&stored, key.ID)
		if stored.LastUsedAt == nil {
			t.Errorf("expected last_used_at to be stamped")
		}
	})

	t.Run("ExpiredAPIKey", func(t *testing.T) {
		past := time.Now().Add(-time.Hour)
		db.Create(&models.APIKey{OperatorID: operator.ID, Key: "k-expired", ExpiresAt: &past})

		if _, err := handler.HandleMe(context.Background(), &AuthInput{APIKey: "k-expired"}); err == nil {
			t.Fatal("expected error for expired api key, got nil")
		}
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		input := &AuthInput{}
		_, err := handler.HandleMe(context.Background(), input)
		if err == nil {
			t.Fatal("expected error for unauthenticated request, got nil")
		}
	})

	t.Run("ForgedToken", func(t *testing.T) {
		other := NewAuthHandler(&config.Config{JWTSecret: "other-secret"}, db)
		token, _ := other.GenerateToken(operator.ID)
		if _, err := handler.HandleMe(context.Background(), &AuthInput{Cookie: "auth_token=" + token}); err == nil {
			t.Fatal("expected error for token signed with another secret, got nil")
		}
	})
}

func TestOAuthCallback(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/token":
			json.NewEncoder(w).Encode(map[string]any{
				"access_token": "provider-token",
				"token_type":   "Bearer",
				"expires_in":   3600,
			})
		case "/userinfo":
			if r.Header.Get("Authorization") != "Bearer provider-token" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(map[string]string{
				"sub":     "sub-42",
				"name":    "Jeo Invento",
				"email":   "ops@example.com",
				"picture": "https://example.com/a.png",
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer provider.Close()

	db := newDB(t)
	cfg := &config.Config{
		JWTSecret:        "test-secret",
		OAuthClientID:    "client",
		OAuthRedirectURL: "http://localhost/auth/callback",
		OAuthAuthURL:     provider.URL + "/auth",
		OAuthTokenURL:    provider.URL + "/token",
		OAuthUserInfoURL: provider.URL + "/userinfo",
		FrontendURL:      "http://localhost:4000/",
	}
	handler := NewAuthHandler(cfg, db)

	t.Run("Login", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.HandleLogin(rr, httptest.NewRequest(http.MethodGet, "/auth/login", nil))
		if rr.Code != http.StatusTemporaryRedirect {
			t.Fatalf("expected redirect, got %d", rr.Code)
		}
		loc, err := url.Parse(rr.Header().Get("Location"))
		if err != nil {
			t.Fatalf("bad redirect: %v", err)
		}
		var state string
		for _, c := range rr.Result().Cookies() {
			if c.Name == StateCookieName {
				state = c.Value
			}
		}
		if state == "" || loc.Query().Get("state") != state {
			t.Errorf("expected state cookie to match redirect state")
		}
	})

	t.Run("StateMismatch", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=abc&state=one", nil)
		req.AddCookie(&http.Cookie{Name: StateCookieName, Value: "two"})
		rr := httptest.NewRecorder()
		handler.HandleCallback(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("CreatesOperator", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=abc&state=s1", nil)
		req.AddCookie(&http.Cookie{Name: StateCookieName, Value: "s1"})
		rr := httptest.NewRecorder()
		handler.HandleCallback(rr, req)
		if rr.Code != http.StatusFound {
			t.Fatalf("expected 302, got %d: %s", rr.Code, rr.Body.String())
		}

		var operator models.Operator
		if err := db.Where("subject = ?", "sub-42").First(&operator).Error; err != nil {
			t.Fatalf("operator not stored: %v", err)
		}
		if operator.Email != "ops@example.com" {
			t.Errorf("expected email to be stored, got %q", operator.Email)
		}

		var session string
		for _, c := range rr.Result().Cookies() {
			if c.Name == CookieName {
				session = c.Value
			}
		}
		id, _, err := handler.parseToken(session)
		if err != nil || id != operator.ID {
			t.Errorf("expected session for operator %d, got %d (%v)", operator.ID, id, err)
		}
	})
}
