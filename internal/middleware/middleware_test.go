package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"fintrack/internal/config"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
	config.Set(&config.Config{JWTSecret: "test-secret", JWTExpirationDur: time.Hour})
}

func serve(r *gin.Engine, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, http.NoBody)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response body: %v", err)
	}
	return result
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	errObj, ok := parseBody(t, rec)["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got %s", rec.Body.String())
	}
	code, _ := errObj["code"].(string)
	return code
}

func setupAuthRouter() *gin.Engine {
	r := gin.New()
	users := r.Group("/users/:user_id", AuthMiddleware(), RequireSelf("user_id"))
	users.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.MustGet(userIDKey)})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	token, err := GenerateToken(&models.User{Base: models.Base{ID: 7}, Username: "alice"})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &JWTClaims{
		UserID: 7,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	expiredToken, _ := expired.SignedString(getJWTKey())

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, &JWTClaims{UserID: 7, RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer}})
	foreignToken, _ := foreign.SignedString([]byte("other-secret"))

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
		wantCode   string
	}{
		{"valid_token", "/users/7/ping", "Bearer " + token, http.StatusOK, ""},
		{"lowercase_scheme", "/users/7/ping", "bearer " + token, http.StatusOK, ""},
		{"missing_header", "/users/7/ping", "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"wrong_scheme", "/users/7/ping", "Basic " + token, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"expired_token", "/users/7/ping", "Bearer " + expiredToken, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"foreign_signature", "/users/7/ping", "Bearer " + foreignToken, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"other_user", "/users/8/ping", "Bearer " + token, http.StatusForbidden, "FORBIDDEN"},
		{"bad_user_id", "/users/abc/ping", "Bearer " + token, http.StatusBadRequest, "INVALID_INPUT"},
	}

	r := setupAuthRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := map[string]string{}
			if tt.header != "" {
				header["Authorization"] = tt.header
			}
			rec := serve(r, http.MethodGet, tt.path, header)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantCode != "" {
				if code := errorCode(t, rec); code != tt.wantCode {
					t.Errorf("error code = %q, want %q", code, tt.wantCode)
				}
			}
		})
	}
}

func TestParseToken_Subject(t *testing.T) {
	token, err := GenerateToken(&models.User{Base: models.Base{ID: 42}, Username: "bob"})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Subject != "42" || claims.UserID != 42 || claims.Username != "bob" {
		t.Errorf("unexpected claims %+v", claims)
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.Sub(time.Now()) > time.Hour {
		t.Errorf("expected expiry within an hour, got %v", claims.ExpiresAt)
	}
}

func TestAdminAuthMiddleware(t *testing.T) {
	tests := []struct {
		name          string
		configuredKey string
		requestKey    string
		wantStatus    int
		wantErrorCode string
	}{
		{
			name:          "valid_api_key",
			configuredKey: "secret-admin-key",
			requestKey:    "secret-admin-key",
			wantStatus:    http.StatusOK,
		},
		{
			name:          "invalid_api_key",
			configuredKey: "secret-admin-key",
			requestKey:    "wrong-key",
			wantStatus:    http.StatusUnauthorized,
			wantErrorCode: "INVALID_API_KEY",
		},
		{
			name:          "missing_api_key",
			configuredKey: "secret-admin-key",
			wantStatus:    http.StatusUnauthorized,
			wantErrorCode: "INVALID_API_KEY",
		},
		{
			name:          "empty_configured_key",
			configuredKey: "",
			requestKey:    "any-key",
			wantStatus:    http.StatusServiceUnavailable,
			wantErrorCode: "ADMIN_NOT_CONFIGURED",
		},
		{
			name:          "partial_match_rejected",
			configuredKey: "secret-admin-key",
			requestKey:    "secret-admin",
			wantStatus:    http.StatusUnauthorized,
			wantErrorCode: "INVALID_API_KEY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(AdminAuthMiddleware(tt.configuredKey))
			r.GET("/admin", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"status": "ok"})
			})

			header := map[string]string{}
			if tt.requestKey != "" {
				header["X-API-Key"] = tt.requestKey
			}
			rec := serve(r, http.MethodGet, "/admin", header)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantErrorCode != "" {
				if code := errorCode(t, rec); code != tt.wantErrorCode {
					t.Errorf("error code = %q, want %q", code, tt.wantErrorCode)
				}
			}
		})
	}
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/app", func(c *gin.Context) {
		_ = c.Error(apperrors.Wrap(apperrors.ErrConsistencyConflict, errors.New("version mismatch")))
	})
	r.GET("/plain", func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
	})

	t.Run("app_error", func(t *testing.T) {
		rec := serve(r, http.MethodGet, "/app", nil)
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", rec.Code)
		}
		if code := errorCode(t, rec); code != "CONSISTENCY_CONFLICT" {
			t.Errorf("error code = %q", code)
		}
		if strings.Contains(rec.Body.String(), "version mismatch") {
			t.Error("internal error detail leaked into response")
		}
		if got := rec.Header().Get("Retry-After"); got != "1" {
			t.Errorf("Retry-After = %q, want 1", got)
		}
	})

	t.Run("unexpected_error", func(t *testing.T) {
		rec := serve(r, http.MethodGet, "/plain", nil)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", rec.Code)
		}
		if code := errorCode(t, rec); code != "INTERNAL_ERROR" {
			t.Errorf("error code = %q", code)
		}
	})
}

func TestNoRouteAndNoMethod(t *testing.T) {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoRoute(NotFound())
	r.NoMethod(MethodNotAllowed())
	r.GET("/only-get", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rec := serve(r, http.MethodGet, "/missing", nil)
	if rec.Code != http.StatusNotFound || errorCode(t, rec) != "NOT_FOUND" {
		t.Errorf("unknown route: status %d body %s", rec.Code, rec.Body.String())
	}

	rec = serve(r, http.MethodPost, "/only-get", nil)
	if rec.Code != http.StatusMethodNotAllowed || errorCode(t, rec) != "METHOD_NOT_ALLOWED" {
		t.Errorf("wrong verb: status %d body %s", rec.Code, rec.Body.String())
	}
}

func TestRequestLogging_KeepsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(requestid.New(), RequestLogging())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rec := serve(r, http.MethodGet, "/ping", map[string]string{"X-Request-ID": "req-123"})
	if got := rec.Header().Get("X-Request-ID"); got != "req-123" {
		t.Errorf("X-Request-ID = %q, want req-123", got)
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/users/:user_id/accounts", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, http.MethodGet, "/users/1/accounts", nil)
	serve(r, http.MethodGet, "/users/2/accounts", nil)
	serve(r, http.MethodGet, "/nowhere", nil)

	if got := testutil.ToFloat64(m.requests.WithLabelValues("200", "GET", "/users/:user_id/accounts")); got != 2 {
		t.Errorf("route counter = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("404", "GET", "unmatched")); got != 1 {
		t.Errorf("unmatched counter = %v, want 1", got)
	}

	if _, err := NewMetrics(reg); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}
