package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/inkwell-mail/inkwell/internal/config"
)

const (
	testIssuer   = "https://auth.test"
	testAudience = "inkwell-test"
)

func newTestKeys(t *testing.T) (*rsa.PrivateKey, config.AuthConfig) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	pemKey := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	return key, config.AuthConfig{
		PublicKey: string(pemKey),
		Issuer:    testIssuer,
		Audience:  testAudience,
	}
}

func signToken(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":    "U1",
		"email":  "alice@example.com",
		"name":   "Alice",
		"groups": []string{"readers"},
		"iss":    testIssuer,
		"aud":    testAudience,
		"exp":    time.Now().Add(time.Hour).Unix(),
		"iat":    time.Now().Unix(),
	}
}

func newProtectedRouter(cfg config.AuthConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware(NewVerifier(cfg)))
	r.GET("/whoami", func(c *gin.Context) {
		id, _ := IdentityFrom(c)
		c.JSON(http.StatusOK, id)
	})
	return r
}

func doRequest(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return body["error"]
}

func TestMissingAuthorizationHeader(t *testing.T) {
	_, cfg := newTestKeys(t)
	w := doRequest(newProtectedRouter(cfg), "")

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if got := errorBody(t, w); got != "Missing Authorization header" {
		t.Errorf("error = %q, want %q", got, "Missing Authorization header")
	}
}

func TestInvalidAuthorizationScheme(t *testing.T) {
	_, cfg := newTestKeys(t)
	w := doRequest(newProtectedRouter(cfg), "Basic dXNlcjpwYXNz")

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if got := errorBody(t, w); got != "Invalid Authorization header format" {
		t.Errorf("error = %q, want %q", got, "Invalid Authorization header format")
	}
}

func TestValidTokenPasses(t *testing.T) {
	key, cfg := newTestKeys(t)
	token := signToken(t, key, validClaims())
	w := doRequest(newProtectedRouter(cfg), "Bearer "+token)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}
	var id Identity
	if err := json.Unmarshal(w.Body.Bytes(), &id); err != nil {
		t.Fatalf("decode identity: %v", err)
	}
	if id.ID != "U1" || id.Email != "alice@example.com" {
		t.Errorf("identity = %+v", id)
	}
}

func TestWrongIssuerRejected(t *testing.T) {
	key, cfg := newTestKeys(t)
	claims := validClaims()
	claims["iss"] = "https://someone-else.test"
	w := doRequest(newProtectedRouter(cfg), "Bearer "+signToken(t, key, claims))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestWrongAudienceRejected(t *testing.T) {
	key, cfg := newTestKeys(t)
	claims := validClaims()
	claims["aud"] = "other-service"
	w := doRequest(newProtectedRouter(cfg), "Bearer "+signToken(t, key, claims))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestWrongKeyRejected(t *testing.T) {
	_, cfg := newTestKeys(t)
	otherKey, _ := newTestKeys(t)
	w := doRequest(newProtectedRouter(cfg), "Bearer "+signToken(t, otherKey, validClaims()))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	key, cfg := newTestKeys(t)
	claims := validClaims()
	claims["exp"] = time.Now().Add(-time.Hour).Unix()
	w := doRequest(newProtectedRouter(cfg), "Bearer "+signToken(t, key, claims))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}
