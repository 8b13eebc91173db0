package auth

import (
	"crypto/rsa"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/inkwell-mail/inkwell/internal/config"
)

// Identity is the verified caller extracted from a bearer token issued
// by the external identity gateway.
type Identity struct {
	ID     string   `json:"id"`
	Email  string   `json:"email"`
	Name   string   `json:"name,omitempty"`
	Groups []string `json:"groups,omitempty"`
}

type accessClaims struct {
	Email  string   `json:"email"`
	Name   string   `json:"name"`
	Groups []string `json:"groups"`
	jwt.RegisteredClaims
}

// Verifier checks RS256 bearer tokens against the gateway's public
// key, issuer, and audience. The key is parsed once on first use and
// cached for the life of the process; the sync.Once guard keeps
// concurrent first requests from racing the parse.
type Verifier struct {
	cfg config.AuthConfig

	once   sync.Once
	key    *rsa.PublicKey
	keyErr error
}

func NewVerifier(cfg config.AuthConfig) *Verifier {
	return &Verifier{cfg: cfg}
}

func (v *Verifier) publicKey() (*rsa.PublicKey, error) {
	v.once.Do(func() {
		v.key, v.keyErr = jwt.ParseRSAPublicKeyFromPEM([]byte(v.cfg.PublicKey))
	})
	return v.key, v.keyErr
}

// Verify validates a raw token and returns the caller identity.
func (v *Verifier) Verify(token string) (*Identity, error) {
	key, err := v.publicKey()
	if err != nil {
		return nil, fmt.Errorf("parse verification key: %w", err)
	}

	claims := &accessClaims{}
	_, err = jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(v.cfg.Issuer),
		jwt.WithAudience(v.cfg.Audience),
	)
	if err != nil {
		return nil, err
	}

	return &Identity{
		ID:     claims.Subject,
		Email:  claims.Email,
		Name:   claims.Name,
		Groups: claims.Groups,
	}, nil
}

// IdentityKey is the gin context key Middleware stores the caller
// under.
const IdentityKey = "identity"

// Middleware rejects requests lacking a valid bearer token with a
// 401 JSON body before any handler runs.
func Middleware(v *Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing Authorization header"})
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid Authorization header format"})
			return
		}

		identity, err := v.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set(IdentityKey, identity)
		c.Next()
	}
}

// IdentityFrom returns the verified caller stored by Middleware.
func IdentityFrom(c *gin.Context) (*Identity, bool) {
	val, ok := c.Get(IdentityKey)
	if !ok {
		return nil, false
	}
	id, ok := val.(*Identity)
	return id, ok
}
