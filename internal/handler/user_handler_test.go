package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/inkwell-mail/inkwell/internal/auth"
	"github.com/inkwell-mail/inkwell/internal/model"
	"github.com/inkwell-mail/inkwell/internal/repository"
)

type fakeUserFinder struct {
	byID map[string]*model.User
}

func (f *fakeUserFinder) FindByID(_ context.Context, id string) (*model.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func withIdentity(id *auth.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(auth.IdentityKey, id)
	}
}

func TestGetUserMergesTokenAndCatalog(t *testing.T) {
	gin.SetMode(gin.TestMode)
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	users := &fakeUserFinder{byID: map[string]*model.User{
		"U1": {ID: "U1", Alias: "alice", CreatedAt: created},
	}}

	r := gin.New()
	r.Use(withIdentity(&auth.Identity{
		ID: "U1", Email: "alice@example.com", Name: "Alice", Groups: []string{"readers"},
	}))
	r.GET("/user", NewUserHandler(users).GetUser)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/user", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["id"] != "U1" || resp["alias"] != "alice" || resp["email"] != "alice@example.com" {
		t.Errorf("resp = %v", resp)
	}
	if resp["created_at"] != "2025-03-01T12:00:00Z" {
		t.Errorf("created_at = %v", resp["created_at"])
	}
}

func TestGetUserNoCatalogRow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(withIdentity(&auth.Identity{ID: "ghost", Email: "ghost@example.com"}))
	r.GET("/user", NewUserHandler(&fakeUserFinder{byID: map[string]*model.User{}}).GetUser)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/user", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
