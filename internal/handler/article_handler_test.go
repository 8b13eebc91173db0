package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/inkwell-mail/inkwell/internal/blobstore"
	"github.com/inkwell-mail/inkwell/internal/model"
	"github.com/inkwell-mail/inkwell/internal/repository"
)

type fakeArticleCatalog struct {
	byID  map[string]*model.Article
	list  []model.Article
	total int
}

func (f *fakeArticleCatalog) FindByID(_ context.Context, id string) (*model.Article, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return a, nil
}

func (f *fakeArticleCatalog) List(_ context.Context, _, _ int) ([]model.Article, int, error) {
	return f.list, f.total, nil
}

type fakeBodyStore struct {
	objects map[string][]byte
}

func (f *fakeBodyStore) Get(_ context.Context, _, key string) ([]byte, error) {
	body, ok := f.objects[key]
	if !ok {
		return nil, blobstore.ErrNotFound
	}
	return body, nil
}

func newArticleRouter(catalog *fakeArticleCatalog, store *fakeBodyStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewArticleHandler(catalog, store, "articles", zap.NewNop())
	r.GET("/articles", h.ListArticles)
	r.GET("/articles/:id", h.GetArticle)
	return r
}

func TestGetArticleServesBody(t *testing.T) {
	catalog := &fakeArticleCatalog{byID: map[string]*model.Article{
		"A1": {ID: "A1", ContentHash: "h1", ObjectKey: "h1.html"},
	}}
	store := &fakeBodyStore{objects: map[string][]byte{
		"h1.html": []byte("<h1>hello</h1>"),
	}}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/articles/A1", nil)
	newArticleRouter(catalog, store).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("content type = %q", ct)
	}
	if w.Body.String() != "<h1>hello</h1>" {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestGetArticleUnknownID(t *testing.T) {
	r := newArticleRouter(&fakeArticleCatalog{byID: map[string]*model.Article{}}, &fakeBodyStore{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/articles/missing", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestGetArticleMissingBlob(t *testing.T) {
	catalog := &fakeArticleCatalog{byID: map[string]*model.Article{
		"A1": {ID: "A1", ObjectKey: "h1.html"},
	}}
	r := newArticleRouter(catalog, &fakeBodyStore{objects: map[string][]byte{}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/articles/A1", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestListArticlesPaginationShape(t *testing.T) {
	catalog := &fakeArticleCatalog{
		list:  []model.Article{{ID: "A1"}, {ID: "A2"}},
		total: 7,
	}
	r := newArticleRouter(catalog, &fakeBodyStore{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/articles?limit=2&offset=4", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		Items      []model.Article `json:"items"`
		Pagination struct {
			Limit  int `json:"limit"`
			Offset int `json:"offset"`
			Total  int `json:"total"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Items) != 2 {
		t.Errorf("items = %d, want 2", len(resp.Items))
	}
	if resp.Pagination.Limit != 2 || resp.Pagination.Offset != 4 || resp.Pagination.Total != 7 {
		t.Errorf("pagination = %+v", resp.Pagination)
	}
}
