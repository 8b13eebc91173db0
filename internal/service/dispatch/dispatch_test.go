package dispatch

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"go.uber.org/zap"
)

func TestDispatchPostsToIngest(t *testing.T) {
	var mu sync.Mutex
	var gotPath, gotSecret string
	var gotBody map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		gotPath = r.URL.Path
		gotSecret = r.Header.Get("X-Ingest-Secret")
		json.NewDecoder(r.Body).Decode(&gotBody)
	}))
	defer srv.Close()

	d := New(srv.URL, "sekrit", zap.NewNop())
	d.Dispatch("U1", "123-abc.eml")
	d.Wait()

	mu.Lock()
	defer mu.Unlock()
	if gotPath != "/ingest" {
		t.Errorf("path = %q, want /ingest", gotPath)
	}
	if gotSecret != "sekrit" {
		t.Errorf("secret header = %q, want sekrit", gotSecret)
	}
	if gotBody["userId"] != "U1" || gotBody["r2Key"] != "123-abc.eml" {
		t.Errorf("body = %v", gotBody)
	}
}

func TestDispatchFailureDoesNotPropagate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	// The caller has no error path at all; the failure may only be
	// observed through logs and metrics.
	d := New(srv.URL, "sekrit", zap.NewNop())
	d.Dispatch("U1", "k.eml")
	d.Wait()
}
