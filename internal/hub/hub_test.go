package hub

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

func writeCheckpoint(t *testing.T, dir string) {
	t.Helper()
	for _, name := range []string{TokenizerFile, ConfigFile, WeightsFile} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestIsRepoID(t *testing.T) {
	tests := []struct {
		source string
		want   bool
	}{
		{"sentence-transformers/all-MiniLM-L6-v2", true},
		{"org/model", true},
		{"./models/bert", false},
		{"./no-such-dir", false},
		{"/abs/path", false},
		{"../up/dir", false},
		{"plain-dir", false},
		{"a/b/c", false},
		{"/a", false},
		{"org/", false},
		{"/model", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsRepoID(tt.source); got != tt.want {
			t.Errorf("IsRepoID(%q) = %v, want %v", tt.source, got, tt.want)
		}
	}
}

func TestResolve_localDirectory(t *testing.T) {
	dir := t.TempDir()
	writeCheckpoint(t, dir)

	c := New(t.TempDir())
	arts, err := c.Resolve(context.Background(), dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if arts.TokenizerPath != filepath.Join(dir, TokenizerFile) {
		t.Errorf("tokenizer path = %q", arts.TokenizerPath)
	}
	if arts.WeightsPath != filepath.Join(dir, WeightsFile) {
		t.Errorf("weights path = %q", arts.WeightsPath)
	}
}

func TestResolve_localMissingFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, TokenizerFile), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	c := New(t.TempDir())
	_, err := c.Resolve(context.Background(), dir)
	if err == nil {
		t.Fatal("expected error for incomplete directory")
	}
	if !strings.Contains(err.Error(), "not found in") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestResolve_localNoSuchDirectory(t *testing.T) {
	c := New(t.TempDir())
	_, err := c.Resolve(context.Background(), "./no-such-dir")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "not found in ./no-such-dir") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestResolve_remoteDownloadAndCache(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if !strings.HasPrefix(r.URL.Path, "/org/model/resolve/main/") {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, filepath.Base(r.URL.Path))
	}))
	defer srv.Close()

	cacheDir := t.TempDir()
	c := New(cacheDir, WithBaseURL(srv.URL))
	arts, err := c.Resolve(context.Background(), "org/model")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := requests.Load(); got != 3 {
		t.Errorf("first resolve made %d requests, want 3", got)
	}
	data, err := os.ReadFile(arts.ConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != ConfigFile {
		t.Errorf("config content = %q", data)
	}

	// Second resolve hits the cache only.
	if _, err := c.Resolve(context.Background(), "org/model"); err != nil {
		t.Fatalf("cached Resolve: %v", err)
	}
	if got := requests.Load(); got != 3 {
		t.Errorf("cached resolve made %d extra requests", got-3)
	}
}

func TestResolve_remoteNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := New(t.TempDir(), WithBaseURL(srv.URL))
	_, err := c.Resolve(context.Background(), "org/missing")
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if !strings.Contains(err.Error(), "not found in org/missing") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestResolve_remoteServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(t.TempDir(), WithBaseURL(srv.URL))
	_, err := c.Resolve(context.Background(), "org/model")
	if err == nil {
		t.Fatal("expected error for 500")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestResolve_partialDownloadLeavesNoArtifact(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) > 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	cacheDir := t.TempDir()
	c := New(cacheDir, WithBaseURL(srv.URL))
	if _, err := c.Resolve(context.Background(), "org/model"); err == nil {
		t.Fatal("expected error")
	}
	if _, err := os.Stat(filepath.Join(cacheDir, "org", "model", ConfigFile)); err == nil {
		t.Error("failed download should not leave the second artifact behind")
	}
}
