package media

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func stageTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.pdf")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write staged file: %v", err)
	}
	return path
}

func TestUpload(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/upload" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotKey = r.Header.Get("X-Api-Key")
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		defer file.Close()
		if header.Filename != "upload.pdf" {
			t.Errorf("unexpected filename: %s", header.Filename)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"url":"https://cdn.local/upload.pdf"}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, "key-123")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	staged := stageTempFile(t, "resume bytes")
	url, err := c.Upload(context.Background(), staged)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if url != "https://cdn.local/upload.pdf" {
		t.Fatalf("unexpected url: %s", url)
	}
	if gotKey != "key-123" {
		t.Fatalf("api key not sent, got %q", gotKey)
	}
	if _, err := os.Stat(staged); !os.IsNotExist(err) {
		t.Fatalf("staged file was not removed")
	}
}

func TestUploadRemovesStagedFileOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, "")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	staged := stageTempFile(t, "resume bytes")
	if _, err := c.Upload(context.Background(), staged); !errors.Is(err, ErrUploadFailed) {
		t.Fatalf("expected ErrUploadFailed, got %v", err)
	}
	if _, err := os.Stat(staged); !os.IsNotExist(err) {
		t.Fatalf("staged file survived failed upload")
	}
}

func TestUploadMissingFile(t *testing.T) {
	c, err := NewClient("http://localhost:9", "")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := c.Upload(context.Background(), ""); !errors.Is(err, ErrUploadFailed) {
		t.Fatalf("expected ErrUploadFailed, got %v", err)
	}
	if _, err := c.Upload(context.Background(), filepath.Join(t.TempDir(), "missing.pdf")); !errors.Is(err, ErrUploadFailed) {
		t.Fatalf("expected ErrUploadFailed for missing file, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	var gotURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/files" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotURL = r.URL.Query().Get("url")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, "")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if err := c.Delete(context.Background(), "https://cdn.local/upload.pdf"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if gotURL != "https://cdn.local/upload.pdf" {
		t.Fatalf("url not forwarded: %q", gotURL)
	}

	// Empty URL is a no-op.
	if err := c.Delete(context.Background(), ""); err != nil {
		t.Fatalf("Delete empty: %v", err)
	}
}

func TestDeleteToleratesNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, "")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if err := c.Delete(context.Background(), "https://cdn.local/gone.pdf"); err != nil {
		t.Fatalf("Delete of missing file should succeed: %v", err)
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient("", "key"); err == nil {
		t.Fatalf("expected error for empty base URL")
	}
	c, err := NewClient("https://media.local/", "key")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if c.baseURL != "https://media.local" {
		t.Fatalf("trailing slash not trimmed: %q", c.baseURL)
	}
}
