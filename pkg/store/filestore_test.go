package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func newTempStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "users.json"))
}

func TestGetMissingFile(t *testing.T) {
	s := newTempStore(t)
	_, err := s.Get("a@example.com")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestSaveThenGet(t *testing.T) {
	s := newTempStore(t)
	tok := &oauth2.Token{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		TokenType:    "Bearer",
		Expiry:       time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := s.Save("a@example.com", tok); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Get("a@example.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.AccessToken != "access-1" || got.RefreshToken != "refresh-1" {
		t.Fatalf("unexpected token: %+v", got)
	}
	if !got.Expiry.Equal(tok.Expiry) {
		t.Fatalf("expiry mismatch: %v", got.Expiry)
	}

	if _, err := s.Get("other@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound for unknown email, got %v", err)
	}
}

func TestSaveUpserts(t *testing.T) {
	s := newTempStore(t)
	if err := s.Save("a@example.com", &oauth2.Token{AccessToken: "old"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save("b@example.com", &oauth2.Token{AccessToken: "b"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save("a@example.com", &oauth2.Token{AccessToken: "new"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Get("a@example.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.AccessToken != "new" {
		t.Fatalf("expected updated token, got %q", got.AccessToken)
	}

	// The other record is untouched.
	gotB, err := s.Get("b@example.com")
	if err != nil {
		t.Fatalf("get b: %v", err)
	}
	if gotB.AccessToken != "b" {
		t.Fatalf("unexpected token for b: %q", gotB.AccessToken)
	}
}

func TestGetSeesExternalMutation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "users.json")
	s := NewFileStore(path)

	if err := s.Save("a@example.com", &oauth2.Token{AccessToken: "mine"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Rewrite the file behind the store's back; Get must reflect it since
	// every read goes back to disk.
	doc := userFile{Users: []userRecord{
		{Email: "a@example.com", Credentials: &oauth2.Token{AccessToken: "edited"}},
	}}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get("a@example.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.AccessToken != "edited" {
		t.Fatalf("expected externally edited token, got %q", got.AccessToken)
	}
}

func TestCorruptFileIsAnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "users.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	s := NewFileStore(path)
	if _, err := s.Get("a@example.com"); err == nil {
		t.Fatal("expected parse error for corrupt store file")
	}
}
