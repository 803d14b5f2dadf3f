package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

type userRecord struct {
	Email       string        `json:"email"`
	Credentials *oauth2.Token `json:"credentials"`
}

type userFile struct {
	Users []userRecord `json:"users"`
}

// FileStore persists user tokens in a single JSON file. The file is re-read
// on every call so external edits are picked up immediately; nothing is
// cached in memory. Writes go through a temp file and rename so readers
// never see a partial file. There is no cross-process locking: concurrent
// writers can lose updates, which is acceptable for a single-process
// deployment only.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Get(email string) (*oauth2.Token, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, u := range doc.Users {
		if u.Email == email {
			return u.Credentials, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *FileStore) Save(email string, token *oauth2.Token) error {
	doc, err := s.load()
	if err != nil {
		return err
	}
	updated := false
	for i := range doc.Users {
		if doc.Users[i].Email == email {
			doc.Users[i].Credentials = token
			updated = true
			break
		}
	}
	if !updated {
		doc.Users = append(doc.Users, userRecord{Email: email, Credentials: token})
	}
	return s.write(doc)
}

// load reads the backing file. A missing file is an empty store.
func (s *FileStore) load() (*userFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &userFile{}, nil
		}
		return nil, fmt.Errorf("read user store: %w", err)
	}
	var doc userFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse user store: %w", err)
	}
	return &doc, nil
}

// write replaces the backing file atomically with 0600 perms.
func (s *FileStore) write(doc *userFile) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".users-*.tmp")
	if err != nil {
		return fmt.Errorf("write user store: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, s.path)
}
