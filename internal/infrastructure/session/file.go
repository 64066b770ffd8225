package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileStore persists a single session (the CLI user's) as a JSON file, the
// command-line counterpart of a browser's local storage. It implements
// ports.TokenStore and ports.CookieStore.
type FileStore struct {
	mu   sync.Mutex
	path string
}

type fileState struct {
	AccessToken string            `json:"access_token,omitempty"`
	Cookies     map[string]string `json:"cookies,omitempty"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// NewFileStore returns a store backed by path. The file is created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultFilePath is the token file location when none is configured.
func DefaultFilePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "orders-console", "session.json")
}

func (f *FileStore) SessionKey() string { return "file:" + f.path }

func (f *FileStore) load() (fileState, error) {
	var st fileState
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return st, fmt.Errorf("read session file: %w", err)
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return fileState{}, fmt.Errorf("decode session file: %w", err)
	}
	return st, nil
}

func (f *FileStore) save(st fileState) error {
	st.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return os.Rename(tmp, f.path)
}

func (f *FileStore) Token(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, err := f.load()
	return st.AccessToken, err
}

func (f *FileStore) SetToken(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, err := f.load()
	if err != nil {
		return err
	}
	st.AccessToken = token
	return f.save(st)
}

func (f *FileStore) ClearToken(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, err := f.load()
	if err != nil {
		return err
	}
	if st.AccessToken == "" {
		return nil
	}
	st.AccessToken = ""
	return f.save(st)
}

func (f *FileStore) Cookies(context.Context) ([]*http.Cookie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, err := f.load()
	if err != nil {
		return nil, err
	}
	out := make([]*http.Cookie, 0, len(st.Cookies))
	for name, value := range st.Cookies {
		out = append(out, &http.Cookie{Name: name, Value: value})
	}
	return out, nil
}

func (f *FileStore) SetCookies(_ context.Context, cookies []*http.Cookie) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, err := f.load()
	if err != nil {
		return err
	}
	if st.Cookies == nil {
		st.Cookies = map[string]string{}
	}
	for name, value := range CookieValues(cookies, time.Now()) {
		if value == "" {
			delete(st.Cookies, name)
			continue
		}
		st.Cookies[name] = value
	}
	return f.save(st)
}

// Remove deletes the session file entirely (logout).
func (f *FileStore) Remove() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
