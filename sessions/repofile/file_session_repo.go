package repofile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/localchef-bazaar/internal/errors"
	"github.com/jrsteele09/localchef-bazaar/sessions"
)

const sessionFileName = "session.json"

var _ sessions.Repo = (*FileSessionRepo)(nil)

// FileSessionRepo keeps the session in a JSON file readable only by the owner.
type FileSessionRepo struct {
	path string
	lock sync.Mutex
}

// New returns a repo storing session.json inside folder
func New(folder string) (*FileSessionRepo, error) {
	if folder == "" {
		return nil, fmt.Errorf("[repofile.New] folder is required")
	}
	return &FileSessionRepo{path: filepath.Join(folder, sessionFileName)}, nil
}

func (r *FileSessionRepo) Path() string {
	return r.path
}

func (r *FileSessionRepo) Load() (*sessions.Session, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return nil, errors.ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var s sessions.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse session file: %w", err)
	}
	if s.Token == "" {
		return nil, errors.ErrNoSession
	}
	return &s, nil
}

func (r *FileSessionRepo) Save(session *sessions.Session) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

// Delete removes the session file, a missing file is not an error.
func (r *FileSessionRepo) Delete() error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
