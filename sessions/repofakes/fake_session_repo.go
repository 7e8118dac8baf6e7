package fakesessionrepo

import (
	"sync"

	"github.com/jrsteele09/localchef-bazaar/internal/errors"
	"github.com/jrsteele09/localchef-bazaar/sessions"
)

var _ sessions.Repo = (*FakeSessionRepo)(nil)

type FakeSessionRepo struct {
	session *sessions.Session
	saves   int
	deletes int
	lock    sync.RWMutex
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{}
}

func (sr *FakeSessionRepo) Load() (*sessions.Session, error) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()

	if sr.session == nil {
		return nil, errors.ErrNoSession
	}
	s := *sr.session
	return &s, nil
}

func (sr *FakeSessionRepo) Save(session *sessions.Session) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	s := *session
	sr.session = &s
	sr.saves++
	return nil
}

func (sr *FakeSessionRepo) Delete() error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	sr.session = nil
	sr.deletes++
	return nil
}

// Counts returns how many saves and deletes the repo has seen
func (sr *FakeSessionRepo) Counts() (saves, deletes int) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()
	return sr.saves, sr.deletes
}
