package sessions

// Repo persists the current session between runs. Load returns
// errors.ErrNoSession when nothing has been saved.
type Repo interface {
	Load() (*Session, error)
	Save(session *Session) error
	Delete() error
}
