package flatfile

import (
	"fmt"
	"time"

	"github.com/gosuda/cabinet/internal/domain"
)

// Store groups the per-entity repositories over one data directory.
type Store struct {
	root      *Root
	locker    *Locker
	clients   *ClientRepo
	tarifs    *TarifRepo
	seances   *SeanceRepo
	settings  *SettingsStore
	documents *DocumentStore
}

type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the clock used for creation dates.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func New(dir string, opts ...Option) (*Store, error) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	root, err := NewRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("flatfile.New: %w", err)
	}

	return &Store{
		root:      root,
		locker:    NewLocker(),
		clients:   NewClientRepo(root, o.now),
		tarifs:    NewTarifRepo(root),
		seances:   NewSeanceRepo(root),
		settings:  NewSettingsStore(root),
		documents: NewDocumentStore(root),
	}, nil
}

func (s *Store) Root() *Root                          { return s.root }
func (s *Store) Locker() *Locker                      { return s.locker }
func (s *Store) Clients() domain.ClientRepository     { return s.clients }
func (s *Store) Tarifs() domain.TarifRepository       { return s.tarifs }
func (s *Store) Seances() domain.SeanceRepository     { return s.seances }
func (s *Store) Settings() domain.SettingsRepository  { return s.settings }
func (s *Store) Documents() domain.DocumentRepository { return s.documents }
