// Package artworktest provides in-memory implementations of the artwork use
// case dependencies for tests.
package artworktest

import (
	"context"
	"sync"

	"kidcanvas/internal/domain/artworks"
	"kidcanvas/internal/domain/children"
	"kidcanvas/internal/domain/users"
	"kidcanvas/internal/infra/aitag"
	"kidcanvas/internal/infra/events"
	"kidcanvas/internal/infra/imaging"
	"kidcanvas/pkg/errs"
)

// Journal records calls across fakes so tests can assert ordering.
type Journal struct {
	mu    sync.Mutex
	calls []string
}

func (j *Journal) Add(call string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.calls = append(j.calls, call)
}

func (j *Journal) Calls() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.calls...)
}

type Store struct {
	mu sync.Mutex

	Journal  *Journal
	Artworks map[string]*artworks.Artwork
	Children map[string]*children.Child
	// Roles is keyed by familyID + "/" + userID.
	Roles  map[string]string
	Owners map[string]*users.User

	CreateErr error
	DeleteErr error
	GetErr    error
}

func NewStore(j *Journal) *Store {
	if j == nil {
		j = &Journal{}
	}
	return &Store{
		Journal:  j,
		Artworks: map[string]*artworks.Artwork{},
		Children: map[string]*children.Child{},
		Roles:    map[string]string{},
		Owners:   map[string]*users.User{},
	}
}

func (s *Store) SetRole(familyID, userID, role string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Roles[familyID+"/"+userID] = role
}

func (s *Store) CreateArtwork(_ context.Context, a *artworks.Artwork) error {
	s.Journal.Add("db.create")
	if s.CreateErr != nil {
		return s.CreateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.Artworks[a.ID] = &cp
	return nil
}

func (s *Store) GetArtwork(_ context.Context, id string) (*artworks.Artwork, error) {
	s.Journal.Add("db.get")
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.Artworks[id]
	if !ok {
		return nil, errs.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *Store) DeleteArtwork(_ context.Context, id string) (bool, error) {
	s.Journal.Add("db.delete")
	if s.DeleteErr != nil {
		return false, s.DeleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Artworks[id]; !ok {
		return false, nil
	}
	delete(s.Artworks, id)
	return true, nil
}

func (s *Store) UpdateAITags(_ context.Context, id string, tags []string, description string) error {
	s.Journal.Add("db.ai_tags")
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.Artworks[id]
	if !ok {
		return errs.ErrRecordNotFound
	}
	a.AITags = tags
	a.AIDescription = &description
	return nil
}

func (s *Store) MemberRole(_ context.Context, familyID, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	role, ok := s.Roles[familyID+"/"+userID]
	if !ok {
		return "", errs.ErrRecordNotFound
	}
	return role, nil
}

func (s *Store) GetChild(_ context.Context, id string) (*children.Child, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.Children[id]
	if !ok {
		return nil, errs.ErrRecordNotFound
	}
	return c, nil
}

func (s *Store) FamilyOwner(_ context.Context, familyID string) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.Owners[familyID]
	if !ok {
		return nil, errs.ErrRecordNotFound
	}
	return u, nil
}

func (s *Store) CountArtworks(_ context.Context, familyID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, a := range s.Artworks {
		if a.FamilyID == familyID {
			n++
		}
	}
	return n, nil
}

type Storage struct {
	mu sync.Mutex

	Journal   *Journal
	Base      string
	Objects   map[string][]byte
	ReadyErr  error
	PutErr    error
	DeleteErr error
	Puts      int
	Deletes   int
}

func NewStorage(j *Journal) *Storage {
	if j == nil {
		j = &Journal{}
	}
	return &Storage{Journal: j, Base: "https://cdn.test/media", Objects: map[string][]byte{}}
}

func (s *Storage) Ready() error { return s.ReadyErr }

func (s *Storage) Put(_ context.Context, key string, data []byte, _ string) error {
	s.Journal.Add("storage.put")
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Puts++
	if s.PutErr != nil {
		return s.PutErr
	}
	s.Objects[key] = data
	return nil
}

func (s *Storage) Delete(_ context.Context, key string) error {
	s.Journal.Add("storage.delete")
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deletes++
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	delete(s.Objects, key)
	return nil
}

func (s *Storage) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.Objects[key]
	if !ok {
		return nil, errs.ErrRecordNotFound
	}
	return b, nil
}

func (s *Storage) PublicURL(key string) string {
	return artworks.PublicURL(s.Base, key)
}

func (s *Storage) KeyFromURL(raw string) (string, error) {
	return artworks.KeyFromURL(s.Base, raw)
}

// Processor returns fixed derivatives without decoding.
type Processor struct {
	Ext   string
	Err   error
	Calls int
}

func (p *Processor) Derive(_ context.Context, data []byte) (*imaging.Derivatives, error) {
	p.Calls++
	if p.Err != nil {
		return nil, p.Err
	}
	ext, ct := "jpg", "image/jpeg"
	if p.Ext == "png" {
		ext, ct = "png", "image/png"
	}
	return &imaging.Derivatives{
		Original:            data,
		OriginalExt:         ext,
		OriginalContentType: ct,
		Thumbnail:           []byte("thumb"),
	}, nil
}

type AI struct {
	Result *aitag.Result
	Err    error
	Off    bool
}

func (a *AI) Enabled() bool { return !a.Off }

func (a *AI) Describe(context.Context, string, string) (*aitag.Result, error) {
	if a.Err != nil {
		return nil, a.Err
	}
	return a.Result, nil
}

// Tasks queues submitted work; Run executes it synchronously.
type Tasks struct {
	mu      sync.Mutex
	Names   []string
	pending []func(ctx context.Context) error
	Refuse  bool
}

func (t *Tasks) Submit(name string, fn func(ctx context.Context) error) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Refuse {
		return false
	}
	t.Names = append(t.Names, name)
	t.pending = append(t.pending, fn)
	return true
}

// Run executes and clears queued tasks, returning their errors.
func (t *Tasks) Run(ctx context.Context) []error {
	t.mu.Lock()
	pending := t.pending
	t.pending = nil
	t.mu.Unlock()

	var out []error
	for _, fn := range pending {
		if err := fn(ctx); err != nil {
			out = append(out, err)
		}
	}
	return out
}

type Publisher struct {
	mu     sync.Mutex
	Events []events.Event
	Err    error
}

func (p *Publisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Events = append(p.Events, e)
	return nil
}
