package store

import (
	"context"
	"slices"
	"sync"

	"members/internal/members/codec"
	"members/internal/members/models"
	"members/pkg/platform/sentinel"
)

// InMemoryStore keeps encoded rows in a map. It mirrors the PostgreSQL store:
// ids come from a counter that is never rewound, and roles pass through the codec.
type InMemoryStore struct {
	mu     sync.RWMutex
	rows   map[int64]memberRow
	lastID int64
	codec  *codec.Codec
}

// NewInMemory constructs an empty in-memory store. A nil codec means strict decoding.
func NewInMemory(c *codec.Codec) *InMemoryStore {
	if c == nil {
		c = codec.New(codec.Strict)
	}
	return &InMemoryStore{rows: make(map[int64]memberRow), codec: c}
}

func (s *InMemoryStore) List(_ context.Context) ([]*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(memberRow) bool { return true })
}

func (s *InMemoryStore) FindByID(_ context.Context, id models.MemberID) (*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.rows[int64(id)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return row.toMember(s.codec)
}

func (s *InMemoryStore) FindByRole(_ context.Context, role models.Role) ([]*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var decodeErr error
	members, err := s.collect(func(row memberRow) bool {
		roles, err := s.codec.Decode(row.Roles)
		if err != nil {
			decodeErr = err
			return false
		}
		return roles.Contains(role)
	})
	if decodeErr != nil {
		return nil, decodeErr
	}
	return members, err
}

func (s *InMemoryStore) Create(_ context.Context, draft models.Draft) (*models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID++
	row := toRow(draft.ToMember(models.MemberID(s.lastID)), s.codec)
	s.rows[row.ID] = row
	return row.toMember(s.codec)
}

func (s *InMemoryStore) Update(_ context.Context, id models.MemberID, draft models.Draft) (*models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[int64(id)]; !ok {
		return nil, sentinel.ErrNotFound
	}
	row := toRow(draft.ToMember(id), s.codec)
	s.rows[row.ID] = row
	return row.toMember(s.codec)
}

func (s *InMemoryStore) Delete(_ context.Context, id models.MemberID) (*models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[int64(id)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	delete(s.rows, int64(id))
	return row.toMember(s.codec)
}

// collect must be called with the lock held.
func (s *InMemoryStore) collect(keep func(memberRow) bool) ([]*models.Member, error) {
	ids := make([]int64, 0, len(s.rows))
	for id := range s.rows {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	members := make([]*models.Member, 0, len(ids))
	for _, id := range ids {
		row := s.rows[id]
		if !keep(row) {
			continue
		}
		member, err := row.toMember(s.codec)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, nil
}
