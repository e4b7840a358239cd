package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/outreach-dashboard/internal/entity"
)

type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) List(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id int64) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) NextWarm(ctx context.Context) (*entity.Lead, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) CreateBatch(ctx context.Context, leads []*entity.Lead) error {
	args := m.Called(ctx, leads)
	return args.Error(0)
}

func (m *MockLeadRepository) UpdateStatus(ctx context.Context, id int64, to entity.LeadStatus, notes *string) (*entity.Lead, entity.LeadStatus, error) {
	args := m.Called(ctx, id, to, notes)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*entity.Lead), args.Get(1).(entity.LeadStatus), args.Error(2)
}

func (m *MockLeadRepository) UpdateNotes(ctx context.Context, id int64, notes string) (*entity.Lead, error) {
	args := m.Called(ctx, id, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) CountsByStatus(ctx context.Context) (*entity.LeadCounts, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.LeadCounts), args.Error(1)
}

func (m *MockLeadRepository) CountMessagedSince(ctx context.Context, since time.Time) (int, error) {
	args := m.Called(ctx, since)
	return args.Int(0), args.Error(1)
}

func (m *MockLeadRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishLeadEvent(ctx context.Context, event entity.LeadEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// memoryLeadStore mirrors the Postgres store's rules so multi-step scenarios
// can run without a database.
type memoryLeadStore struct {
	mu     sync.Mutex
	nextID int64
	clock  time.Time
	leads  map[int64]*entity.Lead
}

func newMemoryLeadStore(start time.Time) *memoryLeadStore {
	return &memoryLeadStore{clock: start, leads: map[int64]*entity.Lead{}}
}

func (s *memoryLeadStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func clone(l *entity.Lead) *entity.Lead {
	c := *l
	c.Tags = append([]string{}, l.Tags...)
	if l.Notes != nil {
		n := *l.Notes
		c.Notes = &n
	}
	return &c
}

func (s *memoryLeadStore) sorted(asc bool) []*entity.Lead {
	out := make([]*entity.Lead, 0, len(s.leads))
	for _, l := range s.leads {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DateAdded.Equal(out[j].DateAdded) {
			return (out[i].ID < out[j].ID) == asc
		}
		return out[i].DateAdded.Before(out[j].DateAdded) == asc
	})
	return out
}

func (s *memoryLeadStore) List(_ context.Context, f entity.LeadFilter) ([]*entity.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*entity.Lead{}
	for _, l := range s.sorted(f.Order == entity.SortOldestFirst) {
		if f.Status != nil && l.Status != *f.Status {
			continue
		}
		out = append(out, clone(l))
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

func (s *memoryLeadStore) FindByID(_ context.Context, id int64) (*entity.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.leads[id]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	return clone(l), nil
}

func (s *memoryLeadStore) NextWarm(_ context.Context) (*entity.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range s.sorted(true) {
		if l.Status == entity.StatusWarmLead {
			return clone(l), nil
		}
	}
	return nil, entity.ErrLeadNotFound
}

func (s *memoryLeadStore) Create(_ context.Context, lead *entity.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	now := s.tick()
	lead.ID = s.nextID
	lead.Status = entity.StatusWarmLead
	lead.DateAdded = now
	lead.LastUpdated = now
	lead.MessagesSent = 0
	if lead.Tags == nil {
		lead.Tags = []string{}
	}
	s.leads[lead.ID] = clone(lead)
	return nil
}

func (s *memoryLeadStore) CreateBatch(ctx context.Context, leads []*entity.Lead) error {
	for _, l := range leads {
		if err := s.Create(ctx, l); err != nil {
			return err
		}
	}
	return nil
}

func (s *memoryLeadStore) UpdateStatus(_ context.Context, id int64, to entity.LeadStatus, notes *string) (*entity.Lead, entity.LeadStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.leads[id]
	if !ok {
		return nil, "", entity.ErrLeadNotFound
	}
	from := l.Status
	if !entity.CanTransition(from, to) {
		return nil, "", &entity.TransitionError{LeadID: id, From: from, To: to}
	}

	now := s.tick()
	l.Status = to
	l.LastUpdated = now
	if notes != nil {
		if *notes == "" {
			l.Notes = nil
		} else {
			n := *notes
			l.Notes = &n
		}
	}
	if to.CountsAsMessage() {
		l.MessagesSent++
		l.LastMessageAt = &now
	}
	return clone(l), from, nil
}

func (s *memoryLeadStore) UpdateNotes(_ context.Context, id int64, notes string) (*entity.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.leads[id]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	l.LastUpdated = s.tick()
	if notes == "" {
		l.Notes = nil
	} else {
		l.Notes = &notes
	}
	return clone(l), nil
}

func (s *memoryLeadStore) CountsByStatus(_ context.Context) (*entity.LeadCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var c entity.LeadCounts
	for _, l := range s.leads {
		switch l.Status {
		case entity.StatusWarmLead:
			c.WarmLead++
		case entity.StatusMessageSent:
			c.MessageSent++
		case entity.StatusSaleClosed:
			c.SaleClosed++
		}
		c.Total++
		c.MessagesSent += l.MessagesSent
	}
	return &c, nil
}

func (s *memoryLeadStore) CountMessagedSince(_ context.Context, since time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, l := range s.leads {
		if l.LastMessageAt != nil && !l.LastMessageAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (s *memoryLeadStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.leads[id]; !ok {
		return entity.ErrLeadNotFound
	}
	delete(s.leads, id)
	return nil
}

type nopPublisher struct{}

func (nopPublisher) PublishLeadEvent(context.Context, entity.LeadEvent) error { return nil }
