package appointment

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ridhamz/AppointmentEase/internal/repo"
)

// memStore is an in-memory repo.AppointmentStore. WithProfessionalLock
// serializes callers on one mutex; CreateAppointment enforces the slot
// bucket uniqueness the database index provides.
type memStore struct {
	lockMu sync.Mutex

	mu     sync.Mutex
	appts  map[uuid.UUID]*repo.Appointment
	bucket time.Duration

	// failFind makes every read fail, to exercise persistence errors.
	failFind error
}

func newMemStore() *memStore {
	return &memStore{appts: map[uuid.UUID]*repo.Appointment{}, bucket: time.Minute}
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.appts)
}

func (m *memStore) put(a repo.Appointment) *repo.Appointment {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = repo.StatusPending
	}
	m.appts[a.ID] = &a
	cp := a
	return &cp
}

func (m *memStore) FindAppointment(_ context.Context, id uuid.UUID) (*repo.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFind != nil {
		return nil, m.failFind
	}
	a, ok := m.appts[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memStore) FindAppointments(_ context.Context, f repo.AppointmentFilter) ([]*repo.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFind != nil {
		return nil, m.failFind
	}
	var out []*repo.Appointment
	for _, a := range m.appts {
		if f.ClientID != nil && a.ClientID != *f.ClientID {
			continue
		}
		if f.ProfessionalID != nil && a.ProfessionalID != *f.ProfessionalID {
			continue
		}
		if f.Status != nil && a.Status != *f.Status {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	if f.Offset >= len(out) {
		return nil, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *memStore) FindConflicting(_ context.Context, q repo.ConflictQuery) (*repo.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFind != nil {
		return nil, m.failFind
	}
	for _, a := range m.appts {
		if a.ProfessionalID != q.ProfessionalID || a.Status == repo.StatusCanceled {
			continue
		}
		if q.ExcludeID != nil && a.ID == *q.ExcludeID {
			continue
		}
		if a.ScheduledAt.Before(q.From) || a.ScheduledAt.After(q.To) {
			continue
		}
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (m *memStore) slotTaken(a *repo.Appointment) bool {
	bucket := repo.SlotBucket(a.ScheduledAt, m.bucket)
	for _, other := range m.appts {
		if other.ID == a.ID || other.Status == repo.StatusCanceled || other.ProfessionalID != a.ProfessionalID {
			continue
		}
		if repo.SlotBucket(other.ScheduledAt, m.bucket).Equal(bucket) {
			return true
		}
	}
	return false
}

func (m *memStore) CreateAppointment(_ context.Context, a *repo.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if m.slotTaken(a) {
		return repo.ErrUniqueViolation
	}
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	cp := *a
	m.appts[a.ID] = &cp
	return nil
}

func (m *memStore) SaveAppointment(_ context.Context, a *repo.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.appts[a.ID]
	if !ok || cur.Status.IsTerminal() {
		return repo.ErrStaleState
	}
	if m.slotTaken(a) {
		return repo.ErrUniqueViolation
	}
	cur.Title = a.Title
	cur.ScheduledAt = a.ScheduledAt
	cur.Notes = a.Notes
	cur.ProfessionalID = a.ProfessionalID
	cur.UpdatedAt = time.Now().UTC()
	a.UpdatedAt = cur.UpdatedAt
	return nil
}

func (m *memStore) TransitionStatus(_ context.Context, id uuid.UUID, from, to repo.Status) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.appts[id]
	if !ok || cur.Status != from {
		return time.Time{}, repo.ErrStaleState
	}
	cur.Status = to
	cur.UpdatedAt = time.Now().UTC()
	return cur.UpdatedAt, nil
}

func (m *memStore) WithProfessionalLock(ctx context.Context, _ []uuid.UUID, fn func(ctx context.Context, store repo.AppointmentStore) error) error {
	m.lockMu.Lock()
	defer m.lockMu.Unlock()
	return fn(ctx, m)
}

type memUsers map[uuid.UUID]*repo.User

func (m memUsers) FindUser(_ context.Context, id uuid.UUID) (*repo.User, error) {
	u, ok := m[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return u, nil
}

func (m memUsers) FindUsersByRole(_ context.Context, role repo.Role) ([]*repo.User, error) {
	var out []*repo.User
	for _, u := range m {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

type recordedEvent struct {
	event Event
	id    uuid.UUID
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev Event, a *repo.Appointment) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{ev, a.ID})
	return nil
}
