package appointment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ridhamz/AppointmentEase/config"
	"github.com/ridhamz/AppointmentEase/internal/repo"
)

var nineAM = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store  *memStore
	users  memUsers
	events *recordingPublisher
	svc    Service

	client      Actor
	otherClient Actor
	pro         Actor
	otherPro    Actor
	admin       Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:       newMemStore(),
		users:       memUsers{},
		events:      &recordingPublisher{},
		client:      Actor{ID: uuid.New(), Role: repo.RoleClient},
		otherClient: Actor{ID: uuid.New(), Role: repo.RoleClient},
		pro:         Actor{ID: uuid.New(), Role: repo.RoleProfessional},
		otherPro:    Actor{ID: uuid.New(), Role: repo.RoleProfessional},
		admin:       Actor{ID: uuid.New(), Role: repo.RoleAdmin},
	}
	for _, a := range []Actor{f.client, f.otherClient, f.pro, f.otherPro, f.admin} {
		f.users[a.ID] = &repo.User{ID: a.ID, Name: string(a.Role), Role: a.Role}
	}
	f.svc = New(f.store, f.users, NewDetector(DefaultWindow()), f.events)
	return f
}

// seed stores an appointment of f.client with f.pro, bypassing the service.
func (f *fixture) seed(at time.Time, status repo.Status) *repo.Appointment {
	return f.store.put(repo.Appointment{
		Title:          "Consultation",
		ScheduledAt:    at,
		Status:         status,
		ClientID:       f.client.ID,
		ProfessionalID: f.pro.ID,
	})
}

func (f *fixture) book(t *testing.T, at time.Time) *repo.Appointment {
	t.Helper()
	a, err := f.svc.Create(context.Background(), f.client, CreateRequest{
		Title:          "Consultation",
		ScheduledAt:    at,
		ProfessionalID: f.pro.ID,
	})
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}
	return a
}

func ptr[T any](v T) *T { return &v }

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("new appointment is pending and owned by the client", func(t *testing.T) {
		f := newFixture(t)
		a := f.book(t, nineAM)

		if a.Status != repo.StatusPending {
			t.Errorf("Status = %s, want pending", a.Status)
		}
		if a.ClientID != f.client.ID || a.ProfessionalID != f.pro.ID {
			t.Errorf("unexpected refs %+v", a)
		}
		if a.ID == uuid.Nil {
			t.Error("expected an id to be assigned")
		}
		if f.store.count() != 1 {
			t.Errorf("store holds %d appointments, want 1", f.store.count())
		}
		if len(f.events.events) != 1 || f.events.events[0].event != EventCreated {
			t.Errorf("events = %+v, want one created event", f.events.events)
		}
	})

	tests := []struct {
		name    string
		actor   func(f *fixture) Actor
		req     func(f *fixture) CreateRequest
		wantErr error
	}{
		{
			name:  "professional cannot create",
			actor: func(f *fixture) Actor { return f.pro },
			req: func(f *fixture) CreateRequest {
				return CreateRequest{Title: "x", ScheduledAt: nineAM, ProfessionalID: f.pro.ID}
			},
			wantErr: ErrForbidden,
		},
		{
			name:  "admin cannot create",
			actor: func(f *fixture) Actor { return f.admin },
			req: func(f *fixture) CreateRequest {
				return CreateRequest{Title: "x", ScheduledAt: nineAM, ProfessionalID: f.pro.ID}
			},
			wantErr: ErrForbidden,
		},
		{
			name:  "missing title",
			actor: func(f *fixture) Actor { return f.client },
			req: func(f *fixture) CreateRequest {
				return CreateRequest{Title: "   ", ScheduledAt: nineAM, ProfessionalID: f.pro.ID}
			},
			wantErr: ErrInvalidInput,
		},
		{
			name:  "missing date",
			actor: func(f *fixture) Actor { return f.client },
			req: func(f *fixture) CreateRequest {
				return CreateRequest{Title: "x", ProfessionalID: f.pro.ID}
			},
			wantErr: ErrInvalidInput,
		},
		{
			name:  "missing professional",
			actor: func(f *fixture) Actor { return f.client },
			req: func(f *fixture) CreateRequest {
				return CreateRequest{Title: "x", ScheduledAt: nineAM}
			},
			wantErr: ErrInvalidInput,
		},
		{
			name:  "unknown professional",
			actor: func(f *fixture) Actor { return f.client },
			req: func(f *fixture) CreateRequest {
				return CreateRequest{Title: "x", ScheduledAt: nineAM, ProfessionalID: uuid.New()}
			},
			wantErr: ErrProfessionalNotFound,
		},
		{
			name:  "professional reference with another role",
			actor: func(f *fixture) Actor { return f.client },
			req: func(f *fixture) CreateRequest {
				return CreateRequest{Title: "x", ScheduledAt: nineAM, ProfessionalID: f.otherClient.ID}
			},
			wantErr: ErrNotProfessional,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.Create(ctx, tt.actor(f), tt.req(f))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Create() error = %v, want %v", err, tt.wantErr)
			}
			if f.store.count() != 0 {
				t.Errorf("rejected create left %d appointments", f.store.count())
			}
		})
	}
}

func TestCreateRejectedOnConflictLeavesStoreUnchanged(t *testing.T) {
	f := newFixture(t)
	f.book(t, nineAM)

	_, err := f.svc.Create(context.Background(), f.otherClient, CreateRequest{
		Title:          "Second",
		ScheduledAt:    nineAM.Add(30 * time.Second),
		ProfessionalID: f.pro.ID,
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("Create() error = %v, want ErrConflict", err)
	}
	if KindOf(err) != KindConflict {
		t.Errorf("KindOf() = %s, want conflict", KindOf(err))
	}
	if f.store.count() != 1 {
		t.Errorf("store holds %d appointments, want 1", f.store.count())
	}
}

func TestCreateUniqueIndexBackstop(t *testing.T) {
	f := newFixture(t)
	// Stands in for a write the pre-check could not see: a zero window with a
	// minute bucket, which config validation would refuse.
	f.svc = New(f.store, f.users, NewDetector(Window{}), f.events)
	f.book(t, nineAM.Add(10*time.Second))

	_, err := f.svc.Create(context.Background(), f.client, CreateRequest{
		Title:          "Same minute",
		ScheduledAt:    nineAM.Add(50 * time.Second),
		ProfessionalID: f.pro.ID,
	})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("Create() error = %v, want ErrConflict from the unique index", err)
	}
}

// With a validated booking config, storage never rejects a slot the detector
// reports as free.
func TestCreateSlotBucketAgreesWithWindow(t *testing.T) {
	tests := []struct {
		name    string
		booking config.BookingConfig
		first   time.Time
		second  time.Time
	}{
		{
			name:    "default window",
			booking: config.BookingConfig{WindowBefore: time.Minute, WindowAfter: 2 * time.Minute, SlotBucket: time.Minute},
			first:   nineAM.Add(10 * time.Second),
			second:  nineAM.Add(80 * time.Second),
		},
		{
			name:    "zero window",
			booking: config.BookingConfig{SlotBucket: time.Microsecond},
			first:   nineAM.Add(10 * time.Second),
			second:  nineAM.Add(40 * time.Second),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Config{
				Server:         config.ServerConfig{Port: 8080},
				Authentication: config.AuthenticationConfig{Paseto: config.PasetoConfig{Mode: "local"}},
				Booking:        tt.booking,
			}
			if err := cfg.Validate(); err != nil {
				t.Fatalf("Validate() = %v", err)
			}

			f := newFixture(t)
			f.store.bucket = tt.booking.SlotBucket
			f.svc = New(f.store, f.users, NewDetector(WindowFromConfig(tt.booking)), f.events)
			f.book(t, tt.first)

			busy, err := f.svc.HasConflict(context.Background(), f.pro.ID, tt.second, nil)
			if err != nil || busy {
				t.Fatalf("HasConflict() = %v, %v; want free", busy, err)
			}
			if _, err := f.svc.Create(context.Background(), f.client, CreateRequest{
				Title:          "Second",
				ScheduledAt:    tt.second,
				ProfessionalID: f.pro.ID,
			}); err != nil {
				t.Errorf("Create() error = %v, want the free slot booked", err)
			}
		})
	}
}

func TestConcurrentCreateBooksSlotOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const n = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Create(ctx, f.client, CreateRequest{
				Title:          "Race",
				ScheduledAt:    nineAM,
				ProfessionalID: f.pro.ID,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if ok != 1 || conflicts != n-1 {
		t.Errorf("ok=%d conflicts=%d, want 1 and %d", ok, conflicts, n-1)
	}
	if f.store.count() != 1 {
		t.Errorf("store holds %d appointments, want 1", f.store.count())
	}
}

func TestGet(t *testing.T) {
	f := newFixture(t)
	a := f.seed(nineAM, repo.StatusCompleted)
	ctx := context.Background()

	for _, actor := range []Actor{f.client, f.pro, f.admin} {
		if _, err := f.svc.Get(ctx, actor, a.ID); err != nil {
			t.Errorf("Get() as %s: %v", actor.Role, err)
		}
	}
	for _, actor := range []Actor{f.otherClient, f.otherPro} {
		if _, err := f.svc.Get(ctx, actor, a.ID); !errors.Is(err, ErrForbidden) {
			t.Errorf("Get() as unrelated %s error = %v, want ErrForbidden", actor.Role, err)
		}
	}
	if _, err := f.svc.Get(ctx, f.admin, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() unknown id error = %v, want ErrNotFound", err)
	}
}

func TestReadsPopulatePartyNames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.users[f.client.ID].Name = "Ada Lovelace"
	f.users[f.pro.ID].Name = "Dr. Grace Hopper"

	a := f.seed(nineAM, repo.StatusPending)
	orphan := f.store.put(repo.Appointment{Title: "orphan", ScheduledAt: nineAM.Add(time.Hour), ClientID: uuid.New(), ProfessionalID: f.pro.ID})

	tests := []struct {
		name    string
		read    func() (*repo.Appointment, error)
		wantCli string
		wantPro string
	}{
		{"get", func() (*repo.Appointment, error) { return f.svc.Get(ctx, f.client, a.ID) }, "Ada Lovelace", "Dr. Grace Hopper"},
		{"list", func() (*repo.Appointment, error) {
			got, err := f.svc.List(ctx, f.client, ListRequest{})
			if err != nil || len(got) != 1 {
				return nil, fmt.Errorf("List() = %v, %v", got, err)
			}
			return got[0], nil
		}, "Ada Lovelace", "Dr. Grace Hopper"},
		{"unknown client", func() (*repo.Appointment, error) { return f.svc.Get(ctx, f.admin, orphan.ID) }, "", "Dr. Grace Hopper"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.read()
			if err != nil {
				t.Fatalf("read error: %v", err)
			}
			if got.ClientName != tt.wantCli || got.ProfessionalName != tt.wantPro {
				t.Errorf("names = %q, %q; want %q, %q", got.ClientName, got.ProfessionalName, tt.wantCli, tt.wantPro)
			}
		})
	}
}

func TestGetPropagatesStoreFailure(t *testing.T) {
	f := newFixture(t)
	f.store.failFind = errors.New("connection reset")

	_, err := f.svc.Get(context.Background(), f.admin, uuid.New())
	if err == nil || KindOf(err) != KindPersistence {
		t.Errorf("Get() error = %v (kind %s), want a persistence failure", err, KindOf(err))
	}
}

func TestList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mine := f.seed(nineAM, repo.StatusPending)
	f.store.put(repo.Appointment{Title: "other", ScheduledAt: nineAM, ClientID: f.otherClient.ID, ProfessionalID: f.otherPro.ID})
	f.store.put(repo.Appointment{Title: "other pro", ScheduledAt: nineAM.Add(time.Hour), ClientID: f.client.ID, ProfessionalID: f.otherPro.ID, Status: repo.StatusConfirmed})

	tests := []struct {
		name  string
		actor Actor
		req   ListRequest
		want  int
	}{
		{"client sees own", f.client, ListRequest{}, 2},
		{"client filters by status", f.client, ListRequest{Status: ptr("confirmed")}, 1},
		{"professional sees assigned", f.pro, ListRequest{}, 1},
		{"other professional sees assigned", f.otherPro, ListRequest{}, 2},
		{"admin sees all", f.admin, ListRequest{}, 3},
		{"admin pages", f.admin, ListRequest{Page: 2, PerPage: 2}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.svc.List(ctx, tt.actor, tt.req)
			if err != nil {
				t.Fatalf("List() error: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("List() returned %d, want %d", len(got), tt.want)
			}
		})
	}

	got, _ := f.svc.List(ctx, f.pro, ListRequest{})
	if len(got) == 1 && got[0].ID != mine.ID {
		t.Errorf("professional listed %v, want %v", got[0].ID, mine.ID)
	}

	if _, err := f.svc.List(ctx, f.admin, ListRequest{Status: ptr("archived")}); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("List() with bad status error = %v, want ErrInvalidStatus", err)
	}
	if _, err := f.svc.List(ctx, Actor{ID: uuid.New(), Role: "guest"}, ListRequest{}); !errors.Is(err, ErrForbidden) {
		t.Errorf("List() as unknown role error = %v, want ErrForbidden", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		from    repo.Status
		to      string
		actor   func(f *fixture) Actor
		want    repo.Status
		wantErr error
	}{
		{"assigned professional confirms", repo.StatusPending, "confirmed", func(f *fixture) Actor { return f.pro }, repo.StatusConfirmed, nil},
		{"assigned professional rejects", repo.StatusPending, "canceled", func(f *fixture) Actor { return f.pro }, repo.StatusCanceled, nil},
		{"admin completes", repo.StatusConfirmed, "completed", func(f *fixture) Actor { return f.admin }, repo.StatusCompleted, nil},
		{"other professional", repo.StatusPending, "confirmed", func(f *fixture) Actor { return f.otherPro }, "", ErrForbidden},
		{"client cannot update status", repo.StatusPending, "confirmed", func(f *fixture) Actor { return f.client }, "", ErrForbidden},
		{"unknown status", repo.StatusPending, "archived", func(f *fixture) Actor { return f.pro }, "", ErrInvalidStatus},
		{"pending to completed", repo.StatusPending, "completed", func(f *fixture) Actor { return f.pro }, "", ErrInvalidTransition},
		{"confirmed back to pending", repo.StatusConfirmed, "pending", func(f *fixture) Actor { return f.admin }, "", ErrInvalidTransition},
		{"confirmed to canceled is the cancel path", repo.StatusConfirmed, "canceled", func(f *fixture) Actor { return f.pro }, "", ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			a := f.seed(nineAM, tt.from)

			got, err := f.svc.UpdateStatus(ctx, tt.actor(f), a.ID, tt.to)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("UpdateStatus() error = %v, want %v", err, tt.wantErr)
				}
				stored, _ := f.store.FindAppointment(ctx, a.ID)
				if stored.Status != tt.from {
					t.Errorf("rejected transition changed status to %s", stored.Status)
				}
				return
			}
			if err != nil {
				t.Fatalf("UpdateStatus() error: %v", err)
			}
			if got.Status != tt.want {
				t.Errorf("Status = %s, want %s", got.Status, tt.want)
			}
		})
	}
}

func TestCancel(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		from    repo.Status
		actor   func(f *fixture) Actor
		wantErr error
	}{
		{"owner cancels pending", repo.StatusPending, func(f *fixture) Actor { return f.client }, nil},
		{"owner cancels confirmed", repo.StatusConfirmed, func(f *fixture) Actor { return f.client }, nil},
		{"admin cancels", repo.StatusConfirmed, func(f *fixture) Actor { return f.admin }, nil},
		{"other client", repo.StatusPending, func(f *fixture) Actor { return f.otherClient }, ErrForbidden},
		{"professional uses status update instead", repo.StatusPending, func(f *fixture) Actor { return f.pro }, ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			a := f.seed(nineAM, tt.from)

			got, err := f.svc.Cancel(ctx, tt.actor(f), a.ID)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Cancel() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && got.Status != repo.StatusCanceled {
				t.Errorf("Status = %s, want canceled", got.Status)
			}
		})
	}
}

func TestEdit(t *testing.T) {
	ctx := context.Background()

	t.Run("owner edits fields", func(t *testing.T) {
		f := newFixture(t)
		a := f.seed(nineAM, repo.StatusConfirmed)

		got, err := f.svc.Edit(ctx, f.client, a.ID, EditRequest{Title: ptr("Follow-up"), Notes: ptr("bring results")})
		if err != nil {
			t.Fatalf("Edit() error: %v", err)
		}
		if got.Title != "Follow-up" || got.Notes != "bring results" {
			t.Errorf("fields not updated: %+v", got)
		}
	})

	t.Run("edit without schedule change skips the detector", func(t *testing.T) {
		f := newFixture(t)
		a := f.seed(nineAM, repo.StatusPending)
		// Legacy neighbour inside the window, stored before the guard existed.
		f.store.put(repo.Appointment{Title: "neighbour", ScheduledAt: nineAM.Add(90 * time.Second), ClientID: f.otherClient.ID, ProfessionalID: f.pro.ID})

		if _, err := f.svc.Edit(ctx, f.client, a.ID, EditRequest{Title: ptr("Renamed")}); err != nil {
			t.Errorf("Edit() error = %v, want nil", err)
		}
	})

	t.Run("reschedule onto a taken slot is all-or-nothing", func(t *testing.T) {
		f := newFixture(t)
		a := f.seed(nineAM, repo.StatusPending)
		f.store.put(repo.Appointment{Title: "busy", ScheduledAt: nineAM.Add(time.Hour), ClientID: f.otherClient.ID, ProfessionalID: f.pro.ID})

		_, err := f.svc.Edit(ctx, f.client, a.ID, EditRequest{
			Title:       ptr("Moved"),
			ScheduledAt: ptr(nineAM.Add(time.Hour + time.Minute)),
		})
		if !errors.Is(err, ErrConflict) {
			t.Fatalf("Edit() error = %v, want ErrConflict", err)
		}
		stored, _ := f.store.FindAppointment(ctx, a.ID)
		if stored.Title != "Consultation" || !stored.ScheduledAt.Equal(nineAM) {
			t.Errorf("rejected edit changed the appointment: %+v", stored)
		}
	})

	t.Run("reschedule by one minute does not conflict with itself", func(t *testing.T) {
		f := newFixture(t)
		a := f.seed(nineAM, repo.StatusPending)

		got, err := f.svc.Edit(ctx, f.client, a.ID, EditRequest{ScheduledAt: ptr(nineAM.Add(time.Minute))})
		if err != nil {
			t.Fatalf("Edit() error: %v", err)
		}
		if !got.ScheduledAt.Equal(nineAM.Add(time.Minute)) {
			t.Errorf("ScheduledAt = %v", got.ScheduledAt)
		}
	})

	t.Run("reassign to another professional", func(t *testing.T) {
		f := newFixture(t)
		a := f.seed(nineAM, repo.StatusPending)

		got, err := f.svc.Edit(ctx, f.client, a.ID, EditRequest{ProfessionalID: ptr(f.otherPro.ID)})
		if err != nil {
			t.Fatalf("Edit() error: %v", err)
		}
		if got.ProfessionalID != f.otherPro.ID {
			t.Errorf("ProfessionalID = %v, want %v", got.ProfessionalID, f.otherPro.ID)
		}
	})

	rejects := []struct {
		name    string
		actor   func(f *fixture) Actor
		req     func(f *fixture) EditRequest
		wantErr error
	}{
		{"professional never edits", func(f *fixture) Actor { return f.pro }, func(f *fixture) EditRequest { return EditRequest{Title: ptr("x")} }, ErrForbidden},
		{"admin never edits", func(f *fixture) Actor { return f.admin }, func(f *fixture) EditRequest { return EditRequest{Title: ptr("x")} }, ErrForbidden},
		{"other client", func(f *fixture) Actor { return f.otherClient }, func(f *fixture) EditRequest { return EditRequest{Title: ptr("x")} }, ErrForbidden},
		{"empty title", func(f *fixture) Actor { return f.client }, func(f *fixture) EditRequest { return EditRequest{Title: ptr(" ")} }, ErrInvalidInput},
		{"unknown professional", func(f *fixture) Actor { return f.client }, func(f *fixture) EditRequest { return EditRequest{ProfessionalID: ptr(uuid.New())} }, ErrProfessionalNotFound},
		{"reassign to a client", func(f *fixture) Actor { return f.client }, func(f *fixture) EditRequest { return EditRequest{ProfessionalID: ptr(f.otherClient.ID)} }, ErrNotProfessional},
	}

	for _, tt := range rejects {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			a := f.seed(nineAM, repo.StatusPending)

			_, err := f.svc.Edit(ctx, tt.actor(f), a.ID, tt.req(f))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Edit() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("unknown appointment", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.svc.Edit(ctx, f.client, uuid.New(), EditRequest{Title: ptr("x")}); !errors.Is(err, ErrNotFound) {
			t.Errorf("Edit() error = %v, want ErrNotFound", err)
		}
	})
}

func TestTerminalImmutability(t *testing.T) {
	ctx := context.Background()

	for _, status := range []repo.Status{repo.StatusCompleted, repo.StatusCanceled} {
		f := newFixture(t)
		a := f.seed(nineAM, status)

		for _, actor := range []Actor{f.client, f.otherClient, f.pro, f.otherPro, f.admin} {
			name := string(status) + "/" + string(actor.Role)
			t.Run(name, func(t *testing.T) {
				if _, err := f.svc.Edit(ctx, actor, a.ID, EditRequest{Title: ptr("x")}); !errors.Is(err, ErrImmutable) {
					t.Errorf("Edit() error = %v, want ErrImmutable", err)
				}
				if _, err := f.svc.Cancel(ctx, actor, a.ID); !errors.Is(err, ErrImmutable) {
					t.Errorf("Cancel() error = %v, want ErrImmutable", err)
				}
				for _, to := range []string{"pending", "confirmed", "completed", "canceled"} {
					if _, err := f.svc.UpdateStatus(ctx, actor, a.ID, to); !errors.Is(err, ErrImmutable) {
						t.Errorf("UpdateStatus(%s) error = %v, want ErrImmutable", to, err)
					}
				}
			})
		}

		stored, _ := f.store.FindAppointment(ctx, a.ID)
		if stored.Status != status || stored.Title != "Consultation" {
			t.Errorf("terminal appointment was mutated: %+v", stored)
		}
	}
}

func TestStaleTransitionReportsFreshState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.seed(nineAM, repo.StatusPending)

	stale := &staleStore{memStore: f.store, advanceTo: repo.StatusCanceled}
	svc := New(stale, f.users, nil, nil)

	if _, err := svc.UpdateStatus(ctx, f.pro, a.ID, "confirmed"); !errors.Is(err, ErrImmutable) {
		t.Errorf("UpdateStatus() error = %v, want ErrImmutable after a concurrent cancel", err)
	}
}

// staleStore moves the appointment to advanceTo right before a transition,
// as a concurrent writer would.
type staleStore struct {
	*memStore
	advanceTo repo.Status
}

func (s *staleStore) TransitionStatus(ctx context.Context, id uuid.UUID, from, to repo.Status) (time.Time, error) {
	s.memStore.mu.Lock()
	s.memStore.appts[id].Status = s.advanceTo
	s.memStore.mu.Unlock()
	return s.memStore.TransitionStatus(ctx, id, from, to)
}

func TestScenarioDoubleBooking(t *testing.T) {
	f := newFixture(t)
	f.book(t, nineAM)

	_, err := f.svc.Create(context.Background(), f.client, CreateRequest{
		Title:          "Again",
		ScheduledAt:    nineAM.Add(time.Minute),
		ProfessionalID: f.pro.ID,
	})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("second booking error = %v, want ErrConflict", err)
	}
}

func TestScenarioProfessionalConfirmsThenCompletes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.book(t, nineAM)

	got, err := f.svc.UpdateStatus(ctx, f.pro, a.ID, "confirmed")
	if err != nil || got.Status != repo.StatusConfirmed {
		t.Fatalf("confirm = %v, %v", got, err)
	}

	if _, err := f.svc.Edit(ctx, f.pro, a.ID, EditRequest{Title: ptr("Renamed")}); !errors.Is(err, ErrForbidden) {
		t.Errorf("professional edit error = %v, want ErrForbidden", err)
	}

	got, err = f.svc.UpdateStatus(ctx, f.pro, a.ID, "completed")
	if err != nil || got.Status != repo.StatusCompleted {
		t.Fatalf("complete = %v, %v", got, err)
	}

	var evs []Event
	for _, e := range f.events.events {
		evs = append(evs, e.event)
	}
	want := []Event{EventCreated, EventConfirmed, EventCompleted}
	if len(evs) != len(want) {
		t.Fatalf("events = %v, want %v", evs, want)
	}
	for i := range want {
		if evs[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, evs[i], want[i])
		}
	}
}

func TestScenarioClientReschedules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.book(t, nineAM)
	f.book(t, nineAM.Add(2*time.Hour))

	newSlot := nineAM.Add(time.Hour)
	got, err := f.svc.Edit(ctx, f.client, a.ID, EditRequest{ScheduledAt: &newSlot, Title: ptr("Moved")})
	if err != nil {
		t.Fatalf("Edit() error: %v", err)
	}
	if !got.ScheduledAt.Equal(newSlot) || got.Title != "Moved" {
		t.Errorf("fields not updated: %+v", got)
	}

	stored, _ := f.store.FindAppointment(ctx, a.ID)
	if !stored.ScheduledAt.Equal(newSlot) {
		t.Errorf("stored ScheduledAt = %v, want %v", stored.ScheduledAt, newSlot)
	}
}

func TestScenarioAdminCancels(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.book(t, nineAM)

	got, err := f.svc.Cancel(ctx, f.admin, a.ID)
	if err != nil || got.Status != repo.StatusCanceled {
		t.Fatalf("admin cancel = %v, %v", got, err)
	}

	_, err = f.svc.Edit(ctx, f.client, a.ID, EditRequest{Title: ptr("Too late")})
	if !errors.Is(err, ErrImmutable) {
		t.Errorf("edit after cancel error = %v, want ErrImmutable", err)
	}
	if KindOf(err) != KindImmutable {
		t.Errorf("KindOf() = %s, want immutable", KindOf(err))
	}

	// The freed slot can be booked again.
	if _, err := f.svc.Create(ctx, f.otherClient, CreateRequest{Title: "Next", ScheduledAt: nineAM, ProfessionalID: f.pro.ID}); err != nil {
		t.Errorf("booking a canceled slot: %v", err)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{nil, ""},
		{ErrForbidden, KindAuthorization},
		{ErrNotFound, KindNotFound},
		{ErrProfessionalNotFound, KindNotFound},
		{ErrInvalidInput, KindValidation},
		{ErrInvalidStatus, KindValidation},
		{ErrInvalidTransition, KindValidation},
		{ErrNotProfessional, KindValidation},
		{ErrConflict, KindConflict},
		{ErrImmutable, KindImmutable},
		{errors.New("disk full"), KindPersistence},
	}

	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Errorf("KindOf(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
