package calendar_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/cabinet/internal/calendar"
	"github.com/gosuda/cabinet/internal/domain"
	"github.com/gosuda/cabinet/internal/store/flatfile"
	"github.com/gosuda/cabinet/internal/tenant"
)

const testTenant = tenant.ID("marie.0a1b2c3d")

// --- mocks ---

type mockAdapter struct {
	mu       sync.Mutex
	createFn func(ctx context.Context, t tenant.ID, calendarID string, ev calendar.Event) (string, error)
	updateFn func(ctx context.Context, t tenant.ID, calendarID, eventID string, ev calendar.Event) error
	deleteFn func(ctx context.Context, t tenant.ID, calendarID, eventID string) error
	calls    []string
}

func (m *mockAdapter) record(call string) {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()
}

func (m *mockAdapter) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockAdapter) Create(ctx context.Context, t tenant.ID, calendarID string, ev calendar.Event) (string, error) {
	m.record("create")
	if m.createFn != nil {
		return m.createFn(ctx, t, calendarID, ev)
	}
	return "evt-1", nil
}

func (m *mockAdapter) Update(ctx context.Context, t tenant.ID, calendarID, eventID string, ev calendar.Event) error {
	m.record("update:" + eventID)
	if m.updateFn != nil {
		return m.updateFn(ctx, t, calendarID, eventID, ev)
	}
	return nil
}

func (m *mockAdapter) Delete(ctx context.Context, t tenant.ID, calendarID, eventID string) error {
	m.record("delete:" + eventID)
	if m.deleteFn != nil {
		return m.deleteFn(ctx, t, calendarID, eventID)
	}
	return nil
}

type mockRecorder struct {
	mu       sync.Mutex
	ids      map[string]string
	attached chan string
}

func newMockRecorder(ids map[string]string) *mockRecorder {
	return &mockRecorder{ids: ids, attached: make(chan string, 8)}
}

func (m *mockRecorder) CalendarEventID(_ context.Context, _ tenant.ID, seanceID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.ids[seanceID]
	if !ok {
		return "", fmt.Errorf("seance %s: %w", seanceID, domain.ErrNotFound)
	}
	return id, nil
}

func (m *mockRecorder) AttachCalendarEvent(_ context.Context, _ tenant.ID, seanceID, eventID string) error {
	m.mu.Lock()
	_, ok := m.ids[seanceID]
	if ok {
		m.ids[seanceID] = eventID
	}
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("seance %s: %w", seanceID, domain.ErrNotFound)
	}
	m.attached <- eventID
	return nil
}

func newOutbox(t *testing.T, a calendar.Adapter, r calendar.Recorder, attempts int) (*calendar.Outbox, string) {
	t.Helper()

	dir := t.TempDir()
	root, err := flatfile.NewRoot(dir)
	require.NoError(t, err)

	o := calendar.NewOutbox(a, r, root, calendar.OutboxConfig{
		Workers:     1,
		MaxAttempts: attempts,
		RetryDelay:  time.Millisecond,
	})
	o.Start()
	t.Cleanup(o.Shutdown)
	return o, dir
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 5*time.Millisecond)
}

func failureLog(dir string) string {
	data, _ := os.ReadFile(filepath.Join(dir, string(testTenant), "calendar_failures.log"))
	return string(data)
}

// --- tests ---

func TestOutbox_Create_AttachesEventID(t *testing.T) {
	t.Parallel()

	a := &mockAdapter{}
	r := newMockRecorder(map[string]string{"s1": ""})
	o, _ := newOutbox(t, a, r, 3)

	o.Enqueue(calendar.Effect{Tenant: testTenant, Op: domain.CalendarCreate, SeanceID: "s1", CalendarID: "primary"})

	select {
	case id := <-r.attached:
		assert.Equal(t, "evt-1", id)
	case <-time.After(2 * time.Second):
		t.Fatal("event id never attached")
	}
}

func TestOutbox_Create_SkippedWhenAlreadyLinked(t *testing.T) {
	t.Parallel()

	a := &mockAdapter{}
	r := newMockRecorder(map[string]string{"s1": "existing"})
	o, _ := newOutbox(t, a, r, 3)

	o.Enqueue(calendar.Effect{Tenant: testTenant, Op: domain.CalendarCreate, SeanceID: "s1"})
	o.Enqueue(calendar.Effect{Tenant: testTenant, Op: domain.CalendarUpdate, SeanceID: "s1"})

	eventually(t, func() bool { return len(a.Calls()) == 1 })
	assert.Equal(t, []string{"update:existing"}, a.Calls())
}

func TestOutbox_Create_SeanceGoneDropsEvent(t *testing.T) {
	t.Parallel()

	r := newMockRecorder(map[string]string{"s1": ""})
	a := &mockAdapter{}
	a.createFn = func(context.Context, tenant.ID, string, calendar.Event) (string, error) {
		// The seance disappears while the event is being created.
		r.mu.Lock()
		delete(r.ids, "s1")
		r.mu.Unlock()
		return "evt-9", nil
	}
	o, dir := newOutbox(t, a, r, 3)

	o.Enqueue(calendar.Effect{Tenant: testTenant, Op: domain.CalendarCreate, SeanceID: "s1"})

	eventually(t, func() bool { return len(a.Calls()) == 2 })
	assert.Equal(t, []string{"create", "delete:evt-9"}, a.Calls())
	assert.Empty(t, failureLog(dir))
}

func TestOutbox_Update_SkippedWhenCleared(t *testing.T) {
	t.Parallel()

	a := &mockAdapter{}
	r := newMockRecorder(map[string]string{"s1": ""})
	o, _ := newOutbox(t, a, r, 3)

	o.Enqueue(calendar.Effect{Tenant: testTenant, Op: domain.CalendarUpdate, SeanceID: "s1", EventID: "stale"})
	o.Enqueue(calendar.Effect{Tenant: testTenant, Op: domain.CalendarDelete, SeanceID: "s1", EventID: "old"})

	eventually(t, func() bool { return len(a.Calls()) == 1 })
	assert.Equal(t, []string{"delete:old"}, a.Calls())
}

func TestOutbox_RetriesThenSucceeds(t *testing.T) {
	t.Parallel()

	var (
		mu       sync.Mutex
		failures = 2
	)
	a := &mockAdapter{deleteFn: func(context.Context, tenant.ID, string, string) error {
		mu.Lock()
		defer mu.Unlock()
		if failures > 0 {
			failures--
			return errors.New("503 backend error")
		}
		return nil
	}}
	o, dir := newOutbox(t, a, newMockRecorder(nil), 5)

	o.Enqueue(calendar.Effect{Tenant: testTenant, Op: domain.CalendarDelete, SeanceID: "s1", EventID: "e"})

	eventually(t, func() bool { return len(a.Calls()) == 3 })
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, a.Calls(), 3)
	assert.Empty(t, failureLog(dir))
}

func TestOutbox_ExhaustedAttemptsAreLogged(t *testing.T) {
	t.Parallel()

	a := &mockAdapter{deleteFn: func(context.Context, tenant.ID, string, string) error {
		return errors.New("connection reset")
	}}
	o, dir := newOutbox(t, a, newMockRecorder(nil), 3)

	o.Enqueue(calendar.Effect{Tenant: testTenant, Op: domain.CalendarDelete, SeanceID: "s1", EventID: "e1"})

	eventually(t, func() bool { return strings.Contains(failureLog(dir), "connection reset") })
	assert.Len(t, a.Calls(), 3)

	line := strings.TrimSpace(failureLog(dir))
	fields := strings.Split(line, "\t")
	require.Len(t, fields, 6)
	assert.Equal(t, "delete", fields[1])
	assert.Equal(t, "s1", fields[2])
	assert.Equal(t, "e1", fields[3])
	assert.Equal(t, "3", fields[4])
}

func TestOutbox_PermanentErrorNotRetried(t *testing.T) {
	t.Parallel()

	a := &mockAdapter{createFn: func(context.Context, tenant.ID, string, calendar.Event) (string, error) {
		return "", fmt.Errorf("not connected: %w", calendar.ErrPermanent)
	}}
	o, dir := newOutbox(t, a, newMockRecorder(map[string]string{"s1": ""}), 5)

	o.Enqueue(calendar.Effect{Tenant: testTenant, Op: domain.CalendarCreate, SeanceID: "s1"})

	eventually(t, func() bool { return failureLog(dir) != "" })
	assert.Equal(t, []string{"create"}, a.Calls())
}

func TestOutbox_NoneIsIgnored(t *testing.T) {
	t.Parallel()

	a := &mockAdapter{}
	o, dir := newOutbox(t, a, newMockRecorder(nil), 1)

	o.Enqueue(calendar.Effect{Tenant: testTenant, Op: domain.CalendarNone, SeanceID: "s1"})
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, a.Calls())
	assert.Empty(t, failureLog(dir))
}

func TestOutbox_EnqueueAfterShutdown(t *testing.T) {
	t.Parallel()

	a := &mockAdapter{}
	o, dir := newOutbox(t, a, newMockRecorder(nil), 1)
	o.Shutdown()

	o.Enqueue(calendar.Effect{Tenant: testTenant, Op: domain.CalendarDelete, SeanceID: "s1", EventID: "e"})
	assert.Contains(t, failureLog(dir), "outbox shut down")
	assert.Empty(t, a.Calls())
}

// --- EventFor ---

func TestEventFor(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 5, 4, 14, 0, 0, 0, time.UTC)
	s := &domain.Seance{DateHeure: start}
	settings := domain.DefaultSettings()
	minutes := 45

	t.Run("tarif duration", func(t *testing.T) {
		t.Parallel()

		ev := calendar.EventFor(s, &domain.Client{Nom: "Dupont", Prenom: "Marie"}, &domain.Tarif{Libelle: "Consultation", Duree: &minutes}, settings)
		assert.Equal(t, "Séance - Marie Dupont", ev.Summary)
		assert.Equal(t, "Consultation", ev.Description)
		assert.Equal(t, start, ev.Start)
		assert.Equal(t, start.Add(45*time.Minute), ev.End)
	})

	t.Run("missing references", func(t *testing.T) {
		t.Parallel()

		ev := calendar.EventFor(s, nil, nil, settings)
		assert.Equal(t, "Séance - Inconnu", ev.Summary)
		assert.Equal(t, start.Add(60*time.Minute), ev.End)
	})

	t.Run("settings default duration", func(t *testing.T) {
		t.Parallel()

		custom := domain.DefaultSettings()
		custom.Calendar.DefaultDuration = 50
		ev := calendar.EventFor(s, nil, &domain.Tarif{}, custom)
		assert.Equal(t, start.Add(50*time.Minute), ev.End)
	})
}
