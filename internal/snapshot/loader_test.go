package snapshot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/pmreport/internal/api"
)

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) ListProjects(ctx context.Context) ([]api.Project, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]api.Project), args.Error(1)
}

func (m *mockFetcher) ListTasks(ctx context.Context) ([]api.Task, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]api.Task), args.Error(1)
}

func (m *mockFetcher) ListTeams(ctx context.Context) ([]api.Team, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]api.Team), args.Error(1)
}

func (m *mockFetcher) ListTimeLogs(ctx context.Context, start, end time.Time) ([]api.TimeLog, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]api.TimeLog), args.Error(1)
}

func october() DateRange {
	r, _ := ParseDateRange("2026-10-01", "2026-10-31")
	return r
}

func TestLoader_Load_AllResources(t *testing.T) {
	// Given
	r := october()
	m := &mockFetcher{}
	m.On("ListProjects", mock.Anything).Return([]api.Project{{ID: "p1"}, {ID: "p2"}}, nil)
	m.On("ListTasks", mock.Anything).Return([]api.Task{{ID: "t1", ProjectID: "p1"}}, nil)
	m.On("ListTeams", mock.Anything).Return([]api.Team{}, nil)
	m.On("ListTimeLogs", mock.Anything, r.Start, r.End).Return([]api.TimeLog{
		{ID: "l1", Date: api.NewDate(2026, 10, 2)},
		{ID: "l2", Date: api.NewDate(2026, 9, 30)},
		{ID: "l3", Date: api.NewDate(2026, 10, 31)},
	}, nil)

	// When
	snap := NewLoader(m).Load(context.Background(), r)

	// Then
	m.AssertExpectations(t)
	assert.Len(t, snap.Projects, 2)
	assert.Equal(t, "p1", snap.Projects[0].ID, "response order is kept")
	assert.Len(t, snap.Tasks, 1)
	require.Len(t, snap.TimeLogs, 2, "logs outside the range are dropped")
	assert.Equal(t, "l1", snap.TimeLogs[0].ID)
	assert.Equal(t, "l3", snap.TimeLogs[1].ID)

	assert.Equal(t, StateLoaded, snap.Status(Projects).State)
	assert.Equal(t, 2, snap.Status(Projects).Count)
	assert.Equal(t, StateEmpty, snap.Status(Teams).State)
	assert.False(t, snap.Partial())
	assert.False(t, snap.LoadedAt.IsZero())
}

func TestLoader_Load_DropsUndatedLogs(t *testing.T) {
	r := october()
	m := &mockFetcher{}
	m.On("ListProjects", mock.Anything).Return([]api.Project{}, nil)
	m.On("ListTasks", mock.Anything).Return([]api.Task{}, nil)
	m.On("ListTeams", mock.Anything).Return([]api.Team{}, nil)
	m.On("ListTimeLogs", mock.Anything, r.Start, r.End).Return([]api.TimeLog{
		{ID: "l1", Hours: 4},
		{ID: "l2", Date: api.NewDate(2026, 10, 9), Hours: 2},
	}, nil)

	snap := NewLoader(m).Load(context.Background(), r)

	require.Len(t, snap.TimeLogs, 1)
	assert.Equal(t, "l2", snap.TimeLogs[0].ID)
}

func TestLoader_Load_PartialFailure(t *testing.T) {
	// Given
	r := october()
	boom := errors.New("connection reset")
	m := &mockFetcher{}
	m.On("ListProjects", mock.Anything).Return([]api.Project{{ID: "p1"}}, nil)
	m.On("ListTasks", mock.Anything).Return(nil, boom)
	m.On("ListTeams", mock.Anything).Return([]api.Team{{ID: "team"}}, nil)
	m.On("ListTimeLogs", mock.Anything, r.Start, r.End).Return(nil, boom)

	// When
	snap := NewLoader(m).Load(context.Background(), r)

	// Then
	assert.Len(t, snap.Projects, 1)
	assert.Empty(t, snap.Tasks)
	assert.Empty(t, snap.TimeLogs)
	assert.Len(t, snap.Teams, 1)
	assert.True(t, snap.Partial())
	assert.Equal(t, []Resource{Tasks, TimeLogs}, snap.Failed())
	assert.Equal(t, StateFailed, snap.Status(Tasks).State)
	assert.ErrorIs(t, snap.Status(Tasks).Err, boom)
	assert.Equal(t, "failed", snap.Statuses()["time_logs"])
	assert.Equal(t, "loaded", snap.Statuses()["projects"])
}

// blockingFetcher records how many fetches are in flight at once.
type blockingFetcher struct {
	mu       sync.Mutex
	inFlight int
	peak     int
	release  chan struct{}
}

func (b *blockingFetcher) enter() {
	b.mu.Lock()
	b.inFlight++
	if b.inFlight > b.peak {
		b.peak = b.inFlight
	}
	b.mu.Unlock()
	<-b.release
	b.mu.Lock()
	b.inFlight--
	b.mu.Unlock()
}

func (b *blockingFetcher) ListProjects(context.Context) ([]api.Project, error) {
	b.enter()
	return nil, nil
}

func (b *blockingFetcher) ListTasks(context.Context) ([]api.Task, error) {
	b.enter()
	return nil, nil
}

func (b *blockingFetcher) ListTeams(context.Context) ([]api.Team, error) {
	b.enter()
	return nil, nil
}

func (b *blockingFetcher) ListTimeLogs(context.Context, time.Time, time.Time) ([]api.TimeLog, error) {
	b.enter()
	return nil, nil
}

func TestLoader_Load_FetchesConcurrently(t *testing.T) {
	b := &blockingFetcher{release: make(chan struct{})}
	done := make(chan Snapshot)

	go func() { done <- NewLoader(b).Load(context.Background(), october()) }()

	require.Eventually(t, func() bool {
		b.mu.Lock()
		defer b.mu.Unlock()
		return b.inFlight == 4
	}, time.Second, 5*time.Millisecond)
	close(b.release)

	snap := <-done
	assert.Equal(t, 4, b.peak)
	assert.True(t, snap.Empty())
	assert.False(t, snap.Partial())
}

func TestTracker_AcceptsOnlyLatest(t *testing.T) {
	tr := NewTracker()
	assert.False(t, tr.Accept(0))

	ctx1, gen1 := tr.Begin(context.Background())
	assert.True(t, tr.Accept(gen1))

	ctx2, gen2 := tr.Begin(context.Background())
	assert.Greater(t, gen2, gen1)
	assert.False(t, tr.Accept(gen1), "superseded generation is rejected")
	assert.True(t, tr.Accept(gen2))
	assert.Equal(t, gen2, tr.Latest())

	assert.ErrorIs(t, ctx1.Err(), context.Canceled, "superseded load is cancelled")
	assert.NoError(t, ctx2.Err())
}

func TestSnapshot_WithFailure(t *testing.T) {
	snap := New(october(), []api.Project{{ID: "p1"}}, nil, nil, nil)
	failed := snap.WithFailure(Projects, errors.New("down"))

	assert.Len(t, snap.Projects, 1, "original is untouched")
	assert.Empty(t, failed.Projects)
	assert.Equal(t, StateFailed, failed.Status(Projects).State)
	assert.Equal(t, StateEmpty, failed.Status(Tasks).State)
}
