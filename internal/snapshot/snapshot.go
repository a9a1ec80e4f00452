package snapshot

import (
	"context"
	"sync"
	"time"

	"github.com/sadopc/pmreport/internal/api"
)

// Resource identifies one of the four collections in a snapshot.
type Resource int

const (
	Projects Resource = iota
	Tasks
	Teams
	TimeLogs
	resourceCount
)

// Resources lists every collection in fetch order.
var Resources = []Resource{Projects, Tasks, Teams, TimeLogs}

func (r Resource) String() string {
	switch r {
	case Projects:
		return "projects"
	case Tasks:
		return "tasks"
	case Teams:
		return "teams"
	case TimeLogs:
		return "time_logs"
	}
	return "unknown"
}

// State distinguishes a collection that loaded empty from one that failed.
type State int

const (
	StatePending State = iota
	StateEmpty
	StateLoaded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	}
	return "pending"
}

// Status is the load outcome of one collection.
type Status struct {
	State State
	Count int
	Err   error
}

func settled(count int, err error) Status {
	switch {
	case err != nil:
		return Status{State: StateFailed, Err: err}
	case count == 0:
		return Status{State: StateEmpty}
	}
	return Status{State: StateLoaded, Count: count}
}

// Snapshot is the set of collections one report render works from. It is
// built once per load and never mutated afterwards.
type Snapshot struct {
	Generation uint64
	Range      DateRange
	LoadedAt   time.Time

	Projects []api.Project
	Tasks    []api.Task
	Teams    []api.Team
	TimeLogs []api.TimeLog

	statuses [resourceCount]Status
}

// New builds a fully loaded snapshot from in-memory collections.
func New(r DateRange, projects []api.Project, tasks []api.Task, teams []api.Team, logs []api.TimeLog) Snapshot {
	s := Snapshot{
		Range:    r,
		Projects: projects,
		Tasks:    tasks,
		Teams:    teams,
		TimeLogs: logs,
	}
	s.statuses[Projects] = settled(len(projects), nil)
	s.statuses[Tasks] = settled(len(tasks), nil)
	s.statuses[Teams] = settled(len(teams), nil)
	s.statuses[TimeLogs] = settled(len(logs), nil)
	return s
}

func (s Snapshot) Status(r Resource) Status {
	if r < 0 || r >= resourceCount {
		return Status{}
	}
	return s.statuses[r]
}

// Statuses returns the state of every collection keyed by resource name.
func (s Snapshot) Statuses() map[string]string {
	out := make(map[string]string, resourceCount)
	for _, r := range Resources {
		out[r.String()] = s.statuses[r].State.String()
	}
	return out
}

// Partial reports whether any collection failed to load.
func (s Snapshot) Partial() bool {
	return len(s.Failed()) > 0
}

// Failed lists the collections that failed, in fetch order.
func (s Snapshot) Failed() []Resource {
	var failed []Resource
	for _, r := range Resources {
		if s.statuses[r].State == StateFailed {
			failed = append(failed, r)
		}
	}
	return failed
}

// Empty reports whether every collection loaded with zero items.
func (s Snapshot) Empty() bool {
	for _, r := range Resources {
		if s.statuses[r].Count > 0 {
			return false
		}
	}
	return true
}

// Tracker hands out load generations. Only the most recent generation is
// accepted; starting a new one cancels the context of the previous one.
type Tracker struct {
	mu     sync.Mutex
	latest uint64
	cancel context.CancelFunc
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Begin starts a new generation and returns a context that is cancelled
// once a newer generation begins.
func (t *Tracker) Begin(ctx context.Context) (context.Context, uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
	}
	t.latest++
	ctx, t.cancel = context.WithCancel(ctx)
	return ctx, t.latest
}

// Accept reports whether gen is still the latest generation.
func (t *Tracker) Accept(gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return gen != 0 && gen == t.latest
}

func (t *Tracker) Latest() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latest
}

// WithFailure returns a copy of s where resource r is marked failed and
// its collection is empty.
func (s Snapshot) WithFailure(r Resource, err error) Snapshot {
	switch r {
	case Projects:
		s.Projects = nil
	case Tasks:
		s.Tasks = nil
	case Teams:
		s.Teams = nil
	case TimeLogs:
		s.TimeLogs = nil
	default:
		return s
	}
	s.statuses[r] = settled(0, err)
	return s
}
