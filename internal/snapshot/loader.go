package snapshot

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/sadopc/pmreport/internal/api"
)

// Fetcher reads the raw collections from the backend.
type Fetcher interface {
	ListProjects(ctx context.Context) ([]api.Project, error)
	ListTasks(ctx context.Context) ([]api.Task, error)
	ListTeams(ctx context.Context) ([]api.Team, error)
	ListTimeLogs(ctx context.Context, start, end time.Time) ([]api.TimeLog, error)
}

// Loader fetches the four collections of a snapshot concurrently.
type Loader struct {
	fetcher Fetcher
	now     func() time.Time
}

func NewLoader(f Fetcher) *Loader {
	return &Loader{fetcher: f, now: time.Now}
}

// Load fetches every collection at once and waits for all of them. A
// collection that fails is logged and left empty with a failed status;
// the others are still returned.
func (l *Loader) Load(ctx context.Context, r DateRange) Snapshot {
	logger := zerolog.Ctx(ctx)

	var (
		projects []api.Project
		tasks    []api.Task
		teams    []api.Team
		logs     []api.TimeLog
		errs     [resourceCount]error
	)

	var g errgroup.Group
	g.Go(func() error {
		projects, errs[Projects] = l.fetcher.ListProjects(ctx)
		return nil
	})
	g.Go(func() error {
		tasks, errs[Tasks] = l.fetcher.ListTasks(ctx)
		return nil
	})
	g.Go(func() error {
		teams, errs[Teams] = l.fetcher.ListTeams(ctx)
		return nil
	})
	g.Go(func() error {
		logs, errs[TimeLogs] = l.fetcher.ListTimeLogs(ctx, r.Start, r.End)
		return nil
	})
	_ = g.Wait()

	snap := New(r, projects, tasks, teams, inRange(logs, r))
	snap.LoadedAt = l.now()

	for _, res := range Resources {
		err := errs[res]
		if err == nil {
			continue
		}
		snap = snap.WithFailure(res, err)
		if errors.Is(err, context.Canceled) {
			logger.Debug().Str("resource", res.String()).Msg("fetch cancelled")
			continue
		}
		logger.Warn().
			Err(err).
			Str("resource", res.String()).
			Str("range", r.String()).
			Msg("fetch failed, continuing with empty collection")
	}

	logger.Debug().
		Str("range", r.String()).
		Int("projects", len(snap.Projects)).
		Int("tasks", len(snap.Tasks)).
		Int("teams", len(snap.Teams)).
		Int("time_logs", len(snap.TimeLogs)).
		Msg("snapshot loaded")

	return snap
}

// inRange keeps logs dated inside r, in response order. Undated logs are
// dropped.
func inRange(logs []api.TimeLog, r DateRange) []api.TimeLog {
	if logs == nil {
		return nil
	}
	out := make([]api.TimeLog, 0, len(logs))
	for _, l := range logs {
		if !l.Date.IsZero() && r.Contains(l.Date.Time) {
			out = append(out, l)
		}
	}
	return out
}
