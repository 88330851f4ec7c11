package retention

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/mediakeep/mediakeep/internal/config"
	"github.com/mediakeep/mediakeep/internal/fsutil"
	"github.com/mediakeep/mediakeep/internal/lockfile"
	"golang.org/x/sync/errgroup"
)

// Level indicates the severity/type of a sweep message.
type Level int

const (
	LevelInfo Level = iota
	LevelVerbose
	LevelWarning
	LevelError
)

// Event represents a sweep progress update. Path carries the affected
// file (or the sweep root for pattern-level messages) as a structured
// field for the log sink.
type Event struct {
	Message string
	Level   Level
	Path    string
}

// Request describes one declarative-mode sweep. It is immutable for the
// duration of the sweep.
type Request struct {
	// Root is the directory to enumerate. A root that does not exist
	// yields an empty candidate set, not an error.
	Root string

	// Patterns are base-name glob patterns. A pattern with zero matches
	// contributes nothing.
	Patterns []string

	// RetentionDays is the minimum age, in days, a file must reach
	// before it becomes eligible for deletion. Zero qualifies every file
	// modified strictly before the sweep started.
	RetentionDays int
}

// Outcome classifies what happened to a single candidate.
type Outcome int

const (
	// OutcomeDeleted: the file was removed.
	OutcomeDeleted Outcome = iota

	// OutcomeWouldDelete: dry-run only; the file qualified but was kept.
	OutcomeWouldDelete

	// OutcomeSkippedLocked: another actor holds the file; skipped.
	OutcomeSkippedLocked

	// OutcomeVanished: the file disappeared between search and delete.
	OutcomeVanished

	// OutcomeFailed: deletion failed (permission or I/O error).
	OutcomeFailed
)

// String returns a short label for logs and reports.
func (o Outcome) String() string {
	switch o {
	case OutcomeDeleted:
		return "deleted"
	case OutcomeWouldDelete:
		return "would-delete"
	case OutcomeSkippedLocked:
		return "skipped-locked"
	case OutcomeVanished:
		return "vanished"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result records the outcome for one candidate file.
type Result struct {
	Path    string
	Outcome Outcome
	Err     error
}

// Report summarizes one sweep. Candidates counts the merged, de-duplicated
// set collected before the deletion phase began.
type Report struct {
	Candidates    int
	Deleted       int
	SkippedLocked int
	Vanished      int
	Failed        int
	Results       []Result
}

func (r *Report) add(res Result) {
	r.Results = append(r.Results, res)
	switch res.Outcome {
	case OutcomeDeleted:
		r.Deleted++
	case OutcomeSkippedLocked:
		r.SkippedLocked++
	case OutcomeVanished:
		r.Vanished++
	case OutcomeFailed:
		r.Failed++
	}
}

// Sweeper coordinates retention cleanup passes.
type Sweeper struct {
	settings *config.Settings
	locks    *lockfile.Registry
	metrics  *SweepMetrics

	onEvent func(Event)
	now     func() time.Time
}

// NewSweeper creates a new Sweeper. The lock registry is probed
// defensively before every deletion so in-progress downloads survive a
// concurrent sweep; onEvent receives leveled progress messages and may
// be nil.
func NewSweeper(settings *config.Settings, locks *lockfile.Registry, onEvent func(Event)) *Sweeper {
	return &Sweeper{
		settings: settings,
		locks:    locks,
		metrics:  InitSweepMetrics(nil),
		onEvent:  onEvent,
		now:      time.Now,
	}
}

// Sweep runs one declarative-mode pass: enumerate files under req.Root
// matching req.Patterns, filter by the retention cutoff, then delete the
// merged candidate set.
//
// The candidate set is fully materialized before the first deletion.
// Per-candidate failures never abort the pass; the returned error is
// non-nil only when ctx was cancelled.
func (s *Sweeper) Sweep(ctx context.Context, req Request) (*Report, error) {
	cutoff := s.cutoff(req.RetentionDays)
	s.event(Event{
		Message: fmt.Sprintf("Sweeping %s: %d pattern(s), cutoff %s", req.Root, len(req.Patterns), cutoff.Format(time.RFC3339)),
		Level:   LevelVerbose,
		Path:    req.Root,
	})

	candidates := s.collect(ctx, req, cutoff)
	report := s.deleteCandidates(ctx, candidates)

	s.metrics.Sweeps.Inc()
	return report, ctx.Err()
}

// SweepFile runs one streaming-mode pass over a single, already-resolved
// file. It exists so the sweeper composes with callers that bring their
// own enumeration. A file that vanished, or that is newer than the
// cutoff, yields an empty report.
func (s *Sweeper) SweepFile(ctx context.Context, path string, retentionDays int) (*Report, error) {
	cutoff := s.cutoff(retentionDays)

	info, err := os.Stat(path)
	if err != nil {
		return &Report{}, ctx.Err()
	}
	if !info.ModTime().Before(cutoff) {
		s.event(Event{Message: "Keeping " + path, Level: LevelVerbose, Path: path})
		return &Report{}, ctx.Err()
	}

	report := s.deleteCandidates(ctx, []string{path})
	return report, ctx.Err()
}

// cutoff computes now − retentionDays. A file qualifies for deletion iff
// its last-modified time is strictly earlier than the cutoff.
func (s *Sweeper) cutoff(retentionDays int) time.Time {
	return s.now().Add(-time.Duration(retentionDays) * 24 * time.Hour)
}

// collect enumerates and filters candidates for every pattern, merging
// the per-pattern matches into one sorted, de-duplicated set. With
// ParallelCleanup enabled the patterns fan out across a bounded worker
// pool; the resulting set is identical either way.
func (s *Sweeper) collect(ctx context.Context, req Request, cutoff time.Time) []string {
	var (
		mu   sync.Mutex
		seen = make(map[string]struct{})
	)

	search := func(pattern string) {
		matches, err := fsutil.FindFiles(req.Root, pattern)
		if err != nil {
			s.event(Event{
				Message: fmt.Sprintf("Skipping pattern %q: %v", pattern, err),
				Level:   LevelWarning,
				Path:    req.Root,
			})
			return
		}

		for _, path := range matches {
			info, err := os.Stat(path)
			if err != nil {
				continue // vanished during the search
			}
			if !info.ModTime().Before(cutoff) {
				continue
			}
			mu.Lock()
			seen[path] = struct{}{}
			mu.Unlock()
		}
	}

	if s.settings.ParallelCleanup && len(req.Patterns) > 1 {
		g, _ := errgroup.WithContext(ctx)
		g.SetLimit(s.workerLimit())
		for _, pattern := range req.Patterns {
			g.Go(func() error {
				search(pattern)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for _, pattern := range req.Patterns {
			if ctx.Err() != nil {
				break
			}
			search(pattern)
		}
	}

	candidates := make([]string, 0, len(seen))
	for path := range seen {
		candidates = append(candidates, path)
	}
	sort.Strings(candidates)
	return candidates
}

func (s *Sweeper) workerLimit() int {
	if s.settings.MaxCleanupWorkers > 0 {
		return s.settings.MaxCleanupWorkers
	}
	return 4
}

// deleteCandidates runs the deletion phase over an already-materialized
// candidate set.
func (s *Sweeper) deleteCandidates(ctx context.Context, candidates []string) *Report {
	report := &Report{Candidates: len(candidates)}

	for _, path := range candidates {
		if ctx.Err() != nil {
			break
		}
		report.add(s.deleteOne(path))
	}

	return report
}

func (s *Sweeper) deleteOne(path string) Result {
	if s.settings.CleanupDryRun {
		s.event(Event{Message: "Would delete " + path, Level: LevelInfo, Path: path})
		return Result{Path: path, Outcome: OutcomeWouldDelete}
	}

	// Defensive lock probe: a writer still holding the file keeps it.
	if !s.locks.Acquire(path) {
		if _, err := os.Stat(path); err != nil {
			return Result{Path: path, Outcome: OutcomeVanished, Err: err}
		}
		s.event(Event{Message: "Skipping locked file " + path, Level: LevelWarning, Path: path})
		s.metrics.SkippedLocked.Inc()
		return Result{Path: path, Outcome: OutcomeSkippedLocked}
	}
	s.locks.Release(path)

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return Result{Path: path, Outcome: OutcomeVanished, Err: err}
		}
		s.event(Event{Message: fmt.Sprintf("Failed to delete %s: %v", path, err), Level: LevelWarning, Path: path})
		s.metrics.FailedDeletes.Inc()
		return Result{Path: path, Outcome: OutcomeFailed, Err: err}
	}

	s.event(Event{Message: "Deleted " + path, Level: LevelInfo, Path: path})
	s.metrics.DeletedFiles.Inc()
	return Result{Path: path, Outcome: OutcomeDeleted}
}

func (s *Sweeper) event(event Event) {
	if s.onEvent != nil {
		s.onEvent(event)
	}
}
