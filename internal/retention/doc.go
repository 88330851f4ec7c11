// Package retention deletes downloaded files that have outlived their
// retention period.
//
// # Sweeper
//
// The Sweeper coordinates one cleanup pass:
//
//  1. Enumerate files under a root matching each name pattern
//  2. Filter by the retention cutoff (strictly older than now − days)
//  3. Delete the merged candidate set, one file at a time
//
// Candidate collection always completes before the first deletion, so a
// pattern search never races a deletion of the same file.
//
// # Basic Usage
//
//	sweeper := retention.NewSweeper(settings, locks, func(event retention.Event) {
//	    fmt.Println(event.Message)
//	})
//
//	report, err := sweeper.Sweep(ctx, retention.Request{
//	    Root:          "/downloads",
//	    Patterns:      []string{"*.mp3", "*.mp4"},
//	    RetentionDays: 30,
//	})
//
// # Streaming Mode
//
// SweepFile evaluates a single, already-resolved file against the cutoff
// without walking the filesystem, for callers that bring their own
// enumeration:
//
//	report, err := sweeper.SweepFile(ctx, "/downloads/old-episode.mp3", 30)
//
// # Concurrency
//
// With ParallelCleanup enabled, pattern searches fan out across a
// bounded worker pool (MaxCleanupWorkers). Parallel and sequential
// searches produce the same candidate set for the same filesystem state;
// parallelism affects only latency.
//
// # Failure Policy
//
// Nothing in a sweep is fatal. A locked file is skipped and a permission
// error is reported as a warning; each candidate yields a structured
// Result and the batch continues.
package retention
