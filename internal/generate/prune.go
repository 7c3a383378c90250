package generate

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

// RetentionPolicy controls catalog cleanup.
type RetentionPolicy struct {
	KeepLast int
	KeepDays int
}

// PruneResult summarizes a prune operation.
type PruneResult struct {
	Considered int
	Kept       int
	Deleted    int
	Skipped    int
}

// PruneRuns deletes old run records and their instance directories. Running
// runs are always kept.
func (s *Store) PruneRuns(ctx context.Context, policy RetentionPolicy, dryRun bool) (PruneResult, error) {
	if policy.KeepLast <= 0 && policy.KeepDays <= 0 {
		return PruneResult{}, nil
	}
	cutoff := time.Time{}
	if policy.KeepDays > 0 {
		cutoff = time.Now().UTC().Add(-time.Duration(policy.KeepDays) * 24 * time.Hour)
	}

	runs, err := s.ListRuns(ctx)
	if err != nil {
		return PruneResult{}, err
	}

	res := PruneResult{Considered: len(runs)}
	for idx, rec := range runs {
		keep := rec.Status == "running"
		if !keep && policy.KeepLast > 0 && idx < policy.KeepLast {
			keep = true
		}
		if !keep && policy.KeepDays > 0 {
			createdAt, parseErr := time.Parse(time.RFC3339, rec.CreatedAt)
			if parseErr != nil || createdAt.After(cutoff) {
				keep = true
			}
		}
		if keep {
			res.Kept++
			continue
		}
		if dryRun {
			res.Deleted++
			continue
		}

		paths, err := s.InstancePaths(ctx, rec.RunID)
		if err != nil {
			return res, err
		}
		removable := true
		for _, path := range paths {
			if err := os.RemoveAll(path); err != nil && !os.IsNotExist(err) {
				log.Warn().Err(err).Str("path", path).Msg("instance dir not removed")
				removable = false
			}
		}
		if !removable {
			res.Skipped++
			continue
		}
		if err := s.DeleteRun(ctx, rec.RunID); err != nil {
			return res, fmt.Errorf("prune run %s: %w", rec.RunID, err)
		}
		res.Deleted++
	}
	return res, nil
}
