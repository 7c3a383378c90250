package generate

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/ntlab/bmipgen/internal/spec"
	"github.com/rs/zerolog/log"
)

// SurveyResult aggregates a triviality survey: a fixed number of attempts
// with no collection target, measuring how often the random construction
// yields trivial instances. Non-trivial instances are still kept.
type SurveyResult struct {
	RunID        string
	Evaluated    int
	TrivialCount int
	ErrorSkips   int
	Kept         int
	Locations    []string
}

// TrivialFraction returns trivial attempts over attempts made, in [0, 1].
func (r SurveyResult) TrivialFraction() float64 {
	if r.Evaluated == 0 {
		return 0
	}
	return float64(r.TrivialCount) / float64(r.Evaluated)
}

// Survey runs exactly evals attempts against the spec and reports the
// observed trivial fraction. Options.Target and AttemptFactor are ignored.
func (g *Generator) Survey(ctx context.Context, s spec.InstanceSpec, evals int, opts Options) (SurveyResult, error) {
	if err := s.Validate(); err != nil {
		return SurveyResult{}, err
	}
	if evals < 0 {
		return SurveyResult{}, fmt.Errorf("evals must be non-negative, got %d", evals)
	}

	res := SurveyResult{}
	runID, err := g.surveyStart(ctx, s, evals, opts)
	if err != nil {
		return res, err
	}
	res.RunID = runID

	rng := rand.New(rand.NewSource(opts.Seed))
	for res.Evaluated < evals {
		att, err := g.attempt(ctx, s, rng)
		if err != nil {
			g.surveyFinish(ctx, res, "failed")
			return res, err
		}
		res.Evaluated++

		switch att.kind {
		case attemptErrorSkip:
			res.ErrorSkips++
		case attemptTrivial:
			res.TrivialCount++
		case attemptNonTrivial:
			location, err := g.accept(ctx, runID, att, opts.OutDir, res.Kept)
			if err != nil {
				g.surveyFinish(ctx, res, "failed")
				return res, err
			}
			res.Kept++
			res.Locations = append(res.Locations, location)
		}

		if g.progress != nil {
			g.progress(res.Kept, evals, res.Evaluated, evals)
		}
	}

	g.surveyFinish(ctx, res, "completed")
	log.Info().
		Str("run_id", res.RunID).
		Int("evaluated", res.Evaluated).
		Float64("trivial_fraction", res.TrivialFraction()).
		Msg("survey finished")
	return res, nil
}

func (g *Generator) surveyStart(ctx context.Context, s spec.InstanceSpec, evals int, opts Options) (string, error) {
	res := Result{RunID: uuid.NewString()}
	surveyOpts := opts
	surveyOpts.Target = 0
	if err := g.recordStart(ctx, res.RunID, "survey", s, surveyOpts, evals); err != nil {
		return "", err
	}
	return res.RunID, nil
}

func (g *Generator) surveyFinish(ctx context.Context, res SurveyResult, status string) {
	g.recordFinish(ctx, Result{
		RunID:        res.RunID,
		Collected:    res.Kept,
		Attempts:     res.Evaluated,
		TrivialCount: res.TrivialCount,
		ErrorSkips:   res.ErrorSkips,
	}, status)
}
