// Package generate implements the generate-validate-retry loop that
// collects non-trivial BMIP instances.
package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/ntlab/bmipgen/internal/problem"
	"github.com/ntlab/bmipgen/internal/solver"
	"github.com/ntlab/bmipgen/internal/spec"
	"github.com/ntlab/bmipgen/internal/triviality"
	"github.com/rs/zerolog/log"
)

// Options controls one generation run.
type Options struct {
	// Target is the number of non-trivial instances to collect (N_gen).
	Target int
	// AttemptFactor bounds the attempt budget: maxAttempts = AttemptFactor
	// * Target. Values below 1 are treated as 1 so the budget never falls
	// under the target.
	AttemptFactor int
	// OutDir is the destination directory for accepted instances.
	OutDir string
	// Seed seeds the random source; the same seed, spec and options yield
	// the same run.
	Seed int64
	// SolverName is recorded in the run catalog.
	SolverName string
}

// Result aggregates one generation run. Attempts never exceeds the budget
// and every attempt lands in exactly one of trivial, error-skip or
// collected.
type Result struct {
	RunID        string
	Collected    int
	Attempts     int
	TrivialCount int
	ErrorSkips   int
	Locations    []string
}

// TrivialFraction returns trivial attempts over attempts used, in [0, 1];
// zero when no attempt was made.
func (r Result) TrivialFraction() float64 {
	if r.Attempts == 0 {
		return 0
	}
	return float64(r.TrivialCount) / float64(r.Attempts)
}

// Progress is invoked after every attempt with the run counters.
type Progress func(collected, target, attempts, maxAttempts int)

// annotator is implemented by writers that can merge solve outcomes into an
// already-written instance.
type annotator interface {
	Annotate(location string, relaxObj, restrictedObj, gap float64) error
}

// Generator drives builder, oracle, classifier and writer across bounded
// attempts. All run counters are locals of a single invocation; a Generator
// can be reused across runs.
type Generator struct {
	builder  *problem.Builder
	oracle   solver.Oracle
	writer   problem.Writer
	catalog  *Store
	progress Progress
}

// NewGenerator constructs a Generator.
func NewGenerator(oracle solver.Oracle, writer problem.Writer) *Generator {
	return &Generator{
		builder: problem.NewBuilder(),
		oracle:  oracle,
		writer:  writer,
	}
}

// SetCatalog enables run recording in the sqlite catalog.
func (g *Generator) SetCatalog(s *Store) { g.catalog = s }

// SetProgress installs a per-attempt progress callback.
func (g *Generator) SetProgress(fn Progress) { g.progress = fn }

type attemptKind int

const (
	attemptErrorSkip attemptKind = iota
	attemptTrivial
	attemptNonTrivial
)

type attemptResult struct {
	kind       attemptKind
	inst       *problem.Instance
	bilevel    solver.Outcome
	relaxation solver.Outcome
}

// attempt runs one build-evaluate-classify cycle. An oracle failure in
// either mode wastes the attempt without classifying it.
func (g *Generator) attempt(ctx context.Context, s spec.InstanceSpec, rng *rand.Rand) (attemptResult, error) {
	inst, err := g.builder.Build(s, rng)
	if err != nil {
		return attemptResult{}, err
	}

	bilevel, err := g.oracle.Evaluate(ctx, inst, solver.ModeBilevel)
	if err != nil {
		log.Debug().Err(err).Msg("bilevel evaluation failed")
		return attemptResult{kind: attemptErrorSkip}, nil
	}
	relaxation, err := g.oracle.Evaluate(ctx, inst, solver.ModeUpperRelaxation)
	if err != nil {
		log.Debug().Err(err).Msg("relaxation evaluation failed")
		return attemptResult{kind: attemptErrorSkip}, nil
	}

	verdict, err := triviality.Classify(s, bilevel, relaxation)
	if err != nil {
		log.Debug().Err(err).Msg("attempt not classifiable")
		return attemptResult{kind: attemptErrorSkip}, nil
	}

	res := attemptResult{inst: inst, bilevel: bilevel, relaxation: relaxation}
	if verdict == triviality.Trivial {
		res.kind = attemptTrivial
	} else {
		res.kind = attemptNonTrivial
	}
	return res, nil
}

// Generate collects up to opts.Target non-trivial instances within the
// attempt budget. Budget exhaustion is a normal partial result, not an
// error; a write failure aborts the run.
func (g *Generator) Generate(ctx context.Context, s spec.InstanceSpec, opts Options) (Result, error) {
	if err := s.Validate(); err != nil {
		return Result{}, err
	}
	if opts.Target < 0 {
		return Result{}, fmt.Errorf("target must be non-negative, got %d", opts.Target)
	}
	if opts.AttemptFactor < 1 {
		opts.AttemptFactor = 1
	}
	maxAttempts := opts.AttemptFactor * opts.Target

	res := Result{RunID: uuid.NewString()}
	if err := g.recordStart(ctx, res.RunID, "generate", s, opts, maxAttempts); err != nil {
		return res, err
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	for res.Collected < opts.Target && res.Attempts < maxAttempts {
		att, err := g.attempt(ctx, s, rng)
		if err != nil {
			g.recordFinish(ctx, res, "failed")
			return res, err
		}
		res.Attempts++

		switch att.kind {
		case attemptErrorSkip:
			res.ErrorSkips++
		case attemptTrivial:
			res.TrivialCount++
		case attemptNonTrivial:
			location, err := g.accept(ctx, res.RunID, att, opts.OutDir, res.Collected)
			if err != nil {
				g.recordFinish(ctx, res, "failed")
				return res, err
			}
			res.Collected++
			res.Locations = append(res.Locations, location)
		}

		if g.progress != nil {
			g.progress(res.Collected, opts.Target, res.Attempts, maxAttempts)
		}
	}

	status := "completed"
	if res.Collected < opts.Target {
		status = "exhausted"
		log.Info().
			Int("collected", res.Collected).
			Int("target", opts.Target).
			Int("max_attempts", maxAttempts).
			Msg("attempt budget exhausted")
	}
	g.recordFinish(ctx, res, status)

	log.Info().
		Str("run_id", res.RunID).
		Int("collected", res.Collected).
		Int("attempts", res.Attempts).
		Float64("trivial_fraction", res.TrivialFraction()).
		Msg("generation finished")
	return res, nil
}

// accept persists a non-trivial instance and records it in the catalog.
func (g *Generator) accept(ctx context.Context, runID string, att attemptResult, outDir string, index int) (string, error) {
	location, err := g.writer.Write(att.inst, outDir, index)
	if err != nil {
		return "", fmt.Errorf("write instance %d: %w", index, err)
	}
	gap := triviality.Gap(att.bilevel, att.relaxation)
	if ann, ok := g.writer.(annotator); ok {
		if err := ann.Annotate(location, att.relaxation.Objective, att.bilevel.Objective, gap); err != nil {
			return "", fmt.Errorf("annotate instance %d: %w", index, err)
		}
	}
	if g.catalog != nil {
		if err := g.catalog.AddInstance(ctx, runID, index, location, att.relaxation.Objective, att.bilevel.Objective, gap); err != nil {
			return "", err
		}
	}
	log.Debug().Str("location", location).Float64("gap", gap).Msg("instance accepted")
	return location, nil
}

func (g *Generator) recordStart(ctx context.Context, runID, kind string, s spec.InstanceSpec, opts Options, maxAttempts int) error {
	if g.catalog == nil {
		return nil
	}
	specJSON, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal spec: %w", err)
	}
	return g.catalog.CreateRun(ctx, RunRecord{
		RunID:       runID,
		Kind:        kind,
		SpecJSON:    string(specJSON),
		Solver:      opts.SolverName,
		OutDir:      opts.OutDir,
		Target:      opts.Target,
		MaxAttempts: maxAttempts,
		Seed:        opts.Seed,
		Status:      "running",
	})
}

func (g *Generator) recordFinish(ctx context.Context, res Result, status string) {
	if g.catalog == nil {
		return
	}
	if err := g.catalog.FinishRun(ctx, res.RunID, status, res.Attempts, res.TrivialCount, res.ErrorSkips, res.Collected); err != nil {
		log.Error().Err(err).Str("run_id", res.RunID).Msg("record run outcome")
	}
}
