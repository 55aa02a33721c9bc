package regionfill

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/regionfill/fill"
	"github.com/hupe1980/regionfill/layout"
	"github.com/hupe1980/regionfill/verify"
)

// Harness fills one backing file and verifies it.
type Harness struct {
	cfg      Config
	path     string
	runID    string
	layout   *layout.Layout
	opts     options
	logger   *Logger
	filler   *fill.Orchestrator
	verifier *verify.Verifier
	closed   atomic.Bool
}

// New validates cfg, partitions the file and prepares the fill and verify
// stages. Nothing is written until Fill or Run is called.
func New(cfg Config, opts ...Option) (*Harness, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	l, err := layout.Partition(cfg.TotalLength, cfg.Regions)
	if err != nil {
		return nil, &ErrInvalidConfig{Field: "regions", cause: err}
	}

	o, err := applyOptions(cfg, opts)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := o.logger.WithRunID(runID)
	path := cfg.resolvedPath()

	filler, err := fill.New(path, func(fo *fill.Options) {
		fo.FileSystem = o.fileSystem
		fo.BufferSize = cfg.BufferSize
		fo.Resources = o.resources
		fo.Sync = cfg.Sync
		fo.Logger = logger.WithComponent("fill").Logger
	})
	if err != nil {
		return nil, &ErrInvalidConfig{Field: "path", cause: err}
	}

	verifier := verify.New(func(vo *verify.Options) {
		vo.FileSystem = o.fileSystem
		vo.Resources = o.resources
		vo.Logger = logger.WithComponent("verify").Logger
	})

	return &Harness{
		cfg:      cfg,
		path:     path,
		runID:    runID,
		layout:   l,
		opts:     o,
		logger:   logger,
		filler:   filler,
		verifier: verifier,
	}, nil
}

// Config returns the configuration the harness was built with.
func (h *Harness) Config() Config { return h.cfg }

// Layout returns the partition of the backing file.
func (h *Harness) Layout() *layout.Layout { return h.layout }

// Path returns the backing file path.
func (h *Harness) Path() string { return h.path }

// RunID identifies this harness in logs.
func (h *Harness) RunID() string { return h.runID }

// Fill writes every region concurrently with values chosen by p.
// Failed regions are reported, not returned; the error is for setup failures.
func (h *Harness) Fill(ctx context.Context, p layout.Policy) (*fill.Report, error) {
	if h.closed.Load() {
		return nil, ErrClosed
	}

	rep, err := h.filler.Fill(ctx, h.layout, p)
	if err != nil {
		return nil, err
	}

	for _, res := range rep.Regions {
		h.opts.metricsCollector.RecordRegionWrite(res.Written, res.Duration, res.Err)
	}
	h.opts.metricsCollector.RecordFill(len(rep.Regions), int(rep.Failed.GetCardinality()), rep.Duration)
	return rep, nil
}

// Verify streams the backing file and checks it against p.
func (h *Harness) Verify(ctx context.Context, p layout.Policy) (verify.Result, error) {
	if h.closed.Load() {
		return verify.Result{Region: -1}, ErrClosed
	}

	res, err := h.verifier.VerifyFile(ctx, h.path, h.layout, p)
	h.opts.metricsCollector.RecordVerify(res.Passed, res.BytesRead, res.Duration, err)
	return res, err
}

// PhaseReport is the outcome of one step of Run.
type PhaseReport struct {
	Name     string
	Policy   layout.Policy
	Duration time.Duration
	Passed   bool

	// Fill is set for fill phases, Verify for verify phases.
	Fill   *fill.Report
	Verify *verify.Result
}

// Throttled returns the time the phase spent waiting on the IO limit.
func (ph PhaseReport) Throttled() time.Duration {
	switch {
	case ph.Fill != nil:
		return ph.Fill.Throttled
	case ph.Verify != nil:
		return ph.Verify.Throttled
	default:
		return 0
	}
}

// RunReport collects the phases of Run in execution order.
type RunReport struct {
	RunID  string
	Path   string
	Phases []PhaseReport
}

// Passed reports whether every phase passed.
func (r *RunReport) Passed() bool {
	for _, ph := range r.Phases {
		if !ph.Passed {
			return false
		}
	}
	return len(r.Phases) > 0
}

// Err describes every failed phase, or returns nil.
func (r *RunReport) Err() error {
	var errs []error
	for _, ph := range r.Phases {
		if ph.Passed {
			continue
		}
		switch {
		case ph.Fill != nil:
			errs = append(errs, fmt.Errorf("%s: %w: %w", ph.Name, ErrFillFailed, ph.Fill.Err()))
		case ph.Verify != nil:
			errs = append(errs, fmt.Errorf("%s: %w", ph.Name, ph.Verify.Err()))
		}
	}
	return errors.Join(errs...)
}

// Run fills and verifies with the configured policy, then re-samples the
// same file with the opposite policy and verifies again.
//
// A mismatch or failed region does not stop the run; it is recorded in the
// report. The error is set only when a phase could not run at all.
func (h *Harness) Run(ctx context.Context) (*RunReport, error) {
	report := &RunReport{RunID: h.runID, Path: h.path}

	first := h.cfg.Policy()
	second := layout.Forward
	if first == layout.Forward {
		second = layout.Reversed
	}

	for _, p := range []layout.Policy{first, second} {
		if err := h.fillPhase(ctx, report, p); err != nil {
			return report, err
		}
		if err := h.verifyPhase(ctx, report, p); err != nil {
			return report, err
		}
	}
	return report, nil
}

func (h *Harness) fillPhase(ctx context.Context, report *RunReport, p layout.Policy) error {
	name := "fill-" + p.String()
	start := time.Now()

	rep, err := h.Fill(ctx, p)
	took := time.Since(start)
	if err != nil {
		h.logger.LogPhase(ctx, name, took, false, err)
		return fmt.Errorf("%s: %w", name, err)
	}

	report.Phases = append(report.Phases, PhaseReport{
		Name:     name,
		Policy:   p,
		Duration: took,
		Passed:   rep.OK(),
		Fill:     rep,
	})
	h.logger.LogPhase(ctx, name, took, rep.OK(), nil)
	return nil
}

func (h *Harness) verifyPhase(ctx context.Context, report *RunReport, p layout.Policy) error {
	name := "verify-" + p.String()
	start := time.Now()

	res, err := h.Verify(ctx, p)
	took := time.Since(start)
	if err != nil {
		h.logger.LogPhase(ctx, name, took, false, err)
		return fmt.Errorf("%s: %w", name, err)
	}

	report.Phases = append(report.Phases, PhaseReport{
		Name:     name,
		Policy:   p,
		Duration: took,
		Passed:   res.Passed,
		Verify:   &res,
	})
	h.logger.LogPhase(ctx, name, took, res.Passed, nil)
	return nil
}
