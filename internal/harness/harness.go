package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/dataslice/internal/assign"
	"github.com/roach88/dataslice/internal/dataset"
	"github.com/roach88/dataslice/internal/sandbox"
)

// Harness runs scenarios over one dataset and bounds.
type Harness struct {
	data     *dataset.Dataset
	assigner *assign.Assigner
	logger   *slog.Logger
}

// Option configures Run.
type Option func(*Harness)

// WithLogger sets the logger. By default the harness logs nothing.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = l
	}
}

// Run executes a scenario and returns the result.
//
// Each student gets a fresh sandbox. An error is returned only when the
// scenario cannot be executed at all; failed assertions are reported in
// the result.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	data := dataset.Master()
	if scenario.Dataset != "" {
		d, err := dataset.LoadFile(scenario.Dataset)
		if err != nil {
			return nil, fmt.Errorf("failed to load dataset: %w", err)
		}
		data = d
	}

	cfg := assign.DefaultConfig()
	if scenario.Bounds != nil {
		cfg = *scenario.Bounds
	}

	a, err := assign.New(data, cfg)
	if err != nil {
		return nil, err
	}

	h := &Harness{
		data:     data,
		assigner: a,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}

	result := NewResult()
	for _, sid := range scenario.StudentIDs() {
		trace, actx, err := h.runStudent(ctx, scenario, sid)
		if err != nil {
			return nil, fmt.Errorf("student %s: %w", sid, err)
		}
		result.Trace = append(result.Trace, trace)

		for _, msg := range EvaluateAssertions(actx, scenario.Assertions) {
			result.AddError(fmt.Sprintf("%s: %s", sid, msg))
		}

		h.logger.Info("student checked",
			"scenario", scenario.Name,
			"student_id", sid,
			"fingerprint", trace.Fingerprint,
		)
	}

	return result, nil
}

func (h *Harness) runStudent(ctx context.Context, scenario *Scenario, studentID string) (StudentTrace, *AssertionContext, error) {
	a := h.assigner.Assign(studentID, scenario.HomeworkSet)

	fp, err := a.Fingerprint()
	if err != nil {
		return StudentTrace{}, nil, err
	}

	sb, err := sandbox.Open(ctx, a.Dataset())
	if err != nil {
		return StudentTrace{}, nil, err
	}
	defer sb.Close()

	counts, err := sb.Counts(ctx)
	if err != nil {
		return StudentTrace{}, nil, err
	}

	actx := &AssertionContext{
		Assignment: a,
		Dataset:    h.data,
		Bounds:     h.assigner.Config(),
		Counts:     counts,
		Queries:    make(map[string]QueryOutcome, len(scenario.Queries)),
	}
	trace := StudentTrace{
		StudentID:   studentID,
		Fingerprint: fp,
		Counts:      counts,
		Queries:     make([]QueryTrace, 0, len(scenario.Queries)),
	}

	for _, q := range scenario.Queries {
		res, err := sb.Query(ctx, q.SQL)
		actx.Queries[q.Name] = QueryOutcome{Result: res, Err: err}

		qt := QueryTrace{Name: q.Name, Error: err != nil}
		if err == nil {
			qt.Rows = len(res.Rows)
		} else {
			h.logger.Debug("query failed",
				"student_id", studentID,
				"query", q.Name,
				"error", err,
			)
		}
		trace.Queries = append(trace.Queries, qt)
	}

	return trace, actx, nil
}
