// Package probe runs fixed numeric verification cases through a native
// BLAS/LAPACK backend and classifies the results. Each case computes a
// scalar signature (the Euclidean norm of the routine's output buffer)
// and compares it against a hard-coded expected value.
package probe

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/numkit/blasprobe/internal/native"
)

// Tolerance is the absolute error bound every case is judged against.
const Tolerance = 1e-5

// Case is one verification scenario. Inputs are fixed at compile time;
// run computes the scalar signature through the backend.
type Case struct {
	// Name identifies the probed operation: "gemm" or "gesv".
	Name string

	// Describe is the human-readable subject of the OK/incorrect lines.
	Describe string

	// Expected is the signature value a correct library produces.
	Expected float64

	run func(native.Backend) (float64, error)
}

// Result is the outcome of one case.
type Result struct {
	Case      string  `cbor:"case" json:"case"`
	Expected  float64 `cbor:"expected" json:"expected"`
	Actual    float64 `cbor:"actual" json:"actual"`
	Deviation float64 `cbor:"deviation" json:"deviation"`
	Passed    bool    `cbor:"passed" json:"passed"`
	Error     string  `cbor:"error,omitempty" json:"error,omitempty"`
}

// Report is the outcome of a full probe run, serializable to CBOR.
type Report struct {
	Backend    string   `cbor:"backend" json:"backend"`
	Convention string   `cbor:"convention" json:"convention"`
	Passed     bool     `cbor:"passed" json:"passed"`
	ElapsedSec float64  `cbor:"elapsed_sec" json:"elapsed_sec"`
	Results    []Result `cbor:"results" json:"results"`
}

// Cases returns the default probe suite. The fixtures and expected
// norms match the classic Spack/OpenBLAS smoke test: a 3x3 dgemm
// accumulation and a dgesv call on the leading 1x1 block of a 3x3 array.
func Cases() []Case {
	return []Case{
		{
			Name:     "gemm",
			Describe: "BLAS result using dgemm and dnrm2",
			Expected: 28.017851,
			run:      runGemm,
		},
		{
			Name:     "gesv",
			Describe: "LAPACK result using dgesv",
			Expected: 4.255715,
			run:      runGesv,
		},
	}
}

// runGemm computes C(3x3) = 1*A(3x2)*B(3x2)^T + 2*C column-major and
// returns ||C||.
func runGemm(b native.Backend) (float64, error) {
	a := []float64{1, 2, 1, -3, 4, -1}
	bm := []float64{1, 2, 1, -3, 4, -1}
	c := []float64{.5, .5, .5, .5, .5, .5, .5, .5, .5}

	b.Dgemm(false, true, 3, 3, 2, 1, a, 3, bm, 3, 2, c, 3)
	return b.Dnrm2(9, c, 1), nil
}

// runGesv solves the leading 1x1 block of a 3x3 array (n=1, nrhs=1,
// lda=ldb=3) and returns the norm over all three right-hand-side
// elements, of which only the first was overwritten. A nonzero info from
// the solve is a probe failure in its own right.
func runGesv(b native.Backend) (float64, error) {
	m := []float64{3, 1, 3, 1, 5, 9, 2, 6, 5}
	x := []float64{-1, 3, -3}
	ipiv := make([]int, 1)

	if info := b.Dgesv(1, 1, m, 3, ipiv, x, 3); info != 0 {
		return 0, fmt.Errorf("dgesv reported info=%d", info)
	}
	return b.Dnrm2(3, x, 1), nil
}

var tracer = otel.Tracer("blasprobe-runner")

// Runner executes a probe suite against one backend. Zero-value writers
// default to the process streams: OK lines on stdout, diagnostics on
// stderr, matching what external test runners scrape.
type Runner struct {
	Backend native.Backend
	Cases   []Case

	// Convention is recorded in the report for traceability; the
	// backend itself was already constructed from it.
	Convention string

	Out io.Writer
	Err io.Writer
}

// NewRunner returns a Runner over the default suite writing to the
// process streams.
func NewRunner(b native.Backend) *Runner {
	return &Runner{
		Backend: b,
		Cases:   Cases(),
		Out:     os.Stdout,
		Err:     os.Stderr,
	}
}

// Run executes every case in order and returns the aggregate report.
// Cases are deterministic and never retried; a failed case does not stop
// the remaining ones.
func (r *Runner) Run(ctx context.Context) Report {
	ctx, span := tracer.Start(ctx, "probe.Run")
	defer span.End()

	start := time.Now()
	report := Report{
		Backend:    r.Backend.Name(),
		Convention: r.Convention,
		Passed:     true,
		Results:    make([]Result, 0, len(r.Cases)),
	}

	for _, c := range r.Cases {
		res := r.runCase(ctx, c)
		if !res.Passed {
			report.Passed = false
		}
		report.Results = append(report.Results, res)
	}

	report.ElapsedSec = time.Since(start).Seconds()
	span.SetAttributes(attribute.Bool("passed", report.Passed))
	return report
}

func (r *Runner) runCase(ctx context.Context, c Case) Result {
	_, span := tracer.Start(ctx, "probe."+c.Name)
	defer span.End()

	start := time.Now()
	res := Result{Case: c.Name, Expected: c.Expected}

	actual, err := c.run(r.Backend)
	probeDuration.WithLabelValues(c.Name).Observe(time.Since(start).Seconds())

	if err != nil {
		res.Error = err.Error()
		probesFailed.WithLabelValues(c.Name, r.Backend.Name()).Inc()
		fmt.Fprintf(r.Err, "%s failed: %v\n", c.Describe, err)
		span.RecordError(err)
		return res
	}

	res.Actual = actual
	res.Deviation = actual - c.Expected
	res.Passed = math.Abs(res.Deviation) < Tolerance

	span.SetAttributes(
		attribute.Float64("actual", res.Actual),
		attribute.Float64("deviation", res.Deviation),
	)

	if res.Passed {
		probesPassed.WithLabelValues(c.Name, r.Backend.Name()).Inc()
		fmt.Fprintf(r.Out, "OK: %s as expected\n", c.Describe)
	} else {
		probesFailed.WithLabelValues(c.Name, r.Backend.Name()).Inc()
		fmt.Fprintf(r.Err, "%s incorrect: %f\n", c.Describe, res.Deviation)
	}
	return res
}
