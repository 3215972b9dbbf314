package probe

import (
	"bytes"
	"context"
	"math"
	"strings"
	"testing"

	"github.com/numkit/blasprobe/internal/native"
)

func newTestRunner() (*Runner, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errw := &bytes.Buffer{}
	r := NewRunner(native.NewReference())
	r.Out = out
	r.Err = errw
	return r, out, errw
}

func TestRun_ReferenceBackendPasses(t *testing.T) {
	r, out, errw := newTestRunner()

	report := r.Run(context.Background())

	if !report.Passed {
		t.Fatalf("report not passed: %+v", report.Results)
	}
	if got := strings.Count(out.String(), "OK: "); got != 2 {
		t.Errorf("stdout OK lines = %d, want 2\n%s", got, out.String())
	}
	if errw.Len() != 0 {
		t.Errorf("unexpected stderr output: %s", errw.String())
	}

	wantNorms := map[string]float64{
		"gemm": 28.017851,
		"gesv": 4.255715,
	}
	for _, res := range report.Results {
		want, ok := wantNorms[res.Case]
		if !ok {
			t.Fatalf("unexpected case %q", res.Case)
		}
		if math.Abs(res.Actual-want) >= Tolerance {
			t.Errorf("%s norm = %f, want %f within %g", res.Case, res.Actual, want, Tolerance)
		}
		if !res.Passed {
			t.Errorf("%s not passed, deviation %g", res.Case, res.Deviation)
		}
	}
}

func TestRun_Idempotent(t *testing.T) {
	// The native routines are pure functions of their fixed inputs, so
	// consecutive runs must produce bit-identical signatures.
	r, _, _ := newTestRunner()

	first := r.Run(context.Background())
	second := r.Run(context.Background())

	for i := range first.Results {
		if first.Results[i].Actual != second.Results[i].Actual {
			t.Errorf("%s not idempotent: %v then %v",
				first.Results[i].Case, first.Results[i].Actual, second.Results[i].Actual)
		}
	}
}

func TestRun_CorruptedExpectedFails(t *testing.T) {
	r, out, errw := newTestRunner()
	r.Cases[0].Expected = 99.0

	report := r.Run(context.Background())

	if report.Passed {
		t.Fatal("report passed with a corrupted expected value")
	}
	if got := strings.Count(out.String(), "OK: "); got != 1 {
		t.Errorf("stdout OK lines = %d, want 1", got)
	}
	if got := strings.Count(errw.String(), "incorrect: "); got != 1 {
		t.Errorf("stderr incorrect lines = %d, want 1\n%s", got, errw.String())
	}

	gemm := report.Results[0]
	if gemm.Passed {
		t.Error("gemm case passed against the corrupted constant")
	}
	if math.Abs(gemm.Deviation-(gemm.Actual-99.0)) > 1e-12 {
		t.Errorf("deviation = %g, want actual-expected", gemm.Deviation)
	}
	if gesv := report.Results[1]; !gesv.Passed {
		t.Error("gesv case should be unaffected by the gemm corruption")
	}
}

// failingSolve wraps the reference backend with a dgesv that reports a
// nonzero info, as a singular or miscompiled library would.
type failingSolve struct {
	native.Reference
}

func (failingSolve) Dgesv(n, nrhs int, a []float64, lda int, ipiv []int, b []float64, ldb int) int {
	return 7
}

func TestRun_NonzeroInfoIsFailure(t *testing.T) {
	out := &bytes.Buffer{}
	errw := &bytes.Buffer{}
	r := NewRunner(failingSolve{})
	r.Out = out
	r.Err = errw

	report := r.Run(context.Background())

	if report.Passed {
		t.Fatal("report passed despite nonzero info from dgesv")
	}
	gesv := report.Results[1]
	if gesv.Passed || gesv.Error == "" {
		t.Errorf("gesv result = %+v, want error about info", gesv)
	}
	if !strings.Contains(errw.String(), "info=7") {
		t.Errorf("stderr missing info diagnostic: %s", errw.String())
	}
	// The gemm case still runs and passes.
	if !report.Results[0].Passed {
		t.Error("gemm case should pass through the wrapped backend")
	}
}
