//go:build !darwin && !linux

package native

import (
	"fmt"

	"github.com/numkit/blasprobe/internal/mangle"
)

// Library is the runtime-resolution backend; it needs a working dlopen,
// which this platform does not provide.
type Library struct{}

var _ Backend = (*Library)(nil)

func OpenLibrary(path string, conv mangle.Convention) (*Library, error) {
	return nil, fmt.Errorf("%w: dlopen backend", ErrBackendUnavailable)
}

func (l *Library) Close() error { return nil }

func (l *Library) Name() string { return "dlopen/unavailable" }

func (l *Library) Dgemm(transA, transB bool, m, n, k int, alpha float64, a []float64, lda int, b []float64, ldb int, beta float64, c []float64, ldc int) {
}

func (l *Library) Dnrm2(n int, x []float64, incX int) float64 { return 0 }

func (l *Library) Dgesv(n, nrhs int, a []float64, lda int, ipiv []int, b []float64, ldb int) int {
	return 0
}
