// Package native exposes the three probed routines (dgemm, dnrm2, dgesv)
// behind one column-major, Fortran-semantics interface, regardless of how
// the underlying implementation is reached: the in-process reference
// implementation, a library resolved at runtime through dlopen, or
// symbols fixed at link time by build tags.
package native

import (
	"errors"
	"fmt"

	"github.com/numkit/blasprobe/internal/mangle"
)

// Backend is one reachable BLAS/LAPACK implementation. All matrices are
// dense column-major with explicit leading dimensions, matching the
// Fortran storage the probed libraries use.
type Backend interface {
	Name() string

	// Dgemm computes C = alpha*op(A)*op(B) + beta*C where op(X) is X
	// or X transposed. op(A) is m x k, op(B) is k x n, C is m x n.
	Dgemm(transA, transB bool, m, n, k int, alpha float64, a []float64, lda int, b []float64, ldb int, beta float64, c []float64, ldc int)

	// Dnrm2 returns the Euclidean norm of the n-element vector x with
	// stride incX.
	Dnrm2(n int, x []float64, incX int) float64

	// Dgesv solves A*X = B for X, overwriting a with the LU factors and
	// b with the solution. The returned info follows LAPACK semantics:
	// 0 on success, i > 0 when U(i,i) is exactly zero.
	Dgesv(n, nrhs int, a []float64, lda int, ipiv []int, b []float64, ldb int) (info int)
}

var (
	// ErrSymbolNotFound reports a mangled symbol the target library
	// does not export.
	ErrSymbolNotFound = errors.New("native: symbol not found")

	// ErrBackendUnavailable reports a backend kind this build cannot
	// provide (e.g. the static cgo backend in a build without its tag).
	ErrBackendUnavailable = errors.New("native: backend unavailable in this build")
)

// New constructs a backend of the given kind. The convention and library
// path are only consulted by the dlopen kind; the reference kind is built
// into the binary and the static kind had its symbols fixed at link time.
func New(kind string, conv mangle.Convention, libPath string) (Backend, error) {
	switch kind {
	case "reference":
		return NewReference(), nil
	case "dlopen":
		if err := conv.Validate(); err != nil {
			return nil, err
		}
		return OpenLibrary(libPath, conv)
	case "static":
		return newStaticBackend()
	default:
		return nil, fmt.Errorf("native: unknown backend kind %q (want reference, dlopen or static)", kind)
	}
}
