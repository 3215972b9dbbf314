package native

import (
	"gonum.org/v1/gonum/blas"
	blasgonum "gonum.org/v1/gonum/blas/gonum"
	"gonum.org/v1/gonum/lapack"
	lapackgonum "gonum.org/v1/gonum/lapack/gonum"
)

// The implementation pair behind the reference backend. Defaults to
// gonum's pure Go routines so the probe always has a baseline to compare
// against; the cgo build swaps in netlib (system BLAS/LAPACK) at init.
var (
	blasImpl   blas.Float64   = blasgonum.Implementation{}
	lapackImpl lapack.Float64 = lapackgonum.Implementation{}
	refName                   = "reference/gonum"
)

// Reference adapts the registered row-major gonum-style implementation to
// the column-major contract the probes are written against.
type Reference struct{}

var _ Backend = Reference{}

// NewReference returns the in-process reference backend.
func NewReference() Reference { return Reference{} }

func (Reference) Name() string { return refName }

func trans(t bool) blas.Transpose {
	if t {
		return blas.Trans
	}
	return blas.NoTrans
}

// Dgemm computes the column-major product by running the row-major engine
// on the transposed problem: memory holding a column-major M is the same
// memory holding row-major M^T, so C^T = alpha*op(B)^T*op(A)^T + beta*C^T
// with operands swapped gives the column-major result in place.
func (Reference) Dgemm(transA, transB bool, m, n, k int, alpha float64, a []float64, lda int, b []float64, ldb int, beta float64, c []float64, ldc int) {
	blasImpl.Dgemm(trans(transB), trans(transA), n, m, k, alpha, b, ldb, a, lda, beta, c, ldc)
}

func (Reference) Dnrm2(n int, x []float64, incX int) float64 {
	return blasImpl.Dnrm2(n, x, incX)
}

// Dgesv factors and solves through Dgetrf/Dgetrs. The row-major engine
// sees A^T in the column-major memory, so the solve uses the transposed
// factorization. The right-hand side is repacked only when nrhs > 1,
// where row-major and column-major layouts actually differ.
func (Reference) Dgesv(n, nrhs int, a []float64, lda int, ipiv []int, b []float64, ldb int) int {
	ok := lapackImpl.Dgetrf(n, n, a, lda, ipiv)
	if !ok {
		return singularPivot(n, a, lda)
	}

	if nrhs == 1 {
		lapackImpl.Dgetrs(blas.Trans, n, 1, a, lda, ipiv, b[:n], 1)
		return 0
	}

	// Repack column-major B (n x nrhs, leading dim ldb) into a
	// row-major scratch, solve, and repack the solution.
	scratch := make([]float64, n*nrhs)
	for j := 0; j < nrhs; j++ {
		for i := 0; i < n; i++ {
			scratch[i*nrhs+j] = b[j*ldb+i]
		}
	}
	lapackImpl.Dgetrs(blas.Trans, n, nrhs, a, lda, ipiv, scratch, nrhs)
	for j := 0; j < nrhs; j++ {
		for i := 0; i < n; i++ {
			b[j*ldb+i] = scratch[i*nrhs+j]
		}
	}
	return 0
}

// singularPivot recovers the LAPACK-style info value (one-based index of
// the first exactly zero diagonal of U) after a failed factorization.
func singularPivot(n int, a []float64, lda int) int {
	for i := 0; i < n; i++ {
		if a[i*lda+i] == 0 {
			return i + 1
		}
	}
	return n
}
