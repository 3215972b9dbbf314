//go:build cgo && static

package native

// The static backend binds the probed routines at link time: the
// preprocessor in probeblas.h assembles the vendor symbol names, so a
// misconfigured convention is a link error, never a runtime one. Flag
// variants (OpenBLAS, Accelerate, ILP64) are selected by companion files
// carrying only #cgo directives.

/*
#include "probeblas.h"
*/
import "C"

import (
	"unsafe"
)

// Static calls the symbols fixed into the binary by the build tags.
type Static struct{}

var _ Backend = Static{}

func newStaticBackend() (Backend, error) {
	return Static{}, nil
}

func (Static) Name() string {
	return "static/" + C.GoString(C.probe_symbol_variant())
}

func cbool(b bool) C.int {
	if b {
		return 1
	}
	return 0
}

func (Static) Dgemm(transA, transB bool, m, n, k int, alpha float64, a []float64, lda int, b []float64, ldb int, beta float64, c []float64, ldc int) {
	C.probe_dgemm(cbool(transA), cbool(transB),
		C.int64_t(m), C.int64_t(n), C.int64_t(k),
		C.double(alpha), (*C.double)(unsafe.Pointer(&a[0])), C.int64_t(lda),
		(*C.double)(unsafe.Pointer(&b[0])), C.int64_t(ldb),
		C.double(beta), (*C.double)(unsafe.Pointer(&c[0])), C.int64_t(ldc))
}

func (Static) Dnrm2(n int, x []float64, incX int) float64 {
	return float64(C.probe_dnrm2(C.int64_t(n), (*C.double)(unsafe.Pointer(&x[0])), C.int64_t(incX)))
}

func (Static) Dgesv(n, nrhs int, a []float64, lda int, ipiv []int, b []float64, ldb int) int {
	piv := make([]int64, n)
	info := C.probe_dgesv(C.int64_t(n), C.int64_t(nrhs),
		(*C.double)(unsafe.Pointer(&a[0])), C.int64_t(lda),
		(*C.int64_t)(unsafe.Pointer(&piv[0])),
		(*C.double)(unsafe.Pointer(&b[0])), C.int64_t(ldb))
	for i := range piv {
		ipiv[i] = int(piv[i])
	}
	return int(info)
}
