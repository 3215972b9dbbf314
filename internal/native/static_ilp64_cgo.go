//go:build cgo && static && ilp64

package native

// 64-bit integer arguments. Combined with the accelerate tag this
// requests the $NEWLAPACK$ILP64 namespace; without it, pair with an
// ILP64 OpenBLAS via BLAS_SYMBOL_SUFFIX in CGO_CFLAGS, e.g.
//
//	CGO_CFLAGS='-DBLAS_SYMBOL_SUFFIX=64_' go build -tags 'static ilp64'

/*
#cgo CFLAGS: -DHAVE_BLAS_ILP64
*/
import "C"
