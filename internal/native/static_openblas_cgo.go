//go:build cgo && static && !accelerate

package native

// Link flags for the generic case: Fortran-underscore symbols out of
// OpenBLAS (or any netlib-compatible build found on the library path).

/*
#cgo linux CFLAGS: -I/usr/include/openblas
#cgo linux LDFLAGS: -lopenblas -lm
#cgo darwin LDFLAGS: -lopenblas -lm
#cgo freebsd LDFLAGS: -lopenblas -lm
*/
import "C"
