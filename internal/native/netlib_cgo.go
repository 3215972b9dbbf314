//go:build cgo

package native

// This file swaps the reference backend's implementation pair for netlib,
// which calls the system BLAS/LAPACK (Accelerate on macOS, OpenBLAS on
// Linux) when CGO is available.

import (
	"github.com/rs/zerolog/log"
	blasnetlib "gonum.org/v1/netlib/blas/netlib"
	lapacknetlib "gonum.org/v1/netlib/lapack/netlib"
)

func init() {
	blasImpl = blasnetlib.Implementation{}
	lapackImpl = lapacknetlib.Implementation{}
	refName = "reference/netlib"
	log.Debug().Msg("⚡ CGO/BLAS Acceleration Enabled (netlib)")
}
