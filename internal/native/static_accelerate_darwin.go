//go:build cgo && static && accelerate

package native

// Accelerate's namespaced LAPACK. The SDK version gate in probeblas.h
// rejects the ILP64 variant at compile time on SDKs older than 13.3.

/*
#cgo CFLAGS: -DACCELERATE_NEW_LAPACK
#cgo LDFLAGS: -framework Accelerate
*/
import "C"
