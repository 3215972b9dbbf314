//go:build !cgo || !static

package native

import "fmt"

func newStaticBackend() (Backend, error) {
	return nil, fmt.Errorf("%w: static backend (rebuild with CGO and -tags static)", ErrBackendUnavailable)
}
