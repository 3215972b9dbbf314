//go:build darwin || linux

package native

import (
	"fmt"

	"github.com/ebitengine/purego"
	"github.com/rs/zerolog/log"

	"github.com/numkit/blasprobe/internal/mangle"
)

// Library reaches a BLAS/LAPACK build loaded at runtime with dlopen,
// resolving each probed routine through the configured naming convention.
// The Fortran entry points are used directly (pass-by-reference scalars),
// so one convention covers BLAS and LAPACK alike.
type Library struct {
	conv   mangle.Convention
	handle uintptr
	syms   *symtab
	fns    fortranFuncs
}

var _ Backend = (*Library)(nil)

// fortranFuncs holds the registered entry points for one integer width.
// Hidden Fortran character-length arguments are omitted: the transpose
// flags are single characters and every supported ABI reads the flag
// byte before any length word.
type fortranFuncs struct {
	dgemm32 func(transa, transb *byte, m, n, k *int32, alpha *float64, a *float64, lda *int32, b *float64, ldb *int32, beta *float64, c *float64, ldc *int32)
	dnrm232 func(n *int32, x *float64, incX *int32) float64
	dgesv32 func(n, nrhs *int32, a *float64, lda *int32, ipiv *int32, b *float64, ldb *int32, info *int32)

	dgemm64 func(transa, transb *byte, m, n, k *int64, alpha *float64, a *float64, lda *int64, b *float64, ldb *int64, beta *float64, c *float64, ldc *int64)
	dnrm264 func(n *int64, x *float64, incX *int64) float64
	dgesv64 func(n, nrhs *int64, a *float64, lda *int64, ipiv *int64, b *float64, ldb *int64, info *int64)
}

// OpenLibrary dlopens the library at path and resolves the three probed
// routines under conv. A missing symbol fails here, before any probe
// runs, with the mangled name in the error.
func OpenLibrary(path string, conv mangle.Convention) (*Library, error) {
	if path == "" {
		return nil, fmt.Errorf("native: dlopen backend needs a library path")
	}
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("native: dlopen %s: %w", path, err)
	}

	lib := &Library{
		conv:   conv,
		handle: handle,
		syms:   newSymtab(),
	}

	if err := lib.resolveAll(); err != nil {
		_ = purego.Dlclose(handle)
		return nil, err
	}

	log.Debug().
		Str("lib", path).
		Stringer("convention", conv).
		Int("symbols", lib.syms.size()).
		Msg("Resolved BLAS/LAPACK symbols")
	return lib, nil
}

func (l *Library) resolveAll() error {
	if l.conv.Width == mangle.ILP64 {
		return l.register(map[string]interface{}{
			"dgemm": &l.fns.dgemm64,
			"dnrm2": &l.fns.dnrm264,
			"dgesv": &l.fns.dgesv64,
		})
	}
	return l.register(map[string]interface{}{
		"dgemm": &l.fns.dgemm32,
		"dnrm2": &l.fns.dnrm232,
		"dgesv": &l.fns.dgesv32,
	})
}

func (l *Library) register(routines map[string]interface{}) error {
	for name, fptr := range routines {
		addr, err := l.lookup(name)
		if err != nil {
			return err
		}
		purego.RegisterFunc(fptr, addr)
	}
	return nil
}

// lookup resolves one logical routine to an address through the symbol
// cache, consulting dlsym on a miss.
func (l *Library) lookup(name string) (uintptr, error) {
	symbol := l.conv.Symbol(name)
	if addr, ok := l.syms.get(symbol); ok {
		return addr, nil
	}
	addr, err := purego.Dlsym(l.handle, symbol)
	if err != nil || addr == 0 {
		return 0, fmt.Errorf("%w: %q (routine %s, convention %s): %v", ErrSymbolNotFound, symbol, name, l.conv, err)
	}
	l.syms.put(symbol, addr)
	return addr, nil
}

// Close releases the library handle. The Library must not be used after.
func (l *Library) Close() error {
	return purego.Dlclose(l.handle)
}

func (l *Library) Name() string {
	return "dlopen/" + l.conv.Width.String()
}

func transByte(t bool) byte {
	if t {
		return 'T'
	}
	return 'N'
}

func (l *Library) Dgemm(transA, transB bool, m, n, k int, alpha float64, a []float64, lda int, b []float64, ldb int, beta float64, c []float64, ldc int) {
	ta, tb := transByte(transA), transByte(transB)
	if l.conv.Width == mangle.ILP64 {
		m64, n64, k64 := int64(m), int64(n), int64(k)
		lda64, ldb64, ldc64 := int64(lda), int64(ldb), int64(ldc)
		l.fns.dgemm64(&ta, &tb, &m64, &n64, &k64, &alpha, &a[0], &lda64, &b[0], &ldb64, &beta, &c[0], &ldc64)
		return
	}
	m32, n32, k32 := int32(m), int32(n), int32(k)
	lda32, ldb32, ldc32 := int32(lda), int32(ldb), int32(ldc)
	l.fns.dgemm32(&ta, &tb, &m32, &n32, &k32, &alpha, &a[0], &lda32, &b[0], &ldb32, &beta, &c[0], &ldc32)
}

func (l *Library) Dnrm2(n int, x []float64, incX int) float64 {
	if l.conv.Width == mangle.ILP64 {
		n64, inc64 := int64(n), int64(incX)
		return l.fns.dnrm264(&n64, &x[0], &inc64)
	}
	n32, inc32 := int32(n), int32(incX)
	return l.fns.dnrm232(&n32, &x[0], &inc32)
}

func (l *Library) Dgesv(n, nrhs int, a []float64, lda int, ipiv []int, b []float64, ldb int) int {
	if l.conv.Width == mangle.ILP64 {
		piv := make([]int64, n)
		n64, nrhs64, lda64, ldb64 := int64(n), int64(nrhs), int64(lda), int64(ldb)
		var info int64
		l.fns.dgesv64(&n64, &nrhs64, &a[0], &lda64, &piv[0], &b[0], &ldb64, &info)
		for i := range piv {
			ipiv[i] = int(piv[i])
		}
		return int(info)
	}
	piv := make([]int32, n)
	n32, nrhs32, lda32, ldb32 := int32(n), int32(nrhs), int32(lda), int32(ldb)
	var info int32
	l.fns.dgesv32(&n32, &nrhs32, &a[0], &lda32, &piv[0], &b[0], &ldb32, &info)
	for i := range piv {
		ipiv[i] = int(piv[i])
	}
	return int(info)
}
