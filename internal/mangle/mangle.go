// Package mangle maps logical BLAS/LAPACK routine names to the symbol
// names a particular vendor build actually exports. Vendors disagree on
// Fortran underscore suffixing, integer width (LP64 vs ILP64) and extra
// namespacing tags (e.g. Accelerate's "$NEWLAPACK$ILP64"), so every
// native call site goes through a Convention to pick the right symbol.
package mangle

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
)

// IntWidth selects the width of every integer-typed argument passed to a
// native routine. Mixing widths within one call corrupts the argument
// layout the routine expects, so the width is a property of the whole
// Convention, never of an individual call.
type IntWidth int

const (
	// LP64 passes 32-bit integers (the standard Fortran model).
	LP64 IntWidth = 32
	// ILP64 passes 64-bit integers.
	ILP64 IntWidth = 64
)

func (w IntWidth) String() string {
	switch w {
	case LP64:
		return "lp64"
	case ILP64:
		return "ilp64"
	default:
		return fmt.Sprintf("IntWidth(%d)", int(w))
	}
}

var (
	// ErrUnsupported reports a convention that cannot work on this
	// platform, such as Accelerate's namespaced symbols off macOS.
	ErrUnsupported = errors.New("mangle: convention unsupported on this platform")

	// ErrMalformed reports a prefix or suffix that cannot appear in an
	// exported symbol name.
	ErrMalformed = errors.New("mangle: malformed symbol component")
)

// Convention describes how one vendor library names its exports.
// A Convention is a value type and is fixed for the lifetime of the
// backend constructed from it.
type Convention struct {
	// Prefix is prepended to every routine name. Empty for all
	// mainstream vendors, kept for completeness.
	Prefix string

	// Suffix is appended after the (optionally underscored) name.
	// Examples: "64_" for ILP64 OpenBLAS, "$NEWLAPACK" for Accelerate.
	Suffix string

	// TrailingUnderscore appends "_" to the routine name before the
	// suffix, the classic Fortran compiler convention.
	TrailingUnderscore bool

	// Width is the integer width for every integer argument.
	Width IntWidth
}

// Symbol returns the exported symbol name for a logical routine name,
// e.g. Symbol("dgesv") -> "dgesv_64_" under ILP64 OpenBLAS naming.
func (c Convention) Symbol(name string) string {
	var b strings.Builder
	b.Grow(len(c.Prefix) + len(name) + 1 + len(c.Suffix))
	b.WriteString(c.Prefix)
	b.WriteString(name)
	if c.TrailingUnderscore {
		b.WriteByte('_')
	}
	b.WriteString(c.Suffix)
	return b.String()
}

// String renders the convention in a compact form for logs and reports.
func (c Convention) String() string {
	u := ""
	if c.TrailingUnderscore {
		u = "_"
	}
	return fmt.Sprintf("%s<name>%s%s/%s", c.Prefix, u, c.Suffix, c.Width)
}

// Validate checks that the convention can produce well-formed symbols and
// is usable on the current platform. The Accelerate new-LAPACK namespace
// only exists on Darwin; requesting it elsewhere is a configuration
// error, caught here rather than as a confusing dlsym failure later.
func (c Convention) Validate() error {
	if err := checkComponent("prefix", c.Prefix); err != nil {
		return err
	}
	if err := checkComponent("suffix", c.Suffix); err != nil {
		return err
	}
	if c.Width != LP64 && c.Width != ILP64 {
		return fmt.Errorf("%w: integer width must be 32 or 64, got %d", ErrMalformed, int(c.Width))
	}
	if strings.Contains(c.Suffix, "$NEWLAPACK") && runtime.GOOS != "darwin" {
		return fmt.Errorf("%w: %q is an Accelerate namespace, only available on darwin", ErrUnsupported, c.Suffix)
	}
	return nil
}

func checkComponent(what, s string) error {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_', r == '$':
		default:
			return fmt.Errorf("%w: %s %q contains %q", ErrMalformed, what, s, r)
		}
	}
	return nil
}

// Presets keyed by the names accepted on the command line. These match
// the vendor builds the probe is normally pointed at.
var presets = map[string]Convention{
	// netlib reference and stock OpenBLAS: Fortran underscore, 32-bit ints.
	"netlib": {TrailingUnderscore: true, Width: LP64},
	// Compilers configured without underscore decoration.
	"no-underscore": {Width: LP64},
	// OpenBLAS built with INTERFACE64=1 SYMBOLSUFFIX=64_: dgesv_64_.
	"openblas-ilp64": {TrailingUnderscore: true, Suffix: "64_", Width: ILP64},
	// Accelerate's namespaced LAPACK (macOS 13.3+), 32-bit ints.
	"accelerate": {Suffix: "$NEWLAPACK", Width: LP64},
	// Accelerate namespaced LAPACK with 64-bit ints.
	"accelerate-ilp64": {Suffix: "$NEWLAPACK$ILP64", Width: ILP64},
}

// Preset returns the named convention. The boolean is false for unknown
// names; PresetNames lists the valid ones for error messages.
func Preset(name string) (Convention, bool) {
	c, ok := presets[name]
	return c, ok
}

// PresetNames returns the accepted preset names, sorted for stable
// usage output.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
