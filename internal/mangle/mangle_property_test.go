package mangle

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genComponent generates strings drawn from the symbol charset, the only
// characters a prefix or suffix may contain.
func genComponent() gopter.Gen {
	return gen.SliceOf(gen.OneConstOf(
		'a', 'b', 'z', 'A', 'Z', '0', '9', '_', '$',
	)).Map(func(rs []rune) string {
		if len(rs) > 12 {
			rs = rs[:12]
		}
		return string(rs)
	})
}

func genConvention() gopter.Gen {
	return gopter.CombineGens(
		genComponent(),
		genComponent(),
		gen.Bool(),
		gen.Bool(),
	).Map(func(vs []interface{}) Convention {
		width := LP64
		if vs[3].(bool) {
			width = ILP64
		}
		return Convention{
			Prefix:             vs[0].(string),
			Suffix:             vs[1].(string),
			TrailingUnderscore: vs[2].(bool),
			Width:              width,
		}
	})
}

func TestSymbol_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	routines := []string{"dgemm", "dnrm2", "dgesv"}

	properties.Property("symbol is prefix+name(+_)+suffix", prop.ForAll(
		func(conv Convention) bool {
			for _, r := range routines {
				sym := conv.Symbol(r)
				want := conv.Prefix + r + conv.Suffix
				if conv.TrailingUnderscore {
					want = conv.Prefix + r + "_" + conv.Suffix
				}
				if sym != want {
					return false
				}
			}
			return true
		},
		genConvention(),
	))

	properties.Property("symbol contains the routine name exactly once more than the affixes do", prop.ForAll(
		func(conv Convention) bool {
			for _, r := range routines {
				affixes := strings.Count(conv.Prefix, r) + strings.Count(conv.Suffix, r)
				if strings.Count(conv.Symbol(r), r) < affixes+1 {
					return false
				}
			}
			return true
		},
		genConvention(),
	))

	properties.Property("non-namespaced charset-safe conventions always validate", prop.ForAll(
		func(conv Convention) bool {
			conv.Suffix = strings.ReplaceAll(conv.Suffix, "$", "")
			conv.Prefix = strings.ReplaceAll(conv.Prefix, "$", "")
			return conv.Validate() == nil
		},
		genConvention(),
	))

	properties.Property("underscore toggle always changes the symbol", prop.ForAll(
		func(conv Convention) bool {
			flipped := conv
			flipped.TrailingUnderscore = !conv.TrailingUnderscore
			return conv.Symbol("dgesv") != flipped.Symbol("dgesv")
		},
		genConvention(),
	))

	properties.TestingRun(t)
}
