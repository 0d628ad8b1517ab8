package back

import (
	"github.com/slowlang/isel/compiler/ir"
	"github.com/slowlang/isel/compiler/set"
)

type exprSet = set.Bits[ir.Expr]

func sliceSet[S ~[]E, E any, I interface{ ~int }](s S, i I, x E) S {
	var z E

	for int(i) >= len(s) {
		s = append(s, z)
	}

	s[i] = x

	return s
}
