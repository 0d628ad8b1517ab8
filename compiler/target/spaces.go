package target

import "github.com/slowlang/isel/compiler/ir"

const (
	SpaceGeneric ir.Space = 0
	SpaceGlobal  ir.Space = 1
	SpaceShared  ir.Space = 3
	SpaceConst   ir.Space = 4
	SpaceLocal   ir.Space = 5
	SpaceParam   ir.Space = 101
)

var SpaceNames = map[string]ir.Space{
	"generic": SpaceGeneric,
	"global":  SpaceGlobal,
	"shared":  SpaceShared,
	"const":   SpaceConst,
	"local":   SpaceLocal,
	"param":   SpaceParam,
}

// SpaceSuffix is the mnemonic suffix of memory instructions in space sp.
func SpaceSuffix(sp ir.Space) string {
	switch sp {
	case SpaceGlobal:
		return ".global"
	case SpaceShared:
		return ".shared"
	case SpaceConst:
		return ".const"
	case SpaceLocal:
		return ".local"
	case SpaceParam:
		return ".param"
	default:
		return ""
	}
}
