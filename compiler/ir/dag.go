package ir

import (
	"fmt"

	"tlog.app/go/tlog/tlwire"
)

type (
	// Expr is a node handle. Consumers reference nodes by handle only.
	Expr int

	Type  int
	Space int

	Func struct {
		Name string
		Leaf bool

		Root Expr

		Exprs []any
		EType []Type
	}

	Entry struct{}

	Imm   int64
	Arg   int
	Frame int

	Global struct {
		Name string
		Off  int64
	}

	// Res projects result N of a multi-result node.
	Res struct {
		X Expr
		N int
	}

	Add struct{ L, R Expr }
	Sub struct{ L, R Expr }
	Mul struct{ L, R Expr }
	And struct{ L, R Expr }
	Or  struct{ L, R Expr }
	Xor struct{ L, R Expr }
	Shl struct{ L, R Expr }
	Srl struct{ L, R Expr }
	Sra struct{ L, R Expr }

	Load struct {
		Chain Expr
		Addr  Expr
		Space Space
	}

	LoadV struct {
		Chain Expr
		Addr  Expr
		Space Space
		N     int
	}

	// LoadNC is a non-coherent load going around the cache hierarchy.
	LoadNC struct {
		Chain   Expr
		Addr    Expr
		Space   Space
		N       int
		Uniform bool
	}

	Store struct {
		Chain Expr
		Addr  Expr
		Val   Expr
		Space Space
	}

	StoreV struct {
		Chain Expr
		Addr  Expr
		Vals  []Expr
		Space Space
	}

	LoadParam struct {
		Chain Expr
		Off   int64
		N     int
	}

	StoreRetval struct {
		Chain Expr
		Off   int64
		Vals  []Expr
	}

	StoreParam struct {
		Chain Expr
		Param int
		Off   int64
		Vals  []Expr
	}

	AddrSpaceCast struct {
		X        Expr
		From, To Space
	}

	Tex struct {
		Chain   Expr
		Dim     int
		Handle  Expr
		Sampler Expr
		Coords  []Expr
	}

	Suld struct {
		Chain  Expr
		Dim    int
		Handle Expr
		Coords []Expr
	}

	Sust struct {
		Chain  Expr
		Dim    int
		Handle Expr
		Coords []Expr
		Vals   []Expr
	}

	// Intrinsic with Chain == Nil has no side effects.
	Intrinsic struct {
		ID    string
		Chain Expr
		Args  []Expr
	}

	Ret struct {
		Chain Expr
	}
)

const (
	Nil Expr = -1
)

const (
	Void Type = iota
	I1
	I32
	I64
	F32
	F64
	Chain
)

var typeNames = []string{
	Void:  "void",
	I1:    "i1",
	I32:   "i32",
	I64:   "i64",
	F32:   "f32",
	F64:   "f64",
	Chain: "chain",
}

func New(name string) *Func {
	return &Func{
		Name: name,
		Root: Nil,
	}
}

// Add appends node x of type tp to the arena.
func (f *Func) Add(x any, tp Type) Expr {
	id := Expr(len(f.Exprs))

	f.Exprs = append(f.Exprs, x)
	f.EType = append(f.EType, tp)

	return id
}

func (f *Func) Node(id Expr) any {
	return f.Exprs[id]
}

func (f *Func) Type(id Expr) Type {
	return f.EType[id]
}

func (f *Func) Len() int {
	return len(f.Exprs)
}

// Operands returns operand handles of x in order, chain first.
// Unknown node kinds have none.
func Operands(x any) (r []Expr) {
	app := func(l ...Expr) {
		for _, e := range l {
			if e != Nil {
				r = append(r, e)
			}
		}
	}

	switch x := x.(type) {
	case Entry, Imm, Arg, Frame, Global:
	case Res:
		app(x.X)
	case Add:
		app(x.L, x.R)
	case Sub:
		app(x.L, x.R)
	case Mul:
		app(x.L, x.R)
	case And:
		app(x.L, x.R)
	case Or:
		app(x.L, x.R)
	case Xor:
		app(x.L, x.R)
	case Shl:
		app(x.L, x.R)
	case Srl:
		app(x.L, x.R)
	case Sra:
		app(x.L, x.R)
	case Load:
		app(x.Chain, x.Addr)
	case LoadV:
		app(x.Chain, x.Addr)
	case LoadNC:
		app(x.Chain, x.Addr)
	case Store:
		app(x.Chain, x.Addr, x.Val)
	case StoreV:
		app(x.Chain, x.Addr)
		app(x.Vals...)
	case LoadParam:
		app(x.Chain)
	case StoreRetval:
		app(x.Chain)
		app(x.Vals...)
	case StoreParam:
		app(x.Chain)
		app(x.Vals...)
	case AddrSpaceCast:
		app(x.X)
	case Tex:
		app(x.Chain, x.Handle, x.Sampler)
		app(x.Coords...)
	case Suld:
		app(x.Chain, x.Handle)
		app(x.Coords...)
	case Sust:
		app(x.Chain, x.Handle)
		app(x.Coords...)
		app(x.Vals...)
	case Intrinsic:
		app(x.Chain)
		app(x.Args...)
	case Ret:
		app(x.Chain)
	default:
		return nil
	}

	return r
}

// Bits returns the register width of tp or 0 if it's not a value type.
func (tp Type) Bits() int {
	switch tp {
	case I1:
		return 1
	case I32, F32:
		return 32
	case I64, F64:
		return 64
	default:
		return 0
	}
}

func (tp Type) String() string {
	if tp >= 0 && int(tp) < len(typeNames) {
		return typeNames[tp]
	}

	return fmt.Sprintf("type(%d)", int(tp))
}

func (tp Type) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder

	return e.AppendString(b, tp.String())
}
