package ir

import (
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
	"tlog.app/go/errors"
)

type (
	yamlFunc struct {
		Name  string     `yaml:"name"`
		Leaf  bool       `yaml:"leaf"`
		Root  *Expr      `yaml:"root"`
		Nodes []yamlNode `yaml:"nodes"`
	}

	yamlNode struct {
		Op   string `yaml:"op"`
		Type string `yaml:"type"`

		Value   int64  `yaml:"value"`
		N       int    `yaml:"n"`
		Name    string `yaml:"name"`
		Off     int64  `yaml:"off"`
		Param   int    `yaml:"param"`
		Dim     int    `yaml:"dim"`
		ID      string `yaml:"id"`
		Uniform bool   `yaml:"uniform"`

		Space string `yaml:"space"`
		From  string `yaml:"from"`
		To    string `yaml:"to"`

		L       *Expr `yaml:"l"`
		R       *Expr `yaml:"r"`
		X       *Expr `yaml:"x"`
		Chain   *Expr `yaml:"chain"`
		Addr    *Expr `yaml:"addr"`
		Val     *Expr `yaml:"val"`
		Handle  *Expr `yaml:"handle"`
		Sampler *Expr `yaml:"sampler"`

		Vals   []Expr `yaml:"vals"`
		Coords []Expr `yaml:"coords"`
		Args   []Expr `yaml:"args"`
	}

	loader struct {
		f      *Func
		spaces map[string]Space
		i      int
		n      *yamlNode
		err    error
	}
)

func LoadFile(name string, spaces map[string]Space) (*Func, error) {
	fd, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}

	defer fd.Close()

	return Read(fd, spaces)
}

// Read reads a yaml DAG description.
// Nodes are numbered by position and may only refer to earlier nodes.
func Read(r io.Reader, spaces map[string]Space) (*Func, error) {
	var y yamlFunc

	d := yaml.NewDecoder(r)
	d.KnownFields(true)

	err := d.Decode(&y)
	if err != nil {
		return nil, errors.Wrap(err, "decode yaml")
	}

	l := &loader{
		f:      New(y.Name),
		spaces: spaces,
	}

	l.f.Leaf = y.Leaf

	for i := range y.Nodes {
		l.i = i
		l.n = &y.Nodes[i]

		x, tp := l.node()
		if l.err != nil {
			return nil, errors.Wrap(l.err, "node %d (%v)", i, l.n.Op)
		}

		l.f.Add(x, tp)
	}

	switch {
	case y.Root != nil:
		if *y.Root < 0 || int(*y.Root) >= l.f.Len() {
			return nil, errors.New("root %d out of range", *y.Root)
		}

		l.f.Root = *y.Root
	case l.f.Len() != 0:
		l.f.Root = Expr(l.f.Len() - 1)
	}

	return l.f, nil
}

func (l *loader) node() (x any, tp Type) {
	n := l.n
	tp = l.typ()

	switch n.Op {
	case "entry":
		return Entry{}, Chain
	case "imm":
		return Imm(n.Value), tp
	case "arg":
		return Arg(n.N), tp
	case "frame":
		return Frame(n.N), tp
	case "global":
		return Global{Name: n.Name, Off: n.Off}, tp
	case "res":
		return Res{X: l.ref("x", n.X), N: n.N}, tp
	case "add":
		return Add{L: l.ref("l", n.L), R: l.ref("r", n.R)}, tp
	case "sub":
		return Sub{L: l.ref("l", n.L), R: l.ref("r", n.R)}, tp
	case "mul":
		return Mul{L: l.ref("l", n.L), R: l.ref("r", n.R)}, tp
	case "and":
		return And{L: l.ref("l", n.L), R: l.ref("r", n.R)}, tp
	case "or":
		return Or{L: l.ref("l", n.L), R: l.ref("r", n.R)}, tp
	case "xor":
		return Xor{L: l.ref("l", n.L), R: l.ref("r", n.R)}, tp
	case "shl":
		return Shl{L: l.ref("l", n.L), R: l.ref("r", n.R)}, tp
	case "srl":
		return Srl{L: l.ref("l", n.L), R: l.ref("r", n.R)}, tp
	case "sra":
		return Sra{L: l.ref("l", n.L), R: l.ref("r", n.R)}, tp
	case "load":
		return Load{Chain: l.chain(), Addr: l.ref("addr", n.Addr), Space: l.space(n.Space)}, tp
	case "loadv":
		return LoadV{Chain: l.chain(), Addr: l.ref("addr", n.Addr), Space: l.space(n.Space), N: n.N}, tp
	case "loadnc":
		return LoadNC{Chain: l.chain(), Addr: l.ref("addr", n.Addr), Space: l.space(n.Space), N: max(n.N, 1), Uniform: n.Uniform}, tp
	case "store":
		return Store{Chain: l.chain(), Addr: l.ref("addr", n.Addr), Val: l.ref("val", n.Val), Space: l.space(n.Space)}, Chain
	case "storev":
		return StoreV{Chain: l.chain(), Addr: l.ref("addr", n.Addr), Vals: l.refs(n.Vals), Space: l.space(n.Space)}, Chain
	case "loadparam":
		return LoadParam{Chain: l.chain(), Off: n.Off, N: max(n.N, 1)}, tp
	case "storeretval":
		return StoreRetval{Chain: l.chain(), Off: n.Off, Vals: l.refs(n.Vals)}, Chain
	case "storeparam":
		return StoreParam{Chain: l.chain(), Param: n.Param, Off: n.Off, Vals: l.refs(n.Vals)}, Chain
	case "addrspacecast":
		return AddrSpaceCast{X: l.ref("x", n.X), From: l.space(n.From), To: l.space(n.To)}, tp
	case "tex":
		return Tex{Chain: l.chain(), Dim: n.Dim, Handle: l.ref("handle", n.Handle), Sampler: l.ref("sampler", n.Sampler), Coords: l.refs(n.Coords)}, tp
	case "suld":
		return Suld{Chain: l.chain(), Dim: n.Dim, Handle: l.ref("handle", n.Handle), Coords: l.refs(n.Coords)}, tp
	case "sust":
		return Sust{Chain: l.chain(), Dim: n.Dim, Handle: l.ref("handle", n.Handle), Coords: l.refs(n.Coords), Vals: l.refs(n.Vals)}, Chain
	case "intrinsic":
		return Intrinsic{ID: n.ID, Chain: l.chain(), Args: l.refs(n.Args)}, tp
	case "ret":
		return Ret{Chain: l.chain()}, Chain
	default:
		l.fail(errors.New("unsupported op"))
		return nil, Void
	}
}

func (l *loader) ref(name string, e *Expr) Expr {
	if e == nil {
		l.fail(errors.New("missing operand %v", name))
		return Nil
	}

	return l.check(*e)
}

func (l *loader) chain() Expr {
	if l.n.Chain == nil {
		return Nil
	}

	return l.check(*l.n.Chain)
}

func (l *loader) refs(es []Expr) []Expr {
	for _, e := range es {
		l.check(e)
	}

	return es
}

func (l *loader) check(e Expr) Expr {
	if e < 0 || int(e) >= l.i {
		l.fail(errors.New("operand %d is not an earlier node", e))
	}

	return e
}

func (l *loader) typ() Type {
	if l.n.Type == "" {
		return Void
	}

	tp, err := ParseType(l.n.Type)
	l.fail(err)

	return tp
}

func (l *loader) space(s string) Space {
	if s == "" {
		return 0
	}

	if sp, ok := l.spaces[s]; ok {
		return sp
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		l.fail(errors.New("unknown address space: %v", s))
		return 0
	}

	return Space(v)
}

func (l *loader) fail(err error) {
	if l.err == nil {
		l.err = err
	}
}

func ParseType(s string) (Type, error) {
	for tp, name := range typeNames {
		if name == s {
			return Type(tp), nil
		}
	}

	return Void, errors.New("unknown type: %v", s)
}
