package compiler

import (
	"bytes"
	"context"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/isel/compiler/asm"
	"github.com/slowlang/isel/compiler/back"
	"github.com/slowlang/isel/compiler/format"
	"github.com/slowlang/isel/compiler/ir"
	"github.com/slowlang/isel/compiler/target"
)

type Config struct {
	Features target.Features

	// Syntax defaults to the builtin one.
	Syntax *format.Syntax

	Numbered bool
}

// NewSyntax compiles the builtin tables and merges alias files on top.
func NewSyntax(aliasFiles ...string) (*format.Syntax, error) {
	s, err := format.BuiltinSyntax()
	if err != nil {
		return nil, errors.Wrap(err, "builtin syntax")
	}

	sets := [][]format.Rule{s.Rules}

	for _, name := range aliasFiles {
		t, err := target.LoadTablesFile(name)
		if err != nil {
			return nil, errors.Wrap(err, "load %v", name)
		}

		for op, text := range t.Templates {
			o, _ := target.LookupOpcode(op)

			s.Templates[o], err = format.ParseTemplate(text)
			if err != nil {
				return nil, errors.Wrap(err, "%v: template %v", name, op)
			}
		}

		rules, err := format.CompileAliases(t.Aliases)
		if err != nil {
			return nil, errors.Wrap(err, "%v", name)
		}

		sets = append(sets, rules)
	}

	s.Rules = format.MergeRules(sets...)

	return s, nil
}

func CompileFile(ctx context.Context, name string, cfg Config) (obj []byte, err error) {
	fn, err := ir.LoadFile(name, target.SpaceNames)
	if err != nil {
		return nil, errors.Wrap(err, "load dag")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "name", name, "func", fn.Name, "nodes", fn.Len())

	return Compile(ctx, fn, cfg)
}

// Compile selects instructions for fn and renders them.
// An unrepresentable node aborts the whole function, no partial output is returned.
func Compile(ctx context.Context, fn *ir.Func, cfg Config) (obj []byte, err error) {
	mf, err := SelectFunc(ctx, fn, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Syntax == nil {
		cfg.Syntax, err = format.BuiltinSyntax()
		if err != nil {
			return nil, errors.Wrap(err, "syntax")
		}
	}

	p := format.New(cfg.Syntax, cfg.Features)
	p.Numbered = cfg.Numbered

	var buf bytes.Buffer

	err = p.WriteFunc(ctx, &buf, mf)
	if err != nil {
		return nil, errors.Wrap(err, "render")
	}

	return buf.Bytes(), nil
}

// SelectFunc runs selection and turns *back.Unsupported panic into an error.
// That's the only place it's recovered.
func SelectFunc(ctx context.Context, fn *ir.Func, cfg Config) (mf *asm.Func, err error) {
	defer func() {
		p := recover()
		if p == nil {
			return
		}

		u, ok := p.(*back.Unsupported)
		if !ok {
			panic(p)
		}

		mf = nil
		err = errors.Wrap(u, "select %v", fn.Name)
	}()

	mf = back.Select(ctx, fn, back.Config{Features: cfg.Features})

	return mf, nil
}

func WriteFile(name string, obj []byte) error {
	if name == "" || name == "-" {
		_, err := os.Stdout.Write(obj)
		return err
	}

	return os.WriteFile(name, obj, 0o644)
}
