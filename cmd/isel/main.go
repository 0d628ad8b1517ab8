package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/isel/compiler"
	"github.com/slowlang/isel/compiler/format"
	"github.com/slowlang/isel/compiler/objerr"
	"github.com/slowlang/isel/compiler/target"
	"github.com/slowlang/isel/compiler/vscpu"
)

type imageFile string

func main() {
	targetFlags := []*cli.Flag{
		cli.NewFlag("features", "", "target features: v9,ptr64,ldg"),
		cli.NewFlag("aliases", "", "comma separated extra alias table files"),
		cli.NewFlag("numbered", false, "prefix lines with numbers"),
		cli.NewFlag("output,o", "-", "output file"),
	}

	selectCmd := &cli.Command{
		Name:        "select,compile",
		Description: "select instructions for dag files and print assembly",
		Action:      selectAct,
		Args:        cli.Args{},
		Flags:       targetFlags,
	}

	renderCmd := &cli.Command{
		Name:        "render",
		Description: "render canonical instruction listing applying aliases",
		Action:      renderAct,
		Args:        cli.Args{},
		Flags:       targetFlags,
	}

	asmCmd := &cli.Command{
		Name:        "asm",
		Description: "assemble vscpu program into memory image",
		Action:      asmAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("output,o", "-", "output file"),
		},
	}

	runCmd := &cli.Command{
		Name:        "run",
		Description: "run vscpu memory images, malformed ones are skipped",
		Action:      runAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("hex", false, "dump memory in hex"),
			cli.NewFlag("steps", 1000000, "steps limit, 0 for none"),
			cli.NewFlag("source", false, "args are vscpu programs, not images"),
		},
	}

	app := &cli.Command{
		Name:        "isel",
		Description: "isel is an instruction selector and assembly renderer",
		Before:      before,
		Flags: []*cli.Flag{
			cli.NewFlag("verbosity,v", "", "logger verbosity topics"),
			cli.HelpFlag,
		},
		Commands: []*cli.Command{
			selectCmd,
			renderCmd,
			asmCmd,
			runCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func before(c *cli.Command) error {
	tlog.SetVerbosity(c.String("verbosity"))

	return nil
}

func rootContext() context.Context {
	return tlog.ContextWithSpan(context.Background(), tlog.Root())
}

func config(c *cli.Command) (cfg compiler.Config, err error) {
	cfg.Features, err = target.ParseFeatures(c.String("features"))
	if err != nil {
		return cfg, errors.Wrap(err, "features")
	}

	var files []string
	if a := c.String("aliases"); a != "" {
		files = strings.Split(a, ",")
	}

	cfg.Syntax, err = compiler.NewSyntax(files...)
	if err != nil {
		return cfg, errors.Wrap(err, "syntax")
	}

	cfg.Numbered = c.Bool("numbered")

	return cfg, nil
}

func selectAct(c *cli.Command) (err error) {
	ctx := rootContext()

	cfg, err := config(c)
	if err != nil {
		return err
	}

	var out []byte

	for _, a := range c.Args {
		obj, err := compiler.CompileFile(ctx, a, cfg)
		if err != nil {
			return errors.Wrap(err, "compile %v", a)
		}

		out = append(out, obj...)
	}

	return compiler.WriteFile(c.String("output"), out)
}

func renderAct(c *cli.Command) (err error) {
	ctx := rootContext()

	cfg, err := config(c)
	if err != nil {
		return err
	}

	p := format.New(cfg.Syntax, cfg.Features)
	p.Numbered = cfg.Numbered

	var out strings.Builder

	for _, a := range c.Args {
		text, err := os.ReadFile(a)
		if err != nil {
			return errors.Wrap(err, "read %v", a)
		}

		f, err := format.ParseListing(text)
		if err != nil {
			return errors.Wrap(err, "parse %v", a)
		}

		if f.Name == "" {
			f.Name = strings.TrimSuffix(a, ".s")
		}

		err = p.WriteFunc(ctx, &out, f)
		if err != nil {
			return errors.Wrap(err, "render %v", a)
		}
	}

	return compiler.WriteFile(c.String("output"), []byte(out.String()))
}

func asmAct(c *cli.Command) (err error) {
	var out []byte

	for _, a := range c.Args {
		img, err := assemble(a)
		if err != nil {
			return err
		}

		out = img.AppendText(out)
	}

	return compiler.WriteFile(c.String("output"), out)
}

func runAct(c *cli.Command) (err error) {
	ctx := rootContext()
	tr := tlog.SpanFromContext(ctx)

	files := make([]imageFile, len(c.Args))
	for i, a := range c.Args {
		files[i] = imageFile(a)
	}

	skipped, err := objerr.Walk(files, func(f imageFile) error {
		img, err := load(string(f), c.Bool("source"))
		if err != nil {
			return err
		}

		cpu := vscpu.New(img)

		steps, err := cpu.Run(ctx, c.Int("steps"))
		tr.Printw("run", "image", img.Name, "steps", steps, "halted", cpu.Halted, "err", err)
		if err != nil {
			return errors.Wrap(err, "run")
		}

		fmt.Printf("# %v\n", img.Name)

		return cpu.Dump(os.Stdout, c.Bool("hex"))
	})

	for _, e := range skipped {
		tr.Printw("skipped malformed image", "err", e)
	}

	return err
}

func load(name string, source bool) (*vscpu.Image, error) {
	if source {
		return assemble(name)
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}

	defer f.Close()

	return vscpu.LoadImage(name, f)
}

func assemble(name string) (*vscpu.Image, error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read %v", name)
	}

	return vscpu.Assemble(name, text)
}

func (f imageFile) Name() string { return string(f) }
