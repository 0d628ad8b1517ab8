package vscpu

import (
	"bytes"
	"io"

	"github.com/slowlang/isel/compiler/objerr"
)

// Assemble turns "N: OP a b" and "N: value" lines into an image.
func Assemble(name string, text []byte) (*Image, error) {
	img := &Image{Name: name}

	for line := 1; len(text) != 0; line++ {
		var l []byte
		l, text, _ = bytes.Cut(text, []byte{'\n'})

		f := fields(stripComment(l))
		if len(f) == 0 {
			continue
		}

		w, err := assembleLine(name, line, f)
		if err != nil {
			return nil, err
		}

		img.Words = append(img.Words, w)
	}

	return img, nil
}

func assembleLine(name string, line int, f [][]byte) (w Word, err error) {
	w.Addr, err = address(f[0])
	if err != nil {
		return w, objerr.New(name, objerr.ParseFailed, "line %d: %v", line, err)
	}

	if w.Addr >= MemSize {
		return w, objerr.New(name, objerr.InvalidSectionIndex, "line %d: address %d out of memory", line, w.Addr)
	}

	switch {
	case len(f) == 1:
		return w, objerr.New(name, objerr.UnexpectedEOF, "line %d: value expected", line)
	case len(f) == 2:
		v, err := number(f[1])
		if err != nil {
			return w, objerr.New(name, objerr.ParseFailed, "line %d: %v", line, err)
		}

		w.Val = uint32(v)

		return w, nil
	}

	op, imm, ok := LookupOp(string(f[1]))
	if !ok {
		return w, objerr.New(name, objerr.ParseFailed, "line %d: unknown operation %q", line, f[1])
	}

	if len(f) < 4 {
		return w, objerr.New(name, objerr.UnexpectedEOF, "line %d: %v: two arguments expected", line, f[1])
	}

	if len(f) > 4 {
		return w, objerr.New(name, objerr.ParseFailed, "line %d: extra tokens after %q", line, f[3])
	}

	var args [2]uint64

	for i := range args {
		args[i], err = number(f[2+i])
		if err != nil {
			return w, objerr.New(name, objerr.ParseFailed, "line %d: arg %d: %v", line, i, err)
		}
	}

	w.Val = Encode(op, imm, int(args[0]), int(args[1]))
	w.Instr = true

	return w, nil
}

// LoadImage reads "addr value" words, the colon after addr is optional.
func LoadImage(name string, r io.Reader) (*Image, error) {
	text, err := io.ReadAll(r)
	if err != nil {
		return nil, objerr.New(name, objerr.UnexpectedEOF, "read: %v", err)
	}

	img := &Image{Name: name}

	for line := 1; len(text) != 0; line++ {
		var l []byte
		l, text, _ = bytes.Cut(text, []byte{'\n'})

		f := fields(l)
		if len(f) == 0 {
			continue
		}

		if len(f) != 2 {
			return nil, objerr.New(name, objerr.ParseFailed, "line %d: want 2 words, got %d", line, len(f))
		}

		a, err := number(bytes.TrimSuffix(f[0], []byte{':'}))
		if err != nil {
			return nil, objerr.New(name, objerr.ParseFailed, "line %d: %v", line, err)
		}

		if a >= MemSize {
			return nil, objerr.New(name, objerr.InvalidSectionIndex, "line %d: address %d out of memory", line, a)
		}

		v, err := number(f[1])
		if err != nil {
			return nil, objerr.New(name, objerr.ParseFailed, "line %d: %v", line, err)
		}

		img.Words = append(img.Words, Word{Addr: int(a), Val: uint32(v)})
	}

	return img, nil
}
