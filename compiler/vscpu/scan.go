package vscpu

import (
	"bytes"
	"strconv"

	"tlog.app/go/errors"
)

type Spaces uint64

var spaceTab = NewSpaces(' ', '\t', '\r')

func NewSpaces(skip ...byte) (ss Spaces) {
	for _, q := range skip {
		if q >= 64 {
			panic("too high char code")
		}

		ss |= 1 << q
	}

	return
}

func (s Spaces) Skip(b []byte, st int) (i int) {
	i = st

	for i < len(b) && b[i] < 64 && s&(1<<b[i]) != 0 {
		i++
	}

	return
}

func (s Spaces) Is(c byte) bool {
	return c < 64 && s&(1<<c) != 0
}

// fields splits a line by spaces. A colon ends the first field.
func fields(b []byte) (r [][]byte) {
	i := spaceTab.Skip(b, 0)

	for i < len(b) {
		st := i

		for i < len(b) && !spaceTab.Is(b[i]) && b[i] != ':' {
			i++
		}

		if i < len(b) && b[i] == ':' {
			i++
		}

		r = append(r, b[st:i])
		i = spaceTab.Skip(b, i)
	}

	return r
}

func stripComment(l []byte) []byte {
	if i := bytes.Index(l, []byte("//")); i >= 0 {
		return l[:i]
	}

	return l
}

// number parses decimal or 0x prefixed hex that fits a 32-bit word.
func number(b []byte) (uint64, error) {
	s := string(b)
	base := 10

	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
		base = 16
	}

	x, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return 0, errors.New("bad number: %q", b)
	}

	return x, nil
}

func address(b []byte) (int, error) {
	if len(b) == 0 || b[len(b)-1] != ':' {
		return 0, errors.New("address expected: %q", b)
	}

	x, err := number(b[:len(b)-1])
	if err != nil {
		return 0, err
	}

	return int(x), nil
}
