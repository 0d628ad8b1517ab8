package format

import (
	"strconv"

	"tlog.app/go/errors"
)

type (
	// Template is a compiled instruction text pattern.
	Template []segment

	segment struct {
		dir byte // 0 for literal text
		n   int
		lit string
	}
)

const (
	dirOperand = 'o'
	dirMem     = 'm'
	dirCond    = 'c'
	dirSpace   = 's'
)

// ParseTemplate compiles text with $N, $mN, $cN, $sN and $$ directives.
func ParseTemplate(text string) (t Template, err error) {
	st := 0

	flush := func(end int) {
		if end > st {
			t = append(t, segment{lit: text[st:end]})
		}
	}

	for i := 0; i < len(text); {
		if text[i] != '$' {
			i++
			continue
		}

		flush(i)

		if i+1 < len(text) && text[i+1] == '$' {
			t = append(t, segment{lit: "$"})
			i += 2
			st = i

			continue
		}

		j := i + 1
		dir := byte(dirOperand)

		if j < len(text) {
			switch text[j] {
			case dirMem, dirCond, dirSpace:
				dir = text[j]
				j++
			}
		}

		k := j
		for k < len(text) && text[k] >= '0' && text[k] <= '9' {
			k++
		}

		if k == j {
			return nil, errors.New("bad directive at pos %d: %q", i, text)
		}

		n, err := strconv.Atoi(text[j:k])
		if err != nil {
			return nil, errors.Wrap(err, "directive at pos %d", i)
		}

		t = append(t, segment{dir: dir, n: n})

		i = k
		st = k
	}

	flush(len(text))

	return t, nil
}

func MustParseTemplate(text string) Template {
	t, err := ParseTemplate(text)
	if err != nil {
		panic(err)
	}

	return t
}
