package objerr

import (
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tlog.app/go/errors"
)

type member string

func (m member) Name() string { return string(m) }

func TestError(t *testing.T) {
	err := New("a.o", ParseFailed, "line %d: bad", 3)

	assert.Equal(t, "a.o: line 3: bad", err.Error())
	assert.True(t, errors.Is(err, ParseFailed))
	assert.False(t, errors.Is(err, UnexpectedEOF))
	assert.True(t, errors.Is(err, &Error{Kind: ParseFailed}))

	wrapped := fmt.Errorf("load: %w", err)
	assert.True(t, IsMalformed(wrapped))
	assert.True(t, errors.Is(wrapped, ParseFailed))
	assert.False(t, IsMalformed(io.EOF))

	assert.Equal(t, "invalid section index", (&Error{Kind: InvalidSectionIndex}).Error())
	assert.Equal(t, "object error 42", Kind(42).String())
	assert.EqualValues(t, 1, ArchNotFound)
}

func TestWalk(t *testing.T) {
	var seen []string

	skipped, err := Walk([]member{"good", "bad", "good2", "truncated"}, func(m member) error {
		seen = append(seen, m.Name())

		switch m {
		case "bad":
			return New(m.Name(), InvalidFileType, "")
		case "truncated":
			return fmt.Errorf("read: %w", New(m.Name(), UnexpectedEOF, "short"))
		}

		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"good", "bad", "good2", "truncated"}, seen)
	require.Len(t, skipped, 2)
	assert.True(t, errors.Is(skipped[0], InvalidFileType))
	assert.True(t, errors.Is(skipped[1], UnexpectedEOF))
}

func TestWalkAborts(t *testing.T) {
	var seen []string

	skipped, err := Walk([]member{"bad", "io", "never"}, func(m member) error {
		seen = append(seen, m.Name())

		switch m {
		case "bad":
			return New(m.Name(), ParseFailed, "")
		case "io":
			return io.ErrUnexpectedEOF
		}

		return nil
	})

	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Len(t, skipped, 1)
	assert.Equal(t, []string{"bad", "io"}, seen)
}
