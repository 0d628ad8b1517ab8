package objerr

import (
	"fmt"

	"tlog.app/go/errors"
)

type (
	Kind int

	// Error describes a malformed binary file.
	// Code walking several files can skip the one that produced it.
	Error struct {
		Kind Kind
		File string
		Msg  string
	}

	Member interface {
		Name() string
	}
)

const (
	_ Kind = iota
	ArchNotFound
	InvalidFileType
	ParseFailed
	UnexpectedEOF
	StringTableNonNullEnd
	InvalidSectionIndex
	BitcodeSectionNotFound
	MachoSmallLoadCommand
	MachoLoadSegmentTooManySections
	MachoLoadSegmentTooSmall
)

var kindMsg = []string{
	ArchNotFound:                    "no object file for requested architecture",
	InvalidFileType:                 "the file was not recognized as a valid object file",
	ParseFailed:                     "invalid data was encountered while parsing the file",
	UnexpectedEOF:                   "the end of the file was unexpectedly encountered",
	StringTableNonNullEnd:           "string table must end with a null terminator",
	InvalidSectionIndex:             "invalid section index",
	BitcodeSectionNotFound:          "bitcode section not found in object file",
	MachoSmallLoadCommand:           "mach-o load command with size < 8 bytes",
	MachoLoadSegmentTooManySections: "mach-o segment load command contains too many sections",
	MachoLoadSegmentTooSmall:        "mach-o segment load command size is too small",
}

func New(file string, k Kind, format string, args ...any) *Error {
	return &Error{
		Kind: k,
		File: file,
		Msg:  fmt.Sprintf(format, args...),
	}
}

func (k Kind) String() string {
	if k > 0 && int(k) < len(kindMsg) {
		return kindMsg[k]
	}

	return fmt.Sprintf("object error %d", int(k))
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}

	if e.File == "" {
		return msg
	}

	return fmt.Sprintf("%v: %v", e.File, msg)
}

// Is matches any *Error of the same kind, or a bare Kind.
func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case *Error:
		return t.Kind == e.Kind
	case Kind:
		return t == e.Kind
	}

	return false
}

// Error makes Kind usable as an errors.Is target.
func (k Kind) Error() string { return k.String() }

// IsMalformed reports whether err is caused by a malformed file.
func IsMalformed(err error) bool {
	var e *Error

	return errors.As(err, &e)
}

// Walk calls fn for every member. Malformed members are collected and skipped,
// any other error stops the walk.
func Walk[M Member](members []M, fn func(M) error) (skipped []error, err error) {
	for _, m := range members {
		err = fn(m)
		if err == nil {
			continue
		}

		if IsMalformed(err) {
			skipped = append(skipped, err)
			continue
		}

		return skipped, errors.Wrap(err, "%v", m.Name())
	}

	return skipped, nil
}
