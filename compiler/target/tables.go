package target

import (
	_ "embed"
	"io"
	"os"

	"gopkg.in/yaml.v3"
	"tlog.app/go/errors"
)

type (
	Tables struct {
		Templates map[string]string `yaml:"templates"`
		Aliases   []AliasSpec       `yaml:"aliases"`
	}

	// AliasSpec is a declarative alias rule.
	AliasSpec struct {
		Name     string       `yaml:"name"`
		Priority int          `yaml:"priority"`
		Opcodes  []string     `yaml:"opcodes"`
		NOps     int          `yaml:"nops"`
		Ops      map[int]any  `yaml:"ops"`
		Features FeatureMatch `yaml:"features"`
		Text     string       `yaml:"text"`
	}

	// FeatureMatch constrains features; nil fields match anything.
	FeatureMatch struct {
		V9    *bool `yaml:"v9"`
		Ptr64 *bool `yaml:"ptr64"`
	}
)

//go:embed tables.yaml
var builtinTables []byte

// Builtin returns the tables the target ships with.
func Builtin() (*Tables, error) {
	t, err := decodeTables(builtinTables)
	if err != nil {
		return nil, errors.Wrap(err, "builtin tables")
	}

	return t, nil
}

func LoadTables(r io.Reader) (*Tables, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read")
	}

	return decodeTables(data)
}

func LoadTablesFile(name string) (*Tables, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	t, err := decodeTables(data)
	if err != nil {
		return nil, errors.Wrap(err, "%v", name)
	}

	return t, nil
}

func decodeTables(data []byte) (*Tables, error) {
	var t Tables

	err := yaml.Unmarshal(data, &t)
	if err != nil {
		return nil, errors.Wrap(err, "decode yaml")
	}

	for name := range t.Templates {
		if _, ok := LookupOpcode(name); !ok {
			return nil, errors.New("template for unknown opcode: %v", name)
		}
	}

	for i, a := range t.Aliases {
		if len(a.Opcodes) == 0 {
			return nil, errors.New("alias %d (%v): no opcodes", i, a.Name)
		}

		for _, name := range a.Opcodes {
			if _, ok := LookupOpcode(name); !ok {
				return nil, errors.New("alias %d (%v): unknown opcode: %v", i, a.Name, name)
			}
		}
	}

	return &t, nil
}

func (m FeatureMatch) Match(f Features) bool {
	if m.V9 != nil && *m.V9 != f.V9 {
		return false
	}

	if m.Ptr64 != nil && *m.Ptr64 != f.Ptr64 {
		return false
	}

	return true
}
