// Copyright © 2018 The ELPS authors

// Package alias describes the names a debugger assigns to values of a paused
// program: captured return values, the current exception, object ids and
// variables declared at the debugger console.
package alias

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind is the category of an alias.
type Kind int

const (
	Exception Kind = iota
	StowedException
	ReturnValue
	ObjectID
	Variable
)

var kindStrings = [...]string{
	Exception:       "exception",
	StowedException: "stowed-exception",
	ReturnValue:     "return-value",
	ObjectID:        "object-id",
	Variable:        "variable",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindStrings) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindStrings[k]
}

// ParseKind returns the Kind named by s.  Names are matched without regard
// to case.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindStrings {
		if strings.EqualFold(name, s) {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown alias kind %q", s)
}

// MarshalYAML implements yaml.Marshaler.
func (k Kind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (k *Kind) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	kind, err := ParseKind(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*k = kind
	return nil
}

// Descriptor describes one alias.  Descriptors are immutable once handed to
// an evaluation request and are supplied in a stable order.
type Descriptor struct {
	// Name is the identifier the alias is referenced by, e.g. "$exception".
	Name string `yaml:"name"`
	// FullName is the expression the debugger displays for the alias.  It
	// defaults to Name.
	FullName string `yaml:"full-name,omitempty"`
	Kind     Kind   `yaml:"kind"`
	// Type is the serialized type name of the aliased value, e.g.
	// "System.Int32, mscorlib".
	Type string `yaml:"type"`
	// Payload is the aliased value.
	Payload interface{} `yaml:"value,omitempty"`
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s %s: %s", d.Kind, d.Name, d.Type)
}

// Validate checks that d names a kind and an identifier.
func (d Descriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("alias has no name")
	}
	if d.Kind < 0 || int(d.Kind) >= len(kindStrings) {
		return fmt.Errorf("alias %s: %v", d.Name, d.Kind)
	}
	return nil
}

type document struct {
	Aliases []Descriptor `yaml:"aliases"`
}

// Load reads a YAML document with a top level "aliases" list.
func Load(r io.Reader) ([]Descriptor, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode aliases: %w", err)
	}
	for _, d := range doc.Aliases {
		if err := d.Validate(); err != nil {
			return nil, err
		}
	}
	return doc.Aliases, nil
}

// LoadFile reads aliases from the YAML file at path.
func LoadFile(path string) ([]Descriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	aliases, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return aliases, nil
}
