// Copyright © 2018 The ELPS authors

// Package snapshot loads a description of a paused program: the types it
// declares, its call stack, its heap and the aliases the debugger has
// assigned.  Snapshots are YAML documents:
//
//	usings: [System, App]
//	types:
//	  - name: App.Widget
//	  - name: App.NotFoundException
//	    base: System.Exception
//	frames:
//	  - method: App.Program.Run
//	    returns: int
//	    file: Program.cs
//	    line: 12
//	    parameters:
//	      - {name: count, type: int, value: 3}
//	    locals:
//	      - {name: widget, type: App.Widget, value: 0x1000}
//	    labels: [retry]
//	heap:
//	  - address: 0x1000
//	    type: App.Widget
//	    fields:
//	      - {name: Id, type: int, value: 7}
//	aliases:
//	  - {name: $exception, kind: exception, type: App.NotFoundException, value: 0x2000}
//
// Type names are keywords or serialized type names.  The value of a local of
// a reference type is the address of a heap object or null.
package snapshot

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/luthersystems/eescope/alias"
	"github.com/luthersystems/eescope/eval"
	"github.com/luthersystems/eescope/parser/token"
	"github.com/luthersystems/eescope/symbols"
	"gopkg.in/yaml.v3"
)

// Document is the serialized form of a snapshot.
type Document struct {
	Usings  []string           `yaml:"usings,omitempty"`
	Types   []TypeDecl         `yaml:"types,omitempty"`
	Frames  []FrameDecl        `yaml:"frames"`
	Heap    []ObjectDecl       `yaml:"heap,omitempty"`
	Aliases []alias.Descriptor `yaml:"aliases,omitempty"`
}

// TypeDecl declares a class.
type TypeDecl struct {
	// Name is the namespace qualified name of the type.
	Name  string `yaml:"name"`
	Arity int    `yaml:"arity,omitempty"`
	// Base defaults to System.Object.
	Base string `yaml:"base,omitempty"`
}

// FrameDecl describes one activation on the call stack.  Frames are listed
// innermost first.
type FrameDecl struct {
	// Method is the qualified method name, e.g. "App.Program.Run".
	Method     string    `yaml:"method"`
	Returns    string    `yaml:"returns,omitempty"`
	File       string    `yaml:"file,omitempty"`
	Line       int       `yaml:"line,omitempty"`
	Parameters []VarDecl `yaml:"parameters,omitempty"`
	Locals     []VarDecl `yaml:"locals,omitempty"`
	Labels     []string  `yaml:"labels,omitempty"`
}

// VarDecl declares a parameter, local or field and its value.
type VarDecl struct {
	Name  string      `yaml:"name"`
	Type  string      `yaml:"type"`
	Value interface{} `yaml:"value,omitempty"`
	Ref   bool        `yaml:"ref,omitempty"`
}

// ObjectDecl describes a heap object.
type ObjectDecl struct {
	Address uint64    `yaml:"address"`
	Type    string    `yaml:"type"`
	Display string    `yaml:"display,omitempty"`
	Fields  []VarDecl `yaml:"fields,omitempty"`
}

// Load reads a snapshot document.  Unknown fields are errors.
func Load(r io.Reader) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty snapshot")
		}
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &doc, nil
}

// Open loads and builds the snapshot file at path.
func Open(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	p, err := doc.Build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Program is a built snapshot.  A Program is read-only once built and may be
// shared between goroutines.
type Program struct {
	Compilation *symbols.Compilation
	Decoder     *symbols.CompilationDecoder
	Usings      []string
	Aliases     []alias.Descriptor
	frames      []*Frame
	heap        map[uint64]*eval.Object
}

var _ eval.Heap = (*Program)(nil)

// Frames returns the call stack, innermost first.
func (p *Program) Frames() []*Frame { return p.frames }

// Frame returns the frame with the given id.
func (p *Program) Frame(id int) (*Frame, error) {
	if id < 0 || id >= len(p.frames) {
		return nil, fmt.Errorf("no frame with id %d", id)
	}
	return p.frames[id], nil
}

// ObjectAt implements eval.Heap.
func (p *Program) ObjectAt(address uint64) (*eval.Object, error) {
	obj, ok := p.heap[address]
	if !ok {
		return nil, fmt.Errorf("%w 0x%x", eval.ErrNoObject, address)
	}
	return obj, nil
}

// Objects returns the heap objects ordered by address.
func (p *Program) Objects() []*eval.Object {
	objs := make([]*eval.Object, 0, len(p.heap))
	for _, obj := range p.heap {
		objs = append(objs, obj)
	}
	sort.Slice(objs, func(i, j int) bool { return objs[i].Address < objs[j].Address })
	return objs
}

// Frame is one activation of a method.  It supplies values to the
// evaluator.
type Frame struct {
	ID     int
	Method *symbols.Method
	// Source is the paused location, or nil.
	Source  *token.Location
	program *Program
	params  map[*symbols.Parameter]interface{}
	locals  map[*symbols.SourceLocal]interface{}
}

var _ eval.Frame = (*Frame)(nil)

// Name returns the display name of the frame.
func (f *Frame) Name() string { return f.Method.String() }

// ObjectAt implements eval.Heap.
func (f *Frame) ObjectAt(address uint64) (*eval.Object, error) {
	return f.program.ObjectAt(address)
}

// ParameterValue implements eval.Frame.
func (f *Frame) ParameterValue(p *symbols.Parameter) (eval.Value, error) {
	payload, ok := f.params[p]
	if !ok {
		return eval.Value{}, fmt.Errorf("parameter %s: %w", p.Name(), eval.ErrUnavailable)
	}
	return f.value(p.Name(), p.Type(), payload)
}

// LocalValue implements eval.Frame.
func (f *Frame) LocalValue(l *symbols.SourceLocal) (eval.Value, error) {
	payload, ok := f.locals[l]
	if !ok {
		return eval.Value{}, fmt.Errorf("local %s: %w", l.Name(), eval.ErrUnavailable)
	}
	return f.value(l.Name(), l.Type(), payload)
}

func (f *Frame) value(name string, typ *symbols.TypeSymbol, payload interface{}) (eval.Value, error) {
	v, err := eval.FromPayload(typ, payload, f.program)
	if err != nil {
		return eval.Value{}, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

// Build resolves the types of the document and checks its values.
func (doc *Document) Build() (*Program, error) {
	c := symbols.NewCompilation()
	p := &Program{
		Compilation: c,
		Decoder:     symbols.NewTypeNameDecoder(c),
		Usings:      doc.Usings,
		heap:        make(map[uint64]*eval.Object, len(doc.Heap)),
	}
	if err := defineTypes(c, p.Decoder, doc.Types); err != nil {
		return nil, err
	}
	for _, o := range doc.Heap {
		if _, ok := p.heap[o.Address]; ok {
			return nil, fmt.Errorf("heap: duplicate object at 0x%x", o.Address)
		}
		typ, err := p.decode(o.Type)
		if err != nil {
			return nil, fmt.Errorf("heap 0x%x: %w", o.Address, err)
		}
		p.heap[o.Address] = &eval.Object{Address: o.Address, Type: typ, Display: o.Display}
	}
	// Fields may refer to any object so they are filled once every object
	// exists.
	for _, o := range doc.Heap {
		obj := p.heap[o.Address]
		for _, fd := range o.Fields {
			typ, err := p.decode(fd.Type)
			if err != nil {
				return nil, fmt.Errorf("heap 0x%x: field %s: %w", o.Address, fd.Name, err)
			}
			v, err := eval.FromPayload(typ, fd.Value, p)
			if err != nil {
				return nil, fmt.Errorf("heap 0x%x: field %s: %w", o.Address, fd.Name, err)
			}
			obj.Fields = append(obj.Fields, eval.Field{Name: fd.Name, Value: v})
		}
	}
	for i, fd := range doc.Frames {
		frame, err := p.buildFrame(i, fd)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		p.frames = append(p.frames, frame)
	}
	if len(p.frames) == 0 {
		return nil, fmt.Errorf("snapshot has no frames")
	}
	for _, a := range doc.Aliases {
		if err := a.Validate(); err != nil {
			return nil, err
		}
	}
	p.Aliases = doc.Aliases
	return p, nil
}

func (p *Program) decode(name string) (*symbols.TypeSymbol, error) {
	typ := p.Decoder.DecodeTypeName(name)
	if typ.IsError() {
		return nil, fmt.Errorf("type %q: %s", name, typ.ErrorReason())
	}
	return typ, nil
}

// defineTypes declares types in an order where every base is declared before
// the types deriving from it.
func defineTypes(c *symbols.Compilation, decoder symbols.TypeNameDecoder, decls []TypeDecl) error {
	pending := append([]TypeDecl(nil), decls...)
	for len(pending) > 0 {
		var next []TypeDecl
		for _, d := range pending {
			var base *symbols.TypeSymbol
			if d.Base != "" {
				base = decoder.DecodeTypeName(d.Base)
				if base.IsError() {
					next = append(next, d)
					continue
				}
			}
			ns, name := splitQualified(d.Name)
			if name == "" {
				return fmt.Errorf("type declaration without a name")
			}
			c.DefineType(ns, name, d.Arity, base)
		}
		if len(next) == len(pending) {
			return fmt.Errorf("type %s: base type %q not found", next[0].Name, next[0].Base)
		}
		pending = next
	}
	return nil
}

func splitQualified(name string) (string, string) {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return "", name
	}
	return name[:i], name[i+1:]
}

func (p *Program) buildFrame(id int, fd FrameDecl) (*Frame, error) {
	typeName, methodName := splitQualified(fd.Method)
	if typeName == "" || methodName == "" {
		return nil, fmt.Errorf("method %q is not qualified by its type", fd.Method)
	}
	container := p.Compilation.GetTypeByMetadataName(typeName)
	if container == nil {
		ns, name := splitQualified(typeName)
		container = p.Compilation.DefineType(ns, name, 0, nil)
	}
	var returns *symbols.TypeSymbol
	if fd.Returns != "" && fd.Returns != "void" {
		var err error
		if returns, err = p.decode(fd.Returns); err != nil {
			return nil, fmt.Errorf("return type: %w", err)
		}
	}
	m := symbols.NewMethod(container, methodName, returns)
	frame := &Frame{
		ID:      id,
		Method:  m,
		program: p,
		params:  make(map[*symbols.Parameter]interface{}),
		locals:  make(map[*symbols.SourceLocal]interface{}),
	}
	if fd.File != "" {
		frame.Source = &token.Location{File: fd.File, Line: fd.Line}
	}
	for _, vd := range fd.Parameters {
		typ, err := p.decode(vd.Type)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", vd.Name, err)
		}
		refKind := symbols.RefNone
		if vd.Ref {
			refKind = symbols.RefRef
		}
		param := m.AddParameter(vd.Name, typ, refKind)
		if vd.Value != nil || !typ.IsValueType() {
			if _, err := frame.value(vd.Name, typ, vd.Value); err != nil {
				return nil, fmt.Errorf("parameter %w", err)
			}
			frame.params[param] = vd.Value
		}
	}
	for _, vd := range fd.Locals {
		typ, err := p.decode(vd.Type)
		if err != nil {
			return nil, fmt.Errorf("local %s: %w", vd.Name, err)
		}
		local := m.AddLocal(vd.Name, typ)
		if vd.Value != nil || !typ.IsValueType() {
			if _, err := frame.value(vd.Name, typ, vd.Value); err != nil {
				return nil, fmt.Errorf("local %w", err)
			}
			frame.locals[local] = vd.Value
		}
	}
	for _, name := range fd.Labels {
		m.AddLabel(name)
	}
	return frame, nil
}
