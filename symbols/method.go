// Copyright © 2018 The ELPS authors

package symbols

import (
	"fmt"
	"strings"
)

// Method is the method containing the paused frame a statement is evaluated
// in.  Parameters, frame locals and labels belong to the method.
type Method struct {
	name       string
	container  *TypeSymbol
	returnType *TypeSymbol
	params     []*Parameter
	locals     []*SourceLocal
	labels     []*Label
}

// NewMethod returns a method named name declared in container.  A nil
// returnType denotes a method returning void.
func NewMethod(container *TypeSymbol, name string, returnType *TypeSymbol) *Method {
	return &Method{name: name, container: container, returnType: returnType}
}

func (m *Method) Name() string { return m.name }
func (m *Method) Kind() Kind   { return KindMethod }

func (m *Method) String() string {
	params := make([]string, len(m.params))
	for i, p := range m.params {
		params[i] = p.typ.String()
	}
	prefix := ""
	if m.container != nil {
		prefix = m.container.FullName() + "."
	}
	return fmt.Sprintf("%s%s(%s)", prefix, m.name, strings.Join(params, ", "))
}

// ContainingType returns the type declaring m.
func (m *Method) ContainingType() *TypeSymbol { return m.container }

// ReturnType returns the declared return type of m, or nil for void.
func (m *Method) ReturnType() *TypeSymbol { return m.returnType }

// AddParameter appends a parameter to m and returns it.
func (m *Method) AddParameter(name string, typ *TypeSymbol, refKind RefKind) *Parameter {
	p := &Parameter{
		name:      name,
		typ:       typ,
		refKind:   refKind,
		ordinal:   len(m.params),
		container: m,
	}
	m.params = append(m.params, p)
	return p
}

// AddLocal appends a frame local to m and returns it.  Frame locals are the
// locals of the method body visible at the paused location.
func (m *Method) AddLocal(name string, typ *TypeSymbol) *SourceLocal {
	l := &SourceLocal{
		name:      name,
		container: m,
		declKind:  LocalRegularVariable,
		typ:       typ,
	}
	m.locals = append(m.locals, l)
	return l
}

// AddLabel appends a label to m and returns it.
func (m *Method) AddLabel(name string) *Label {
	l := &Label{name: name, container: m}
	m.labels = append(m.labels, l)
	return l
}

// Parameters returns the parameters of m in declaration order.
func (m *Method) Parameters() []*Parameter { return m.params }

// Locals returns the frame locals of m in declaration order.
func (m *Method) Locals() []*SourceLocal { return m.locals }

// Labels returns the labels of m in declaration order.
func (m *Method) Labels() []*Label { return m.labels }

// Parameter is a parameter of a method.
type Parameter struct {
	name      string
	typ       *TypeSymbol
	refKind   RefKind
	ordinal   int
	container *Method
}

func (p *Parameter) Name() string              { return p.name }
func (p *Parameter) Kind() Kind                { return KindParameter }
func (p *Parameter) String() string            { return p.name }
func (p *Parameter) Type() *TypeSymbol         { return p.typ }
func (p *Parameter) RefKind() RefKind          { return p.refKind }
func (p *Parameter) Ordinal() int              { return p.ordinal }
func (p *Parameter) ContainingMethod() *Method { return p.container }
func (p *Parameter) IsWritable() bool          { return true }

// Label is a statement label of a method.
type Label struct {
	name      string
	container *Method
}

func (l *Label) Name() string              { return l.name }
func (l *Label) Kind() Kind                { return KindLabel }
func (l *Label) String() string            { return l.name }
func (l *Label) ContainingMethod() *Method { return l.container }
