// Copyright © 2018 The ELPS authors

// Package debugger answers expression requests against a paused program.
// A Session owns the aliases a debugger has assigned (exceptions, return
// values, object ids and variables declared by earlier requests) and runs
// each request through parsing, binding and evaluation.
package debugger

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"

	"github.com/luthersystems/eescope/alias"
	"github.com/luthersystems/eescope/binder"
	"github.com/luthersystems/eescope/debugger/snapshot"
	"github.com/luthersystems/eescope/eval"
	"github.com/luthersystems/eescope/parser"
	"github.com/luthersystems/eescope/symbols"
	"github.com/luthersystems/eescope/syntax"
	"github.com/luthersystems/eescope/telemetry"
	"github.com/sirupsen/logrus"
)

// SourceName identifies request text in error locations.
const SourceName = "<expr>"

// ErrInternal is wrapped by the error of a request which violated an
// internal invariant.  The session remains usable.
var ErrInternal = errors.New("internal error")

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger of the session.
func WithLogger(log *logrus.Entry) Option {
	return func(s *Session) { s.log = log }
}

// WithTracer sets the tracer spans are started with.
func WithTracer(tracer telemetry.Tracer) Option {
	return func(s *Session) { s.tracer = tracer }
}

// WithUsings replaces the namespaces imported by the program.
func WithUsings(usings ...string) Option {
	return func(s *Session) { s.usings = usings }
}

// WithAliases adds aliases after those of the program.  An alias replaces a
// program alias of the same name.
func WithAliases(aliases ...alias.Descriptor) Option {
	return func(s *Session) { s.seed = append(s.seed, aliases...) }
}

// Session evaluates requests against a program.  A Session is safe for
// concurrent use.
type Session struct {
	program    *snapshot.Program
	log        *logrus.Entry
	tracer     telemetry.Tracer
	usings     []string
	seed       []alias.Descriptor
	namespaces *binder.NamespaceScope

	mu           sync.Mutex
	aliases      aliasStore
	returnValues int
	objectIDs    map[uint64]string
}

// NewSession returns a session for program seeded with the aliases of the
// program.
func NewSession(program *snapshot.Program, opts ...Option) (*Session, error) {
	s := &Session{
		program:   program,
		usings:    program.Usings,
		seed:      append([]alias.Descriptor(nil), program.Aliases...),
		objectIDs: make(map[uint64]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logrus.NewEntry(logrus.StandardLogger())
	}
	if s.tracer == nil {
		s.tracer = telemetry.Noop()
	}
	ns, err := binder.NewNamespaceScope(program.Compilation, s.usings)
	if err != nil {
		return nil, err
	}
	s.namespaces = ns
	for _, a := range s.seed {
		if err := a.Validate(); err != nil {
			return nil, err
		}
		s.aliases.set(a)
		switch a.Kind {
		case alias.ReturnValue:
			if n := returnValueNumber(a.Name); n > s.returnValues {
				s.returnValues = n
			}
		case alias.ObjectID:
			switch address := a.Payload.(type) {
			case uint64:
				s.objectIDs[address] = a.Name
			case int:
				s.objectIDs[uint64(address)] = a.Name
			}
		}
	}
	return s, nil
}

// Program returns the program the session inspects.
func (s *Session) Program() *snapshot.Program { return s.program }

// Aliases returns the current aliases in the order they were assigned.
func (s *Session) Aliases() []alias.Descriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aliases.all()
}

// Evaluation is the outcome of a successful request.
type Evaluation struct {
	Frame     *snapshot.Frame
	Statement binder.BoundStatement
	*eval.Result
}

// Evaluate parses, binds and evaluates text in the frame with id frameID.
// Locals declared by text are kept as variable aliases for later requests.
// Errors are *token.LocationError for malformed text, binder.Diagnostics
// for text that does not bind and *eval.RuntimeError for failed
// evaluation.
func (s *Session) Evaluate(ctx context.Context, frameID int, text string) (ev *Evaluation, err error) {
	_, span := s.tracer.Start(ctx, "eescope.Evaluate")
	defer span.End()
	span.SetAttributes(telemetry.String("eescope.text", text), telemetry.Int("eescope.frame", frameID))
	log := s.log.WithFields(logrus.Fields{"frame": frameID, "text": text})
	defer func() {
		if r := recover(); r != nil {
			ev, err = nil, s.internalError(log, r)
		}
		if err != nil {
			span.SetAttributes(telemetry.Location(errorLocation(err))...)
			span.SetAttributes(telemetry.Bool("eescope.internal", errors.Is(err, ErrInternal)))
		}
		span.RecordError(err)
	}()

	frame, err := s.program.Frame(frameID)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(telemetry.Function(frame.Name()))
	stmt, err := parser.ParseStatement(SourceName, text)
	if err != nil {
		log.WithError(err).Debug("parse failed")
		return nil, err
	}
	bound, err := binder.Bind(s.program.Compilation, s.chain(stmt, frame), stmt)
	if err != nil {
		log.WithError(err).Debug("bind failed")
		return nil, err
	}
	res, err := eval.Evaluate(frame, bound)
	if err != nil {
		log.WithError(err).Debug("evaluation failed")
		return nil, err
	}
	if len(res.Declared) > 0 {
		s.mu.Lock()
		for _, d := range res.Declared {
			s.aliases.set(alias.Descriptor{
				Name:    d.Local.Name(),
				Kind:    alias.Variable,
				Type:    d.Local.Type().SerializedName(),
				Payload: d.Value,
			})
		}
		s.mu.Unlock()
	}
	span.SetAttributes(telemetry.Bool("eescope.declaration", len(res.Declared) > 0))
	log.WithField("value", res.Value.String()).Debug("evaluated")
	return &Evaluation{Frame: frame, Statement: bound, Result: res}, nil
}

func (s *Session) internalError(log *logrus.Entry, r interface{}) error {
	log.WithField("panic", r).WithField("stack", string(debug.Stack())).Error("request aborted")
	if err, ok := r.(error); ok {
		return fmt.Errorf("%w: %w", ErrInternal, err)
	}
	return fmt.Errorf("%w: %v", ErrInternal, r)
}

// chain returns the scopes binding stmt in frame: the aliases and declared
// locals of the request, then the method, then the imported namespaces.
func (s *Session) chain(stmt syntax.Statement, frame *snapshot.Frame) *binder.Chain {
	aliases := s.Aliases()
	scope := binder.NewPlaceholderScope(stmt, aliases, frame.Method, s.program.Decoder, s.program.Compilation)
	return binder.NewChain(scope, binder.NewMethodScope(frame.Method), s.namespaces)
}

// Lookup resolves name in the frame with id frameID as the binder would
// resolve it in a request declaring no locals.
func (s *Session) Lookup(ctx context.Context, frameID int, req binder.LookupRequest) (result *binder.LookupResult, err error) {
	_, span := s.tracer.Start(ctx, "eescope.Lookup")
	defer span.End()
	span.SetAttributes(telemetry.String("eescope.name", req.Name), telemetry.String("eescope.options", req.Options.String()))
	log := s.log.WithFields(logrus.Fields{"frame": frameID, "lookup": req.String()})
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, s.internalError(log, r)
		}
		span.RecordError(err)
	}()
	frame, err := s.program.Frame(frameID)
	if err != nil {
		return nil, err
	}
	result = s.chain(nil, frame).Lookup(req)
	log.WithField("result", result.String()).Debug("lookup")
	return result, nil
}

// Completions lists the names visible in the frame with id frameID.  Alias
// scopes cannot enumerate their names so the error wraps
// binder.ErrLookupSymbolsNotSupported.
func (s *Session) Completions(ctx context.Context, frameID int, options binder.LookupOptions) (*binder.LookupSymbolsInfo, error) {
	_, span := s.tracer.Start(ctx, "eescope.Completions")
	defer span.End()
	frame, err := s.program.Frame(frameID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	info, err := s.chain(nil, frame).LookupSymbolsInfo(options)
	if err != nil {
		span.RecordError(err)
		s.log.WithError(err).WithField("frame", frameID).Debug("completions unavailable")
		return nil, err
	}
	return info, nil
}

// RecordReturnValue adds a return value alias and returns its name.  The
// first value is $ReturnValue, later values are $ReturnValue2,
// $ReturnValue3 and so on.  Numbering continues after the highest index
// already assigned and never reuses the name of an existing alias.  A nil
// typ records value as an object.
func (s *Session) RecordReturnValue(typ *symbols.TypeSymbol, value eval.Value) string {
	if typ == nil {
		typ = s.program.Compilation.ObjectType()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var name string
	for name == "" {
		s.returnValues++
		name = symbols.ReturnValuePrefix
		if s.returnValues > 1 {
			name = fmt.Sprintf("%s%d", symbols.ReturnValuePrefix, s.returnValues)
		}
		if s.aliases.index(name) >= 0 {
			name = ""
		}
	}
	s.aliases.set(alias.Descriptor{
		Name:    name,
		Kind:    alias.ReturnValue,
		Type:    typ.SerializedName(),
		Payload: value,
	})
	return name
}

// SetException sets the exception being thrown.  A stowed exception is one
// captured by the runtime for later rethrow.
func (s *Session) SetException(address uint64, stowed bool) (string, error) {
	obj, err := s.program.ObjectAt(address)
	if err != nil {
		return "", err
	}
	exc := s.program.Compilation.ExceptionType()
	if !exc.IsAssignableFrom(obj.Type) {
		return "", fmt.Errorf("object at 0x%x is %v, not an exception", address, obj.Type.FullName())
	}
	d := alias.Descriptor{
		Name:    "$exception",
		Kind:    alias.Exception,
		Type:    obj.Type.SerializedName(),
		Payload: address,
	}
	if stowed {
		d.Name, d.Kind = "$stowedexception", alias.StowedException
	}
	s.mu.Lock()
	s.aliases.set(d)
	s.mu.Unlock()
	return d.Name, nil
}

// ClearException removes the exception aliases.
func (s *Session) ClearException() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aliases.remove("$exception")
	s.aliases.remove("$stowedexception")
}

// MakeObjectID assigns an object id alias ($1, $2, ...) to the object at
// address.  An object keeps its first id.
func (s *Session) MakeObjectID(address uint64) (string, error) {
	obj, err := s.program.ObjectAt(address)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if name, ok := s.objectIDs[address]; ok {
		return name, nil
	}
	var name string
	for n := len(s.objectIDs) + 1; name == ""; n++ {
		if s.aliases.index(fmt.Sprintf("$%d", n)) < 0 {
			name = fmt.Sprintf("$%d", n)
		}
	}
	s.objectIDs[address] = name
	s.aliases.set(alias.Descriptor{
		Name:     name,
		FullName: obj.String(),
		Kind:     alias.ObjectID,
		Type:     obj.Type.SerializedName(),
		Payload:  address,
	})
	return name, nil
}

// returnValueNumber returns the position of a return value alias in the
// sequence $ReturnValue, $ReturnValue2, ...  It is 0 for other names.
func returnValueNumber(name string) int {
	n, ok := symbols.ParseReturnValueIndex(name)
	switch {
	case !ok:
		return 0
	case n == 0:
		return 1
	}
	return n
}

// Placeholders returns the aliases as they are seen by requests in the frame
// with id frameID.  Return values are listed by index, in the positions the
// return values occupy; other aliases keep their assignment order.
func (s *Session) Placeholders(frameID int) ([]*symbols.PlaceholderLocal, error) {
	frame, err := s.program.Frame(frameID)
	if err != nil {
		return nil, err
	}
	scope := binder.NewPlaceholderScope(nil, s.Aliases(), frame.Method, s.program.Decoder, s.program.Compilation)
	ps := append([]*symbols.PlaceholderLocal(nil), scope.Placeholders()...)
	var slots []int
	var rvs []*symbols.PlaceholderLocal
	for i, p := range ps {
		if p.PlaceholderKind() == symbols.PlaceholderReturnValue {
			slots = append(slots, i)
			rvs = append(rvs, p)
		}
	}
	sort.SliceStable(rvs, func(i, j int) bool {
		return rvs[i].ReturnValueIndex() < rvs[j].ReturnValueIndex()
	})
	for i, slot := range slots {
		ps[slot] = rvs[i]
	}
	return ps, nil
}

// aliasStore keeps aliases in assignment order.  Setting an existing name
// replaces the alias in place.
type aliasStore struct {
	list []alias.Descriptor
}

func (st *aliasStore) index(name string) int {
	for i := range st.list {
		if st.list[i].Name == name {
			return i
		}
	}
	return -1
}

func (st *aliasStore) set(d alias.Descriptor) {
	if i := st.index(d.Name); i >= 0 {
		st.list[i] = d
		return
	}
	st.list = append(st.list, d)
}

func (st *aliasStore) remove(name string) {
	if i := st.index(name); i >= 0 {
		st.list = append(st.list[:i], st.list[i+1:]...)
	}
}

func (st *aliasStore) all() []alias.Descriptor {
	return append([]alias.Descriptor(nil), st.list...)
}
