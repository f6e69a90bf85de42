// Copyright © 2018 The ELPS authors

package dapserver

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/go-dap"
	"github.com/luthersystems/eescope/binder"
	"github.com/luthersystems/eescope/debugger"
	"github.com/luthersystems/eescope/debugger/snapshot"
	"github.com/luthersystems/eescope/eval"
)

// refKind is the kind of container a variables reference names.
type refKind int

const (
	refLocals refKind = iota
	refAliases
	refObject
)

// reference is the target of a variables reference.  Scopes are keyed by
// kind and 1-based frame id, objects by address.
type reference struct {
	kind    refKind
	frameID int
	address uint64
}

// handler dispatches incoming DAP messages to the appropriate method.
type handler struct {
	server  *Server
	session *debugger.Session

	mu      sync.Mutex
	refIDs  map[reference]int
	refs    []reference // variables reference n is refs[n-1]
	objects map[uint64]*eval.Object
}

func newHandler(s *Server, session *debugger.Session) *handler {
	return &handler{
		server:  s,
		session: session,
		refIDs:  make(map[reference]int),
		objects: make(map[uint64]*eval.Object),
	}
}

// send sends a DAP message and logs any write error.
func (h *handler) send(msg dap.Message) {
	if err := h.server.send(msg); err != nil {
		h.server.log.WithError(err).Error("dap: send failed")
	}
}

func (h *handler) handle(msg dap.Message) {
	h.server.log.Debugf("dap: received %T", msg)
	switch req := msg.(type) {
	case *dap.InitializeRequest:
		h.onInitialize(req)
	case *dap.LaunchRequest:
		h.onLaunch(req)
	case *dap.AttachRequest:
		h.onAttach(req)
	case *dap.ConfigurationDoneRequest:
		h.onConfigurationDone(req)
	case *dap.ThreadsRequest:
		h.onThreads(req)
	case *dap.StackTraceRequest:
		h.onStackTrace(req)
	case *dap.ScopesRequest:
		h.onScopes(req)
	case *dap.VariablesRequest:
		h.onVariables(req)
	case *dap.EvaluateRequest:
		h.onEvaluate(req)
	case *dap.CompletionsRequest:
		h.onCompletions(req)
	case *dap.DisconnectRequest:
		h.onDisconnect(req)
	case dap.RequestMessage:
		r := req.GetRequest()
		h.sendError(r.Seq, r.Command, fmt.Sprintf("request %q is not supported", r.Command))
	default:
		h.server.log.Warnf("dap: unhandled message type: %T", msg)
	}
}

func (h *handler) onInitialize(req *dap.InitializeRequest) {
	resp := &dap.InitializeResponse{}
	resp.Response = h.newResponse(req.Seq, req.Command)
	resp.Body = dap.Capabilities{
		SupportsConfigurationDoneRequest: true,
		SupportsEvaluateForHovers:        true,
	}
	h.send(resp)

	// Send initialized event to tell the client it can send configuration.
	h.send(&dap.InitializedEvent{
		Event: h.newEvent("initialized"),
	})
}

func (h *handler) onLaunch(req *dap.LaunchRequest) {
	resp := &dap.LaunchResponse{}
	resp.Response = h.newResponse(req.Seq, req.Command)
	h.send(resp)
}

func (h *handler) onAttach(req *dap.AttachRequest) {
	resp := &dap.AttachResponse{}
	resp.Response = h.newResponse(req.Seq, req.Command)
	h.send(resp)
}

// onConfigurationDone reports the program as stopped.  A snapshot is
// always paused.
func (h *handler) onConfigurationDone(req *dap.ConfigurationDoneRequest) {
	resp := &dap.ConfigurationDoneResponse{}
	resp.Response = h.newResponse(req.Seq, req.Command)
	h.send(resp)

	reason := "pause"
	if h.hasException() {
		reason = "exception"
	}
	evt := &dap.StoppedEvent{
		Event: h.newEvent("stopped"),
	}
	evt.Body.Reason = reason
	evt.Body.ThreadId = mainThreadID
	evt.Body.AllThreadsStopped = true
	h.send(evt)
}

func (h *handler) hasException() bool {
	for _, a := range h.session.Aliases() {
		if a.Name == "$exception" {
			return true
		}
	}
	return false
}

func (h *handler) onThreads(req *dap.ThreadsRequest) {
	resp := &dap.ThreadsResponse{}
	resp.Response = h.newResponse(req.Seq, req.Command)
	resp.Body.Threads = []dap.Thread{
		{Id: mainThreadID, Name: "Main Thread"},
	}
	h.send(resp)
}

func (h *handler) onStackTrace(req *dap.StackTraceRequest) {
	resp := &dap.StackTraceResponse{}
	resp.Response = h.newResponse(req.Seq, req.Command)

	frames := translateStackFrames(h.session.Program().Frames())
	resp.Body.TotalFrames = len(frames)

	// Apply paging.
	start := req.Arguments.StartFrame
	switch {
	case start < 0:
		start = 0
	case start > len(frames):
		start = len(frames)
	}
	end := len(frames)
	if req.Arguments.Levels > 0 && start+req.Arguments.Levels < end {
		end = start + req.Arguments.Levels
	}
	resp.Body.StackFrames = frames[start:end]
	h.send(resp)
}

func (h *handler) onScopes(req *dap.ScopesRequest) {
	resp := &dap.ScopesResponse{}
	resp.Response = h.newResponse(req.Seq, req.Command)

	frameID := req.Arguments.FrameId
	if _, err := h.frame(frameID); err != nil {
		h.sendError(req.Seq, req.Command, err.Error())
		return
	}
	resp.Body.Scopes = []dap.Scope{
		{
			Name:               "Locals",
			PresentationHint:   "locals",
			VariablesReference: h.allocRef(reference{kind: refLocals, frameID: frameID}),
		},
		{
			Name:               "Aliases",
			VariablesReference: h.allocRef(reference{kind: refAliases, frameID: frameID}),
		},
	}
	h.send(resp)
}

// frame returns the snapshot frame with the 1-based DAP frame id.
func (h *handler) frame(frameID int) (*snapshot.Frame, error) {
	return h.session.Program().Frame(frameID - 1)
}

func (h *handler) onVariables(req *dap.VariablesRequest) {
	resp := &dap.VariablesResponse{}
	resp.Response = h.newResponse(req.Seq, req.Command)

	ref, ok := h.reference(req.Arguments.VariablesReference)
	if !ok {
		h.sendError(req.Seq, req.Command, fmt.Sprintf("unknown variables reference %d", req.Arguments.VariablesReference))
		return
	}
	switch ref.kind {
	case refObject:
		resp.Body.Variables = translateFields(h.object(ref.address), h.objectRef)
	case refAliases:
		ps, err := h.session.Placeholders(ref.frameID - 1)
		if err != nil {
			h.sendError(req.Seq, req.Command, err.Error())
			return
		}
		resp.Body.Variables = translateAliases(ps, h.session.Program(), h.objectRef)
	case refLocals:
		frame, err := h.frame(ref.frameID)
		if err != nil {
			h.sendError(req.Seq, req.Command, err.Error())
			return
		}
		resp.Body.Variables = translateFrameVariables(frame, h.objectRef)
	}
	h.send(resp)
}

// allocRef returns the variables reference of ref, assigning the next free
// one the first time ref is seen.
func (h *handler) allocRef(ref reference) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if id, ok := h.refIDs[ref]; ok {
		return id
	}
	h.refs = append(h.refs, ref)
	h.refIDs[ref] = len(h.refs)
	return len(h.refs)
}

func (h *handler) reference(id int) (reference, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if id <= 0 || id > len(h.refs) {
		return reference{}, false
	}
	return h.refs[id-1], true
}

// objectRef returns the variables reference of an object with fields, or 0.
func (h *handler) objectRef(v eval.Value) int {
	obj := v.Object()
	if obj == nil || len(obj.Fields) == 0 {
		return 0
	}
	h.mu.Lock()
	h.objects[obj.Address] = obj
	h.mu.Unlock()
	return h.allocRef(reference{kind: refObject, address: obj.Address})
}

func (h *handler) object(address uint64) *eval.Object {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.objects[address]
}

func (h *handler) onEvaluate(req *dap.EvaluateRequest) {
	resp := &dap.EvaluateResponse{}
	resp.Response = h.newResponse(req.Seq, req.Command)

	frameID := req.Arguments.FrameId
	if frameID <= 0 {
		frameID = 1
	}
	ev, err := h.session.Evaluate(context.Background(), frameID-1, req.Arguments.Expression)
	if err != nil {
		resp.Success = false
		resp.Message = formatError(err)
		h.send(resp)
		return
	}
	resp.Body.Result = ev.Value.String()
	resp.Body.Type = typeName(ev.Value)
	resp.Body.VariablesReference = h.objectRef(ev.Value)
	h.send(resp)
}

func (h *handler) onCompletions(req *dap.CompletionsRequest) {
	frameID := req.Arguments.FrameId
	if frameID <= 0 {
		frameID = 1
	}
	_, err := h.session.Completions(context.Background(), frameID-1, binder.LookupDefault)
	if err == nil {
		// Every session scope chain starts with an alias scope.
		err = binder.ErrLookupSymbolsNotSupported
	}
	h.sendError(req.Seq, req.Command, err.Error())
}

func (h *handler) onDisconnect(req *dap.DisconnectRequest) {
	resp := &dap.DisconnectResponse{}
	resp.Response = h.newResponse(req.Seq, req.Command)
	h.send(resp)

	h.send(&dap.TerminatedEvent{
		Event: h.newEvent("terminated"),
	})
	h.server.close()
}

// --- helpers ---

func (h *handler) sendError(reqSeq int, command string, message string) {
	resp := &dap.ErrorResponse{}
	resp.Response = h.newResponse(reqSeq, command)
	resp.Success = false
	resp.Message = message
	h.send(resp)
}

func (h *handler) newResponse(reqSeq int, command string) dap.Response {
	return dap.Response{
		ProtocolMessage: dap.ProtocolMessage{Seq: h.server.nextSeq(), Type: "response"},
		RequestSeq:      reqSeq,
		Success:         true,
		Command:         command,
	}
}

func (h *handler) newEvent(event string) dap.Event {
	return dap.Event{
		ProtocolMessage: dap.ProtocolMessage{Seq: h.server.nextSeq(), Type: "event"},
		Event:           event,
	}
}
