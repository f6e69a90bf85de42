// Copyright © 2018 The ELPS authors

package dapserver

import (
	"errors"

	"github.com/google/go-dap"
	"github.com/luthersystems/eescope/binder"
	"github.com/luthersystems/eescope/debugger/snapshot"
	"github.com/luthersystems/eescope/eval"
	"github.com/luthersystems/eescope/symbols"
)

// mainThreadID is the only thread of a snapshot.
const mainThreadID = 1

// translateStackFrames converts snapshot frames to DAP stack frames, most
// recent first, with 1-based ids.
func translateStackFrames(frames []*snapshot.Frame) []dap.StackFrame {
	out := make([]dap.StackFrame, len(frames))
	for i, f := range frames {
		sf := dap.StackFrame{
			Id:   f.ID + 1,
			Name: f.Name(),
		}
		if f.Source != nil {
			sf.Source = &dap.Source{
				Name: f.Source.File,
				Path: f.Source.File,
			}
			sf.Line = f.Source.Line
			sf.Column = f.Source.Col
		}
		out[i] = sf
	}
	return out
}

// translateFrameVariables lists the parameters then the locals of a frame.
func translateFrameVariables(frame *snapshot.Frame, objectRef func(eval.Value) int) []dap.Variable {
	var vars []dap.Variable
	for _, p := range frame.Method.Parameters() {
		v, err := frame.ParameterValue(p)
		vars = append(vars, variable(p.Name(), p.Type().String(), v, err, objectRef))
	}
	for _, l := range frame.Method.Locals() {
		v, err := frame.LocalValue(l)
		vars = append(vars, variable(l.Name(), l.Type().String(), v, err, objectRef))
	}
	return vars
}

// translateAliases lists the aliases of a frame.
func translateAliases(aliases []*symbols.PlaceholderLocal, p *snapshot.Program, objectRef func(eval.Value) int) []dap.Variable {
	vars := make([]dap.Variable, len(aliases))
	for i, a := range aliases {
		v, err := eval.FromPayload(a.Type(), a.Payload(), p)
		vars[i] = variable(a.Name(), a.Type().String(), v, err, objectRef)
		if err == nil {
			vars[i].EvaluateName = a.FullName()
		}
	}
	return vars
}

// translateFields lists the fields of an object.
func translateFields(obj *eval.Object, objectRef func(eval.Value) int) []dap.Variable {
	vars := make([]dap.Variable, len(obj.Fields))
	for i, f := range obj.Fields {
		vars[i] = variable(f.Name, typeName(f.Value), f.Value, nil, objectRef)
		// Fields cannot be named in expressions.
		vars[i].EvaluateName = ""
	}
	return vars
}

func variable(name string, typ string, v eval.Value, err error, objectRef func(eval.Value) int) dap.Variable {
	if err != nil {
		return dap.Variable{
			Name:  name,
			Type:  typ,
			Value: "<" + formatError(err) + ">",
		}
	}
	if obj := v.Object(); obj != nil {
		typ = obj.Type.String()
	}
	return dap.Variable{
		Name:               name,
		Type:               typ,
		Value:              v.String(),
		EvaluateName:       name,
		VariablesReference: objectRef(v),
		NamedVariables:     len(fieldsOf(v)),
	}
}

func fieldsOf(v eval.Value) []eval.Field {
	if obj := v.Object(); obj != nil {
		return obj.Fields
	}
	return nil
}

// typeName returns the display name of the runtime type of v.
func typeName(v eval.Value) string {
	if v.Type == nil {
		return "null"
	}
	return v.Type.String()
}

// formatError returns the message shown for a failed request.  Binding
// errors show their codes.
func formatError(err error) string {
	var diags binder.Diagnostics
	if errors.As(err, &diags) && len(diags) > 0 {
		d := diags[0]
		return "error " + d.Code + ": " + d.Message
	}
	var rterr *eval.RuntimeError
	if errors.As(err, &rterr) {
		return rterr.Err.Error()
	}
	return err.Error()
}
