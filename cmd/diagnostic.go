// Copyright © 2024 The ELPS authors

package cmd

import (
	"io"

	"github.com/luthersystems/eescope/debugger"
	"github.com/luthersystems/eescope/diagnostic"
	"github.com/spf13/viper"
)

func colorMode() diagnostic.ColorMode {
	switch viper.GetString("color") {
	case "always":
		return diagnostic.ColorAlways
	case "never":
		return diagnostic.ColorNever
	default:
		return diagnostic.ColorAuto
	}
}

// newRenderer returns a renderer reading the source of spans in text.
func newRenderer(text string) *diagnostic.Renderer {
	return &diagnostic.Renderer{
		Color:        colorMode(),
		SourceReader: diagnostic.TextSource(map[string]string{debugger.SourceName: text}),
	}
}

// renderRequestError renders the error of evaluating text.
func renderRequestError(w io.Writer, text string, err error) {
	_ = newRenderer(text).RenderAll(w, debugger.Diagnostics(err))
}
