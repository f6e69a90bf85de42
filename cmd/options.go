// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"
	"io"

	"github.com/luthersystems/eescope/alias"
	"github.com/luthersystems/eescope/debugger"
	"github.com/luthersystems/eescope/debugger/snapshot"
	"github.com/luthersystems/eescope/telemetry"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// newLogger returns the logger configured by log-level and log-format.
func newLogger(w io.Writer) (*logrus.Entry, error) {
	level, err := logrus.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return nil, err
	}
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(level)
	switch format := viper.GetString("log-format"); format {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	return logrus.NewEntry(logger), nil
}

// openSession loads the configured snapshot and returns a session for it.
func openSession(stderr io.Writer) (*debugger.Session, *logrus.Entry, error) {
	path := viper.GetString("snapshot")
	if path == "" {
		return nil, nil, fmt.Errorf("no snapshot: use --snapshot or set EESCOPE_SNAPSHOT")
	}
	log, err := newLogger(stderr)
	if err != nil {
		return nil, nil, err
	}
	backend, err := telemetry.ParseBackend(viper.GetString("tracing"))
	if err != nil {
		return nil, nil, err
	}
	tracer, err := telemetry.New(backend)
	if err != nil {
		return nil, nil, err
	}
	program, err := snapshot.Open(path)
	if err != nil {
		return nil, nil, err
	}
	log = log.WithField("snapshot", path)
	opts := []debugger.Option{
		debugger.WithLogger(log),
		debugger.WithTracer(tracer),
	}
	if path := viper.GetString("aliases"); path != "" {
		aliases, err := alias.LoadFile(path)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, debugger.WithAliases(aliases...))
	}
	if usings := viper.GetStringSlice("usings"); len(usings) > 0 {
		opts = append(opts, debugger.WithUsings(usings...))
	}
	session, err := debugger.NewSession(program, opts...)
	if err != nil {
		return nil, nil, err
	}
	log.WithField("frames", len(program.Frames())).Debug("snapshot loaded")
	return session, log, nil
}
