package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/sufield/edgeauth/internal/app"
	"github.com/sufield/edgeauth/internal/config"
)

// commonFlags are accepted by every command that talks to the daemon.
type commonFlags struct {
	configPath string
	logJSON    bool
	logDebug   bool
	logUID     bool
}

func addCommonFlags(fs *pflag.FlagSet) *commonFlags {
	f := &commonFlags{}
	fs.StringVarP(&f.configPath, "config", "c", "", "YAML config file (IOTEDGE_* variables override it)")
	fs.BoolVar(&f.logJSON, "log-json", false, "log in JSON format")
	fs.BoolVar(&f.logDebug, "log-debug", false, "log debug messages")
	fs.BoolVar(&f.logUID, "log-uid", false, "generate a uuid and add to all log messages")
	return f
}

// logger builds the slog logger for one invocation. Logs go to w, never to
// stdout, so command output stays machine readable.
func (f *commonFlags) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if f.logDebug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler = slog.NewTextHandler(w, opts)
	if f.logJSON {
		handler = slog.NewJSONHandler(w, opts)
	}

	logger := slog.New(handler).With("service", "edgeauth")
	if f.logUID {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

// settings loads and validates the configuration named by the flags.
func (f *commonFlags) settings() (config.Settings, error) {
	cfg, err := config.LoadWithEnv(f.configPath)
	if err != nil {
		return config.Settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	s, err := config.Validate(cfg)
	if err != nil {
		return config.Settings{}, err
	}
	return s, nil
}

// application loads settings and wires an Application logging to w.
func (f *commonFlags) application(w io.Writer) (*app.Application, error) {
	s, err := f.settings()
	if err != nil {
		return nil, err
	}
	return app.New(s, app.WithLogger(f.logger(w)))
}
