package main

import (
	"fmt"

	"github.com/sufield/edgeauth/internal/config"
)

func (r *CommandRegistry) validateCommand(args []string) error {
	fs := r.commands["validate"].NewFlagSet()
	withEnv := fs.Bool("env", false, "apply IOTEDGE_* and EDGEAUTH_* environment variables")

	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		cfg    config.FileConfig
		source string
		err    error
	)
	switch {
	case fs.NArg() > 1:
		return fmt.Errorf("at most one config file expected")
	case fs.NArg() == 1 && *withEnv:
		source = fs.Arg(0) + " + environment"
		cfg, err = config.LoadWithEnv(fs.Arg(0))
	case fs.NArg() == 1:
		source = fs.Arg(0)
		cfg, err = config.Load(fs.Arg(0))
	case *withEnv:
		source = "environment"
		cfg, err = config.LoadFromEnv()
	default:
		r.commands["validate"].PrintUsage()
		return fmt.Errorf("config file path or --env required")
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	s, err := config.Validate(cfg)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	w := r.stdout
	fmt.Fprintf(w, "✓ Valid configuration: %s\n", source)
	fmt.Fprintln(w, "\nModule:")
	fmt.Fprintf(w, "  IoT hub:     %s\n", s.Module.HubHostName())
	fmt.Fprintf(w, "  Device:      %s\n", s.Module.DeviceID())
	fmt.Fprintf(w, "  Module:      %s\n", s.Module.ModuleID())
	fmt.Fprintf(w, "  Generation:  %s\n", s.Module.GenerationID())
	if s.GatewayHostName != "" {
		fmt.Fprintf(w, "  Gateway:     %s\n", s.GatewayHostName)
	} else {
		fmt.Fprintln(w, "  Gateway:     ⚠ not set (purchase queries need --gateway-url)")
	}

	fmt.Fprintln(w, "\nWorkload API:")
	fmt.Fprintf(w, "  Endpoint:    %s\n", s.Endpoint)
	fmt.Fprintf(w, "  API version: %s\n", s.APIVersion)
	fmt.Fprintf(w, "  Key:         %s\n", s.KeyID)
	fmt.Fprintf(w, "  Timeout:     %s\n", s.Timeout)

	fmt.Fprintln(w, "\nToken:")
	fmt.Fprintf(w, "  Audience:    %s\n", s.Module.Audience())
	fmt.Fprintf(w, "  TTL:         %s\n", s.TokenTTL)
	fmt.Fprintf(w, "  Trust domain: %s\n", s.TrustDomain)
	return nil
}
