package main

import (
	"fmt"
	"os"
)

// Version information (set via ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	versionInfo := VersionInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	registry := NewCommandRegistry(versionInfo, os.Stdout, os.Stderr)
	registerCommands(registry)

	if err := registry.Execute(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func registerCommands(r *CommandRegistry) {
	r.Register(&Command{
		Name:        "token",
		Description: "Issue a SAS token for this module",
		Usage:       "edgeauth token [flags]",
		Examples: []string{
			"edgeauth token",
			"edgeauth token --ttl 1h",
			"edgeauth token --config edgeauth.yaml --json",
		},
		Run: r.tokenCommand,
	})

	r.Register(&Command{
		Name:        "sign",
		Description: "Sign data with the module key",
		Usage:       "edgeauth sign <data> [flags]",
		Examples: []string{
			"edgeauth sign hello",
			"edgeauth sign hello --key-id secondary",
		},
		Run: r.signCommand,
	})

	r.Register(&Command{
		Name:        "trust-bundle",
		Description: "Print the workload API trust bundle",
		Usage:       "edgeauth trust-bundle [flags]",
		Examples: []string{
			"edgeauth trust-bundle > ca.pem",
			"edgeauth trust-bundle --summary",
		},
		Run: r.trustBundleCommand,
	})

	r.Register(&Command{
		Name:        "purchase",
		Description: "Query the gateway for this module's purchase",
		Usage:       "edgeauth purchase [flags]",
		Examples: []string{
			"edgeauth purchase",
			"edgeauth purchase --gateway-url https://gateway:443",
		},
		Run: r.purchaseCommand,
	})

	r.Register(&Command{
		Name:        "validate",
		Description: "Validate edgeauth configuration files",
		Usage:       "edgeauth validate [config-file] [flags]",
		Examples: []string{
			"edgeauth validate edgeauth.yaml",
			"edgeauth validate --env",
		},
		Run: r.validateCommand,
	})

	r.Register(&Command{
		Name:        "version",
		Description: "Show version information",
		Usage:       "edgeauth version [flags]",
		Examples: []string{
			"edgeauth version",
			"edgeauth version --verbose",
		},
		Run: r.versionCommand,
	})

	r.Register(&Command{
		Name:        "help",
		Description: "Show help information",
		Usage:       "edgeauth help [command]",
		Examples: []string{
			"edgeauth help",
			"edgeauth help token",
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return r.PrintCommandHelp(args[0])
			}
			r.PrintHelp(r.stdout)
			return nil
		},
	})
}
