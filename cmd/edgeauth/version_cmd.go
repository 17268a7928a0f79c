package main

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

func (r *CommandRegistry) versionCommand(args []string) error {
	fs := r.commands["version"].NewFlagSet()
	verbose := fs.Bool("verbose", false, "show the Go runtime and module dependencies")

	if err := fs.Parse(args); err != nil {
		return err
	}

	v := r.version
	fmt.Fprintf(r.stdout, "edgeauth %s (commit: %s, built: %s)\n", v.Version, v.Commit, v.Date)
	if !*verbose {
		return nil
	}

	fmt.Fprintf(r.stdout, "\nRuntime: %s %s/%s\n\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)

	info, ok := debug.ReadBuildInfo()
	if !ok {
		fmt.Fprintln(r.stdout, "Build information unavailable")
		return nil
	}

	table := NewTableWriter([]string{"Module", "Version"})
	for _, dep := range info.Deps {
		version := dep.Version
		if dep.Replace != nil {
			version = strings.Join([]string{version, dep.Replace.Version}, " => ")
		}
		table.AddRow([]string{dep.Path, version})
	}
	table.Print(r.stdout)
	return nil
}
