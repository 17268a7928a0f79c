package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sufield/edgeauth/internal/adapters/outbound/workloadapi"
)

// commandContext is canceled on SIGINT or SIGTERM.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

type tokenOutput struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

func (r *CommandRegistry) tokenCommand(args []string) error {
	fs := r.commands["token"].NewFlagSet()
	common := addCommonFlags(fs)
	ttl := fs.Duration("ttl", 0, "token lifetime (default from config, 24h)")
	asJSON := fs.Bool("json", false, "print the token and its expiry as JSON")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}
	if *ttl < 0 {
		return fmt.Errorf("--ttl must be positive, got %s", *ttl)
	}

	a, err := common.application(r.stderr)
	if err != nil {
		return err
	}
	if *ttl > 0 {
		a.Settings.TokenTTL = *ttl
	}

	ctx, cancel := commandContext()
	defer cancel()

	token, expiresAt, err := a.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	if *asJSON {
		enc := json.NewEncoder(r.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(tokenOutput{
			Token:     token,
			ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
		})
	}
	fmt.Fprintln(r.stdout, token)
	return nil
}

func (r *CommandRegistry) signCommand(args []string) error {
	fs := r.commands["sign"].NewFlagSet()
	common := addCommonFlags(fs)
	keyID := fs.String("key-id", "", "module key to sign with (default from config)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		r.commands["sign"].PrintUsage()
		return fmt.Errorf("exactly one data argument required")
	}

	a, err := common.application(r.stderr)
	if err != nil {
		return err
	}
	key := a.Settings.KeyID
	if *keyID != "" {
		key = *keyID
	}

	ctx, cancel := commandContext()
	defer cancel()

	signer := workloadapi.NewModuleSigner(a.Client, a.Settings.Module, key, a.Settings.APIVersion)
	digest, err := signer.Sign(ctx, []byte(fs.Arg(0)))
	if err != nil {
		return fmt.Errorf("failed to sign: %w", err)
	}
	fmt.Fprintln(r.stdout, base64.StdEncoding.EncodeToString(digest))
	return nil
}

func (r *CommandRegistry) trustBundleCommand(args []string) error {
	fs := r.commands["trust-bundle"].NewFlagSet()
	common := addCommonFlags(fs)
	summary := fs.Bool("summary", false, "print a table of the trusted certificates instead of PEM")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}

	a, err := common.application(r.stderr)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	pem, err := a.Credentials.TrustBundle(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch trust bundle: %w", err)
	}

	if !*summary {
		fmt.Fprint(r.stdout, pem)
		if !strings.HasSuffix(pem, "\n") {
			fmt.Fprintln(r.stdout)
		}
		return nil
	}

	bundle, err := workloadapi.ParseTrustBundle(a.Settings.TrustDomain.Name(), pem)
	if err != nil {
		return err
	}

	fmt.Fprintf(r.stdout, "Trust domain: %s\n", bundle.TrustDomain())
	table := NewTableWriter([]string{"Subject", "Not After", "CA"})
	for _, cert := range bundle.X509Authorities() {
		isCA := "no"
		if cert.IsCA {
			isCA = "yes"
		}
		table.AddRow([]string{cert.Subject.String(), cert.NotAfter.UTC().Format(time.RFC3339), isCA})
	}
	table.Print(r.stdout)
	return nil
}
