package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sufield/edgeauth/internal/adapters/outbound/purchaseapi"
)

func (r *CommandRegistry) purchaseCommand(args []string) error {
	fs := r.commands["purchase"].NewFlagSet()
	common := addCommonFlags(fs)
	gatewayURL := fs.String("gateway-url", "", "purchase API base URL (default https://<gateway_hostname>)")
	asJSON := fs.Bool("json", false, "print the purchase as JSON")

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

	id, err := a.Identity(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch module identity: %w", err)
	}
	client, err := a.PurchaseClient(id, &purchaseapi.ClientOpts{BaseURL: *gatewayURL})
	if err != nil {
		return err
	}

	module := a.Settings.Module
	info, err := client.GetPurchase(ctx, module.DeviceID(), module.ModuleID())
	if err != nil {
		return fmt.Errorf("failed to query purchase: %w", err)
	}

	if *asJSON {
		enc := json.NewEncoder(r.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	status := "✗ not purchased"
	if info.Purchased() {
		status = "✓ purchased"
	}
	fmt.Fprintf(r.stdout, "%s/%s: %s\n\n", module.DeviceID(), module.ModuleID(), status)

	table := NewTableWriter([]string{"Field", "Value"})
	table.AddRow([]string{"Status", string(info.PurchaseStatus)})
	table.AddRow([]string{"Publisher", info.PublisherID})
	table.AddRow([]string{"Offer", info.OfferID})
	table.AddRow([]string{"Plan", info.PlanID})
	if !info.SynchedDateTimeUTC.IsZero() {
		table.AddRow([]string{"Synched", info.SynchedDateTimeUTC.UTC().Format(time.RFC3339)})
	}
	table.Print(r.stdout)
	return nil
}
