// Package purchaseapi reads the marketplace purchase record of a module
// from the edge gateway.
//
// The gateway serves
//
//	GET https://{gateway}/devices/{deviceId}/modules/{moduleId}/purchase
//
// behind TLS whose chain ends in the workload API's trust bundle, and expects
// a SAS token in the Authorization header.
//
// Usage:
//
//	bundle, _ := workloadapi.ParseTrustBundle("edge.local", pem)
//	client, err := purchaseapi.NewClient(gateway, token, bundle, nil)
//	info, err := client.GetPurchase(ctx, deviceID, moduleID)
//	if info.PurchaseStatus == purchaseapi.PurchaseComplete { ... }
package purchaseapi
