package purchaseapi

import "time"

// PurchaseStatus is the marketplace state of a module offer.
type PurchaseStatus string

// Known purchase states.
const (
	PurchaseNotFound PurchaseStatus = "NotFound"
	PurchaseComplete PurchaseStatus = "Complete"
)

// PurchaseInfo is the purchase record of one module.
type PurchaseInfo struct {
	PurchaseStatus     PurchaseStatus `json:"purchaseStatus"`
	PublisherID        string         `json:"publisherId"`
	OfferID            string         `json:"offerId"`
	PlanID             string         `json:"planId"`
	SynchedDateTimeUTC time.Time      `json:"synchedDateTimeUtc"`
}

// Purchased reports whether the purchase is complete.
func (p *PurchaseInfo) Purchased() bool {
	return p != nil && p.PurchaseStatus == PurchaseComplete
}
