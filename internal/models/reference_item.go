package models

// ReferenceItem is a known listing as exposed by the unified auctions view.
// It is owned by the scrapers that create listings and is only read here.
type ReferenceItem struct {
	Link       string
	Category   string
	Source     string
	ExternalID string
	LotNumber  *string
}
