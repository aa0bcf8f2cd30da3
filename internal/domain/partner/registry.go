package partner

import "context"

// CompanyRecord holds company data looked up in the public business registry
type CompanyRecord struct {
	ICO        string
	DIC        string
	Name       string
	Street     string
	City       string
	PostalCode string
	IsVATPayer bool
}

// CompanyRegistry looks up company data by identifier, used to prefill new
// clients from the ARES public registry
type CompanyRegistry interface {
	// LookupByICO fetches the registry record for the given company
	// identifier. Returns shared.ErrNotFound when no company exists.
	LookupByICO(ctx context.Context, ico string) (*CompanyRecord, error)
}
