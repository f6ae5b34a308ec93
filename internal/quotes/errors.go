package quotes

import "errors"

var (
	// ErrQuoteNotFound is returned when a quote id does not exist for the company.
	ErrQuoteNotFound = errors.New("quotes: quote not found")
	// ErrMissingCompanyID is returned when a request lacks tenant scoping.
	ErrMissingCompanyID = errors.New("quotes: company_id is required")
	// ErrMissingCustomer is returned when a request has no customer name.
	ErrMissingCustomer = errors.New("quotes: customer name is required")
	// ErrNoScope is returned when a request describes nothing to paint.
	ErrNoScope = errors.New("quotes: quote has no paintable scope")
)
