package middleware

import (
	"net/http"
	"strings"

	"github.com/paintquotepro/quote-platform/internal/tenancy"
)

// CompanyIDHeader carries the tenant identity on widget-facing endpoints.
const CompanyIDHeader = "X-Company-Id"

// RequireCompanyID extracts the company id from the request header and puts
// it on the context. Requests without one are rejected; every chat and quote
// operation is tenant-scoped.
func RequireCompanyID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		companyID := strings.TrimSpace(r.Header.Get(CompanyIDHeader))
		if companyID == "" {
			// WebSocket upgrades cannot set headers from the browser.
			companyID = strings.TrimSpace(r.URL.Query().Get("company"))
		}
		if companyID == "" {
			http.Error(w, "missing "+CompanyIDHeader+" header", http.StatusBadRequest)
			return
		}
		next.ServeHTTP(w, r.WithContext(tenancy.WithCompanyID(r.Context(), companyID)))
	})
}
