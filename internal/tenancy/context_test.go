package tenancy

import (
	"context"
	"testing"
)

func TestCompanyIDRoundTrip(t *testing.T) {
	ctx := WithCompanyID(context.Background(), "acme-painting")
	got, ok := CompanyIDFromContext(ctx)
	if !ok || got != "acme-painting" {
		t.Fatalf("expected acme-painting, got %q ok=%v", got, ok)
	}
}

func TestCompanyIDMissing(t *testing.T) {
	if _, ok := CompanyIDFromContext(context.Background()); ok {
		t.Fatal("expected missing company id")
	}
}

func TestCompanyIDEmpty(t *testing.T) {
	ctx := WithCompanyID(context.Background(), "")
	if _, ok := CompanyIDFromContext(ctx); ok {
		t.Fatal("expected empty company id to be treated as missing")
	}
}
