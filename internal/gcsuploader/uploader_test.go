package gcsuploader

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"google.golang.org/api/googleapi"

	"github.com/dvloznov/payment-tracker/internal/attachments"
)

func TestResolveAndParseURI(t *testing.T) {
	m := NewManagerWithClient(nil, "payments-bucket", "uploads/", zerolog.Nop())

	uri := m.Resolve("receipt-1700000000000-scan.pdf")
	if uri != "gs://payments-bucket/uploads/receipt-1700000000000-scan.pdf" {
		t.Fatalf("Resolve = %s", uri)
	}

	bucket, object, err := ParseURI(uri)
	if err != nil {
		t.Fatalf("ParseURI: %v", err)
	}
	if bucket != "payments-bucket" || object != "uploads/receipt-1700000000000-scan.pdf" {
		t.Errorf("ParseURI = (%s, %s)", bucket, object)
	}
	if got := StoredNameFromURI(uri); got != "receipt-1700000000000-scan.pdf" {
		t.Errorf("StoredNameFromURI = %s", got)
	}
}

func TestParseURI_Invalid(t *testing.T) {
	for _, uri := range []string{"", "s3://bucket/key", "gs://bucket", "gs://bucket/", "gs:///key"} {
		if _, _, err := ParseURI(uri); err == nil {
			t.Errorf("ParseURI(%q) expected error", uri)
		}
	}
	if got := StoredNameFromURI("not a uri"); got != "" {
		t.Errorf("StoredNameFromURI = %q, want empty", got)
	}
}

func TestIsPreconditionFailed(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"412", &googleapi.Error{Code: http.StatusPreconditionFailed}, true},
		{"wrapped 412", fmt.Errorf("finalize upload: %w", &googleapi.Error{Code: http.StatusPreconditionFailed}), true},
		{"403", &googleapi.Error{Code: http.StatusForbidden}, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isPreconditionFailed(tt.err); got != tt.want {
				t.Errorf("isPreconditionFailed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInvalidNamesNeverReachTheBucket(t *testing.T) {
	// A nil client would panic if either call reached GCS.
	m := NewManagerWithClient(nil, "b", "", zerolog.Nop())

	if m.Delete(context.Background(), "../escape") {
		t.Error("Delete should refuse invalid names")
	}
	if _, err := m.Open(context.Background(), "a/b"); !errors.Is(err, attachments.ErrNotExist) {
		t.Errorf("Open error = %v, want ErrNotExist", err)
	}
}

func TestStoredNameAcceptsOwnURIs(t *testing.T) {
	m := NewManagerWithClient(nil, "payments-bucket", "uploads/", zerolog.Nop())

	tests := []struct {
		ref  string
		want string
	}{
		{"receipt-1-scan.pdf", "receipt-1-scan.pdf"},
		{m.Resolve("receipt-1-scan.pdf"), "receipt-1-scan.pdf"},
		{"gs://other-bucket/uploads/receipt-1-scan.pdf", ""},
		{"gs://payments-bucket/elsewhere/receipt-1-scan.pdf", ""},
		{"gs://payments-bucket/uploads/nested/receipt-1-scan.pdf", ""},
		{"gs://payments-bucket", ""},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			if got := m.storedName(tt.ref); got != tt.want {
				t.Errorf("storedName(%q) = %q, want %q", tt.ref, got, tt.want)
			}
		})
	}
}

func TestForeignURIsNeverReachTheBucket(t *testing.T) {
	// A nil client would panic if either call reached GCS.
	m := NewManagerWithClient(nil, "payments-bucket", "uploads/", zerolog.Nop())
	foreign := "gs://other-bucket/uploads/receipt-1-scan.pdf"

	if m.Delete(context.Background(), foreign) {
		t.Error("Delete should refuse URIs outside the bucket")
	}
	if _, err := m.Open(context.Background(), foreign); !errors.Is(err, attachments.ErrNotExist) {
		t.Errorf("Open error = %v, want ErrNotExist", err)
	}
}
