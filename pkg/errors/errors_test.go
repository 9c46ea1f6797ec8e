package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
		expose    bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true, expose: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required", expose: true},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found", expose: true},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected", expose: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error"},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
		if meta.ExposeMessage != tt.expose {
			t.Fatalf("code %s expected expose message %v got %v", tt.code, tt.expose, meta.ExposeMessage)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeDependency, cause, "load quote")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeDependency {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
	outer := fmt.Errorf("handler: %w", wrapped)
	if !IsCode(outer, CodeDependency) {
		t.Fatalf("expected IsCode to find dependency code through fmt wrap")
	}
	if IsCode(outer, CodeNotFound) {
		t.Fatalf("IsCode matched wrong code")
	}
}

func TestInvalidCarriesViolations(t *testing.T) {
	err := Invalid("quote is invalid",
		Violation{Path: []string{"Items", "abc", "Quantity"}, Message: "bad quantity"},
		Violation{Path: []string{"Email"}, Message: "email required"},
	)
	if err.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", err.Code())
	}
	got := ViolationsOf(fmt.Errorf("wrapped: %w", err))
	if len(got) != 2 {
		t.Fatalf("expected 2 violations, got %d", len(got))
	}
	if got[0].Field() != "Items.abc.Quantity" {
		t.Fatalf("unexpected field %q", got[0].Field())
	}
}

func TestViolationsOfIgnoresOtherCodes(t *testing.T) {
	err := New(CodeNotFound, "quote not found").WithDetails([]Violation{{Message: "x"}})
	if ViolationsOf(err) != nil {
		t.Fatalf("expected no violations for not found error")
	}
	if ViolationsOf(nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := New(CodeNotFound, "no entry")
	if got := As(err); got == nil || got.Code() != CodeNotFound {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestDumpCollectsViolationsAndChain(t *testing.T) {
	inner := Invalid("quote update rejected", Violation{Path: []string{"Email"}, Message: "invalid email"})
	dump := Dump(fmt.Errorf("update quote: %w", inner))

	if dump.Code != CodeValidation {
		t.Fatalf("expected validation code, got %s", dump.Code)
	}
	if len(dump.Chain) != 2 {
		t.Fatalf("expected 2 chain entries, got %v", dump.Chain)
	}
	if len(dump.Fields) != 1 || dump.Fields[0] != "Email" {
		t.Fatalf("unexpected fields %v", dump.Fields)
	}
	if dump.Postgres != nil {
		t.Fatalf("expected no postgres details")
	}

	fields := dump.LogFields()
	if _, ok := fields["pg_code"]; ok {
		t.Fatalf("pg fields should be omitted without a postgres error")
	}
	if _, ok := fields["violations"]; !ok {
		t.Fatalf("expected violations field")
	}
}

func TestDumpMarksRetryableDependencyErrors(t *testing.T) {
	dump := Dump(Wrap(CodeDependency, stdErrors.New("timeout"), "tax provider unavailable"))
	if !dump.Retryable {
		t.Fatalf("dependency errors should be retryable")
	}
	if Dump(nil).TopMessage != "" {
		t.Fatalf("nil error should produce empty dump")
	}
}

func TestNewfFormatsMessage(t *testing.T) {
	err := Newf(CodeNotFound, "quote %s not found", "q-1")
	if err.Message() != "quote q-1 not found" {
		t.Fatalf("unexpected message %q", err.Message())
	}
	if err.Error() != "NOT_FOUND: quote q-1 not found" {
		t.Fatalf("unexpected error string %q", err.Error())
	}
}
