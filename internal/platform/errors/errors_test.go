package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestIsMatchesByCode(t *testing.T) {
	sentinel := New(CodePaymentNotFound, "payment not found")
	err := Wrap(CodePaymentNotFound, "lookup failed", fmt.Errorf("row missing"))
	if !stderrors.Is(err, sentinel) {
		t.Fatalf("expected errors with the same code to match")
	}
	other := New(CodeShipmentNotFound, "shipment not found")
	if stderrors.Is(err, other) {
		t.Fatalf("expected errors with different codes not to match")
	}
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(CodeStoreFailure, "save payment", cause)
	if !stderrors.Is(err, cause) {
		t.Fatalf("expected wrapped cause to be found in chain")
	}
}

func TestCodeOfWalksChain(t *testing.T) {
	inner := New(CodePolicyTimeout, "operation timed out")
	wrapped := fmt.Errorf("process payment: %w", inner)
	if got := CodeOf(wrapped); got != CodePolicyTimeout {
		t.Fatalf("expected CodePolicyTimeout, got %s", got)
	}
	if got := CodeOf(fmt.Errorf("plain")); got != CodeUnknown {
		t.Fatalf("expected CodeUnknown for plain error, got %s", got)
	}
	if got := CodeOf(nil); got != CodeUnknown {
		t.Fatalf("expected CodeUnknown for nil error, got %s", got)
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		code Code
		want int
	}{
		{CodePaymentNotFound, http.StatusNotFound},
		{CodeShipmentInvalidStatus, http.StatusBadRequest},
		{CodePolicyThrottled, http.StatusTooManyRequests},
		{CodePolicyCircuitOpen, http.StatusServiceUnavailable},
		{CodeStoreFailure, http.StatusInternalServerError},
		{CodeUnknown, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := tc.code.HTTPStatus(); got != tc.want {
			t.Fatalf("code %s: expected status %d, got %d", tc.code, tc.want, got)
		}
	}
}
