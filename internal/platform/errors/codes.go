// Package errors provides structured, coded error handling shared by the
// fulfillment services.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Payment errors
	CodePaymentNotFound Code = "PAYMENT_NOT_FOUND"

	// Shipment errors
	CodeShipmentNotFound      Code = "SHIPMENT_NOT_FOUND"
	CodeShipmentInvalidStatus Code = "SHIPMENT_INVALID_STATUS"

	// Resilience policy errors
	CodePolicyThrottled   Code = "POLICY_THROTTLED"
	CodePolicyCircuitOpen Code = "POLICY_CIRCUIT_OPEN"
	CodePolicyTimeout     Code = "POLICY_TIMEOUT"

	// Collaborator errors
	CodeStoreFailure   Code = "STORE_FAILURE"
	CodeGatewayFailure Code = "GATEWAY_FAILURE"
	CodePublishFailure Code = "PUBLISH_FAILURE"
)

// HTTPStatus maps the code to the HTTP status used when an error escapes to
// the transport layer. Degraded-but-answered operations never reach this
// mapping; it covers malformed input and hard startup-style failures.
func (c Code) HTTPStatus() int {
	switch c {
	case CodePaymentNotFound, CodeShipmentNotFound:
		return http.StatusNotFound
	case CodeShipmentInvalidStatus:
		return http.StatusBadRequest
	case CodePolicyThrottled:
		return http.StatusTooManyRequests
	case CodePolicyCircuitOpen, CodePolicyTimeout:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
