// Package timeouts defines shared timeout constants used across services.
// Centralizing these values prevents drift between service boundaries and
// makes the durations discoverable.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// GatewayCall is the simulated latency of the external payment/carrier
// gateway stand-in.
const GatewayCall = 500 * time.Millisecond

// BrokerDial caps the wait when connecting to the event broker at startup.
const BrokerDial = 5 * time.Second
