// Package identity defines the notification payloads the registry publishes.
// Consumers decode these from the notification topic; field names are part of
// the wire contract.
package identity

import "time"

// AggregateType is the outbox aggregate for all registry notifications.
const AggregateType = "identity"

// Event types, used as the event_type header.
const (
	EventRegistered         = "identity.registered"
	EventVerified           = "identity.verified"
	EventVerifierAuthorized = "identity.verifier_authorized"
	EventVerifierRevoked    = "identity.verifier_revoked"
)

// Registered is emitted when an account registers its record.
type Registered struct {
	Account string    `json:"account"`
	Name    string    `json:"name"`
	Time    time.Time `json:"time"`
}

// Verified is emitted when a verifier marks a record verified.
type Verified struct {
	Account  string    `json:"account"`
	Verifier string    `json:"verifier"`
	Time     time.Time `json:"time"`
}

// VerifierAuthorized is emitted when the owner grants the verifier role.
type VerifierAuthorized struct {
	Account string    `json:"account"`
	Time    time.Time `json:"time"`
}

// VerifierRevoked is emitted when the owner removes the verifier role.
type VerifierRevoked struct {
	Account string    `json:"account"`
	Time    time.Time `json:"time"`
}
