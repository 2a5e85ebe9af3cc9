package models

// PushSubscription mirrors a platform push subscription: the delivery
// endpoint plus the client key material the push service needs.
type PushSubscription struct {
	Endpoint string            `json:"endpoint"`
	Keys     map[string]string `json:"keys"`
}
