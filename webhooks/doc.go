// Package webhooks delivers discovery notifications to the callback URL
// registered on an enigma.
//
// Delivery is fire and forget: the Dispatcher only enqueues, the worker side
// posts once and logs the outcome. Failures are never retried and never reach
// the player who solved the enigma.
package webhooks
