// Package queue carries webhook notifications from the request path to the
// background worker. Both backends implement the go-job queue contracts.
package queue
