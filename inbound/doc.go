// Package inbound exposes the verification endpoint over HTTP.
//
// Logical outcomes (missing fields, wrong secret, discovery) are always
// answered with 200 and a JSON status body. Only record store failures turn
// into a 500 with a go-errors envelope.
package inbound
