package queue

import "errors"

// ErrClosed is returned once a queue no longer accepts or yields messages.
var ErrClosed = errors.New("queue: closed")
