// Package core contains the enigma domain contracts, entities, and the
// verification workflow. Storage, queue, and transport adapters depend on this
// package; core must not depend on any of them.
package core
