package query

import "strings"

const (
	TypeGetEnigma   = "enigma.query.get"
	TypeListEnigmas = "enigma.query.list"
)

type GetEnigmaMessage struct {
	ID string
}

func (GetEnigmaMessage) Type() string { return TypeGetEnigma }

func (m GetEnigmaMessage) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return queryValidationError("id", "enigma id is required")
	}
	return nil
}

type ListEnigmasMessage struct{}

func (ListEnigmasMessage) Type() string { return TypeListEnigmas }

func (ListEnigmasMessage) Validate() error { return nil }
