package command

import (
	"strings"

	"github.com/goliatone/go-enigma/core"
)

const (
	TypeVerifyEnigma = "enigma.command.verify"
	TypeCreateEnigma = "enigma.command.create"
	TypeDeleteEnigma = "enigma.command.delete"
)

// VerifyEnigmaMessage carries a solve attempt. Missing fields are not a
// validation failure here: they are reported as logical outcomes by Verify.
type VerifyEnigmaMessage struct {
	Request core.VerifyRequest
}

func (VerifyEnigmaMessage) Type() string { return TypeVerifyEnigma }

func (VerifyEnigmaMessage) Validate() error { return nil }

type CreateEnigmaMessage struct {
	Input core.CreateEnigmaInput
}

func (CreateEnigmaMessage) Type() string { return TypeCreateEnigma }

func (m CreateEnigmaMessage) Validate() error {
	if strings.TrimSpace(m.Input.Secret) == "" {
		return commandValidationError("secret", "secret is required")
	}
	if strings.TrimSpace(m.Input.TargetURL) == "" {
		return commandValidationError("target_url", "target url is required")
	}
	return commandWrapValidation(m.Input.Validate(), "command: invalid enigma")
}

type DeleteEnigmaMessage struct {
	ID string
}

func (DeleteEnigmaMessage) Type() string { return TypeDeleteEnigma }

func (m DeleteEnigmaMessage) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return commandValidationError("id", "enigma id is required")
	}
	return nil
}
