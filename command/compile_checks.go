package command

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-enigma/core"
)

var (
	_ gocmd.Commander[VerifyEnigmaMessage] = (*VerifyEnigmaCommand)(nil)
	_ gocmd.Commander[CreateEnigmaMessage] = (*CreateEnigmaCommand)(nil)
	_ gocmd.Commander[DeleteEnigmaMessage] = (*DeleteEnigmaCommand)(nil)

	_ VerifyService = (*core.Service)(nil)
	_ AdminService  = (*core.Service)(nil)
)
