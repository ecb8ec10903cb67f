package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-enigma/core"
)

var (
	_ gocmd.Querier[GetEnigmaMessage, core.Enigma]     = (*GetEnigmaQuery)(nil)
	_ gocmd.Querier[ListEnigmasMessage, []core.Enigma] = (*ListEnigmasQuery)(nil)
	_ EnigmaReader                                     = (*core.Service)(nil)
)
