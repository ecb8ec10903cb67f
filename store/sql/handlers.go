package sqlstore

import (
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

func enigmaHandlers() repository.ModelHandlers[*enigmaRecord] {
	return repository.ModelHandlers[*enigmaRecord]{
		NewRecord: func() *enigmaRecord {
			return &enigmaRecord{}
		},
		GetID: func(record *enigmaRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return parseUUID(record.ID)
		},
		SetID: func(record *enigmaRecord, id uuid.UUID) {
			if record == nil {
				return
			}
			record.ID = id.String()
		},
		GetIdentifier: func() string {
			return "secret"
		},
		GetIdentifierValue: func(record *enigmaRecord) string {
			if record == nil {
				return ""
			}
			return record.Secret
		},
	}
}

func parseUUID(value string) uuid.UUID {
	parsed, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil
	}
	return parsed
}
