package query

import (
	"context"

	"github.com/goliatone/go-enigma/core"
)

type EnigmaReader interface {
	GetEnigma(ctx context.Context, id string) (core.Enigma, error)
	ListEnigmas(ctx context.Context) ([]core.Enigma, error)
}

type GetEnigmaQuery struct {
	reader EnigmaReader
}

func NewGetEnigmaQuery(reader EnigmaReader) *GetEnigmaQuery {
	return &GetEnigmaQuery{reader: reader}
}

func (q *GetEnigmaQuery) Query(ctx context.Context, msg GetEnigmaMessage) (core.Enigma, error) {
	if q == nil || q.reader == nil {
		return core.Enigma{}, queryDependencyError("query: enigma reader is required")
	}
	if err := msg.Validate(); err != nil {
		return core.Enigma{}, err
	}
	return q.reader.GetEnigma(ctx, msg.ID)
}

// ListEnigmasQuery returns every enigma ordered by creation time.
type ListEnigmasQuery struct {
	reader EnigmaReader
}

func NewListEnigmasQuery(reader EnigmaReader) *ListEnigmasQuery {
	return &ListEnigmasQuery{reader: reader}
}

func (q *ListEnigmasQuery) Query(ctx context.Context, _ ListEnigmasMessage) ([]core.Enigma, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: enigma reader is required")
	}
	return q.reader.ListEnigmas(ctx)
}
