package inbound

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/goliatone/go-enigma/core"
	goerrors "github.com/goliatone/go-errors"
)

func inboundError(
	message string,
	category goerrors.Category,
	code int,
	textCode string,
	metadata map[string]any,
) *goerrors.Error {
	err := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func inboundInternal(message string, metadata map[string]any) *goerrors.Error {
	return inboundError(
		message,
		goerrors.CategoryInternal,
		http.StatusInternalServerError,
		core.EnigmaErrorInternal,
		metadata,
	)
}

type errorBody struct {
	Category string `json:"category"`
	Code     int    `json:"code"`
	TextCode string `json:"text_code"`
	Message  string `json:"message"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

// envelopeFor maps err into the wire envelope. Causes are not exposed.
func envelopeFor(err error) (int, errorEnvelope) {
	mapped := core.MapError(err)
	if mapped == nil {
		mapped = inboundInternal("inbound: unexpected error", nil)
	}
	code := mapped.Code
	if code == 0 {
		code = http.StatusInternalServerError
	}
	return code, errorEnvelope{Error: errorBody{
		Category: fmt.Sprint(mapped.Category),
		Code:     code,
		TextCode: mapped.TextCode,
		Message:  mapped.Message,
	}}
}

func writeError(w http.ResponseWriter, err error) {
	code, envelope := envelopeFor(err)
	writeJSON(w, code, envelope)
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
