package core

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

const (
	ReasonNameRequired   = "Você deve informar o seu nome."
	ReasonSecretRequired = "Você deve enviar a tentativa de segredo."
	ReasonSecretMismatch = "Segredo incorreto! Tente novamente..."
	ReasonDiscovered     = "Você descobriu o enigma! Aguarde para ser redirecionado..."
)

// UnknownDisplayName is reported to webhooks when no name survives validation.
const UnknownDisplayName = "Pessoa Desconhecida"

const (
	MaxSecretLength = 40
	MaxURLLength    = 120
)

type Enigma struct {
	ID             string    `json:"id"`
	Secret         string    `json:"secret"`
	TargetURL      string    `json:"target_url"`
	WebhookURL     string    `json:"webhook_url,omitempty"`
	DiscoveryCount int64     `json:"discovery_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (e Enigma) HasWebhook() bool {
	return strings.TrimSpace(e.WebhookURL) != ""
}

func (e Enigma) String() string {
	return fmt.Sprintf("<Enigma %s>", e.ID)
}

type CreateEnigmaInput struct {
	Secret     string
	TargetURL  string
	WebhookURL string
}

// Validate counts lengths in characters, matching the VARCHAR limits.
func (in CreateEnigmaInput) Validate() error {
	secret := strings.TrimSpace(in.Secret)
	if secret == "" {
		return fmt.Errorf("core: secret is required")
	}
	if utf8.RuneCountInString(secret) > MaxSecretLength {
		return fmt.Errorf("core: secret exceeds %d characters", MaxSecretLength)
	}
	target := strings.TrimSpace(in.TargetURL)
	if target == "" {
		return fmt.Errorf("core: target url is required")
	}
	if utf8.RuneCountInString(target) > MaxURLLength {
		return fmt.Errorf("core: target url exceeds %d characters", MaxURLLength)
	}
	if utf8.RuneCountInString(strings.TrimSpace(in.WebhookURL)) > MaxURLLength {
		return fmt.Errorf("core: webhook url exceeds %d characters", MaxURLLength)
	}
	return nil
}

// VerifyRequest carries the raw form values. Empty means missing.
type VerifyRequest struct {
	Name   string
	Secret string
}

// VerifyResult is the logical outcome returned to the client. URL is only set
// on success.
type VerifyResult struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
	URL    string `json:"url,omitempty"`
}

func (r VerifyResult) Succeeded() bool {
	return r.Status == StatusSuccess
}

func failedVerification(reason string) VerifyResult {
	return VerifyResult{Status: StatusError, Reason: reason}
}

// Notification is the payload handed to the webhook dispatcher after a
// discovery. Count is the discovery count after the increment.
type Notification struct {
	EnigmaID string
	URL      string
	Secret   string
	Count    int64
	Name     string
}

func (n Notification) Validate() error {
	if strings.TrimSpace(n.URL) == "" {
		return fmt.Errorf("core: notification url is required")
	}
	if strings.TrimSpace(n.Secret) == "" {
		return fmt.Errorf("core: notification secret is required")
	}
	return nil
}
