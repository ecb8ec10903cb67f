package sqlstore

import (
	"strings"
	"time"

	"github.com/goliatone/go-enigma/core"
	"github.com/uptrace/bun"
)

type enigmaRecord struct {
	bun.BaseModel `bun:"table:enigma,alias:e"`

	ID             string    `bun:"id,pk"`
	Secret         string    `bun:"secret,notnull,unique"`
	TargetURL      string    `bun:"target_url,notnull"`
	WebhookURL     *string   `bun:"webhook_url,nullzero"`
	DiscoveryCount int64     `bun:"discovery_count,notnull"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt      time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func newEnigmaRecord(id string, in core.CreateEnigmaInput, now time.Time) *enigmaRecord {
	record := &enigmaRecord{
		ID:        id,
		Secret:    strings.TrimSpace(in.Secret),
		TargetURL: strings.TrimSpace(in.TargetURL),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if webhook := strings.TrimSpace(in.WebhookURL); webhook != "" {
		record.WebhookURL = &webhook
	}
	return record
}

func (r *enigmaRecord) toDomain() core.Enigma {
	if r == nil {
		return core.Enigma{}
	}
	out := core.Enigma{
		ID:             r.ID,
		Secret:         r.Secret,
		TargetURL:      r.TargetURL,
		DiscoveryCount: r.DiscoveryCount,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	if r.WebhookURL != nil {
		out.WebhookURL = *r.WebhookURL
	}
	return out
}
