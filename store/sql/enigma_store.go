package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-enigma/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var ErrEnigmaNotFound = errors.New("sqlstore: enigma not found")

type EnigmaStore struct {
	db   *bun.DB
	repo repository.Repository[*enigmaRecord]
}

func NewEnigmaStore(db *bun.DB) (*EnigmaStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*enigmaRecord](db, enigmaHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid enigma repository wiring: %w", err)
		}
	}
	return &EnigmaStore{db: db, repo: repo}, nil
}

// FindBySecret matches the secret exactly. No trimming or case folding is
// applied so "abc123 " never matches "abc123".
func (s *EnigmaStore) FindBySecret(ctx context.Context, secret string) (core.Enigma, bool, error) {
	if s == nil || s.repo == nil {
		return core.Enigma{}, false, fmt.Errorf("sqlstore: enigma store is not configured")
	}
	if secret == "" {
		return core.Enigma{}, false, nil
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("secret", "=", secret),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return core.Enigma{}, false, err
	}
	if len(records) == 0 || records[0] == nil {
		return core.Enigma{}, false, nil
	}
	return records[0].toDomain(), true, nil
}

// IncrementDiscoveryCount bumps the counter in a single UPDATE so concurrent
// discoveries never lose an increment, and returns the row as it was written.
func (s *EnigmaStore) IncrementDiscoveryCount(ctx context.Context, id string) (core.Enigma, error) {
	if s == nil || s.db == nil {
		return core.Enigma{}, fmt.Errorf("sqlstore: enigma store is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return core.Enigma{}, fmt.Errorf("sqlstore: enigma id is required")
	}
	record := &enigmaRecord{}
	err := s.db.NewUpdate().
		Model(record).
		Set("discovery_count = discovery_count + 1").
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Returning("*").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Enigma{}, ErrEnigmaNotFound
		}
		return core.Enigma{}, err
	}
	if strings.TrimSpace(record.ID) == "" {
		return core.Enigma{}, ErrEnigmaNotFound
	}
	return record.toDomain(), nil
}

func (s *EnigmaStore) Create(ctx context.Context, in core.CreateEnigmaInput) (core.Enigma, error) {
	if s == nil || s.repo == nil {
		return core.Enigma{}, fmt.Errorf("sqlstore: enigma store is not configured")
	}
	if err := in.Validate(); err != nil {
		return core.Enigma{}, err
	}
	created, err := s.repo.Create(ctx, newEnigmaRecord(uuid.NewString(), in, time.Now().UTC()))
	if err != nil {
		return core.Enigma{}, err
	}
	return created.toDomain(), nil
}

func (s *EnigmaStore) Get(ctx context.Context, id string) (core.Enigma, error) {
	if s == nil || s.db == nil {
		return core.Enigma{}, fmt.Errorf("sqlstore: enigma store is not configured")
	}
	record := &enigmaRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", strings.TrimSpace(id)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Enigma{}, ErrEnigmaNotFound
		}
		return core.Enigma{}, err
	}
	return record.toDomain(), nil
}

func (s *EnigmaStore) List(ctx context.Context) ([]core.Enigma, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: enigma store is not configured")
	}
	records, _, err := s.repo.List(ctx, repository.OrderBy("created_at ASC"))
	if err != nil {
		return nil, err
	}
	out := make([]core.Enigma, 0, len(records))
	for _, record := range records {
		if record == nil {
			continue
		}
		out = append(out, record.toDomain())
	}
	return out, nil
}

func (s *EnigmaStore) Delete(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: enigma store is not configured")
	}
	res, err := s.db.NewDelete().
		Model((*enigmaRecord)(nil)).
		Where("id = ?", strings.TrimSpace(id)).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrEnigmaNotFound
	}
	return nil
}
