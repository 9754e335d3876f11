package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fwojciec/pagedoc"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ pagedoc.SelectorCacheService = (*SelectorCacheService)(nil)

// SelectorCacheService implements pagedoc.SelectorCacheService using SQLite.
type SelectorCacheService struct {
	db *DB
}

// NewSelectorCacheService creates a new SelectorCacheService.
func NewSelectorCacheService(db *DB) *SelectorCacheService {
	return &SelectorCacheService{db: db}
}

// Get retrieves the cached selectors for a domain.
func (s *SelectorCacheService) Get(ctx context.Context, domain string) (*pagedoc.CachedSelectors, error) {
	var cached pagedoc.CachedSelectors
	var selectorsJSON, createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, domain, selectors, success_count, created_at, updated_at
		FROM selectors
		WHERE domain = ?
	`, domain).Scan(&cached.ID, &cached.Domain, &selectorsJSON, &cached.SuccessCount,
		&createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, pagedoc.Errorf(pagedoc.ENOTFOUND, "no cached selectors for domain %q", domain)
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(selectorsJSON), &cached.Selectors); err != nil {
		return nil, fmt.Errorf("failed to decode cached selectors: %w", err)
	}

	var parseErr error
	cached.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAt)
	if parseErr != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", parseErr)
	}
	cached.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAt)
	if parseErr != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", parseErr)
	}

	return &cached, nil
}

// Put stores a selector set for a domain, replacing any existing entry.
// A replaced entry starts over with a zero trust counter.
func (s *SelectorCacheService) Put(ctx context.Context, domain string, selectors pagedoc.SelectorSet) error {
	if domain == "" {
		return pagedoc.Errorf(pagedoc.EINVALID, "domain is required")
	}
	if err := selectors.Validate(); err != nil {
		return err
	}

	encoded, err := json.Marshal(selectors)
	if err != nil {
		return fmt.Errorf("failed to encode selectors: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO selectors (id, domain, selectors, success_count, created_at, updated_at)
		VALUES (?, ?, ?, 0, ?, ?)
		ON CONFLICT(domain) DO UPDATE SET
			selectors = excluded.selectors,
			success_count = 0,
			updated_at = excluded.updated_at
	`, uuid.New().String(), domain, string(encoded), now, now)

	return err
}

// MarkSuccess increments the trust counter after a clean extraction.
func (s *SelectorCacheService) MarkSuccess(ctx context.Context, domain string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE selectors
		SET success_count = success_count + 1, updated_at = ?
		WHERE domain = ?
	`, time.Now().UTC().Format(time.RFC3339), domain)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return pagedoc.Errorf(pagedoc.ENOTFOUND, "no cached selectors for domain %q", domain)
	}

	return nil
}

// Invalidate discards the entry for a domain. Absent entries are ignored.
func (s *SelectorCacheService) Invalidate(ctx context.Context, domain string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM selectors WHERE domain = ?", domain)
	return err
}
