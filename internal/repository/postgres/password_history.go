package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/WebPetFabrica/web-pet-back-sub000/internal/core/domain"
	"github.com/WebPetFabrica/web-pet-back-sub000/internal/core/port"
)

// PasswordHistoryRepository stores recent password hashes per identity in PostgreSQL.
type PasswordHistoryRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewPasswordHistoryRepository wires a PostgreSQL-backed history repository.
func NewPasswordHistoryRepository(pool *pgxpool.Pool) *PasswordHistoryRepository {
	return &PasswordHistoryRepository{
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ListRecent retrieves the most recent password hashes for an identity,
// newest first.
func (r *PasswordHistoryRepository) ListRecent(ctx context.Context, identityID string, limit int) ([]domain.PasswordHistoryEntry, error) {
	identityID = strings.TrimSpace(identityID)
	if identityID == "" {
		return nil, fmt.Errorf("identity id is required")
	}

	builder := r.builder.Select("id", "identity_id", "password_hash", "set_at").
		From("webpet.password_history").
		Where(squirrel.Eq{"identity_id": identityID}).
		OrderBy("set_at DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	stmt, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select password history sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query password history: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.PasswordHistoryEntry, 0)
	for rows.Next() {
		var entry domain.PasswordHistoryEntry
		if err := rows.Scan(&entry.ID, &entry.IdentityID, &entry.PasswordHash, &entry.SetAt); err != nil {
			return nil, fmt.Errorf("scan password history: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate password history: %w", err)
	}

	return entries, nil
}

// Add inserts a password hash into the history table.
func (r *PasswordHistoryRepository) Add(ctx context.Context, entry domain.PasswordHistoryEntry) error {
	if strings.TrimSpace(entry.IdentityID) == "" {
		return fmt.Errorf("identity id is required")
	}
	if strings.TrimSpace(entry.PasswordHash) == "" {
		return fmt.Errorf("password hash is required")
	}

	setAt := entry.SetAt
	if setAt.IsZero() {
		setAt = time.Now().UTC()
	}

	stmt, args, err := r.builder.Insert("webpet.password_history").
		Columns("id", "identity_id", "password_hash", "set_at").
		Values(entry.ID, entry.IdentityID, entry.PasswordHash, setAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert password history sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert password history: %w", err)
	}

	return nil
}

// TrimOldest deletes entries beyond the keep most recent for an identity,
// oldest first.
func (r *PasswordHistoryRepository) TrimOldest(ctx context.Context, identityID string, keep int) error {
	if keep <= 0 {
		return nil
	}

	identityID = strings.TrimSpace(identityID)
	if identityID == "" {
		return fmt.Errorf("identity id is required")
	}

	stmt := `
		DELETE FROM webpet.password_history
		 WHERE identity_id = $1
		   AND id NOT IN (
				SELECT id
				  FROM webpet.password_history
				 WHERE identity_id = $1
				 ORDER BY set_at DESC
				 LIMIT $2
		   )
	`

	if _, err := r.exec.Exec(ctx, stmt, identityID, keep); err != nil {
		return fmt.Errorf("trim password history: %w", err)
	}

	return nil
}

var _ port.PasswordHistoryRepository = (*PasswordHistoryRepository)(nil)
