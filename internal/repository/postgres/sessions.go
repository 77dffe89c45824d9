package postgres

import (
	"context"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/WebPetFabrica/web-pet-back-sub000/internal/core/domain"
	"github.com/WebPetFabrica/web-pet-back-sub000/internal/core/port"
)

// SessionRepository persists login sessions in PostgreSQL.
type SessionRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewSessionRepository wires a PostgreSQL-backed session repository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new session row.
func (r *SessionRepository) Create(ctx context.Context, session domain.Session) error {
	stmt, args, err := r.builder.Insert("webpet.sessions").
		Columns("id", "identity_id", "email", "created_at", "expires_at", "revoked_at").
		Values(
			session.ID,
			session.IdentityID,
			session.Email,
			session.CreatedAt,
			session.ExpiresAt,
			session.RevokedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert session sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	return nil
}

// ListActiveByIdentity returns sessions that are neither revoked nor expired.
func (r *SessionRepository) ListActiveByIdentity(ctx context.Context, identityID string) ([]domain.Session, error) {
	stmt, args, err := r.builder.Select("id", "identity_id", "email", "created_at", "expires_at", "revoked_at").
		From("webpet.sessions").
		Where(squirrel.Eq{"identity_id": identityID, "revoked_at": nil}).
		Where(squirrel.Gt{"expires_at": time.Now().UTC()}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list sessions sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]domain.Session, 0)
	for rows.Next() {
		var session domain.Session
		if err := rows.Scan(
			&session.ID,
			&session.IdentityID,
			&session.Email,
			&session.CreatedAt,
			&session.ExpiresAt,
			&session.RevokedAt,
		); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	return sessions, nil
}

// RevokeByIdentity marks all active sessions of an identity as revoked.
func (r *SessionRepository) RevokeByIdentity(ctx context.Context, identityID string, at time.Time) error {
	stmt, args, err := r.builder.Update("webpet.sessions").
		Set("revoked_at", at).
		Where(squirrel.Eq{"identity_id": identityID, "revoked_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build revoke sessions sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}

	return nil
}

var _ port.SessionRepository = (*SessionRepository)(nil)
