package postgres

import (
	"context"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/WebPetFabrica/web-pet-back-sub000/internal/core/domain"
	"github.com/WebPetFabrica/web-pet-back-sub000/internal/core/port"
	"github.com/WebPetFabrica/web-pet-back-sub000/internal/repository"
)

// ProtectorRepository implements port.ProtectorRepository using PostgreSQL.
type ProtectorRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewProtectorRepository wires a PostgreSQL-backed protector repository.
func NewProtectorRepository(pool *pgxpool.Pool) *ProtectorRepository {
	return &ProtectorRepository{
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new protector row.
func (r *ProtectorRepository) Create(ctx context.Context, protector domain.Protector) error {
	stmt, args, err := r.builder.Insert("webpet.protectors").
		Columns("id", "full_name", "cpf", "email", "password_hash", "phone", "active", "created_at", "updated_at").
		Values(
			protector.ID,
			protector.FullName,
			protector.CPF,
			protector.Email,
			protector.PasswordHash,
			protector.Phone,
			protector.Active,
			protector.CreatedAt,
			protector.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert protector sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		if IsUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert protector: %w", err)
	}

	return nil
}

// GetByEmail retrieves a protector by email.
func (r *ProtectorRepository) GetByEmail(ctx context.Context, email string) (*domain.Protector, error) {
	stmt, args, err := r.builder.
		Select("id", "full_name", "cpf", "email", "password_hash", "phone", "active", "created_at", "updated_at").
		From("webpet.protectors").
		Where(squirrel.Eq{"email": email}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select protector sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var protector domain.Protector
	if err := row.Scan(
		&protector.ID,
		&protector.FullName,
		&protector.CPF,
		&protector.Email,
		&protector.PasswordHash,
		&protector.Phone,
		&protector.Active,
		&protector.CreatedAt,
		&protector.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan protector: %w", err)
	}

	protector.Role = domain.RoleProtector

	return &protector, nil
}

// ExistsByEmail reports whether a protector with the email exists.
func (r *ProtectorRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return existsBy(ctx, r.exec, r.builder, "webpet.protectors", squirrel.Eq{"email": email})
}

// ExistsByCPF reports whether a protector with the personal registration number exists.
func (r *ProtectorRepository) ExistsByCPF(ctx context.Context, cpf string) (bool, error) {
	return existsBy(ctx, r.exec, r.builder, "webpet.protectors", squirrel.Eq{"cpf": cpf})
}

// SetActive toggles the active flag for a protector.
func (r *ProtectorRepository) SetActive(ctx context.Context, id string, active bool) error {
	return setActive(ctx, r.exec, r.builder, "webpet.protectors", id, active)
}

// UpdatePassword updates the password hash and the update timestamp.
func (r *ProtectorRepository) UpdatePassword(ctx context.Context, id, passwordHash string, changedAt time.Time) error {
	return updatePassword(ctx, r.exec, r.builder, "webpet.protectors", id, passwordHash, changedAt)
}

var _ port.ProtectorRepository = (*ProtectorRepository)(nil)
