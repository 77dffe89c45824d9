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

// IndividualRepository implements port.IndividualRepository using PostgreSQL.
type IndividualRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewIndividualRepository wires a PostgreSQL-backed individual repository.
func NewIndividualRepository(pool *pgxpool.Pool) *IndividualRepository {
	return &IndividualRepository{
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new individual row.
func (r *IndividualRepository) Create(ctx context.Context, individual domain.Individual) error {
	stmt, args, err := r.builder.Insert("webpet.individuals").
		Columns("id", "name", "email", "password_hash", "phone", "active", "created_at", "updated_at").
		Values(
			individual.ID,
			individual.Name,
			individual.Email,
			individual.PasswordHash,
			individual.Phone,
			individual.Active,
			individual.CreatedAt,
			individual.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert individual sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		if IsUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert individual: %w", err)
	}

	return nil
}

// GetByEmail retrieves an individual by email.
func (r *IndividualRepository) GetByEmail(ctx context.Context, email string) (*domain.Individual, error) {
	stmt, args, err := r.builder.
		Select("id", "name", "email", "password_hash", "phone", "active", "created_at", "updated_at").
		From("webpet.individuals").
		Where(squirrel.Eq{"email": email}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select individual sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var individual domain.Individual
	if err := row.Scan(
		&individual.ID,
		&individual.Name,
		&individual.Email,
		&individual.PasswordHash,
		&individual.Phone,
		&individual.Active,
		&individual.CreatedAt,
		&individual.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan individual: %w", err)
	}

	individual.Role = domain.RoleIndividual

	return &individual, nil
}

// ExistsByEmail reports whether an individual with the email exists.
func (r *IndividualRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return existsBy(ctx, r.exec, r.builder, "webpet.individuals", squirrel.Eq{"email": email})
}

// SetActive toggles the active flag for an individual.
func (r *IndividualRepository) SetActive(ctx context.Context, id string, active bool) error {
	return setActive(ctx, r.exec, r.builder, "webpet.individuals", id, active)
}

// UpdatePassword updates the password hash and the update timestamp.
func (r *IndividualRepository) UpdatePassword(ctx context.Context, id, passwordHash string, changedAt time.Time) error {
	return updatePassword(ctx, r.exec, r.builder, "webpet.individuals", id, passwordHash, changedAt)
}

func existsBy(ctx context.Context, exec pgExecutor, builder squirrel.StatementBuilderType, table string, cond squirrel.Eq) (bool, error) {
	stmt, args, err := builder.Select("1").
		From(table).
		Where(cond).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists sql: %w", err)
	}

	var one int
	if err := exec.QueryRow(ctx, stmt, args...).Scan(&one); err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("scan exists: %w", err)
	}

	return true, nil
}

func setActive(ctx context.Context, exec pgExecutor, builder squirrel.StatementBuilderType, table, id string, active bool) error {
	stmt, args, err := builder.Update(table).
		Set("active", active).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set active sql: %w", err)
	}

	ct, err := exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("set active: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func updatePassword(ctx context.Context, exec pgExecutor, builder squirrel.StatementBuilderType, table, id, passwordHash string, changedAt time.Time) error {
	stmt, args, err := builder.Update(table).
		Set("password_hash", passwordHash).
		Set("updated_at", changedAt).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update password sql: %w", err)
	}

	ct, err := exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.IndividualRepository = (*IndividualRepository)(nil)
