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

// OrganizationRepository implements port.OrganizationRepository using PostgreSQL.
type OrganizationRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewOrganizationRepository wires a PostgreSQL-backed organization repository.
func NewOrganizationRepository(pool *pgxpool.Pool) *OrganizationRepository {
	return &OrganizationRepository{
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new organization row.
func (r *OrganizationRepository) Create(ctx context.Context, org domain.Organization) error {
	stmt, args, err := r.builder.Insert("webpet.organizations").
		Columns("id", "org_name", "cnpj", "email", "password_hash", "phone", "active", "created_at", "updated_at").
		Values(
			org.ID,
			org.OrgName,
			org.CNPJ,
			org.Email,
			org.PasswordHash,
			org.Phone,
			org.Active,
			org.CreatedAt,
			org.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert organization sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		if IsUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert organization: %w", err)
	}

	return nil
}

// GetByEmail retrieves an organization by email.
func (r *OrganizationRepository) GetByEmail(ctx context.Context, email string) (*domain.Organization, error) {
	stmt, args, err := r.builder.
		Select("id", "org_name", "cnpj", "email", "password_hash", "phone", "active", "created_at", "updated_at").
		From("webpet.organizations").
		Where(squirrel.Eq{"email": email}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select organization sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var org domain.Organization
	if err := row.Scan(
		&org.ID,
		&org.OrgName,
		&org.CNPJ,
		&org.Email,
		&org.PasswordHash,
		&org.Phone,
		&org.Active,
		&org.CreatedAt,
		&org.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan organization: %w", err)
	}

	org.Role = domain.RoleOrganization

	return &org, nil
}

// ExistsByEmail reports whether an organization with the email exists.
func (r *OrganizationRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return existsBy(ctx, r.exec, r.builder, "webpet.organizations", squirrel.Eq{"email": email})
}

// ExistsByCNPJ reports whether an organization with the registration number exists.
func (r *OrganizationRepository) ExistsByCNPJ(ctx context.Context, cnpj string) (bool, error) {
	return existsBy(ctx, r.exec, r.builder, "webpet.organizations", squirrel.Eq{"cnpj": cnpj})
}

// SetActive toggles the active flag for an organization.
func (r *OrganizationRepository) SetActive(ctx context.Context, id string, active bool) error {
	return setActive(ctx, r.exec, r.builder, "webpet.organizations", id, active)
}

// UpdatePassword updates the password hash and the update timestamp.
func (r *OrganizationRepository) UpdatePassword(ctx context.Context, id, passwordHash string, changedAt time.Time) error {
	return updatePassword(ctx, r.exec, r.builder, "webpet.organizations", id, passwordHash, changedAt)
}

var _ port.OrganizationRepository = (*OrganizationRepository)(nil)
