package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v2"

	"github.com/WebPetFabrica/web-pet-back-sub000/internal/core/domain"
	"github.com/WebPetFabrica/web-pet-back-sub000/internal/repository"
)

func newMockIndividualRepo(t *testing.T) (*IndividualRepository, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(mock.Close)

	repo := &IndividualRepository{
		exec:    mock,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	return repo, mock
}

func TestIndividualCreate(t *testing.T) {
	repo, mock := newMockIndividualRepo(t)

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	individual := domain.Individual{
		IdentityBase: domain.IdentityBase{
			ID:           "6b4a1f52-9a1e-4f64-8d5a-111111111111",
			Email:        "ana@petmail.com.br",
			PasswordHash: "salt:hash",
			Phone:        "+55 11 91234-5678",
			Active:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		Name: "Ana Silva",
	}

	mock.ExpectExec("INSERT INTO webpet.individuals (id,name,email,password_hash,phone,active,created_at,updated_at) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)").
		WithArgs(
			individual.ID,
			individual.Name,
			individual.Email,
			individual.PasswordHash,
			individual.Phone,
			individual.Active,
			individual.CreatedAt,
			individual.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), individual); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestIndividualCreateDuplicate(t *testing.T) {
	repo, mock := newMockIndividualRepo(t)

	mock.ExpectExec("INSERT INTO webpet.individuals (id,name,email,password_hash,phone,active,created_at,updated_at) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)").
		WithArgs(
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
		).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "individuals_email_key"})

	err := repo.Create(context.Background(), domain.Individual{})
	if !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("Create duplicate = %v, want repository.ErrDuplicate", err)
	}
}

func TestIndividualGetByEmail(t *testing.T) {
	repo, mock := newMockIndividualRepo(t)

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{
		"id", "name", "email", "password_hash", "phone", "active", "created_at", "updated_at",
	}).AddRow(
		"6b4a1f52-9a1e-4f64-8d5a-111111111111",
		"Ana Silva",
		"ana@petmail.com.br",
		"salt:hash",
		"+55 11 91234-5678",
		true,
		now,
		now,
	)

	mock.ExpectQuery("SELECT id, name, email, password_hash, phone, active, created_at, updated_at FROM webpet.individuals WHERE email = $1").
		WithArgs("ana@petmail.com.br").
		WillReturnRows(rows)

	individual, err := repo.GetByEmail(context.Background(), "ana@petmail.com.br")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if individual.Name != "Ana Silva" {
		t.Fatalf("Name = %q, want Ana Silva", individual.Name)
	}
	if individual.Role != domain.RoleIndividual {
		t.Fatalf("Role = %q, want %q", individual.Role, domain.RoleIndividual)
	}
}

func TestIndividualGetByEmailNotFound(t *testing.T) {
	repo, mock := newMockIndividualRepo(t)

	mock.ExpectQuery("SELECT id, name, email, password_hash, phone, active, created_at, updated_at FROM webpet.individuals WHERE email = $1").
		WithArgs("ghost@petmail.com.br").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "ghost@petmail.com.br")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("GetByEmail missing = %v, want repository.ErrNotFound", err)
	}
}

func TestIndividualExistsByEmail(t *testing.T) {
	repo, mock := newMockIndividualRepo(t)

	mock.ExpectQuery("SELECT 1 FROM webpet.individuals WHERE email = $1 LIMIT 1").
		WithArgs("ana@petmail.com.br").
		WillReturnRows(pgxmock.NewRows([]string{"1"}).AddRow(1))

	exists, err := repo.ExistsByEmail(context.Background(), "ana@petmail.com.br")
	if err != nil {
		t.Fatalf("ExistsByEmail: %v", err)
	}
	if !exists {
		t.Fatal("expected exists = true")
	}

	mock.ExpectQuery("SELECT 1 FROM webpet.individuals WHERE email = $1 LIMIT 1").
		WithArgs("ghost@petmail.com.br").
		WillReturnError(pgx.ErrNoRows)

	exists, err = repo.ExistsByEmail(context.Background(), "ghost@petmail.com.br")
	if err != nil {
		t.Fatalf("ExistsByEmail: %v", err)
	}
	if exists {
		t.Fatal("expected exists = false for missing row")
	}
}

func TestIndividualSetActiveNotFound(t *testing.T) {
	repo, mock := newMockIndividualRepo(t)

	mock.ExpectExec("UPDATE webpet.individuals SET active = $1, updated_at = $2 WHERE id = $3").
		WithArgs(false, pgxmock.AnyArg(), "missing-id").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.SetActive(context.Background(), "missing-id", false)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("SetActive missing = %v, want repository.ErrNotFound", err)
	}
}

func TestIndividualUpdatePassword(t *testing.T) {
	repo, mock := newMockIndividualRepo(t)

	changedAt := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)
	mock.ExpectExec("UPDATE webpet.individuals SET password_hash = $1, updated_at = $2 WHERE id = $3").
		WithArgs("new-salt:new-hash", changedAt, "6b4a1f52-9a1e-4f64-8d5a-111111111111").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.UpdatePassword(context.Background(), "6b4a1f52-9a1e-4f64-8d5a-111111111111", "new-salt:new-hash", changedAt)
	if err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
