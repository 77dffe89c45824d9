package postgres

import "github.com/jackc/pgx/v5/pgxpool"

// Repositories bundles all PostgreSQL-backed repositories.
type Repositories struct {
	Individuals     *IndividualRepository
	Organizations   *OrganizationRepository
	Protectors      *ProtectorRepository
	PasswordHistory *PasswordHistoryRepository
	Sessions        *SessionRepository
}

// NewRepositories constructs every repository over the shared pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Individuals:     NewIndividualRepository(pool),
		Organizations:   NewOrganizationRepository(pool),
		Protectors:      NewProtectorRepository(pool),
		PasswordHistory: NewPasswordHistoryRepository(pool),
		Sessions:        NewSessionRepository(pool),
	}
}
