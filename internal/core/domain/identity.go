package domain

import "time"

// Role tags the identity variant an account belongs to.
type Role string

const (
	RoleIndividual   Role = "individual"
	RoleOrganization Role = "organization"
	RoleProtector    Role = "protector"
	RoleAdmin        Role = "admin"
)

// IdentityBase holds the attributes shared by every identity variant.
// Email is unique across all variants combined, not per variant.
type IdentityBase struct {
	ID           string
	Email        string
	PasswordHash string
	Phone        string
	Role         Role
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity is any authenticable principal: Individual, Organization, or Protector.
type Identity interface {
	Base() *IdentityBase
	DisplayName() string
}

// Individual is a private person adopting or donating.
type Individual struct {
	IdentityBase
	Name string
}

// Base returns the shared identity attributes.
func (i *Individual) Base() *IdentityBase { return &i.IdentityBase }

// DisplayName returns the name shown to other users.
func (i *Individual) DisplayName() string { return i.Name }

// Organization is a registered company or NGO, identified by its CNPJ.
type Organization struct {
	IdentityBase
	OrgName string
	CNPJ    string
}

// Base returns the shared identity attributes.
func (o *Organization) Base() *IdentityBase { return &o.IdentityBase }

// DisplayName returns the organization's trading name.
func (o *Organization) DisplayName() string { return o.OrgName }

// Protector is an independent animal protector, identified by CPF.
type Protector struct {
	IdentityBase
	FullName string
	CPF      string
}

// Base returns the shared identity attributes.
func (p *Protector) Base() *IdentityBase { return &p.IdentityBase }

// DisplayName returns the protector's full name.
func (p *Protector) DisplayName() string { return p.FullName }

// PasswordHistoryEntry tracks historical password hashes for reuse prevention.
type PasswordHistoryEntry struct {
	ID           string
	IdentityID   string
	PasswordHash string
	SetAt        time.Time
}

// PasswordHistoryDepth is how many recent hashes count toward reuse detection.
const PasswordHistoryDepth = 5

// Session records an issued login session so logout can invalidate it.
type Session struct {
	ID         string
	IdentityID string
	Email      string
	CreatedAt  time.Time
	ExpiresAt  time.Time
	RevokedAt  *time.Time
}
