package security

import (
	"context"
	"net"
	"regexp"
	"strings"
	"sync"
	"time"
)

// emailPattern matches local-part@domain with a 2-7 character top-level segment.
var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,7}$`)

// fakeAddresses are full addresses rejected outright, lowercased.
var fakeAddresses = map[string]struct{}{
	"test@test.com":         {},
	"teste@teste.com":       {},
	"email@email.com":       {},
	"admin@admin.com":       {},
	"user@example.com":      {},
	"noreply@noreply.com":   {},
	"asdf@asdf.com":         {},
	"a@a.com":               {},
	"fake@fake.com":         {},
	"nothing@nothing.com":   {},
	"anything@anything.com": {},
}

// disposableDomains lists throwaway email providers whose addresses are rejected.
var disposableDomains = map[string]struct{}{
	"mailinator.com":    {},
	"guerrillamail.com": {},
	"10minutemail.com":  {},
	"tempmail.com":      {},
	"temp-mail.org":     {},
	"throwawaymail.com": {},
	"yopmail.com":       {},
	"trashmail.com":     {},
	"getnada.com":       {},
	"sharklasers.com":   {},
	"dispostable.com":   {},
	"maildrop.cc":       {},
	"mintemail.com":     {},
	"fakeinbox.com":     {},
	"mytemp.email":      {},
}

const domainLookupTimeout = 3 * time.Second

// DomainResolver answers whether a mail domain resolves. Implementations
// must be safe for concurrent use.
type DomainResolver interface {
	Resolves(ctx context.Context, domain string) bool
}

// DNSDomainResolver resolves domains via MX lookup, falling back to a host
// lookup, with a bounded timeout per query.
type DNSDomainResolver struct {
	resolver *net.Resolver
	timeout  time.Duration
}

// NewDNSDomainResolver constructs a resolver using the default system DNS.
func NewDNSDomainResolver() *DNSDomainResolver {
	return &DNSDomainResolver{
		resolver: net.DefaultResolver,
		timeout:  domainLookupTimeout,
	}
}

// Resolves reports whether the domain has MX records or resolvable hosts.
// Lookup failure and timeout both count as non-resolvable, never an error.
func (r *DNSDomainResolver) Resolves(ctx context.Context, domain string) bool {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if mx, err := r.resolver.LookupMX(ctx, domain); err == nil && len(mx) > 0 {
		return true
	}

	hosts, err := r.resolver.LookupHost(ctx, domain)
	return err == nil && len(hosts) > 0
}

// EmailValidator validates address structure and rejects fake addresses,
// disposable domains, and non-resolvable domains. Resolution results are
// memoized per domain for the process lifetime: domain existence is
// assumed stable, so entries carry no TTL. First-insert races are benign.
type EmailValidator struct {
	resolver DomainResolver
	resolved sync.Map // domain -> bool
}

// NewEmailValidator constructs an EmailValidator. A nil resolver skips the
// resolution check (used in tests and offline environments).
func NewEmailValidator(resolver DomainResolver) *EmailValidator {
	return &EmailValidator{resolver: resolver}
}

// IsValid reports whether the email is acceptable for registration.
// Blank input is false; resolution failures are treated as invalid, never
// surfaced as errors.
func (v *EmailValidator) IsValid(ctx context.Context, email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}

	if !emailPattern.MatchString(email) {
		return false
	}

	if _, fake := fakeAddresses[email]; fake {
		return false
	}

	at := strings.LastIndex(email, "@")
	domain := email[at+1:]

	if _, disposable := disposableDomains[domain]; disposable {
		return false
	}

	return v.domainResolves(ctx, domain)
}

func (v *EmailValidator) domainResolves(ctx context.Context, domain string) bool {
	if v.resolver == nil {
		return true
	}

	if cached, ok := v.resolved.Load(domain); ok {
		return cached.(bool)
	}

	ok := v.resolver.Resolves(ctx, domain)
	v.resolved.Store(domain, ok)
	return ok
}
