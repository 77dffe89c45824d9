package security

import (
	"context"
	"sync"
	"testing"
)

type stubResolver struct {
	mu      sync.Mutex
	known   map[string]bool
	lookups map[string]int
}

func newStubResolver(known map[string]bool) *stubResolver {
	return &stubResolver{known: known, lookups: make(map[string]int)}
}

func (r *stubResolver) Resolves(_ context.Context, domain string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups[domain]++
	return r.known[domain]
}

func TestEmailValidatorAccepts(t *testing.T) {
	resolver := newStubResolver(map[string]bool{"petmail.com.br": true})
	v := NewEmailValidator(resolver)

	for _, email := range []string{
		"ana@petmail.com.br",
		"  ANA@PETMAIL.COM.BR  ",
		"ana.silva+adote@petmail.com.br",
	} {
		if !v.IsValid(context.Background(), email) {
			t.Errorf("IsValid(%q) = false, want true", email)
		}
	}
}

func TestEmailValidatorRejectsMalformed(t *testing.T) {
	v := NewEmailValidator(nil)

	for _, email := range []string{
		"",
		"   ",
		"not-an-email",
		"missing@domain",
		"@no-local-part.com",
		"spaces in@local.com",
		"ana@domain.toolongtld",
	} {
		if v.IsValid(context.Background(), email) {
			t.Errorf("IsValid(%q) = true, want false", email)
		}
	}
}

func TestEmailValidatorRejectsFakeAndDisposable(t *testing.T) {
	v := NewEmailValidator(nil)

	for _, email := range []string{
		"test@test.com",
		"TEST@TEST.COM",
		"admin@admin.com",
		"ana@mailinator.com",
		"ana@yopmail.com",
	} {
		if v.IsValid(context.Background(), email) {
			t.Errorf("IsValid(%q) = true, want false", email)
		}
	}
}

func TestEmailValidatorRejectsUnresolvableDomain(t *testing.T) {
	resolver := newStubResolver(map[string]bool{"petmail.com.br": true})
	v := NewEmailValidator(resolver)

	if v.IsValid(context.Background(), "ana@unresolvable.example.net") {
		t.Fatal("expected unresolvable domain to be rejected")
	}
}

func TestEmailValidatorMemoizesResolution(t *testing.T) {
	resolver := newStubResolver(map[string]bool{"petmail.com.br": true})
	v := NewEmailValidator(resolver)

	for i := 0; i < 3; i++ {
		if !v.IsValid(context.Background(), "ana@petmail.com.br") {
			t.Fatal("expected valid email")
		}
	}

	resolver.mu.Lock()
	defer resolver.mu.Unlock()
	if resolver.lookups["petmail.com.br"] != 1 {
		t.Fatalf("resolver consulted %d times, want 1", resolver.lookups["petmail.com.br"])
	}
}

func TestNilResolverSkipsResolution(t *testing.T) {
	v := NewEmailValidator(nil)

	if !v.IsValid(context.Background(), "ana@any-offline-domain.org") {
		t.Fatal("nil resolver should accept structurally valid addresses")
	}
}
