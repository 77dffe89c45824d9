package security

import (
	"fmt"
	"strings"
	"unicode"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

// PasswordValidationError represents a single password policy violation.
type PasswordValidationError struct {
	Code    string
	Message string
}

// Error implements error for PasswordValidationError.
func (e *PasswordValidationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// PasswordRule validates a password according to a specific policy rule.
type PasswordRule interface {
	Validate(password string) error
}

// PasswordRuleFunc adapts a function to be used as a PasswordRule.
type PasswordRuleFunc func(password string) error

// Validate executes the underlying rule function.
func (f PasswordRuleFunc) Validate(password string) error {
	return f(password)
}

// PasswordValidator applies a sequence of password rules.
type PasswordValidator struct {
	rules []PasswordRule
}

// NewPasswordValidator constructs a validator with the provided rules.
func NewPasswordValidator(rules ...PasswordRule) *PasswordValidator {
	copied := make([]PasswordRule, len(rules))
	copy(copied, rules)
	return &PasswordValidator{rules: copied}
}

// Validate executes all rules and returns the first encountered violation.
func (v *PasswordValidator) Validate(password string) error {
	if v == nil {
		return fmt.Errorf("password validator not configured")
	}
	for _, rule := range v.rules {
		if err := rule.Validate(password); err != nil {
			return err
		}
	}
	return nil
}

// IsValid reports whether the password satisfies every rule. It is a pure
// predicate: blank input is false, and no rule may panic.
func (v *PasswordValidator) IsValid(password string) bool {
	if strings.TrimSpace(password) == "" {
		return false
	}
	return v.Validate(password) == nil
}

const (
	minPasswordLength   = 8
	maxPasswordLength   = 128
	minCharacterClasses = 3
)

// commonPasswords holds values rejected regardless of length or complexity.
// Membership is checked case-insensitively.
var commonPasswords = map[string]struct{}{
	"password":    {},
	"password1":   {},
	"password123": {},
	"12345678":    {},
	"123456789":   {},
	"1234567890":  {},
	"qwerty123":   {},
	"qwertyuiop":  {},
	"iloveyou1":   {},
	"admin123":    {},
	"welcome1":    {},
	"abc12345":    {},
	"senha1234":   {},
	"mudar123":    {},
}

// LengthRule ensures the password length falls within [min, max] runes.
func LengthRule(min, max int) PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		length := len([]rune(password))
		if length < min || length > max {
			return &PasswordValidationError{
				Code:    "length",
				Message: fmt.Sprintf("password must be between %d and %d characters long", min, max),
			}
		}
		return nil
	})
}

// CharacterClassesRule ensures the password contains characters from at
// least min distinct classes (upper, lower, digit, special). Presence
// anywhere in the string counts.
func CharacterClassesRule(min int) PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		if min <= 0 {
			return nil
		}

		var hasUpper, hasLower, hasDigit, hasSpecial bool
		for _, r := range password {
			switch {
			case unicode.IsUpper(r):
				hasUpper = true
			case unicode.IsLower(r):
				hasLower = true
			case unicode.IsDigit(r):
				hasDigit = true
			case unicode.IsSymbol(r) || unicode.IsPunct(r):
				hasSpecial = true
			}
		}

		classes := 0
		for _, present := range []bool{hasUpper, hasLower, hasDigit, hasSpecial} {
			if present {
				classes++
			}
		}

		if classes < min {
			return &PasswordValidationError{
				Code:    "character_classes",
				Message: fmt.Sprintf("password must include at least %d character types", min),
			}
		}
		return nil
	})
}

// CommonPasswordRule rejects passwords found in the fixed common-password set.
func CommonPasswordRule() PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		if _, found := commonPasswords[strings.ToLower(password)]; found {
			return &PasswordValidationError{
				Code:    "common_password",
				Message: "password is too common; choose a less predictable value",
			}
		}
		return nil
	})
}

// DefaultPasswordValidator returns the service password policy: length in
// [8, 128], at least 3 of 4 character classes, and no common passwords.
func DefaultPasswordValidator() *PasswordValidator {
	return NewPasswordValidator(
		LengthRule(minPasswordLength, maxPasswordLength),
		CharacterClassesRule(minCharacterClasses),
		CommonPasswordRule(),
	)
}

// StrengthScore reports the zxcvbn score (0-4) for the password. The score
// is advisory: it is logged and surfaced to clients but never rejects a
// password on its own.
func StrengthScore(password string, userInputs ...string) int {
	if password == "" {
		return 0
	}
	return zxcvbn.PasswordStrength(password, userInputs).Score
}
