package security

import (
	"errors"
	"testing"
)

func TestDefaultPasswordValidator(t *testing.T) {
	validator := DefaultPasswordValidator(8, 2)

	if err := validator.Validate("curious-otter-42"); err != nil {
		t.Fatalf("expected strong password to pass, got %v", err)
	}

	var violation *PasswordValidationError

	if err := validator.Validate("short"); !errors.As(err, &violation) {
		t.Fatalf("expected PasswordValidationError, got %v", err)
	} else if violation.Code != "min_length" {
		t.Fatalf("expected min_length violation, got %s", violation.Code)
	}

	if err := validator.Validate("password"); !errors.As(err, &violation) {
		t.Fatalf("expected PasswordValidationError, got %v", err)
	} else if violation.Code != "weak_password" {
		t.Fatalf("expected weak_password violation, got %s", violation.Code)
	}
}

func TestRequirePasswordStrengthRuleDisabled(t *testing.T) {
	rule := RequirePasswordStrengthRule(0)
	if err := rule.Validate("aaa"); err != nil {
		t.Fatalf("expected disabled strength rule to pass, got %v", err)
	}
}

func TestPasswordValidatorStopsAtFirstViolation(t *testing.T) {
	calls := 0
	failing := PasswordRuleFunc(func(string) error {
		return &PasswordValidationError{Code: "first", Message: "first rule failed"}
	})
	counting := PasswordRuleFunc(func(string) error {
		calls++
		return nil
	})

	validator := NewPasswordValidator(failing, counting)
	if err := validator.Validate("anything"); err == nil {
		t.Fatal("expected validation error")
	}
	if calls != 0 {
		t.Fatalf("expected later rules to be skipped, got %d calls", calls)
	}
}
