package security

import (
	"strings"
	"testing"

	"github.com/hitoshi/taskman/internal/model"
)

func TestValidateUsername_Valid(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"alice", "alice"},
		{"Alice", "alice"},
		{"Bob_42", "bob_42"},
		{"x_1", "x_1"},
		{"A" + strings.Repeat("b", 49), "a" + strings.Repeat("b", 49)},
	}

	for _, tt := range tests {
		got, apiErr := ValidateUsername(tt.input)
		if apiErr != nil {
			t.Errorf("ValidateUsername(%q) returned error: %v", tt.input, apiErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ValidateUsername(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestValidateUsername_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantCode string
	}{
		{"too short", "ab", model.ErrCodeInvalidUsername},
		{"too long", "a" + strings.Repeat("b", 50), model.ErrCodeInvalidUsername},
		{"multibyte letters", "たなか太郎", model.ErrCodeInvalidUsername},
		{"starts with digit", "1alice", model.ErrCodeInvalidUsername},
		{"starts with underscore", "_alice", model.ErrCodeInvalidUsername},
		{"contains hyphen", "ali-ce", model.ErrCodeInvalidUsername},
		{"contains space", "ali ce", model.ErrCodeInvalidUsername},
		{"empty", "", model.ErrCodeInvalidUsername},
		{"reserved admin", "admin", model.ErrCodeReservedUsername},
		{"reserved uppercase", "Admin", model.ErrCodeReservedUsername},
		{"reserved root", "ROOT", model.ErrCodeReservedUsername},
		{"reserved system", "system", model.ErrCodeReservedUsername},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, apiErr := ValidateUsername(tt.input)
			if apiErr == nil {
				t.Fatalf("ValidateUsername(%q) = nil error, want code %s", tt.input, tt.wantCode)
			}
			if apiErr.Code != tt.wantCode {
				t.Errorf("ValidateUsername(%q) code = %s, want %s", tt.input, apiErr.Code, tt.wantCode)
			}
		})
	}
}

func TestValidatePassword_Valid(t *testing.T) {
	tests := []string{
		"Secur3!pass",
		"Abcdef1!",
		"Str0ng,Password",
		`P@ss"word1`,
		"Xy9<" + strings.Repeat("a", 96),
		// 長さは文字数で数える: 100文字（300バイト超）でも受理される
		"Aa1!" + strings.Repeat("あ", 96),
	}

	for _, input := range tests {
		got, apiErr := ValidatePassword(input)
		if apiErr != nil {
			t.Errorf("ValidatePassword(%q) returned error: %v", input, apiErr)
			continue
		}
		if got != input {
			t.Errorf("ValidatePassword(%q) = %q, want unchanged input", input, got)
		}
	}
}

func TestValidatePassword_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"too short", "Ab1!xyz"},
		{"too long", "Ab1!" + strings.Repeat("a", 97)},
		{"too long in runes", "Ab1!" + strings.Repeat("あ", 97)},
		{"no uppercase", "secur3!pass"},
		{"no lowercase", "SECUR3!PASS"},
		{"no digit", "Secure!pass"},
		{"no symbol", "Secur3pass"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, apiErr := ValidatePassword(tt.input)
			if apiErr == nil {
				t.Fatalf("ValidatePassword(%q) = nil error, want WEAK_PASSWORD", tt.input)
			}
			if apiErr.Code != model.ErrCodeWeakPassword {
				t.Errorf("code = %s, want %s", apiErr.Code, model.ErrCodeWeakPassword)
			}
		})
	}
}

func TestValidatePassword_DenylistedPasswords(t *testing.T) {
	// デナイリスト照合は大文字小文字を無視する
	for _, input := range []string{"password123", "Password123", "QWERTY123"} {
		if _, apiErr := ValidatePassword(input); apiErr == nil {
			t.Errorf("ValidatePassword(%q) = nil error, want rejection", input)
		}
	}
}
