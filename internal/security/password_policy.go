// Package security は認証情報のポリシー検証とハッシュ化を提供する。
package security

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hitoshi/taskman/internal/model"
)

// usernamePattern はユーザー名の形式: 英字で始まり、英数字とアンダースコアのみ。
var usernamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// reservedUsernames はシステム予約語。小文字正規化後の値と比較する。
var reservedUsernames = map[string]bool{
	"admin":  true,
	"root":   true,
	"system": true,
}

// weakPasswords は既知の脆弱パスワードのデナイリスト。小文字正規化後の値と比較する。
var weakPasswords = map[string]bool{
	"password123": true,
	"12345678":    true,
	"qwerty123":   true,
}

// passwordSymbols はパスワードに要求する記号の集合。
const passwordSymbols = `!@#$%^&*(),.?":{}|<>`

// ユーザー名・パスワードの長さ制限
const (
	usernameMinLength = 3
	usernameMaxLength = 50
	passwordMinLength = 8
	passwordMaxLength = 100
)

// ValidateUsername はユーザー名を検証し、小文字に正規化して返す。
// 保存および比較にはこの正規化済みの値のみを使用する。
func ValidateUsername(raw string) (string, *model.APIError) {
	// 長さは文字数（バイト数ではない）で数える
	if n := utf8.RuneCountInString(raw); n < usernameMinLength || n > usernameMaxLength {
		return "", model.NewInvalidUsernameError()
	}
	if !usernamePattern.MatchString(raw) {
		return "", model.NewInvalidUsernameError()
	}

	normalized := strings.ToLower(raw)
	if reservedUsernames[normalized] {
		return "", model.NewReservedUsernameError(raw)
	}

	return normalized, nil
}

// ValidatePassword はパスワードが最低要件を満たすか検証する。
// 満たさない場合は不足している条件を理由としたエラーを返す。
// これは強度スコアではなく最低限の構造チェックであり、
// 要件を満たすパスワードをそのまま返す。
func ValidatePassword(raw string) (string, *model.APIError) {
	if utf8.RuneCountInString(raw) < passwordMinLength {
		return "", model.NewWeakPasswordError("8文字以上が必要です")
	}
	if utf8.RuneCountInString(raw) > passwordMaxLength {
		return "", model.NewWeakPasswordError("100文字以下にしてください")
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range raw {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		}
	}

	switch {
	case !hasUpper:
		return "", model.NewWeakPasswordError("大文字が含まれていません")
	case !hasLower:
		return "", model.NewWeakPasswordError("小文字が含まれていません")
	case !hasDigit:
		return "", model.NewWeakPasswordError("数字が含まれていません")
	case !hasSymbol:
		return "", model.NewWeakPasswordError("記号が含まれていません")
	}

	if weakPasswords[strings.ToLower(raw)] {
		return "", model.NewWeakPasswordError("よく使われるパスワードは使用できません")
	}

	return raw, nil
}
