package security

import (
	"net/mail"

	"github.com/hitoshi/taskman/internal/model"
)

// ValidateEmail はメールアドレスの形式を検証する。
// 表示名付き形式（"Name <a@b>"）は受け付けず、アドレス単体のみ許可する。
// メールアドレスは大文字小文字を区別して扱うため、正規化は行わない。
func ValidateEmail(raw string) (string, *model.APIError) {
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return "", model.NewInvalidEmailError()
	}
	return raw, nil
}
