package security

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher はbcryptによるパスワードの一方向ハッシュ化と照合を提供する。
// ソルトはハッシュごとにbcryptが内部生成する。
// ValidatePasswordを通過したパスワードのみを渡すこと。
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher はPasswordHasherを生成する。
// costがbcryptの有効範囲外の場合はデフォルトコストを使用する。
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// digest はパスワードをSHA-256で縮約しbase64エンコードして返す。
// bcryptは72バイトを超える入力を拒否するため、ポリシー上限の100文字まで
// 受け付けられるよう固定44バイトに縮約してから渡す。
func digest(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

// Hash はパスワードのbcryptハッシュを生成する。
func (h *PasswordHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword(digest(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Check はパスワードとハッシュの一致を検証する。
// 不一致・ハッシュ形式不正のいずれでもfalseを返し、エラーは返さない。
func (h *PasswordHasher) Check(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), digest(password)) == nil
}
