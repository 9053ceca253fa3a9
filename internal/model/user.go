// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーのアカウントを表す。
// Usernameは小文字に正規化された状態で保持・比較する。
// PasswordHashはbcryptハッシュのみを保持し、平文は永続化しない。
type User struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string
	IsActive     bool
	IsSuperuser  bool
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}
