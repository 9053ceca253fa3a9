// Package auth は認証情報の交換とベアラートークンの発行・検証を提供する。
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// トークン検証の失敗理由。
var (
	// ErrTokenExpired は有効期限切れのトークン。
	ErrTokenExpired = errors.New("token is expired")
	// ErrTokenInvalidSignature は署名が一致しないトークン。
	ErrTokenInvalidSignature = errors.New("token signature is invalid")
	// ErrTokenMalformed は形式が不正なトークン。
	ErrTokenMalformed = errors.New("token is malformed")
)

// TokenService は署名付きベアラートークンの発行と検証を行う。
// 署名鍵は起動時に1回注入され、以後変更されない。
// サーバー側にトークンの状態を持たないため、自然失効前の失効は不可能（設計上の制約）。
type TokenService struct {
	signingKey []byte
	ttl        time.Duration
}

// NewTokenService はTokenServiceを生成する。
// ttlは発行するトークンの有効期間を指定する。
func NewTokenService(signingKey []byte, ttl time.Duration) *TokenService {
	return &TokenService{
		signingKey: signingKey,
		ttl:        ttl,
	}
}

// Issue は正規化済みユーザー名をsubjectとするHS256署名付きトークンを発行する。
// 有効期限は発行時刻 + TTLの絶対時刻。
func (ts *TokenService) Issue(subject string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ts.ttl)),
	})

	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify はトークンを検証し、subject（正規化済みユーザー名）を返す。
// 署名検証を通過していないクレームは一切信用しない。
func (ts *TokenService) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		// alg none等へのすり替えを防ぐため、HMAC以外の署名方式を拒否する
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	})

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", ErrTokenInvalidSignature
		default:
			return "", ErrTokenMalformed
		}
	}

	if !token.Valid || claims.Subject == "" {
		return "", ErrTokenMalformed
	}

	return claims.Subject, nil
}
