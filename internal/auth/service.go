package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/repository"
	"github.com/hitoshi/taskman/internal/security"
)

// MetricsRecorder は認証イベントのメトリクス記録に必要なインターフェース。
type MetricsRecorder interface {
	RecordUserRegistered()
	RecordLoginSuccess()
	RecordLoginFailure()
}

// Service は登録・ログイン・トークン認証のビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	hasher   *security.PasswordHasher
	tokens   *TokenService
	metrics  MetricsRecorder
}

// NewService はServiceを生成する。
func NewService(
	userRepo repository.UserRepository,
	hasher *security.PasswordHasher,
	tokens *TokenService,
	metrics MetricsRecorder,
) *Service {
	return &Service{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		metrics:  metrics,
	}
}

// Register は新規ユーザーを登録する。
// メール・ユーザー名・パスワードのポリシー検証と重複チェックをすべて通過してから
// ハッシュ化・永続化を行う（検証失敗時は一切書き込まない）。
func (s *Service) Register(ctx context.Context, email, username, password string) (*model.User, error) {
	validEmail, apiErr := security.ValidateEmail(email)
	if apiErr != nil {
		return nil, apiErr
	}

	normalized, apiErr := security.ValidateUsername(username)
	if apiErr != nil {
		return nil, apiErr
	}

	validPassword, apiErr := security.ValidatePassword(password)
	if apiErr != nil {
		return nil, apiErr
	}

	// 重複チェック。メールは大文字小文字を区別し、ユーザー名は正規化済みの値で比較する。
	existing, err := s.userRepo.FindByEmail(ctx, validEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if existing != nil {
		return nil, model.NewEmailTakenError()
	}

	existing, err = s.userRepo.FindByUsername(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to check username uniqueness: %w", err)
	}
	if existing != nil {
		return nil, model.NewUsernameTakenError()
	}

	hash, err := s.hasher.Hash(validPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Email:        validEmail,
		Username:     normalized,
		PasswordHash: hash,
		IsActive:     true,
		IsSuperuser:  false,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// チェックとINSERTの間に並行リクエストが滑り込んだ場合は一意制約で検出する
		if repository.IsUniqueViolation(err, "idx_users_email") {
			return nil, model.NewEmailTakenError()
		}
		if repository.IsUniqueViolation(err, "idx_users_username") {
			return nil, model.NewUsernameTakenError()
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.RecordUserRegistered()
	slog.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Login は認証情報を検証しベアラートークンを発行する。
// ユーザー不存在・パスワード不一致・無効化済みアカウントのいずれも
// 同一のUnauthorizedエラーを返し、呼び出し側から区別できないようにする。
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(username))

	user, err := s.userRepo.FindByUsername(ctx, normalized)
	if err != nil {
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	if user == nil || !s.hasher.Check(password, user.PasswordHash) || !user.IsActive {
		s.metrics.RecordLoginFailure()
		return "", model.NewUnauthorizedError()
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.metrics.RecordLoginSuccess()
	slog.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return token, nil
}

// Authenticate はベアラートークンを検証し、対応する有効なアカウントを返す。
// トークンが有効でもアカウントが存在しない、または無効化済みの場合は認証失敗とする。
// 保護されたすべての操作で毎回実行され、キャッシュは持たない。
func (s *Service) Authenticate(ctx context.Context, tokenString string) (*model.User, error) {
	subject, err := s.tokens.Verify(tokenString)
	if err != nil {
		return nil, model.NewUnauthorizedError()
	}

	user, err := s.userRepo.FindByUsername(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, model.NewUnauthorizedError()
	}

	return user, nil
}
