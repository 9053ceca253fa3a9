// Package user はプロフィールの取得・更新・パスワード変更・退会を提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/repository"
	"github.com/hitoshi/taskman/internal/security"
)

// Service はユーザープロフィールのビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	hasher   *security.PasswordHasher
}

// NewService はServiceを生成する。
func NewService(userRepo repository.UserRepository, hasher *security.PasswordHasher) *Service {
	return &Service{
		userRepo: userRepo,
		hasher:   hasher,
	}
}

// UpdateProfileInput はプロフィールの部分更新の入力。nilのフィールドは変更しない。
type UpdateProfileInput struct {
	Email    *string
	Username *string
	Password *string
}

func (in UpdateProfileInput) isEmpty() bool {
	return in.Email == nil && in.Username == nil && in.Password == nil
}

// UpdateProfile は認証済みユーザー自身のプロフィールを部分更新する。
// 登録時と同じポリシー検証と重複チェックを再適用する。
func (s *Service) UpdateProfile(ctx context.Context, user *model.User, in UpdateProfileInput) (*model.User, error) {
	if in.isEmpty() {
		return nil, model.NewInvalidRequestError("更新対象のフィールドが指定されていません")
	}

	updated := *user

	if in.Email != nil {
		email, apiErr := security.ValidateEmail(*in.Email)
		if apiErr != nil {
			return nil, apiErr
		}
		if email != user.Email {
			existing, err := s.userRepo.FindByEmail(ctx, email)
			if err != nil {
				return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
			}
			if existing != nil {
				return nil, model.NewEmailTakenError()
			}
		}
		updated.Email = email
	}

	if in.Username != nil {
		username, apiErr := security.ValidateUsername(*in.Username)
		if apiErr != nil {
			return nil, apiErr
		}
		if username != user.Username {
			existing, err := s.userRepo.FindByUsername(ctx, username)
			if err != nil {
				return nil, fmt.Errorf("failed to check username uniqueness: %w", err)
			}
			if existing != nil {
				return nil, model.NewUsernameTakenError()
			}
		}
		updated.Username = username
	}

	if in.Password != nil {
		password, apiErr := security.ValidatePassword(*in.Password)
		if apiErr != nil {
			return nil, apiErr
		}
		hash, err := s.hasher.Hash(password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		updated.PasswordHash = hash
	}

	if err := s.userRepo.Update(ctx, &updated); err != nil {
		// 重複チェック通過後に他リクエストが同じ値で先に書き込んだ場合
		if repository.IsUniqueViolation(err, "idx_users_email") {
			return nil, model.NewEmailTakenError()
		}
		if repository.IsUniqueViolation(err, "idx_users_username") {
			return nil, model.NewUsernameTakenError()
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	slog.Info("profile updated", "user_id", updated.ID)
	return &updated, nil
}

// ChangePassword は現在のパスワードを確認したうえでパスワードを変更する。
// 新パスワードには登録時と同じポリシーを適用する。
func (s *Service) ChangePassword(ctx context.Context, user *model.User, currentPassword, newPassword, confirmPassword string) error {
	if newPassword != confirmPassword {
		return model.NewInvalidFieldError("confirm_password", "新しいパスワードと確認用パスワードが一致しません")
	}

	if !s.hasher.Check(currentPassword, user.PasswordHash) {
		return model.NewInvalidFieldError("current_password", "現在のパスワードが正しくありません")
	}

	validated, apiErr := security.ValidatePassword(newPassword)
	if apiErr != nil {
		return apiErr
	}

	hash, err := s.hasher.Hash(validated)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	updated := *user
	updated.PasswordHash = hash
	if err := s.userRepo.Update(ctx, &updated); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	slog.Info("password changed", "user_id", user.ID)
	return nil
}

// DeleteAccount は認証済みユーザー自身のアカウントを削除する。
// 所有するタスクはデータベースのCASCADEで一括削除される。
func (s *Service) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.userRepo.DeleteByID(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	slog.Info("account deleted", "user_id", userID)
	return nil
}
