package task

import (
	"strings"
	"unicode/utf8"

	"github.com/hitoshi/taskman/internal/model"
)

const (
	titleMaxLength       = 200
	descriptionMaxLength = 1000
)

// normalizeTitle はタイトルの前後の空白を除去し、内部の連続空白を
// 単一スペースに畳み込む。正規化後に空文字または長すぎる場合はエラーを返す。
func normalizeTitle(raw string) (string, *model.APIError) {
	normalized := strings.Join(strings.Fields(raw), " ")
	if normalized == "" {
		return "", model.NewInvalidTitleError("タイトルが空です")
	}
	// 長さは文字数（バイト数ではない）で数える
	if utf8.RuneCountInString(normalized) > titleMaxLength {
		return "", model.NewInvalidTitleError("タイトルは200文字以内で入力してください")
	}
	return normalized, nil
}

// normalizeDescription は説明の前後の空白を除去する。
// 正規化後に空文字の場合はnil（未設定）に畳み込む。
func normalizeDescription(raw string) (*string, *model.APIError) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(trimmed) > descriptionMaxLength {
		return nil, model.NewInvalidFieldError("description", "説明は1000文字以内で入力してください")
	}
	return &trimmed, nil
}
