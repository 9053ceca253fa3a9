// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, task, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeTaskNotFound     = "TASK_NOT_FOUND"
	ErrCodeUserNotFound     = "USER_NOT_FOUND"
	ErrCodeEmailTaken       = "EMAIL_TAKEN"
	ErrCodeUsernameTaken    = "USERNAME_TAKEN"
	ErrCodeInvalidEmail     = "INVALID_EMAIL"
	ErrCodeInvalidUsername  = "INVALID_USERNAME"
	ErrCodeReservedUsername = "RESERVED_USERNAME"
	ErrCodeWeakPassword     = "WEAK_PASSWORD"
	ErrCodeInvalidTitle     = "INVALID_TITLE"
	ErrCodeInvalidField     = "INVALID_FIELD"
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
)

// NewUnauthorizedError は認証失敗エラーを生成する。
// ユーザー不存在・パスワード不一致・無効化済みアカウントのいずれでも
// 同一のエラーを返し、外部からの列挙攻撃を防ぐ。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証に失敗しました。",
		Category: "auth",
		Action:   "認証情報を確認してログインし直してください。",
	}
}

// NewForbiddenError は認可失敗エラーを生成する。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "このリソースへのアクセス権限がありません。",
		Category: "auth",
		Action:   "自分が所有するリソースのみ操作できます。",
	}
}

// NewTaskNotFoundError はタスク未検出エラーを生成する。
func NewTaskNotFoundError(taskID string) *APIError {
	return &APIError{
		Code:     ErrCodeTaskNotFound,
		Message:  fmt.Sprintf("指定されたタスクが見つかりません: %s", taskID),
		Category: "task",
		Action:   "タスクIDを確認してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewEmailTakenError はメールアドレス重複エラーを生成する。
func NewEmailTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "validation",
		Action:   "別のメールアドレスを使用するか、ログインしてください。",
	}
}

// NewUsernameTakenError はユーザー名重複エラーを生成する。
func NewUsernameTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeUsernameTaken,
		Message:  "このユーザー名は既に使用されています。",
		Category: "validation",
		Action:   "別のユーザー名を選択してください。",
	}
}

// NewInvalidEmailError は無効なメールアドレスエラーを生成する。
func NewInvalidEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidEmail,
		Message:  "メールアドレスの形式が正しくありません。",
		Category: "validation",
		Action:   "正しいメールアドレスを入力してください。",
	}
}

// NewInvalidUsernameError は無効なユーザー名エラーを生成する。
func NewInvalidUsernameError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidUsername,
		Message:  "ユーザー名は英字で始まり、英数字とアンダースコアのみ使用できます（3〜50文字）。",
		Category: "validation",
		Action:   "ユーザー名の形式を確認してください。",
	}
}

// NewReservedUsernameError は予約語ユーザー名エラーを生成する。
func NewReservedUsernameError(username string) *APIError {
	return &APIError{
		Code:     ErrCodeReservedUsername,
		Message:  fmt.Sprintf("ユーザー名 %q は予約されています。", username),
		Category: "validation",
		Action:   "別のユーザー名を選択してください。",
	}
}

// NewWeakPasswordError は脆弱なパスワードエラーを生成する。
// reasonには不足している文字種などの具体的な理由を指定する。
func NewWeakPasswordError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeWeakPassword,
		Message:  fmt.Sprintf("パスワードが要件を満たしていません: %s", reason),
		Category: "validation",
		Action:   "大文字・小文字・数字・記号を含む8〜100文字のパスワードを設定してください。",
	}
}

// NewInvalidTitleError は無効なタイトルエラーを生成する。
func NewInvalidTitleError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidTitle,
		Message:  fmt.Sprintf("タイトルが正しくありません: %s", reason),
		Category: "validation",
		Action:   "タイトルは空白以外の文字を含む1〜200文字で入力してください。",
	}
}

// NewInvalidFieldError はフィールド値が不正な場合のエラーを生成する。
func NewInvalidFieldError(field, reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidField,
		Message:  fmt.Sprintf("%s の値が正しくありません: %s", field, reason),
		Category: "validation",
		Action:   "入力値を確認してください。",
	}
}

// NewInvalidRequestError はリクエスト形式が不正な場合のエラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエストが正しくありません: %s", reason),
		Category: "validation",
		Action:   "リクエスト内容を確認してください。",
	}
}
