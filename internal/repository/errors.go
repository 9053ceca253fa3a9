package repository

import (
	"errors"

	"github.com/lib/pq"
)

// uniqueViolationCode はPostgreSQLの一意制約違反のSQLSTATE。
const uniqueViolationCode = "23505"

// IsUniqueViolation はエラーが指定制約の一意制約違反かどうかを判定する。
// constraintが空の場合は制約名を問わず一意制約違反全般に一致する。
// チェック後のINSERTが並行リクエストと競合した場合の判別に使用する。
func IsUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if pqErr.Code != uniqueViolationCode {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}
