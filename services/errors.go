// file: services/errors.go
package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAuthenticated 没有有效会话，不会发起任何数据库请求
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrEmptyInput 空 flag，本地提示即可
	ErrEmptyInput = errors.New("empty flag")
	// ErrChallengeNotFound 前端引用无法映射到题目，属于数据一致性问题而不是答错
	ErrChallengeNotFound = errors.New("challenge not found")
	// ErrDataMismatch 会话内缓存与数据库不一致
	ErrDataMismatch = errors.New("challenge data mismatch")
	// ErrPersistence 数据库或网络失败，用 errors.Is 判断
	ErrPersistence = errors.New("persistence error")
	// ErrDuplicateHintUsage 重复记录提示使用，按成功处理
	ErrDuplicateHintUsage = errors.New("hint usage already recorded")
)

// PersistenceError 记录失败的操作和底层错误
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

func persistErr(op string, err error) error {
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
