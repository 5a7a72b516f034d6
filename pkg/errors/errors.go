package errors

import (
	"errors"
	"fmt"
)

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// Kind 领域错误类别
// 调用方依据 Kind 区分处理路径，Handler 层据此映射 HTTP 状态码
type Kind int

const (
	KindNotFound          Kind = iota + 1 // 实体不存在或已软删除
	KindInvalidTransition                 // 状态机不允许的状态转换
	KindInvalidState                      // 当前状态不满足操作前置条件
	KindConflict                          // 唯一性冲突或存在依赖数据
	KindDuplicateReading                  // 同一轮次同一电表重复抄表
	KindValidation                        // 边界层输入校验失败
)

// DomainError 业务领域错误
// Code 为业务错误码（与 API 文档约定一致），Message 为用户可读信息
type DomainError struct {
	Kind    Kind
	Code    int
	Message string
}

func (e *DomainError) Error() string { return e.Message }

// NotFound 构造"不存在"错误
func NotFound(code int, message string) *DomainError {
	return &DomainError{Kind: KindNotFound, Code: code, Message: message}
}

// InvalidTransition 构造非法状态转换错误，错误信息必须同时包含源状态与目标状态
func InvalidTransition(code int, from, to string) *DomainError {
	return &DomainError{
		Kind:    KindInvalidTransition,
		Code:    code,
		Message: fmt.Sprintf("无法从 %q 状态转换到 %q 状态", from, to),
	}
}

// InvalidState 构造前置状态不满足错误
func InvalidState(code int, message string) *DomainError {
	return &DomainError{Kind: KindInvalidState, Code: code, Message: message}
}

// Conflict 构造冲突错误
func Conflict(code int, message string) *DomainError {
	return &DomainError{Kind: KindConflict, Code: code, Message: message}
}

// DuplicateReading 构造重复抄表错误
func DuplicateReading(code int, message string) *DomainError {
	return &DomainError{Kind: KindDuplicateReading, Code: code, Message: message}
}

// Validation 构造输入校验错误
func Validation(code int, message string) *DomainError {
	return &DomainError{Kind: KindValidation, Code: code, Message: message}
}

// AsDomain 提取 DomainError，非领域错误返回 nil
func AsDomain(err error) *DomainError {
	var de *DomainError
	if errors.As(err, &de) {
		return de
	}
	return nil
}

// IsKind 判断错误是否为指定类别的领域错误
func IsKind(err error, kind Kind) bool {
	de := AsDomain(err)
	return de != nil && de.Kind == kind
}
