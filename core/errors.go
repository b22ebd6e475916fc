package core

import "fmt"

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）
//
// 错误分级：除配置校验外全部可恢复——推荐查询永远不向调用方抛错，
// 降级为空结果加一条日志。
type DomainError struct {
	Code    string // 错误代码（如 "EMPTY_CATALOG", "ITEM_NOT_FOUND"）
	Message string // 错误消息
	Module  string // 模块名称（如 "model", "index", "cache"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError 创建新的领域错误。
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// GetDomainError 获取 DomainError，如果不是则返回 nil。
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// 错误代码常量
const (
	ErrorCodeEmptyCatalog     = "EMPTY_CATALOG"     // 目录为空，无法拟合模型
	ErrorCodeItemNotFound     = "ITEM_NOT_FOUND"    // 查询的图书不在已拟合语料中
	ErrorCodeCachePersistence = "CACHE_PERSISTENCE" // 快照保存/加载失败
	ErrorCodeInvalidConfig    = "INVALID_CONFIG"    // 配置非法，仅在启动期致命
)

// 模块名称常量
const (
	ModuleModel   = "model"
	ModuleIndex   = "index"
	ModuleCache   = "cache"
	ModuleConfig  = "config"
	ModuleStore   = "store"
	ModuleLibrary = "library"
)

// ErrEmptyCatalog 构造"目录为空"错误。
// 可恢复：调用方把它当作"暂无推荐"，不是崩溃。
func ErrEmptyCatalog(module string) *DomainError {
	return NewDomainError(module, ErrorCodeEmptyCatalog, "catalog is empty, nothing to fit")
}

// ErrItemNotFound 构造"图书不在语料中"错误。
// 可恢复：查询方降级为空结果。
func ErrItemNotFound(module string, bookID int64) *DomainError {
	return NewDomainError(module, ErrorCodeItemNotFound,
		fmt.Sprintf("book %d not found in fitted corpus", bookID))
}

// ErrCachePersistence 构造快照持久化错误。
// 可恢复：触发内存重建，永不致命。
func ErrCachePersistence(module, message string) *DomainError {
	return NewDomainError(module, ErrorCodeCachePersistence, message)
}

// ErrInvalidConfig 构造配置错误。仅在启动校验阶段允许致命。
func ErrInvalidConfig(message string) *DomainError {
	return NewDomainError(ModuleConfig, ErrorCodeInvalidConfig, message)
}

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsEmptyCatalog 检查错误是否为 EMPTY_CATALOG。
func IsEmptyCatalog(err error) bool { return hasCode(err, ErrorCodeEmptyCatalog) }

// IsItemNotFound 检查错误是否为 ITEM_NOT_FOUND。
func IsItemNotFound(err error) bool { return hasCode(err, ErrorCodeItemNotFound) }

// IsCachePersistence 检查错误是否为 CACHE_PERSISTENCE。
func IsCachePersistence(err error) bool { return hasCode(err, ErrorCodeCachePersistence) }

// IsInvalidConfig 检查错误是否为 INVALID_CONFIG。
func IsInvalidConfig(err error) bool { return hasCode(err, ErrorCodeInvalidConfig) }
