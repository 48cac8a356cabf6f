package core

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）
//
// 错误分层（与传播策略对应）：
//   - 配置错误（INVALID_CONFIG）：启动期致命，绝不出现在请求期
//   - 输入错误（INVALID_INPUT）：仅顶层输入违约时返回（如 Query 缺失）
//   - 打分级失败：不是错误 —— 相应子分记 0，单个坏候选绝不拖垮整页结果
//   - 埋点写失败：记日志后丢弃，绝不向调用方传播
type DomainError struct {
	Code    string // 错误代码（如 "INVALID_CONFIG", "NOT_FOUND"）
	Message string // 错误消息
	Module  string // 模块名称（如 "config", "experiment"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// IsDomainError 检查错误是否为 DomainError 类型
func IsDomainError(err error) bool {
	if err == nil {
		return false
	}
	_, ok := err.(*DomainError)
	return ok
}

// GetDomainError 获取 DomainError，如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound      = "NOT_FOUND"      // 资源不存在
	ErrorCodeNotSupported  = "NOT_SUPPORTED"  // 操作不支持
	ErrorCodeUnavailable   = "UNAVAILABLE"    // 服务不可用
	ErrorCodeInvalidInput  = "INVALID_INPUT"  // 输入无效
	ErrorCodeInvalidConfig = "INVALID_CONFIG" // 配置无效（启动期致命）
	ErrorCodeInternalError = "INTERNAL_ERROR" // 内部错误
)

// 模块名称常量
const (
	ModuleConfig     = "config"     // 配置模块
	ModuleRank       = "rank"       // 排序模块
	ModuleScorer     = "scorer"     // 打分模块
	ModuleExperiment = "experiment" // 实验模块
	ModuleStore      = "store"      // 存储模块
	ModuleProfile    = "profile"    // 画像模块
	ModuleRule       = "rule"       // 规则模块
)

// IsInvalidConfig 检查错误是否为配置错误
func IsInvalidConfig(err error) bool {
	if err == nil {
		return false
	}
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeInvalidConfig
	}
	return false
}

// IsInvalidInput 检查错误是否为输入违约
func IsInvalidInput(err error) bool {
	if err == nil {
		return false
	}
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeInvalidInput
	}
	return false
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}

// IsNotSupported 检查错误是否为 NOT_SUPPORTED
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotSupported
	}
	return false
}

// ErrMissingQuery 表示排序请求缺少 QueryContext —— 这是唯一会被拒绝的顶层输入。
// 空候选列表是合法的"无结果"，User/Geo 缺失走优雅降级，均不产生错误。
var ErrMissingQuery = NewDomainError(ModuleRank, ErrorCodeInvalidInput, "rank: query context is required")
