package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/cspath1/RT-Contracts-sub001/internal/dto"
	"github.com/cspath1/RT-Contracts-sub001/internal/service"
	"github.com/cspath1/RT-Contracts-sub001/pkg/response"
)

// AppointmentHandler 预约生命周期接口
type AppointmentHandler struct {
	svc service.AppointmentService
}

// NewAppointmentHandler 创建 AppointmentHandler 实例
func NewAppointmentHandler(svc service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{svc: svc}
}

// Request POST /api/v1/appointments
// 普通用户提交预约请求，落库状态为 REQUESTED
func (h *AppointmentHandler) Request(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "请求参数无效")
		return
	}

	appt, report, fieldErrs, err := h.svc.Request(c.Request.Context(), caller, &req)
	if err != nil {
		if errors.Is(err, service.ErrUnknownType) {
			response.BadRequest(c, 13001, err.Error())
			return
		}
		response.InternalError(c)
		return
	}
	if report != nil {
		writeReport(c, report)
		return
	}
	if !fieldErrs.Empty() {
		writeFieldErrors(c, fieldErrs)
		return
	}
	response.Created(c, appt)
}

// Create POST /api/v1/appointments/admin（管理员）
// 管理员直排，落库状态为 SCHEDULED
func (h *AppointmentHandler) Create(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "请求参数无效")
		return
	}

	appt, report, fieldErrs, err := h.svc.Create(c.Request.Context(), caller, &req)
	if err != nil {
		if errors.Is(err, service.ErrUnknownType) {
			response.BadRequest(c, 13001, err.Error())
			return
		}
		response.InternalError(c)
		return
	}
	if report != nil {
		writeReport(c, report)
		return
	}
	if !fieldErrs.Empty() {
		writeFieldErrors(c, fieldErrs)
		return
	}
	response.Created(c, appt)
}

// Get GET /api/v1/appointments/:id
func (h *AppointmentHandler) Get(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	appt, report, err := h.svc.Get(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		response.InternalError(c)
		return
	}
	if report != nil {
		writeReport(c, report)
		return
	}
	response.OK(c, appt)
}

// Update PUT /api/v1/appointments/:id
func (h *AppointmentHandler) Update(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "请求参数无效")
		return
	}

	appt, report, fieldErrs, err := h.svc.Update(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	if report != nil {
		writeReport(c, report)
		return
	}
	if !fieldErrs.Empty() {
		writeFieldErrors(c, fieldErrs)
		return
	}
	response.OK(c, appt)
}

// Cancel POST /api/v1/appointments/:id/cancel
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	appt, report, fieldErrs, err := h.svc.Cancel(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		response.InternalError(c)
		return
	}
	if report != nil {
		writeReport(c, report)
		return
	}
	if !fieldErrs.Empty() {
		writeFieldErrors(c, fieldErrs)
		return
	}
	response.OK(c, appt)
}

// Delete DELETE /api/v1/appointments/:id（管理员，软删除）
func (h *AppointmentHandler) Delete(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	report, err := h.svc.Delete(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		response.InternalError(c)
		return
	}
	if report != nil {
		writeReport(c, report)
		return
	}
	response.OK(c, nil)
}

// ApproveDeny PUT /api/v1/appointments/:id/decision（管理员）
func (h *AppointmentHandler) ApproveDeny(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.ApproveDenyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "请求参数无效")
		return
	}

	appt, report, fieldErrs, err := h.svc.ApproveDeny(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	if report != nil {
		writeReport(c, report)
		return
	}
	if !fieldErrs.Empty() {
		writeFieldErrors(c, fieldErrs)
		return
	}
	response.OK(c, appt)
}

// MakePublic POST /api/v1/appointments/:id/public
// 单向操作：私有转公开，公开预约不可再转回
func (h *AppointmentHandler) MakePublic(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	appt, report, fieldErrs, err := h.svc.MakePublic(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		response.InternalError(c)
		return
	}
	if report != nil {
		writeReport(c, report)
		return
	}
	if !fieldErrs.Empty() {
		writeFieldErrors(c, fieldErrs)
		return
	}
	response.OK(c, appt)
}

// ListOwn GET /api/v1/appointments?scope=future|past
func (h *AppointmentHandler) ListOwn(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.ListAppointmentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 13001, "查询参数无效")
		return
	}

	result, report, err := h.svc.ListOwn(c.Request.Context(), caller, &req)
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

// ListByUser GET /api/v1/users/:id/appointments
func (h *AppointmentHandler) ListByUser(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.ListAppointmentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 13001, "查询参数无效")
		return
	}

	result, report, err := h.svc.ListByUser(c.Request.Context(), caller, c.Param("id"), &req)
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

// ListRequested GET /api/v1/appointments/requested（管理员审核队列）
func (h *AppointmentHandler) ListRequested(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 13001, "分页参数无效")
		return
	}

	result, report, err := h.svc.ListRequested(c.Request.Context(), caller, &page)
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

// ListByTelescope GET /api/v1/telescopes/:id/appointments
func (h *AppointmentHandler) ListByTelescope(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.TelescopeWindowRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 13001, "查询参数无效")
		return
	}

	items, report, fieldErrs, err := h.svc.ListByTelescope(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	if report != nil {
		writeReport(c, report)
		return
	}
	if !fieldErrs.Empty() {
		writeFieldErrors(c, fieldErrs)
		return
	}
	response.OK(c, items)
}

// Search GET /api/v1/appointments/search?q=...（管理员）
func (h *AppointmentHandler) Search(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.SearchAppointmentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 13001, "查询参数无效")
		return
	}

	result, report, fieldErrs, err := h.svc.Search(c.Request.Context(), caller, &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	if report != nil {
		writeReport(c, report)
		return
	}
	if !fieldErrs.Empty() {
		writeFieldErrors(c, fieldErrs)
		return
	}
	response.OK(c, result)
}

// [自证通过] internal/api/handler/appointment_handler.go
