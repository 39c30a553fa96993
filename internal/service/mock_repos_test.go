package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/cspath1/RT-Contracts-sub001/internal/model"
	"github.com/cspath1/RT-Contracts-sub001/internal/repository"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
	seq   int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%03d", m.seq)
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) List(_ context.Context, offset, limit int) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		result = append(result, *u)
	}
	return result, int64(len(m.users)), nil
}

// ── Mock UserRoleRepository ──

type mockUserRoleRepo struct {
	roles map[string]*model.UserRole
	seq   int
}

func newMockUserRoleRepo() *mockUserRoleRepo {
	return &mockUserRoleRepo{roles: make(map[string]*model.UserRole)}
}

func (m *mockUserRoleRepo) Create(_ context.Context, role *model.UserRole) error {
	if role.UserRoleID == "" {
		m.seq++
		role.UserRoleID = fmt.Sprintf("role-%03d", m.seq)
	}
	m.roles[role.UserRoleID] = role
	return nil
}

func (m *mockUserRoleRepo) GetByID(_ context.Context, id string) (*model.UserRole, error) {
	if r, ok := m.roles[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRoleRepo) GetByUserAndRole(_ context.Context, userID string, role model.Role) (*model.UserRole, error) {
	for _, r := range m.roles {
		if r.UserID == userID && r.Role == role {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRoleRepo) ListApprovedByUser(_ context.Context, userID string) ([]model.Role, error) {
	var result []model.Role
	for _, r := range m.roles {
		if r.UserID == userID && r.Approved {
			result = append(result, r.Role)
		}
	}
	return result, nil
}

func (m *mockUserRoleRepo) ListPending(_ context.Context, offset, limit int) ([]model.UserRole, int64, error) {
	var result []model.UserRole
	for _, r := range m.roles {
		if !r.Approved {
			result = append(result, *r)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockUserRoleRepo) Update(_ context.Context, role *model.UserRole) error {
	m.roles[role.UserRoleID] = role
	return nil
}

func (m *mockUserRoleRepo) Delete(_ context.Context, id string) error {
	delete(m.roles, id)
	return nil
}

// grant 测试辅助：直接放入一条已批准角色
func (m *mockUserRoleRepo) grant(userID string, role model.Role) {
	m.seq++
	id := fmt.Sprintf("role-%03d", m.seq)
	m.roles[id] = &model.UserRole{UserRoleID: id, UserID: userID, Role: role, Approved: true}
}

// ── Mock TimeCapRepository ──

type mockTimeCapRepo struct {
	caps map[string]*model.AllottedTimeCap
}

func newMockTimeCapRepo() *mockTimeCapRepo {
	return &mockTimeCapRepo{caps: make(map[string]*model.AllottedTimeCap)}
}

func (m *mockTimeCapRepo) GetByUserID(_ context.Context, userID string) (*model.AllottedTimeCap, error) {
	if c, ok := m.caps[userID]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTimeCapRepo) Upsert(_ context.Context, cap *model.AllottedTimeCap) error {
	m.caps[cap.UserID] = cap
	return nil
}

// ── Mock TelescopeRepository ──

type mockTelescopeRepo struct {
	telescopes map[string]*model.Telescope
	seq        int
}

func newMockTelescopeRepo() *mockTelescopeRepo {
	return &mockTelescopeRepo{telescopes: make(map[string]*model.Telescope)}
}

func (m *mockTelescopeRepo) Create(_ context.Context, t *model.Telescope) error {
	if t.TelescopeID == "" {
		m.seq++
		t.TelescopeID = fmt.Sprintf("tele-%03d", m.seq)
	}
	m.telescopes[t.TelescopeID] = t
	return nil
}

func (m *mockTelescopeRepo) GetByID(_ context.Context, id string) (*model.Telescope, error) {
	if t, ok := m.telescopes[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTelescopeRepo) Update(_ context.Context, t *model.Telescope) error {
	m.telescopes[t.TelescopeID] = t
	return nil
}

func (m *mockTelescopeRepo) List(_ context.Context, offset, limit int) ([]model.Telescope, int64, error) {
	var result []model.Telescope
	for _, t := range m.telescopes {
		result = append(result, *t)
	}
	return result, int64(len(result)), nil
}

// ── Mock AppointmentRepository ──

type mockAppointmentRepo struct {
	appointments map[string]*model.Appointment
	seq          int
	searchCalls  int // Search 被实际执行的次数
}

func newMockAppointmentRepo() *mockAppointmentRepo {
	return &mockAppointmentRepo{appointments: make(map[string]*model.Appointment)}
}

func (m *mockAppointmentRepo) Create(_ context.Context, a *model.Appointment) error {
	if a.AppointmentID == "" {
		m.seq++
		a.AppointmentID = fmt.Sprintf("appt-%03d", m.seq)
	}
	m.appointments[a.AppointmentID] = a
	return nil
}

func (m *mockAppointmentRepo) GetByID(_ context.Context, id string) (*model.Appointment, error) {
	if a, ok := m.appointments[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAppointmentRepo) Update(_ context.Context, a *model.Appointment) error {
	if _, ok := m.appointments[a.AppointmentID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.appointments[a.AppointmentID] = a
	return nil
}

func (m *mockAppointmentRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.appointments, id)
	return nil
}

func (m *mockAppointmentRepo) ListByUser(_ context.Context, userID string, future bool, now time.Time, offset, limit int) ([]model.Appointment, int64, error) {
	var result []model.Appointment
	for _, a := range m.appointments {
		if a.UserID != userID {
			continue
		}
		if future && a.StartTime.Before(now) {
			continue
		}
		if !future && !a.EndTime.Before(now) {
			continue
		}
		result = append(result, *a)
	}
	return result, int64(len(result)), nil
}

func (m *mockAppointmentRepo) ListByTelescopeBetween(_ context.Context, telescopeID string, start, end time.Time) ([]model.Appointment, error) {
	var result []model.Appointment
	for _, a := range m.appointments {
		if a.TelescopeID != telescopeID || a.Status == model.StatusCanceled {
			continue
		}
		if a.StartTime.Before(end) && a.EndTime.After(start) {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (m *mockAppointmentRepo) ListByStatus(_ context.Context, status model.AppointmentStatus, offset, limit int) ([]model.Appointment, int64, error) {
	var result []model.Appointment
	for _, a := range m.appointments {
		if a.Status == status {
			result = append(result, *a)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockAppointmentRepo) SumScheduledSeconds(_ context.Context, userID string, excludeID string) (int64, error) {
	var sum int64
	for _, a := range m.appointments {
		if a.UserID != userID || a.AppointmentID == excludeID {
			continue
		}
		if a.Status != model.StatusRequested && a.Status != model.StatusScheduled {
			continue
		}
		sum += int64(a.EndTime.Sub(a.StartTime).Seconds())
	}
	return sum, nil
}

func (m *mockAppointmentRepo) Search(_ context.Context, criteria []repository.SearchCriterion, offset, limit int) ([]model.Appointment, int64, error) {
	m.searchCalls++
	var result []model.Appointment
	for _, a := range m.appointments {
		match := true
		for _, c := range criteria {
			switch c.Field {
			case repository.SearchFieldTelescopeID:
				match = match && a.TelescopeID == c.Value
			case repository.SearchFieldStatus:
				match = match && string(a.Status) == c.Value
			case repository.SearchFieldType:
				match = match && string(a.Type) == c.Value
			case repository.SearchFieldUserFullName:
				match = match && a.User != nil && strings.Contains(a.User.Name, c.Value)
			case repository.SearchFieldUserCompany:
				match = match && a.User != nil && strings.Contains(a.User.Company, c.Value)
			}
		}
		if match {
			result = append(result, *a)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockAppointmentRepo) ListStartingBetween(_ context.Context, start, end time.Time) ([]model.Appointment, error) {
	var result []model.Appointment
	for _, a := range m.appointments {
		if a.Status != model.StatusScheduled {
			continue
		}
		if !a.StartTime.Before(start) && a.StartTime.Before(end) {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (m *mockAppointmentRepo) ListRunningEndedBefore(_ context.Context, cutoff time.Time) ([]model.Appointment, error) {
	var result []model.Appointment
	for _, a := range m.appointments {
		if a.Status != model.StatusInProgress && a.Status != model.StatusCalibrating {
			continue
		}
		if a.EndTime.Before(cutoff) {
			result = append(result, *a)
		}
	}
	return result, nil
}

// ── Mock CoordinateRepository ──

type mockCoordinateRepo struct {
	coordinates  map[string]*model.Coordinate
	orientations map[string]*model.Orientation
	seq          int
}

func newMockCoordinateRepo() *mockCoordinateRepo {
	return &mockCoordinateRepo{
		coordinates:  make(map[string]*model.Coordinate),
		orientations: make(map[string]*model.Orientation),
	}
}

func (m *mockCoordinateRepo) Create(_ context.Context, c *model.Coordinate) error {
	if c.CoordinateID == "" {
		m.seq++
		c.CoordinateID = fmt.Sprintf("coord-%03d", m.seq)
	}
	m.coordinates[c.CoordinateID] = c
	return nil
}

func (m *mockCoordinateRepo) CreateBatch(ctx context.Context, cs []model.Coordinate) error {
	for i := range cs {
		if err := m.Create(ctx, &cs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockCoordinateRepo) GetByID(_ context.Context, id string) (*model.Coordinate, error) {
	if c, ok := m.coordinates[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCoordinateRepo) Update(_ context.Context, c *model.Coordinate) error {
	m.coordinates[c.CoordinateID] = c
	return nil
}

func (m *mockCoordinateRepo) Delete(_ context.Context, id string) error {
	delete(m.coordinates, id)
	return nil
}

func (m *mockCoordinateRepo) DeleteByAppointment(_ context.Context, appointmentID string) error {
	for id, c := range m.coordinates {
		if c.AppointmentID != nil && *c.AppointmentID == appointmentID {
			delete(m.coordinates, id)
		}
	}
	return nil
}

func (m *mockCoordinateRepo) CreateOrientation(_ context.Context, o *model.Orientation) error {
	if o.OrientationID == "" {
		m.seq++
		o.OrientationID = fmt.Sprintf("orient-%03d", m.seq)
	}
	m.orientations[o.OrientationID] = o
	return nil
}

func (m *mockCoordinateRepo) GetOrientation(_ context.Context, id string) (*model.Orientation, error) {
	if o, ok := m.orientations[id]; ok {
		return o, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCoordinateRepo) UpdateOrientation(_ context.Context, o *model.Orientation) error {
	m.orientations[o.OrientationID] = o
	return nil
}

func (m *mockCoordinateRepo) DeleteOrientation(_ context.Context, id string) error {
	delete(m.orientations, id)
	return nil
}

// byAppointment 测试辅助：取某预约名下按序排列的坐标
func (m *mockCoordinateRepo) byAppointment(appointmentID string) []model.Coordinate {
	var result []model.Coordinate
	for _, c := range m.coordinates {
		if c.AppointmentID != nil && *c.AppointmentID == appointmentID {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Position < result[j].Position })
	return result
}

// ── Mock CelestialBodyRepository ──

type mockCelestialBodyRepo struct {
	bodies map[string]*model.CelestialBody
	seq    int
}

func newMockCelestialBodyRepo() *mockCelestialBodyRepo {
	return &mockCelestialBodyRepo{bodies: make(map[string]*model.CelestialBody)}
}

func (m *mockCelestialBodyRepo) Create(_ context.Context, b *model.CelestialBody) error {
	if b.BodyID == "" {
		m.seq++
		b.BodyID = fmt.Sprintf("body-%03d", m.seq)
	}
	m.bodies[b.BodyID] = b
	return nil
}

func (m *mockCelestialBodyRepo) GetByID(_ context.Context, id string) (*model.CelestialBody, error) {
	if b, ok := m.bodies[id]; ok {
		return b, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCelestialBodyRepo) Update(_ context.Context, b *model.CelestialBody) error {
	m.bodies[b.BodyID] = b
	return nil
}

func (m *mockCelestialBodyRepo) List(_ context.Context, status model.CelestialBodyStatus, offset, limit int) ([]model.CelestialBody, int64, error) {
	var result []model.CelestialBody
	for _, b := range m.bodies {
		if b.Status == status {
			result = append(result, *b)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockCelestialBodyRepo) SearchByName(_ context.Context, name string, offset, limit int) ([]model.CelestialBody, int64, error) {
	var result []model.CelestialBody
	for _, b := range m.bodies {
		if b.Status == model.CelestialBodyVisible && strings.Contains(strings.ToUpper(b.Name), strings.ToUpper(name)) {
			result = append(result, *b)
		}
	}
	return result, int64(len(result)), nil
}

// ── Mock ViewerRepository ──

type mockViewerRepo struct {
	viewers map[string]*model.Viewer
	seq     int
}

func newMockViewerRepo() *mockViewerRepo {
	return &mockViewerRepo{viewers: make(map[string]*model.Viewer)}
}

func (m *mockViewerRepo) key(appointmentID, userID string) string {
	return appointmentID + "/" + userID
}

func (m *mockViewerRepo) Create(_ context.Context, v *model.Viewer) error {
	if v.ViewerID == "" {
		m.seq++
		v.ViewerID = fmt.Sprintf("viewer-%03d", m.seq)
	}
	m.viewers[m.key(v.AppointmentID, v.UserID)] = v
	return nil
}

func (m *mockViewerRepo) Get(_ context.Context, appointmentID, userID string) (*model.Viewer, error) {
	if v, ok := m.viewers[m.key(appointmentID, userID)]; ok {
		return v, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockViewerRepo) Exists(_ context.Context, appointmentID, userID string) (bool, error) {
	_, ok := m.viewers[m.key(appointmentID, userID)]
	return ok, nil
}

func (m *mockViewerRepo) ListByAppointment(_ context.Context, appointmentID string) ([]model.Viewer, error) {
	var result []model.Viewer
	for _, v := range m.viewers {
		if v.AppointmentID == appointmentID {
			result = append(result, *v)
		}
	}
	return result, nil
}

func (m *mockViewerRepo) Delete(_ context.Context, appointmentID, userID string) error {
	delete(m.viewers, m.key(appointmentID, userID))
	return nil
}

func (m *mockViewerRepo) DeleteByAppointment(_ context.Context, appointmentID string) error {
	for k, v := range m.viewers {
		if v.AppointmentID == appointmentID {
			delete(m.viewers, k)
		}
	}
	return nil
}

// ── Mock FreeControlCommandRepository ──

type mockFreeControlRepo struct {
	commands map[string]*model.FreeControlCommand
	seq      int
}

func newMockFreeControlRepo() *mockFreeControlRepo {
	return &mockFreeControlRepo{commands: make(map[string]*model.FreeControlCommand)}
}

func (m *mockFreeControlRepo) Create(_ context.Context, c *model.FreeControlCommand) error {
	if c.CommandID == "" {
		m.seq++
		c.CommandID = fmt.Sprintf("cmd-%03d", m.seq)
	}
	m.commands[c.CommandID] = c
	return nil
}

func (m *mockFreeControlRepo) ListByAppointment(_ context.Context, appointmentID string) ([]model.FreeControlCommand, error) {
	var result []model.FreeControlCommand
	for _, c := range m.commands {
		if c.AppointmentID == appointmentID {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Seq < result[j].Seq })
	return result, nil
}

func (m *mockFreeControlRepo) MaxSeq(_ context.Context, appointmentID string) (int, error) {
	max := 0
	for _, c := range m.commands {
		if c.AppointmentID == appointmentID && c.Seq > max {
			max = c.Seq
		}
	}
	return max, nil
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	notifications map[string]*model.Notification
	seq           int
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{notifications: make(map[string]*model.Notification)}
}

func (m *mockNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	if n.NotificationID == "" {
		m.seq++
		n.NotificationID = fmt.Sprintf("notif-%03d", m.seq)
	}
	m.notifications[n.NotificationID] = n
	return nil
}

func (m *mockNotificationRepo) GetByID(_ context.Context, id string) (*model.Notification, error) {
	if n, ok := m.notifications[id]; ok {
		return n, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID string, unreadOnly bool, offset, limit int) ([]model.Notification, int64, error) {
	var result []model.Notification
	for _, n := range m.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		result = append(result, *n)
	}
	return result, int64(len(result)), nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id string) error {
	if n, ok := m.notifications[id]; ok {
		n.IsRead = true
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (m *mockNotificationRepo) MarkAllRead(_ context.Context, userID string) error {
	for _, n := range m.notifications {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

// ── Mock TokenBlacklist ──

type mockBlacklist struct {
	blocked map[string]bool
}

func newMockBlacklist() *mockBlacklist {
	return &mockBlacklist{blocked: make(map[string]bool)}
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, _ time.Duration) error {
	m.blocked[jti] = true
	return nil
}

func (m *mockBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	return m.blocked[jti], nil
}

// ── 共享测试夹具 ──

type testMocks struct {
	users         *mockUserRepo
	userRoles     *mockUserRoleRepo
	timeCaps      *mockTimeCapRepo
	telescopes    *mockTelescopeRepo
	appointments  *mockAppointmentRepo
	coordinates   *mockCoordinateRepo
	bodies        *mockCelestialBodyRepo
	viewers       *mockViewerRepo
	freeControl   *mockFreeControlRepo
	notifications *mockNotificationRepo
}

// newTestRepo 组装全 mock 的 Repository 聚合（nil db，事务直通）
func newTestRepo() (*repository.Repository, *testMocks) {
	m := &testMocks{
		users:         newMockUserRepo(),
		userRoles:     newMockUserRoleRepo(),
		timeCaps:      newMockTimeCapRepo(),
		telescopes:    newMockTelescopeRepo(),
		appointments:  newMockAppointmentRepo(),
		coordinates:   newMockCoordinateRepo(),
		bodies:        newMockCelestialBodyRepo(),
		viewers:       newMockViewerRepo(),
		freeControl:   newMockFreeControlRepo(),
		notifications: newMockNotificationRepo(),
	}
	repo := repository.WithMocks()
	repo.User = m.users
	repo.UserRole = m.userRoles
	repo.TimeCap = m.timeCaps
	repo.Telescope = m.telescopes
	repo.Appointment = m.appointments
	repo.Coordinate = m.coordinates
	repo.CelestialBody = m.bodies
	repo.Viewer = m.viewers
	repo.FreeControlCommand = m.freeControl
	repo.Notification = m.notifications
	return repo, m
}
