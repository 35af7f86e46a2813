package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/codebylorence/secureattend-2.0-sub001/internal/events"
	"github.com/codebylorence/secureattend-2.0-sub001/internal/model"
	"github.com/codebylorence/secureattend-2.0-sub001/internal/repository"
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
		user.UserID = fmt.Sprintf("user-%d", m.seq)
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

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmployeeID(_ context.Context, employeeID string) (*model.User, error) {
	for _, u := range m.users {
		if u.EmployeeID != nil && *u.EmployeeID == employeeID {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetTeamLeaderByDepartment(_ context.Context, department string) (*model.User, error) {
	for _, u := range m.users {
		if u.Role != model.RoleTeamLeader || u.Employee == nil {
			continue
		}
		if u.Employee.Department == department {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ListByRole(_ context.Context, role string) ([]model.User, error) {
	var result []model.User
	for _, u := range m.users {
		if u.Role == role {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (m *mockUserRepo) List(_ context.Context, role string, _, _ int) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		if role == "" || u.Role == role {
			result = append(result, *u)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.UserID]; !ok {
		return gorm.ErrRecordNotFound
	}
	user.Version++
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.users)), nil
}

// ── Mock EmployeeRepository ──

type mockEmployeeRepo struct {
	employees map[string]*model.Employee
}

func newMockEmployeeRepo() *mockEmployeeRepo {
	return &mockEmployeeRepo{employees: make(map[string]*model.Employee)}
}

func (m *mockEmployeeRepo) Create(_ context.Context, emp *model.Employee) error {
	if emp.ID == "" {
		emp.ID = "emp-" + emp.EmployeeID
	}
	m.employees[emp.EmployeeID] = emp
	return nil
}

func (m *mockEmployeeRepo) GetByEmployeeID(_ context.Context, employeeID string) (*model.Employee, error) {
	if e, ok := m.employees[employeeID]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEmployeeRepo) List(_ context.Context, department, status string, _, _ int) ([]model.Employee, int64, error) {
	var result []model.Employee
	for _, e := range m.employees {
		if department != "" && e.Department != department {
			continue
		}
		if status != "" && e.Status != status {
			continue
		}
		result = append(result, *e)
	}
	return result, int64(len(result)), nil
}

func (m *mockEmployeeRepo) ListByEmployeeIDs(_ context.Context, employeeIDs []string) ([]model.Employee, error) {
	var result []model.Employee
	for _, id := range employeeIDs {
		if e, ok := m.employees[id]; ok {
			result = append(result, *e)
		}
	}
	return result, nil
}

func (m *mockEmployeeRepo) Update(_ context.Context, emp *model.Employee) error {
	if _, ok := m.employees[emp.EmployeeID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.employees[emp.EmployeeID] = emp
	return nil
}

func (m *mockEmployeeRepo) Delete(_ context.Context, employeeID string, _ string) error {
	delete(m.employees, employeeID)
	return nil
}

func (m *mockEmployeeRepo) CountByDepartment(_ context.Context, department string) (int64, error) {
	var count int64
	for _, e := range m.employees {
		if e.Department == department {
			count++
		}
	}
	return count, nil
}

// ── Mock DepartmentRepository ──

type mockDepartmentRepo struct {
	departments map[string]*model.Department
}

func newMockDepartmentRepo() *mockDepartmentRepo {
	return &mockDepartmentRepo{departments: make(map[string]*model.Department)}
}

func (m *mockDepartmentRepo) Create(_ context.Context, dept *model.Department) error {
	if dept.DepartmentID == "" {
		dept.DepartmentID = "dept-" + dept.Name
	}
	m.departments[dept.DepartmentID] = dept
	return nil
}

func (m *mockDepartmentRepo) GetByID(_ context.Context, id string) (*model.Department, error) {
	if d, ok := m.departments[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDepartmentRepo) GetByName(_ context.Context, name string) (*model.Department, error) {
	for _, d := range m.departments {
		if d.Name == name {
			return d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDepartmentRepo) List(_ context.Context, includeInactive bool) ([]model.Department, error) {
	var result []model.Department
	for _, d := range m.departments {
		if !includeInactive && !d.IsActive {
			continue
		}
		result = append(result, *d)
	}
	return result, nil
}

func (m *mockDepartmentRepo) Update(_ context.Context, dept *model.Department) error {
	m.departments[dept.DepartmentID] = dept
	return nil
}

func (m *mockDepartmentRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.departments, id)
	return nil
}

// ── Mock TemplateAssignmentRepository ──

type mockAssignmentRepo struct {
	rows []model.TemplateAssignment
	seq  uint
}

func newMockAssignmentRepo() *mockAssignmentRepo {
	return &mockAssignmentRepo{}
}

func (m *mockAssignmentRepo) AddMany(_ context.Context, assignments []model.TemplateAssignment) error {
	for _, a := range assignments {
		// 唯一约束 (template_id, employee_id)：冲突静默跳过
		exists := false
		for _, existing := range m.rows {
			if existing.TemplateID == a.TemplateID && existing.EmployeeID == a.EmployeeID {
				exists = true
				break
			}
		}
		if exists {
			continue
		}
		m.seq++
		a.AssignmentID = m.seq
		m.rows = append(m.rows, a)
	}
	return nil
}

func (m *mockAssignmentRepo) ListByTemplate(_ context.Context, templateID uint) ([]model.TemplateAssignment, error) {
	var result []model.TemplateAssignment
	for _, a := range m.rows {
		if a.TemplateID == templateID {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *mockAssignmentRepo) DeleteByTemplate(_ context.Context, templateID uint) error {
	kept := m.rows[:0]
	for _, a := range m.rows {
		if a.TemplateID != templateID {
			kept = append(kept, a)
		}
	}
	m.rows = kept
	return nil
}

func (m *mockAssignmentRepo) DeleteByTemplateAndEmployees(_ context.Context, templateID uint, employeeIDs []string) error {
	removing := make(map[string]bool, len(employeeIDs))
	for _, id := range employeeIDs {
		removing[id] = true
	}
	kept := m.rows[:0]
	for _, a := range m.rows {
		if a.TemplateID == templateID && removing[a.EmployeeID] {
			continue
		}
		kept = append(kept, a)
	}
	m.rows = kept
	return nil
}

// ── Mock ScheduleTemplateRepository ──

// mockTemplateRepo 持有 mockAssignmentRepo 引用，查询时填充 Assignments（模拟 Preload）
type mockTemplateRepo struct {
	templates   map[uint]*model.ScheduleTemplate
	assignments *mockAssignmentRepo
	seq         uint
}

func newMockTemplateRepo(assignments *mockAssignmentRepo) *mockTemplateRepo {
	return &mockTemplateRepo{
		templates:   make(map[uint]*model.ScheduleTemplate),
		assignments: assignments,
	}
}

func (m *mockTemplateRepo) withAssignments(tpl model.ScheduleTemplate) model.ScheduleTemplate {
	rows, _ := m.assignments.ListByTemplate(context.Background(), tpl.TemplateID)
	tpl.Assignments = rows
	return tpl
}

func (m *mockTemplateRepo) Create(_ context.Context, tpl *model.ScheduleTemplate) error {
	m.seq++
	tpl.TemplateID = m.seq
	m.templates[tpl.TemplateID] = tpl
	return nil
}

func (m *mockTemplateRepo) GetByID(_ context.Context, id uint) (*model.ScheduleTemplate, error) {
	tpl, ok := m.templates[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	full := m.withAssignments(*tpl)
	return &full, nil
}

func (m *mockTemplateRepo) List(_ context.Context, department, publishStatus string) ([]model.ScheduleTemplate, error) {
	var result []model.ScheduleTemplate
	for _, tpl := range m.sorted() {
		if department != "" && tpl.Department != department {
			continue
		}
		if publishStatus != "" && tpl.PublishStatus != publishStatus {
			continue
		}
		result = append(result, m.withAssignments(*tpl))
	}
	return result, nil
}

func (m *mockTemplateRepo) ListActive(_ context.Context) ([]model.ScheduleTemplate, error) {
	var result []model.ScheduleTemplate
	for _, tpl := range m.sorted() {
		if tpl.Status == model.StatusActive && !tpl.PendingDeletion {
			result = append(result, m.withAssignments(*tpl))
		}
	}
	return result, nil
}

func (m *mockTemplateRepo) ListPendingDeletion(_ context.Context) ([]model.ScheduleTemplate, error) {
	var result []model.ScheduleTemplate
	for _, tpl := range m.sorted() {
		if tpl.PendingDeletion {
			result = append(result, m.withAssignments(*tpl))
		}
	}
	return result, nil
}

func (m *mockTemplateRepo) ListByPublishStatus(_ context.Context, publishStatus string) ([]model.ScheduleTemplate, error) {
	var result []model.ScheduleTemplate
	for _, tpl := range m.sorted() {
		if tpl.PendingDeletion {
			continue
		}
		if tpl.PublishStatus == publishStatus {
			result = append(result, m.withAssignments(*tpl))
		}
	}
	return result, nil
}

func (m *mockTemplateRepo) Update(_ context.Context, tpl *model.ScheduleTemplate) error {
	if _, ok := m.templates[tpl.TemplateID]; !ok {
		return gorm.ErrRecordNotFound
	}
	tpl.Version++
	stored := *tpl
	stored.Assignments = nil
	m.templates[tpl.TemplateID] = &stored
	return nil
}

func (m *mockTemplateRepo) MarkPendingDeletion(_ context.Context, id uint) error {
	tpl, ok := m.templates[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	tpl.PendingDeletion = true
	return nil
}

func (m *mockTemplateRepo) BulkPublish(_ context.Context, ids []uint, publishedBy string, publishedAt time.Time) error {
	for _, id := range ids {
		if tpl, ok := m.templates[id]; ok {
			tpl.PublishStatus = model.PublishStatusPublished
			tpl.PublishedAt = &publishedAt
			tpl.PublishedBy = &publishedBy
		}
	}
	return nil
}

func (m *mockTemplateRepo) HardDelete(_ context.Context, id uint) error {
	delete(m.templates, id)
	return nil
}

func (m *mockTemplateRepo) sorted() []*model.ScheduleTemplate {
	ids := make([]uint, 0, len(m.templates))
	for id := range m.templates {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	result := make([]*model.ScheduleTemplate, 0, len(ids))
	for _, id := range ids {
		result = append(result, m.templates[id])
	}
	return result
}

// ── Mock EmployeeScheduleRepository ──

type mockScheduleRepo struct {
	schedules map[uint]*model.EmployeeSchedule
	templates *mockTemplateRepo
	seq       uint
}

func newMockScheduleRepo(templates *mockTemplateRepo) *mockScheduleRepo {
	return &mockScheduleRepo{
		schedules: make(map[uint]*model.EmployeeSchedule),
		templates: templates,
	}
}

func (m *mockScheduleRepo) withTemplate(sched model.EmployeeSchedule) model.EmployeeSchedule {
	if tpl, ok := m.templates.templates[sched.TemplateID]; ok {
		copied := *tpl
		sched.Template = &copied
	}
	return sched
}

func (m *mockScheduleRepo) Create(_ context.Context, sched *model.EmployeeSchedule) error {
	m.seq++
	sched.ScheduleID = m.seq
	m.schedules[sched.ScheduleID] = sched
	return nil
}

func (m *mockScheduleRepo) GetByID(_ context.Context, id uint) (*model.EmployeeSchedule, error) {
	sched, ok := m.schedules[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	full := m.withTemplate(*sched)
	return &full, nil
}

func (m *mockScheduleRepo) GetActiveByEmployeeAndTemplate(_ context.Context, employeeID string, templateID uint) (*model.EmployeeSchedule, error) {
	for _, sched := range m.schedules {
		if sched.EmployeeID == employeeID && sched.TemplateID == templateID && sched.Status == model.StatusActive {
			result := *sched
			return &result, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScheduleRepo) List(_ context.Context, employeeID, department string) ([]model.EmployeeSchedule, error) {
	var result []model.EmployeeSchedule
	for _, sched := range m.sorted() {
		if employeeID != "" && sched.EmployeeID != employeeID {
			continue
		}
		full := m.withTemplate(*sched)
		if department != "" && (full.Template == nil || full.Template.Department != department) {
			continue
		}
		result = append(result, full)
	}
	return result, nil
}

func (m *mockScheduleRepo) ListActive(_ context.Context) ([]model.EmployeeSchedule, error) {
	var result []model.EmployeeSchedule
	for _, sched := range m.sorted() {
		if sched.Status == model.StatusActive {
			result = append(result, m.withTemplate(*sched))
		}
	}
	return result, nil
}

func (m *mockScheduleRepo) ListActiveByEmployee(_ context.Context, employeeID string) ([]model.EmployeeSchedule, error) {
	var result []model.EmployeeSchedule
	for _, sched := range m.sorted() {
		if sched.EmployeeID == employeeID && sched.Status == model.StatusActive {
			result = append(result, m.withTemplate(*sched))
		}
	}
	return result, nil
}

func (m *mockScheduleRepo) Update(_ context.Context, sched *model.EmployeeSchedule) error {
	if _, ok := m.schedules[sched.ScheduleID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *sched
	stored.Template = nil
	m.schedules[sched.ScheduleID] = &stored
	return nil
}

func (m *mockScheduleRepo) Delete(_ context.Context, id uint) error {
	delete(m.schedules, id)
	return nil
}

func (m *mockScheduleRepo) DeleteByTemplate(_ context.Context, templateID uint) error {
	for id, sched := range m.schedules {
		if sched.TemplateID == templateID {
			delete(m.schedules, id)
		}
	}
	return nil
}

func (m *mockScheduleRepo) sorted() []*model.EmployeeSchedule {
	ids := make([]uint, 0, len(m.schedules))
	for id := range m.schedules {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	result := make([]*model.EmployeeSchedule, 0, len(ids))
	for _, id := range ids {
		result = append(result, m.schedules[id])
	}
	return result
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	notifications []model.Notification
	seq           int
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{}
}

func (m *mockNotificationRepo) BatchCreate(_ context.Context, notifications []model.Notification) error {
	for _, n := range notifications {
		m.seq++
		n.NotificationID = fmt.Sprintf("notify-%d", m.seq)
		m.notifications = append(m.notifications, n)
	}
	return nil
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID string, unreadOnly bool, _, _ int) ([]model.Notification, int64, error) {
	var result []model.Notification
	for _, n := range m.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		result = append(result, n)
	}
	return result, int64(len(result)), nil
}

func (m *mockNotificationRepo) CountUnread(_ context.Context, userID string) (int64, error) {
	var count int64
	for _, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id, userID string) error {
	for i := range m.notifications {
		if m.notifications[i].NotificationID == id && m.notifications[i].UserID == userID {
			m.notifications[i].IsRead = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockNotificationRepo) MarkAllRead(_ context.Context, userID string) error {
	for i := range m.notifications {
		if m.notifications[i].UserID == userID {
			m.notifications[i].IsRead = true
		}
	}
	return nil
}

func (m *mockNotificationRepo) Delete(_ context.Context, id, userID string) error {
	for i := range m.notifications {
		if m.notifications[i].NotificationID == id && m.notifications[i].UserID == userID {
			m.notifications = append(m.notifications[:i], m.notifications[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockNotificationRepo) DeleteAllByUser(_ context.Context, userID string) error {
	kept := m.notifications[:0]
	for _, n := range m.notifications {
		if n.UserID != userID {
			kept = append(kept, n)
		}
	}
	m.notifications = kept
	return nil
}

// byType 测试辅助：按通知类型筛选
func (m *mockNotificationRepo) byType(notifyType string) []model.Notification {
	var result []model.Notification
	for _, n := range m.notifications {
		if n.Type == notifyType {
			result = append(result, n)
		}
	}
	return result
}

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct {
	records map[string]*model.AttendanceRecord // "employeeID:date"
	seq     uint
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{records: make(map[string]*model.AttendanceRecord)}
}

func attendanceKey(employeeID string, date time.Time) string {
	return employeeID + ":" + date.Format("2006-01-02")
}

func (m *mockAttendanceRepo) Create(_ context.Context, record *model.AttendanceRecord) error {
	m.seq++
	record.RecordID = m.seq
	m.records[attendanceKey(record.EmployeeID, record.RecordDate)] = record
	return nil
}

func (m *mockAttendanceRepo) GetByEmployeeAndDate(_ context.Context, employeeID string, date time.Time) (*model.AttendanceRecord, error) {
	if r, ok := m.records[attendanceKey(employeeID, date)]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) Update(_ context.Context, record *model.AttendanceRecord) error {
	key := attendanceKey(record.EmployeeID, record.RecordDate)
	if _, ok := m.records[key]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.records[key] = record
	return nil
}

func (m *mockAttendanceRepo) ListByDate(_ context.Context, date time.Time) ([]model.AttendanceRecord, error) {
	var result []model.AttendanceRecord
	suffix := ":" + date.Format("2006-01-02")
	for key, r := range m.records {
		if len(key) > len(suffix) && key[len(key)-len(suffix):] == suffix {
			result = append(result, *r)
		}
	}
	return result, nil
}

// ── Mock 事件发布器 ──

type mockPublisher struct {
	events []mockEvent
}

type mockEvent struct {
	Type    string
	Payload interface{}
}

func (m *mockPublisher) Publish(event events.Event) {
	m.events = append(m.events, mockEvent{Type: event.Type, Payload: event.Payload})
}

// ── 测试聚合 ──

// testRepos 聚合所有 mock repo 便于 seed 数据
type testRepos struct {
	users       *mockUserRepo
	employees   *mockEmployeeRepo
	departments *mockDepartmentRepo
	templates   *mockTemplateRepo
	assignments *mockAssignmentRepo
	schedules   *mockScheduleRepo
	notifies    *mockNotificationRepo
	attendance  *mockAttendanceRepo
}

func newTestRepos() (*testRepos, *repository.Repository) {
	assignments := newMockAssignmentRepo()
	templates := newMockTemplateRepo(assignments)
	repos := &testRepos{
		users:       newMockUserRepo(),
		employees:   newMockEmployeeRepo(),
		departments: newMockDepartmentRepo(),
		templates:   templates,
		assignments: assignments,
		schedules:   newMockScheduleRepo(templates),
		notifies:    newMockNotificationRepo(),
		attendance:  newMockAttendanceRepo(),
	}
	agg := repository.NewTestRepository(
		repos.users,
		repos.employees,
		repos.departments,
		repos.templates,
		repos.assignments,
		repos.schedules,
		repos.notifies,
		repos.attendance,
	)
	return repos, agg
}

// [自证通过] internal/service/mock_repos_test.go
