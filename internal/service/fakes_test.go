package service

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/uni-academic-api/internal/models"
	"github.com/noah-isme/uni-academic-api/internal/repository"
	"github.com/noah-isme/uni-academic-api/pkg/jobs"
)

type fakeStudentRepo struct {
	students map[string]*models.Student
	err      error
}

func newFakeStudentRepo(students ...models.Student) *fakeStudentRepo {
	repo := &fakeStudentRepo{students: map[string]*models.Student{}}
	for i := range students {
		s := students[i]
		repo.students[s.ID] = &s
	}
	return repo
}

func (f *fakeStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	out := make([]models.Student, 0, len(f.students))
	for _, s := range f.students {
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (f *fakeStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if f.err != nil {
		return nil, f.err
	}
	if s, ok := f.students[id]; ok {
		copy := *s
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStudentRepo) FindByUserID(ctx context.Context, userID string) (*models.Student, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, s := range f.students {
		if s.UserID != nil && *s.UserID == userID {
			copy := *s
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStudentRepo) ExistsByStudentNumber(ctx context.Context, number string, excludeID string) (bool, error) {
	for _, s := range f.students {
		if s.StudentNumber == number && s.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	copy := *student
	f.students[student.ID] = &copy
	return nil
}

func (f *fakeStudentRepo) Update(ctx context.Context, student *models.Student) error {
	copy := *student
	f.students[student.ID] = &copy
	return nil
}

type fakeCourseRepo struct {
	courses map[string]*models.Course
}

func newFakeCourseRepo(courses ...models.Course) *fakeCourseRepo {
	repo := &fakeCourseRepo{courses: map[string]*models.Course{}}
	for i := range courses {
		c := courses[i]
		repo.courses[c.ID] = &c
	}
	return repo
}

func (f *fakeCourseRepo) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	out := make([]models.Course, 0, len(f.courses))
	for _, c := range f.courses {
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (f *fakeCourseRepo) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if c, ok := f.courses[id]; ok {
		copy := *c
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeCourseRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	for _, c := range f.courses {
		if c.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCourseRepo) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	copy := *course
	f.courses[course.ID] = &copy
	return nil
}

type fakeEnrollmentRepo struct {
	items     []models.EnrollmentDetail
	completed []string
	err       error
}

func (f *fakeEnrollmentRepo) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	var out []models.EnrollmentDetail
	for _, e := range f.items {
		if filter.StudentID != "" && e.StudentID != filter.StudentID {
			continue
		}
		out = append(out, e)
	}
	return out, len(out), nil
}

func (f *fakeEnrollmentRepo) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.EnrollmentDetail
	for _, e := range f.items {
		if e.StudentID == studentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEnrollmentRepo) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	for _, e := range f.items {
		if e.ID == id {
			copy := e.Enrollment
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeEnrollmentRepo) ExistsActive(ctx context.Context, studentID, courseID string, semester int, academicYear string) (bool, error) {
	for _, e := range f.items {
		if e.StudentID == studentID && e.CourseID == courseID && e.Semester == semester &&
			e.AcademicYear == academicYear && e.Status == models.EnrollmentStatusActive {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEnrollmentRepo) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	f.items = append(f.items, models.EnrollmentDetail{Enrollment: *enrollment})
	return nil
}

func (f *fakeEnrollmentRepo) UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Status = status
		}
	}
	return nil
}

func (f *fakeEnrollmentRepo) CompleteForRecord(ctx context.Context, studentID, courseID string, semester int, academicYear string) error {
	f.completed = append(f.completed, courseID)
	return nil
}

type fakeRecordRepo struct {
	records  []models.AcademicRecordDetail
	upserted []models.AcademicRecord
	err      error
}

func (f *fakeRecordRepo) ListByStudent(ctx context.Context, studentID string) ([]models.AcademicRecordDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.AcademicRecordDetail
	for _, r := range f.records {
		if r.StudentID == studentID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRecordRepo) Upsert(ctx context.Context, record *models.AcademicRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	f.upserted = append(f.upserted, *record)
	return nil
}

type fakeFeeRepo struct {
	fees    map[string]models.Fee
	overdue []models.OverdueFee
	created []models.Fee
	err     error
}

func newFakeFeeRepo(fees ...models.Fee) *fakeFeeRepo {
	repo := &fakeFeeRepo{fees: map[string]models.Fee{}}
	for _, fee := range fees {
		repo.fees[fee.ID] = fee
	}
	return repo
}

func (f *fakeFeeRepo) FindByID(ctx context.Context, id string) (*models.Fee, error) {
	if f.err != nil {
		return nil, f.err
	}
	fee, ok := f.fees[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &fee, nil
}

func (f *fakeFeeRepo) ListByStudent(ctx context.Context, studentID string) ([]models.Fee, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Fee
	for _, fee := range f.fees {
		if fee.StudentID == studentID {
			out = append(out, fee)
		}
	}
	return out, nil
}

func (f *fakeFeeRepo) Create(ctx context.Context, fee *models.Fee) error {
	if fee.ID == "" {
		fee.ID = uuid.NewString()
	}
	f.fees[fee.ID] = *fee
	f.created = append(f.created, *fee)
	return nil
}

func (f *fakeFeeRepo) ListOverdue(ctx context.Context, asOf time.Time) ([]models.OverdueFee, error) {
	return f.overdue, f.err
}

// fakePaymentRepo mirrors the locked balance check of the real repository.
type fakePaymentRepo struct {
	mu       sync.Mutex
	fees     *fakeFeeRepo
	payments []models.Payment
	inserts  int
	err      error
	listErr  error
}

func (f *fakePaymentRepo) ListByStudent(ctx context.Context, studentID string) ([]models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.Payment
	for _, p := range f.payments {
		if fee, ok := f.fees.fees[p.FeeID]; ok && fee.StudentID == studentID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePaymentRepo) CreateWithinBalance(ctx context.Context, payment *models.Payment) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return decimal.Zero, f.err
	}
	fee, ok := f.fees.fees[payment.FeeID]
	if !ok {
		return decimal.Zero, sql.ErrNoRows
	}
	paid := decimal.Zero
	for _, p := range f.payments {
		if p.FeeID == payment.FeeID {
			paid = paid.Add(p.Amount)
		}
	}
	if payment.Amount.GreaterThan(fee.Amount.Sub(paid)) {
		return decimal.Zero, repository.ErrPaymentExceedsBalance
	}
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	f.payments = append(f.payments, *payment)
	f.inserts++
	return paid.Add(payment.Amount), nil
}

type fakeAuditRepo struct {
	logs []*models.AuditLog
}

func (f *fakeAuditRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	f.logs = append(f.logs, log)
	return nil
}

type fakeNotificationRepo struct {
	mu     sync.Mutex
	items  map[string]*models.Notification
	order  []string
	failed map[string]string
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{items: map[string]*models.Notification{}, failed: map[string]string{}}
}

func (f *fakeNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	copy := *n
	f.items[n.ID] = &copy
	f.order = append(f.order, n.ID)
	return nil
}

func (f *fakeNotificationRepo) FindByID(ctx context.Context, id string) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *n
	return &copy, nil
}

func (f *fakeNotificationRepo) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n, ok := f.items[id]; ok {
		n.Status = models.NotificationStatusSent
		n.SentAt = &sentAt
	}
	return nil
}

func (f *fakeNotificationRepo) MarkFailed(ctx context.Context, id string, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n, ok := f.items[id]; ok {
		n.Status = models.NotificationStatusFailed
		n.Error = &reason
	}
	f.failed[id] = reason
	return nil
}

func (f *fakeNotificationRepo) ExistsSince(ctx context.Context, kind models.NotificationKind, referenceID string, since time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.items {
		if n.Kind == kind && n.ReferenceID == referenceID && !n.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeNotificationRepo) all() []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Notification, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, *f.items[id])
	}
	return out
}

type recordingQueue struct {
	jobs []jobs.Job
	err  error
}

func (q *recordingQueue) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func strPtr(v string) *string { return &v }
