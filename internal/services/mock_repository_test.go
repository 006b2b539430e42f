package services

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/learnhub/course-service/internal/models"
	"github.com/learnhub/course-service/internal/repositories"
)

// fakeRepository is an in-memory Repository for service tests. Lookups
// return gorm.ErrRecordNotFound and duplicate inserts gorm.ErrDuplicatedKey,
// mirroring the translated errors of the real implementation.
type fakeRepository struct {
	users       map[string]*models.User
	courses     map[string]*models.Course
	courseOrder []string
	lessons     map[string]*models.Lesson
	enrollments []*models.Enrollment
	recLogs     []*models.RecommendationLog

	txCalls int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		users:   make(map[string]*models.User),
		courses: make(map[string]*models.Course),
		lessons: make(map[string]*models.Lesson),
	}
}

func (f *fakeRepository) User() repositories.UserRepository             { return &fakeUserRepo{f} }
func (f *fakeRepository) Course() repositories.CourseRepository         { return &fakeCourseRepo{f} }
func (f *fakeRepository) Lesson() repositories.LessonRepository         { return &fakeLessonRepo{f} }
func (f *fakeRepository) Enrollment() repositories.EnrollmentRepository { return &fakeEnrollmentRepo{f} }
func (f *fakeRepository) RecommendationLog() repositories.RecommendationLogRepository {
	return &fakeRecommendationLogRepo{f}
}

func (f *fakeRepository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	f.txCalls++
	return fn(nil)
}

func (f *fakeRepository) Ping(ctx context.Context) error { return nil }
func (f *fakeRepository) Close() error                   { return nil }

// ===== USERS =====

type fakeUserRepo struct{ f *fakeRepository }

func (r *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	for _, u := range r.f.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	r.f.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	if u, ok := r.f.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	for _, u := range r.f.users {
		if u.Email == strings.ToLower(email) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]*models.User, error) {
	var out []*models.User
	for _, id := range ids {
		if u, ok := r.f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, tx, email)
	if err == nil {
		return true, nil
	}
	return false, nil
}

// ===== COURSES =====

type fakeCourseRepo struct{ f *fakeRepository }

func (r *fakeCourseRepo) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	r.f.courses[course.ID] = course
	r.f.courseOrder = append(r.f.courseOrder, course.ID)
	return nil
}

func (r *fakeCourseRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Course, error) {
	if c, ok := r.f.courses[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCourseRepo) GetByIDWithLessons(ctx context.Context, tx *gorm.DB, id string) (*models.Course, error) {
	course, err := r.GetByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	var lessons []models.Lesson
	for _, l := range r.f.lessons {
		if l.CourseID == id {
			lessons = append(lessons, *l)
		}
	}
	sort.Slice(lessons, func(i, j int) bool { return lessons[i].Order < lessons[j].Order })
	course.Lessons = lessons
	return course, nil
}

func (r *fakeCourseRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.CourseFilters) ([]*models.Course, error) {
	var out []*models.Course
	for _, id := range r.f.courseOrder {
		c, ok := r.f.courses[id]
		if !ok {
			continue
		}
		if filters.Category != "" && c.Category != filters.Category {
			continue
		}
		if filters.Level != nil && c.Level != *filters.Level {
			continue
		}
		if filters.Search != "" &&
			!strings.Contains(strings.ToLower(c.Title), strings.ToLower(filters.Search)) &&
			!strings.Contains(strings.ToLower(c.Description), strings.ToLower(filters.Search)) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeCourseRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*models.Course, error) {
	return r.List(ctx, tx, repositories.CourseFilters{})
}

func (r *fakeCourseRepo) ListByCategory(ctx context.Context, tx *gorm.DB, category string, excludeIDs []string, limit int) ([]*models.Course, error) {
	excluded := toSet(excludeIDs)
	var out []*models.Course
	for _, id := range r.f.courseOrder {
		c, ok := r.f.courses[id]
		if !ok || c.Category != category || excluded[id] {
			continue
		}
		out = append(out, c)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeCourseRepo) ListExcluding(ctx context.Context, tx *gorm.DB, excludeIDs []string, limit int) ([]*models.Course, error) {
	excluded := toSet(excludeIDs)
	var out []*models.Course
	for _, id := range r.f.courseOrder {
		c, ok := r.f.courses[id]
		if !ok || excluded[id] {
			continue
		}
		out = append(out, c)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeCourseRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]*models.Course, error) {
	var out []*models.Course
	for _, id := range ids {
		if c, ok := r.f.courses[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCourseRepo) Update(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	if _, ok := r.f.courses[course.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.f.courses[course.ID] = course
	return nil
}

func (r *fakeCourseRepo) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	delete(r.f.courses, id)
	return nil
}

func (r *fakeCourseRepo) LessonCounts(ctx context.Context, tx *gorm.DB, courseIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(courseIDs))
	wanted := toSet(courseIDs)
	for _, l := range r.f.lessons {
		if wanted[l.CourseID] {
			counts[l.CourseID]++
		}
	}
	return counts, nil
}

func (r *fakeCourseRepo) EnrollmentCounts(ctx context.Context, tx *gorm.DB, courseIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(courseIDs))
	wanted := toSet(courseIDs)
	for _, e := range r.f.enrollments {
		if wanted[e.CourseID] {
			counts[e.CourseID]++
		}
	}
	return counts, nil
}

// ===== LESSONS =====

type fakeLessonRepo struct{ f *fakeRepository }

func (r *fakeLessonRepo) Create(ctx context.Context, tx *gorm.DB, lesson *models.Lesson) error {
	if lesson.ID == "" {
		lesson.ID = uuid.NewString()
	}
	r.f.lessons[lesson.ID] = lesson
	return nil
}

func (r *fakeLessonRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Lesson, error) {
	if l, ok := r.f.lessons[id]; ok {
		return l, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeLessonRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.LessonFilters) ([]*models.Lesson, error) {
	var out []*models.Lesson
	for _, l := range r.f.lessons {
		if filters.CourseID != "" && l.CourseID != filters.CourseID {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (r *fakeLessonRepo) Update(ctx context.Context, tx *gorm.DB, lesson *models.Lesson) error {
	if _, ok := r.f.lessons[lesson.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.f.lessons[lesson.ID] = lesson
	return nil
}

func (r *fakeLessonRepo) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	delete(r.f.lessons, id)
	return nil
}

func (r *fakeLessonRepo) DeleteByCourse(ctx context.Context, tx *gorm.DB, courseID string) error {
	for id, l := range r.f.lessons {
		if l.CourseID == courseID {
			delete(r.f.lessons, id)
		}
	}
	return nil
}

// ===== ENROLLMENTS =====

type fakeEnrollmentRepo struct{ f *fakeRepository }

func (r *fakeEnrollmentRepo) Create(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error {
	for _, e := range r.f.enrollments {
		if e.UserID == enrollment.UserID && e.CourseID == enrollment.CourseID {
			return gorm.ErrDuplicatedKey
		}
	}
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	r.f.enrollments = append(r.f.enrollments, enrollment)
	return nil
}

func (r *fakeEnrollmentRepo) GetByUserAndCourse(ctx context.Context, tx *gorm.DB, userID, courseID string) (*models.Enrollment, error) {
	for _, e := range r.f.enrollments {
		if e.UserID == userID && e.CourseID == courseID {
			return e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeEnrollmentRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.Enrollment, error) {
	var out []*models.Enrollment
	// Newest first, matching the real repository's enrolled_at ordering.
	for i := len(r.f.enrollments) - 1; i >= 0; i-- {
		if r.f.enrollments[i].UserID == userID {
			out = append(out, r.f.enrollments[i])
		}
	}
	return out, nil
}

func (r *fakeEnrollmentRepo) Update(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error {
	for i, e := range r.f.enrollments {
		if e.ID == enrollment.ID {
			r.f.enrollments[i] = enrollment
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeEnrollmentRepo) DeleteByUserAndCourse(ctx context.Context, tx *gorm.DB, userID, courseID string) (int64, error) {
	var kept []*models.Enrollment
	var removed int64
	for _, e := range r.f.enrollments {
		if e.UserID == userID && e.CourseID == courseID {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	r.f.enrollments = kept
	return removed, nil
}

func (r *fakeEnrollmentRepo) DeleteByCourse(ctx context.Context, tx *gorm.DB, courseID string) error {
	var kept []*models.Enrollment
	for _, e := range r.f.enrollments {
		if e.CourseID != courseID {
			kept = append(kept, e)
		}
	}
	r.f.enrollments = kept
	return nil
}

func (r *fakeEnrollmentRepo) ListByCourse(ctx context.Context, tx *gorm.DB, courseID string) ([]*models.Enrollment, error) {
	var out []*models.Enrollment
	for _, e := range r.f.enrollments {
		if e.CourseID == courseID {
			out = append(out, e)
		}
	}
	return out, nil
}

// ===== RECOMMENDATION LOGS =====

type fakeRecommendationLogRepo struct{ f *fakeRepository }

func (r *fakeRecommendationLogRepo) Create(ctx context.Context, tx *gorm.DB, log *models.RecommendationLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	r.f.recLogs = append(r.f.recLogs, log)
	return nil
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
