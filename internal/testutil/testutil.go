// Package testutil builds throwaway sqlite databases and seed rows for tests.
package testutil

import (
	"academy_backend/internal/model"
	"academy_backend/internal/repository"
	"academy_backend/pkg/database"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Password is the clear text password of every seeded user.
const Password = "password123"

// DB opens a migrated in-memory database private to the test.
func DB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.New().String()[:8])

	db, err := database.Open(sqlite.Open(dsn), logger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 内存库在最后一个连接关闭时消失
	sqlDB.SetMaxIdleConns(4)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// Store returns a repository store over a fresh database.
func Store(t *testing.T) *repository.Store {
	t.Helper()
	return repository.NewStore(DB(t))
}

func insert(t *testing.T, store *repository.Store, value interface{}) {
	t.Helper()
	require.NoError(t, store.DB().Omit(clause.Associations).Create(value).Error)
}

func shortID() string {
	return uuid.New().String()[:8]
}

// User seeds an active user with the given role.
func User(t *testing.T, store *repository.Store, role model.UserRole) *model.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)
	id := shortID()
	u := &model.User{
		FirstName: string(role),
		LastName:  id,
		Email:     fmt.Sprintf("%s-%s@example.com", role, id),
		Password:  string(hashed),
		Role:      role,
		IsActive:  true,
	}
	insert(t, store, u)
	return u
}

// Course seeds a course created by author, who is recorded as its author teacher.
func Course(t *testing.T, store *repository.Store, author *model.User, status model.CourseStatus) *model.Course {
	t.Helper()
	id := shortID()
	c := &model.Course{Name: "Course " + id, Slug: "course-" + id, Status: status}
	c.Stamp(author.ID)
	insert(t, store, c)

	teacher := &model.CourseTeacher{CourseID: c.ID, UserID: author.ID, CourseRole: model.CourseRoleAuthor}
	teacher.Stamp(author.ID)
	insert(t, store, teacher)
	c.CourseTeachers = []model.CourseTeacher{*teacher}
	return c
}

// CourseTeacher lists user as a plain teacher of the course.
func CourseTeacher(t *testing.T, store *repository.Store, course *model.Course, user *model.User) *model.CourseTeacher {
	t.Helper()
	teacher := &model.CourseTeacher{CourseID: course.ID, UserID: user.ID, CourseRole: model.CourseRoleTeacher}
	teacher.Stamp(course.CreatedBy)
	insert(t, store, teacher)
	return teacher
}

func Section(t *testing.T, store *repository.Store, course *model.Course) *model.Section {
	t.Helper()
	id := shortID()
	s := &model.Section{CourseID: course.ID, Name: "Section " + id, Slug: "section-" + id, Order: 1}
	s.Stamp(course.CreatedBy)
	insert(t, store, s)
	return s
}

// Lesson seeds a lesson of the given type and status in a new section of course.
func Lesson(t *testing.T, store *repository.Store, course *model.Course, typ model.LessonType, status model.CourseStatus) *model.Lesson {
	t.Helper()
	section := Section(t, store, course)
	id := shortID()
	l := &model.Lesson{
		Name:      "Lesson " + id,
		Slug:      "lesson-" + id,
		CourseID:  course.ID,
		SectionID: section.ID,
		Type:      typ,
		Status:    status,
		Order:     1,
	}
	l.Stamp(course.CreatedBy)
	insert(t, store, l)
	return l
}

func nextOrder(t *testing.T, store *repository.Store, table interface{}, lessonID string) int {
	t.Helper()
	var count int64
	require.NoError(t, store.DB().Model(table).Where("lesson_id = ?", lessonID).Count(&count).Error)
	return int(count) + 1
}

// Option describes a seeded choice option.
type Option struct {
	Text      string
	IsCorrect bool
}

// Assignment seeds an active assignment question with its options.
func Assignment(t *testing.T, store *repository.Store, lesson *model.Lesson, typ model.QuestionType, options ...Option) *model.Assignment {
	t.Helper()
	a := &model.Assignment{
		LessonID: lesson.ID,
		Name:     "Question " + shortID(),
		Hints:    "think twice",
		Type:     typ,
		Order:    nextOrder(t, store, &model.Assignment{}, lesson.ID),
		IsActive: true,
	}
	a.Stamp(lesson.CreatedBy)
	insert(t, store, a)
	for i, o := range options {
		opt := model.AssignmentQuestionOption{AssignmentID: a.ID, Option: o.Text, IsCorrect: o.IsCorrect, Order: i + 1}
		opt.Stamp(lesson.CreatedBy)
		insert(t, store, &opt)
		a.AssignmentQuestionOptions = append(a.AssignmentQuestionOptions, opt)
	}
	return a
}

// Feedback seeds an active feedback question with its options.
func Feedback(t *testing.T, store *repository.Store, lesson *model.Lesson, typ model.QuestionType, options ...string) *model.Feedback {
	t.Helper()
	f := &model.Feedback{
		LessonID: lesson.ID,
		Name:     "Feedback " + shortID(),
		Type:     typ,
		Order:    nextOrder(t, store, &model.Feedback{}, lesson.ID),
		IsActive: true,
	}
	f.Stamp(lesson.CreatedBy)
	insert(t, store, f)
	for i, text := range options {
		opt := model.FeedbackQuestionOption{FeedbackID: f.ID, Option: text, Order: i + 1}
		opt.Stamp(lesson.CreatedBy)
		insert(t, store, &opt)
		f.FeedbackQuestionOptions = append(f.FeedbackQuestionOptions, opt)
	}
	return f
}
