package service

import (
	"academy_backend/internal/model"
	"academy_backend/internal/repository"
	"academy_backend/internal/testutil"
	"testing"
)

// classroom is a published course with one author, one extra teacher and one learner.
type classroom struct {
	store   *repository.Store
	author  *model.User
	teacher *model.User
	learner *model.User
	admin   *model.User
	course  *model.Course
}

func newClassroom(t *testing.T, status model.CourseStatus) *classroom {
	t.Helper()
	store := testutil.Store(t)
	author := testutil.User(t, store, model.Trainer)
	c := &classroom{
		store:   store,
		author:  author,
		teacher: testutil.User(t, store, model.Trainer),
		learner: testutil.User(t, store, model.Trainee),
		admin:   testutil.User(t, store, model.Admin),
		course:  testutil.Course(t, store, author, status),
	}
	testutil.CourseTeacher(t, store, c.course, c.teacher)
	return c
}

func (c *classroom) lesson(t *testing.T, typ model.LessonType, status model.CourseStatus) *model.Lesson {
	t.Helper()
	return testutil.Lesson(t, c.store, c.course, typ, status)
}
