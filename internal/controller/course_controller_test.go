package controller

import (
	"academy_backend/internal/model"
	"academy_backend/internal/service"
	"academy_backend/internal/testutil"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourseController_CreateAndGet(t *testing.T) {
	store := testutil.Store(t)
	trainer := testutil.User(t, store, model.Trainer)
	ctrl := NewCourseController(service.NewCourseService(store))

	r := newRouter(trainer)
	r.POST("/courses", ctrl.CreateCourse)
	r.GET("/courses/:identity", ctrl.GetCourse)

	w, env := perform(t, r, http.MethodPost, "/courses", service.CourseRequest{Name: "Intro to Go"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, http.StatusCreated, env.Code)
	assert.Equal(t, "created", env.Message)

	var created model.Course
	decodeData(t, env, &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "intro-to-go", created.Slug)
	assert.Equal(t, model.CourseDraft, created.Status)

	for _, identity := range []string{created.ID, created.Slug} {
		w, env = perform(t, r, http.MethodGet, "/courses/"+identity, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var got model.Course
		decodeData(t, env, &got)
		assert.Equal(t, created.ID, got.ID)
	}
}

func TestCourseController_ErrorStatuses(t *testing.T) {
	store := testutil.Store(t)
	author := testutil.User(t, store, model.Trainer)
	learner := testutil.User(t, store, model.Trainee)
	course := testutil.Course(t, store, author, model.CourseDraft)
	ctrl := NewCourseController(service.NewCourseService(store))

	t.Run("trainee cannot create", func(t *testing.T) {
		r := newRouter(learner)
		r.POST("/courses", ctrl.CreateCourse)
		w, env := perform(t, r, http.MethodPost, "/courses", service.CourseRequest{Name: "Mine"})
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, http.StatusForbidden, env.Code)
		assert.NotEmpty(t, env.Message)
	})

	t.Run("draft course hidden from trainee", func(t *testing.T) {
		r := newRouter(learner)
		r.GET("/courses/:identity", ctrl.GetCourse)
		w, env := perform(t, r, http.MethodGet, "/courses/"+course.Slug, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Empty(t, env.Data)
	})

	t.Run("missing name is a validation error", func(t *testing.T) {
		r := newRouter(author)
		r.POST("/courses", ctrl.CreateCourse)
		w, env := perform(t, r, http.MethodPost, "/courses", map[string]string{"description": "no name"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.Len(t, env.Errors, 1)
		assert.Contains(t, string(env.Errors[0]), `"name"`)
	})

	t.Run("bad status value", func(t *testing.T) {
		r := newRouter(author)
		r.PUT("/courses/:identity/status", ctrl.ChangeStatus)
		w, _ := perform(t, r, http.MethodPut, "/courses/"+course.ID+"/status", StatusRequest{Status: "archived"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown caller", func(t *testing.T) {
		r := newRouter(nil)
		r.POST("/courses", ctrl.CreateCourse)
		w, _ := perform(t, r, http.MethodPost, "/courses", service.CourseRequest{Name: "Ghost"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestCourseController_StatusAndDelete(t *testing.T) {
	store := testutil.Store(t)
	author := testutil.User(t, store, model.Trainer)
	course := testutil.Course(t, store, author, model.CourseDraft)
	ctrl := NewCourseController(service.NewCourseService(store))

	r := newRouter(author)
	r.PUT("/courses/:identity/status", ctrl.ChangeStatus)
	r.DELETE("/courses/:identity", ctrl.DeleteCourse)

	w, env := perform(t, r, http.MethodPut, "/courses/"+course.ID+"/status", StatusRequest{Status: "published"})
	require.Equal(t, http.StatusOK, w.Code)
	var got model.Course
	decodeData(t, env, &got)
	assert.Equal(t, model.CoursePublished, got.Status)

	w, env = perform(t, r, http.MethodDelete, "/courses/"+course.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var msg MessageResponse
	decodeData(t, env, &msg)
	assert.Equal(t, "course deleted", msg.Message)

	w, _ = perform(t, r, http.MethodDelete, "/courses/"+course.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCourseController_Search(t *testing.T) {
	store := testutil.Store(t)
	author := testutil.User(t, store, model.Trainer)
	for i := 0; i < 3; i++ {
		testutil.Course(t, store, author, model.CoursePublished)
	}
	ctrl := NewCourseController(service.NewCourseService(store))

	r := newRouter(author)
	r.GET("/courses", ctrl.SearchCourses)

	w, env := perform(t, r, http.MethodGet, "/courses?page=1&size=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page service.SearchResult[model.Course]
	decodeData(t, env, &page)
	assert.Len(t, page.Items, 2)
	assert.EqualValues(t, 3, page.TotalCount)
	assert.Equal(t, 2, page.TotalPage)
}
