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

func TestAssignmentController_SubmitAndRedact(t *testing.T) {
	store := testutil.Store(t)
	author := testutil.User(t, store, model.Trainer)
	learner := testutil.User(t, store, model.Trainee)
	course := testutil.Course(t, store, author, model.CoursePublished)
	lesson := testutil.Lesson(t, store, course, model.LessonAssignment, model.CoursePublished)
	question := testutil.Assignment(t, store, lesson, model.QuestionSingleChoice,
		testutil.Option{Text: "4", IsCorrect: true},
		testutil.Option{Text: "5"},
	)
	correct := question.AssignmentQuestionOptions[0].ID

	ctrl := NewAssignmentController(service.NewAssignmentService(store))
	path := "/lessons/" + lesson.Slug + "/assignments"

	learnerRouter := newRouter(learner)
	learnerRouter.POST("/lessons/:lessonIdentity/assignments/submissions", ctrl.Submit)
	learnerRouter.GET("/lessons/:lessonIdentity/assignments", ctrl.SearchAssignments)

	w, env := perform(t, learnerRouter, http.MethodPost, path+"/submissions", []service.AssignmentSubmissionRequest{
		{AssignmentID: question.ID, SelectedOption: []string{correct}},
	})
	require.Equal(t, http.StatusOK, w.Code, env.Message)

	w, env = perform(t, learnerRouter, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page service.SearchResult[service.AssignmentResponse]
	decodeData(t, env, &page)
	require.Len(t, page.Items, 1)
	got := page.Items[0]
	assert.Nil(t, got.Hints)
	require.NotNil(t, got.Submission)
	assert.Nil(t, got.Submission.IsCorrect)
	assert.Equal(t, []string{correct}, got.Submission.SelectedOption)
	for _, opt := range got.Options {
		assert.Nil(t, opt.IsCorrect)
	}

	teacherRouter := newRouter(author)
	teacherRouter.GET("/lessons/:lessonIdentity/assignments", ctrl.SearchAssignments)
	w, env = perform(t, teacherRouter, http.MethodGet, path+"?userId="+learner.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page = service.SearchResult[service.AssignmentResponse]{}
	decodeData(t, env, &page)
	require.Len(t, page.Items, 1)
	got = page.Items[0]
	require.NotNil(t, got.Hints)
	assert.Equal(t, "think twice", *got.Hints)
	require.NotNil(t, got.Submission)
	require.NotNil(t, got.Submission.IsCorrect)
	assert.True(t, *got.Submission.IsCorrect)
}

func TestAssignmentController_SubmitRejections(t *testing.T) {
	store := testutil.Store(t)
	author := testutil.User(t, store, model.Trainer)
	course := testutil.Course(t, store, author, model.CoursePublished)
	feedbackLesson := testutil.Lesson(t, store, course, model.LessonFeedback, model.CoursePublished)
	ctrl := NewAssignmentController(service.NewAssignmentService(store))

	tests := []struct {
		name   string
		caller *model.User
		lesson string
		body   interface{}
		status int
	}{
		{"wrong lesson type", testutil.User(t, store, model.Trainee), feedbackLesson.ID, []service.AssignmentSubmissionRequest{}, http.StatusForbidden},
		{"unknown lesson", testutil.User(t, store, model.Trainee), "no-such-lesson", []service.AssignmentSubmissionRequest{}, http.StatusNotFound},
		{"body is not a list", testutil.User(t, store, model.Trainee), feedbackLesson.ID, map[string]string{"assignmentId": "x"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(tt.caller)
			r.POST("/lessons/:lessonIdentity/assignments/submissions", ctrl.Submit)
			w, env := perform(t, r, http.MethodPost, "/lessons/"+tt.lesson+"/assignments/submissions", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.status, env.Code)
		})
	}
}
