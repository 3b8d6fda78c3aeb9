package service

import (
	"academy_backend/internal/apperr"
	"academy_backend/internal/model"
	"academy_backend/internal/repository"
	"academy_backend/internal/testutil"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateLesson(t *testing.T) {
	ctx := context.Background()
	c := newClassroom(t, model.CoursePublished)
	section := testutil.Section(t, c.store, c.course)
	svc := NewLessonService(c.store)

	doc, err := svc.CreateLesson(ctx, c.course.Slug, LessonRequest{
		Name: "Reading", SectionIdentity: section.Slug, Type: model.LessonDocument, DocumentURL: "https://cdn.example.com/r.pdf",
	}, c.teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, "reading", doc.Slug)
	assert.Equal(t, model.CourseDraft, doc.Status)
	assert.Equal(t, 1, doc.Order)
	assert.Equal(t, "https://cdn.example.com/r.pdf", doc.DocumentURL)

	exam, err := svc.CreateLesson(ctx, c.course.ID, LessonRequest{
		Name: "Final", SectionIdentity: section.ID, Type: model.LessonExam,
		QuestionSet: &QuestionSetRequest{PassingWeightage: 60, Duration: 45},
	}, c.author.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, exam.Order)
	assert.Equal(t, 45, exam.Duration)
	require.NotNil(t, exam.QuestionSetID)
	set, err := c.store.QuestionSets.FindOne(ctx, repository.Where("id = ?", *exam.QuestionSetID))
	require.NoError(t, err)
	require.NotNil(t, set)
	assert.Equal(t, "final-"+set.ID[:5], set.Slug)
	assert.True(t, strings.HasPrefix(set.Slug, exam.Slug))

	_, err = svc.CreateLesson(ctx, c.course.ID, LessonRequest{Name: "Live", SectionIdentity: section.ID, Type: model.LessonLiveClass}, c.author.ID)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	live, err := svc.CreateLesson(ctx, c.course.ID, LessonRequest{
		Name: "Live", SectionIdentity: section.ID, Type: model.LessonLiveClass,
		Meeting: &MeetingRequest{MeetingNumber: "123 456", Duration: 30},
	}, c.author.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, live.Duration)

	got, err := svc.GetLesson(ctx, c.course.Slug, live.Slug, c.author.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Meeting)
	assert.Equal(t, "123 456", got.Meeting.MeetingNumber)
}

func TestCreateLesson_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("learner", func(t *testing.T) {
		c := newClassroom(t, model.CoursePublished)
		section := testutil.Section(t, c.store, c.course)
		_, err := NewLessonService(c.store).CreateLesson(ctx, c.course.ID, LessonRequest{Name: "x", SectionIdentity: section.ID, Type: model.LessonVideo}, c.learner.ID)
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
	})
	t.Run("completed course", func(t *testing.T) {
		c := newClassroom(t, model.CourseCompleted)
		section := testutil.Section(t, c.store, c.course)
		_, err := NewLessonService(c.store).CreateLesson(ctx, c.course.ID, LessonRequest{Name: "x", SectionIdentity: section.ID, Type: model.LessonVideo}, c.author.ID)
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
	})
	t.Run("section of another course", func(t *testing.T) {
		c := newClassroom(t, model.CoursePublished)
		other := testutil.Course(t, c.store, c.author, model.CoursePublished)
		section := testutil.Section(t, c.store, other)
		_, err := NewLessonService(c.store).CreateLesson(ctx, c.course.ID, LessonRequest{Name: "x", SectionIdentity: section.ID, Type: model.LessonVideo}, c.author.ID)
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})
	t.Run("unknown type", func(t *testing.T) {
		c := newClassroom(t, model.CoursePublished)
		section := testutil.Section(t, c.store, c.course)
		_, err := NewLessonService(c.store).CreateLesson(ctx, c.course.ID, LessonRequest{Name: "x", SectionIdentity: section.ID, Type: "podcast"}, c.author.ID)
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})
}

func TestGetLesson_ScopedToCourse(t *testing.T) {
	ctx := context.Background()
	c := newClassroom(t, model.CoursePublished)
	lesson := c.lesson(t, model.LessonVideo, model.CoursePublished)
	other := testutil.Course(t, c.store, c.author, model.CoursePublished)
	svc := NewLessonService(c.store)

	got, err := svc.GetLesson(ctx, c.course.ID, lesson.Slug, c.learner.ID)
	require.NoError(t, err)
	assert.Equal(t, lesson.ID, got.ID)

	_, err = svc.GetLesson(ctx, other.ID, lesson.ID, c.learner.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestSearchLessons(t *testing.T) {
	ctx := context.Background()
	c := newClassroom(t, model.CoursePublished)
	first := c.lesson(t, model.LessonVideo, model.CoursePublished)
	c.lesson(t, model.LessonDocument, model.CoursePublished)
	svc := NewLessonService(c.store)

	page, err := svc.Search(ctx, &LessonSearchCriteria{
		BaseSearchCriteria: BaseSearchCriteria{CurrentUserID: c.learner.ID},
		CourseIdentity:     c.course.Slug,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.TotalCount)

	page, err = svc.Search(ctx, &LessonSearchCriteria{
		BaseSearchCriteria: BaseSearchCriteria{CurrentUserID: c.learner.ID},
		CourseIdentity:     c.course.ID,
		SectionIdentity:    first.SectionID,
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, first.ID, page.Items[0].ID)

	_, err = svc.Search(ctx, &LessonSearchCriteria{BaseSearchCriteria: BaseSearchCriteria{CurrentUserID: c.learner.ID}})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	draft := testutil.Course(t, c.store, c.author, model.CourseDraft)
	_, err = svc.Search(ctx, &LessonSearchCriteria{
		BaseSearchCriteria: BaseSearchCriteria{CurrentUserID: c.learner.ID},
		CourseIdentity:     draft.ID,
	})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestUpdateLesson(t *testing.T) {
	ctx := context.Background()
	c := newClassroom(t, model.CoursePublished)
	lesson := c.lesson(t, model.LessonVideo, model.CoursePublished)
	svc := NewLessonService(c.store)
	req := LessonRequest{Name: "Intro video", SectionIdentity: lesson.SectionID, Type: model.LessonVideo, VideoURL: "https://cdn.example.com/v.mp4"}

	updated, err := svc.UpdateLesson(ctx, c.course.ID, lesson.ID, req, c.teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, "Intro video", updated.Name)
	assert.Equal(t, "https://cdn.example.com/v.mp4", updated.VideoURL)

	req.Type = model.LessonDocument
	_, err = svc.UpdateLesson(ctx, c.course.ID, lesson.ID, req, c.teacher.ID)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	req.Type = model.LessonVideo
	_, err = svc.UpdateLesson(ctx, c.course.ID, lesson.ID, req, c.learner.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestDeleteLesson(t *testing.T) {
	ctx := context.Background()
	c := newClassroom(t, model.CoursePublished)
	svc := NewLessonService(c.store)

	t.Run("cascades questions", func(t *testing.T) {
		lesson := c.lesson(t, model.LessonAssignment, model.CoursePublished)
		question := choiceAssignment(t, c, lesson)
		require.NoError(t, svc.DeleteLesson(ctx, c.course.ID, lesson.ID, c.author.ID))

		exists, err := c.store.Assignments.Exists(ctx, repository.Where("id = ?", question.ID))
		require.NoError(t, err)
		assert.False(t, exists)
		exists, err = c.store.AssignmentOptions.Exists(ctx, repository.Where("assignment_id = ?", question.ID))
		require.NoError(t, err)
		assert.False(t, exists)
	})
	t.Run("forbidden with submissions", func(t *testing.T) {
		lesson := c.lesson(t, model.LessonFeedback, model.CoursePublished)
		question := testutil.Feedback(t, c.store, lesson, model.QuestionSubjective)
		require.NoError(t, NewFeedbackService(c.store).SubmitAll(ctx, lesson.ID, []FeedbackSubmissionRequest{
			{FeedbackID: question.ID, Answer: "ok"},
		}, c.learner.ID))

		err := svc.DeleteLesson(ctx, c.course.ID, lesson.ID, c.author.ID)
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
	})
	t.Run("removes question set", func(t *testing.T) {
		section := testutil.Section(t, c.store, c.course)
		exam, err := svc.CreateLesson(ctx, c.course.ID, LessonRequest{Name: "Quiz", SectionIdentity: section.ID, Type: model.LessonExam}, c.author.ID)
		require.NoError(t, err)
		require.NoError(t, svc.DeleteLesson(ctx, c.course.ID, exam.Slug, c.author.ID))

		exists, err := c.store.QuestionSets.Exists(ctx, repository.Where("id = ?", *exam.QuestionSetID))
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestChangeLessonStatus(t *testing.T) {
	ctx := context.Background()
	c := newClassroom(t, model.CoursePublished)
	lesson := c.lesson(t, model.LessonVideo, model.CourseDraft)
	svc := NewLessonService(c.store)

	_, err := svc.ChangeStatus(ctx, lesson.ID, model.CourseCompleted, c.author.ID)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	got, err := svc.ChangeStatus(ctx, lesson.Slug, model.CoursePublished, c.author.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CoursePublished, got.Status)

	require.NoError(t, c.store.DB().Model(c.course).Update("status", model.CourseCompleted).Error)
	_, err = svc.ChangeStatus(ctx, lesson.ID, model.CourseDraft, c.author.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestWatchHistory(t *testing.T) {
	ctx := context.Background()
	c := newClassroom(t, model.CoursePublished)
	lesson := c.lesson(t, model.LessonFeedback, model.CoursePublished)
	svc := NewLessonService(c.store)

	_, err := svc.WatchHistory(ctx, lesson.ID, c.learner.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	require.NoError(t, NewFeedbackService(c.store).SubmitAll(ctx, lesson.ID, nil, c.learner.ID))
	history, err := svc.WatchHistory(ctx, lesson.Slug, c.learner.ID)
	require.NoError(t, err)
	assert.True(t, history.IsCompleted)
}
