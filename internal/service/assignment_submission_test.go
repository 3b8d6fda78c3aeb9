package service

import (
	"academy_backend/internal/apperr"
	"academy_backend/internal/model"
	"academy_backend/internal/repository"
	"academy_backend/internal/testutil"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func choiceAssignment(t *testing.T, c *classroom, lesson *model.Lesson) *model.Assignment {
	t.Helper()
	return testutil.Assignment(t, c.store, lesson, model.QuestionMultipleChoice,
		testutil.Option{Text: "A", IsCorrect: true},
		testutil.Option{Text: "B", IsCorrect: true},
		testutil.Option{Text: "C"},
	)
}

func findSubmissions(t *testing.T, store *repository.Store, assignmentID string) []model.AssignmentSubmission {
	t.Helper()
	subs, err := store.AssignmentSubmissions.FindAll(context.Background(), repository.Where("assignment_id = ?", assignmentID))
	require.NoError(t, err)
	return subs
}

func TestAssignmentSubmitAll_GradesBySetEquality(t *testing.T) {
	ctx := context.Background()
	c := newClassroom(t, model.CoursePublished)
	lesson := c.lesson(t, model.LessonAssignment, model.CoursePublished)
	question := choiceAssignment(t, c, lesson)
	a, b, wrong := question.AssignmentQuestionOptions[0].ID, question.AssignmentQuestionOptions[1].ID, question.AssignmentQuestionOptions[2].ID
	svc := NewAssignmentService(c.store)

	tests := []struct {
		name     string
		selected []string
		want     bool
	}{
		{"all correct in any order", []string{b, a}, true},
		{"partial", []string{a}, false},
		{"correct plus wrong", []string{a, b, wrong}, false},
		{"nothing", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.SubmitAll(ctx, lesson.Slug, []AssignmentSubmissionRequest{
				{AssignmentID: question.ID, SelectedOption: tt.selected},
			}, c.learner.ID)
			require.NoError(t, err)

			subs := findSubmissions(t, c.store, question.ID)
			require.Len(t, subs, 1, "resubmitting must not add rows")
			require.NotNil(t, subs[0].IsCorrect)
			assert.Equal(t, tt.want, *subs[0].IsCorrect)
			assert.Equal(t, model.JoinOptions(tt.selected), subs[0].SelectedOption)
		})
	}
}

func TestAssignmentSubmitAll_UpdatesByID(t *testing.T) {
	ctx := context.Background()
	c := newClassroom(t, model.CoursePublished)
	lesson := c.lesson(t, model.LessonAssignment, model.CoursePublished)
	question := testutil.Assignment(t, c.store, lesson, model.QuestionSubjective)
	svc := NewAssignmentService(c.store)

	require.NoError(t, svc.SubmitAll(ctx, lesson.ID, []AssignmentSubmissionRequest{
		{AssignmentID: question.ID, Answer: "first"},
	}, c.learner.ID))
	subs := findSubmissions(t, c.store, question.ID)
	require.Len(t, subs, 1)

	require.NoError(t, svc.SubmitAll(ctx, lesson.ID, []AssignmentSubmissionRequest{
		{ID: subs[0].ID, AssignmentID: question.ID, Answer: "second"},
	}, c.learner.ID))
	subs = findSubmissions(t, c.store, question.ID)
	require.Len(t, subs, 1)
	assert.Equal(t, "second", subs[0].Answer)
	assert.Nil(t, subs[0].IsCorrect)
}

func TestAssignmentSubmitAll_UnknownSubmissionRollsBack(t *testing.T) {
	ctx := context.Background()
	c := newClassroom(t, model.CoursePublished)
	lesson := c.lesson(t, model.LessonAssignment, model.CoursePublished)
	first := testutil.Assignment(t, c.store, lesson, model.QuestionSubjective)
	second := testutil.Assignment(t, c.store, lesson, model.QuestionSubjective)
	svc := NewAssignmentService(c.store)

	err := svc.SubmitAll(ctx, lesson.ID, []AssignmentSubmissionRequest{
		{AssignmentID: first.ID, Answer: "kept?"},
		{ID: model.GenerateUUID(), AssignmentID: second.ID, Answer: "missing"},
	}, c.learner.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Empty(t, findSubmissions(t, c.store, first.ID))
}

func TestAssignmentSubmitAll_SkipsInactiveAndUnknownQuestions(t *testing.T) {
	ctx := context.Background()
	c := newClassroom(t, model.CoursePublished)
	lesson := c.lesson(t, model.LessonAssignment, model.CoursePublished)
	inactive := testutil.Assignment(t, c.store, lesson, model.QuestionSubjective)
	require.NoError(t, c.store.DB().Model(inactive).Update("is_active", false).Error)
	svc := NewAssignmentService(c.store)

	err := svc.SubmitAll(ctx, lesson.ID, []AssignmentSubmissionRequest{
		{AssignmentID: inactive.ID, Answer: "ignored"},
		{AssignmentID: model.GenerateUUID(), Answer: "ignored"},
	}, c.learner.ID)
	require.NoError(t, err)
	assert.Empty(t, findSubmissions(t, c.store, inactive.ID))
}

func TestAssignmentSubmitAll_AttachmentsOnlyReplacedWhenPresent(t *testing.T) {
	ctx := context.Background()
	c := newClassroom(t, model.CoursePublished)
	lesson := c.lesson(t, model.LessonAssignment, model.CoursePublished)
	question := testutil.Assignment(t, c.store, lesson, model.QuestionSubjective)
	svc := NewAssignmentService(c.store)
	files := []AttachmentRequest{{FileURL: "https://cdn.example.com/a.pdf", Name: "a.pdf"}}

	require.NoError(t, svc.SubmitAll(ctx, lesson.ID, []AssignmentSubmissionRequest{
		{AssignmentID: question.ID, Answer: "v1", Attachments: files},
	}, c.learner.ID))
	require.NoError(t, svc.SubmitAll(ctx, lesson.ID, []AssignmentSubmissionRequest{
		{AssignmentID: question.ID, Answer: "v2", Attachments: files},
	}, c.learner.ID))
	sub := findSubmissions(t, c.store, question.ID)[0]
	count, err := c.store.AssignmentSubmissionAttachments.Count(ctx, repository.Where("assignment_submission_id = ?", sub.ID))
	require.NoError(t, err)
	assert.Zero(t, count)

	old := &model.AssignmentSubmissionAttachment{AssignmentSubmissionID: sub.ID, FileURL: "https://cdn.example.com/old.pdf"}
	require.NoError(t, c.store.AssignmentSubmissionAttachments.Insert(ctx, old))
	require.NoError(t, svc.SubmitAll(ctx, lesson.ID, []AssignmentSubmissionRequest{
		{AssignmentID: question.ID, Answer: "v3", Attachments: files},
	}, c.learner.ID))
	atts, err := c.store.AssignmentSubmissionAttachments.FindAll(ctx, repository.Where("assignment_submission_id = ?", sub.ID))
	require.NoError(t, err)
	require.Len(t, atts, 1)
	assert.Equal(t, files[0].FileURL, atts[0].FileURL)
}

func TestAssignmentSubmitAll_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("draft course", func(t *testing.T) {
		c := newClassroom(t, model.CourseDraft)
		lesson := c.lesson(t, model.LessonAssignment, model.CoursePublished)
		err := NewAssignmentService(c.store).SubmitAll(ctx, lesson.ID, nil, c.learner.ID)
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})
	t.Run("draft lesson", func(t *testing.T) {
		c := newClassroom(t, model.CoursePublished)
		lesson := c.lesson(t, model.LessonAssignment, model.CourseDraft)
		err := NewAssignmentService(c.store).SubmitAll(ctx, lesson.ID, nil, c.learner.ID)
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})
	t.Run("unknown lesson", func(t *testing.T) {
		c := newClassroom(t, model.CoursePublished)
		err := NewAssignmentService(c.store).SubmitAll(ctx, "no-such-lesson", nil, c.learner.ID)
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})
	t.Run("wrong lesson type", func(t *testing.T) {
		c := newClassroom(t, model.CoursePublished)
		lesson := c.lesson(t, model.LessonFeedback, model.CoursePublished)
		err := NewAssignmentService(c.store).SubmitAll(ctx, lesson.ID, nil, c.learner.ID)
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
	})
	t.Run("course teacher", func(t *testing.T) {
		c := newClassroom(t, model.CoursePublished)
		lesson := c.lesson(t, model.LessonAssignment, model.CoursePublished)
		svc := NewAssignmentService(c.store)
		assert.True(t, apperr.Is(svc.SubmitAll(ctx, lesson.ID, nil, c.author.ID), apperr.KindForbidden))
		assert.True(t, apperr.Is(svc.SubmitAll(ctx, lesson.ID, nil, c.teacher.ID), apperr.KindForbidden))
	})
	t.Run("anonymous", func(t *testing.T) {
		c := newClassroom(t, model.CoursePublished)
		lesson := c.lesson(t, model.LessonAssignment, model.CoursePublished)
		err := NewAssignmentService(c.store).SubmitAll(ctx, lesson.ID, nil, "")
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
	})
}

func TestAssignmentSearch_RedactsForLearners(t *testing.T) {
	ctx := context.Background()
	c := newClassroom(t, model.CoursePublished)
	lesson := c.lesson(t, model.LessonAssignment, model.CoursePublished)
	question := choiceAssignment(t, c, lesson)
	svc := NewAssignmentService(c.store)
	a := question.AssignmentQuestionOptions[0].ID
	require.NoError(t, svc.SubmitAll(ctx, lesson.ID, []AssignmentSubmissionRequest{
		{AssignmentID: question.ID, SelectedOption: []string{a}},
	}, c.learner.ID))

	page, err := svc.Search(ctx, &AssignmentSearchCriteria{
		BaseSearchCriteria: BaseSearchCriteria{CurrentUserID: c.learner.ID},
		LessonIdentity:     lesson.Slug,
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	got := page.Items[0]
	assert.Nil(t, got.Hints)
	for _, o := range got.Options {
		assert.Nil(t, o.IsCorrect)
	}
	assert.True(t, got.Options[0].IsSelected)
	require.NotNil(t, got.Submission)
	assert.Nil(t, got.Submission.IsCorrect)

	page, err = svc.Search(ctx, &AssignmentSearchCriteria{
		BaseSearchCriteria: BaseSearchCriteria{CurrentUserID: c.teacher.ID},
		LessonIdentity:     lesson.ID,
		UserID:             c.learner.ID,
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	got = page.Items[0]
	require.NotNil(t, got.Hints)
	assert.Equal(t, question.Hints, *got.Hints)
	require.NotNil(t, got.Options[0].IsCorrect)
	assert.True(t, *got.Options[0].IsCorrect)
	require.NotNil(t, got.Submission)
	require.NotNil(t, got.Submission.IsCorrect)
	assert.False(t, *got.Submission.IsCorrect)
}

func TestAssignmentSearch_LearnersOnlySeeTheirOwnSubmissions(t *testing.T) {
	ctx := context.Background()
	c := newClassroom(t, model.CoursePublished)
	other := testutil.User(t, c.store, model.Trainee)
	lesson := c.lesson(t, model.LessonAssignment, model.CoursePublished)
	question := testutil.Assignment(t, c.store, lesson, model.QuestionSubjective)
	svc := NewAssignmentService(c.store)
	require.NoError(t, svc.SubmitAll(ctx, lesson.ID, []AssignmentSubmissionRequest{
		{AssignmentID: question.ID, Answer: "secret"},
	}, other.ID))

	page, err := svc.Search(ctx, &AssignmentSearchCriteria{
		BaseSearchCriteria: BaseSearchCriteria{CurrentUserID: c.learner.ID},
		LessonIdentity:     lesson.ID,
		UserID:             other.ID,
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Nil(t, page.Items[0].Submission)
}

func TestAssignmentSearch_DraftLessonHiddenFromLearners(t *testing.T) {
	ctx := context.Background()
	c := newClassroom(t, model.CoursePublished)
	lesson := c.lesson(t, model.LessonAssignment, model.CourseDraft)
	svc := NewAssignmentService(c.store)

	_, err := svc.Search(ctx, &AssignmentSearchCriteria{
		BaseSearchCriteria: BaseSearchCriteria{CurrentUserID: c.learner.ID},
		LessonIdentity:     lesson.ID,
	})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = svc.Search(ctx, &AssignmentSearchCriteria{
		BaseSearchCriteria: BaseSearchCriteria{CurrentUserID: c.author.ID},
		LessonIdentity:     lesson.ID,
	})
	assert.NoError(t, err)
}

func TestAssignmentCRUD(t *testing.T) {
	ctx := context.Background()
	c := newClassroom(t, model.CoursePublished)
	lesson := c.lesson(t, model.LessonAssignment, model.CoursePublished)
	svc := NewAssignmentService(c.store)
	req := AssignmentRequest{
		Name: "Pick the primes",
		Type: model.QuestionMultipleChoice,
		Options: []QuestionOptionRequest{
			{Option: "2", IsCorrect: true},
			{Option: "4"},
			{Option: "5", IsCorrect: true},
		},
	}

	_, err := svc.CreateAssignment(ctx, lesson.Slug, req, c.learner.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	first, err := svc.CreateAssignment(ctx, lesson.Slug, req, c.teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, lesson.ID, first.LessonID)
	assert.Equal(t, 1, first.Order)
	assert.True(t, first.IsActive)

	second, err := svc.CreateAssignment(ctx, lesson.ID, req, c.author.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Order)

	got, err := svc.GetByIdentity(ctx, first.ID, c.author.ID)
	require.NoError(t, err)
	require.Len(t, got.AssignmentQuestionOptions, 3)
	assert.Equal(t, "5", got.AssignmentQuestionOptions[2].Option)

	req.Options = req.Options[:2]
	req.Options[1].IsCorrect = false
	updated, err := svc.UpdateAssignment(ctx, first.ID, req, c.author.ID)
	require.NoError(t, err)
	assert.Len(t, updated.AssignmentQuestionOptions, 2)

	require.NoError(t, svc.SubmitAll(ctx, lesson.ID, []AssignmentSubmissionRequest{
		{AssignmentID: first.ID, SelectedOption: []string{updated.AssignmentQuestionOptions[0].ID}},
	}, c.learner.ID))

	req.Type = model.QuestionSubjective
	_, err = svc.UpdateAssignment(ctx, first.ID, req, c.author.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	err = svc.Delete(ctx, first.ID, c.author.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	require.NoError(t, svc.Delete(ctx, second.ID, c.author.ID))
	left, err := c.store.AssignmentOptions.Count(ctx, repository.Where("assignment_id = ?", second.ID))
	require.NoError(t, err)
	assert.Zero(t, left)
	_, err = svc.GetByIdentity(ctx, second.ID, c.author.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestAssignmentRequestValidation(t *testing.T) {
	tests := []struct {
		name string
		req  AssignmentRequest
	}{
		{"rating is feedback only", AssignmentRequest{Name: "q", Type: model.QuestionRating}},
		{"too few options", AssignmentRequest{Name: "q", Type: model.QuestionSingleChoice, Options: []QuestionOptionRequest{{Option: "a", IsCorrect: true}}}},
		{"no correct option", AssignmentRequest{Name: "q", Type: model.QuestionSingleChoice, Options: []QuestionOptionRequest{{Option: "a"}, {Option: "b"}}}},
		{"two correct single choice", AssignmentRequest{Name: "q", Type: model.QuestionSingleChoice, Options: []QuestionOptionRequest{{Option: "a", IsCorrect: true}, {Option: "b", IsCorrect: true}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, apperr.Is(validateAssignmentRequest(tt.req), apperr.KindValidation))
		})
	}
	assert.NoError(t, validateAssignmentRequest(AssignmentRequest{Name: "q", Type: model.QuestionSubjective}))
}

func TestSubmittedStudents(t *testing.T) {
	ctx := context.Background()
	c := newClassroom(t, model.CoursePublished)
	lesson := c.lesson(t, model.LessonAssignment, model.CoursePublished)
	question := testutil.Assignment(t, c.store, lesson, model.QuestionSubjective)
	svc := NewAssignmentService(c.store)
	require.NoError(t, svc.SubmitAll(ctx, lesson.ID, []AssignmentSubmissionRequest{{AssignmentID: question.ID, Answer: "x"}}, c.learner.ID))

	students, err := svc.SubmittedStudents(ctx, lesson.ID, c.author.ID)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, c.learner.ID, students[0].ID)
	assert.Equal(t, c.learner.Email, students[0].Email)

	_, err = svc.SubmittedStudents(ctx, lesson.ID, c.learner.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}
