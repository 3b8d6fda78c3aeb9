package service

import (
	"academy_backend/internal/apperr"
	"academy_backend/internal/model"
	"academy_backend/internal/permission"
	"academy_backend/internal/repository"
	"academy_backend/pkg/logger"
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type AttachmentRequest struct {
	FileURL  string `json:"fileUrl" binding:"required,max=500"`
	Name     string `json:"name" binding:"omitempty,max=250"`
	MimeType string `json:"mimeType" binding:"omitempty,max=100"`
}

type AttachmentResponse struct {
	ID       string `json:"id"`
	FileURL  string `json:"fileUrl"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
}

// lessonScope is what question and submission reads need to know about a lesson.
type lessonScope struct {
	Lesson     *model.Lesson
	Course     *model.Course
	Caller     *model.User
	Privileged bool
}

// loadLessonScope resolves a lesson of the wanted type the caller may view.
// Draft lessons are hidden from callers who cannot see graded fields.
func loadLessonScope(ctx context.Context, store *repository.Store, identity string, want model.LessonType, callerID string) (*lessonScope, error) {
	lesson, err := lessonResolver.Resolve(ctx, store, identity)
	if err != nil {
		return nil, err
	}
	if lesson.Type != want {
		return nil, apperr.Forbidden("lesson is not of type %s", want)
	}
	course, caller, err := validateAndGetCourse(ctx, store, callerID, lesson.CourseID, false)
	if err != nil {
		return nil, err
	}
	scope := &lessonScope{
		Lesson:     lesson,
		Course:     course,
		Caller:     caller,
		Privileged: permission.CanSeeGradedFields(caller, course),
	}
	if !scope.Privileged && lesson.Status != model.CoursePublished {
		return nil, apperr.NotFound("lesson not found")
	}
	return scope, nil
}

// validateQuestionLesson checks a question may be attached to the lesson: it
// must exist, have the matching type and be editable by the caller.
func validateQuestionLesson(ctx context.Context, tx *repository.Store, lessonID string, want model.LessonType, callerID string) (*model.Lesson, error) {
	lesson, err := lessonResolver.Resolve(ctx, tx, lessonID)
	if err != nil {
		return nil, err
	}
	if lesson.Type != want {
		logger.Log.Warn("question type does not match the lesson",
			zap.String("lesson", lesson.ID), zap.String("type", string(lesson.Type)))
		return nil, apperr.Forbidden("lesson is not of type %s", want)
	}
	if _, _, err := validateAndGetCourse(ctx, tx, callerID, lesson.CourseID, true); err != nil {
		return nil, err
	}
	return lesson, nil
}

// resolveSubmittableLesson applies the rules every submission batch shares.
func resolveSubmittableLesson(ctx context.Context, tx *repository.Store, identity string, want model.LessonType, callerID string) (*model.Lesson, *model.User, error) {
	lesson, err := lessonResolver.Resolve(ctx, tx, identity)
	if err != nil {
		return nil, nil, err
	}
	if lesson.Type != want {
		return nil, nil, apperr.Forbidden("lesson is not of type %s", want)
	}
	course, err := tx.Courses.FindOne(ctx, repository.Where("id = ?", lesson.CourseID), repository.Preload("CourseTeachers"))
	if err != nil {
		return nil, nil, err
	}
	if course == nil {
		return nil, nil, apperr.NotFound("course not found")
	}
	if want == model.LessonFeedback && course.Status == model.CourseCompleted {
		return nil, nil, apperr.Forbidden("feedback cannot be submitted for a completed course")
	}
	if course.Status != model.CoursePublished || lesson.Status != model.CoursePublished {
		return nil, nil, apperr.NotFound("lesson not found")
	}
	caller, err := loadCaller(ctx, tx, callerID)
	if err != nil {
		return nil, nil, err
	}
	if permission.IsCourseTeacher(caller.ID, course) {
		logger.Log.Warn("course teacher attempted to submit",
			zap.String("lesson", lesson.ID), zap.String("user", caller.ID))
		return nil, nil, apperr.Forbidden("course teachers cannot submit to their own course")
	}
	return lesson, caller, nil
}

func toAttachmentResponses[A any](items []A, fn func(*A) AttachmentResponse) []AttachmentResponse {
	out := make([]AttachmentResponse, 0, len(items))
	for i := range items {
		out = append(out, fn(&items[i]))
	}
	return out
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func submitAttributes(identity, callerID string, payloads int) trace.SpanStartEventOption {
	return trace.WithAttributes(
		attribute.String("lesson.identity", identity),
		attribute.String("user.id", callerID),
		attribute.Int("payload.count", payloads),
	)
}
