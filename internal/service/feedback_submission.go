package service

import (
	"academy_backend/internal/apperr"
	"academy_backend/internal/model"
	"academy_backend/internal/repository"
	"academy_backend/pkg/logger"
	"academy_backend/pkg/monitoring"
	"academy_backend/pkg/tracing"
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// FeedbackSubmissionRequest is a learner's answer to one feedback question.
type FeedbackSubmissionRequest struct {
	ID             string   `json:"id"`
	FeedbackID     string   `json:"feedbackId" binding:"required"`
	SelectedOption []string `json:"selectedOption"`
	Answer         string   `json:"answer"`
	Rating         *int     `json:"rating" binding:"omitempty,min=1,max=5"`
}

// SubmitAll records the caller's feedback for the lesson and marks the lesson
// completed for them. The batch commits as a whole or not at all.
func (s *FeedbackService) SubmitAll(ctx context.Context, lessonIdentity string, payloads []FeedbackSubmissionRequest, callerID string) (err error) {
	ctx, span := tracing.Tracer.Start(ctx, "FeedbackService.SubmitAll", submitAttributes(lessonIdentity, callerID, len(payloads)))
	defer func() { endSpan(span, err) }()
	defer guard("submit the feedback", &err, zap.String("lesson", lessonIdentity), zap.String("user", callerID))

	return s.Store.Transaction(ctx, func(tx *repository.Store) error {
		lesson, caller, err := resolveSubmittableLesson(ctx, tx, lessonIdentity, model.LessonFeedback, callerID)
		if err != nil {
			return err
		}

		questions, err := tx.Feedbacks.FindAll(ctx,
			repository.Where("lesson_id = ? AND is_active = ?", lesson.ID, true),
			repository.Preload("FeedbackQuestionOptions"))
		if err != nil {
			return err
		}
		byID := make(map[string]*model.Feedback, len(questions))
		for i := range questions {
			byID[questions[i].ID] = &questions[i]
		}

		for _, p := range payloads {
			question, ok := byID[p.FeedbackID]
			if !ok {
				logger.Log.Debug("skipping answer for unknown or inactive feedback",
					zap.String("lesson", lesson.ID), zap.String("feedback", p.FeedbackID))
				continue
			}
			if err := submitFeedback(ctx, tx, lesson, question, caller.ID, p); err != nil {
				return err
			}
		}
		return markLessonCompleted(ctx, tx, lesson, caller.ID)
	})
}

func submitFeedback(ctx context.Context, tx *repository.Store, lesson *model.Lesson, question *model.Feedback, userID string, p FeedbackSubmissionRequest) error {
	where := repository.Where("feedback_id = ? AND user_id = ?", question.ID, userID)
	if p.ID != "" {
		where = where.And(repository.Where("id = ?", p.ID))
	}
	sub, err := tx.FeedbackSubmissions.FindOne(ctx, where)
	if err != nil {
		return err
	}
	if sub == nil && p.ID != "" {
		return apperr.NotFound("feedback submission not found")
	}

	isNew := sub == nil
	if isNew {
		sub = &model.FeedbackSubmission{LessonID: lesson.ID, FeedbackID: question.ID, UserID: userID}
		sub.EnsureID()
	}

	switch {
	case question.Type.IsChoice():
		sub.SelectedOption = model.JoinOptions(normalizeSelection(p.SelectedOption))
	case question.Type == model.QuestionRating:
		sub.Rating = p.Rating
	case question.Type == model.QuestionSubjective:
		sub.Answer = p.Answer
	}

	sub.Stamp(userID)
	outcome := "updated"
	if isNew {
		outcome = "created"
		err = tx.FeedbackSubmissions.Insert(ctx, sub)
	} else {
		err = tx.FeedbackSubmissions.Update(ctx, sub)
	}
	if err != nil {
		return errors.Wrapf(err, "save feedback submission %s", sub.ID)
	}
	monitoring.SubmissionCounter.WithLabelValues(string(model.LessonFeedback), outcome).Inc()
	return nil
}

// markLessonCompleted records a passed completion for the lesson unless one exists.
func markLessonCompleted(ctx context.Context, tx *repository.Store, lesson *model.Lesson, userID string) error {
	exists, err := tx.WatchHistories.Exists(ctx, repository.Where("lesson_id = ? AND user_id = ?", lesson.ID, userID))
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	history := &model.WatchHistory{
		CourseID:          lesson.CourseID,
		LessonID:          lesson.ID,
		UserID:            userID,
		IsCompleted:       true,
		IsPassed:          true,
		WatchedPercentage: 100,
	}
	history.Stamp(userID)
	return tx.WatchHistories.Insert(ctx, history)
}
