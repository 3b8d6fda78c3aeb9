package service

import (
	"academy_backend/internal/apperr"
	"academy_backend/internal/model"
	"academy_backend/internal/repository"
	"academy_backend/pkg/logger"
	"academy_backend/pkg/monitoring"
	"academy_backend/pkg/tracing"
	"context"
	"strconv"

	"go.uber.org/zap"
)

// AssignmentSubmissionRequest is a learner's answer to one assignment question.
// ID names an earlier submission to overwrite.
type AssignmentSubmissionRequest struct {
	ID             string              `json:"id"`
	AssignmentID   string              `json:"assignmentId" binding:"required"`
	SelectedOption []string            `json:"selectedOption"`
	Answer         string              `json:"answer"`
	Attachments    []AttachmentRequest `json:"attachments" binding:"dive"`
}

// SubmitAll records the caller's answers for every active question named in
// payloads. The batch commits as a whole or not at all.
func (s *AssignmentService) SubmitAll(ctx context.Context, lessonIdentity string, payloads []AssignmentSubmissionRequest, callerID string) (err error) {
	ctx, span := tracing.Tracer.Start(ctx, "AssignmentService.SubmitAll", submitAttributes(lessonIdentity, callerID, len(payloads)))
	defer func() { endSpan(span, err) }()
	defer guard("submit the assignment", &err, zap.String("lesson", lessonIdentity), zap.String("user", callerID))

	return s.Store.Transaction(ctx, func(tx *repository.Store) error {
		lesson, caller, err := resolveSubmittableLesson(ctx, tx, lessonIdentity, model.LessonAssignment, callerID)
		if err != nil {
			return err
		}

		questions, err := tx.Assignments.FindAll(ctx,
			repository.Where("lesson_id = ? AND is_active = ?", lesson.ID, true),
			repository.Preload("AssignmentQuestionOptions"))
		if err != nil {
			return err
		}
		byID := make(map[string]*model.Assignment, len(questions))
		for i := range questions {
			byID[questions[i].ID] = &questions[i]
		}

		for _, p := range payloads {
			question, ok := byID[p.AssignmentID]
			if !ok {
				logger.Log.Debug("skipping answer for unknown or inactive assignment",
					zap.String("lesson", lesson.ID), zap.String("assignment", p.AssignmentID))
				continue
			}
			if err := submitAssignment(ctx, tx, lesson, question, caller.ID, p); err != nil {
				return err
			}
		}
		return nil
	})
}

func submitAssignment(ctx context.Context, tx *repository.Store, lesson *model.Lesson, question *model.Assignment, userID string, p AssignmentSubmissionRequest) error {
	where := repository.Where("assignment_id = ? AND user_id = ?", question.ID, userID)
	if p.ID != "" {
		where = where.And(repository.Where("id = ?", p.ID))
	}
	sub, err := tx.AssignmentSubmissions.FindOne(ctx, where, repository.Preload("AssignmentSubmissionAttachments"))
	if err != nil {
		return err
	}
	if sub == nil && p.ID != "" {
		return apperr.NotFound("assignment submission not found")
	}

	isNew := sub == nil
	if isNew {
		sub = &model.AssignmentSubmission{LessonID: lesson.ID, AssignmentID: question.ID, UserID: userID}
		sub.EnsureID()
	}

	switch {
	case question.Type.IsChoice():
		selected := normalizeSelection(p.SelectedOption)
		correct := make([]string, 0, len(question.AssignmentQuestionOptions))
		for _, o := range question.AssignmentQuestionOptions {
			if o.IsCorrect {
				correct = append(correct, o.ID)
			}
		}
		isCorrect := IsCorrectSelection(correct, selected)
		sub.SelectedOption = model.JoinOptions(selected)
		sub.IsCorrect = &isCorrect
		monitoring.GradedCounter.WithLabelValues(strconv.FormatBool(isCorrect)).Inc()
	case question.Type == model.QuestionSubjective:
		sub.Answer = p.Answer
		// attachments are only swapped on a submission that already carries some
		if !isNew && len(sub.AssignmentSubmissionAttachments) > 0 {
			if err := replaceSubmissionAttachments(ctx, tx, sub, p.Attachments, userID); err != nil {
				return err
			}
		}
	}

	sub.Stamp(userID)
	outcome := "updated"
	if isNew {
		outcome = "created"
		err = tx.AssignmentSubmissions.Insert(ctx, sub)
	} else {
		err = tx.AssignmentSubmissions.Update(ctx, sub)
	}
	if err != nil {
		return err
	}
	monitoring.SubmissionCounter.WithLabelValues(string(model.LessonAssignment), outcome).Inc()
	return nil
}

func replaceSubmissionAttachments(ctx context.Context, tx *repository.Store, sub *model.AssignmentSubmission, attachments []AttachmentRequest, userID string) error {
	if err := tx.AssignmentSubmissionAttachments.DeleteWhere(ctx, repository.Where("assignment_submission_id = ?", sub.ID)); err != nil {
		return err
	}
	sub.AssignmentSubmissionAttachments = make([]model.AssignmentSubmissionAttachment, 0, len(attachments))
	rows := make([]*model.AssignmentSubmissionAttachment, 0, len(attachments))
	for _, at := range attachments {
		sub.AssignmentSubmissionAttachments = append(sub.AssignmentSubmissionAttachments, model.AssignmentSubmissionAttachment{
			AssignmentSubmissionID: sub.ID,
			FileURL:                at.FileURL,
			Name:                   at.Name,
			MimeType:               at.MimeType,
		})
	}
	for i := range sub.AssignmentSubmissionAttachments {
		sub.AssignmentSubmissionAttachments[i].Stamp(userID)
		rows = append(rows, &sub.AssignmentSubmissionAttachments[i])
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.AssignmentSubmissionAttachments.Insert(ctx, rows...)
}
