package service

import (
	"academy_backend/internal/apperr"
	"academy_backend/internal/model"
	"academy_backend/internal/repository"
	"academy_backend/internal/util"
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

type AssignmentSearchCriteria struct {
	BaseSearchCriteria
	LessonIdentity string `form:"lessonIdentity" json:"lessonIdentity"`
	// UserID selects whose submissions are shown. Ignored for learners.
	UserID string `form:"userId" json:"userId"`

	scope *lessonScope
}

type QuestionOptionRequest struct {
	Option    string `json:"option" binding:"required"`
	IsCorrect bool   `json:"isCorrect"`
}

type AssignmentRequest struct {
	Name        string                  `json:"name" binding:"required"`
	Description string                  `json:"description"`
	Hints       string                  `json:"hints"`
	Type        model.QuestionType      `json:"type" binding:"required"`
	IsActive    *bool                   `json:"isActive"`
	Options     []QuestionOptionRequest `json:"answers" binding:"dive"`
	Attachments []AttachmentRequest     `json:"attachments" binding:"dive"`
}

type AssignmentOptionResponse struct {
	ID         string `json:"id"`
	Option     string `json:"option"`
	Order      int    `json:"order"`
	IsCorrect  *bool  `json:"isCorrect"`
	IsSelected bool   `json:"isSelected"`
}

type AssignmentSubmissionResponse struct {
	ID             string               `json:"id"`
	UserID         string               `json:"userId"`
	SelectedOption []string             `json:"selectedOption"`
	Answer         string               `json:"answer"`
	IsCorrect      *bool                `json:"isCorrect"`
	Attachments    []AttachmentResponse `json:"attachments"`
	CreatedAt      time.Time            `json:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`
}

// AssignmentResponse is an assignment question as a caller may see it. Graded
// fields are null unless the caller teaches the course or is an admin.
type AssignmentResponse struct {
	ID          string                        `json:"id"`
	LessonID    string                        `json:"lessonId"`
	Name        string                        `json:"name"`
	Description string                        `json:"description"`
	Hints       *string                       `json:"hints"`
	Type        model.QuestionType            `json:"type"`
	Order       int                           `json:"order"`
	IsActive    bool                          `json:"isActive"`
	Attachments []AttachmentResponse          `json:"attachments"`
	Options     []AssignmentOptionResponse    `json:"answers"`
	Submission  *AssignmentSubmissionResponse `json:"submission"`
	CreatedAt   time.Time                     `json:"createdAt"`
}

type SubmittedStudent struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	ImageURL string `json:"imageUrl"`
}

type assignmentHooks struct {
	BaseHooks[model.Assignment, *AssignmentSearchCriteria]
}

func (assignmentHooks) ConstructQueryConditions(ctx context.Context, store *repository.Store, q repository.Query, c *AssignmentSearchCriteria) (repository.Query, error) {
	if c.LessonIdentity == "" {
		return nil, apperr.Validation("lesson identity is required", apperr.FieldError{Field: "lessonIdentity", Message: "lessonIdentity is a required field"})
	}
	scope, err := loadLessonScope(ctx, store, c.LessonIdentity, model.LessonAssignment, c.CurrentUserID)
	if err != nil {
		return nil, err
	}
	c.scope = scope

	q = q.And(repository.Where("lesson_id = ?", scope.Lesson.ID))
	if !scope.Privileged {
		q = q.And(repository.Where("is_active = ?", true))
	}
	if c.Search != "" {
		q = q.And(repository.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(strings.TrimSpace(c.Search))+"%"))
	}
	return q, nil
}

func (assignmentHooks) CreatePreHook(ctx context.Context, tx *repository.Store, a *model.Assignment) error {
	lesson, err := validateQuestionLesson(ctx, tx, a.LessonID, model.LessonAssignment, a.CreatedBy)
	if err != nil {
		return err
	}
	a.LessonID = lesson.ID
	a.EnsureID()
	count, err := tx.Assignments.Count(ctx, repository.Where("lesson_id = ?", lesson.ID))
	if err != nil {
		return err
	}
	a.Order = int(count) + 1
	return replaceAssignmentChildren(ctx, tx, a, false)
}

func (assignmentHooks) PopulateRetrievedEntity(ctx context.Context, store *repository.Store, a *model.Assignment) error {
	where := repository.Where("assignment_id = ?", a.ID)
	attachments, err := store.AssignmentAttachments.FindAll(ctx, where.And(repository.OrderBy("sort_order", false)))
	if err != nil {
		return err
	}
	options, err := store.AssignmentOptions.FindAll(ctx, where.And(repository.OrderBy("sort_order", false)))
	if err != nil {
		return err
	}
	a.AssignmentAttachments = attachments
	a.AssignmentQuestionOptions = options
	return nil
}

func (assignmentHooks) CheckReadPermissions(ctx context.Context, store *repository.Store, a *model.Assignment, callerID string) error {
	scope, err := loadLessonScope(ctx, store, a.LessonID, model.LessonAssignment, callerID)
	if err != nil {
		return err
	}
	if !scope.Privileged && !a.IsActive {
		return apperr.NotFound("assignment not found")
	}
	return nil
}

func (assignmentHooks) CheckUpdatePermissions(ctx context.Context, tx *repository.Store, a *model.Assignment, callerID string) error {
	_, err := validateQuestionLesson(ctx, tx, a.LessonID, model.LessonAssignment, callerID)
	return err
}

func (assignmentHooks) CheckDeletePermissions(ctx context.Context, tx *repository.Store, a *model.Assignment, callerID string) error {
	if _, err := validateQuestionLesson(ctx, tx, a.LessonID, model.LessonAssignment, callerID); err != nil {
		return err
	}
	submitted, err := tx.AssignmentSubmissions.Exists(ctx, repository.Where("assignment_id = ?", a.ID))
	if err != nil {
		return err
	}
	if submitted {
		return apperr.Forbidden("assignment contains submissions and cannot be deleted")
	}
	where := repository.Where("assignment_id = ?", a.ID)
	if err := tx.AssignmentOptions.DeleteWhere(ctx, where); err != nil {
		return err
	}
	return tx.AssignmentAttachments.DeleteWhere(ctx, where)
}

// replaceAssignmentChildren swaps the owned options and attachments for the
// ones held on a. Existing rows are deleted first when replace is set.
func replaceAssignmentChildren(ctx context.Context, tx *repository.Store, a *model.Assignment, replace bool) error {
	where := repository.Where("assignment_id = ?", a.ID)
	if replace {
		if err := tx.AssignmentOptions.DeleteWhere(ctx, where); err != nil {
			return err
		}
		if err := tx.AssignmentAttachments.DeleteWhere(ctx, where); err != nil {
			return err
		}
	}
	if !a.Type.IsChoice() {
		a.AssignmentQuestionOptions = nil
	}
	options := make([]*model.AssignmentQuestionOption, 0, len(a.AssignmentQuestionOptions))
	for i := range a.AssignmentQuestionOptions {
		o := &a.AssignmentQuestionOptions[i]
		o.ID = ""
		o.AssignmentID = a.ID
		o.Order = i + 1
		o.Stamp(a.UpdatedBy)
		options = append(options, o)
	}
	attachments := make([]*model.AssignmentAttachment, 0, len(a.AssignmentAttachments))
	for i := range a.AssignmentAttachments {
		at := &a.AssignmentAttachments[i]
		at.ID = ""
		at.AssignmentID = a.ID
		at.Order = i + 1
		at.Stamp(a.UpdatedBy)
		attachments = append(attachments, at)
	}
	if len(options) > 0 {
		if err := tx.AssignmentOptions.Insert(ctx, options...); err != nil {
			return err
		}
	}
	if len(attachments) > 0 {
		return tx.AssignmentAttachments.Insert(ctx, attachments...)
	}
	return nil
}

// deleteAssignmentsOf removes the assignments matched by where with their children.
func deleteAssignmentsOf(ctx context.Context, tx *repository.Store, where repository.Query) error {
	var ids []string
	if err := tx.Assignments.Pluck(ctx, where, "id", &ids); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	children := repository.Where("assignment_id IN ?", ids)
	if err := tx.AssignmentOptions.DeleteWhere(ctx, children); err != nil {
		return err
	}
	if err := tx.AssignmentAttachments.DeleteWhere(ctx, children); err != nil {
		return err
	}
	return tx.Assignments.DeleteWhere(ctx, repository.Where("id IN ?", ids))
}

func validateAssignmentRequest(req AssignmentRequest) error {
	switch req.Type {
	case model.QuestionSubjective:
		return nil
	case model.QuestionSingleChoice, model.QuestionMultipleChoice:
	default:
		return apperr.Validation("invalid question type", apperr.FieldError{Field: "type", Message: "type must be subjective, single_choice or multiple_choice"})
	}
	if len(req.Options) < 2 {
		return apperr.Validation("choice question needs options", apperr.FieldError{Field: "answers", Message: "at least two answers are required"})
	}
	correct := 0
	for _, o := range req.Options {
		if o.IsCorrect {
			correct++
		}
	}
	if correct == 0 {
		return apperr.Validation("choice question needs a correct answer", apperr.FieldError{Field: "answers", Message: "at least one answer must be correct"})
	}
	if req.Type == model.QuestionSingleChoice && correct > 1 {
		return apperr.Validation("single choice question has more than one correct answer", apperr.FieldError{Field: "answers", Message: "exactly one answer must be correct"})
	}
	return nil
}

func (req AssignmentRequest) apply(a *model.Assignment) {
	a.Name = strings.TrimSpace(req.Name)
	a.Description = req.Description
	a.Hints = req.Hints
	a.Type = req.Type
	if req.IsActive != nil {
		a.IsActive = *req.IsActive
	}
	a.AssignmentQuestionOptions = make([]model.AssignmentQuestionOption, 0, len(req.Options))
	for _, o := range req.Options {
		a.AssignmentQuestionOptions = append(a.AssignmentQuestionOptions, model.AssignmentQuestionOption{Option: o.Option, IsCorrect: o.IsCorrect})
	}
	a.AssignmentAttachments = make([]model.AssignmentAttachment, 0, len(req.Attachments))
	for _, at := range req.Attachments {
		a.AssignmentAttachments = append(a.AssignmentAttachments, model.AssignmentAttachment{FileURL: at.FileURL, Name: at.Name, MimeType: at.MimeType})
	}
}

type AssignmentService struct {
	*EntityService[model.Assignment, *AssignmentSearchCriteria]
}

func NewAssignmentService(store *repository.Store) *AssignmentService {
	s := NewEntityService[model.Assignment, *AssignmentSearchCriteria](store, assignmentHooks{}, "assignment")
	s.DefaultSort = "sort_order"
	return &AssignmentService{EntityService: s}
}

func (s *AssignmentService) CreateAssignment(ctx context.Context, lessonIdentity string, req AssignmentRequest, callerID string) (*model.Assignment, error) {
	if err := validateAssignmentRequest(req); err != nil {
		return nil, err
	}
	a := &model.Assignment{LessonID: lessonIdentity, IsActive: true}
	req.apply(a)
	return s.Create(ctx, a, callerID)
}

// UpdateAssignment replaces the question with req, options and attachments included.
func (s *AssignmentService) UpdateAssignment(ctx context.Context, identity string, req AssignmentRequest, callerID string) (*model.Assignment, error) {
	if err := validateAssignmentRequest(req); err != nil {
		return nil, err
	}
	return s.Update(ctx, identity, callerID, func(ctx context.Context, tx *repository.Store, a *model.Assignment) error {
		submitted, err := tx.AssignmentSubmissions.Exists(ctx, repository.Where("assignment_id = ?", a.ID))
		if err != nil {
			return err
		}
		if submitted && a.Type != req.Type {
			return apperr.Forbidden("question type cannot change once answers were submitted")
		}
		req.apply(a)
		a.Stamp(callerID)
		return replaceAssignmentChildren(ctx, tx, a, true)
	})
}

// GetAssignment returns one question redacted for the caller, with the
// caller's own submission attached.
func (s *AssignmentService) GetAssignment(ctx context.Context, identity, callerID string) (_ *AssignmentResponse, err error) {
	a, err := s.GetByIdentity(ctx, identity, callerID)
	if err != nil {
		return nil, err
	}
	defer guard("fetch the assignment", &err, zap.String("identity", identity), zap.String("user", callerID))

	scope, err := loadLessonScope(ctx, s.Store, a.LessonID, model.LessonAssignment, callerID)
	if err != nil {
		return nil, err
	}
	sub, err := s.Store.AssignmentSubmissions.FindOne(ctx,
		repository.Where("assignment_id = ? AND user_id = ?", a.ID, callerID),
		repository.Preload("AssignmentSubmissionAttachments"))
	if err != nil {
		return nil, err
	}
	resp := toAssignmentResponse(a, a.AssignmentQuestionOptions, a.AssignmentAttachments, sub, scope.Privileged)
	return &resp, nil
}

// Search lists the lesson's assignments with the target user's submissions.
// Learners always see their own submissions and never the graded fields.
func (s *AssignmentService) Search(ctx context.Context, c *AssignmentSearchCriteria) (_ *SearchResult[AssignmentResponse], err error) {
	page, err := s.EntityService.Search(ctx, c)
	if err != nil {
		return nil, err
	}
	defer guard("search the assignments", &err, zap.String("lesson", c.LessonIdentity), zap.String("user", c.CurrentUserID))

	scope := c.scope
	userID := c.UserID
	if !scope.Privileged || userID == "" {
		userID = scope.Caller.ID
	}

	ids := make([]string, 0, len(page.Items))
	for _, a := range page.Items {
		ids = append(ids, a.ID)
	}
	options := map[string][]model.AssignmentQuestionOption{}
	attachments := map[string][]model.AssignmentAttachment{}
	submissions := map[string]*model.AssignmentSubmission{}
	if len(ids) > 0 {
		in := repository.Where("assignment_id IN ?", ids)
		opts, err := s.Store.AssignmentOptions.FindAll(ctx, in.And(repository.OrderBy("sort_order", false)))
		if err != nil {
			return nil, err
		}
		for _, o := range opts {
			options[o.AssignmentID] = append(options[o.AssignmentID], o)
		}
		atts, err := s.Store.AssignmentAttachments.FindAll(ctx, in.And(repository.OrderBy("sort_order", false)))
		if err != nil {
			return nil, err
		}
		for _, at := range atts {
			attachments[at.AssignmentID] = append(attachments[at.AssignmentID], at)
		}
		subs, err := s.Store.AssignmentSubmissions.FindAll(ctx,
			in.And(repository.Where("user_id = ?", userID)),
			repository.Preload("AssignmentSubmissionAttachments"))
		if err != nil {
			return nil, err
		}
		for i := range subs {
			submissions[subs[i].AssignmentID] = &subs[i]
		}
	}

	return MapResult(page, func(a *model.Assignment) AssignmentResponse {
		return toAssignmentResponse(a, options[a.ID], attachments[a.ID], submissions[a.ID], scope.Privileged)
	}), nil
}

func toAssignmentResponse(a *model.Assignment, options []model.AssignmentQuestionOption, attachments []model.AssignmentAttachment, sub *model.AssignmentSubmission, privileged bool) AssignmentResponse {
	resp := AssignmentResponse{
		ID:          a.ID,
		LessonID:    a.LessonID,
		Name:        a.Name,
		Description: a.Description,
		Type:        a.Type,
		Order:       a.Order,
		IsActive:    a.IsActive,
		CreatedAt:   a.CreatedAt,
		Attachments: toAttachmentResponses(attachments, func(at *model.AssignmentAttachment) AttachmentResponse {
			return AttachmentResponse{ID: at.ID, FileURL: at.FileURL, Name: at.Name, MimeType: at.MimeType}
		}),
		Options: make([]AssignmentOptionResponse, 0, len(options)),
	}
	if privileged {
		resp.Hints = util.StringPtr(a.Hints)
	}

	var selected map[string]struct{}
	if sub != nil {
		selectedIDs := model.SplitOptions(sub.SelectedOption)
		selected = optionSet(selectedIDs)
		resp.Submission = &AssignmentSubmissionResponse{
			ID:             sub.ID,
			UserID:         sub.UserID,
			SelectedOption: selectedIDs,
			Answer:         sub.Answer,
			CreatedAt:      sub.CreatedAt,
			UpdatedAt:      sub.UpdatedAt,
			Attachments: toAttachmentResponses(sub.AssignmentSubmissionAttachments, func(at *model.AssignmentSubmissionAttachment) AttachmentResponse {
				return AttachmentResponse{ID: at.ID, FileURL: at.FileURL, Name: at.Name, MimeType: at.MimeType}
			}),
		}
		if privileged && sub.IsCorrect != nil {
			resp.Submission.IsCorrect = util.BoolPtr(*sub.IsCorrect)
		}
	}

	for _, o := range options {
		opt := AssignmentOptionResponse{ID: o.ID, Option: o.Option, Order: o.Order}
		if privileged {
			opt.IsCorrect = util.BoolPtr(o.IsCorrect)
		}
		_, opt.IsSelected = selected[o.ID]
		resp.Options = append(resp.Options, opt)
	}
	return resp
}

// SubmittedStudents lists the users who answered any assignment of the lesson.
func (s *AssignmentService) SubmittedStudents(ctx context.Context, lessonIdentity, callerID string) (_ []SubmittedStudent, err error) {
	defer guard("fetch the submitted students", &err, zap.String("lesson", lessonIdentity), zap.String("user", callerID))

	lesson, err := validateQuestionLesson(ctx, s.Store, lessonIdentity, model.LessonAssignment, callerID)
	if err != nil {
		return nil, err
	}
	return submittedStudents(ctx, s.Store, func(ids *[]string) error {
		return s.Store.AssignmentSubmissions.Pluck(ctx, repository.Where("lesson_id = ?", lesson.ID), "user_id", ids)
	})
}

func submittedStudents(ctx context.Context, store *repository.Store, pluck func(*[]string) error) ([]SubmittedStudent, error) {
	var userIDs []string
	if err := pluck(&userIDs); err != nil {
		return nil, err
	}
	out := make([]SubmittedStudent, 0, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	users, err := store.Users.FindAll(ctx, repository.And(
		repository.Where("id IN ?", userIDs),
		repository.OrderBy("first_name", false),
		repository.OrderBy("id", false),
	))
	if err != nil {
		return nil, err
	}
	for i := range users {
		out = append(out, SubmittedStudent{
			ID:       users[i].ID,
			FullName: users[i].FullName(),
			Email:    users[i].Email,
			ImageURL: users[i].ImageURL,
		})
	}
	return out, nil
}
