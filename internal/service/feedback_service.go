package service

import (
	"academy_backend/internal/apperr"
	"academy_backend/internal/model"
	"academy_backend/internal/repository"
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

type FeedbackSearchCriteria struct {
	BaseSearchCriteria
	LessonIdentity string `form:"lessonIdentity" json:"lessonIdentity"`
	// UserID selects whose answers are shown. Ignored for learners.
	UserID string `form:"userId" json:"userId"`

	scope *lessonScope
}

type FeedbackRequest struct {
	Name        string             `json:"name" binding:"required"`
	Description string             `json:"description"`
	Type        model.QuestionType `json:"type" binding:"required"`
	IsActive    *bool              `json:"isActive"`
	Options     []string           `json:"answers" binding:"dive,required"`
}

type FeedbackOptionResponse struct {
	ID         string `json:"id"`
	Option     string `json:"option"`
	Order      int    `json:"order"`
	IsSelected bool   `json:"isSelected"`
}

type FeedbackSubmissionResponse struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	SelectedOption []string  `json:"selectedOption"`
	Answer         string    `json:"answer"`
	Rating         *int      `json:"rating"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type FeedbackResponse struct {
	ID          string                      `json:"id"`
	LessonID    string                      `json:"lessonId"`
	Name        string                      `json:"name"`
	Description string                      `json:"description"`
	Type        model.QuestionType          `json:"type"`
	Order       int                         `json:"order"`
	IsActive    bool                        `json:"isActive"`
	Options     []FeedbackOptionResponse    `json:"answers"`
	Submission  *FeedbackSubmissionResponse `json:"submission"`
	CreatedAt   time.Time                   `json:"createdAt"`
}

// FeedbackChartItem aggregates the answers to one feedback question.
type FeedbackChartItem struct {
	FeedbackID    string                `json:"feedbackId"`
	Name          string                `json:"name"`
	Type          model.QuestionType    `json:"type"`
	Responses     int                   `json:"responses"`
	Options       []FeedbackOptionTally `json:"options,omitempty"`
	Ratings       map[int]int           `json:"ratings,omitempty"`
	AverageRating float64               `json:"averageRating,omitempty"`
	Answers       []string              `json:"answers,omitempty"`
}

type FeedbackOptionTally struct {
	ID     string `json:"id"`
	Option string `json:"option"`
	Count  int    `json:"count"`
}

type feedbackHooks struct {
	BaseHooks[model.Feedback, *FeedbackSearchCriteria]
}

func (feedbackHooks) ConstructQueryConditions(ctx context.Context, store *repository.Store, q repository.Query, c *FeedbackSearchCriteria) (repository.Query, error) {
	if c.LessonIdentity == "" {
		return nil, apperr.Validation("lesson identity is required", apperr.FieldError{Field: "lessonIdentity", Message: "lessonIdentity is a required field"})
	}
	scope, err := loadLessonScope(ctx, store, c.LessonIdentity, model.LessonFeedback, c.CurrentUserID)
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

func (feedbackHooks) CreatePreHook(ctx context.Context, tx *repository.Store, f *model.Feedback) error {
	lesson, err := validateQuestionLesson(ctx, tx, f.LessonID, model.LessonFeedback, f.CreatedBy)
	if err != nil {
		return err
	}
	f.LessonID = lesson.ID
	f.EnsureID()
	count, err := tx.Feedbacks.Count(ctx, repository.Where("lesson_id = ?", lesson.ID))
	if err != nil {
		return err
	}
	f.Order = int(count) + 1
	return replaceFeedbackOptions(ctx, tx, f, false)
}

func (feedbackHooks) PopulateRetrievedEntity(ctx context.Context, store *repository.Store, f *model.Feedback) error {
	options, err := store.FeedbackOptions.FindAll(ctx, repository.And(
		repository.Where("feedback_id = ?", f.ID),
		repository.OrderBy("sort_order", false),
	))
	if err != nil {
		return err
	}
	f.FeedbackQuestionOptions = options
	return nil
}

func (feedbackHooks) CheckReadPermissions(ctx context.Context, store *repository.Store, f *model.Feedback, callerID string) error {
	scope, err := loadLessonScope(ctx, store, f.LessonID, model.LessonFeedback, callerID)
	if err != nil {
		return err
	}
	if !scope.Privileged && !f.IsActive {
		return apperr.NotFound("feedback not found")
	}
	return nil
}

func (feedbackHooks) CheckUpdatePermissions(ctx context.Context, tx *repository.Store, f *model.Feedback, callerID string) error {
	_, err := validateQuestionLesson(ctx, tx, f.LessonID, model.LessonFeedback, callerID)
	return err
}

func (feedbackHooks) CheckDeletePermissions(ctx context.Context, tx *repository.Store, f *model.Feedback, callerID string) error {
	if _, err := validateQuestionLesson(ctx, tx, f.LessonID, model.LessonFeedback, callerID); err != nil {
		return err
	}
	submitted, err := tx.FeedbackSubmissions.Exists(ctx, repository.Where("feedback_id = ?", f.ID))
	if err != nil {
		return err
	}
	if submitted {
		return apperr.Forbidden("feedback contains submissions and cannot be deleted")
	}
	return tx.FeedbackOptions.DeleteWhere(ctx, repository.Where("feedback_id = ?", f.ID))
}

func replaceFeedbackOptions(ctx context.Context, tx *repository.Store, f *model.Feedback, replace bool) error {
	if replace {
		if err := tx.FeedbackOptions.DeleteWhere(ctx, repository.Where("feedback_id = ?", f.ID)); err != nil {
			return err
		}
	}
	if !f.Type.IsChoice() {
		f.FeedbackQuestionOptions = nil
		return nil
	}
	rows := make([]*model.FeedbackQuestionOption, 0, len(f.FeedbackQuestionOptions))
	for i := range f.FeedbackQuestionOptions {
		o := &f.FeedbackQuestionOptions[i]
		o.ID = ""
		o.FeedbackID = f.ID
		o.Order = i + 1
		o.Stamp(f.UpdatedBy)
		rows = append(rows, o)
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.FeedbackOptions.Insert(ctx, rows...)
}

func deleteFeedbacksOf(ctx context.Context, tx *repository.Store, where repository.Query) error {
	var ids []string
	if err := tx.Feedbacks.Pluck(ctx, where, "id", &ids); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	if err := tx.FeedbackOptions.DeleteWhere(ctx, repository.Where("feedback_id IN ?", ids)); err != nil {
		return err
	}
	return tx.Feedbacks.DeleteWhere(ctx, repository.Where("id IN ?", ids))
}

func validateFeedbackRequest(req FeedbackRequest) error {
	switch req.Type {
	case model.QuestionSubjective, model.QuestionRating:
		return nil
	case model.QuestionSingleChoice, model.QuestionMultipleChoice:
		if len(req.Options) < 2 {
			return apperr.Validation("choice question needs options", apperr.FieldError{Field: "answers", Message: "at least two answers are required"})
		}
		return nil
	}
	return apperr.Validation("invalid question type", apperr.FieldError{Field: "type", Message: "type must be subjective, single_choice, multiple_choice or rating"})
}

func (req FeedbackRequest) apply(f *model.Feedback) {
	f.Name = strings.TrimSpace(req.Name)
	f.Description = req.Description
	f.Type = req.Type
	if req.IsActive != nil {
		f.IsActive = *req.IsActive
	}
	f.FeedbackQuestionOptions = make([]model.FeedbackQuestionOption, 0, len(req.Options))
	for _, o := range req.Options {
		f.FeedbackQuestionOptions = append(f.FeedbackQuestionOptions, model.FeedbackQuestionOption{Option: o})
	}
}

type FeedbackService struct {
	*EntityService[model.Feedback, *FeedbackSearchCriteria]
}

func NewFeedbackService(store *repository.Store) *FeedbackService {
	s := NewEntityService[model.Feedback, *FeedbackSearchCriteria](store, feedbackHooks{}, "feedback")
	s.DefaultSort = "sort_order"
	return &FeedbackService{EntityService: s}
}

func (s *FeedbackService) CreateFeedback(ctx context.Context, lessonIdentity string, req FeedbackRequest, callerID string) (*model.Feedback, error) {
	if err := validateFeedbackRequest(req); err != nil {
		return nil, err
	}
	f := &model.Feedback{LessonID: lessonIdentity, IsActive: true}
	req.apply(f)
	return s.Create(ctx, f, callerID)
}

func (s *FeedbackService) UpdateFeedback(ctx context.Context, identity string, req FeedbackRequest, callerID string) (*model.Feedback, error) {
	if err := validateFeedbackRequest(req); err != nil {
		return nil, err
	}
	return s.Update(ctx, identity, callerID, func(ctx context.Context, tx *repository.Store, f *model.Feedback) error {
		submitted, err := tx.FeedbackSubmissions.Exists(ctx, repository.Where("feedback_id = ?", f.ID))
		if err != nil {
			return err
		}
		if submitted && f.Type != req.Type {
			return apperr.Forbidden("question type cannot change once answers were submitted")
		}
		req.apply(f)
		f.Stamp(callerID)
		return replaceFeedbackOptions(ctx, tx, f, true)
	})
}

func (s *FeedbackService) GetFeedback(ctx context.Context, identity, callerID string) (_ *FeedbackResponse, err error) {
	f, err := s.GetByIdentity(ctx, identity, callerID)
	if err != nil {
		return nil, err
	}
	defer guard("fetch the feedback", &err, zap.String("identity", identity), zap.String("user", callerID))

	sub, err := s.Store.FeedbackSubmissions.FindOne(ctx, repository.Where("feedback_id = ? AND user_id = ?", f.ID, callerID))
	if err != nil {
		return nil, err
	}
	resp := toFeedbackResponse(f, f.FeedbackQuestionOptions, sub)
	return &resp, nil
}

// Search lists the lesson's feedback questions with one user's answers.
// Learners only ever see their own answers.
func (s *FeedbackService) Search(ctx context.Context, c *FeedbackSearchCriteria) (_ *SearchResult[FeedbackResponse], err error) {
	page, err := s.EntityService.Search(ctx, c)
	if err != nil {
		return nil, err
	}
	defer guard("search the feedbacks", &err, zap.String("lesson", c.LessonIdentity), zap.String("user", c.CurrentUserID))

	scope := c.scope
	userID := c.UserID
	if !scope.Privileged || userID == "" {
		userID = scope.Caller.ID
	}

	ids := make([]string, 0, len(page.Items))
	for _, f := range page.Items {
		ids = append(ids, f.ID)
	}
	options := map[string][]model.FeedbackQuestionOption{}
	submissions := map[string]*model.FeedbackSubmission{}
	if len(ids) > 0 {
		in := repository.Where("feedback_id IN ?", ids)
		opts, err := s.Store.FeedbackOptions.FindAll(ctx, in.And(repository.OrderBy("sort_order", false)))
		if err != nil {
			return nil, err
		}
		for _, o := range opts {
			options[o.FeedbackID] = append(options[o.FeedbackID], o)
		}
		subs, err := s.Store.FeedbackSubmissions.FindAll(ctx, in.And(repository.Where("user_id = ?", userID)))
		if err != nil {
			return nil, err
		}
		for i := range subs {
			submissions[subs[i].FeedbackID] = &subs[i]
		}
	}

	return MapResult(page, func(f *model.Feedback) FeedbackResponse {
		return toFeedbackResponse(f, options[f.ID], submissions[f.ID])
	}), nil
}

func toFeedbackResponse(f *model.Feedback, options []model.FeedbackQuestionOption, sub *model.FeedbackSubmission) FeedbackResponse {
	resp := FeedbackResponse{
		ID:          f.ID,
		LessonID:    f.LessonID,
		Name:        f.Name,
		Description: f.Description,
		Type:        f.Type,
		Order:       f.Order,
		IsActive:    f.IsActive,
		CreatedAt:   f.CreatedAt,
		Options:     make([]FeedbackOptionResponse, 0, len(options)),
	}
	var selected map[string]struct{}
	if sub != nil {
		ids := model.SplitOptions(sub.SelectedOption)
		selected = optionSet(ids)
		resp.Submission = &FeedbackSubmissionResponse{
			ID:             sub.ID,
			UserID:         sub.UserID,
			SelectedOption: ids,
			Answer:         sub.Answer,
			Rating:         sub.Rating,
			CreatedAt:      sub.CreatedAt,
			UpdatedAt:      sub.UpdatedAt,
		}
	}
	for _, o := range options {
		opt := FeedbackOptionResponse{ID: o.ID, Option: o.Option, Order: o.Order}
		_, opt.IsSelected = selected[o.ID]
		resp.Options = append(resp.Options, opt)
	}
	return resp
}

func (s *FeedbackService) SubmittedStudents(ctx context.Context, lessonIdentity, callerID string) (_ []SubmittedStudent, err error) {
	defer guard("fetch the submitted students", &err, zap.String("lesson", lessonIdentity), zap.String("user", callerID))

	lesson, err := validateQuestionLesson(ctx, s.Store, lessonIdentity, model.LessonFeedback, callerID)
	if err != nil {
		return nil, err
	}
	return submittedStudents(ctx, s.Store, func(ids *[]string) error {
		return s.Store.FeedbackSubmissions.Pluck(ctx, repository.Where("lesson_id = ?", lesson.ID), "user_id", ids)
	})
}

// Chart summarizes every feedback question of the lesson for its teachers.
func (s *FeedbackService) Chart(ctx context.Context, lessonIdentity, callerID string) (_ []FeedbackChartItem, err error) {
	defer guard("build the feedback chart", &err, zap.String("lesson", lessonIdentity), zap.String("user", callerID))

	lesson, err := validateQuestionLesson(ctx, s.Store, lessonIdentity, model.LessonFeedback, callerID)
	if err != nil {
		return nil, err
	}
	questions, err := s.Store.Feedbacks.FindAll(ctx,
		repository.And(repository.Where("lesson_id = ?", lesson.ID), repository.OrderBy("sort_order", false)),
		repository.PreloadOrdered("FeedbackQuestionOptions"))
	if err != nil {
		return nil, err
	}
	subs, err := s.Store.FeedbackSubmissions.FindAll(ctx, repository.Where("lesson_id = ?", lesson.ID))
	if err != nil {
		return nil, err
	}
	byQuestion := make(map[string][]model.FeedbackSubmission, len(questions))
	for _, sub := range subs {
		byQuestion[sub.FeedbackID] = append(byQuestion[sub.FeedbackID], sub)
	}

	items := make([]FeedbackChartItem, 0, len(questions))
	for _, q := range questions {
		answers := byQuestion[q.ID]
		item := FeedbackChartItem{FeedbackID: q.ID, Name: q.Name, Type: q.Type, Responses: len(answers)}
		switch {
		case q.Type.IsChoice():
			counts := map[string]int{}
			for _, a := range answers {
				for _, id := range model.SplitOptions(a.SelectedOption) {
					counts[id]++
				}
			}
			for _, o := range q.FeedbackQuestionOptions {
				item.Options = append(item.Options, FeedbackOptionTally{ID: o.ID, Option: o.Option, Count: counts[o.ID]})
			}
		case q.Type == model.QuestionRating:
			item.Ratings = map[int]int{}
			total, rated := 0, 0
			for _, a := range answers {
				if a.Rating == nil {
					continue
				}
				item.Ratings[*a.Rating]++
				total += *a.Rating
				rated++
			}
			if rated > 0 {
				item.AverageRating = float64(total) / float64(rated)
			}
		default:
			for _, a := range answers {
				if a.Answer != "" {
					item.Answers = append(item.Answers, a.Answer)
				}
			}
			sort.Strings(item.Answers)
		}
		items = append(items, item)
	}
	return items, nil
}
