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
	"gorm.io/datatypes"
)

type LessonSearchCriteria struct {
	BaseSearchCriteria
	CourseIdentity  string `form:"courseIdentity" json:"courseIdentity"`
	SectionIdentity string `form:"sectionIdentity" json:"sectionIdentity"`
}

type MeetingRequest struct {
	MeetingNumber string         `json:"meetingNumber" binding:"required"`
	Passcode      string         `json:"passcode"`
	StartDate     *time.Time     `json:"startDate"`
	Duration      int            `json:"duration" binding:"gte=0"`
	Settings      datatypes.JSON `json:"settings" swaggertype:"object"`
}

type QuestionSetRequest struct {
	NegativeMarking  float64    `json:"negativeMarking" binding:"gte=0"`
	QuestionMarking  float64    `json:"questionMarking" binding:"gte=0"`
	PassingWeightage float64    `json:"passingWeightage" binding:"gte=0,lte=100"`
	AllowedRetake    int        `json:"allowedRetake" binding:"gte=0"`
	Duration         int        `json:"duration" binding:"gte=0"`
	StartTime        *time.Time `json:"startTime"`
	EndTime          *time.Time `json:"endTime"`
}

type LessonRequest struct {
	Name            string              `json:"name" binding:"required,max=250"`
	Description     string              `json:"description"`
	SectionIdentity string              `json:"sectionIdentity" binding:"required"`
	Type            model.LessonType    `json:"type" binding:"required"`
	DocumentURL     string              `json:"documentUrl" binding:"omitempty,max=500"`
	VideoURL        string              `json:"videoUrl" binding:"omitempty,max=500"`
	ThumbnailURL    string              `json:"thumbnailUrl" binding:"omitempty,max=500"`
	Duration        int                 `json:"duration" binding:"gte=0"`
	IsMandatory     bool                `json:"isMandatory"`
	Meeting         *MeetingRequest     `json:"meeting"`
	QuestionSet     *QuestionSetRequest `json:"questionSet"`
}

type lessonHooks struct {
	BaseHooks[model.Lesson, *LessonSearchCriteria]
}

func (lessonHooks) ConstructQueryConditions(ctx context.Context, store *repository.Store, q repository.Query, c *LessonSearchCriteria) (repository.Query, error) {
	if c.CourseIdentity == "" {
		return nil, apperr.Validation("course identity is required", apperr.FieldError{Field: "courseIdentity", Message: "courseIdentity is a required field"})
	}
	course, _, err := validateAndGetCourse(ctx, store, c.CurrentUserID, c.CourseIdentity, false)
	if err != nil {
		return nil, err
	}
	q = q.And(repository.Where("course_id = ?", course.ID))
	if c.SectionIdentity != "" {
		section, err := sectionResolver.Resolve(ctx, store, c.SectionIdentity)
		if err != nil {
			return nil, err
		}
		q = q.And(repository.Where("section_id = ?", section.ID))
	}
	if c.Search != "" {
		q = q.And(repository.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(strings.TrimSpace(c.Search))+"%"))
	}
	return q, nil
}

func (lessonHooks) PredicateForIDOrSlug(identity string) repository.Query {
	return lessonResolver.Predicate(identity)
}

func (lessonHooks) CreatePreHook(ctx context.Context, tx *repository.Store, lesson *model.Lesson) error {
	if !lesson.Type.Valid() {
		return apperr.Validation("invalid lesson type", apperr.FieldError{Field: "type", Message: "unknown lesson type"})
	}
	course, _, err := validateAndGetCourse(ctx, tx, lesson.CreatedBy, lesson.CourseID, true)
	if err != nil {
		return err
	}
	if course.Status == model.CourseCompleted {
		return apperr.Forbidden("cannot add a lesson to a completed course")
	}
	section, err := tx.Sections.FindOne(ctx, repository.Where("id = ? AND course_id = ?", lesson.SectionID, course.ID))
	if err != nil {
		return err
	}
	if section == nil {
		return apperr.NotFound("section not found")
	}

	lesson.EnsureID()
	lesson.Status = model.CourseDraft
	lesson.Slug, err = util.UniqueSlug(lesson.Name, func(slug string) (bool, error) {
		return tx.Lessons.Exists(ctx, repository.Where("slug = ?", slug))
	})
	if err != nil {
		return err
	}
	count, err := tx.Lessons.Count(ctx, repository.Where("section_id = ?", section.ID))
	if err != nil {
		return err
	}
	lesson.Order = int(count) + 1

	return saveLessonChildren(ctx, tx, lesson)
}

func (lessonHooks) PopulateRetrievedEntity(ctx context.Context, store *repository.Store, lesson *model.Lesson) error {
	if lesson.MeetingID != nil {
		meeting, err := store.Meetings.FindOne(ctx, repository.Where("id = ?", *lesson.MeetingID))
		if err != nil {
			return err
		}
		lesson.Meeting = meeting
	}
	if lesson.QuestionSetID != nil {
		set, err := store.QuestionSets.FindOne(ctx, repository.Where("id = ?", *lesson.QuestionSetID))
		if err != nil {
			return err
		}
		lesson.QuestionSet = set
	}
	return nil
}

func (lessonHooks) CheckReadPermissions(ctx context.Context, store *repository.Store, lesson *model.Lesson, callerID string) error {
	_, _, err := validateAndGetCourse(ctx, store, callerID, lesson.CourseID, false)
	return err
}

func (lessonHooks) CheckUpdatePermissions(ctx context.Context, tx *repository.Store, lesson *model.Lesson, callerID string) error {
	_, _, err := validateAndGetCourse(ctx, tx, callerID, lesson.CourseID, true)
	return err
}

func (lessonHooks) CheckDeletePermissions(ctx context.Context, tx *repository.Store, lesson *model.Lesson, callerID string) error {
	if _, _, err := validateAndGetCourse(ctx, tx, callerID, lesson.CourseID, true); err != nil {
		return err
	}
	where := repository.Where("lesson_id = ?", lesson.ID)
	switch lesson.Type {
	case model.LessonAssignment:
		submitted, err := tx.AssignmentSubmissions.Exists(ctx, where)
		if err != nil {
			return err
		}
		if submitted {
			return apperr.Forbidden("lesson contains assignment submissions and cannot be deleted")
		}
		if err := deleteAssignmentsOf(ctx, tx, where); err != nil {
			return err
		}
	case model.LessonFeedback:
		submitted, err := tx.FeedbackSubmissions.Exists(ctx, where)
		if err != nil {
			return err
		}
		if submitted {
			return apperr.Forbidden("lesson contains feedback submissions and cannot be deleted")
		}
		if err := deleteFeedbacksOf(ctx, tx, where); err != nil {
			return err
		}
	}
	if lesson.MeetingID != nil {
		if err := tx.Meetings.DeleteWhere(ctx, repository.Where("id = ?", *lesson.MeetingID)); err != nil {
			return err
		}
	}
	if lesson.QuestionSetID != nil {
		if err := tx.QuestionSets.DeleteWhere(ctx, repository.Where("id = ?", *lesson.QuestionSetID)); err != nil {
			return err
		}
	}
	return tx.WatchHistories.DeleteWhere(ctx, where)
}

// saveLessonChildren persists the meeting or question set a lesson type requires.
func saveLessonChildren(ctx context.Context, tx *repository.Store, lesson *model.Lesson) error {
	switch lesson.Type {
	case model.LessonLiveClass:
		if lesson.Meeting == nil {
			return apperr.Validation("meeting is required for a live class", apperr.FieldError{Field: "meeting", Message: "meeting is a required field"})
		}
		lesson.Meeting.EnsureID()
		lesson.Meeting.Stamp(lesson.UpdatedBy)
		lesson.MeetingID = &lesson.Meeting.ID
		if lesson.Duration == 0 {
			lesson.Duration = lesson.Meeting.Duration
		}
		return tx.Meetings.Insert(ctx, lesson.Meeting)
	case model.LessonExam:
		if lesson.QuestionSet == nil {
			lesson.QuestionSet = &model.QuestionSet{}
		}
		set := lesson.QuestionSet
		id := set.EnsureID()
		set.Name = lesson.Name
		set.Description = lesson.Description
		set.Slug = lesson.Slug + "-" + id[:5]
		set.Stamp(lesson.UpdatedBy)
		lesson.QuestionSetID = &set.ID
		if lesson.Duration == 0 {
			lesson.Duration = set.Duration
		}
		return tx.QuestionSets.Insert(ctx, set)
	}
	return nil
}

type LessonService struct {
	*EntityService[model.Lesson, *LessonSearchCriteria]
}

func NewLessonService(store *repository.Store) *LessonService {
	s := NewEntityService[model.Lesson, *LessonSearchCriteria](store, lessonHooks{}, "lesson")
	s.DefaultSort = "sort_order"
	return &LessonService{EntityService: s}
}

func (s *LessonService) CreateLesson(ctx context.Context, courseIdentity string, req LessonRequest, callerID string) (_ *model.Lesson, err error) {
	course, err := courseResolver.Resolve(ctx, s.Store, courseIdentity)
	if err != nil {
		return nil, err
	}
	section, err := sectionResolver.Resolve(ctx, s.Store, req.SectionIdentity)
	if err != nil {
		return nil, err
	}

	lesson := &model.Lesson{
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		CourseID:     course.ID,
		SectionID:    section.ID,
		Type:         req.Type,
		ThumbnailURL: req.ThumbnailURL,
		Duration:     req.Duration,
		IsMandatory:  req.IsMandatory,
	}
	switch req.Type {
	case model.LessonDocument:
		lesson.DocumentURL = req.DocumentURL
	case model.LessonVideo:
		lesson.VideoURL = req.VideoURL
	case model.LessonLiveClass:
		if req.Meeting != nil {
			lesson.Meeting = &model.Meeting{
				MeetingNumber: req.Meeting.MeetingNumber,
				Passcode:      req.Meeting.Passcode,
				StartDate:     req.Meeting.StartDate,
				Duration:      req.Meeting.Duration,
				Settings:      req.Meeting.Settings,
			}
		}
	case model.LessonExam:
		lesson.QuestionSet = questionSetFrom(req.QuestionSet)
	}
	return s.Create(ctx, lesson, callerID)
}

func questionSetFrom(req *QuestionSetRequest) *model.QuestionSet {
	if req == nil {
		return &model.QuestionSet{}
	}
	return &model.QuestionSet{
		NegativeMarking:  req.NegativeMarking,
		QuestionMarking:  req.QuestionMarking,
		PassingWeightage: req.PassingWeightage,
		AllowedRetake:    req.AllowedRetake,
		Duration:         req.Duration,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
	}
}

// GetLesson resolves a lesson inside the named course.
func (s *LessonService) GetLesson(ctx context.Context, courseIdentity, identity, callerID string) (*model.Lesson, error) {
	course, err := courseResolver.Resolve(ctx, s.Store, courseIdentity)
	if err != nil {
		return nil, err
	}
	lesson, err := s.GetByIdentity(ctx, identity, callerID)
	if err != nil {
		return nil, err
	}
	if lesson.CourseID != course.ID {
		return nil, apperr.NotFound("lesson not found")
	}
	return lesson, nil
}

// UpdateLesson rewrites the editable fields. The lesson type is fixed once created.
func (s *LessonService) UpdateLesson(ctx context.Context, courseIdentity, identity string, req LessonRequest, callerID string) (*model.Lesson, error) {
	course, err := courseResolver.Resolve(ctx, s.Store, courseIdentity)
	if err != nil {
		return nil, err
	}
	return s.Update(ctx, identity, callerID, func(ctx context.Context, tx *repository.Store, lesson *model.Lesson) error {
		if lesson.CourseID != course.ID {
			return apperr.NotFound("lesson not found")
		}
		if req.Type != lesson.Type {
			return apperr.Validation("lesson type cannot be changed", apperr.FieldError{Field: "type", Message: "type cannot be changed"})
		}
		lesson.Name = strings.TrimSpace(req.Name)
		lesson.Description = req.Description
		lesson.ThumbnailURL = req.ThumbnailURL
		lesson.IsMandatory = req.IsMandatory
		lesson.Duration = req.Duration
		switch lesson.Type {
		case model.LessonDocument:
			lesson.DocumentURL = req.DocumentURL
		case model.LessonVideo:
			lesson.VideoURL = req.VideoURL
		case model.LessonLiveClass:
			if req.Meeting != nil && lesson.MeetingID != nil {
				return tx.DB().WithContext(ctx).Model(&model.Meeting{}).Where("id = ?", *lesson.MeetingID).Updates(map[string]interface{}{
					"meeting_number": req.Meeting.MeetingNumber,
					"passcode":       req.Meeting.Passcode,
					"start_date":     req.Meeting.StartDate,
					"duration":       req.Meeting.Duration,
					"settings":       req.Meeting.Settings,
					"updated_by":     callerID,
				}).Error
			}
		case model.LessonExam:
			if req.QuestionSet != nil && lesson.QuestionSetID != nil {
				return tx.DB().WithContext(ctx).Model(&model.QuestionSet{}).Where("id = ?", *lesson.QuestionSetID).Updates(map[string]interface{}{
					"name":              lesson.Name,
					"negative_marking":  req.QuestionSet.NegativeMarking,
					"question_marking":  req.QuestionSet.QuestionMarking,
					"passing_weightage": req.QuestionSet.PassingWeightage,
					"allowed_retake":    req.QuestionSet.AllowedRetake,
					"duration":          req.QuestionSet.Duration,
					"start_time":        req.QuestionSet.StartTime,
					"end_time":          req.QuestionSet.EndTime,
					"updated_by":        callerID,
				}).Error
			}
		}
		return nil
	})
}

func (s *LessonService) DeleteLesson(ctx context.Context, courseIdentity, identity, callerID string) error {
	lesson, err := s.GetLesson(ctx, courseIdentity, identity, callerID)
	if err != nil {
		return err
	}
	return s.Delete(ctx, lesson.ID, callerID)
}

// ChangeStatus publishes or unpublishes one lesson. A lesson of a completed
// course keeps its status.
func (s *LessonService) ChangeStatus(ctx context.Context, identity string, status model.CourseStatus, callerID string) (*model.Lesson, error) {
	if status != model.CourseDraft && status != model.CoursePublished {
		return nil, apperr.Validation("invalid lesson status", apperr.FieldError{Field: "status", Message: "status must be draft or published"})
	}
	return s.Update(ctx, identity, callerID, func(ctx context.Context, tx *repository.Store, lesson *model.Lesson) error {
		course, err := tx.Courses.FindOne(ctx, repository.Where("id = ?", lesson.CourseID))
		if err != nil {
			return err
		}
		if course == nil {
			return apperr.NotFound("course not found")
		}
		if course.Status == model.CourseCompleted {
			return apperr.Forbidden("lesson of a completed course cannot change status")
		}
		lesson.Status = status
		return nil
	})
}

// WatchHistory returns the caller's completion record for a lesson, if any.
func (s *LessonService) WatchHistory(ctx context.Context, identity, callerID string) (_ *model.WatchHistory, err error) {
	defer guard("fetch the watch history", &err, zap.String("lesson", identity), zap.String("user", callerID))

	lesson, err := lessonResolver.Resolve(ctx, s.Store, identity)
	if err != nil {
		return nil, err
	}
	history, err := s.Store.WatchHistories.FindOne(ctx, repository.Where("lesson_id = ? AND user_id = ?", lesson.ID, callerID))
	if err != nil {
		return nil, err
	}
	if history == nil {
		return nil, apperr.NotFound("watch history not found")
	}
	return history, nil
}
