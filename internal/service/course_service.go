package service

import (
	"academy_backend/internal/apperr"
	"academy_backend/internal/model"
	"academy_backend/internal/permission"
	"academy_backend/internal/repository"
	"academy_backend/internal/util"
	"academy_backend/pkg/logger"
	"context"
	"strings"

	"go.uber.org/zap"
)

type CourseSearchCriteria struct {
	BaseSearchCriteria
	Status model.CourseStatus `form:"status" json:"status"`
}

type CourseRequest struct {
	Name         string `json:"name" binding:"required,max=250"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnailUrl" binding:"omitempty,max=500"`
	Language     string `json:"language" binding:"omitempty,max=20"`
}

type SectionRequest struct {
	Name        string `json:"name" binding:"required,max=250"`
	Description string `json:"description"`
}

type courseHooks struct {
	BaseHooks[model.Course, *CourseSearchCriteria]
}

func (courseHooks) ConstructQueryConditions(ctx context.Context, store *repository.Store, q repository.Query, c *CourseSearchCriteria) (repository.Query, error) {
	if c.Search != "" {
		q = q.And(repository.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(strings.TrimSpace(c.Search))+"%"))
	}
	if c.Status != "" {
		q = q.And(repository.Where("status = ?", c.Status))
	}

	caller, err := loadCaller(ctx, store, c.CurrentUserID)
	if err != nil {
		return nil, err
	}
	if !permission.IsAdmin(caller.Role) {
		// 非管理员只能看到已发布的课程或自己任教的课程
		q = q.And(repository.Where(
			"status <> ? OR created_by = ? OR id IN (?)",
			model.CourseDraft, caller.ID,
			store.DB().Model(&model.CourseTeacher{}).Select("course_id").Where("user_id = ?", caller.ID),
		))
	}
	return q, nil
}

func (courseHooks) PredicateForIDOrSlug(identity string) repository.Query {
	return courseResolver.Predicate(identity)
}

func (courseHooks) IncludeNavigationProperties() []repository.Query {
	return []repository.Query{
		repository.Preload("CourseTeachers.User"),
	}
}

func (courseHooks) CreatePreHook(ctx context.Context, tx *repository.Store, course *model.Course) error {
	caller, err := loadCaller(ctx, tx, course.CreatedBy)
	if err != nil {
		return err
	}
	if !permission.IsTeacherOrAdmin(caller.Role) {
		return apperr.Forbidden("only trainers or admins can create a course")
	}

	course.EnsureID()
	course.Status = model.CourseDraft
	course.Slug, err = util.UniqueSlug(course.Name, func(slug string) (bool, error) {
		return tx.Courses.Exists(ctx, repository.Where("slug = ?", slug))
	})
	if err != nil {
		return err
	}

	author := &model.CourseTeacher{CourseID: course.ID, UserID: caller.ID, CourseRole: model.CourseRoleAuthor}
	author.Stamp(caller.ID)
	return tx.CourseTeachers.Insert(ctx, author)
}

func (courseHooks) PopulateRetrievedEntity(ctx context.Context, store *repository.Store, course *model.Course) error {
	sections, err := store.Sections.FindAll(ctx, repository.Where("course_id = ?", course.ID), repository.OrderBy("sort_order", false))
	if err != nil {
		return err
	}
	course.Sections = sections
	return nil
}

func (courseHooks) CheckReadPermissions(ctx context.Context, store *repository.Store, course *model.Course, callerID string) error {
	caller, err := loadCaller(ctx, store, callerID)
	if err != nil {
		return err
	}
	if !permission.CanViewCourse(caller, course) {
		// 草稿课程对无权限用户视为不存在
		return apperr.NotFound("course not found")
	}
	return nil
}

func (courseHooks) CheckUpdatePermissions(ctx context.Context, tx *repository.Store, course *model.Course, callerID string) error {
	_, err := requireCourseModify(ctx, tx, course, callerID)
	return err
}

func (courseHooks) CheckDeletePermissions(ctx context.Context, tx *repository.Store, course *model.Course, callerID string) error {
	if _, err := requireCourseModify(ctx, tx, course, callerID); err != nil {
		return err
	}
	hasLessons, err := tx.Lessons.Exists(ctx, repository.Where("course_id = ?", course.ID))
	if err != nil {
		return err
	}
	if hasLessons {
		return apperr.Forbidden("course contains lessons and cannot be deleted")
	}
	if err := tx.CourseTeachers.DeleteWhere(ctx, repository.Where("course_id = ?", course.ID)); err != nil {
		return err
	}
	return tx.Sections.DeleteWhere(ctx, repository.Where("course_id = ?", course.ID))
}

type CourseService struct {
	*EntityService[model.Course, *CourseSearchCriteria]
}

func NewCourseService(store *repository.Store) *CourseService {
	return &CourseService{EntityService: NewEntityService[model.Course, *CourseSearchCriteria](store, courseHooks{}, "course")}
}

func (s *CourseService) CreateCourse(ctx context.Context, req CourseRequest, callerID string) (*model.Course, error) {
	course := &model.Course{
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		ThumbnailURL: req.ThumbnailURL,
		Language:     req.Language,
	}
	return s.Create(ctx, course, callerID)
}

func (s *CourseService) UpdateCourse(ctx context.Context, identity string, req CourseRequest, callerID string) (*model.Course, error) {
	return s.Update(ctx, identity, callerID, func(_ context.Context, _ *repository.Store, course *model.Course) error {
		course.Name = strings.TrimSpace(req.Name)
		course.Description = req.Description
		course.ThumbnailURL = req.ThumbnailURL
		course.Language = req.Language
		return nil
	})
}

// ChangeStatus moves a course through draft, published and completed. Lessons
// follow the course status.
func (s *CourseService) ChangeStatus(ctx context.Context, identity string, status model.CourseStatus, callerID string) (_ *model.Course, err error) {
	if !status.Valid() {
		return nil, apperr.Validation("invalid course status", apperr.FieldError{Field: "status", Message: "status must be draft, published or completed"})
	}
	return s.Update(ctx, identity, callerID, func(ctx context.Context, tx *repository.Store, course *model.Course) error {
		if course.Status == model.CourseCompleted && status != model.CourseCompleted {
			return apperr.Forbidden("completed course cannot change status")
		}
		course.Status = status
		return tx.DB().WithContext(ctx).Model(&model.Lesson{}).
			Where("course_id = ?", course.ID).
			Update("status", status).Error
	})
}

// AddTeacher lists the user with email as a teacher of the course.
func (s *CourseService) AddTeacher(ctx context.Context, identity, email, callerID string) (_ *model.CourseTeacher, err error) {
	defer guard("add the course teacher", &err, zap.String("course", identity), zap.String("user", callerID))

	var teacher *model.CourseTeacher
	err = s.Store.Transaction(ctx, func(tx *repository.Store) error {
		course, _, err := validateAndGetCourse(ctx, tx, callerID, identity, true)
		if err != nil {
			return err
		}
		user, err := tx.Users.FindOne(ctx, repository.Where("email = ?", strings.ToLower(strings.TrimSpace(email))))
		if err != nil {
			return err
		}
		if user == nil {
			return apperr.NotFound("user not found")
		}
		if user.Role == model.Trainee {
			logger.Log.Warn("trainee cannot be added as course teacher",
				zap.String("course", course.ID), zap.String("user", user.ID))
			return apperr.Forbidden("trainee cannot be a course teacher")
		}
		if permission.IsCourseTeacher(user.ID, course) {
			return apperr.Validation("user is already a course teacher")
		}
		teacher = &model.CourseTeacher{CourseID: course.ID, UserID: user.ID, CourseRole: model.CourseRoleTeacher}
		teacher.Stamp(callerID)
		if err := tx.CourseTeachers.Insert(ctx, teacher); err != nil {
			return err
		}
		teacher.User = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return teacher, nil
}

// RemoveTeacher removes a listed teacher. The course author cannot be removed.
func (s *CourseService) RemoveTeacher(ctx context.Context, identity, teacherID, callerID string) (err error) {
	defer guard("remove the course teacher", &err, zap.String("course", identity), zap.String("user", callerID))

	return s.Store.Transaction(ctx, func(tx *repository.Store) error {
		course, _, err := validateAndGetCourse(ctx, tx, callerID, identity, true)
		if err != nil {
			return err
		}
		teacher, err := tx.CourseTeachers.FindOne(ctx, repository.Where("id = ? AND course_id = ?", teacherID, course.ID))
		if err != nil {
			return err
		}
		if teacher == nil {
			return apperr.NotFound("course teacher not found")
		}
		if teacher.CourseRole == model.CourseRoleAuthor || teacher.UserID == course.CreatedBy {
			return apperr.Forbidden("course author cannot be removed")
		}
		return tx.CourseTeachers.Delete(ctx, teacher)
	})
}

func (s *CourseService) AddSection(ctx context.Context, identity string, req SectionRequest, callerID string) (_ *model.Section, err error) {
	defer guard("create the section", &err, zap.String("course", identity), zap.String("user", callerID))

	var section *model.Section
	err = s.Store.Transaction(ctx, func(tx *repository.Store) error {
		course, _, err := validateAndGetCourse(ctx, tx, callerID, identity, true)
		if err != nil {
			return err
		}
		count, err := tx.Sections.Count(ctx, repository.Where("course_id = ?", course.ID))
		if err != nil {
			return err
		}
		section = &model.Section{
			CourseID:    course.ID,
			Name:        strings.TrimSpace(req.Name),
			Description: req.Description,
			Order:       int(count) + 1,
		}
		section.Slug, err = util.UniqueSlug(section.Name, func(slug string) (bool, error) {
			return tx.Sections.Exists(ctx, repository.Where("slug = ?", slug))
		})
		if err != nil {
			return err
		}
		section.Stamp(callerID)
		return tx.Sections.Insert(ctx, section)
	})
	if err != nil {
		return nil, err
	}
	return section, nil
}

// validateAndGetCourse resolves the course with its teachers and checks the
// caller may view it, or modify it when forModify is set.
func validateAndGetCourse(ctx context.Context, store *repository.Store, callerID, identity string, forModify bool) (*model.Course, *model.User, error) {
	course, err := courseResolver.Resolve(ctx, store, identity, repository.Preload("CourseTeachers"))
	if err != nil {
		return nil, nil, err
	}
	caller, err := loadCaller(ctx, store, callerID)
	if err != nil {
		return nil, nil, err
	}
	if forModify {
		if !permission.CanModifyCourse(caller, course) {
			logger.Log.Warn("user is not allowed to modify the course",
				zap.String("course", course.ID), zap.String("user", callerID))
			return nil, nil, apperr.Forbidden("unauthorized user")
		}
	} else if !permission.CanViewCourse(caller, course) {
		return nil, nil, apperr.NotFound("course not found")
	}
	return course, caller, nil
}

func requireCourseModify(ctx context.Context, store *repository.Store, course *model.Course, callerID string) (*model.User, error) {
	caller, err := loadCaller(ctx, store, callerID)
	if err != nil {
		return nil, err
	}
	if len(course.CourseTeachers) == 0 {
		teachers, err := store.CourseTeachers.FindAll(ctx, repository.Where("course_id = ?", course.ID))
		if err != nil {
			return nil, err
		}
		course.CourseTeachers = teachers
	}
	if !permission.CanModifyCourse(caller, course) {
		return nil, apperr.Forbidden("unauthorized user")
	}
	return caller, nil
}
