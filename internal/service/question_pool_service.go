package service

import (
	"academy_backend/internal/apperr"
	"academy_backend/internal/model"
	"academy_backend/internal/permission"
	"academy_backend/internal/repository"
	"academy_backend/internal/util"
	"context"
	"strings"

	"go.uber.org/zap"
)

type QuestionPoolRequest struct {
	Name string `json:"name" binding:"required,max=250"`
}

type QuestionPoolTeacherRequest struct {
	Email string         `json:"email" binding:"required,email"`
	Role  model.PoolRole `json:"role" binding:"required"`
}

type questionPoolHooks struct {
	BaseHooks[model.QuestionPool, *BaseSearchCriteria]
}

func (questionPoolHooks) ConstructQueryConditions(ctx context.Context, store *repository.Store, q repository.Query, c *BaseSearchCriteria) (repository.Query, error) {
	caller, err := loadCaller(ctx, store, c.CurrentUserID)
	if err != nil {
		return nil, err
	}
	if !permission.IsAdmin(caller.Role) {
		q = q.And(repository.Where("id IN (?)",
			store.DB().Model(&model.QuestionPoolTeacher{}).Select("question_pool_id").Where("user_id = ?", caller.ID)))
	}
	if c.Search != "" {
		q = q.And(repository.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(strings.TrimSpace(c.Search))+"%"))
	}
	return q, nil
}

func (questionPoolHooks) PredicateForIDOrSlug(identity string) repository.Query {
	return questionPoolResolver.Predicate(identity)
}

func (questionPoolHooks) IncludeNavigationProperties() []repository.Query {
	return []repository.Query{
		repository.Preload("QuestionPoolTeachers.User"),
	}
}

func (questionPoolHooks) CreatePreHook(ctx context.Context, tx *repository.Store, pool *model.QuestionPool) error {
	caller, err := loadCaller(ctx, tx, pool.CreatedBy)
	if err != nil {
		return err
	}
	if !permission.IsTeacherOrAdmin(caller.Role) {
		return apperr.Forbidden("only trainers or admins can create a question pool")
	}
	pool.EnsureID()
	pool.Slug, err = util.UniqueSlug(pool.Name, func(slug string) (bool, error) {
		return tx.QuestionPools.Exists(ctx, repository.Where("slug = ?", slug))
	})
	if err != nil {
		return err
	}
	author := &model.QuestionPoolTeacher{QuestionPoolID: pool.ID, UserID: caller.ID, Role: model.PoolAuthor}
	author.Stamp(caller.ID)
	return tx.QuestionPoolTeachers.Insert(ctx, author)
}

func (questionPoolHooks) CheckReadPermissions(ctx context.Context, store *repository.Store, pool *model.QuestionPool, callerID string) error {
	_, err := poolAccess(ctx, store, pool, callerID, false)
	return err
}

func (questionPoolHooks) CheckUpdatePermissions(ctx context.Context, tx *repository.Store, pool *model.QuestionPool, callerID string) error {
	_, err := poolAccess(ctx, tx, pool, callerID, true)
	return err
}

func (questionPoolHooks) CheckDeletePermissions(ctx context.Context, tx *repository.Store, pool *model.QuestionPool, callerID string) error {
	if _, err := poolAccess(ctx, tx, pool, callerID, true); err != nil {
		return err
	}
	return tx.QuestionPoolTeachers.DeleteWhere(ctx, repository.Where("question_pool_id = ?", pool.ID))
}

// poolAccess allows admins and pool teachers; manage additionally requires the
// author role.
func poolAccess(ctx context.Context, store *repository.Store, pool *model.QuestionPool, callerID string, manage bool) (*model.User, error) {
	caller, err := loadCaller(ctx, store, callerID)
	if err != nil {
		return nil, err
	}
	if permission.IsAdmin(caller.Role) {
		return caller, nil
	}
	member, err := store.QuestionPoolTeachers.FindOne(ctx, repository.Where("question_pool_id = ? AND user_id = ?", pool.ID, caller.ID))
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, apperr.NotFound("question pool not found")
	}
	if manage && member.Role != model.PoolAuthor {
		return nil, apperr.Forbidden("unauthorized user")
	}
	return caller, nil
}

type QuestionPoolService struct {
	*EntityService[model.QuestionPool, *BaseSearchCriteria]
}

func NewQuestionPoolService(store *repository.Store) *QuestionPoolService {
	return &QuestionPoolService{EntityService: NewEntityService[model.QuestionPool, *BaseSearchCriteria](store, questionPoolHooks{}, "question pool")}
}

func (s *QuestionPoolService) CreatePool(ctx context.Context, req QuestionPoolRequest, callerID string) (*model.QuestionPool, error) {
	return s.Create(ctx, &model.QuestionPool{Name: strings.TrimSpace(req.Name)}, callerID)
}

func (s *QuestionPoolService) UpdatePool(ctx context.Context, identity string, req QuestionPoolRequest, callerID string) (*model.QuestionPool, error) {
	return s.Update(ctx, identity, callerID, func(_ context.Context, _ *repository.Store, pool *model.QuestionPool) error {
		pool.Name = strings.TrimSpace(req.Name)
		return nil
	})
}

func (s *QuestionPoolService) AddTeacher(ctx context.Context, identity string, req QuestionPoolTeacherRequest, callerID string) (_ *model.QuestionPoolTeacher, err error) {
	defer guard("add the question pool teacher", &err, zap.String("pool", identity), zap.String("user", callerID))

	if !req.Role.Valid() {
		return nil, apperr.Validation("invalid role", apperr.FieldError{Field: "role", Message: "role must be author or creator"})
	}
	var teacher *model.QuestionPoolTeacher
	err = s.Store.Transaction(ctx, func(tx *repository.Store) error {
		pool, err := questionPoolResolver.Resolve(ctx, tx, identity)
		if err != nil {
			return err
		}
		if _, err := poolAccess(ctx, tx, pool, callerID, true); err != nil {
			return err
		}
		user, err := tx.Users.FindOne(ctx, repository.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))))
		if err != nil {
			return err
		}
		if user == nil {
			return apperr.NotFound("user not found")
		}
		if user.Role == model.Trainee {
			return apperr.Forbidden("trainee cannot be a question pool teacher")
		}
		exists, err := tx.QuestionPoolTeachers.Exists(ctx, repository.Where("question_pool_id = ? AND user_id = ?", pool.ID, user.ID))
		if err != nil {
			return err
		}
		if exists {
			return apperr.Validation("user is already a question pool teacher")
		}
		teacher = &model.QuestionPoolTeacher{QuestionPoolID: pool.ID, UserID: user.ID, Role: req.Role}
		teacher.Stamp(callerID)
		if err := tx.QuestionPoolTeachers.Insert(ctx, teacher); err != nil {
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

func (s *QuestionPoolService) ChangeTeacherRole(ctx context.Context, identity, teacherID string, role model.PoolRole, callerID string) (_ *model.QuestionPoolTeacher, err error) {
	defer guard("update the question pool teacher", &err, zap.String("pool", identity), zap.String("user", callerID))

	if !role.Valid() {
		return nil, apperr.Validation("invalid role", apperr.FieldError{Field: "role", Message: "role must be author or creator"})
	}
	var teacher *model.QuestionPoolTeacher
	err = s.Store.Transaction(ctx, func(tx *repository.Store) error {
		pool, err := questionPoolResolver.Resolve(ctx, tx, identity)
		if err != nil {
			return err
		}
		if _, err := poolAccess(ctx, tx, pool, callerID, true); err != nil {
			return err
		}
		teacher, err = tx.QuestionPoolTeachers.FindOne(ctx, repository.Where("id = ? AND question_pool_id = ?", teacherID, pool.ID))
		if err != nil {
			return err
		}
		if teacher == nil {
			return apperr.NotFound("question pool teacher not found")
		}
		if teacher.UserID == pool.CreatedBy {
			return apperr.Forbidden("question pool creator role cannot change")
		}
		teacher.Role = role
		teacher.Stamp(callerID)
		return tx.QuestionPoolTeachers.Update(ctx, teacher)
	})
	if err != nil {
		return nil, err
	}
	return teacher, nil
}

func (s *QuestionPoolService) RemoveTeacher(ctx context.Context, identity, teacherID, callerID string) (err error) {
	defer guard("remove the question pool teacher", &err, zap.String("pool", identity), zap.String("user", callerID))

	return s.Store.Transaction(ctx, func(tx *repository.Store) error {
		pool, err := questionPoolResolver.Resolve(ctx, tx, identity)
		if err != nil {
			return err
		}
		if _, err := poolAccess(ctx, tx, pool, callerID, true); err != nil {
			return err
		}
		teacher, err := tx.QuestionPoolTeachers.FindOne(ctx, repository.Where("id = ? AND question_pool_id = ?", teacherID, pool.ID))
		if err != nil {
			return err
		}
		if teacher == nil {
			return apperr.NotFound("question pool teacher not found")
		}
		if teacher.UserID == pool.CreatedBy {
			return apperr.Forbidden("question pool creator cannot be removed")
		}
		return tx.QuestionPoolTeachers.Delete(ctx, teacher)
	})
}
