package service

import (
	"academy_backend/internal/apperr"
	"academy_backend/internal/model"
	"academy_backend/internal/permission"
	"academy_backend/internal/repository"
	"context"

	"go.uber.org/zap"
)

// Hooks are the extension points a concrete service plugs into EntityService.
// Embed BaseHooks to inherit the defaults and override what differs.
type Hooks[E any, C SearchCriteria] interface {
	// ConstructQueryConditions narrows the search query. It fails with NotFound
	// when the criteria reference a parent that does not exist.
	ConstructQueryConditions(ctx context.Context, store *repository.Store, q repository.Query, criteria C) (repository.Query, error)
	// PredicateForIDOrSlug matches the entity a caller-supplied identity names.
	PredicateForIDOrSlug(identity string) repository.Query
	// IncludeNavigationProperties lists the associations loaded with every read.
	IncludeNavigationProperties() []repository.Query
	// CreatePreHook validates the entity and persists its child collections
	// inside the create transaction.
	CreatePreHook(ctx context.Context, tx *repository.Store, entity *E) error
	// PopulateRetrievedEntity attaches child collections after a single read.
	PopulateRetrievedEntity(ctx context.Context, store *repository.Store, entity *E) error
	// CheckDeletePermissions rejects forbidden deletes and removes owned children.
	CheckDeletePermissions(ctx context.Context, tx *repository.Store, entity *E, callerID string) error
}

// UpdatePermissionChecker replaces the default ownership check on update.
type UpdatePermissionChecker[E any] interface {
	CheckUpdatePermissions(ctx context.Context, tx *repository.Store, entity *E, callerID string) error
}

// ReadPermissionChecker restricts single reads.
type ReadPermissionChecker[E any] interface {
	CheckReadPermissions(ctx context.Context, store *repository.Store, entity *E, callerID string) error
}

// BaseHooks implements Hooks with the default behaviour.
type BaseHooks[E any, C SearchCriteria] struct{}

func (BaseHooks[E, C]) ConstructQueryConditions(_ context.Context, _ *repository.Store, q repository.Query, _ C) (repository.Query, error) {
	return q, nil
}

func (BaseHooks[E, C]) PredicateForIDOrSlug(identity string) repository.Query {
	return repository.Where("id = ?", identity)
}

func (BaseHooks[E, C]) IncludeNavigationProperties() []repository.Query {
	return nil
}

func (BaseHooks[E, C]) CreatePreHook(context.Context, *repository.Store, *E) error {
	return nil
}

func (BaseHooks[E, C]) PopulateRetrievedEntity(context.Context, *repository.Store, *E) error {
	return nil
}

func (BaseHooks[E, C]) CheckDeletePermissions(ctx context.Context, tx *repository.Store, entity *E, callerID string) error {
	return requireOwnership(ctx, tx, entity, callerID)
}

// EntityService drives create, read, update, delete and search for one entity
// type through its Hooks.
type EntityService[E any, C SearchCriteria] struct {
	Store       *repository.Store
	Hooks       Hooks[E, C]
	Name        string
	DefaultSort string
}

func NewEntityService[E any, C SearchCriteria](store *repository.Store, hooks Hooks[E, C], name string) *EntityService[E, C] {
	return &EntityService[E, C]{Store: store, Hooks: hooks, Name: name, DefaultSort: "created_at"}
}

func (s *EntityService[E, C]) repo(store *repository.Store) *repository.Repository[E] {
	return repository.For[E](store)
}

func (s *EntityService[E, C]) Create(ctx context.Context, entity *E, callerID string) (_ *E, err error) {
	defer guard("create the "+s.Name, &err, zap.String("user", callerID))

	stamp(entity, callerID)
	err = s.Store.Transaction(ctx, func(tx *repository.Store) error {
		if err := s.Hooks.CreatePreHook(ctx, tx, entity); err != nil {
			return err
		}
		return s.repo(tx).Insert(ctx, entity)
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *EntityService[E, C]) GetByIdentity(ctx context.Context, identity, callerID string) (_ *E, err error) {
	defer guard("fetch the "+s.Name, &err, zap.String("identity", identity), zap.String("user", callerID))

	entity, err := s.find(ctx, s.Store, identity, s.Hooks.IncludeNavigationProperties()...)
	if err != nil {
		return nil, err
	}
	if checker, ok := s.Hooks.(ReadPermissionChecker[E]); ok {
		if err := checker.CheckReadPermissions(ctx, s.Store, entity, callerID); err != nil {
			return nil, err
		}
	}
	if err := s.Hooks.PopulateRetrievedEntity(ctx, s.Store, entity); err != nil {
		return nil, err
	}
	if err := attachCreators(ctx, s.Store, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

// Update loads the entity, checks the caller may change it, lets apply mutate it
// (replacing owned collections as needed) and saves it in one transaction.
func (s *EntityService[E, C]) Update(ctx context.Context, identity, callerID string, apply func(ctx context.Context, tx *repository.Store, entity *E) error) (_ *E, err error) {
	defer guard("update the "+s.Name, &err, zap.String("identity", identity), zap.String("user", callerID))

	var entity *E
	err = s.Store.Transaction(ctx, func(tx *repository.Store) error {
		found, err := s.find(ctx, tx, identity)
		if err != nil {
			return err
		}
		if checker, ok := s.Hooks.(UpdatePermissionChecker[E]); ok {
			err = checker.CheckUpdatePermissions(ctx, tx, found, callerID)
		} else {
			err = requireOwnership(ctx, tx, found, callerID)
		}
		if err != nil {
			return err
		}
		if apply != nil {
			if err := apply(ctx, tx, found); err != nil {
				return err
			}
		}
		stamp(found, callerID)
		if err := s.repo(tx).Update(ctx, found); err != nil {
			return err
		}
		entity = found
		if err := s.Hooks.PopulateRetrievedEntity(ctx, tx, entity); err != nil {
			return err
		}
		return attachCreators(ctx, tx, entity)
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *EntityService[E, C]) Delete(ctx context.Context, identity, callerID string) (err error) {
	defer guard("delete the "+s.Name, &err, zap.String("identity", identity), zap.String("user", callerID))

	return s.Store.Transaction(ctx, func(tx *repository.Store) error {
		entity, err := s.find(ctx, tx, identity)
		if err != nil {
			return err
		}
		if err := s.Hooks.CheckDeletePermissions(ctx, tx, entity, callerID); err != nil {
			return err
		}
		return s.repo(tx).Delete(ctx, entity)
	})
}

// Search returns one page of the entities matching criteria, ordered by the
// requested column with id as a tie-breaker.
func (s *EntityService[E, C]) Search(ctx context.Context, criteria C) (_ *SearchResult[E], err error) {
	base := criteria.Base()
	defer guard("search the "+s.Name, &err, zap.String("user", base.CurrentUserID))

	base.Normalize()
	q, err := s.Hooks.ConstructQueryConditions(ctx, s.Store, repository.All(), criteria)
	if err != nil {
		return nil, err
	}

	repo := s.repo(s.Store)
	column, ok := repo.HasColumn(base.SortBy)
	if base.SortBy == "" || !ok {
		column = s.DefaultSort
	}
	order := repository.And(
		repository.OrderBy(column, base.Descending()),
		repository.OrderBy("id", false),
	)

	items, total, err := repo.Page(ctx, q, order, base.Offset(), base.Size, s.Hooks.IncludeNavigationProperties()...)
	if err != nil {
		return nil, err
	}
	refs := make([]*E, len(items))
	for i := range items {
		refs[i] = &items[i]
	}
	if err := attachCreators(ctx, s.Store, refs...); err != nil {
		return nil, err
	}
	return newSearchResult(items, base, total), nil
}

func (s *EntityService[E, C]) find(ctx context.Context, store *repository.Store, identity string, include ...repository.Query) (*E, error) {
	if identity == "" {
		return nil, apperr.NotFound("%s not found", s.Name)
	}
	entity, err := s.repo(store).FindOne(ctx, s.Hooks.PredicateForIDOrSlug(identity), include...)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, apperr.NotFound("%s not found", s.Name)
	}
	return entity, nil
}

// attachCreators loads the creator account of every authored entity in one query.
func attachCreators[E any](ctx context.Context, store *repository.Store, entities ...*E) error {
	authored := make([]model.Authored, 0, len(entities))
	ids := make([]string, 0, len(entities))
	for _, e := range entities {
		a, ok := any(e).(model.Authored)
		if !ok {
			return nil
		}
		authored = append(authored, a)
		if id := a.CreatorID(); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	users, err := store.Users.FindAll(ctx, repository.Where("id IN ?", ids))
	if err != nil {
		return err
	}
	byID := make(map[string]*model.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}
	for _, a := range authored {
		a.SetCreator(byID[a.CreatorID()])
	}
	return nil
}

func stamp(entity interface{}, callerID string) {
	if st, ok := entity.(model.Stamper); ok && callerID != "" {
		st.Stamp(callerID)
	}
}

// requireOwnership allows the entity's creator and admins.
func requireOwnership(ctx context.Context, store *repository.Store, entity interface{}, callerID string) error {
	caller, err := loadCaller(ctx, store, callerID)
	if err != nil {
		return err
	}
	owned, _ := entity.(model.Owned)
	if !permission.CanModify(caller, owned) {
		return apperr.Forbidden("unauthorized user")
	}
	return nil
}

// loadCaller fetches the acting user; unknown callers are forbidden.
func loadCaller(ctx context.Context, store *repository.Store, callerID string) (*model.User, error) {
	if callerID == "" {
		return nil, apperr.Forbidden("unauthorized user")
	}
	user, err := store.Users.FindOne(ctx, repository.Where("id = ?", callerID))
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, apperr.Forbidden("unauthorized user")
	}
	return user, nil
}
