package service

import (
	"academy_backend/internal/apperr"
	"academy_backend/internal/model"
	"academy_backend/internal/repository"
	"context"
)

// Resolver finds an entity by a caller-supplied identity: an exact id match
// first, then the unique slug.
type Resolver[E any] struct {
	Name       string
	SlugColumn string // empty for entities without a slug
}

func (r Resolver[E]) Resolve(ctx context.Context, store *repository.Store, identity string, include ...repository.Query) (*E, error) {
	repo := repository.For[E](store)
	if model.IsUUID(identity) {
		entity, err := repo.FindOne(ctx, repository.Where("id = ?", identity), include...)
		if err != nil {
			return nil, err
		}
		if entity != nil {
			return entity, nil
		}
	}
	if r.SlugColumn != "" && identity != "" {
		entity, err := repo.FindOne(ctx, repository.Where(r.SlugColumn+" = ?", identity), include...)
		if err != nil {
			return nil, err
		}
		if entity != nil {
			return entity, nil
		}
	}
	return nil, apperr.NotFound("%s not found", r.Name)
}

// Predicate matches the same rows Resolve would try, for use as a hook predicate.
func (r Resolver[E]) Predicate(identity string) repository.Query {
	if r.SlugColumn == "" {
		return repository.Where("id = ?", identity)
	}
	return repository.Where("id = ? OR "+r.SlugColumn+" = ?", identity, identity)
}

var (
	courseResolver       = Resolver[model.Course]{Name: "course", SlugColumn: "slug"}
	sectionResolver      = Resolver[model.Section]{Name: "section", SlugColumn: "slug"}
	lessonResolver       = Resolver[model.Lesson]{Name: "lesson", SlugColumn: "slug"}
	questionPoolResolver = Resolver[model.QuestionPool]{Name: "question pool", SlugColumn: "slug"}
)
