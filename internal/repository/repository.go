package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the persistence gateway for one entity type. Writes never
// cascade into associations; owners persist their children explicitly.
type Repository[T any] struct {
	DB *gorm.DB
}

func NewRepository[T any](db *gorm.DB) *Repository[T] {
	return &Repository[T]{DB: db}
}

func (r *Repository[T]) scoped(ctx context.Context, where Query, include []Query) *gorm.DB {
	db := r.DB.WithContext(ctx).Model(new(T))
	if where != nil {
		db = where(db)
	}
	for _, inc := range include {
		if inc != nil {
			db = inc(db)
		}
	}
	return db
}

// FindOne returns the first match or nil when nothing matches.
func (r *Repository[T]) FindOne(ctx context.Context, where Query, include ...Query) (*T, error) {
	var entity T
	err := r.scoped(ctx, where, include).Take(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *Repository[T]) FindAll(ctx context.Context, where Query, include ...Query) ([]T, error) {
	var entities []T
	err := r.scoped(ctx, where, include).Find(&entities).Error
	return entities, err
}

// Pluck selects the distinct values of one column into dest.
func (r *Repository[T]) Pluck(ctx context.Context, where Query, column string, dest interface{}) error {
	return r.scoped(ctx, where, nil).Distinct(column).Pluck(column, dest).Error
}

func (r *Repository[T]) Exists(ctx context.Context, where Query) (bool, error) {
	found, err := r.Count(ctx, where)
	if err != nil {
		return false, err
	}
	return found > 0, nil
}

func (r *Repository[T]) Count(ctx context.Context, where Query) (int64, error) {
	var total int64
	err := r.scoped(ctx, where, nil).Count(&total).Error
	return total, err
}

// Page counts the matches and fetches one window of them.
func (r *Repository[T]) Page(ctx context.Context, where, order Query, offset, limit int, include ...Query) ([]T, int64, error) {
	total, err := r.Count(ctx, where)
	if err != nil {
		return nil, 0, err
	}

	var entities []T
	db := r.scoped(ctx, where, include)
	if order != nil {
		db = order(db)
	}
	if err := db.Offset(offset).Limit(limit).Find(&entities).Error; err != nil {
		return nil, 0, err
	}
	return entities, total, nil
}

func (r *Repository[T]) Insert(ctx context.Context, entities ...*T) error {
	switch len(entities) {
	case 0:
		return nil
	case 1:
		return r.DB.WithContext(ctx).Omit(clause.Associations).Create(entities[0]).Error
	}
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(&entities).Error
}

func (r *Repository[T]) Update(ctx context.Context, entity *T) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Save(entity).Error
}

func (r *Repository[T]) Delete(ctx context.Context, entities ...*T) error {
	db := r.DB.WithContext(ctx)
	for _, e := range entities {
		if err := db.Delete(e).Error; err != nil {
			return err
		}
	}
	return nil
}

// DeleteWhere removes every row matching where. where must carry a condition.
func (r *Repository[T]) DeleteWhere(ctx context.Context, where Query) error {
	return where(r.DB.WithContext(ctx)).Delete(new(T)).Error
}

// HasColumn reports whether name maps to a column of T, returning the column name.
func (r *Repository[T]) HasColumn(name string) (string, bool) {
	stmt := &gorm.Statement{DB: r.DB}
	if err := stmt.Parse(new(T)); err != nil {
		return "", false
	}
	snake := r.DB.NamingStrategy.ColumnName("", name)
	for _, field := range stmt.Schema.Fields {
		if field.DBName == "" {
			continue
		}
		if field.DBName == name || field.DBName == snake || strings.EqualFold(field.Name, name) {
			return field.DBName, true
		}
	}
	return "", false
}
