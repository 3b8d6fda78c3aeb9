package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Query is an opaque filter or include directive applied to a gorm chain.
// Services compose queries without interpreting them.
type Query func(db *gorm.DB) *gorm.DB

// All matches every row.
func All() Query {
	return func(db *gorm.DB) *gorm.DB { return db }
}

func Where(query interface{}, args ...interface{}) Query {
	return func(db *gorm.DB) *gorm.DB { return db.Where(query, args...) }
}

// IDOrSlug matches a row by primary key or by its slug column.
func IDOrSlug(identity string) Query {
	return Where("id = ? OR slug = ?", identity, identity)
}

func Preload(assoc string, args ...interface{}) Query {
	return func(db *gorm.DB) *gorm.DB { return db.Preload(assoc, args...) }
}

// PreloadOrdered eager loads a child collection sorted by its order column.
func PreloadOrdered(assoc string) Query {
	return Preload(assoc, func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") })
}

func OrderBy(column string, desc bool) Query {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc})
	}
}

// And applies the receiver then every non-nil query in order.
func (q Query) And(others ...Query) Query {
	return And(append([]Query{q}, others...)...)
}

func And(queries ...Query) Query {
	return func(db *gorm.DB) *gorm.DB {
		for _, q := range queries {
			if q != nil {
				db = q(db)
			}
		}
		return db
	}
}
