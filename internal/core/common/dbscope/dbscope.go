// Package dbscope holds gorm scopes shared by the repositories.
package dbscope

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Paginate is a gorm scope; a non-positive limit returns every row.
func Paginate(limit, offset int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if limit > 0 {
			db = db.Limit(limit)
		}
		if offset > 0 {
			db = db.Offset(offset)
		}
		return db
	}
}

// ForUpdate locks the selected rows until the surrounding transaction ends.
// SQLite has no row locks; its single writer already serializes transactions.
func ForUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "postgres" {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}
