package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrStaleRow is returned by compare-and-swap updates that matched no row
// because another writer got there first.
var ErrStaleRow = errors.New("row changed by a concurrent update")

type Transactor interface {
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
	GetDB() *gorm.DB
}

type transactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) Transactor {
	return &transactor{db: db}
}

func (t *transactor) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return t.db.WithContext(ctx).Transaction(fn)
}

func (t *transactor) GetDB() *gorm.DB {
	return t.db
}

// forUpdate adds SELECT ... FOR UPDATE to serialise writers on the row.
func forUpdate(tx *gorm.DB, ctx context.Context) *gorm.DB {
	return tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
}

func casResult(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleRow
	}
	return nil
}
