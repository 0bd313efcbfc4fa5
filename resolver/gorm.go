package resolver

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/vitalvas/reroute/mux"
	"gorm.io/gorm"
)

// Record is a generic routable row: a typed object reachable by numeric id
// or by slug.
type Record struct {
	ID   uint   `gorm:"primaryKey"`
	Type string `gorm:"size:64;not null;index:idx_record_type_slug"`
	Slug string `gorm:"size:191;index:idx_record_type_slug"`
	Name string `gorm:"size:255"`
}

var _ mux.Model = (*Record)(nil)

// ModelID returns the slug, or the numeric id when the slug is empty.
func (r *Record) ModelID() string {
	if r.Slug != "" {
		return r.Slug
	}
	return strconv.FormatUint(uint64(r.ID), 10)
}

// ModelType returns the record type.
func (r *Record) ModelType() string {
	return r.Type
}

// Store keeps Records in a gorm database.
type Store struct {
	db *gorm.DB
}

// NewStore returns a store over db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying gorm database.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Migrate creates or updates the records table.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&Record{}); err != nil {
		return fmt.Errorf("resolver: migrate: %w", err)
	}
	return nil
}

// Create inserts a record and fills its ID.
func (s *Store) Create(ctx context.Context, record *Record) error {
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("resolver: create %s: %w", record.Type, err)
	}
	return nil
}

// Find loads the record of typeName whose slug, or numeric id, equals raw.
// The slug takes precedence.
func (s *Store) Find(ctx context.Context, typeName, raw string) (*Record, error) {
	var record Record

	query := s.db.WithContext(ctx).Where("type = ?", typeName)
	if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
		query = query.Where("slug = ? OR (slug = '' AND id = ?)", raw, id)
	} else {
		query = query.Where("slug = ?", raw)
	}

	if err := query.Order("slug DESC").First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s %q", ErrNotFound, typeName, raw)
		}
		return nil, fmt.Errorf("resolver: find %s %q: %w", typeName, raw, err)
	}

	return &record, nil
}

// Lookup returns a LookupFunc reading records of the requested type.
func (s *Store) Lookup() LookupFunc {
	return func(ctx context.Context, typeName, raw string) (mux.Model, error) {
		record, err := s.Find(ctx, typeName, raw)
		if err != nil {
			return nil, err
		}
		return record, nil
	}
}

// GormLookup returns a LookupFunc reading Records of typeName from db,
// whatever type name the router asks for. It serves a type and all its
// subtypes from one table partition.
func GormLookup(db *gorm.DB, typeName string) LookupFunc {
	store := NewStore(db)
	return func(ctx context.Context, _ string, raw string) (mux.Model, error) {
		record, err := store.Find(ctx, typeName, raw)
		if err != nil {
			return nil, err
		}
		return record, nil
	}
}
