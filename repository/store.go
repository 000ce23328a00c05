package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Direction int

const (
	Ascending Direction = iota
	Descending
)

type Order struct {
	Field     string
	Direction Direction
}

// ByCreatedDesc orders newest first.
var ByCreatedDesc = []Order{{Field: "created_at", Direction: Descending}}

// Page selects a 1-based page. A Size of zero or less disables paging.
type Page struct {
	Number int
	Size   int
}

func (p Page) offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

// Filter holds column equality conditions.
type Filter map[string]any

// Store is the list/insert/get access layer for one entity type.
type Store[T any] struct {
	db   *gorm.DB
	name string
}

func NewStore[T any](db *gorm.DB, name string) *Store[T] {
	return &Store[T]{db: db, name: name}
}

func (s *Store[T]) query(ctx context.Context, filter Filter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(new(T))
	if len(filter) > 0 {
		q = q.Where(map[string]any(filter))
	}
	return q
}

// List returns one page of matching rows and the total number of matches.
func (s *Store[T]) List(ctx context.Context, filter Filter, orders []Order, page Page) ([]T, int64, error) {
	var total int64
	if err := s.query(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("repository: count %s: %w", s.name, err)
	}

	q := s.query(ctx, filter)
	for _, o := range orders {
		q = q.Order(clause.OrderByColumn{
			Column: clause.Column{Name: o.Field},
			Desc:   o.Direction == Descending,
		})
	}
	if page.Size > 0 {
		q = q.Offset(page.offset()).Limit(page.Size)
	}

	var items []T
	if err := q.Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("repository: list %s: %w", s.name, err)
	}
	return items, total, nil
}

func (s *Store[T]) Insert(ctx context.Context, items []T) error {
	if len(items) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&items).Error; err != nil {
		return fmt.Errorf("repository: insert %s: %w", s.name, err)
	}
	return nil
}

func (s *Store[T]) GetAll(ctx context.Context) ([]T, error) {
	var items []T
	if err := s.db.WithContext(ctx).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("repository: get all %s: %w", s.name, err)
	}
	return items, nil
}
