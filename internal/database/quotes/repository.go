// Package quotes provides database operations for quote management.
//
// This package implements the QuoteStore interface defined in internal/http/quotes.go.
//
// # Usage
//
//	repo := quotes.NewRepository(db)
//	result, err := repo.List(quotes.ListOptions{Sort: quotes.SortPopular, Page: 1, PageSize: 10})
package quotes

import (
	"errors"
	"fmt"
	"math"

	"gorm.io/gorm"

	"github.com/quoteshelf/quoteshelf/internal/entities"
)

// ErrNotFound is returned when a quote does not exist or is hidden from the caller.
var ErrNotFound = errors.New("quote not found")

// ValidationError describes a field that violates the store's invariants.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// SortMode selects the feed ordering.
type SortMode string

const (
	SortLatest  SortMode = "latest"
	SortPopular SortMode = "popular"
	SortRandom  SortMode = "random"
)

// ParseSortMode maps a request parameter to a sort mode, defaulting to latest.
func ParseSortMode(s string) SortMode {
	switch SortMode(s) {
	case SortPopular:
		return SortPopular
	case SortRandom:
		return SortRandom
	default:
		return SortLatest
	}
}

// ListOptions control the feed query. Page is 1-indexed.
type ListOptions struct {
	Category entities.Category // empty means all categories
	Sort     SortMode
	Page     int
	PageSize int
}

// ListResult is one feed page plus pagination metadata. Quote snapshots
// reflect counter state at query time, before any view increments.
type ListResult struct {
	Quotes    []entities.Quote
	Total     int64
	PageCount int
}

// Repository handles all quote database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new quotes repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// activeScope restricts a query to publicly visible quotes, optionally
// filtered by category.
func (r *Repository) activeScope(category entities.Category) *gorm.DB {
	query := r.db.Model(&entities.Quote{}).Where("is_active = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	return query
}

// List runs the feed query. Random sort draws a fresh uniform sample of
// PageSize quotes on every call and ignores the page offset; there is no
// stable pagination to offer for a sample.
func (r *Repository) List(opts ListOptions) (*ListResult, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PageSize < 1 {
		opts.PageSize = 10
	}
	if opts.Category != "" && !opts.Category.IsValid() {
		return nil, &ValidationError{Field: "category", Message: "unknown category"}
	}

	var total int64
	if err := r.activeScope(opts.Category).Count(&total).Error; err != nil {
		return nil, err
	}

	query := r.activeScope(opts.Category)
	switch opts.Sort {
	case SortPopular:
		query = query.Order("likes DESC")
	case SortRandom:
		// SQLite's native sampling; deliberately unstable across calls.
		query = query.Order("RANDOM()")
	default:
		query = query.Order("created_at DESC")
	}

	if opts.Sort != SortRandom {
		query = query.Offset((opts.Page - 1) * opts.PageSize)
	}
	query = query.Limit(opts.PageSize)

	var result []entities.Quote
	if err := query.Find(&result).Error; err != nil {
		return nil, err
	}

	return &ListResult{
		Quotes:    result,
		Total:     total,
		PageCount: int(math.Ceil(float64(total) / float64(opts.PageSize))),
	}, nil
}

// GetActive retrieves a publicly visible quote by ID.
func (r *Repository) GetActive(id uint) (*entities.Quote, error) {
	var quote entities.Quote
	err := r.db.Where("is_active = ?", true).First(&quote, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// GetAny retrieves a quote by ID regardless of its active flag. Inactive
// quotes stay addressable for admin operations until hard-deleted.
func (r *Repository) GetAny(id uint) (*entities.Quote, error) {
	var quote entities.Quote
	err := r.db.First(&quote, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// IncrementViews bumps the view counter by one. The increment runs as a
// single UPDATE expression so concurrent increments are never lost.
func (r *Repository) IncrementViews(id uint) error {
	return r.db.Model(&entities.Quote{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

// Create validates and persists a new quote. Counters always start at zero
// and the quote is active regardless of what the caller supplied.
func (r *Repository) Create(quote *entities.Quote) error {
	applyDefaults(quote)
	if err := validate(quote); err != nil {
		return err
	}

	quote.ID = 0
	quote.Likes = 0
	quote.Views = 0
	quote.IsActive = true

	return r.db.Create(quote).Error
}

// UpdateFields carries a partial update; nil fields stay unchanged.
// Counters are intentionally absent: likes and views can never be set
// through the update path.
type UpdateFields struct {
	Text            *string
	BookTitle       *string
	Author          *string
	BackgroundColor *string
	Category        *entities.Category
	Tags            *[]string
	IsActive        *bool
}

// Update applies a partial update and returns the fresh record.
func (r *Repository) Update(id uint, fields UpdateFields) (*entities.Quote, error) {
	if _, err := r.GetAny(id); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if fields.Text != nil {
		if err := validateLength("text", *fields.Text, entities.MaxQuoteTextLength); err != nil {
			return nil, err
		}
		updates["text"] = *fields.Text
	}
	if fields.BookTitle != nil {
		if err := validateLength("book_title", *fields.BookTitle, entities.MaxBookTitleLength); err != nil {
			return nil, err
		}
		updates["book_title"] = *fields.BookTitle
	}
	if fields.Author != nil {
		if err := validateLength("author", *fields.Author, entities.MaxAuthorLength); err != nil {
			return nil, err
		}
		updates["author"] = *fields.Author
	}
	if fields.BackgroundColor != nil {
		updates["background_color"] = *fields.BackgroundColor
	}
	if fields.Category != nil {
		if !fields.Category.IsValid() {
			return nil, &ValidationError{Field: "category", Message: "unknown category"}
		}
		updates["category"] = *fields.Category
	}
	if fields.IsActive != nil {
		updates["is_active"] = *fields.IsActive
	}

	if len(updates) > 0 {
		if err := r.db.Model(&entities.Quote{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	// Tags go through the serializer, so update them on the model directly.
	if fields.Tags != nil {
		err := r.db.Model(&entities.Quote{ID: id}).Update("tags", *fields.Tags).Error
		if err != nil {
			return nil, err
		}
	}

	return r.GetAny(id)
}

// Delete hard-deletes a quote and every like relation referencing it in a
// single transaction, so no orphaned like is ever observable.
func (r *Repository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var quote entities.Quote
		if err := tx.First(&quote, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Where("quote_id = ?", id).Delete(&entities.Like{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.Quote{}, id).Error
	})
}

// Stats aggregates engagement counters of active quotes per category.
// Categories with no quotes do not appear.
func (r *Repository) Stats() ([]entities.CategoryStat, error) {
	var stats []entities.CategoryStat
	err := r.db.Model(&entities.Quote{}).
		Select("category, COUNT(*) AS count, SUM(likes) AS total_likes, SUM(views) AS total_views, AVG(likes) AS avg_likes").
		Where("is_active = ?", true).
		Group("category").
		Scan(&stats).Error
	return stats, err
}

func applyDefaults(quote *entities.Quote) {
	if quote.BackgroundColor == "" {
		quote.BackgroundColor = entities.DefaultBackgroundColor
	}
	if quote.Category == "" {
		quote.Category = entities.CategoryFiction
	}
}

func validate(quote *entities.Quote) error {
	if quote.Text == "" {
		return &ValidationError{Field: "text", Message: "is required"}
	}
	if err := validateLength("text", quote.Text, entities.MaxQuoteTextLength); err != nil {
		return err
	}
	if quote.BookTitle == "" {
		return &ValidationError{Field: "book_title", Message: "is required"}
	}
	if err := validateLength("book_title", quote.BookTitle, entities.MaxBookTitleLength); err != nil {
		return err
	}
	if quote.Author == "" {
		return &ValidationError{Field: "author", Message: "is required"}
	}
	if err := validateLength("author", quote.Author, entities.MaxAuthorLength); err != nil {
		return err
	}
	if !quote.Category.IsValid() {
		return &ValidationError{Field: "category", Message: "unknown category"}
	}
	return nil
}

func validateLength(field, value string, max int) error {
	if len([]rune(value)) > max {
		return &ValidationError{Field: field, Message: fmt.Sprintf("cannot be longer than %d characters", max)}
	}
	return nil
}
