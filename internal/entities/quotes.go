package entities

import (
	"time"
)

// Category classifies a quote by the kind of book it was taken from.
type Category string

const (
	CategoryFiction    Category = "fiction"
	CategoryNonFiction Category = "non-fiction"
	CategoryPoetry     Category = "poetry"
	CategoryBiography  Category = "biography"
	CategoryOther      Category = "other"
)

// Categories lists every valid category value.
var Categories = []Category{
	CategoryFiction,
	CategoryNonFiction,
	CategoryPoetry,
	CategoryBiography,
	CategoryOther,
}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Field length limits enforced by the quote store as a last-line invariant.
// The HTTP boundary validates first, but the store never persists violations.
const (
	MaxQuoteTextLength = 500
	MaxBookTitleLength = 200
	MaxAuthorLength    = 100
)

// DefaultBackgroundColor is used for quotes created without an explicit color.
const DefaultBackgroundColor = "#4F46E5"

type Quote struct {
	ID              uint     `gorm:"primaryKey" json:"id"`
	Text            string   `gorm:"size:500;not null" json:"text"`
	BookTitle       string   `gorm:"size:200;not null;index" json:"book_title"`
	Author          string   `gorm:"size:100;not null;index" json:"author"`
	BackgroundColor string   `gorm:"size:20;default:'#4F46E5'" json:"background_color"`
	Category        Category `gorm:"size:20;default:'fiction';index:idx_quotes_category_active" json:"category"`

	// Tags are stored as a JSON array to preserve the author-supplied order.
	Tags []string `gorm:"serializer:json" json:"tags"`

	// Likes caches the number of like relations referencing this quote.
	// The likes ledger is the source of truth; Toggle keeps this in step
	// and Reconcile repairs any drift.
	Likes int64 `gorm:"not null;default:0;index" json:"likes"`
	Views int64 `gorm:"not null;default:0" json:"views"`

	// IsActive is the soft-delete flag. Inactive quotes are hidden from all
	// public reads but stay addressable by ID for admin operations.
	IsActive bool `gorm:"not null;default:true;index:idx_quotes_category_active" json:"is_active"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PopularityScore is a derived ranking value. It is computed on read and
// never persisted.
func (q *Quote) PopularityScore() int64 {
	return q.Likes*2 + q.Views
}

// Like is a single user-to-quote like relation. The composite unique index
// guarantees at most one relation per (user, quote) pair; concurrent toggle
// attempts race on this index rather than on an in-process lock.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:64;not null;uniqueIndex:idx_likes_user_quote" json:"user_id"`
	QuoteID   uint      `gorm:"not null;uniqueIndex:idx_likes_user_quote;index" json:"quote_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CategoryStat is one row of the per-category aggregate statistics.
type CategoryStat struct {
	Category   Category `json:"category"`
	Count      int64    `json:"count"`
	TotalLikes int64    `json:"total_likes"`
	TotalViews int64    `json:"total_views"`
	AvgLikes   float64  `json:"avg_likes"`
}
