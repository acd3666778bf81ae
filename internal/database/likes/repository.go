// Package likes provides database operations for the like ledger.
//
// The ledger is the authoritative record of user-to-quote like relations.
// A composite unique index on (user_id, quote_id) enforces at most one
// relation per pair; Toggle relies on that index, not on in-process
// locking, so it stays correct across multiple process instances.
//
// This package implements the LikeLedger interface defined in internal/http/likes.go.
package likes

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/quoteshelf/quoteshelf/internal/database/quotes"
	"github.com/quoteshelf/quoteshelf/internal/entities"
)

// Repository handles all like ledger database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new likes repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Toggle flips the like state for a (user, quote) pair and adjusts the
// quote's cached likes counter in the same transaction. Returns the state
// after the toggle.
//
// The relation lookup, the insert/delete, and the counter adjustment form
// one atomic unit: a failure rolls everything back, so a completed toggle
// never leaves the ledger and the counter with mismatched effects. Two
// concurrent likes for the same pair race on the unique index; the loser's
// insert becomes a no-op and the call still reports liked=true.
func (r *Repository) Toggle(userID string, quoteID uint) (bool, error) {
	var liked bool

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var quote entities.Quote
		err := tx.Where("is_active = ?", true).First(&quote, quoteID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return quotes.ErrNotFound
		}
		if err != nil {
			return err
		}

		res := tx.Where("user_id = ? AND quote_id = ?", userID, quoteID).Delete(&entities.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			// Unlike. The likes > 0 guard keeps the counter non-negative
			// even if it had drifted below the ledger.
			liked = false
			return tx.Model(&entities.Quote{}).
				Where("id = ? AND likes > 0", quoteID).
				UpdateColumn("likes", gorm.Expr("likes - 1")).Error
		}

		// Like. A concurrent winner makes the insert a silent no-op; in
		// that case the relation already exists and the counter was already
		// bumped, so report success without incrementing again.
		like := entities.Like{UserID: userID, QuoteID: quoteID}
		insert := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like)
		if insert.Error != nil {
			return insert.Error
		}
		liked = true
		if insert.RowsAffected == 0 {
			return nil
		}
		return tx.Model(&entities.Quote{}).
			Where("id = ?", quoteID).
			UpdateColumn("likes", gorm.Expr("likes + 1")).Error
	})

	return liked, err
}

// HasLiked reports whether the user currently likes the quote.
func (r *Repository) HasLiked(userID string, quoteID uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Like{}).
		Where("user_id = ? AND quote_id = ?", userID, quoteID).
		Count(&count).Error
	return count > 0, err
}

// LikedQuoteIDs returns which of the given quotes the user likes. Used to
// decorate feed pages without one query per quote.
func (r *Repository) LikedQuoteIDs(userID string, quoteIDs []uint) (map[uint]bool, error) {
	liked := make(map[uint]bool, len(quoteIDs))
	if userID == "" || len(quoteIDs) == 0 {
		return liked, nil
	}

	var ids []uint
	err := r.db.Model(&entities.Like{}).
		Where("user_id = ? AND quote_id IN ?", userID, quoteIDs).
		Pluck("quote_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}

// CountForQuote returns the number of ledger relations for a quote.
func (r *Repository) CountForQuote(quoteID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Like{}).
		Where("quote_id = ?", quoteID).
		Count(&count).Error
	return count, err
}

// Reconcile rewrites every quote's cached likes counter from the ledger.
// Returns the number of quotes whose counter was corrected. The ledger is
// the source of truth; this repairs drift left behind by crashes between
// deploys or manual database edits.
func (r *Repository) Reconcile() (int64, error) {
	res := r.db.Exec(`
		UPDATE quotes
		SET likes = (SELECT COUNT(*) FROM likes WHERE likes.quote_id = quotes.id)
		WHERE likes != (SELECT COUNT(*) FROM likes WHERE likes.quote_id = quotes.id)`)
	return res.RowsAffected, res.Error
}
