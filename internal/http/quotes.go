package http

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quoteshelf/quoteshelf/internal/audit"
	"github.com/quoteshelf/quoteshelf/internal/auth"
	"github.com/quoteshelf/quoteshelf/internal/database/quotes"
	"github.com/quoteshelf/quoteshelf/internal/entities"
)

// QuoteStore defines database operations for quote management.
type QuoteStore interface {
	List(opts quotes.ListOptions) (*quotes.ListResult, error)
	GetActive(id uint) (*entities.Quote, error)
	GetAny(id uint) (*entities.Quote, error)
	IncrementViews(id uint) error
	Create(quote *entities.Quote) error
	Update(id uint, fields quotes.UpdateFields) (*entities.Quote, error)
	Delete(id uint) error
	Stats() ([]entities.CategoryStat, error)
}

// FeedDecorator marks which quotes on a feed page the caller has liked.
type FeedDecorator interface {
	LikedQuoteIDs(userID string, quoteIDs []uint) (map[uint]bool, error)
	HasLiked(userID string, quoteID uint) (bool, error)
}

type QuotesController struct {
	store     QuoteStore
	decorator FeedDecorator
	auditor   *audit.Service

	defaultPageSize int
	maxPageSize     int
}

func NewQuotesController(store QuoteStore, decorator FeedDecorator, auditor *audit.Service, defaultPageSize, maxPageSize int) *QuotesController {
	return &QuotesController{
		store:           store,
		decorator:       decorator,
		auditor:         auditor,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// QuoteView is a quote snapshot enriched with per-caller and derived fields.
type QuoteView struct {
	entities.Quote
	PopularityScore int64 `json:"popularity_score"`
	Liked           bool  `json:"liked"`
}

func newQuoteView(quote entities.Quote, liked bool) QuoteView {
	return QuoteView{
		Quote:           quote,
		PopularityScore: quote.PopularityScore(),
		Liked:           liked,
	}
}

// ListQuotes returns a feed page.
// GET /api/quotes?page=1&limit=10&category=fiction&sortBy=popular
func (qc *QuotesController) ListQuotes(c *gin.Context) {
	page, pageSize := parsePagination(c, qc.defaultPageSize, qc.maxPageSize)

	category := c.Query("category")
	if category == "all" {
		category = ""
	}

	opts := quotes.ListOptions{
		Category: entities.Category(category),
		Sort:     quotes.ParseSortMode(c.Query("sortBy")),
		Page:     page,
		PageSize: pageSize,
	}

	result, err := qc.store.List(opts)
	if err != nil {
		respondStoreError(c, err, "list quotes")
		return
	}

	ids := make([]uint, len(result.Quotes))
	for i, quote := range result.Quotes {
		ids[i] = quote.ID
	}

	liked := map[uint]bool{}
	if userID := auth.GetUserID(c); userID != "" {
		liked, err = qc.decorator.LikedQuoteIDs(userID, ids)
		if err != nil {
			// Decoration is cosmetic; the feed still goes out.
			log.Printf("Failed to resolve liked quotes for feed: %v", err)
			liked = map[uint]bool{}
		}
	}

	views := make([]QuoteView, len(result.Quotes))
	for i, quote := range result.Quotes {
		views[i] = newQuoteView(quote, liked[quote.ID])
	}

	// Feed view counts are advisory: increments happen after the response
	// is on its way, per item, and a failed increment is only logged. The
	// detail endpoint is the authoritative view signal.
	go qc.bumpViews(ids)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(views),
		"total":   result.Total,
		"page":    page,
		"pages":   result.PageCount,
		"data":    views,
	})
}

func (qc *QuotesController) bumpViews(ids []uint) {
	for _, id := range ids {
		if err := qc.store.IncrementViews(id); err != nil {
			log.Printf("Failed to increment views for quote %d: %v", id, err)
		}
	}
}

// GetQuote returns a single quote, counting the view before responding.
// GET /api/quotes/:id
func (qc *QuotesController) GetQuote(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	quote, err := qc.store.GetActive(id)
	if err != nil {
		respondStoreError(c, err, "get quote")
		return
	}

	// Synchronous on the detail path, unlike the feed's fire-and-forget.
	if err := qc.store.IncrementViews(id); err != nil {
		log.Printf("Failed to increment views for quote %d: %v", id, err)
	} else {
		quote.Views++
	}

	liked := false
	if userID := auth.GetUserID(c); userID != "" {
		liked, err = qc.decorator.HasLiked(userID, id)
		if err != nil {
			log.Printf("Failed to resolve liked state for quote %d: %v", id, err)
			liked = false
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    newQuoteView(*quote, liked),
	})
}

type quoteRequest struct {
	Text            string   `json:"text"`
	BookTitle       string   `json:"book_title"`
	Author          string   `json:"author"`
	BackgroundColor string   `json:"background_color"`
	Category        string   `json:"category"`
	Tags            []string `json:"tags"`
}

// CreateQuote adds a new quote to the catalogue.
// POST /api/quotes (admin)
func (qc *QuotesController) CreateQuote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	quote := entities.Quote{
		Text:            req.Text,
		BookTitle:       req.BookTitle,
		Author:          req.Author,
		BackgroundColor: req.BackgroundColor,
		Category:        entities.Category(req.Category),
		Tags:            req.Tags,
	}

	if err := qc.store.Create(&quote); err != nil {
		respondStoreError(c, err, "create quote")
		return
	}

	qc.auditor.LogQuoteCreate(auth.GetUserID(c), &quote)
	respondCreated(c, newQuoteView(quote, false))
}

type quoteUpdateRequest struct {
	Text            *string   `json:"text"`
	BookTitle       *string   `json:"book_title"`
	Author          *string   `json:"author"`
	BackgroundColor *string   `json:"background_color"`
	Category        *string   `json:"category"`
	Tags            *[]string `json:"tags"`
	IsActive        *bool     `json:"is_active"`
}

// UpdateQuote applies a partial update. Counter fields in the payload are
// ignored outright so stale snapshots cannot clobber likes or views.
// PUT /api/quotes/:id (admin)
func (qc *QuotesController) UpdateQuote(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req quoteUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	fields := quotes.UpdateFields{
		Text:            req.Text,
		BookTitle:       req.BookTitle,
		Author:          req.Author,
		BackgroundColor: req.BackgroundColor,
		Tags:            req.Tags,
		IsActive:        req.IsActive,
	}
	if req.Category != nil {
		category := entities.Category(*req.Category)
		fields.Category = &category
	}

	quote, err := qc.store.Update(id, fields)
	if err != nil {
		respondStoreError(c, err, "update quote")
		return
	}

	qc.auditor.LogQuoteUpdate(auth.GetUserID(c), id, changedFieldNames(req))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    newQuoteView(*quote, false),
	})
}

func changedFieldNames(req quoteUpdateRequest) []string {
	var fields []string
	if req.Text != nil {
		fields = append(fields, "text")
	}
	if req.BookTitle != nil {
		fields = append(fields, "book_title")
	}
	if req.Author != nil {
		fields = append(fields, "author")
	}
	if req.BackgroundColor != nil {
		fields = append(fields, "background_color")
	}
	if req.Category != nil {
		fields = append(fields, "category")
	}
	if req.Tags != nil {
		fields = append(fields, "tags")
	}
	if req.IsActive != nil {
		fields = append(fields, "is_active")
	}
	return fields
}

// DeleteQuote hard-deletes a quote and its like relations.
// DELETE /api/quotes/:id (admin)
func (qc *QuotesController) DeleteQuote(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	quote, err := qc.store.GetAny(id)
	if err != nil {
		respondStoreError(c, err, "delete quote")
		return
	}

	if err := qc.store.Delete(id); err != nil {
		respondStoreError(c, err, "delete quote")
		return
	}

	qc.auditor.LogQuoteDelete(auth.GetUserID(c), id, quote.BookTitle)
	respondSuccess(c, "Quote deleted successfully")
}

// GetStats returns per-category engagement aggregates.
// GET /api/quotes/stats (admin)
func (qc *QuotesController) GetStats(c *gin.Context) {
	stats, err := qc.store.Stats()
	if err != nil {
		respondInternalError(c, err, "quote stats")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}
