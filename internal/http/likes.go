package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quoteshelf/quoteshelf/internal/auth"
)

// LikeLedger defines the engagement ledger operations the API needs.
type LikeLedger interface {
	Toggle(userID string, quoteID uint) (bool, error)
	HasLiked(userID string, quoteID uint) (bool, error)
	LikedQuoteIDs(userID string, quoteIDs []uint) (map[uint]bool, error)
}

type LikesController struct {
	ledger LikeLedger
}

func NewLikesController(ledger LikeLedger) *LikesController {
	return &LikesController{ledger: ledger}
}

// ToggleLike flips the caller's like on a quote.
// POST /api/quotes/:id/like
func (lc *LikesController) ToggleLike(c *gin.Context) {
	userID := auth.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message:  "caller identity required",
			Category: CategoryValidation,
		})
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	liked, err := lc.ledger.Toggle(userID, id)
	if err != nil {
		respondStoreError(c, err, "toggle like")
		return
	}

	message := "Quote unliked successfully"
	if liked {
		message = "Quote liked successfully"
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"liked":   liked,
		"message": message,
	})
}
