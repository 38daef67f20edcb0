package handlers

import (
	"net/http"

	"dating-app/internal/services"

	"github.com/gin-gonic/gin"
)

type MatchHandler struct {
	likes *services.LikeService
}

func NewMatchHandler(likes *services.LikeService) *MatchHandler {
	return &MatchHandler{likes: likes}
}

func (h *MatchHandler) ToggleLike(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	liked, err := h.likes.ToggleLike(c.Request.Context(), userID, c.Param("likedUserId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

// GetLikes serves ?predicate=liked|likedBy|mutual.
func (h *MatchHandler) GetLikes(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	members, err := h.likes.Query(c.Request.Context(), userID, services.Predicate(c.Query("predicate")))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, members)
}

func (h *MatchHandler) GetLikedIDs(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	ids, err := h.likes.LikedIDs(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ids)
}
