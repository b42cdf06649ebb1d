package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"alfredmail-be/config"
	"alfredmail-be/internal/gate"
	"alfredmail-be/internal/models"
	"alfredmail-be/internal/repository"
	"alfredmail-be/internal/utils"
)

type TokenHandler struct {
	cfg    *config.Config
	gate   *gate.Gate
	states *repository.StateRepository
}

func NewTokenHandler(cfg *config.Config, g *gate.Gate, states *repository.StateRepository) *TokenHandler {
	return &TokenHandler{
		cfg:    cfg,
		gate:   g,
		states: states,
	}
}

// Validate checks the shared access token and, when it matches, opens a
// session: a record in the state store plus a JWT whose expiry equals
// the gate's validity window.
func (h *TokenHandler) Validate(c *gin.Context) {
	var req models.ValidateTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	res := h.gate.Validate(req.Token)
	if !res.Valid {
		c.JSON(http.StatusUnauthorized, models.ValidateTokenResponse{Valid: false})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sessionID := primitive.NewObjectID().Hex()
	if _, err := h.states.Create(ctx, sessionID, res.ExpiresAt); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to create session",
		})
		return
	}

	token, err := utils.GenerateSessionToken(sessionID, h.cfg.JWTSecret, res.ExpiresAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "token_generation_failed",
			Message: "Failed to generate access token",
		})
		return
	}

	c.JSON(http.StatusOK, models.ValidateTokenResponse{
		Valid:       true,
		ExpiresAt:   res.ExpiresAt,
		AccessToken: token,
	})
}
