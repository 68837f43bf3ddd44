package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/recopesa/intake-backend/internal/service"
)

type ConfigHandler struct {
	config *service.ConfigService
}

func NewConfigHandler(config *service.ConfigService) *ConfigHandler {
	return &ConfigHandler{config: config}
}

func (h *ConfigHandler) Get(c *gin.Context) {
	cfg, err := h.config.Get(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

type updateConfigInput struct {
	ExtraPercentage float64 `json:"extraPercentage"`
}

func (h *ConfigHandler) Update(c *gin.Context) {
	var in updateConfigInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	cfg, err := h.config.Update(c.Request.Context(), in.ExtraPercentage)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}
