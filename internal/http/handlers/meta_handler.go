package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/adforge/backend/internal/config"
	"github.com/adforge/backend/internal/http/dto"
	"github.com/adforge/backend/internal/models"
)

type MetaHandler struct {
	cfg *config.Config
}

func NewMetaHandler(cfg *config.Config) *MetaHandler {
	return &MetaHandler{cfg: cfg}
}

// GetPlatforms lists the supported platforms with their content limits, in
// canonical order.
func (h *MetaHandler) GetPlatforms(c *fiber.Ctx) error {
	var out []dto.PlatformInfo
	for _, p := range models.AllPlatforms() {
		s := h.cfg.Platforms[p]
		out = append(out, dto.PlatformInfo{
			Name:         p.String(),
			MaxChars:     s.MaxChars,
			HashtagLimit: s.HashtagLimit,
			ImageWidth:   s.ImageWidth,
			ImageHeight:  s.ImageHeight,
			AspectRatio:  s.AspectRatio,
		})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: out})
}
