package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/adforge/backend/internal/campaign"
	"github.com/adforge/backend/internal/http/dto"
	"github.com/adforge/backend/internal/models"
	"github.com/adforge/backend/internal/repositories"
)

type CampaignHandler struct {
	campaignService *campaign.Service
	appRepo         *repositories.AppRepo
	log             *zap.Logger
}

func NewCampaignHandler(campaignService *campaign.Service, appRepo *repositories.AppRepo, log *zap.Logger) *CampaignHandler {
	return &CampaignHandler{campaignService: campaignService, appRepo: appRepo, log: log}
}

func (h *CampaignHandler) GenerateCampaign(c *fiber.Ctx) error {
	var req dto.GenerateCampaignRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	var app *models.AppInfo
	switch {
	case req.App != nil:
		app = req.App
	case req.AppSlug != "":
		stored, err := h.appRepo.Get(req.AppSlug)
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "app profile not found"})
		}
		app = stored
	default:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "app or app_slug is required"})
	}
	if app.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "app name is required"})
	}

	platforms := req.Platforms
	if len(platforms) == 0 {
		for _, p := range models.AllPlatforms() {
			platforms = append(platforms, p.String())
		}
	}

	result, err := h.campaignService.Generate(c.Context(), *app, platforms, req.WithImages)
	if err != nil {
		h.log.Error("campaign generation failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: dto.NewCampaignResponse(result)})
}

func (h *CampaignHandler) ListCampaigns(c *fiber.Ctx) error {
	ids, err := h.campaignService.List()
	if err != nil {
		h.log.Error("list campaigns failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	if ids == nil {
		ids = []string{}
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: ids})
}

func (h *CampaignHandler) GetCampaign(c *fiber.Ctx) error {
	result, err := h.campaignService.Get(c.Params("id"))
	if err != nil {
		return campaignError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.NewCampaignResponse(result)})
}

func (h *CampaignHandler) PostCampaign(c *fiber.Ctx) error {
	result, err := h.campaignService.PostAll(c.Context(), c.Params("id"))
	if err != nil {
		return campaignError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.NewCampaignResponse(result)})
}

func (h *CampaignHandler) PostCampaignPlatform(c *fiber.Ctx) error {
	p, err := models.ParsePlatform(c.Params("platform"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	result, err := h.campaignService.PostPlatform(c.Context(), c.Params("id"), p)
	if err != nil {
		return campaignError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.NewCampaignResponse(result)})
}

func (h *CampaignHandler) DeleteCampaign(c *fiber.Ctx) error {
	if err := h.campaignService.Delete(c.Context(), c.Params("id")); err != nil {
		return campaignError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

func campaignError(c *fiber.Ctx, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "campaign not found"})
	}
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
}
