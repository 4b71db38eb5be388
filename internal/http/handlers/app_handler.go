package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/adforge/backend/internal/http/dto"
	"github.com/adforge/backend/internal/repositories"
	"github.com/adforge/backend/internal/storeparser"
)

// ListingFetcher scrapes a store page into an app profile draft.
type ListingFetcher interface {
	FetchListing(ctx context.Context, appURL string) (*storeparser.AppListing, error)
}

type AppHandler struct {
	appRepo *repositories.AppRepo
	store   ListingFetcher
	log     *zap.Logger
}

func NewAppHandler(appRepo *repositories.AppRepo, store ListingFetcher, log *zap.Logger) *AppHandler {
	return &AppHandler{appRepo: appRepo, store: store, log: log}
}

func (h *AppHandler) ListApps(c *fiber.Ctx) error {
	slugs, err := h.appRepo.Slugs()
	if err != nil {
		h.log.Error("list apps failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	if slugs == nil {
		slugs = []string{}
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: slugs})
}

func (h *AppHandler) GetApp(c *fiber.Ctx) error {
	app, err := h.appRepo.Get(c.Params("slug"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "app profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: app})
}

func (h *AppHandler) PutApp(c *fiber.Ctx) error {
	var req dto.SaveAppRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}
	if req.App.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "app name is required"})
	}

	if err := h.appRepo.Put(c.Params("slug"), req.App); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: req.App})
}

func (h *AppHandler) DeleteApp(c *fiber.Ctx) error {
	if err := h.appRepo.Delete(c.Params("slug")); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "app profile not found"})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

// ImportApp scrapes a Play Store listing and returns the draft without
// saving it; the operator reviews and saves via PutApp.
func (h *AppHandler) ImportApp(c *fiber.Ctx) error {
	var req dto.ImportAppRequest
	if err := c.BodyParser(&req); err != nil || req.StoreURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "store_url is required"})
	}

	listing, err := h.store.FetchListing(c.Context(), req.StoreURL)
	if err != nil {
		h.log.Warn("store import failed", zap.String("url", req.StoreURL), zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: listing})
}
