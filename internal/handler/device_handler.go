package handler

import (
	"errors"
	"fmt"
	"strconv"

	"id-collector-api/internal/middleware"
	"id-collector-api/internal/model"
	"id-collector-api/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const (
	DefaultSkip  = 0
	DefaultLimit = 100
)

// RepoFactory builds a repository on top of the request's store session.
type RepoFactory func(db *gorm.DB) repository.DeviceRepository

type DeviceHandler struct {
	newRepo  RepoFactory
	maxLimit int
}

func NewDeviceHandler(newRepo RepoFactory, maxLimit int) *DeviceHandler {
	return &DeviceHandler{newRepo: newRepo, maxLimit: maxLimit}
}

func (h *DeviceHandler) repo(c *fiber.Ctx) (repository.DeviceRepository, error) {
	db := middleware.DB(c)
	if db == nil {
		return nil, errors.New("no store session for request")
	}
	return h.newRepo(db), nil
}

// Store handles POST /api/store-ids.
func (h *DeviceHandler) Store(c *fiber.Ctx) error {
	lg := zerolog.Ctx(c.UserContext())

	var req model.StoreDeviceRequest
	if err := c.BodyParser(&req); err != nil {
		return validationFailed(c, lg, model.DecodeError(err))
	}
	if err := req.Validate(); err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			return validationFailed(c, lg, verr)
		}
		return storeFailed(c, lg, "Error validating device IDs", err)
	}

	lg.Info().Str("android_id", *req.AndroidID).Msg("Received request to store IDs")

	repo, err := h.repo(c)
	if err != nil {
		return storeFailed(c, lg, "Error storing device IDs", err)
	}
	record, err := repo.Upsert(c.UserContext(), &req)
	if err != nil {
		return storeFailed(c, lg, "Error storing device IDs", err)
	}

	lg.Info().Str("android_id", record.AndroidID).Uint("id", record.ID).Msg("Device IDs stored")
	return c.JSON(model.OK("Device IDs stored successfully", record))
}

// GetAll handles GET /api/all-ids?skip=&limit=.
func (h *DeviceHandler) GetAll(c *fiber.Ctx) error {
	lg := zerolog.Ctx(c.UserContext())

	skip, limit, verr := h.pagination(c)
	if verr != nil {
		return validationFailed(c, lg, verr)
	}

	lg.Info().Int("skip", skip).Int("limit", limit).Msg("Fetching all device IDs")

	repo, err := h.repo(c)
	if err != nil {
		return storeFailed(c, lg, "Error retrieving all device IDs", err)
	}
	records, err := repo.List(c.UserContext(), skip, limit)
	if err != nil {
		return storeFailed(c, lg, "Error retrieving all device IDs", err)
	}

	lg.Info().Int("count", len(records)).Msg("Device IDs retrieved")
	return c.JSON(model.OK(fmt.Sprintf("Retrieved %d device IDs", len(records)), records))
}

// GetByAndroidID handles GET /api/get-ids/:android_id.
func (h *DeviceHandler) GetByAndroidID(c *fiber.Ctx) error {
	lg := zerolog.Ctx(c.UserContext())
	androidID := c.Params("android_id")

	lg.Info().Str("android_id", androidID).Msg("Fetching device")

	repo, err := h.repo(c)
	if err != nil {
		return storeFailed(c, lg, "Error retrieving device ID", err)
	}
	record, err := repo.GetByAndroidID(c.UserContext(), androidID)
	if errors.Is(err, repository.ErrNotFound) {
		lg.Warn().Str("android_id", androidID).Msg("Device not found")
		return c.Status(fiber.StatusNotFound).JSON(model.Fail("Device not found"))
	}
	if err != nil {
		return storeFailed(c, lg, "Error retrieving device ID", err)
	}

	return c.JSON(model.OK("Device found", record))
}

// pagination reads skip and limit. Negative skip means 0, a limit below 1
// means the default and anything above maxLimit is capped.
func (h *DeviceHandler) pagination(c *fiber.Ctx) (int, int, *model.ValidationError) {
	verr := &model.ValidationError{}

	skip, ok := queryInt(c, "skip", DefaultSkip, verr)
	if ok && skip < 0 {
		skip = 0
	}
	limit, ok := queryInt(c, "limit", DefaultLimit, verr)
	if ok {
		if limit < 1 {
			limit = DefaultLimit
		}
		if h.maxLimit > 0 && limit > h.maxLimit {
			limit = h.maxLimit
		}
	}

	if len(verr.Fields) > 0 {
		return 0, 0, verr
	}
	return skip, limit, nil
}

func queryInt(c *fiber.Ctx, key string, fallback int, verr *model.ValidationError) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		verr.Fields = append(verr.Fields, model.FieldError{Field: key, Message: "value is not a valid integer"})
		return 0, false
	}
	return v, true
}

func validationFailed(c *fiber.Ctx, lg *zerolog.Logger, verr *model.ValidationError) error {
	lg.Info().Err(verr).Msg("Request rejected")
	resp := model.Fail("Validation failed")
	resp.Errors = verr.Fields
	return c.Status(fiber.StatusUnprocessableEntity).JSON(resp)
}

func storeFailed(c *fiber.Ctx, lg *zerolog.Logger, msg string, err error) error {
	lg.Error().Err(err).Msg(msg)
	return c.Status(fiber.StatusInternalServerError).JSON(model.Fail(err.Error()))
}
