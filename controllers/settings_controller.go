package controller

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"leadpulse/models"
	"leadpulse/pipeline"
	"leadpulse/utils"
	"leadpulse/worker"
)

type SettingsController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewSettingsController(db *gorm.DB, logger *log.Logger) *SettingsController {
	return &SettingsController{
		DB:     db,
		Logger: logger,
	}
}

// GetPipelineSettings returns the user's pipeline configuration, creating
// the default document on first read. Whatever shape is stored, the
// response is fully defaulted and never an error payload.
func (sc *SettingsController) GetPipelineSettings(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	settings, err := models.LoadPipelineSettings(sc.DB, user.ID)
	if err != nil {
		utils.LogError("settings_load_failed", err, map[string]interface{}{"user_id": user.ID})
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load pipeline settings", err)
	}

	return c.JSON(utils.SuccessResponse(settings))
}

// UpdatePipelineSettings replaces the whole settings document. The incoming
// blob is normalized before persisting, so malformed fields silently fall
// back to their defaults instead of failing the save.
func (sc *SettingsController) UpdatePipelineSettings(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	settings := pipeline.NormalizeSettings(c.Body())
	if err := models.SavePipelineSettings(sc.DB, user.ID, settings); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save pipeline settings", err)
	}

	sc.Logger.Printf("Saved pipeline settings for user %d (%d stages)", user.ID, len(settings.Stages))
	return c.JSON(utils.SuccessResponse(settings))
}

// UpdatePipelineStage saves a single stage by index. The latest document is
// re-fetched immediately before merging, which narrows (but does not
// eliminate) the race window against a concurrent whole-document save.
func (sc *SettingsController) UpdatePipelineStage(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	index, err := c.ParamsInt("index")
	if err != nil || index < 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid stage index", err)
	}

	var incoming pipeline.Stage
	if err := json.Unmarshal(c.Body(), &incoming); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid stage payload", err)
	}

	settings, err := models.LoadPipelineSettings(sc.DB, user.ID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load pipeline settings", err)
	}
	if index >= len(settings.Stages) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Stage index out of range", nil)
	}

	// Stages are replaced in place; the pipeline keeps its cardinality.
	settings.Stages[index] = incoming
	raw, merr := settings.Marshal()
	if merr != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save pipeline stage", merr)
	}
	settings = pipeline.NormalizeSettings(raw)

	if err := models.SavePipelineSettings(sc.DB, user.ID, settings); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save pipeline stage", err)
	}

	sc.Logger.Printf("Saved stage %d for user %d", index, user.ID)
	return c.JSON(utils.SuccessResponse(settings.Stages[index]))
}

// RunRollover triggers the nightly rollover for the calling user. The same
// cutoff and day-key guards apply as for the background sweep, so calling
// it early or twice is harmless.
func (sc *SettingsController) RunRollover(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	now := time.Now().In(Location(user))
	ran, err := worker.RunRolloverIfDue(sc.DB, sc.Logger, user, now)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Rollover failed", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"rescheduled": ran,
		"day_key":     pipeline.DayKey(now),
	}))
}
