package controller

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"leadpulse/models"
	"leadpulse/pipeline"
	"leadpulse/utils"
)

type PromotionController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewPromotionController(db *gorm.DB, logger *log.Logger) *PromotionController {
	return &PromotionController{
		DB:     db,
		Logger: logger,
	}
}

// CreatePromotion plans a touchpoint campaign: it resolves the targeted
// leads, materializes the touchpoint dates backward from the end date,
// suspends organic follow-ups that collide with a touchpoint, and bulk
// creates one event per lead per touchpoint. The lead selection is captured
// once here and never recomputed.
func (pc *PromotionController) CreatePromotion(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Name           string `json:"name" validate:"required,max=200"`
		EndDate        string `json:"end_date" validate:"required"`
		SnapWindowDays *int   `json:"snap_window_days" validate:"omitempty,gte=0,lte=30"`
		Targeting      []string `json:"targeting" validate:"required,min=1"`
		SearchTerm     string   `json:"search_term"`
		Touchpoints    []struct {
			Name       string `json:"name"`
			OffsetDays int    `json:"offset_days" validate:"gte=0"`
			Template   string `json:"template"`
		} `json:"touchpoints" validate:"required,min=1,dive"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	loc := Location(user)
	endDate, err := utils.ParseDate(input.EndDate, loc)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid end_date", err)
	}

	snapWindow := 1
	if input.SnapWindowDays != nil {
		snapWindow = *input.SnapWindowDays
	}

	offsets := make([]int, len(input.Touchpoints))
	for i, tp := range input.Touchpoints {
		offsets[i] = tp.OffsetDays
	}
	touchpointDates := pipeline.TouchpointDates(endDate, offsets)

	var leads []models.Lead
	if err := pc.DB.Where("user_id = ?", user.ID).Find(&leads).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load leads", err)
	}
	snapshots := make([]pipeline.LeadSnapshot, len(leads))
	byID := make(map[uint]*models.Lead, len(leads))
	for i := range leads {
		snapshots[i] = leadSnapshot(leads[i])
		byID[leads[i].ID] = &leads[i]
	}

	targeted := pipeline.TargetLeads(snapshots, input.Targeting, input.SearchTerm, touchpointDates, snapWindow)
	leadIDs := make([]uint, len(targeted))
	for i, t := range targeted {
		leadIDs[i] = t.ID
	}

	promotion := models.Promotion{
		UserID:         user.ID,
		Name:           input.Name,
		EndDate:        endDate,
		SnapWindowDays: snapWindow,
		Status:         "scheduled",
		Targeting:      input.Targeting,
		SearchTerm:     input.SearchTerm,
		LeadIDs:        leadIDs,
	}
	if err := pc.DB.Create(&promotion).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create promotion", err)
	}

	// Touchpoints keep their input order; offsets need not be monotonic.
	touchpoints := make([]models.PromotionTouchpoint, len(input.Touchpoints))
	for i, tp := range input.Touchpoints {
		touchpoints[i] = models.PromotionTouchpoint{
			PromotionID: promotion.ID,
			Name:        tp.Name,
			StepNumber:  i + 1,
			OffsetDays:  tp.OffsetDays,
			Template:    tp.Template,
		}
	}
	if err := pc.DB.Create(&touchpoints).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create promotion touchpoints", err)
	}

	// Suspend the organic schedule of every targeted lead whose follow-up
	// collides with a touchpoint, snapshotting it first.
	now := time.Now().In(loc)
	snapped := 0
	for _, t := range targeted {
		if !pipeline.QualifiesForSnap(t, touchpointDates, snapWindow) {
			continue
		}
		lead := byID[t.ID]
		snapshot := models.SnapSnapshot{
			UserID:              user.ID,
			LeadID:              lead.ID,
			PromotionID:         promotion.ID,
			OriginalScheduledAt: *lead.NextActionAt,
			OriginalStageID:     lead.StageID,
			SnappedAt:           now,
		}
		if err := pc.DB.Create(&snapshot).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to snapshot lead schedule", err)
		}
		if err := pc.DB.Model(lead).Update("next_action_at", nil).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to suspend lead schedule", err)
		}
		snapped++
	}

	var events []models.PromotionEvent
	for _, t := range targeted {
		for i, tp := range touchpoints {
			events = append(events, models.PromotionEvent{
				PromotionID:  promotion.ID,
				LeadID:       t.ID,
				TouchpointID: tp.ID,
				ScheduledFor: touchpointDates[i],
				Template:     tp.Template,
			})
		}
	}
	if len(events) > 0 {
		if err := pc.DB.CreateInBatches(&events, 200).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create promotion events", err)
		}
	}

	utils.LogEvent("promotion_created", map[string]interface{}{
		"user_id":      user.ID,
		"promotion_id": promotion.ID,
		"leads":        len(targeted),
		"touchpoints":  len(touchpoints),
		"snapped":      snapped,
	})
	pc.Logger.Printf("Created promotion %d: %d leads, %d touchpoints, %d snapped", promotion.ID, len(targeted), len(touchpoints), snapped)

	promotion.Touchpoints = touchpoints
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(fiber.Map{
		"promotion":     promotion,
		"targeted":      len(targeted),
		"events":        len(events),
		"snapped_leads": snapped,
	}))
}

// GetPromotions lists the user's promotions with their touchpoints
func (pc *PromotionController) GetPromotions(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var promotions []models.Promotion
	if err := pc.DB.Where("user_id = ?", user.ID).
		Preload("Touchpoints").
		Order("end_date desc").
		Find(&promotions).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch promotions", err)
	}

	return c.JSON(utils.SuccessResponse(promotions))
}

// GetPromotion returns one promotion with touchpoints and events
func (pc *PromotionController) GetPromotion(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var promotion models.Promotion
	if err := pc.DB.Where("id = ? AND user_id = ?", c.Params("id"), user.ID).
		Preload("Touchpoints").
		Preload("Events", func(db *gorm.DB) *gorm.DB {
			return db.Order("scheduled_for asc")
		}).
		First(&promotion).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Promotion not found", nil)
	}

	return c.JSON(utils.SuccessResponse(promotion))
}

// CompletePromotionEvent marks a single promotion event as handled
func (pc *PromotionController) CompletePromotionEvent(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var promotion models.Promotion
	if err := pc.DB.Where("id = ? AND user_id = ?", c.Params("id"), user.ID).First(&promotion).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Promotion not found", nil)
	}

	var event models.PromotionEvent
	if err := pc.DB.Where("id = ? AND promotion_id = ?", c.Params("eventId"), promotion.ID).First(&event).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Promotion event not found", nil)
	}

	event.Completed = true
	if err := pc.DB.Save(&event).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to complete event", err)
	}

	return c.JSON(utils.SuccessResponse(event))
}

// CancelPromotion marks a promotion canceled and archives its pending events
func (pc *PromotionController) CancelPromotion(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var promotion models.Promotion
	if err := pc.DB.Where("id = ? AND user_id = ?", c.Params("id"), user.ID).First(&promotion).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Promotion not found", nil)
	}

	promotion.Status = "canceled"
	if err := pc.DB.Save(&promotion).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to cancel promotion", err)
	}
	if err := pc.DB.Model(&models.PromotionEvent{}).
		Where("promotion_id = ? AND completed = ?", promotion.ID, false).
		Update("archived", true).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to archive promotion events", err)
	}

	pc.Logger.Printf("Canceled promotion %d for user %d", promotion.ID, user.ID)
	return c.JSON(utils.SuccessResponse(promotion))
}
