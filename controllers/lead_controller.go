package controller

import (
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/badoux/checkmail"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"leadpulse/models"
	"leadpulse/pipeline"
	"leadpulse/utils"
)

type LeadController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewLeadController(db *gorm.DB, logger *log.Logger) *LeadController {
	return &LeadController{
		DB:     db,
		Logger: logger,
	}
}

// leadSnapshot flattens a persisted lead into the pure engine's view.
func leadSnapshot(l models.Lead) pipeline.LeadSnapshot {
	return pipeline.LeadSnapshot{
		ID:           l.ID,
		Name:         l.Name,
		Product:      l.Product,
		State:        l.State,
		StageID:      l.StageID,
		Archived:     l.Archived,
		Deleted:      l.DeletedAt.Valid,
		NextActionAt: l.NextActionAt,
	}
}

// CreateLead creates a new lead and auto-schedules its first follow-up
func (lc *LeadController) CreateLead(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Name      string `json:"name" validate:"required,max=200"`
		Product   string `json:"product" validate:"omitempty,max=200"`
		Email     string `json:"email" validate:"omitempty"`
		Phone     string `json:"phone" validate:"omitempty,max=50"`
		Notes     string `json:"notes"`
		StageID   string `json:"stage_id"`
		ContactID *uint  `json:"contact_id"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	if input.Email != "" {
		if err := checkmail.ValidateFormat(input.Email); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid email address", err)
		}
	}

	settings, err := models.LoadPipelineSettings(lc.DB, user.ID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load pipeline settings", err)
	}

	stageID := input.StageID
	if settings.StageByID(stageID) == nil {
		stageID = settings.Stages[0].ID
	}

	source := "pipeline"
	if input.ContactID != nil {
		var contact models.Contact
		if err := lc.DB.Where("id = ? AND user_id = ?", *input.ContactID, user.ID).First(&contact).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Contact not found", nil)
		}
		source = "contact"
	}

	now := time.Now().In(Location(user))
	lead := models.Lead{
		UserID:       user.ID,
		ContactID:    input.ContactID,
		Name:         input.Name,
		Product:      input.Product,
		Email:        strings.ToLower(input.Email),
		Phone:        input.Phone,
		Notes:        input.Notes,
		StageID:      stageID,
		StageStatus:  "pending",
		Status:       "open",
		State:        string(pipeline.StateOpen),
		Source:       source,
		NextActionAt: pipeline.ComputeInitialNextActionAt(settings, stageID, now),
	}

	if err := lc.DB.Create(&lead).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create lead", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(lead))
}

// GetLeads returns paginated leads; ?due=true narrows to open leads due at
// or before now, soonest first.
func (lc *LeadController) GetLeads(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit > 100 {
		limit = 100
	}

	query := lc.DB.Model(&models.Lead{}).Where("user_id = ?", user.ID)

	if stageID := c.Query("stage_id"); stageID != "" {
		query = query.Where("stage_id = ?", stageID)
	}
	if state := c.Query("state"); state != "" {
		query = query.Where("state = ?", string(pipeline.NormalizeLeadState(state)))
	}
	if c.Query("archived") != "true" {
		query = query.Where("archived = ?", false)
	}

	if c.Query("due") == "true" {
		now := time.Now().In(Location(user))
		query = query.
			Where("status = ?", "open").
			Where("next_action_at IS NOT NULL AND next_action_at <= ?", now).
			Order("next_action_at asc")
	} else {
		query = query.Order("created_at desc")
	}

	var total int64
	query.Count(&total)

	var leads []models.Lead
	if err := query.Offset((page - 1) * limit).Limit(limit).Find(&leads).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch leads", err)
	}

	return c.JSON(utils.PaginatedResponse{
		Data:  leads,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// GetLead returns a single lead
func (lc *LeadController) GetLead(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var lead models.Lead
	if err := lc.DB.Where("id = ? AND user_id = ?", c.Params("id"), user.ID).First(&lead).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
	}

	return c.JSON(utils.SuccessResponse(lead))
}

// UpdateLead updates the editable lead fields
func (lc *LeadController) UpdateLead(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var lead models.Lead
	if err := lc.DB.Where("id = ? AND user_id = ?", c.Params("id"), user.ID).First(&lead).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
	}

	var input struct {
		Name     *string `json:"name" validate:"omitempty,max=200"`
		Product  *string `json:"product" validate:"omitempty,max=200"`
		Email    *string `json:"email"`
		Phone    *string `json:"phone" validate:"omitempty,max=50"`
		Notes    *string `json:"notes"`
		State    *string `json:"state"`
		Archived *bool   `json:"archived"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if input.Name != nil {
		lead.Name = *input.Name
	}
	if input.Product != nil {
		lead.Product = *input.Product
	}
	if input.Email != nil {
		if *input.Email != "" {
			if err := checkmail.ValidateFormat(*input.Email); err != nil {
				return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid email address", err)
			}
		}
		lead.Email = strings.ToLower(*input.Email)
	}
	if input.Phone != nil {
		lead.Phone = *input.Phone
	}
	if input.Notes != nil {
		lead.Notes = *input.Notes
	}
	if input.State != nil {
		lead.State = string(pipeline.NormalizeLeadState(*input.State))
	}
	if input.Archived != nil {
		lead.Archived = *input.Archived
	}

	if err := lc.DB.Save(&lead).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update lead", err)
	}

	return c.JSON(utils.SuccessResponse(lead))
}

// DeleteLead soft-deletes a lead
func (lc *LeadController) DeleteLead(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	result := lc.DB.Where("id = ? AND user_id = ?", c.Params("id"), user.ID).Delete(&models.Lead{})
	if result.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete lead", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{"message": "Lead deleted"}))
}

// CompleteLeadStage marks the lead's current stage done and advances it.
// At the last stage the pipeline completes: the lead is closed, archived,
// unscheduled, and a still-open state becomes drop_out for pipeline-native
// leads (end of pipeline without an explicit won/lost close).
func (lc *LeadController) CompleteLeadStage(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var lead models.Lead
	if err := lc.DB.Where("id = ? AND user_id = ?", c.Params("id"), user.ID).First(&lead).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
	}

	settings, err := models.LoadPipelineSettings(lc.DB, user.ID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load pipeline settings", err)
	}

	now := time.Now().In(Location(user))

	if next := pipeline.NextStage(settings, lead.StageID); next != nil {
		delta := pipeline.ComputeOffsetDeltaDays(settings, lead.StageID, next.ID)
		nextAt := pipeline.ComputeNextActionAt(now, delta, settings.DayStartTime)

		lead.StageID = next.ID
		lead.StageStatus = "pending"
		lead.Status = "open"
		lead.Archived = false
		lead.NextActionAt = &nextAt
		lead.LastActionAt = &now
	} else {
		lead.Status = "closed"
		lead.Archived = true
		lead.NextActionAt = nil
		lead.LastActionAt = &now

		if lead.Source == "pipeline" {
			lead.StageStatus = "completed"
			if pipeline.NormalizeLeadState(lead.State) == pipeline.StateOpen {
				lead.State = string(pipeline.StateDropOut)
			}
		}
	}

	if err := lc.DB.Save(&lead).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to advance lead", err)
	}

	utils.LogEvent("lead_stage_completed", map[string]interface{}{
		"user_id":  user.ID,
		"lead_id":  lead.ID,
		"stage_id": lead.StageID,
		"status":   lead.Status,
	})

	return c.JSON(utils.SuccessResponse(lead))
}

// PushLead reschedules a lead's next action from one of the push presets.
// An out-of-range preset index fails soft: the lead comes back unchanged.
func (lc *LeadController) PushLead(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var lead models.Lead
	if err := lc.DB.Where("id = ? AND user_id = ?", c.Params("id"), user.ID).First(&lead).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
	}

	var input struct {
		PresetIndex int `json:"preset_index"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	settings, err := models.LoadPipelineSettings(lc.DB, user.ID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load pipeline settings", err)
	}

	if input.PresetIndex < 0 || input.PresetIndex >= len(settings.PushPresets) {
		// Unknown preset reference: no-op rather than an error.
		return c.JSON(utils.SuccessResponse(lead))
	}

	now := time.Now().In(Location(user))
	pushedAt := pipeline.ComputePushedAt(now, settings.PushPresets[input.PresetIndex])

	lead.NextActionAt = &pushedAt
	lead.LastActionAt = &now
	if err := lc.DB.Save(&lead).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to push lead", err)
	}

	return c.JSON(utils.SuccessResponse(lead))
}

// PreviewLeadEmail renders the follow-up email for the lead's current
// stage without sending anything.
func (lc *LeadController) PreviewLeadEmail(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var lead models.Lead
	if err := lc.DB.Where("id = ? AND user_id = ?", c.Params("id"), user.ID).First(&lead).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
	}

	settings, err := models.LoadPipelineSettings(lc.DB, user.ID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load pipeline settings", err)
	}

	stage := settings.StageByID(lead.StageID)
	if stage == nil || len(stage.Templates) == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "No template for the lead's stage", nil)
	}

	tpl := stage.Templates[0]
	if wanted := c.Query("template"); wanted != "" {
		for _, t := range stage.Templates {
			if t.ID == wanted {
				tpl = t
				break
			}
		}
	}

	subject, body, err := utils.RenderFollowUpEmail(tpl.SubjectText, tpl.IntroText, tpl.BodyText, tpl.OutroText, tpl.PopulateName, lead.Name)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to render email", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"subject": subject,
		"body":    body,
		"to":      lead.Email,
	}))
}
