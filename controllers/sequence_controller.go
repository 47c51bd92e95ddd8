package controller

import (
	"fmt"
	"log"
	"time"

	"github.com/badoux/checkmail"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"leadpulse/models"
	"leadpulse/pipeline"
	"leadpulse/utils"
)

type SequenceController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewSequenceController(db *gorm.DB, logger *log.Logger) *SequenceController {
	return &SequenceController{
		DB:     db,
		Logger: logger,
	}
}

// sequenceEventKey is the deterministic key under which a step's calendar
// event is merged. Re-creating the same step updates the event in place.
func sequenceEventKey(sequenceID, stepID uint) string {
	return fmt.Sprintf("sequence_%d_step_%d", sequenceID, stepID)
}

// CreateSequence creates an outreach sequence and materializes every step's
// date up front. Delays cascade from the previous step, and the first step
// always fires on the start date.
func (sc *SequenceController) CreateSequence(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Name      string `json:"name" validate:"required,max=200"`
		StartDate string `json:"start_date" validate:"required"`
		Steps     []struct {
			Order     int    `json:"order"`
			DelayDays int    `json:"delay_days"`
			ToEmail   string `json:"to_email" validate:"required"`
			Template  string `json:"template"`
		} `json:"steps" validate:"required,min=1,dive"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	loc := Location(user)
	startDate, err := utils.ParseDate(input.StartDate, loc)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid start_date", err)
	}

	specs := make([]pipeline.StepSpec, len(input.Steps))
	for i, s := range input.Steps {
		if err := checkmail.ValidateFormat(s.ToEmail); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, fmt.Sprintf("Invalid to_email on step %d", i+1), err)
		}
		specs[i] = pipeline.StepSpec{
			Order:     s.Order,
			DelayDays: s.DelayDays,
			ToEmail:   s.ToEmail,
			Template:  s.Template,
		}
	}

	specs = pipeline.NormalizeSteps(specs)
	dates := pipeline.StepDates(startDate, specs)

	sequence := models.Sequence{
		UserID:    user.ID,
		Name:      input.Name,
		StartDate: startDate,
		Status:    "active",
	}
	if err := sc.DB.Create(&sequence).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create sequence", err)
	}

	steps := make([]models.SequenceStep, len(specs))
	for i, spec := range specs {
		steps[i] = models.SequenceStep{
			SequenceID:   sequence.ID,
			StepNumber:   i + 1,
			DelayDays:    spec.DelayDays,
			ToEmail:      spec.ToEmail,
			Template:     spec.Template,
			ScheduledFor: dates[i],
			Status:       pipeline.StepStatusOpen,
		}
	}
	if err := sc.DB.Create(&steps).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create sequence steps", err)
	}

	// Mirror each step onto the calendar under its deterministic key.
	for i := range steps {
		if err := sc.upsertStepEvent(user.ID, &sequence, &steps[i]); err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to schedule sequence events", err)
		}
	}

	utils.LogEvent("sequence_created", map[string]interface{}{
		"user_id":     user.ID,
		"sequence_id": sequence.ID,
		"steps":       len(steps),
	})
	sc.Logger.Printf("Created sequence %d with %d steps for user %d", sequence.ID, len(steps), user.ID)

	sequence.Steps = steps
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(sequence))
}

// upsertStepEvent merges the step's calendar event by its deterministic
// key: insert on first sight, update the schedule fields on repeats.
func (sc *SequenceController) upsertStepEvent(userID uint, sequence *models.Sequence, step *models.SequenceStep) error {
	key := sequenceEventKey(sequence.ID, step.ID)

	var event models.ScheduledEvent
	err := sc.DB.Where("event_key = ?", key).First(&event).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return err
	}
	if err == gorm.ErrRecordNotFound {
		event = models.ScheduledEvent{
			UserID:   userID,
			EventKey: key,
			Kind:     "sequence_step",
			RefID:    step.ID,
		}
	}

	event.Title = fmt.Sprintf("%s: step %d", sequence.Name, step.StepNumber)
	event.ToEmail = step.ToEmail
	event.Template = step.Template
	event.ScheduledFor = step.ScheduledFor
	event.Completed = step.Status != pipeline.StepStatusOpen

	return sc.DB.Save(&event).Error
}

// GetSequences lists the user's sequences with their steps
func (sc *SequenceController) GetSequences(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var sequences []models.Sequence
	if err := sc.DB.Where("user_id = ?", user.ID).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("step_number asc")
		}).
		Order("start_date desc").
		Find(&sequences).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch sequences", err)
	}

	return c.JSON(utils.SuccessResponse(sequences))
}

// GetSequence returns one sequence with its steps
func (sc *SequenceController) GetSequence(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var sequence models.Sequence
	if err := sc.DB.Where("id = ? AND user_id = ?", c.Params("id"), user.ID).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("step_number asc")
		}).
		First(&sequence).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Sequence not found", nil)
	}

	return c.JSON(utils.SuccessResponse(sequence))
}

// UpdateSequenceStepStatus sets a step to open, completed, or skipped. The
// matching calendar event's completion flag is dual-written.
func (sc *SequenceController) UpdateSequenceStepStatus(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Status string `json:"status" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if !pipeline.ValidStepStatus(input.Status) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Status must be open, completed, or skipped", nil)
	}

	var sequence models.Sequence
	if err := sc.DB.Where("id = ? AND user_id = ?", c.Params("id"), user.ID).First(&sequence).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Sequence not found", nil)
	}

	var step models.SequenceStep
	if err := sc.DB.Where("id = ? AND sequence_id = ?", c.Params("stepId"), sequence.ID).First(&step).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Sequence step not found", nil)
	}

	now := time.Now().In(Location(user))
	step.Status = input.Status
	step.CompletedAt = nil
	step.SkippedAt = nil
	switch input.Status {
	case pipeline.StepStatusCompleted:
		step.CompletedAt = &now
	case pipeline.StepStatusSkipped:
		step.SkippedAt = &now
	}

	if err := sc.DB.Save(&step).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update step", err)
	}
	if err := sc.upsertStepEvent(user.ID, &sequence, &step); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to sync step event", err)
	}

	return c.JSON(utils.SuccessResponse(step))
}
