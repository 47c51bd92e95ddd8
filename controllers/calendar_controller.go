package controller

import (
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"leadpulse/models"
	"leadpulse/pipeline"
	"leadpulse/utils"
)

type CalendarController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewCalendarController(db *gorm.DB, logger *log.Logger) *CalendarController {
	return &CalendarController{
		DB:     db,
		Logger: logger,
	}
}

// CalendarItem is one entry on the unified calendar feed.
type CalendarItem struct {
	Kind        string    `json:"kind"` // lead_followup, sequence_step, promotion_touchpoint, task
	RefID       uint      `json:"ref_id"`
	Title       string    `json:"title"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Completed   bool      `json:"completed"`
}

// GetCalendar merges due leads, scheduled sequence events, promotion events,
// and tasks into one feed, grouped by local day key. The range defaults to
// the coming two weeks.
func (cc *CalendarController) GetCalendar(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	loc := Location(user)

	now := time.Now().In(loc)
	from := pipeline.StartOfDay(now)
	to := pipeline.AddDays(from, 14)

	if s := c.Query("from"); s != "" {
		t, err := utils.ParseDate(s, loc)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid from date", err)
		}
		from = pipeline.StartOfDay(t.In(loc))
	}
	if s := c.Query("to"); s != "" {
		t, err := utils.ParseDate(s, loc)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid to date", err)
		}
		// Inclusive end day.
		to = pipeline.AddDays(pipeline.StartOfDay(t.In(loc)), 1)
	}
	if !to.After(from) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Calendar range is empty", nil)
	}

	var items []CalendarItem

	var leads []models.Lead
	if err := cc.DB.Where("user_id = ? AND archived = ? AND status = ?", user.ID, false, "open").
		Where("next_action_at >= ? AND next_action_at < ?", from, to).
		Find(&leads).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch leads", err)
	}
	for _, l := range leads {
		items = append(items, CalendarItem{
			Kind:        "lead_followup",
			RefID:       l.ID,
			Title:       fmt.Sprintf("Follow up: %s", l.Name),
			ScheduledAt: l.NextActionAt.In(loc),
		})
	}

	var events []models.ScheduledEvent
	if err := cc.DB.Where("user_id = ?", user.ID).
		Where("scheduled_for >= ? AND scheduled_for < ?", from, to).
		Find(&events).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch scheduled events", err)
	}
	for _, e := range events {
		items = append(items, CalendarItem{
			Kind:        e.Kind,
			RefID:       e.RefID,
			Title:       e.Title,
			ScheduledAt: e.ScheduledFor.In(loc),
			Completed:   e.Completed,
		})
	}

	var promoEvents []models.PromotionEvent
	if err := cc.DB.
		Joins("JOIN promotions ON promotions.id = promotion_events.promotion_id").
		Where("promotions.user_id = ? AND promotion_events.archived = ?", user.ID, false).
		Where("promotion_events.scheduled_for >= ? AND promotion_events.scheduled_for < ?", from, to).
		Find(&promoEvents).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch promotion events", err)
	}
	for _, e := range promoEvents {
		items = append(items, CalendarItem{
			Kind:        "promotion_touchpoint",
			RefID:       e.ID,
			Title:       fmt.Sprintf("Promotion touchpoint for lead %d", e.LeadID),
			ScheduledAt: e.ScheduledFor.In(loc),
			Completed:   e.Completed,
		})
	}

	var tasks []models.Task
	if err := cc.DB.Where("user_id = ? AND due_at >= ? AND due_at < ?", user.ID, from, to).
		Find(&tasks).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch tasks", err)
	}
	for _, t := range tasks {
		items = append(items, CalendarItem{
			Kind:        "task",
			RefID:       t.ID,
			Title:       t.Title,
			ScheduledAt: t.DueAt.In(loc),
			Completed:   t.Done,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].ScheduledAt.Before(items[j].ScheduledAt)
	})

	// Group by local day key; map iteration order does not matter because
	// clients index by the key.
	days := make(map[string][]CalendarItem)
	for _, item := range items {
		key := pipeline.DayKey(item.ScheduledAt)
		days[key] = append(days[key], item)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"from": pipeline.DayKey(from),
		"to":   pipeline.DayKey(pipeline.AddDays(to, -1)),
		"days": days,
	}))
}
