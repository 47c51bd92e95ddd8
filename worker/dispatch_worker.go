package worker

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"leadpulse/models"
	"leadpulse/utils"
)

// DispatchWorker delivers due outreach: scheduled sequence events and
// promotion events whose time has come and that have not been sent yet.
// Sending stamps SentAt and the SMTP message id, which doubles as the
// delivery idempotence marker.
type DispatchWorker struct {
	DB     *gorm.DB
	Mailer *utils.FollowUpMailer
	Logger *log.Logger
}

func NewDispatchWorker(db *gorm.DB, mailer *utils.FollowUpMailer, logger *log.Logger) *DispatchWorker {
	return &DispatchWorker{
		DB:     db,
		Mailer: mailer,
		Logger: logger,
	}
}

func (dw *DispatchWorker) Start(ctx context.Context) {
	// Initial delay to let the server start up
	time.Sleep(10 * time.Second)

	dw.Logger.Println("Dispatch worker started")

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			dw.Logger.Println("Dispatch worker shutting down...")
			return
		case <-ticker.C:
			dw.dispatchSequenceEvents()
			dw.dispatchPromotionEvents()
		}
	}
}

func (dw *DispatchWorker) dispatchSequenceEvents() {
	var events []models.ScheduledEvent
	if err := dw.DB.Where("kind = ? AND completed = ? AND sent_at IS NULL", "sequence_step", false).
		Where("scheduled_for <= ?", time.Now()).
		Order("scheduled_for asc").
		Limit(50).
		Find(&events).Error; err != nil {
		dw.Logger.Printf("Error fetching due sequence events: %v", err)
		return
	}

	for i := range events {
		event := &events[i]
		if event.ToEmail == "" {
			continue
		}

		subject, body, err := utils.RenderFollowUpEmail(event.Title, "Hello", event.Template, "Best regards,", false, "")
		if err != nil {
			dw.Logger.Printf("Error rendering sequence event %d: %v", event.ID, err)
			continue
		}

		messageID, err := dw.Mailer.Send(utils.FollowUpEmail{
			To:      event.ToEmail,
			Subject: subject,
			Body:    body,
		})
		if err != nil {
			dw.Logger.Printf("Error sending sequence event %d: %v", event.ID, err)
			utils.LogError("sequence_send_failed", err, map[string]interface{}{"event_id": event.ID})
			continue
		}

		now := time.Now()
		if err := dw.DB.Model(event).Updates(map[string]interface{}{
			"sent_at":    now,
			"message_id": messageID,
		}).Error; err != nil {
			dw.Logger.Printf("Error stamping sequence event %d: %v", event.ID, err)
		}
	}
}

func (dw *DispatchWorker) dispatchPromotionEvents() {
	var events []models.PromotionEvent
	if err := dw.DB.Where("completed = ? AND archived = ? AND sent_at IS NULL", false, false).
		Where("scheduled_for <= ?", time.Now()).
		Order("scheduled_for asc").
		Limit(50).
		Find(&events).Error; err != nil {
		dw.Logger.Printf("Error fetching due promotion events: %v", err)
		return
	}

	for i := range events {
		event := &events[i]

		var lead models.Lead
		if err := dw.DB.First(&lead, event.LeadID).Error; err != nil || lead.Email == "" {
			continue
		}

		var promotion models.Promotion
		if err := dw.DB.First(&promotion, event.PromotionID).Error; err != nil || promotion.Status != "scheduled" {
			continue
		}

		subject, body, err := utils.RenderFollowUpEmail(promotion.Name, "Hello", event.Template, "Best regards,", true, lead.Name)
		if err != nil {
			dw.Logger.Printf("Error rendering promotion event %d: %v", event.ID, err)
			continue
		}

		messageID, err := dw.Mailer.Send(utils.FollowUpEmail{
			To:      lead.Email,
			Subject: subject,
			Body:    body,
		})
		if err != nil {
			dw.Logger.Printf("Error sending promotion event %d: %v", event.ID, err)
			utils.LogError("promotion_send_failed", err, map[string]interface{}{"event_id": event.ID})
			continue
		}

		now := time.Now()
		if err := dw.DB.Model(event).Updates(map[string]interface{}{
			"sent_at":    now,
			"message_id": messageID,
		}).Error; err != nil {
			dw.Logger.Printf("Error stamping promotion event %d: %v", event.ID, err)
		}
	}
}
