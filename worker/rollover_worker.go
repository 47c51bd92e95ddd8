package worker

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"leadpulse/models"
	"leadpulse/pipeline"
	"leadpulse/utils"
)

// The nightly rollover fires at the very end of the user's local day.
const (
	rolloverCutoffHour   = 23
	rolloverCutoffMinute = 59
)

// dueForRollover reports whether the nightly rollover should run: the local
// clock has reached the cutoff and today's day key has not been processed.
func dueForRollover(lastRunDayKey string, now time.Time) bool {
	if lastRunDayKey == pipeline.DayKey(now) {
		return false
	}
	cutoff := pipeline.AtClock(now, rolloverCutoffHour, rolloverCutoffMinute)
	return !now.Before(cutoff)
}

// RunRolloverIfDue performs the nightly rollover for one user if their local
// clock has reached the cutoff and the job has not already run for today's
// day key. Open, unarchived leads still due today or earlier are pushed to
// tomorrow's day-start slot. The state row is written only after every lead
// reschedule succeeded, so a partial failure re-runs rather than skips.
//
// Returns true when at least one lead was rescheduled.
func RunRolloverIfDue(db *gorm.DB, logger *log.Logger, user *models.User, now time.Time) (bool, error) {
	key := pipeline.DayKey(now)

	var state models.RolloverState
	err := db.Where("user_id = ?", user.ID).First(&state).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return false, err
	}
	if !dueForRollover(state.LastRunDayKey, now) {
		return false, nil
	}
	cutoff := pipeline.AtClock(now, rolloverCutoffHour, rolloverCutoffMinute)

	settings, err := models.LoadPipelineSettings(db, user.ID)
	if err != nil {
		return false, err
	}

	var leads []models.Lead
	if err := db.Where("user_id = ? AND status = ? AND archived = ?", user.ID, "open", false).
		Where("next_action_at IS NOT NULL AND next_action_at <= ?", cutoff).
		Find(&leads).Error; err != nil {
		return false, err
	}

	rescheduled := 0
	for i := range leads {
		nextAt := pipeline.ComputeNextActionAt(now, 1, settings.DayStartTime)
		if err := db.Model(&leads[i]).Update("next_action_at", nextAt).Error; err != nil {
			return rescheduled > 0, err
		}
		rescheduled++
	}

	state.UserID = user.ID
	state.LastRunDayKey = key
	state.LastRunAt = &now
	state.Timezone = now.Location().String()
	if err := db.Save(&state).Error; err != nil {
		return rescheduled > 0, err
	}

	if rescheduled > 0 {
		logger.Printf("Rollover %s for user %d: rescheduled %d leads", key, user.ID, rescheduled)
		utils.LogEvent("rollover_completed", map[string]interface{}{
			"user_id":     user.ID,
			"day_key":     key,
			"rescheduled": rescheduled,
		})
	}
	return rescheduled > 0, nil
}

// RolloverWorker sweeps all active users and runs their nightly rollover
// when their local cutoff passes. The per-user day-key guard makes the
// frequent polling harmless.
type RolloverWorker struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewRolloverWorker(db *gorm.DB, logger *log.Logger) *RolloverWorker {
	return &RolloverWorker{
		DB:     db,
		Logger: logger,
	}
}

func (rw *RolloverWorker) Start(ctx context.Context) {
	// Initial delay to let the server start up
	time.Sleep(10 * time.Second)

	rw.Logger.Println("Rollover worker started")

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			rw.Logger.Println("Rollover worker shutting down...")
			return
		case <-ticker.C:
			rw.sweep()
		}
	}
}

func (rw *RolloverWorker) sweep() {
	var users []models.User
	if err := rw.DB.Where("is_active = ?", true).Find(&users).Error; err != nil {
		rw.Logger.Printf("Error fetching users for rollover: %v", err)
		return
	}

	for i := range users {
		loc := userLocation(&users[i])
		now := time.Now().In(loc)
		if _, err := RunRolloverIfDue(rw.DB, rw.Logger, &users[i], now); err != nil {
			rw.Logger.Printf("Error running rollover for user %d: %v", users[i].ID, err)
			utils.LogError("rollover_failed", err, map[string]interface{}{"user_id": users[i].ID})
		}
	}
}

// userLocation resolves a user's timezone, falling back to UTC.
func userLocation(user *models.User) *time.Location {
	if user.Timezone != "" {
		if loc, err := time.LoadLocation(user.Timezone); err == nil {
			return loc
		}
	}
	return time.UTC
}
