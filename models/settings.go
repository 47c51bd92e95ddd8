package models

import (
	"errors"

	"gorm.io/gorm"

	"leadpulse/pipeline"
)

// PipelineSettingsDoc stores the per-user pipeline configuration as one raw
// JSON document. The blob is normalized through pipeline.NormalizeSettings
// on every read, so legacy shapes from old clients stay readable; saves are
// whole-document read-modify-write.
type PipelineSettingsDoc struct {
	gorm.Model
	UserID   uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	Document []byte `gorm:"type:jsonb" json:"document"`
}

// LoadPipelineSettings reads and normalizes the user's settings document,
// lazily creating it with the hard-coded defaults on first read.
func LoadPipelineSettings(db *gorm.DB, userID uint) (pipeline.Settings, error) {
	var doc PipelineSettingsDoc
	err := db.Where("user_id = ?", userID).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings := pipeline.DefaultSettings()
		raw, merr := settings.Marshal()
		if merr != nil {
			return settings, merr
		}
		doc = PipelineSettingsDoc{UserID: userID, Document: raw}
		if cerr := db.Create(&doc).Error; cerr != nil {
			return settings, cerr
		}
		return settings, nil
	}
	if err != nil {
		// Persistence failed, but callers still get a usable pipeline.
		return pipeline.DefaultSettings(), err
	}
	return pipeline.NormalizeSettings(doc.Document), nil
}

// SavePipelineSettings writes the whole settings document back. Last write
// wins; there is no optimistic-concurrency token on the document.
func SavePipelineSettings(db *gorm.DB, userID uint, settings pipeline.Settings) error {
	raw, err := settings.Marshal()
	if err != nil {
		return err
	}

	var doc PipelineSettingsDoc
	err = db.Where("user_id = ?", userID).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(&PipelineSettingsDoc{UserID: userID, Document: raw}).Error
	}
	if err != nil {
		return err
	}

	doc.Document = raw
	return db.Save(&doc).Error
}
