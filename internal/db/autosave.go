package db

import "time"

// AutosaveDraft is an expiring key/value entry holding an unsaved authoring draft.
type AutosaveDraft struct {
	Key     string    `gorm:"primaryKey;size:100"`
	Payload string    `gorm:"type:text"`
	SavedAt time.Time `gorm:"index"`
}

// TableName keeps the table name explicit.
func (AutosaveDraft) TableName() string {
	return "autosave_drafts"
}
