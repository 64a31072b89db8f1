package models

import (
	"encoding/json"
	"time"
)

// Certificate is the persisted record derived from one qualifying email.
// EmailID, not ID, is the de-duplication key: rescanning the same message
// overwrites the existing row.
type Certificate struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	EmailID     string    `gorm:"uniqueIndex;size:255;not null" json:"email_id"`
	Title       string    `gorm:"size:500" json:"title"`
	Issuer      string    `gorm:"size:255" json:"issuer"`
	Date        string    `gorm:"size:100" json:"date"`
	Description string    `gorm:"type:text" json:"description"`
	Skills      string    `gorm:"type:text" json:"-"` // JSON array stored as string
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SkillList decodes the stored skill tags.
func (c *Certificate) SkillList() []string {
	if c.Skills == "" {
		return nil
	}
	var skills []string
	if err := json.Unmarshal([]byte(c.Skills), &skills); err != nil {
		return nil
	}
	return skills
}

// SetSkills encodes the skill tags for storage.
func (c *Certificate) SetSkills(skills []string) {
	if len(skills) == 0 {
		c.Skills = "[]"
		return
	}
	data, err := json.Marshal(skills)
	if err != nil {
		c.Skills = "[]"
		return
	}
	c.Skills = string(data)
}
