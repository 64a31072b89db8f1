package models

import (
	"encoding/json"
	"time"
)

// PostStatus is the lifecycle state of a stored post draft.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
	PostStatusFailed    PostStatus = "failed"
)

// GeneratedPost is a persisted post draft and its publish outcome.
type GeneratedPost struct {
	ID             string     `gorm:"primaryKey;size:36" json:"id"`
	CertificateID  string     `gorm:"index;size:36" json:"certificate_id"`
	Platform       string     `gorm:"size:50;index" json:"platform"`
	Content        string     `gorm:"type:text" json:"content"`
	Hashtags       string     `gorm:"type:text" json:"-"` // JSON array stored as string
	CharacterCount int        `json:"character_count"`
	Status         PostStatus `gorm:"size:20;default:'draft';index" json:"status"`
	PublishedID    string     `gorm:"size:255" json:"published_id,omitempty"`
	PublishedURL   string     `gorm:"size:500" json:"published_url,omitempty"`
	PublishError   string     `gorm:"type:text" json:"publish_error,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// HashtagList decodes the stored hashtags.
func (p *GeneratedPost) HashtagList() []string {
	if p.Hashtags == "" {
		return nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(p.Hashtags), &tags); err != nil {
		return nil
	}
	return tags
}

// SetHashtags encodes the hashtags for storage.
func (p *GeneratedPost) SetHashtags(tags []string) {
	if len(tags) == 0 {
		p.Hashtags = "[]"
		return
	}
	data, err := json.Marshal(tags)
	if err != nil {
		p.Hashtags = "[]"
		return
	}
	p.Hashtags = string(data)
}
