package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/certcast/core/internal/database/models"
	"github.com/certcast/core/internal/generate"
	"github.com/certcast/core/internal/publish"
	"github.com/certcast/core/internal/social"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrPostNotFound indicates the post draft was not found.
	ErrPostNotFound = errors.New("post not found")
	// ErrCertificateNotFound indicates the certificate was not found.
	ErrCertificateNotFound = errors.New("certificate not found")
	// ErrAlreadyPublished indicates the draft has already been published.
	ErrAlreadyPublished = errors.New("post already published")
)

// PostService generates post drafts from certificates and publishes the
// approved ones.
type PostService struct {
	db         *gorm.DB
	settings   *SettingsService
	publisher  *publish.Publisher
	logService *LogService
}

// NewPostService creates a new PostService instance
func NewPostService(db *gorm.DB, settings *SettingsService, publisher *publish.Publisher, logService *LogService) *PostService {
	return &PostService{
		db:         db,
		settings:   settings,
		publisher:  publisher,
		logService: logService,
	}
}

// GenerateRequest describes a draft generation for one certificate.
type GenerateRequest struct {
	CertificateID   string          `json:"certificate_id"`
	Platform        social.Platform `json:"platform"`
	Tone            generate.Tone   `json:"tone"`
	IncludeHashtags bool            `json:"include_hashtags"`
	CustomMessage   string          `json:"custom_message"`
	Variations      int             `json:"variations"`
}

// Generate produces draft posts for a certificate. Variations greater than
// one fan out into independent generation calls; the overall call fails only
// when every variation fails.
func (s *PostService) Generate(req GenerateRequest) ([]models.GeneratedPost, error) {
	if !req.Platform.IsValid() {
		return nil, publish.ErrUnsupportedPlatform
	}

	var cert models.Certificate
	if err := s.db.Where("id = ?", req.CertificateID).First(&cert).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCertificateNotFound
		}
		return nil, err
	}

	settings, err := s.settings.Get()
	if err != nil {
		return nil, err
	}

	client := generate.NewClient()
	client.ConfigureWithBaseURL(settings.AIAPIKey, settings.AIModel, settings.AIBaseURL)

	tone := req.Tone
	if tone == "" {
		tone = generate.Tone(settings.DefaultTone)
	}

	genReq := generate.Request{
		CertificateContent: flattenCertificate(&cert),
		Platform:           req.Platform,
		Tone:               tone,
		IncludeHashtags:    req.IncludeHashtags,
		CustomMessage:      req.CustomMessage,
	}

	n := req.Variations
	if n < 1 {
		n = 1
	}
	generated, err := client.GenerateVariations(genReq, n)
	if err != nil {
		s.logService.LogError(models.LogModuleGenerate, "generate_failed", err.Error(), nil)
		return nil, err
	}

	drafts := make([]models.GeneratedPost, 0, len(generated))
	for _, post := range generated {
		draft := models.GeneratedPost{
			ID:             uuid.NewString(),
			CertificateID:  cert.ID,
			Platform:       string(post.Platform),
			Content:        post.Content,
			CharacterCount: post.CharacterCount,
			Status:         models.PostStatusDraft,
		}
		draft.SetHashtags(post.Hashtags)
		if err := s.db.Create(&draft).Error; err != nil {
			return nil, err
		}
		drafts = append(drafts, draft)
	}

	s.logService.LogInfo(models.LogModuleGenerate, "generate", fmt.Sprintf("Generated %d draft(s)", len(drafts)), nil)
	return drafts, nil
}

// flattenCertificate renders certificate fields as the text block embedded
// in the generation prompt.
func flattenCertificate(cert *models.Certificate) string {
	var b strings.Builder
	b.WriteString("Certificate: " + cert.Title)
	if cert.Issuer != "" {
		b.WriteString("\nIssuer: " + cert.Issuer)
	}
	if cert.Date != "" {
		b.WriteString("\nDate: " + cert.Date)
	}
	if cert.Description != "" {
		b.WriteString("\nDescription: " + cert.Description)
	}
	if skills := cert.SkillList(); len(skills) > 0 {
		b.WriteString("\nSkills: " + strings.Join(skills, ", "))
	}
	return b.String()
}

// Publish posts an approved draft to its platform and records the outcome.
func (s *PostService) Publish(ctx context.Context, postID string) (*publish.Result, error) {
	var draft models.GeneratedPost
	if err := s.db.Where("id = ?", postID).First(&draft).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if draft.Status == models.PostStatusPublished {
		return nil, ErrAlreadyPublished
	}

	post := &generate.GeneratedPost{
		Content:        draft.Content,
		Hashtags:       draft.HashtagList(),
		Platform:       social.Platform(draft.Platform),
		CharacterCount: draft.CharacterCount,
	}

	result, err := s.publisher.PostToSocial(ctx, post.Platform, post)
	if err != nil {
		draft.Status = models.PostStatusFailed
		draft.PublishError = err.Error()
		if saveErr := s.db.Save(&draft).Error; saveErr != nil {
			return nil, saveErr
		}
		s.logService.LogError(models.LogModulePublish, "publish_failed", err.Error(), nil)
		return nil, err
	}

	draft.Status = models.PostStatusPublished
	draft.PublishedID = result.PostID
	draft.PublishedURL = result.URL
	draft.PublishError = ""
	if err := s.db.Save(&draft).Error; err != nil {
		return nil, err
	}

	s.logService.LogInfo(models.LogModulePublish, "publish", "Post published", result)
	return result, nil
}

// ListPosts returns stored drafts and published posts, newest first.
func (s *PostService) ListPosts() ([]models.GeneratedPost, error) {
	var posts []models.GeneratedPost
	err := s.db.Order("created_at DESC").Find(&posts).Error
	return posts, err
}
