package models

// Settings is the single-row application configuration supplied by the user
// through the extension UI. The pipeline only reads it.
type Settings struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Generation provider
	AIAPIKey  string `gorm:"size:500" json:"ai_api_key"`
	AIModel   string `gorm:"size:100" json:"ai_model"`
	AIBaseURL string `gorm:"size:500" json:"ai_base_url"`

	// OAuth client credentials per provider
	GoogleClientID     string `gorm:"size:500" json:"google_client_id"`
	GoogleClientSecret string `gorm:"size:500" json:"google_client_secret"`
	GoogleRedirectURL  string `gorm:"size:500" json:"google_redirect_url"`

	MicroblogClientID    string `gorm:"size:500" json:"microblog_client_id"`
	MicroblogRedirectURL string `gorm:"size:500" json:"microblog_redirect_url"`
	MicroblogUsername    string `gorm:"size:100" json:"microblog_username"`

	NetworkClientID     string `gorm:"size:500" json:"network_client_id"`
	NetworkClientSecret string `gorm:"size:500" json:"network_client_secret"`
	NetworkRedirectURL  string `gorm:"size:500" json:"network_redirect_url"`

	// Posting defaults
	DefaultTone      string `gorm:"size:20;default:'professional'" json:"default_tone"`
	DefaultPlatforms string `gorm:"size:100;default:'professional-network'" json:"default_platforms"`
	IncludeHashtags  bool   `gorm:"default:true" json:"include_hashtags"`

	// Scanning
	AutoScan            bool `gorm:"default:false" json:"auto_scan"`
	ScanIntervalMinutes int  `gorm:"default:60" json:"scan_interval_minutes"`
	NotifyOnNew         bool `gorm:"default:true" json:"notify_on_new"`
}
