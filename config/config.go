package config

import (
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

// Date disambiguation strategies
const (
	StrategyReferenceAnchored = "reference_anchored"
	StrategyNaiveSmallestPair = "naive_smallest_pair"
)

// Nickname resolution modes
const (
	NicknameModeStrict = "strict"
	NicknameModeLoose  = "loose"
)

// Config represents the application configuration
type Config struct {
	Engine        EngineConfig    `yaml:"engine"`
	Vocabulary    Vocabulary      `yaml:"vocabulary"`
	GeoExclusions []string        `yaml:"geo_exclusions"`
	Schedule      ScheduleConfig  `yaml:"schedule"`
	Scraper       ScraperConfig   `yaml:"scraper"`
	Output        OutputConfig    `yaml:"output"`
	Notify        NotifyConfig    `yaml:"notify"`
	Sheets        SheetsConfig    `yaml:"sheets"`
	Nicknames     NicknamesConfig `yaml:"nicknames"`
	Log           LogConfig       `yaml:"log"`
}

// EngineConfig tunes the block parsing heuristics
type EngineConfig struct {
	Strategy               string `yaml:"strategy"`
	MinStayNights          int    `yaml:"min_stay_nights"`
	MaxStayNights          int    `yaml:"max_stay_nights"`
	DateScanLines          int    `yaml:"date_scan_lines"` // 0 scans every line
	SkipNoiseLines         bool   `yaml:"skip_noise_lines"`
	YearlessDates          bool   `yaml:"yearless_dates"`
	GuestNameScanLines     int    `yaml:"guest_name_scan_lines"`
	GuestNameFallbackLines int    `yaml:"guest_name_fallback_lines"`
	PropertyScanLines      int    `yaml:"property_scan_lines"` // 0 scans every line
	PropertyWindowStart    int    `yaml:"property_window_start"`
	PropertyWindowEnd      int    `yaml:"property_window_end"`
	NicknameMode           string `yaml:"nickname_mode"`
	NicknameFallbackLength int    `yaml:"nickname_fallback_length"`
}

// ScheduleConfig controls when the daily run happens
type ScheduleConfig struct {
	Cron     string `yaml:"cron"`
	Timezone string `yaml:"timezone"`
}

// ScraperConfig holds the hosting pages and block discovery settings
type ScraperConfig struct {
	HostingURL      string   `yaml:"hosting_url"`
	ReservationsURL string   `yaml:"reservations_url"`
	ListingsURL     string   `yaml:"listings_url"`
	MinBlockLength  int      `yaml:"min_block_length"`
	BlockSelectors  []string `yaml:"block_selectors"`
}

// OutputConfig controls message rendering and local files
type OutputConfig struct {
	Dir          string `yaml:"dir"`
	MessageStyle string `yaml:"message_style"`
	TemplatePath string `yaml:"template_path"`
	SaveDebug    bool   `yaml:"save_debug"`
}

// NotifyConfig lists the recipients of the cleaner message
type NotifyConfig struct {
	TelegramChatIDs []int64  `yaml:"telegram_chat_ids"`
	AllowedUserIDs  []int64  `yaml:"allowed_user_ids"`
	WhatsAppTo      []string `yaml:"whatsapp_to"`
	WhatsAppFrom    string   `yaml:"whatsapp_from"`
}

// SheetsConfig points at the spreadsheet receiving one sheet per run
type SheetsConfig struct {
	SpreadsheetURL  string `yaml:"spreadsheet_url"`
	CredentialsPath string `yaml:"credentials_path"`
}

// NicknamesConfig tells where nickname table exports live
type NicknamesConfig struct {
	Dir string `yaml:"dir"`
}

// LogConfig selects the logger flavour
type LogConfig struct {
	Env   string `yaml:"env"`
	Level string `yaml:"level"`
}

// LoadConfig loads configuration from a YAML file on top of the defaults
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := GetDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return cfg, nil
}

// GetDefaultConfig returns a default configuration using the reference-anchored engine
func GetDefaultConfig() *Config {
	cfg := &Config{}
	cfg.Engine = EngineConfig{
		Strategy:               StrategyReferenceAnchored,
		MinStayNights:          1,
		MaxStayNights:          30,
		DateScanLines:          15,
		SkipNoiseLines:         true,
		YearlessDates:          false,
		GuestNameScanLines:     4,
		GuestNameFallbackLines: 5,
		PropertyScanLines:      0,
		PropertyWindowStart:    5,
		PropertyWindowEnd:      15,
		NicknameMode:           NicknameModeStrict,
		NicknameFallbackLength: 20,
	}
	cfg.Vocabulary = DefaultVocabulary()
	cfg.GeoExclusions = []string{
		"seoul", "korea", "korean", "gangnam", "hongdae", "myeongdong",
		"itaewon", "dongdaemun", "insadong", "jung-gu", "yongsan",
		"south korea", "kr", "seoul station",
	}
	cfg.Schedule = ScheduleConfig{
		Cron:     "0 18 * * *",
		Timezone: "Asia/Makassar",
	}
	cfg.Scraper = ScraperConfig{
		HostingURL:      "https://www.airbnb.com/hosting",
		ReservationsURL: "https://www.airbnb.com/hosting/reservations",
		ListingsURL:     "https://www.airbnb.com/hosting/listings",
		MinBlockLength:  50,
		BlockSelectors: []string{
			"[data-testid*='reservation']",
			"[data-testid*='booking']",
			"[class*='reservation']",
			"[role='listitem']",
		},
	}
	cfg.Output = OutputConfig{
		Dir:          "output",
		MessageStyle: "indonesian",
		SaveDebug:    true,
	}
	cfg.Nicknames = NicknamesConfig{Dir: "."}
	cfg.Log = LogConfig{Env: "development", Level: "info"}
	return cfg
}

// UseNaiveStrategy switches the engine to the greedy smallest-pair variant and its looser scanning
func (c *Config) UseNaiveStrategy() {
	c.Engine.Strategy = StrategyNaiveSmallestPair
	c.Engine.DateScanLines = 0
	c.Engine.SkipNoiseLines = false
	c.Engine.YearlessDates = true
	c.Engine.GuestNameScanLines = 3
	c.Engine.NicknameMode = NicknameModeLoose
	c.Vocabulary.GuestCountUnits = []string{"adults?", "guests?", "people", "persons?", "pax"}
	c.Vocabulary.GuestNameExclusions = []string{
		"confirmed", "pending", "cancelled", "status", "check", "guest", "adult",
		"night", "total", "booking", "reservation", "review", "listing", "property",
		"apartment", "house", "room", "actions", "details", "contact", "message",
		"upcoming", "current", "past", "today", "tomorrow",
	}
	c.Vocabulary.GuestNameFallbackExclusions = []string{
		"status", "confirmed", "pending", "cancelled", "guest", "adult",
		"booking", "reservation", "check", "night", "total", "actions",
		"review", "listing", "property", "apartment", "house", "room",
	}
	c.Vocabulary.PropertyKeywords = []string{
		"apartment", "house", "room", "studio", "villa", "condo", "place", "home",
		"loft", "suite", "flat", "unit", "bedroom", "bed", "bath", "penthouse",
		"cottage", "cabin", "bungalow", "townhouse", "duplex",
		"downtown", "uptown", "center", "central", "near", "close", "beach", "ocean",
		"mountain", "city", "urban", "suburban", "quiet", "cozy", "modern", "luxury",
		"beautiful", "stunning", "amazing", "perfect", "spacious", "comfortable",
	}
	c.Vocabulary.PropertyStatusTokens = []string{
		"confirmed", "pending", "cancelled", "guest", "adult", "total", "actions",
	}
}

// Validate checks that the engine settings are usable
func (c *Config) Validate() error {
	switch c.Engine.Strategy {
	case StrategyReferenceAnchored, StrategyNaiveSmallestPair:
	default:
		return fmt.Errorf("unknown strategy %q", c.Engine.Strategy)
	}

	switch c.Engine.NicknameMode {
	case NicknameModeStrict, NicknameModeLoose:
	default:
		return fmt.Errorf("unknown nickname mode %q", c.Engine.NicknameMode)
	}

	if c.Engine.MinStayNights < 1 || c.Engine.MaxStayNights < c.Engine.MinStayNights {
		return fmt.Errorf("stay window must satisfy 1 <= min (%d) <= max (%d)", c.Engine.MinStayNights, c.Engine.MaxStayNights)
	}

	if c.Engine.DateScanLines < 0 || c.Engine.PropertyScanLines < 0 {
		return fmt.Errorf("scan line limits must not be negative")
	}

	if c.Engine.GuestNameScanLines < 1 || c.Engine.GuestNameFallbackLines < 1 {
		return fmt.Errorf("guest name scan limits must be positive")
	}

	if c.Engine.PropertyWindowStart < 0 || c.Engine.PropertyWindowEnd < c.Engine.PropertyWindowStart {
		return fmt.Errorf("property window [%d, %d) is invalid", c.Engine.PropertyWindowStart, c.Engine.PropertyWindowEnd)
	}

	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Schedule.Timezone, err)
	}

	return nil
}

// Location returns the configured timezone, falling back to UTC
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
