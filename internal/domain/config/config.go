package config

import (
	domainerr "devwrite/internal/domain/errors"
	"gopkg.in/yaml.v3"
	"net/url"
	"os"
	"strings"
	"time"
)

type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Build   BuildConfig   `yaml:"build"`
	Render  RenderConfig  `yaml:"render"`
	Feed    FeedConfig    `yaml:"feed"`
	Members MembersConfig `yaml:"members"`
	Mail    MailConfig    `yaml:"mail"`
	Notify  NotifyConfig  `yaml:"notify"`
}

type SiteConfig struct {
	Title       string `yaml:"title"`
	Subtitle    string `yaml:"subtitle"`
	Author      string `yaml:"author"`
	SiteURL     string `yaml:"site_url"`
	Theme       string `yaml:"themes"`
	Scheme      Scheme `yaml:"scheme"`
	TimeZone    string `yaml:"time_zone"`
	Language    string `yaml:"language"`
	Description string `yaml:"description"`
}

// Scheme is the color scheme handed to templates. The site only ships a
// light theme, so it is the only accepted value.
type Scheme string

const (
	SchemeLight Scheme = "light"
)

type BuildConfig struct {
	SourceDir    string    `yaml:"source_dir"`
	PublicDir    string    `yaml:"public_dir"`
	ThemeDir     string    `yaml:"theme_dir"`
	IndexPath    string    `yaml:"index_path"`
	BasePath     string    `yaml:"base_path"`
	IncludeDraft bool      `yaml:"include_draft"`
	Now          time.Time `yaml:"-"`
}

type RenderConfig struct {
	CodeStyle   string        `yaml:"code_style"`
	Sanitize    bool          `yaml:"sanitize"`
	ImageWidth  int           `yaml:"image_width"`
	ImageHeight int           `yaml:"image_height"`
	CopyReset   time.Duration `yaml:"copy_reset"`
}

type FeedConfig struct {
	DefaultCategory string `yaml:"default_category"`
	DefaultOrder    string `yaml:"default_order"`
	RSSItems        int    `yaml:"rss_items"`
}

type MembersConfig struct {
	DBPath string `yaml:"db_path"`
}

type MailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	Subject  string `yaml:"subject"`
	Signoff  string `yaml:"signoff"`
}

// Enabled reports whether enough is configured to talk to an SMTP server.
func (m MailConfig) Enabled() bool {
	return strings.TrimSpace(m.Host) != "" && strings.TrimSpace(m.From) != ""
}

type NotifyConfig struct {
	DiscordWebhook string `yaml:"discord_webhook"`
}

func Default() Config {
	return Config{
		Site: SiteConfig{
			Title:    "Devwrite Africa",
			Theme:    "default",
			Scheme:   SchemeLight,
			Language: "en",
		},
		Build: BuildConfig{
			SourceDir:    "content",
			PublicDir:    "public",
			ThemeDir:     "themes",
			IndexPath:    ".devwrite/index.db",
			BasePath:     "",
			IncludeDraft: false,
			Now:          time.Now(),
		},
		Render: RenderConfig{
			CodeStyle:   "material",
			Sanitize:    false,
			ImageWidth:  920,
			ImageHeight: 640,
			CopyReset:   2 * time.Second,
		},
		Feed: FeedConfig{
			DefaultCategory: "all",
			DefaultOrder:    "desc",
			RSSItems:        20,
		},
		Members: MembersConfig{
			DBPath: ".devwrite/members.db",
		},
		Mail: MailConfig{
			Port:    465,
			Subject: "Welcome to the Devwrite Africa community!🥳",
			Signoff: "Clinton",
		},
	}
}

func (c Config) Validate() error {
	var ve domainerr.ValidationError

	if strings.TrimSpace(c.Site.Title) == "" {
		ve.Add("site.title", "must not be empty")
	}

	if strings.TrimSpace(c.Site.SiteURL) == "" {
		ve.Add("site.site_url", "must not be empty")
	} else if !isValidAbsURL(c.Site.SiteURL) {
		ve.Add("site.site_url", "must be a valid absolute URL")
	}

	switch c.Site.Scheme {
	case "", SchemeLight:
	default:
		ve.Add("site.scheme", "must be 'light'")
	}

	if strings.TrimSpace(c.Site.Theme) == "" {
		ve.Add("site.themes", "must not be empty")
	}

	if strings.TrimSpace(c.Build.SourceDir) == "" {
		ve.Add("build.source_dir", "must not be empty")
	}
	if strings.TrimSpace(c.Build.PublicDir) == "" {
		ve.Add("build.public_dir", "must not be empty")
	}
	if strings.TrimSpace(c.Build.ThemeDir) == "" {
		ve.Add("build.theme_dir", "must not be empty")
	}
	if strings.TrimSpace(c.Build.IndexPath) == "" {
		ve.Add("build.index_path", "must not be empty")
	}
	if bp := strings.TrimSpace(c.Build.BasePath); bp != "" {
		if !strings.HasPrefix(bp, "/") {
			ve.Add("build.base_path", "must start with '/'")
		}
		if strings.HasSuffix(bp, "/") && bp != "/" {
			ve.Add("build.base_path", "must not end with '/'")
		}
	}

	if c.Render.ImageWidth <= 0 || c.Render.ImageHeight <= 0 {
		ve.Add("render.image_width", "image dimensions must be positive")
	}
	if c.Render.CopyReset <= 0 {
		ve.Add("render.copy_reset", "must be positive")
	}

	switch c.Feed.DefaultOrder {
	case "asc", "desc":
	default:
		ve.Add("feed.default_order", "must be 'asc' or 'desc'")
	}
	if strings.TrimSpace(c.Feed.DefaultCategory) == "" {
		ve.Add("feed.default_category", "must not be empty")
	}
	if c.Feed.RSSItems < 0 {
		ve.Add("feed.rss_items", "must not be negative")
	}

	if c.Mail.Enabled() && (c.Mail.Port <= 0 || c.Mail.Port > 65535) {
		ve.Add("mail.port", "must be a valid TCP port")
	}
	if hook := strings.TrimSpace(c.Notify.DiscordWebhook); hook != "" && !isValidAbsURL(hook) {
		ve.Add("notify.discord_webhook", "must be a valid absolute URL")
	}

	return ve.Err()
}

func isValidAbsURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	// fields present in the file override Default, the rest stay as they are
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.fill()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func LoadOrDefault(path string) (Config, error) {
	cfg, err := Decode(path)
	if err != nil {
		return cfg, err
	}
	// no file: defaults still have to pass Validate (site_url is required)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Decode reads path over Default without validating, so callers can apply
// overrides first. A missing file yields the defaults.
func Decode(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.fill()
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.fill()
	return cfg, nil
}

func (c *Config) fill() {
	if c.Build.Now.IsZero() {
		c.Build.Now = time.Now()
	}
	if c.Site.Scheme == "" {
		c.Site.Scheme = SchemeLight
	}
}
