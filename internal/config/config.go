package config

import (
	"log"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

const (
	// Development fallbacks. Both must be overridden in any real deployment.
	DefaultAppSecret     = "change_this_secret_for_prod"
	DefaultAdminPassword = "tamecovita1"
)

type Config struct {
	Port              string        `mapstructure:"PORT"`
	Env               string        `mapstructure:"ENV"`
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
	SiteName          string        `mapstructure:"SITE_NAME"`
	DataDir           string        `mapstructure:"DATA_DIR"`
	DatabasePath      string        `mapstructure:"DATABASE_PATH"`
	WorkbookPath      string        `mapstructure:"WORKBOOK_PATH"`
	RequestsDir       string        `mapstructure:"REQUESTS_DIR"`
	ExportsDir        string        `mapstructure:"EXPORTS_DIR"`
	ReceiptTemplate   string        `mapstructure:"RECEIPT_TEMPLATE"`
	InvoiceTemplate   string        `mapstructure:"INVOICE_TEMPLATE"`
	LogoPath          string        `mapstructure:"LOGO_PATH"`
	AppSecret         string        `mapstructure:"APP_SECRET"`
	AdminPasswordHash string        `mapstructure:"ADMIN_PASSWORD_HASH"`
	AdminPassword     string        `mapstructure:"ADMIN_PASSWORD"`
	SessionTTL        time.Duration `mapstructure:"SESSION_TTL"`

	DiscordBotToken               string `mapstructure:"DISCORD_BOT_TOKEN"`
	DiscordNotificationsChannelID string `mapstructure:"DISCORD_NOTIFICATIONS_CHANNEL_ID"`
}

// LoadConfig reads an optional .env file and then the process environment.
// Paths that are not set explicitly are derived from DATA_DIR.
func LoadConfig() *Config {
	if err := godotenv.Load(); err == nil {
		log.Printf("Loaded environment from .env")
	}

	viper.SetDefault("PORT", "5000")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("SITE_NAME", "TamEcoVita Suites")
	viper.SetDefault("DATA_DIR", "instance")
	viper.SetDefault("LOGO_PATH", "logo.png")
	viper.SetDefault("APP_SECRET", DefaultAppSecret)
	viper.SetDefault("ADMIN_PASSWORD", DefaultAdminPassword)
	viper.SetDefault("SESSION_TTL", "24h")

	viper.BindEnv("DATABASE_PATH")
	viper.BindEnv("WORKBOOK_PATH")
	viper.BindEnv("REQUESTS_DIR")
	viper.BindEnv("EXPORTS_DIR")
	viper.BindEnv("RECEIPT_TEMPLATE")
	viper.BindEnv("INVOICE_TEMPLATE")
	viper.BindEnv("ADMIN_PASSWORD_HASH")
	viper.BindEnv("DISCORD_BOT_TOKEN")
	viper.BindEnv("DISCORD_NOTIFICATIONS_CHANNEL_ID")

	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	config.applyDataDir()
	if err := config.ensurePasswordHash(); err != nil {
		log.Fatalf("Unable to hash admin password, %v", err)
	}

	return &config
}

func (c *Config) applyDataDir() {
	defaults := []struct {
		target *string
		name   string
	}{
		{&c.DatabasePath, "reservations.db"},
		{&c.WorkbookPath, "TamEcoVita_host_file.xlsx"},
		{&c.RequestsDir, "requests"},
		{&c.ExportsDir, "exports"},
		{&c.ReceiptTemplate, "receipt_template.docx"},
		{&c.InvoiceTemplate, "invoice_template.docx"},
	}
	for _, d := range defaults {
		if *d.target == "" {
			*d.target = filepath.Join(c.DataDir, d.name)
		}
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = 24 * time.Hour
	}
}

func (c *Config) ensurePasswordHash() error {
	if c.AdminPasswordHash != "" {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(c.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	c.AdminPasswordHash = string(hash)
	return nil
}

// InsecureDefaults lists the development fallbacks still in effect.
func (c *Config) InsecureDefaults() []string {
	var found []string
	if c.AppSecret == DefaultAppSecret {
		found = append(found, "APP_SECRET")
	}
	if viper.GetString("ADMIN_PASSWORD_HASH") == "" && c.AdminPassword == DefaultAdminPassword {
		found = append(found, "ADMIN_PASSWORD")
	}
	return found
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
