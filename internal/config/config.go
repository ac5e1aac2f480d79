package config

import (
	"log"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

type Config struct {
	Port                          string        `mapstructure:"PORT"`
	DatabaseDriver                string        `mapstructure:"DATABASE_DRIVER"`
	DatabaseDSN                   string        `mapstructure:"DATABASE_DSN"`
	AssetsDir                     string        `mapstructure:"ASSETS_DIR"`
	StorageDir                    string        `mapstructure:"STORAGE_DIR"`
	StorageBucket                 string        `mapstructure:"STORAGE_BUCKET"`
	StoragePublicURL              string        `mapstructure:"STORAGE_PUBLIC_URL"`
	StorageURLTTL                 time.Duration `mapstructure:"STORAGE_URL_TTL"`
	JWTSecret                     string        `mapstructure:"JWT_SECRET"`
	OAuthClientID                 string        `mapstructure:"OAUTH_CLIENT_ID"`
	OAuthClientSecret             string        `mapstructure:"OAUTH_CLIENT_SECRET"`
	OAuthRedirectURL              string        `mapstructure:"OAUTH_REDIRECT_URL"`
	OAuthAuthURL                  string        `mapstructure:"OAUTH_AUTH_URL"`
	OAuthTokenURL                 string        `mapstructure:"OAUTH_TOKEN_URL"`
	OAuthUserInfoURL              string        `mapstructure:"OAUTH_USERINFO_URL"`
	FrontendURL                   string        `mapstructure:"FRONTEND_URL"`
	DiscordBotToken               string        `mapstructure:"DISCORD_BOT_TOKEN"`
	DiscordNotificationsChannelID string        `mapstructure:"DISCORD_NOTIFICATIONS_CHANNEL_ID"`
	VerifyURL                     string        `mapstructure:"VERIFY_URL"`
	Timezone                      string        `mapstructure:"TIMEZONE"`
	LogoAsset                     string        `mapstructure:"LOGO_ASSET"`
	SignatureAsset                string        `mapstructure:"SIGNATURE_ASSET"`
	BackgroundAsset               string        `mapstructure:"BACKGROUND_ASSET"`
	FontRegular                   string        `mapstructure:"FONT_REGULAR"`
	FontBold                      string        `mapstructure:"FONT_BOLD"`
	FontMono                      string        `mapstructure:"FONT_MONO"`
	IssuerAddress                 string        `mapstructure:"ISSUER_ADDRESS"`
	IssuerEmail                   string        `mapstructure:"ISSUER_EMAIL"`
	IssuerWhatsapp                string        `mapstructure:"ISSUER_WHATSAPP"`
	IssuerOffice                  string        `mapstructure:"ISSUER_OFFICE"`
	PreparerName                  string        `mapstructure:"PREPARER_NAME"`
	PreparerTitle                 string        `mapstructure:"PREPARER_TITLE"`
	BatchConcurrency              int           `mapstructure:"BATCH_CONCURRENCY"`
	HTTPAssetTimeout              time.Duration `mapstructure:"HTTP_ASSET_TIMEOUT"`
	EnableCORS                    bool          `mapstructure:"ENABLE_CORS"`
}

func LoadConfig() *Config {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DATABASE_DRIVER", "sqlite")
	viper.SetDefault("DATABASE_DSN", "bookings.db")
	viper.SetDefault("STORAGE_DIR", "storage")
	viper.SetDefault("STORAGE_BUCKET", "ztoursph-documents")
	viper.SetDefault("STORAGE_PUBLIC_URL", "http://127.0.0.1:8080")
	viper.SetDefault("STORAGE_URL_TTL", "15m")
	viper.SetDefault("OAUTH_REDIRECT_URL", "http://127.0.0.1:8080/auth/callback")
	viper.SetDefault("OAUTH_AUTH_URL", "https://accounts.google.com/o/oauth2/auth")
	viper.SetDefault("OAUTH_TOKEN_URL", "https://oauth2.googleapis.com/token")
	viper.SetDefault("OAUTH_USERINFO_URL", "https://openidconnect.googleapis.com/v1/userinfo")
	viper.SetDefault("FRONTEND_URL", "http://127.0.0.1:4000/")
	viper.SetDefault("VERIFY_URL", "https://ztoursph.com/booking/verify")
	viper.SetDefault("TIMEZONE", "Asia/Manila")
	viper.SetDefault("LOGO_ASSET", "images/logo.png")
	viper.SetDefault("SIGNATURE_ASSET", "images/signature.png")
	viper.SetDefault("ISSUER_ADDRESS", "RIZAL ST BRGY MALIGAYA EL NIDO, PALAWAN PHILIPPINES 5313")
	viper.SetDefault("ISSUER_EMAIL", "ztoursph@gmail.com")
	viper.SetDefault("ISSUER_WHATSAPP", "+639664428625")
	viper.SetDefault("ISSUER_OFFICE", "+639664428625")
	viper.SetDefault("PREPARER_NAME", "Jeo Invento")
	viper.SetDefault("PREPARER_TITLE", "Operation Manager")
	viper.SetDefault("BATCH_CONCURRENCY", 4)
	viper.SetDefault("HTTP_ASSET_TIMEOUT", "10s")

	viper.BindEnv("ASSETS_DIR")
	viper.BindEnv("BACKGROUND_ASSET")
	viper.BindEnv("FONT_REGULAR")
	viper.BindEnv("FONT_BOLD")
	viper.BindEnv("FONT_MONO")
	viper.BindEnv("JWT_SECRET")
	viper.BindEnv("OAUTH_CLIENT_ID")
	viper.BindEnv("OAUTH_CLIENT_SECRET")
	viper.BindEnv("DISCORD_BOT_TOKEN")
	viper.BindEnv("DISCORD_NOTIFICATIONS_CHANNEL_ID")
	viper.BindEnv("ENABLE_CORS")

	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	return &config
}

// Location is the configured time zone, falling back to UTC when the name is
// unknown.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
