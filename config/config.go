package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig
	DB      DBConfig
	Redis   RedisConfig
	JWT     JWTConfig
	Media   MediaConfig
	FAQ     FAQConfig
	Chat    ChatConfig
	Storage StorageConfig
}

type AppConfig struct {
	Port             string
	Env              string
	LogLevel         string
	AllowAdminSignup bool
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// MediaConfig controls the local capture device and where recordings land.
type MediaConfig struct {
	Dir             string
	Device          string
	FFmpegPath      string
	DefaultDuration time.Duration
	MaxDuration     time.Duration
}

type FAQConfig struct {
	CorpusPath string
	DefaultK   int
	MinScore   float64
}

type ChatConfig struct {
	PollTimeout time.Duration
}

type StorageConfig struct {
	ProfilePictureDir string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// A missing .env is fine, the environment alone can configure the app.
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	config := &Config{
		App: AppConfig{
			Port:             viper.GetString("APP_PORT"),
			Env:              viper.GetString("APP_ENV"),
			LogLevel:         viper.GetString("LOG_LEVEL"),
			AllowAdminSignup: viper.GetBool("APP_ALLOW_ADMIN_SIGNUP"),
		},
		DB: DBConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        viper.GetString("JWT_SECRET"),
			AccessExpiry:  durationOr("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: durationOr("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		Media: MediaConfig{
			Dir:             viper.GetString("MEDIA_DIR"),
			Device:          viper.GetString("MEDIA_DEVICE"),
			FFmpegPath:      viper.GetString("MEDIA_FFMPEG_PATH"),
			DefaultDuration: durationOr("MEDIA_DEFAULT_DURATION", 60*time.Second),
			MaxDuration:     durationOr("MEDIA_MAX_DURATION", 5*time.Minute),
		},
		FAQ: FAQConfig{
			CorpusPath: viper.GetString("FAQ_CORPUS_PATH"),
			DefaultK:   viper.GetInt("FAQ_DEFAULT_K"),
			MinScore:   viper.GetFloat64("FAQ_MIN_SCORE"),
		},
		Chat: ChatConfig{
			PollTimeout: durationOr("CHAT_POLL_TIMEOUT", 25*time.Second),
		},
		Storage: StorageConfig{
			ProfilePictureDir: viper.GetString("PROFILE_PICTURE_DIR"),
		},
	}

	return config, nil
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("APP_ALLOW_ADMIN_SIGNUP", true)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("MEDIA_DIR", "./data/media")
	viper.SetDefault("MEDIA_DEVICE", "/dev/video0")
	viper.SetDefault("MEDIA_FFMPEG_PATH", "ffmpeg")
	viper.SetDefault("FAQ_DEFAULT_K", 3)
	viper.SetDefault("FAQ_MIN_SCORE", 0)
	viper.SetDefault("PROFILE_PICTURE_DIR", "./data/profiles")
}

// durationOr parses a duration setting, falling back when it is empty or malformed.
func durationOr(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(viper.GetString(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
