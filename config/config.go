package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	Name           string `mapstructure:"name"`
	SSLMode        string `mapstructure:"sslmode"`
	MigrationsPath string `mapstructure:"migrations_path"`
}

// DSN renders a lib/pq keyword/value connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// URL renders a postgres:// URL, the form golang-migrate expects.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// JWTConfig holds the signing material and token lifecycle policy.
// It is read once at startup and handed to the token codec and auth service.
type JWTConfig struct {
	Algorithm              string        `mapstructure:"algorithm"`
	SecretKey              string        `mapstructure:"secret_key"`
	PrivateKeyPath         string        `mapstructure:"private_key_path"`
	PublicKeyPath          string        `mapstructure:"public_key_path"`
	Issuer                 string        `mapstructure:"issuer"`
	AccessTokenTTL         time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL        time.Duration `mapstructure:"refresh_token_ttl"`
	RotateRefreshTokens    bool          `mapstructure:"rotate_refresh_tokens"`
	BlacklistAfterRotation bool          `mapstructure:"blacklist_after_rotation"`
	UpdateLastLogin        bool          `mapstructure:"update_last_login"`
}

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Server   struct {
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`
	JWT       JWTConfig `mapstructure:"jwt"`
	Blacklist struct {
		// Backend is either "postgres" or "redis".
		Backend string `mapstructure:"backend"`
	} `mapstructure:"blacklist"`
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "auth")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.migrations_path", "file://db/migrations")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("server.port", "8080")

	v.SetDefault("jwt.algorithm", "HS256")
	v.SetDefault("jwt.secret_key", "")
	v.SetDefault("jwt.private_key_path", "")
	v.SetDefault("jwt.public_key_path", "")
	v.SetDefault("jwt.issuer", "go-auth-api")
	v.SetDefault("jwt.access_token_ttl", 5*time.Minute)
	v.SetDefault("jwt.refresh_token_ttl", 24*time.Hour)
	v.SetDefault("jwt.rotate_refresh_tokens", true)
	v.SetDefault("jwt.blacklist_after_rotation", true)
	v.SetDefault("jwt.update_last_login", true)

	v.SetDefault("blacklist.backend", "postgres")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// LoadConfig reads config.yml from path, overlaid by an optional .env file
// in the same directory and then by environment variables (JWT_SECRET_KEY etc).
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(filepath.Join(path, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch strings.ToUpper(c.JWT.Algorithm) {
	case "HS256", "HS384", "HS512", "RS256", "RS384", "RS512":
	default:
		return fmt.Errorf("unsupported jwt algorithm %q", c.JWT.Algorithm)
	}
	if c.JWT.AccessTokenTTL <= 0 || c.JWT.RefreshTokenTTL <= 0 {
		return errors.New("jwt token lifetimes must be positive")
	}
	switch c.Blacklist.Backend {
	case "postgres", "redis":
	default:
		return fmt.Errorf("unsupported blacklist backend %q", c.Blacklist.Backend)
	}
	return nil
}
