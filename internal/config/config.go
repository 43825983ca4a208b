package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Booking  BookingConfig  `mapstructure:"booking"`
	Sweeper  SweeperConfig  `mapstructure:"sweeper"`
	JWT      JWTConfig      `mapstructure:"jwt"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	Name            string `mapstructure:"name"`
	SSLMode         string `mapstructure:"sslmode"`
	TimeZone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifeTime int    `mapstructure:"conn_max_lifetime_min"` // минут
}

type BookingConfig struct {
	IntervalMinutes  int `mapstructure:"interval_minutes"`
	IntervalCapacity int `mapstructure:"interval_capacity"`
}

type SweeperConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Grace    time.Duration `mapstructure:"grace"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

// Load читает config/config.yaml (если есть) и накрывает его переменными
// окружения — env-имена совпадают с деплойными из docker-compose.
func Load() (*Config, error) {
	v := viper.New()

	v.AddConfigPath("./config")
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyEnv(&c)

	if c.Database.Host == "" || c.Database.User == "" || c.Database.Name == "" {
		return nil, fmt.Errorf("invalid DB config: host/user/name must not be empty")
	}

	return &c, nil
}

func applyEnv(c *Config) {
	c.Server.Host = getEnv("SERVER_HOST", defaultStr(c.Server.Host, "0.0.0.0"))
	c.Server.Port = getEnv("SERVER_PORT", defaultStr(c.Server.Port, "8080"))
	c.Server.Mode = getEnv("SERVER_MODE", defaultStr(c.Server.Mode, "debug"))

	c.Database.Host = getEnv("DB_HOST", defaultStr(c.Database.Host, "postgres"))
	c.Database.User = getEnv("DB_USER", defaultStr(c.Database.User, "booking"))
	c.Database.Password = getEnv("DB_PASSWORD", defaultStr(c.Database.Password, "booking"))
	c.Database.Name = getEnv("DB_NAME", defaultStr(c.Database.Name, "booking_db"))
	c.Database.SSLMode = getEnv("DB_SSLMODE", defaultStr(c.Database.SSLMode, "disable"))
	c.Database.TimeZone = getEnv("DB_TIMEZONE", defaultStr(c.Database.TimeZone, "UTC"))
	c.Database.Port = getEnvInt("DB_PORT", defaultInt(c.Database.Port, 5432))
	c.Database.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", defaultInt(c.Database.MaxOpenConns, 10))
	c.Database.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", defaultInt(c.Database.MaxIdleConns, 5))
	c.Database.ConnMaxLifeTime = getEnvInt("DB_CONN_MAX_LIFETIME_MIN", defaultInt(c.Database.ConnMaxLifeTime, 30))

	c.Booking.IntervalMinutes = getEnvInt("BOOKING_INTERVAL_MINUTES", defaultInt(c.Booking.IntervalMinutes, 15))
	c.Booking.IntervalCapacity = getEnvInt("BOOKING_INTERVAL_CAPACITY", defaultInt(c.Booking.IntervalCapacity, 3))

	if c.Sweeper.Interval <= 0 {
		c.Sweeper.Interval = 30 * time.Minute
	}
	if c.Sweeper.Grace <= 0 {
		c.Sweeper.Grace = time.Hour
	}

	c.JWT.Secret = getEnv("JWT_SECRET", c.JWT.Secret)
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func defaultStr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func defaultInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
