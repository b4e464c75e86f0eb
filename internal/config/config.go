package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/sydscene/sydscene/internal/duration"
	"go.uber.org/zap/zapcore"
)

type ServerConfig struct {
	Port             int           `mapstructure:"port"`
	GracefulShutdown time.Duration `mapstructure:"graceful-shutdown"`
	ReadTimeout      time.Duration `mapstructure:"read-timeout"`
	WriteTimeout     time.Duration `mapstructure:"write-timeout"`
	AdminToken       string        `mapstructure:"admin-token"`
}

type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	File        string `mapstructure:"file"`
	Development bool   `mapstructure:"development"`
}

type DBConfig struct {
	DataSource  string `mapstructure:"data-source" validate:"required"`
	LogLevel    string `mapstructure:"log-level"`
	PrepareStmt bool   `mapstructure:"prepare-stmt"`
	Pool        struct {
		Enable             bool          `mapstructure:"enable"`
		MaxOpenConnections int           `mapstructure:"max-open-connections"`
		MaxIdleConnections int           `mapstructure:"max-idle-connections"`
		MaxLifetime        time.Duration `mapstructure:"max-lifetime"`
	} `mapstructure:"pool"`
}

type ScrapeConfig struct {
	Enable             bool          `mapstructure:"enable"`
	PageTimeout        time.Duration `mapstructure:"page-timeout"`
	NavigateRetries    uint64        `mapstructure:"navigate-retries"`
	ChromePath         string        `mapstructure:"chrome-path"`
	EventbriteInterval time.Duration `mapstructure:"eventbrite-interval"`
	EventfindaInterval time.Duration `mapstructure:"eventfinda-interval"`
	TimeoutInterval    time.Duration `mapstructure:"timeout-interval"`
}

type SweepConfig struct {
	Enable     bool          `mapstructure:"enable"`
	Interval   time.Duration `mapstructure:"interval"`
	StaleAfter time.Duration `mapstructure:"stale-after"`
}

type Config struct {
	Server ServerConfig  `mapstructure:"server"`
	Log    LoggingConfig `mapstructure:"log"`
	DB     DBConfig      `mapstructure:"db"`
	Scrape ScrapeConfig  `mapstructure:"scrape"`
	Sweep  SweepConfig   `mapstructure:"sweep"`
}

type ConfigLoader struct {
	v *viper.Viper
}

func NewConfigLoader() *ConfigLoader {
	return &ConfigLoader{v: viper.New()}
}

func stringToDurationHook() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		if t != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		str, ok := data.(string)
		if !ok {
			return data, nil
		}
		return duration.ParseDuration(str)
	}
}

func (cl *ConfigLoader) InitializeConfig(cmd *cobra.Command) error {
	cl.v.SetConfigType("toml")

	cfgFile := cmd.Flags().Lookup("config").Value.String()

	if cfgFile != "" {
		cl.v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("error getting home directory: %v", err)
		}
		cl.v.AddConfigPath(filepath.Join(home, ".sydscene"))
		cl.v.AddConfigPath(".")
		cl.v.SetConfigName("config")
	}

	cl.v.SetEnvPrefix("sydscene")
	cl.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	cl.v.AutomaticEnv()

	if err := cl.v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}

	if err := cl.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %v", err)
		}
	}

	return nil
}

func (cl *ConfigLoader) Load(cfg interface{}) error {
	config := &mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			stringToDurationHook(),
		),
		WeaklyTypedInput: true,
		Result:           cfg,
	}

	decoder, err := mapstructure.NewDecoder(config)
	if err != nil {
		return fmt.Errorf("failed to create decoder: %v", err)
	}

	if err := decoder.Decode(cl.v.AllSettings()); err != nil {
		return fmt.Errorf("failed to decode config: %v", err)
	}

	return nil
}

func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func AddCommonFlags(flags *pflag.FlagSet, config *Config) {
	flags.StringP("config", "c", "", "Config file path (default $HOME/.sydscene/config.toml)")

	// Log config
	flags.StringVar(&config.Log.Level, "log-level", zapcore.InfoLevel.String(), "Logging level")
	flags.StringVar(&config.Log.File, "log-file", "", "Logging file path")
	flags.BoolVar(&config.Log.Development, "log-development", false, "Enable development logging")

	// DB config
	flags.StringVar(&config.DB.DataSource, "db-data-source", "", "Database connection string")
	flags.StringVar(&config.DB.LogLevel, "db-log-level", "warn", "Database log level")
	flags.BoolVar(&config.DB.PrepareStmt, "db-prepare-stmt", true, "Enable prepared statements")
	flags.BoolVar(&config.DB.Pool.Enable, "db-pool-enable", true, "Enable database pool")
	flags.IntVar(&config.DB.Pool.MaxOpenConnections, "db-pool-max-open-connections", 25, "Database max open connections")
	flags.IntVar(&config.DB.Pool.MaxIdleConnections, "db-pool-max-idle-connections", 25, "Database max idle connections")
	duration.DurationVar(flags, &config.DB.Pool.MaxLifetime, "db-pool-max-lifetime", 10*time.Minute, "Database max connection lifetime")

	// Scrape config
	flags.BoolVar(&config.Scrape.Enable, "scrape-enable", true, "Enable scheduled scraping")
	duration.DurationVar(flags, &config.Scrape.PageTimeout, "scrape-page-timeout", 30*time.Second, "Per-crawl page load timeout")
	flags.Uint64Var(&config.Scrape.NavigateRetries, "scrape-navigate-retries", 2, "Navigation retry attempts before a crawl fails")
	flags.StringVar(&config.Scrape.ChromePath, "scrape-chrome-path", "", "Chrome/Chromium executable path (auto-detected when empty)")
	duration.DurationVar(flags, &config.Scrape.EventbriteInterval, "scrape-eventbrite-interval", 12*time.Hour, "Eventbrite crawl interval")
	duration.DurationVar(flags, &config.Scrape.EventfindaInterval, "scrape-eventfinda-interval", 6*time.Hour, "Eventfinda crawl interval")
	duration.DurationVar(flags, &config.Scrape.TimeoutInterval, "scrape-timeout-interval", 12*time.Hour, "TimeOut Sydney crawl interval")

	// Sweep config
	flags.BoolVar(&config.Sweep.Enable, "sweep-enable", true, "Enable staleness sweeping")
	duration.DurationVar(flags, &config.Sweep.Interval, "sweep-interval", 24*time.Hour, "Staleness sweep interval")
	duration.DurationVar(flags, &config.Sweep.StaleAfter, "sweep-stale-after", 30*24*time.Hour, "Age after which unseen records go inactive")

	// Server config
	flags.IntVar(&config.Server.Port, "server-port", 8080, "Server port")
	duration.DurationVar(flags, &config.Server.GracefulShutdown, "server-graceful-shutdown", 10*time.Second, "Server graceful shutdown timeout")
	duration.DurationVar(flags, &config.Server.ReadTimeout, "server-read-timeout", 1*time.Minute, "Server read timeout")
	duration.DurationVar(flags, &config.Server.WriteTimeout, "server-write-timeout", 1*time.Minute, "Server write timeout")
	flags.StringVar(&config.Server.AdminToken, "server-admin-token", "", "Bearer token guarding the moderation API")
}
