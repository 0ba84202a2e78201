package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const envPrefix = "ENROLLCTL"

type Config interface {
	EnvConfig
	APIConfig
	StorageConfig
	SessionConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type APIConfig interface {
	GetBaseURL() string
	GetRequestTimeout() time.Duration
	GetAuthPaths() AuthPaths
}

// AuthPaths are the backend's authentication endpoints, relative to the base URL.
type AuthPaths struct {
	Login   string `mapstructure:"login"`
	Refresh string `mapstructure:"refresh"`
	Logout  string `mapstructure:"logout"`
}

// All returns every authentication endpoint path.
func (p AuthPaths) All() []string {
	return []string{p.Login, p.Refresh, p.Logout}
}

type settings struct {
	AppName  string          `mapstructure:"appname"`
	Env      string          `mapstructure:"env"`
	LogLevel string          `mapstructure:"loglevel"`
	API      apiSettings     `mapstructure:"api"`
	Storage  storageSettings `mapstructure:"storage"`
	Redis    redisSettings   `mapstructure:"redis"`
	Session  sessionSettings `mapstructure:"session"`
}

type apiSettings struct {
	BaseURL string        `mapstructure:"baseurl"`
	Timeout time.Duration `mapstructure:"timeout"`
	Auth    AuthPaths     `mapstructure:"auth"`
}

type mainConfig struct {
	settings
}

var _ Config = mainConfig{}

// New loads configuration from an optional YAML file and ENROLLCTL_* environment
// variables. An empty path searches the working directory and $HOME/.enrollctl.
func New(path string) (Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("enrollctl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.enrollctl")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var s settings
	if err := v.Unmarshal(&s, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return mainConfig{settings: s}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("appname", "Enrollctl")
	v.SetDefault("env", "DEV")
	v.SetDefault("loglevel", "info")

	v.SetDefault("api.baseurl", "http://localhost:5000/api")
	v.SetDefault("api.timeout", "30s")
	v.SetDefault("api.auth.login", "/auth/login")
	v.SetDefault("api.auth.refresh", "/auth/refresh-token")
	v.SetDefault("api.auth.logout", "/auth/logout")

	v.SetDefault("storage.driver", StorageDriverSQLite)
	v.SetDefault("storage.path", defaultStoragePath())

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "enrollctl:")

	v.SetDefault("session.loginpath", "/login")
	v.SetDefault("session.loginurl", "http://localhost:5173/login")
	v.SetDefault("session.toastdelay", "1500ms")
	v.SetDefault("session.navigatedelay", "100ms")
}

func (c mainConfig) GetAppName() string {
	return c.AppName
}

func (c mainConfig) GetEnv() string {
	return c.Env
}

func (c mainConfig) GetLogLevel() string {
	return c.LogLevel
}

func (c mainConfig) GetBaseURL() string {
	return c.API.BaseURL
}

func (c mainConfig) GetRequestTimeout() time.Duration {
	return c.API.Timeout
}

func (c mainConfig) GetAuthPaths() AuthPaths {
	return c.API.Auth
}
