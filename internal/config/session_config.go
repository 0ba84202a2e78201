package config

import "time"

type SessionConfig interface {
	GetLoginPath() string
	GetLoginURL() string
	GetToastDelay() time.Duration
	GetNavigateDelay() time.Duration
}

type sessionSettings struct {
	LoginPath     string        `mapstructure:"loginpath"`
	LoginURL      string        `mapstructure:"loginurl"` // Used when no navigator has been registered
	ToastDelay    time.Duration `mapstructure:"toastdelay"`
	NavigateDelay time.Duration `mapstructure:"navigatedelay"`
}

func (c mainConfig) GetLoginPath() string {
	return c.Session.LoginPath
}

func (c mainConfig) GetLoginURL() string {
	return c.Session.LoginURL
}

func (c mainConfig) GetToastDelay() time.Duration {
	return c.Session.ToastDelay
}

func (c mainConfig) GetNavigateDelay() time.Duration {
	return c.Session.NavigateDelay
}
