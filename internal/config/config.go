// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/kkyr/fig"
	"golang.org/x/text/language"

	"github.com/wneessen/city-weather/internal/weather/provider/openweathermap"
)

const (
	configEnv = "CITYWEATHER"

	DefaultTemperatureTpl = `{{floatFormat .Temperature 1}}°C`
	DefaultSunTpl         = `🌞 {{timeFormat .SunriseTime "15:04"}} 🌚 {{timeFormat .SunsetTime "15:04"}}`
	DefaultFeelsLikeTpl   = `🥵🥶 {{loc "Feels like"}} {{floatFormat .FeelsLike 1}}°C`
	DefaultIconTpl        = `{{.Icon}}`
	DefaultDescriptionTpl = `{{.Description}}`
	DefaultMinMaxTpl      = "🌡️ min {{floatFormat .TemperatureMin 1}} / max {{floatFormat .TemperatureMax 1}}\n" +
		`🍃{{loc "Wind"}} {{floatFormat .WindSpeed 1}}m/s {{floatFormat .WindSpeedKMH 0}}km/h 🧭 {{.WindDirection}}°`
)

var ErrMissingAPIKey = errors.New("an OpenWeatherMap API key is required (provider.apikey)")

// Config represents the application's configuration structure. An empty
// Locale is detected from the environment, an empty Timezone means local time.
// A zero Display.RefreshInterval disables the automatic refresh.
type Config struct {
	LogLevel slog.Level `fig:"loglevel" default:"0"`
	Locale   string     `fig:"locale" default:"pt-BR"`
	City     string     `fig:"city" default:"Osasco"`
	Timezone string     `fig:"timezone"`

	Provider struct {
		APIKey            string        `fig:"apikey"`
		Endpoint          string        `fig:"endpoint"`
		Lang              string        `fig:"lang" default:"pt-BR"`
		Timeout           time.Duration `fig:"timeout" default:"10s"`
		RequestsPerMinute int           `fig:"requests_per_minute" default:"60"`
	} `fig:"provider"`

	Display struct {
		Width           int           `fig:"width" default:"40"`
		ShowErrors      bool          `fig:"show_errors"`
		RefreshInterval time.Duration `fig:"refresh_interval"`
	} `fig:"display"`

	Templates struct {
		Temperature string `fig:"temperature"`
		MinMax      string `fig:"min_max"`
		Sun         string `fig:"sun"`
		FeelsLike   string `fig:"feels_like"`
		Icon        string `fig:"icon"`
		Description string `fig:"description"`
	} `fig:"templates"`
}

func NewFromFile(path, file string) (*Config, error) {
	conf := new(Config)
	_, err := os.Stat(filepath.Join(path, file))
	if err != nil {
		return conf, fmt.Errorf("failed to read Config: %w", err)
	}
	if err = fig.Load(conf, fig.Dirs(path), fig.File(file), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func New() (*Config, error) {
	conf := new(Config)
	if err := fig.Load(conf, fig.AllowNoFile(), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func (c *Config) Validate() error {
	if c.Provider.APIKey == "" {
		return ErrMissingAPIKey
	}
	if _, err := language.Parse(c.Provider.Lang); err != nil {
		return fmt.Errorf("invalid provider language %q: %w", c.Provider.Lang, err)
	}
	if c.Locale != "" {
		if _, err := language.Parse(c.Locale); err != nil {
			return fmt.Errorf("invalid locale %q: %w", c.Locale, err)
		}
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Provider.Timeout <= 0 {
		return fmt.Errorf("invalid provider timeout: %s", c.Provider.Timeout)
	}
	if c.Provider.RequestsPerMinute <= 0 {
		return fmt.Errorf("invalid provider requests per minute: %d", c.Provider.RequestsPerMinute)
	}
	if c.Display.Width <= 0 {
		return fmt.Errorf("invalid display width: %d", c.Display.Width)
	}
	if c.Display.RefreshInterval < 0 {
		return fmt.Errorf("invalid display refresh interval: %s", c.Display.RefreshInterval)
	}
	if c.Provider.Endpoint == "" {
		c.Provider.Endpoint = openweathermap.DefaultEndpoint
	}
	if err := validateEndpoint(c.Provider.Endpoint); err != nil {
		return err
	}
	if c.Templates.Temperature == "" {
		c.Templates.Temperature = DefaultTemperatureTpl
	}
	if c.Templates.MinMax == "" {
		c.Templates.MinMax = DefaultMinMaxTpl
	}
	if c.Templates.Sun == "" {
		c.Templates.Sun = DefaultSunTpl
	}
	if c.Templates.FeelsLike == "" {
		c.Templates.FeelsLike = DefaultFeelsLikeTpl
	}
	if c.Templates.Icon == "" {
		c.Templates.Icon = DefaultIconTpl
	}
	if c.Templates.Description == "" {
		c.Templates.Description = DefaultDescriptionTpl
	}

	return nil
}

// Location returns the timezone for sunrise and sunset output.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ProviderLang returns the language tag requested from the weather provider.
func (c *Config) ProviderLang() language.Tag {
	return language.Make(c.Provider.Lang)
}

// validateEndpoint requires an absolute http or https URL with a host.
func validateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid provider endpoint %q: %w", endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid provider endpoint %q: scheme must be http or https", endpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid provider endpoint %q: missing host", endpoint)
	}
	return nil
}
