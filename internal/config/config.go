package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/larkwiot/bookexplorer/internal/util"
)

type GoogleConfig struct {
	Enable                 bool   `toml:"enable"`
	Url                    string `toml:"url"`
	ApiKey                 string `toml:"api_key"`
	MaxResults             uint   `toml:"max_results"`
	MillisecondsPerRequest uint   `toml:"milliseconds_per_request"`
	TimeoutSeconds         uint   `toml:"timeout_seconds"`
}

type DisplayConfig struct {
	Theme           string `toml:"theme"`
	DescriptionClip int    `toml:"description_clip"`
}

type NotifyConfig struct {
	Enable bool `toml:"enable"`
	// Allow is the answer to the permission prompt; false behaves like a denied prompt.
	Allow bool `toml:"allow"`
}

type AdsConfig struct {
	Enable            bool     `toml:"enable"`
	Banners           []string `toml:"banners"`
	Interstitials     []string `toml:"interstitials"`
	InterstitialEvery uint     `toml:"interstitial_every"`
}

type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

type MetricsConfig struct {
	Listen string `toml:"listen"`
}

type Config struct {
	Google  GoogleConfig  `toml:"google"`
	Display DisplayConfig `toml:"display"`
	Notify  NotifyConfig  `toml:"notify"`
	Ads     AdsConfig     `toml:"ads"`
	Log     LogConfig     `toml:"log"`
	Metrics MetricsConfig `toml:"metrics"`
}

var Defaults = map[string]any{
	"google.url":                      "www.googleapis.com/books/v1/volumes",
	"google.milliseconds_per_request": 250,
	"google.timeout_seconds":          15,

	"display.theme":            "light",
	"display.description_clip": 150,

	"log.level": "info",
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	c := base()
	// the zero config always validates
	_ = c.Validate()
	return c
}

// NewConfig reads the TOML file at configPath. A missing file yields the defaults.
func NewConfig(configPath string) (*Config, error) {
	configData, err := os.ReadFile(util.ExpandUser(configPath))
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}

	return Parse(string(configData))
}

func Parse(data string) (*Config, error) {
	config := base()
	_, err := toml.Decode(data, config)
	if err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	err = config.Validate()
	if err != nil {
		return nil, err
	}

	return config, nil
}

// base is the config before any file is decoded into it. Keys where zero is a
// meaningful value are preset here, so only keys absent from the file get the
// default; an explicit 0 is kept.
func base() *Config {
	return &Config{
		Google: GoogleConfig{
			Enable:                 true,
			MillisecondsPerRequest: uint(Defaults["google.milliseconds_per_request"].(int)),
		},
		Display: DisplayConfig{
			DescriptionClip: Defaults["display.description_clip"].(int),
		},
		Notify: NotifyConfig{Enable: true, Allow: true},
	}
}

func (c *Config) Validate() error {
	if c.Google.Enable {
		if len(c.Google.Url) == 0 {
			c.Google.Url = Defaults["google.url"].(string)
		}
		if c.Google.TimeoutSeconds == 0 {
			c.Google.TimeoutSeconds = uint(Defaults["google.timeout_seconds"].(int))
		}
		if c.Google.MaxResults > 40 {
			return fmt.Errorf("google.max_results must be at most 40, got %d", c.Google.MaxResults)
		}
	}

	switch strings.ToLower(c.Display.Theme) {
	case "":
		c.Display.Theme = Defaults["display.theme"].(string)
	case "light", "dark":
		c.Display.Theme = strings.ToLower(c.Display.Theme)
	default:
		return fmt.Errorf("display.theme must be light or dark, got %q", c.Display.Theme)
	}
	if c.Display.DescriptionClip < 0 {
		return fmt.Errorf("display.description_clip must not be negative")
	}

	if len(c.Log.Level) == 0 {
		c.Log.Level = Defaults["log.level"].(string)
	}

	return nil
}
