// Package config loads and validates the taskbar configuration.
//
// The config file lives at ~/.config/niri-taskbar/config.yaml (TOML is
// accepted too, picked by extension). It carries the per-application CSS
// class rules that the rendering layer queries, and the notification
// correlation settings.
package config

import (
	"fmt"
	"regexp"
	"time"
)

// Config is the taskbar configuration.
type Config struct {
	Apps          map[string][]AppRule `yaml:"apps" toml:"apps" json:"apps,omitempty"`
	Notifications Notifications        `yaml:"notifications" toml:"notifications" json:"notifications"`
}

// AppRule maps window titles of one application to a CSS class. The rules
// are opaque to the core; the rendering layer asks for the classes via
// AppClasses and AppMatches.
type AppRule struct {
	Match string `yaml:"match" toml:"match" json:"match"`
	Class string `yaml:"class" toml:"class" json:"class"`

	re *regexp.Regexp
}

// Notifications configures the notification correlation pipeline.
type Notifications struct {
	// Enabled turns the bus monitor and correlator on.
	Enabled bool `yaml:"enabled" toml:"enabled" json:"enabled"`

	// DesktopEntry permits the desktop-entry fallback when the process
	// ancestry walk finds nothing.
	DesktopEntry bool `yaml:"desktop_entry" toml:"desktop_entry" json:"desktop_entry"`

	// Fuzzy additionally permits case-insensitive and last-segment matching
	// of desktop entries against window application ids.
	Fuzzy bool `yaml:"fuzzy" toml:"fuzzy" json:"fuzzy"`

	// AppMap remaps desktop-entry hints to window application ids for the
	// applications that disagree about their own name.
	AppMap map[string]string `yaml:"app_map" toml:"app_map" json:"app_map,omitempty"`

	// CacheTTL is the connection cache entry lifetime. Values below a few
	// minutes are unlikely to be very effective.
	CacheTTL Duration `yaml:"cache_ttl" toml:"cache_ttl" json:"cache_ttl"`

	// SweepInterval is how often expired cache entries are swept out. It is
	// independent of CacheTTL; a TTL below the sweep interval just means
	// entries linger until the next sweep.
	SweepInterval Duration `yaml:"sweep_interval" toml:"sweep_interval" json:"sweep_interval"`
}

// Defaults applied after decoding.
const (
	DefaultCacheTTL      = 5 * time.Minute
	DefaultSweepInterval = time.Minute
)

// Default returns a usable zero configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Notifications.CacheTTL == 0 {
		c.Notifications.CacheTTL = Duration(DefaultCacheTTL)
	}
	if c.Notifications.SweepInterval == 0 {
		c.Notifications.SweepInterval = Duration(DefaultSweepInterval)
	}
}

// Validate compiles the app rule regexes and checks durations. It must run
// before the matcher methods are used.
func (c *Config) Validate() error {
	for appID, rules := range c.Apps {
		for i := range rules {
			rule := &c.Apps[appID][i]
			if rule.Class == "" {
				return fmt.Errorf("apps.%s[%d]: class must not be empty", appID, i)
			}
			re, err := regexp.Compile(rule.Match)
			if err != nil {
				return fmt.Errorf("apps.%s[%d]: invalid match pattern: %w", appID, i, err)
			}
			rule.re = re
		}
	}
	if c.Notifications.CacheTTL < 0 {
		return fmt.Errorf("notifications.cache_ttl must not be negative")
	}
	if c.Notifications.SweepInterval <= 0 {
		return fmt.Errorf("notifications.sweep_interval must be positive")
	}
	return nil
}

// AppClasses returns all possible CSS classes that a particular application
// might have set.
func (c *Config) AppClasses(appID string) []string {
	rules, ok := c.Apps[appID]
	if !ok {
		return nil
	}
	classes := make([]string, 0, len(rules))
	for _, rule := range rules {
		classes = append(classes, rule.Class)
	}
	return classes
}

// AppMatches returns the actual CSS classes that should be set for the given
// application and title.
func (c *Config) AppMatches(appID, title string) []string {
	var classes []string
	for _, rule := range c.Apps[appID] {
		if rule.re != nil && rule.re.MatchString(title) {
			classes = append(classes, rule.Class)
		}
	}
	return classes
}

// MapDesktopEntry remaps a desktop-entry hint through the configured app
// map, or returns it unchanged.
func (c *Config) MapDesktopEntry(entry string) string {
	if mapped, ok := c.Notifications.AppMap[entry]; ok {
		return mapped
	}
	return entry
}
