package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/verte-zerg/tuiread/internal/model"
	"github.com/verte-zerg/tuiread/internal/rsvp"
)

// ApplyReader copies the set fields of rc into cfg. Enumerations are
// validated; an out-of-range rate is clamped and reported as a warning.
// cfg is left untouched when an error is returned.
func ApplyReader(rc ReaderConfig, cfg *model.Config) ([]string, error) {
	next := *cfg
	var warnings []string
	if rc.WPM != nil {
		next.WPM = *rc.WPM
		if clamped := rsvp.ClampRate(*rc.WPM); clamped != *rc.WPM {
			warnings = append(warnings, fmt.Sprintf("wpm %d out of range, using %d", *rc.WPM, clamped))
			next.WPM = clamped
		}
	}
	if rc.FontSize != nil {
		fs, err := model.ParseFontSize(*rc.FontSize)
		if err != nil {
			return nil, err
		}
		next.Display.FontSize = fs
	}
	if rc.FontFamily != nil {
		ff, err := model.ParseFontFamily(*rc.FontFamily)
		if err != nil {
			return nil, err
		}
		next.Display.FontFamily = ff
	}
	if rc.Theme != nil {
		th, err := model.ParseTheme(*rc.Theme)
		if err != nil {
			return nil, err
		}
		next.Display.Theme = th
	}
	if rc.ZenTimeout != nil {
		next.ZenTimeout = rc.ZenTimeout.Duration
	}
	if rc.Skip != nil {
		if *rc.Skip <= 0 {
			return nil, fmt.Errorf("skip must be > 0")
		}
		next.SkipWords = *rc.Skip
	}
	*cfg = next
	return warnings, nil
}

// ReaderKeys lists the [reader] keys in file order.
var ReaderKeys = []string{"wpm", "font-size", "font-family", "theme", "zen-timeout", "skip"}

// Without returns rc with the named keys unset.
func (rc ReaderConfig) Without(keys ...string) ReaderConfig {
	for _, k := range keys {
		switch k {
		case "wpm":
			rc.WPM = nil
		case "font-size":
			rc.FontSize = nil
		case "font-family":
			rc.FontFamily = nil
		case "theme":
			rc.Theme = nil
		case "zen-timeout":
			rc.ZenTimeout = nil
		case "skip":
			rc.Skip = nil
		}
	}
	return rc
}

// ResolveAssist turns the [assist] section into runtime settings. The API key
// is read from the environment variable named by api-key-env.
func ResolveAssist(ac AssistConfig) model.AssistConfig {
	var out model.AssistConfig
	if ac.Endpoint != nil {
		out.Endpoint = strings.TrimSpace(*ac.Endpoint)
	}
	if ac.Model != nil {
		out.Model = strings.TrimSpace(*ac.Model)
	}
	if ac.APIKeyEnv != nil && strings.TrimSpace(*ac.APIKeyEnv) != "" {
		out.APIKey = os.Getenv(strings.TrimSpace(*ac.APIKeyEnv))
	}
	if ac.Timeout != nil {
		out.Timeout = ac.Timeout.Duration
	}
	return out
}
