// Package useragent classifies raw User-Agent strings for the
// ingestion gate and visitor rollup. It only distinguishes bots from
// humans and desktop browsers from everything else.
package useragent

import (
	"fmt"
	"sync"

	_ "embed"

	"go.elara.ws/pcre"
	"gopkg.in/yaml.v3"
)

// Device class labels returned by DeviceLabel.
const (
	DeviceDesktop = "Desktop"
	DeviceGeneric = "Device"
)

//go:embed rules.yml
var rulesFile []byte

// BotEntry is one bot marker pattern from the rules database.
type BotEntry struct {
	Regex string `yaml:"regex"`
	Name  string `yaml:"name"`
}

// DesktopEntry is one desktop-OS marker pattern.
type DesktopEntry struct {
	Regex string `yaml:"regex"`
}

type rulesDatabase struct {
	Bots    []BotEntry     `yaml:"bots"`
	Desktop []DesktopEntry `yaml:"desktop"`
}

type classifier struct {
	bots    []*pcre.Regexp
	desktop []*pcre.Regexp
}

var (
	instance *classifier
	once     sync.Once
)

func getClassifier() *classifier {
	once.Do(func() {
		instance = &classifier{}

		var db rulesDatabase
		if err := yaml.Unmarshal(rulesFile, &db); err != nil {
			fmt.Printf("Error parsing rules.yml: %v\n", err)
			return
		}

		for _, entry := range db.Bots {
			if regex, err := pcre.Compile("(?i)" + entry.Regex); err == nil {
				instance.bots = append(instance.bots, regex)
			}
		}
		for _, entry := range db.Desktop {
			if regex, err := pcre.Compile("(?i)" + entry.Regex); err == nil {
				instance.desktop = append(instance.desktop, regex)
			}
		}
	})
	return instance
}

// IsBot reports whether the user agent matches any known bot marker.
// An empty user agent is not treated as a bot.
func IsBot(userAgent string) bool {
	if userAgent == "" {
		return false
	}
	for _, regex := range getClassifier().bots {
		if regex.MatchString(userAgent) {
			return true
		}
	}
	return false
}

// DeviceLabel maps a user agent to its coarse device class.
func DeviceLabel(userAgent string) string {
	if userAgent == "" {
		return DeviceGeneric
	}
	for _, regex := range getClassifier().desktop {
		if regex.MatchString(userAgent) {
			return DeviceDesktop
		}
	}
	return DeviceGeneric
}
