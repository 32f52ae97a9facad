package analytics

import (
	"time"

	"github.com/pariz/gountries"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"trackline/internal/events"
	"trackline/internal/pkg/useragent"
)

// VisitorSummary is one grouped row in the recent visitors table.
type VisitorSummary struct {
	IP       string    `json:"ip"`
	Count    int       `json:"count"`
	LastPath string    `json:"last_path"`
	LastSeen time.Time `json:"last_seen"`
	Country  string    `json:"country"`
	Device   string    `json:"device"`
}

// VisitorStats groups the recent event window by client address. The
// input is expected newest first, so the first event seen per address
// carries its latest path, country and user agent. Output keeps that
// most-recent-first ordering. When excludeIP is non-empty, events from
// that address are skipped.
func VisitorStats(recent []events.Event, excludeIP string) []VisitorSummary {
	caser := cases.Upper(language.AmericanEnglish)
	countries := gountries.New()

	var order []string
	grouped := make(map[string]*VisitorSummary)

	for _, e := range recent {
		ip := e.IPAddress
		if ip == "" {
			ip = events.UnknownIP
		}
		if excludeIP != "" && ip == excludeIP {
			continue
		}

		summary, ok := grouped[ip]
		if !ok {
			summary = &VisitorSummary{
				IP:       ip,
				LastPath: e.Path,
				LastSeen: e.CreatedAt,
				Country:  countryLabel(countries, caser, e.Country),
				Device:   useragent.DeviceLabel(e.UserAgent),
			}
			grouped[ip] = summary
			order = append(order, ip)
		}
		summary.Count++
	}

	results := make([]VisitorSummary, 0, len(order))
	for _, ip := range order {
		results = append(results, *grouped[ip])
	}
	return results
}

// countryLabel converts a stored ISO code into a display name.
func countryLabel(countries *gountries.Query, caser cases.Caser, code string) string {
	if code == "" {
		return "Unknown"
	}
	country, err := countries.FindCountryByAlpha(code)
	if err != nil {
		return caser.String(code)
	}
	return country.Name.Common
}
