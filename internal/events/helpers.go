package events

import (
	"log/slog"
	"net"
	"strings"

	"trackline/internal/pkg/geoip"
)

// GetCountryFromIP resolves an IP address to an uppercase ISO country
// code, or "" when the GeoIP database is unavailable or has no match.
func GetCountryFromIP(ipAddress string) string {
	logger := slog.Default()

	geoDB := geoip.GetGeoDB()
	if geoDB == nil {
		return ""
	}

	ip := net.ParseIP(ipAddress)
	if ip == nil {
		return ""
	}

	record, err := geoDB.Country(ip)
	if err != nil {
		logger.Debug("GeoIP lookup failed",
			slog.String("ip_address", ipAddress),
			slog.Any("error", err))
		return ""
	}

	if record.Country.IsoCode == "" || record.Country.IsoCode == "--" {
		return ""
	}

	return strings.ToUpper(record.Country.IsoCode)
}
