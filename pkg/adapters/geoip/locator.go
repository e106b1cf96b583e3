// Package geoip resolves click IPs to ISO country codes using a MaxMind
// database. Without a database every lookup misses.
package geoip

import (
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
	"go.uber.org/zap"

	"github.com/hkunkun/hkun-links/pkg/ports"
)

type countryReader interface {
	Country(ip net.IP) (*geoip2.Country, error)
	Close() error
}

type Locator struct {
	reader countryReader
	logger *zap.Logger
}

// Open loads the database at path. An empty path returns a disabled locator.
func Open(path string, logger *zap.Logger) (*Locator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path == "" {
		logger.Info("GeoIP: no database configured, country lookups disabled")
		return &Locator{logger: logger}, nil
	}

	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geoip database %s: %w", path, err)
	}
	meta := reader.Metadata()
	logger.Info("GeoIP: loaded database", zap.String("path", path), zap.Uint("epoch", meta.BuildEpoch))
	return &Locator{reader: reader, logger: logger}, nil
}

// Country returns the ISO code for ip, or false when unknown.
func (l *Locator) Country(ip string) (string, bool) {
	if l == nil || l.reader == nil {
		return "", false
	}
	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.IsLoopback() || parsed.IsPrivate() {
		return "", false
	}

	record, err := l.reader.Country(parsed)
	if err != nil {
		l.logger.Debug("GeoIP: lookup failed", zap.String("ip", ip), zap.Error(err))
		return "", false
	}
	if record.Country.IsoCode == "" {
		return "", false
	}
	return record.Country.IsoCode, true
}

func (l *Locator) Close() error {
	if l == nil || l.reader == nil {
		return nil
	}
	return l.reader.Close()
}

var _ ports.CountryLocator = (*Locator)(nil)
