package geoip

import (
	"fmt"
	"net"
	"sync"

	"github.com/oschwald/geoip2-golang"
	"go.uber.org/zap"
)

type cityReader interface {
	City(ip net.IP) (*geoip2.City, error)
	Close() error
}

// Locator resolves client IPs to a country ISO code and a city name using a
// MaxMind GeoLite2/GeoIP2 City database. A Locator without a database
// answers every lookup with nils.
type Locator struct {
	mu     sync.RWMutex
	reader cityReader
	log    *zap.Logger
}

// Open loads the database at path. An empty path yields a disabled locator.
func Open(path string, log *zap.Logger) (*Locator, error) {
	l := &Locator{log: log}
	if path == "" {
		log.Info("geoip database not configured, location lookups disabled")
		return l, nil
	}

	reader, err := geoip2.Open(path)
	if err != nil {
		return l, fmt.Errorf("failed to open geoip database: %w", err)
	}
	l.reader = reader

	meta := reader.Metadata()
	log.Info("geoip database loaded",
		zap.String("path", path),
		zap.String("type", meta.DatabaseType),
		zap.Uint("build_epoch", meta.BuildEpoch))

	return l, nil
}

// Lookup returns the ISO country code and English city name for ip.
func (l *Locator) Lookup(ip string) (country, city *string) {
	if l == nil {
		return nil, nil
	}

	l.mu.RLock()
	reader := l.reader
	l.mu.RUnlock()

	if reader == nil {
		return nil, nil
	}

	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() {
		return nil, nil
	}

	record, err := reader.City(parsed)
	if err != nil {
		l.log.Debug("geoip lookup failed", zap.String("ip", ip), zap.Error(err))
		return nil, nil
	}

	if code := record.Country.IsoCode; code != "" {
		country = &code
	}
	if name, ok := record.City.Names["en"]; ok && name != "" {
		city = &name
	}

	return country, city
}

// Close releases the underlying database.
func (l *Locator) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.reader == nil {
		return nil
	}
	err := l.reader.Close()
	l.reader = nil
	return err
}
