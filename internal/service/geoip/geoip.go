// Package geoip resolves client IPs against a local GeoLite2-City database.
// Lookups are strictly best-effort: a missing database or an unresolvable IP
// yields a nil location, never an error that blocks the caller's write.
package geoip

import (
	"log"
	"net"

	"github.com/oschwald/geoip2-golang"

	"github.com/jeannegris/equora/internal/domain"
)

type Resolver struct {
	reader *geoip2.Reader
}

// Open returns a Resolver even when the database cannot be opened; in that
// case every lookup returns nil.
func Open(path string) *Resolver {
	if path == "" {
		return &Resolver{}
	}
	reader, err := geoip2.Open(path)
	if err != nil {
		log.Printf("[geoip] database unavailable at %s: %v", path, err)
		return &Resolver{}
	}
	return &Resolver{reader: reader}
}

func (r *Resolver) Close() {
	if r.reader != nil {
		_ = r.reader.Close()
	}
}

// Lookup returns nil for private, malformed or unknown addresses.
func (r *Resolver) Lookup(ip string) *domain.GeoLocation {
	if r.reader == nil {
		return nil
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return nil
	}
	rec, err := r.reader.City(parsed)
	if err != nil || rec == nil {
		return nil
	}
	if rec.Location.Latitude == 0 && rec.Location.Longitude == 0 && rec.City.Names["en"] == "" {
		return nil
	}
	return &domain.GeoLocation{
		Country:   rec.Country.Names["en"],
		City:      rec.City.Names["en"],
		Latitude:  rec.Location.Latitude,
		Longitude: rec.Location.Longitude,
	}
}
