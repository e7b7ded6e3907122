package domain

import "time"

type GeoLocation struct {
	Country   string  `json:"country"`
	City      string  `json:"city"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// AccessStat is one recorded frontend access. Location is nil whenever the
// GeoIP lookup failed or was unavailable; the write itself is never blocked.
type AccessStat struct {
	ID        string       `json:"-"`
	IP        string       `json:"ip"`
	Location  *GeoLocation `json:"location"`
	Timestamp time.Time    `json:"timestamp"`
}
