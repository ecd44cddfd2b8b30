// Package geoip resolves client IP addresses to coarse locations. The
// locator is loaded once at startup and read concurrently without locks.
package geoip

import "net"

// Location is the resolved geo data for one IP. All fields are nullable;
// a locator that knows nothing returns an empty Location, not an error.
type Location struct {
	CountryCode   *string
	CityName      *string
	ContinentCode *string
}

// Locator maps an IP address to a Location.
type Locator interface {
	Locate(ip net.IP) (Location, error)
}

// Noop is the locator for deployments without a geo database: every lookup
// resolves to an empty location.
type Noop struct{}

func NewNoop() *Noop {
	return &Noop{}
}

func (*Noop) Locate(net.IP) (Location, error) {
	return Location{}, nil
}

// Static is a fixed-answer Locator for tests.
type Static struct {
	Location Location
	Err      error
}

func (s Static) Locate(net.IP) (Location, error) {
	if s.Err != nil {
		return Location{}, s.Err
	}
	return s.Location, nil
}
