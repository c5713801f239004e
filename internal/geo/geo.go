package geo

import "context"

const (
	Localhost = "Localhost"
	Unknown   = "Unknown"
)

// Location is the coarse position of a client IP. ISP is empty when the
// lookup did not produce one.
type Location struct {
	Country string
	City    string
	ISP     string
}

var (
	localhostLocation = Location{Country: Localhost, City: Localhost}
	unknownLocation   = Location{Country: Unknown, City: Unknown}
)

// Locator resolves an IP to a Location. Lookup never fails: when the IP
// cannot be resolved it returns a placeholder Location instead.
type Locator interface {
	Lookup(ctx context.Context, requestID string, ip string) Location
}
