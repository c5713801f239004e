package relay

import (
	"fmt"

	"github.com/naseer2426/telegram-proxy/internal/geo"
)

// ClientInfo describes the caller of a relayed request.
type ClientInfo struct {
	IP string
	OS string
	geo.Location
}

// Block renders the metadata appended to every relayed text and caption.
// Downstream consumers parse this layout; keep it byte for byte.
func (c ClientInfo) Block() string {
	return fmt.Sprintf("\n--- Client Info ---\nIP: %s\nLocation: %s, %s\nISP: %s\nOS: %s\n",
		orUnknown(c.IP), c.Country, c.City, orUnknown(c.ISP), c.OS)
}

func orUnknown(s string) string {
	if s == "" {
		return geo.Unknown
	}
	return s
}
