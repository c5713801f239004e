package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

var _ Locator = &IPAPI{}

// ipAPIResponse is the subset of the ip-api.com JSON we read.
type ipAPIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Country string `json:"country"`
	City    string `json:"city"`
	ISP     string `json:"isp"`
}

// IPAPI looks IPs up against the free ip-api.com endpoint. The service is
// unauthenticated and rate limited.
type IPAPI struct {
	client *resty.Client
	log    *zap.SugaredLogger
}

func NewIPAPI(baseURL string, timeout time.Duration, log *zap.SugaredLogger) *IPAPI {
	return &IPAPI{
		client: resty.New().SetBaseURL(baseURL).SetTimeout(timeout),
		log:    log,
	}
}

// Lookup resolves ip. Loopback addresses short-circuit to Localhost without a
// network call; any lookup failure is logged and degrades to Unknown.
func (g *IPAPI) Lookup(ctx context.Context, requestID string, ip string) Location {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		g.log.Warnw("skipping geo lookup for unparseable ip", "request_id", requestID, "ip", ip)
		return unknownLocation
	}
	if parsed.IsLoopback() {
		return localhostLocation
	}

	loc, err := g.lookup(ctx, requestID, parsed.String())
	if err != nil {
		g.log.Warnw("geo lookup failed", "request_id", requestID, "ip", ip, "error", err)
		return unknownLocation
	}
	return loc
}

func (g *IPAPI) lookup(ctx context.Context, requestID, ip string) (Location, error) {
	resp, err := g.client.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", requestID).
		SetPathParam("ip", ip).
		Get("/json/{ip}")
	if err != nil {
		return Location{}, fmt.Errorf("http call to ip-api failed: %w", err)
	}

	if !resp.IsSuccess() {
		return Location{}, fmt.Errorf("ip-api returned non-2xx status: %d", resp.StatusCode())
	}

	var body ipAPIResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return Location{}, fmt.Errorf("failed to unmarshal ip-api response: %w", err)
	}
	if body.Status != "success" {
		return Location{}, fmt.Errorf("ip-api status %q: %s", body.Status, body.Message)
	}

	return Location{
		Country: body.Country,
		City:    body.City,
		ISP:     body.ISP,
	}, nil
}
