package guard

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sihabxd/OnlineHub/classify"
)

// Availability is the outcome of a reachability probe. Unknown never blocks
// admission or playback; callers only annotate.
type Availability int

const (
	Unknown Availability = iota
	Available
	Unavailable
)

func (a Availability) String() string {
	switch a {
	case Available:
		return "available"
	case Unavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// DefaultProbeTimeout bounds one availability probe.
const DefaultProbeTimeout = 5 * time.Second

// Prober performs best-effort reachability checks against a platform's
// thumbnail CDN, or the raw URL for direct media.
type Prober struct {
	client  *http.Client
	timeout time.Duration
}

// NewProber creates a prober. A nil client uses a default with the probe
// timeout; a non-positive timeout uses DefaultProbeTimeout.
func NewProber(client *http.Client, timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &Prober{client: client, timeout: timeout}
}

// probeURL picks the cheapest URL that indicates the video exists. Data-URI
// placeholders carry no signal, so those platforms probe nothing.
func probeURL(v classify.Video) string {
	if v.Platform == classify.PlatformDirect {
		return v.OriginalURL
	}
	if strings.HasPrefix(v.ThumbnailURL, "http://") || strings.HasPrefix(v.ThumbnailURL, "https://") {
		return v.ThumbnailURL
	}
	return ""
}

// Check probes the video's platform for reachability. Network errors and
// timeouts resolve to Unknown, never an error.
func (p *Prober) Check(ctx context.Context, v classify.Video) Availability {
	target := probeURL(v)
	if target == "" {
		return Unknown
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	status, err := p.request(ctx, http.MethodHead, target)
	if err == nil && status == http.StatusMethodNotAllowed {
		status, err = p.request(ctx, http.MethodGet, target)
	}
	if err != nil {
		slog.Warn("availability probe inconclusive", "platform", v.Platform, "err", err)
		return Unknown
	}

	switch {
	case status >= 200 && status < 400:
		return Available
	case status == http.StatusNotFound || status == http.StatusGone:
		return Unavailable
	default:
		return Unknown
	}
}

func (p *Prober) request(ctx context.Context, method, target string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return 0, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	_ = resp.Body.Close()
	return resp.StatusCode, nil
}
