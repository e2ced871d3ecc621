package keepalive

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// HealthCheck issues a plain GET against the target URL with a short
// timeout and returns the status code. The probe treats any failure here as
// advisory only.
func HealthCheck(ctx context.Context, client *http.Client, url string, timeout time.Duration) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, eris.Wrap(err, "keepalive: create health request")
	}
	req.Header.Set("User-Agent", "stress-screen-keepalive/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return 0, eris.Wrap(err, "keepalive: health request")
	}
	defer resp.Body.Close() //nolint:errcheck
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, eris.Errorf("keepalive: health check returned %d", resp.StatusCode)
	}
	return resp.StatusCode, nil
}
