// Package keepalive periodically pings the deployment's own health
// endpoint so free-tier hosts don't idle the process.
package keepalive

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Start launches the ping loop in a detached goroutine. It does nothing
// when disabled or when no application URL is configured.
func Start(enabled bool, appURL string, interval time.Duration) {
	if !enabled || strings.TrimSpace(appURL) == "" {
		return
	}

	base := strings.TrimSpace(appURL)
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	target := strings.TrimRight(base, "/") + "/health"

	go func() {
		client := &http.Client{Timeout: 30 * time.Second}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			resp, err := client.Get(target)
			if err != nil {
				log.Warn().Err(err).Str("url", target).Msg("keep-alive ping error")
				continue
			}
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				log.Debug().Str("url", target).Msg("keep-alive ping successful")
			} else {
				log.Warn().Int("status", resp.StatusCode).Str("url", target).Msg("keep-alive ping failed")
			}
		}
	}()
	log.Info().Dur("interval", interval).Str("url", target).Msg("keep-alive service started")
}
