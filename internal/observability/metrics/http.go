package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Transport wraps next so every explorer request is counted and timed by
// status code. With metrics disabled next is returned unchanged.
func Transport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	if !enabled {
		return next
	}

	return promhttp.InstrumentRoundTripperCounter(explorerRequestsTotal,
		promhttp.InstrumentRoundTripperDuration(explorerDuration, next),
	)
}
