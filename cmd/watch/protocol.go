package watch

import (
	"time"

	"github.com/LegacyCodeHQ/includesense/headerindex"
)

const (
	routeIndex    = "/"
	routeHeaders  = "/headers"
	routeComplete = "/complete"
	routeEvents   = "/events"
)

const sseEventIndex = "index"

// indexEvent is the wire payload for SSE "index" events, sent after every
// published load.
type indexEvent struct {
	ID       uint64    `json:"id"`
	LoadedAt time.Time `json:"loadedAt"`
	Reason   string    `json:"reason"`
	Headers  int       `json:"headers"`
	Errors   []string  `json:"errors"`
}

func newIndexEvent(snap *headerindex.Snapshot, reason string) indexEvent {
	errs := make([]string, 0, len(snap.Report.Errors))
	for _, err := range snap.Report.Errors {
		errs = append(errs, err.Error())
	}
	return indexEvent{
		ID:       snap.ID,
		LoadedAt: snap.LoadedAt,
		Reason:   reason,
		Headers:  len(snap.Entries),
		Errors:   errs,
	}
}

// headersResponse is served at routeHeaders.
type headersResponse struct {
	ID      uint64   `json:"id"`
	Headers []string `json:"headers"`
}

// completeResponse is served at routeComplete.
type completeResponse struct {
	Items []string `json:"items"`
}
