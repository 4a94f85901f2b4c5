package watch

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/LegacyCodeHQ/includesense/headerindex"
)

// broker manages SSE client connections and broadcasts index events.
type broker struct {
	mu      sync.Mutex
	clients map[chan string]struct{}
	latest  string
}

func newBroker() *broker {
	return &broker{
		clients: make(map[chan string]struct{}),
	}
}

func (b *broker) subscribe() chan string {
	ch := make(chan string, 1)
	b.mu.Lock()
	b.clients[ch] = struct{}{}
	if b.latest != "" {
		ch <- b.latest
	}
	b.mu.Unlock()
	return ch
}

func (b *broker) unsubscribe(ch chan string) {
	b.mu.Lock()
	delete(b.clients, ch)
	close(ch)
	b.mu.Unlock()
}

func (b *broker) publish(data string) {
	b.mu.Lock()
	b.latest = data
	for ch := range b.clients {
		select {
		case ch <- data:
		default:
			// Slow client: replace its pending event with the newest one.
			select {
			case <-ch:
			default:
			}
			ch <- data
		}
	}
	b.mu.Unlock()
}

// publishSnapshot encodes snap as an index event and broadcasts it.
func (b *broker) publishSnapshot(snap *headerindex.Snapshot, reason string) error {
	data, err := json.Marshal(newIndexEvent(snap, reason))
	if err != nil {
		return fmt.Errorf("failed to encode index event: %w", err)
	}
	b.publish(string(data))
	return nil
}

func newServer(b *broker, indexer *headerindex.Indexer, port int) *http.Server {
	return &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: newMux(b, indexer),
	}
}

func newMux(b *broker, indexer *headerindex.Indexer) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc(routeIndex, handleIndex)
	mux.HandleFunc(routeHeaders, handleHeaders(indexer))
	mux.HandleFunc(routeComplete, handleComplete(indexer))
	mux.HandleFunc(routeEvents, handleSSE(b))
	return mux
}

func handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != routeIndex {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write([]byte(indexHTML)); err != nil {
		http.Error(w, "failed to render page", http.StatusInternalServerError)
	}
}

func handleHeaders(indexer *headerindex.Indexer) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		snap := indexer.Snapshot()
		writeJSON(w, headersResponse{ID: snap.ID, Headers: snap.SortedLabels()})
	}
}

func handleComplete(indexer *headerindex.Indexer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		column := -1
		if raw := query.Get("column"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				http.Error(w, fmt.Sprintf("invalid column %q", raw), http.StatusBadRequest)
				return
			}
			column = n
		}

		items := indexer.Complete(query.Get("line"), column)
		if items == nil {
			items = []string{}
		}
		writeJSON(w, completeResponse{Items: items})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

func handleSSE(b *broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		ch := b.subscribe()
		defer b.unsubscribe(ch)

		ctx := r.Context()
		for {
			select {
			case <-ctx.Done():
				return
			case data, ok := <-ch:
				if !ok {
					return
				}
				fmt.Fprintf(w, "event: %s\n", sseEventIndex)
				for _, line := range strings.Split(data, "\n") {
					fmt.Fprintf(w, "data: %s\n", line)
				}
				fmt.Fprintf(w, "\n")
				flusher.Flush()
			}
		}
	}
}
