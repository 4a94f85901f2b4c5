//go:build dev

package mcplogdlog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"
)

const defaultSocket = "/tmp/mcplogd.sock"
const appName = "includesense"

type entry struct {
	App       string         `json:"app"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Timestamp string         `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewHandler wraps next so that every record is also sent to the local
// mcplogd socket. Delivery is best effort.
func NewHandler(next slog.Handler) slog.Handler {
	return &handler{next: next, socket: defaultSocket}
}

type handler struct {
	next   slog.Handler
	socket string
	// attrs are already qualified with the groups open when they were added.
	attrs  []slog.Attr
	groups []string
}

func (h *handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *handler) Handle(ctx context.Context, r slog.Record) error {
	h.send(r)
	return h.next.Handle(ctx, r)
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	qualified := append([]slog.Attr(nil), h.attrs...)
	prefix := h.prefix()
	for _, a := range attrs {
		a.Key = prefix + a.Key
		qualified = append(qualified, a)
	}
	return &handler{
		next:   h.next.WithAttrs(attrs),
		socket: h.socket,
		attrs:  qualified,
		groups: h.groups,
	}
}

func (h *handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &handler{
		next:   h.next.WithGroup(name),
		socket: h.socket,
		attrs:  h.attrs,
		groups: append(append([]string(nil), h.groups...), name),
	}
}

func (h *handler) prefix() string {
	if len(h.groups) == 0 {
		return ""
	}
	return strings.Join(h.groups, ".") + "."
}

// metadata flattens the handler and record attributes into dotted keys.
func (h *handler) metadata(r slog.Record) map[string]any {
	metadata := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		addAttr(metadata, "", a)
	}
	prefix := h.prefix()
	r.Attrs(func(a slog.Attr) bool {
		addAttr(metadata, prefix, a)
		return true
	})
	return metadata
}

func addAttr(metadata map[string]any, prefix string, a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		groupPrefix := prefix
		if a.Key != "" {
			groupPrefix = prefix + a.Key + "."
		}
		for _, ga := range v.Group() {
			addAttr(metadata, groupPrefix, ga)
		}
		return
	}
	if a.Key == "" {
		return
	}
	value := v.Any()
	if err, ok := value.(error); ok {
		value = err.Error()
	}
	metadata[prefix+a.Key] = value
}

func (h *handler) send(r slog.Record) {
	conn, err := net.Dial("unix", h.socket)
	if err != nil {
		return
	}
	defer conn.Close()

	e := entry{
		App:       appName,
		Level:     strings.ToLower(r.Level.String()),
		Message:   r.Message,
		Timestamp: r.Time.UTC().Format(time.RFC3339Nano),
		Metadata:  h.metadata(r),
	}
	data, _ := json.Marshal(e)
	fmt.Fprintf(conn, "%s\n", data)
}
