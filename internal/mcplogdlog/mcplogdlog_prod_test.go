//go:build !dev

package mcplogdlog

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewHandlerReturnsNextOutsideDevBuilds(t *testing.T) {
	next := slog.NewTextHandler(io.Discard, nil)

	assert.Same(t, next, NewHandler(next))
}
