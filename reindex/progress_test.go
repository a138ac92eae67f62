package reindex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker(t *testing.T) {
	t.Run("reports at interval", func(t *testing.T) {
		var buf strings.Builder
		tracker := NewProgressTracker(&buf, 100, 10)
		tracker.Start()

		tracker.Increment(5)
		assert.Empty(t, buf.String(), "below interval, no report yet")

		tracker.Increment(5)
		assert.Contains(t, buf.String(), "10/100")
	})

	t.Run("finish reports completion", func(t *testing.T) {
		var buf strings.Builder
		tracker := NewProgressTracker(&buf, 50, 100)
		tracker.Start()
		tracker.Increment(20)
		tracker.Finish()

		assert.Contains(t, buf.String(), "50/50")
		assert.Contains(t, buf.String(), "100.0%")
	})

	t.Run("caps at total", func(t *testing.T) {
		var buf strings.Builder
		tracker := NewProgressTracker(&buf, 10, 1)
		tracker.Start()
		tracker.Increment(25)

		assert.Contains(t, buf.String(), "10/10")
	})

	t.Run("ignores updates before start", func(t *testing.T) {
		var buf strings.Builder
		tracker := NewProgressTracker(&buf, 10, 1)
		tracker.Increment(5)
		assert.Empty(t, buf.String())
	})
}
