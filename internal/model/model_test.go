package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBatchMetrics(t *testing.T) {
	m := BatchMetrics{
		Questions:    8,
		Grounded:     6,
		TotalLatency: 4 * time.Second,
	}

	assert.InDelta(t, 0.75, m.GroundedRate(), 1e-9)
	assert.InDelta(t, 75.0, m.Accuracy(), 1e-9)
	assert.Equal(t, 500*time.Millisecond, m.AvgLatency())
}

func TestBatchMetrics_EmptyBatch(t *testing.T) {
	var m BatchMetrics

	assert.Zero(t, m.GroundedRate())
	assert.Zero(t, m.Accuracy())
	assert.Zero(t, m.AvgLatency())
}
