package model

import (
	"encoding/json"
	"time"
)

// RunKind names which scorer produced a saved run.
type RunKind string

const (
	RunEquity   RunKind = "equity"
	RunMetrics  RunKind = "metrics"
	RunDistress RunKind = "distress"
	RunTriage   RunKind = "triage"
)

// RunKinds lists every kind in display order.
var RunKinds = []RunKind{RunEquity, RunMetrics, RunDistress, RunTriage}

// Valid reports whether k is a known kind.
func (k RunKind) Valid() bool {
	for _, known := range RunKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Run is one persisted scoring pass. Payload holds the full result records
// as JSON; Scores holds one row per scored entity in result order.
type Run struct {
	ID          string          `json:"id" yaml:"id"`
	Kind        RunKind         `json:"kind" yaml:"kind"`
	RecordCount int             `json:"record_count" yaml:"record_count"`
	CreatedAt   time.Time       `json:"created_at" yaml:"created_at"`
	Payload     json.RawMessage `json:"payload,omitempty" yaml:"-"`
	Scores      []RunScore      `json:"scores,omitempty" yaml:"scores,omitempty"`
}

// RunScore is the per-entity summary row stored alongside a run.
type RunScore struct {
	Key      string  `json:"key" yaml:"key"`
	Score    float64 `json:"score" yaml:"score"`
	Centroid LatLon  `json:"centroid" yaml:"centroid"`
}
