package postprocess

import (
	"testing"
	"time"

	"github.com/matzehuels/impred/pkg/geom"
	"github.com/matzehuels/impred/pkg/graph"
	"github.com/matzehuels/impred/pkg/impred"
)

func TestMinIterationTime(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var slept []time.Duration
	pace := &MinIterationTime{
		Min: 100 * time.Millisecond,
		Now: func() time.Time { return clock },
		Sleep: func(d time.Duration) {
			slept = append(slept, d)
			clock = clock.Add(d)
		},
	}

	g := graph.New()
	graph.Positions(g).Set(g.AddNode(), geom.Vec{})
	e, err := impred.New(g, impred.Options{PostProcessing: []impred.PostProcessor{pace}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	advance := []time.Duration{0, 30 * time.Millisecond, 250 * time.Millisecond, 100 * time.Millisecond}
	for _, d := range advance {
		clock = clock.Add(d)
		if err := e.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}

	want := []time.Duration{70 * time.Millisecond}
	if len(slept) != len(want) || slept[0] != want[0] {
		t.Errorf("slept %v, want %v", slept, want)
	}
}
