package session

import (
	"testing"

	"github.com/josephgoksu/cascade/internal/effects"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{"", DefaultMode, false},
		{"red-team", ModeRedTeam, false},
		{"  Stress-Test ", ModeStressTest, false},
		{"temporal-sim", ModeTemporalSim, false},
		{"chaos", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMode(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestModes_Count(t *testing.T) {
	if got := len(Modes()); got != 13 {
		t.Errorf("len(Modes()) = %d, want 13", got)
	}
}

func TestSeeds_IDs(t *testing.T) {
	s := Seeds{Concepts: []string{"a"}, Patterns: []string{"b"}, Practices: []string{"c"}}
	got := s.IDs()
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("IDs() = %v", got)
	}
	if (Seeds{}).IsEmpty() != true {
		t.Error("Expected empty seeds")
	}
}

func TestSession_AllNodesAndLatestDeepDive(t *testing.T) {
	s := &Session{
		EffectGraph: effects.Graph{Nodes: []effects.Node{{ID: "e1"}}},
		DeepDives: []effects.DeepDiveRecord{
			{ID: "d1", Level: effects.LevelSecondary, Effects: []effects.Node{{ID: "s1"}}},
			{ID: "d2", Level: effects.LevelTertiary, Effects: []effects.Node{{ID: "t1"}}},
		},
	}

	nodes := s.AllNodes()
	if len(nodes) != 3 || nodes[2].ID != "t1" {
		t.Errorf("AllNodes() = %v", nodes)
	}

	if dd, ok := s.LatestDeepDive(effects.LevelSecondary); !ok || dd.ID != "d1" {
		t.Errorf("LatestDeepDive(secondary) = %v, %v", dd, ok)
	}
	if _, ok := (&Session{}).LatestDeepDive(effects.LevelSecondary); ok {
		t.Error("Expected no deep dive on empty session")
	}
}
