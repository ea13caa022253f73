package booster

import (
	"errors"
	"math"
	"testing"

	"github.com/ramonehamilton/mtg-sorter/internal/events"
)

const tolerance = 1e-6

func TestComputeProbabilities(t *testing.T) {
	tests := []struct {
		name        string
		cfg         Configuration
		want        map[string]float64
		wantNotices []events.NoticeKind
	}{
		{
			name: "single sheet two cards",
			cfg: Configuration{
				Name: "default",
				Sheets: map[string]PrintSheet{
					"common": {CardWeights: map[string]int{"A": 2, "B": 1}, TotalWeight: 3},
				},
				PicksPerSheet: map[string]int{"common": 10},
			},
			want: map[string]float64{
				"A": 2.0 / 3.0 * 10,
				"B": 1.0 / 3.0 * 10,
			},
		},
		{
			name: "card on multiple sheets accumulates",
			cfg: Configuration{
				Name: "default",
				Sheets: map[string]PrintSheet{
					"common": {CardWeights: map[string]int{"A": 1, "B": 1}, TotalWeight: 2},
					"foil":   {CardWeights: map[string]int{"A": 1, "C": 3}, TotalWeight: 4},
				},
				PicksPerSheet: map[string]int{"common": 8, "foil": 1},
			},
			want: map[string]float64{
				"A": 0.5*8 + 0.25*1,
				"B": 0.5 * 8,
				"C": 0.75 * 1,
			},
		},
		{
			name: "declared totalWeight mismatch uses computed sum",
			cfg: Configuration{
				Name: "default",
				Sheets: map[string]PrintSheet{
					"rare": {CardWeights: map[string]int{"R1": 1, "R2": 1}, TotalWeight: 100},
				},
				PicksPerSheet: map[string]int{"rare": 1},
			},
			want: map[string]float64{
				"R1": 0.5,
				"R2": 0.5,
			},
			wantNotices: []events.NoticeKind{events.NoticeWeightMismatch},
		},
		{
			name: "zero weight sheet contributes nothing",
			cfg: Configuration{
				Name: "default",
				Sheets: map[string]PrintSheet{
					"common": {CardWeights: map[string]int{"A": 1}, TotalWeight: 1},
					"empty":  {CardWeights: map[string]int{}, TotalWeight: 0},
				},
				PicksPerSheet: map[string]int{"common": 3, "empty": 0},
			},
			want: map[string]float64{
				"A": 3,
			},
			wantNotices: []events.NoticeKind{events.NoticeZeroWeightSheet},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, notices, err := ComputeProbabilities(tt.cfg)
			if err != nil {
				t.Fatalf("ComputeProbabilities() error = %v", err)
			}

			if len(got) != len(tt.want) {
				t.Errorf("got %d entries, want %d", len(got), len(tt.want))
			}
			for cardID, want := range tt.want {
				if math.Abs(got[cardID]-want) > tolerance {
					t.Errorf("probability[%s] = %v, want %v", cardID, got[cardID], want)
				}
			}

			if len(notices) != len(tt.wantNotices) {
				t.Fatalf("got %d notices (%v), want %d", len(notices), notices, len(tt.wantNotices))
			}
			for i, kind := range tt.wantNotices {
				if notices[i].Kind != kind {
					t.Errorf("notice[%d].Kind = %s, want %s", i, notices[i].Kind, kind)
				}
			}
		})
	}
}

func TestComputeProbabilitiesSumsToPackSize(t *testing.T) {
	cfg := Configuration{
		Name: "draft",
		Sheets: map[string]PrintSheet{
			"common":   {CardWeights: map[string]int{"c1": 5, "c2": 3, "c3": 2}},
			"uncommon": {CardWeights: map[string]int{"u1": 1, "u2": 1, "u3": 1}},
			"rare":     {CardWeights: map[string]int{"r1": 7, "r2": 1}},
		},
		PicksPerSheet: map[string]int{"common": 10, "uncommon": 3, "rare": 1},
	}

	probs, notices, err := ComputeProbabilities(cfg)
	if err != nil {
		t.Fatalf("ComputeProbabilities() error = %v", err)
	}
	if len(notices) != 0 {
		t.Fatalf("unexpected notices: %v", notices)
	}

	sum := 0.0
	for _, p := range probs {
		sum += p
	}
	want := float64(cfg.ExpectedPackSize())
	if math.Abs(sum-want) > tolerance {
		t.Errorf("probabilities sum to %v, want %v", sum, want)
	}
}

func TestComputeProbabilitiesDanglingSheet(t *testing.T) {
	cfg := Configuration{
		Name: "default",
		Sheets: map[string]PrintSheet{
			"common": {CardWeights: map[string]int{"A": 1}},
		},
		PicksPerSheet: map[string]int{"common": 10, "mythic": 1},
	}

	_, _, err := ComputeProbabilities(cfg)
	if err == nil {
		t.Fatal("expected error for dangling sheet reference")
	}

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error = %v, want *ConfigError", err)
	}
	if cfgErr.Sheet != "mythic" {
		t.Errorf("ConfigError.Sheet = %q, want %q", cfgErr.Sheet, "mythic")
	}
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name     string
		configs  map[string]Configuration
		wantName string
		wantOK   bool
	}{
		{
			name: "prefers default",
			configs: map[string]Configuration{
				"draft":   {Name: "draft"},
				"default": {Name: "default"},
				"set":     {Name: "set"},
			},
			wantName: "default",
			wantOK:   true,
		},
		{
			name: "falls back to draft",
			configs: map[string]Configuration{
				"set":   {Name: "set"},
				"draft": {Name: "draft"},
			},
			wantName: "draft",
			wantOK:   true,
		},
		{
			name: "first name in lexicographic order otherwise",
			configs: map[string]Configuration{
				"set":       {Name: "set"},
				"collector": {Name: "collector"},
			},
			wantName: "collector",
			wantOK:   true,
		},
		{
			name:    "no configurations",
			configs: map[string]Configuration{},
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Select(tt.configs)
			if ok != tt.wantOK {
				t.Fatalf("Select() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got.Name != tt.wantName {
				t.Errorf("Select() = %q, want %q", got.Name, tt.wantName)
			}
		})
	}
}
