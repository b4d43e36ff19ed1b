package config

import "testing"

func TestParseSymbols(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want map[string]string
	}{
		{
			name: "standard pairs",
			raw:  "BTCUSD:bitcoin,ETHUSD:ethereum",
			want: map[string]string{"BTCUSD": "bitcoin", "ETHUSD": "ethereum"},
		},
		{
			name: "whitespace tolerated",
			raw:  " BTCUSD:bitcoin , ETHUSD:ethereum ",
			want: map[string]string{"BTCUSD": "bitcoin", "ETHUSD": "ethereum"},
		},
		{
			name: "malformed pairs skipped",
			raw:  "BTCUSD:bitcoin,broken,:empty,also:",
			want: map[string]string{"BTCUSD": "bitcoin"},
		},
		{
			name: "empty input",
			raw:  "",
			want: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseSymbols(tt.raw)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d symbols, want %d", len(got), len(tt.want))
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("symbol %s = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	got := splitList("http://a.example/hook, http://b.example/hook ,")
	if len(got) != 2 || got[0] != "http://a.example/hook" || got[1] != "http://b.example/hook" {
		t.Errorf("splitList = %v", got)
	}
	if splitList("") != nil {
		t.Error("splitList of empty string should be nil")
	}
}

func TestMemoryConfigSweepInterval(t *testing.T) {
	m := MemoryConfig{SweepIntervalMinutes: 5}
	if got := m.SweepInterval().Minutes(); got != 5 {
		t.Errorf("SweepInterval = %v minutes, want 5", got)
	}
}
