package fetch

import "testing"

func TestConfig_Clamped(t *testing.T) {
	cases := []struct {
		name string
		in   Config
		want Config
	}{
		{
			name: "within bounds unchanged",
			in:   Config{MaxItemsPerFeed: 50, MaxDaysLookback: 7},
			want: Config{MaxItemsPerFeed: 50, MaxDaysLookback: 7},
		},
		{
			name: "items clamped up to minimum",
			in:   Config{MaxItemsPerFeed: 0, MaxDaysLookback: 7},
			want: Config{MaxItemsPerFeed: 1, MaxDaysLookback: 7},
		},
		{
			name: "items clamped down to maximum",
			in:   Config{MaxItemsPerFeed: 500, MaxDaysLookback: 7},
			want: Config{MaxItemsPerFeed: 100, MaxDaysLookback: 7},
		},
		{
			name: "lookback floored at 1",
			in:   Config{MaxItemsPerFeed: 50, MaxDaysLookback: 0},
			want: Config{MaxItemsPerFeed: 50, MaxDaysLookback: 1},
		},
	}

	for _, c := range cases {
		got := c.in.Clamped()
		if got.MaxItemsPerFeed != c.want.MaxItemsPerFeed || got.MaxDaysLookback != c.want.MaxDaysLookback {
			t.Errorf("%s: Clamped() = %+v, want %+v", c.name, got, c.want)
		}
	}
}
