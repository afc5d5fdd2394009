package fetch

// Config bounds every fetcher's cost. MaxItemsPerFeed is clamped to
// [1,100]; MaxDaysLookback must be at least 1. These are the hard
// cost-control invariants spec.md §4.C calls out: violating them could
// produce large LLM bills.
type Config struct {
	MaxItemsPerFeed int
	MaxDaysLookback int
	RequestTimeout  int // seconds
}

// DefaultConfig mirrors spec.md §6's documented defaults.
func DefaultConfig() Config {
	return Config{
		MaxItemsPerFeed: 50,
		MaxDaysLookback: 7,
		RequestTimeout:  30,
	}
}

// Clamped returns a copy of c with MaxItemsPerFeed clamped to [1,100] and
// MaxDaysLookback floored at 1.
func (c Config) Clamped() Config {
	if c.MaxItemsPerFeed < 1 {
		c.MaxItemsPerFeed = 1
	}
	if c.MaxItemsPerFeed > 100 {
		c.MaxItemsPerFeed = 100
	}
	if c.MaxDaysLookback < 1 {
		c.MaxDaysLookback = 1
	}
	return c
}
