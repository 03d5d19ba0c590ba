package hashtable

import "go.uber.org/zap"

// config collects every tunable exposed to the embedder (§6), built
// up by Option functions before a Map is constructed from it.
type config struct {
	initialCapacity    int
	stealBatch         int
	maxStealScan       int
	promotionThreshold int
	demotionThreshold  int
	logger             *zap.Logger
}

func defaultConfig() config {
	return config{
		initialCapacity:    10,
		stealBatch:         1,
		maxStealScan:       300,
		promotionThreshold: 10,
		demotionThreshold:  3,
		logger:             zap.NewNop(),
	}
}

// Option configures a Map at construction time.
type Option func(*config)

// WithInitialCapacity sets the capacity of the map's first table.
// The default is 10.
func WithInitialCapacity(n int) Option {
	return func(c *config) { c.initialCapacity = n }
}

// WithStealBatch sets how many elements are migrated from the old
// table to the current one on each mutating call while rehashing.
// The default is 1.
func WithStealBatch(n int) Option {
	return func(c *config) { c.stealBatch = n }
}

// WithMaxStealScan caps how many buckets FixedTable.steal will visit
// in a single call, bounding worst-case per-call latency when the
// table being drained is sparse. The default is 300.
func WithMaxStealScan(n int) Option {
	return func(c *config) { c.maxStealScan = n }
}

// WithPromotionThreshold sets the bucket size at which a bucket
// switches from list to tree representation. The default is 10.
func WithPromotionThreshold(n int) Option {
	return func(c *config) { c.promotionThreshold = n }
}

// WithDemotionThreshold sets the bucket size at or below which a
// tree-regime bucket switches back to list representation. The
// default is 3.
func WithDemotionThreshold(n int) Option {
	return func(c *config) { c.demotionThreshold = n }
}

// WithLogger sets the structured logger used for resize diagnostics
// ("begin resize" and "rehash complete"), at Debug level. Bucket
// promotion and demotion are not logged. The default is a no-op
// logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}
