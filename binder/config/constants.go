package config

import "time"

// Database and Performance Constants
const (
	DefaultQueryTimeout = 30 * time.Second
	SearchTimeout       = 10 * time.Second
	ImportTimeout       = 5 * time.Minute

	// Batch processing
	ImportBatchSize = 500
)

// Search and Filter Constants
const (
	MaxSuggestions   = 10
	SuggestCacheSize = 512
	MaxSearchResults = 1000
)
