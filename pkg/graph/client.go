package graph

import (
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const inferredConfidence = 0.5

// GraphClient drives the consolidation pipeline for one or more
// documents: segmentation, parallel extraction, entity resolution and
// relation consolidation. It holds run-independent configuration;
// per-run state lives in the identity map threaded through a single
// ProcessDocument call.
//
// A GraphClient should be created using NewGraphClient.
type GraphClient struct {
	tokenEncoder     string
	maxUnitTokens    int
	overlapRunes     int
	parallelRequests int
	maxRetries       int
	retryBaseDelay   time.Duration
	aliasSimilarity  float64

	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// NewGraphClientParams defines the configuration parameters for creating
// a new GraphClient.
//
// TokenEncoder names the tiktoken encoding used when splitting long
// text documents. MaxUnitTokens enables token-budget splitting of
// text/web documents when > 0; PDFs always segment per page.
// OverlapRunes bounds the context fragments shared between adjacent
// units. ParallelRequests limits concurrent reasoning-service calls
// and RequestsPerSecond throttles them further (0 disables the
// throttle). AliasSimilarity is the minimum normalized edit-distance
// similarity for merging a mention into an existing entity of the
// same type.
type NewGraphClientParams struct {
	TokenEncoder      string
	MaxUnitTokens     int
	OverlapRunes      int
	ParallelRequests  int
	MaxRetries        int
	RetryBaseDelay    time.Duration
	RequestsPerSecond float64
	AliasSimilarity   float64
}

// NewGraphClient creates and returns a new GraphClient configured with
// the provided parameters.
//
// Example:
//
//	params := graph.NewGraphClientParams{
//		TokenEncoder:     "o200k_base",
//		ParallelRequests: 4,
//		MaxRetries:       3,
//	}
//	client := graph.NewGraphClient(params)
func NewGraphClient(params NewGraphClientParams) *GraphClient {
	if params.TokenEncoder == "" {
		params.TokenEncoder = "o200k_base"
	}
	if params.OverlapRunes <= 0 {
		params.OverlapRunes = 600
	}
	if params.ParallelRequests <= 0 {
		params.ParallelRequests = 4
	}
	if params.MaxRetries <= 0 {
		params.MaxRetries = 3
	}
	if params.RetryBaseDelay <= 0 {
		params.RetryBaseDelay = 500 * time.Millisecond
	}
	if params.AliasSimilarity <= 0 || params.AliasSimilarity > 1 {
		params.AliasSimilarity = 0.84
	}

	limit := rate.Inf
	if params.RequestsPerSecond > 0 {
		limit = rate.Limit(params.RequestsPerSecond)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "reasoning-service",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 8
		},
		Timeout: 30 * time.Second,
	})

	return &GraphClient{
		tokenEncoder:     params.TokenEncoder,
		maxUnitTokens:    params.MaxUnitTokens,
		overlapRunes:     params.OverlapRunes,
		parallelRequests: params.ParallelRequests,
		maxRetries:       params.MaxRetries,
		retryBaseDelay:   params.RetryBaseDelay,
		aliasSimilarity:  params.AliasSimilarity,
		limiter:          rate.NewLimiter(limit, 1),
		breaker:          breaker,
	}
}
