package workflow

import (
	"time"

	"github.com/spigell/career-boost/internal/parsing"
)

const DefaultTimeout = 60 * time.Second

// CallPolicy controls a single AI call site.
type CallPolicy struct {
	MaxOutputTokens int
	// Attempts is the total number of calls made, at least 1.
	Attempts   int
	RetryDelay time.Duration
	// RetryInvalid also retries responses that fail parsing or schema validation.
	RetryInvalid bool
}

type Config struct {
	// Timeout bounds every AI call. Expiry is reported as a transport failure.
	Timeout time.Duration
	Calls   map[parsing.Site]CallPolicy
}

var defaultOutputTokens = map[parsing.Site]int{
	parsing.SiteAnalysis:     1000,
	parsing.SiteOptimization: 4000,
	parsing.SiteQuestions:    1000,
	parsing.SiteFeedback:     2000,
}

func DefaultConfig() Config {
	calls := make(map[parsing.Site]CallPolicy, len(defaultOutputTokens))
	for site, tokens := range defaultOutputTokens {
		calls[site] = CallPolicy{MaxOutputTokens: tokens, Attempts: 1}
	}
	return Config{Timeout: DefaultTimeout, Calls: calls}
}

func (c Config) policy(site parsing.Site) CallPolicy {
	p := c.Calls[site]
	if p.MaxOutputTokens <= 0 {
		p.MaxOutputTokens = defaultOutputTokens[site]
	}
	if p.Attempts < 1 {
		p.Attempts = 1
	}
	return p
}
