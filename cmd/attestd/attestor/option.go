package attestor

type config struct {
	concurrentReads bool
}

var defaultConfig = config{
	concurrentReads: false,
}

// Option applies a configuration change.
type Option func(*config) error

// WithConcurrentReads fetches the owner and the forwarder nonce in parallel.
// Ownership failures still take precedence over nonce failures.
func WithConcurrentReads(enabled bool) Option {
	return func(c *config) error {
		c.concurrentReads = enabled
		return nil
	}
}
