package demowiki

// Config holds configuration for the demo wiki server.
type Config struct {
	// Port is the port on which the demo wiki listens.
	Port int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Port: 9999,
	}
}
