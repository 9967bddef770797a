package domain

import "maps"

// Config is the read-only key/value run configuration handed to every step
// (model identifier, limits, instruction templates...).
// The engine clones it once per run; steps must not mutate it.
type Config map[string]any

// Clone returns a shallow copy of the configuration.
func (c Config) Clone() Config {
	if c == nil {
		return Config{}
	}
	return maps.Clone(c)
}

// With returns a copy of the configuration with the given key set.
func (c Config) With(key string, value any) Config {
	next := c.Clone()
	next[key] = value
	return next
}
