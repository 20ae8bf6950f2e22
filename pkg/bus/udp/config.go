package udp

import (
	"context"
	"flag"
	"log"
	"os"
	"time"
)

// Config provides common options to connect the bus.
type Config struct {
	// Address is the board address host[:port].
	Address  string
	Timeout  time.Duration
	Attempts int
}

var defaultConfig = Config{
	Timeout:  DefaultTimeout,
	Attempts: DefaultAttempts,
}

func init() {
	if val := os.Getenv("BRD_ADDRESS"); val != "" {
		defaultConfig.Address = val
	}
	if val := os.Getenv("BRD_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			defaultConfig.Timeout = d
		}
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Address, "addr", defaultConfig.Address, "Board address host[:port].")
	flag.DurationVar(&defaultConfig.Timeout, "bus-timeout", defaultConfig.Timeout, "Timeout waiting for a response from the board.")
	flag.IntVar(&defaultConfig.Attempts, "bus-attempts", defaultConfig.Attempts, "Handshake attempts before giving up.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// WithAddress sets the board address.
func (c *Config) WithAddress(netaddr string) *Config {
	c.Address = netaddr
	return c
}

// Options converts the config into Options.
func (c *Config) Options() []Option {
	return []Option{WithTimeout(c.Timeout), WithAttempts(c.Attempts)}
}

// NewBus dials the board using current config.
func (c *Config) NewBus(ctx context.Context, opts ...Option) (*Bus, error) {
	return Dial(ctx, c.Address, append(c.Options(), opts...)...)
}

// MustNewBus dials the board and fails on error.
func (c *Config) MustNewBus(ctx context.Context, opts ...Option) *Bus {
	b, err := c.NewBus(ctx, opts...)
	if err != nil {
		log.Fatalln(err)
	}
	return b
}
