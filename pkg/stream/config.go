package stream

import (
	"context"
	"flag"
	"log"
	"os"
	"time"
)

// Defaults
const (
	DefaultPort       = 3002
	DefaultAttempts   = 10
	DefaultTimeout    = time.Second
	DefaultSize       = 1024
	DefaultBufferSize = 4 * 1024 * 1024
)

// Config provides options of the observation stream.
type Config struct {
	// Address is the board address host[:port].
	Address    string
	// Size is the largest datagram accepted.
	Size       int
	// BufferSize is the socket receive buffer requested.
	BufferSize int
	Attempts   int
	Timeout    time.Duration
	// MQTTURL optionally publishes the stream to a broker.
	MQTTURL    string
}

var defaultConfig = Config{
	Size:       DefaultSize,
	BufferSize: DefaultBufferSize,
	Attempts:   DefaultAttempts,
	Timeout:    DefaultTimeout,
}

func init() {
	if val := os.Getenv("BRD_ADDRESS"); val != "" {
		defaultConfig.Address = val
	}
	if val := os.Getenv("BRD_MQTT_URL"); val != "" {
		defaultConfig.MQTTURL = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	const addrUsage = "board address, host[:port], default port is 3002"
	flag.StringVar(&defaultConfig.Address, "address", defaultConfig.Address, addrUsage)
	flag.StringVar(&defaultConfig.Address, "a", defaultConfig.Address, addrUsage)
	const sizeUsage = "buffer size in bytes"
	flag.IntVar(&defaultConfig.Size, "size", defaultConfig.Size, sizeUsage)
	flag.IntVar(&defaultConfig.Size, "s", defaultConfig.Size, sizeUsage)
	const bsizeUsage = "socket buffer size in bytes"
	flag.IntVar(&defaultConfig.BufferSize, "bsize", defaultConfig.BufferSize, bsizeUsage)
	flag.IntVar(&defaultConfig.BufferSize, "b", defaultConfig.BufferSize, bsizeUsage)
	flag.StringVar(&defaultConfig.MQTTURL, "mqtt", defaultConfig.MQTTURL, "publish output to MQTT broker, e.g. mqtt://host:1883/brd/")
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

// MustDial connects the stream and fails on error.
func (c *Config) MustDial() *Reader {
	r, err := c.Dial(context.Background())
	if err != nil {
		log.Fatalln(err)
	}
	return r
}
