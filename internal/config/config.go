/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config gathers every knob of the server, read from the environment
type Config struct {
	// HTTP server
	HTTPPort     uint16 `env:"CHATD_HTTP_PORT" envDefault:"8080"`
	ReadTimeout  int64  `env:"CHATD_READ_TIMEOUT" envDefault:"15"`  // Seconds
	WriteTimeout int64  `env:"CHATD_WRITE_TIMEOUT" envDefault:"15"` // Seconds

	// Storage
	DatabasePath string `env:"CHATD_DB_PATH" envDefault:"chatd.db"`

	// Tokens
	JWTSecret    string `env:"CHATD_JWT_SECRET,required"`
	TokenTTL     int64  `env:"CHATD_TOKEN_TTL" envDefault:"86400"` // Seconds

	// Realtime
	OutboundQueueSize int `env:"CHATD_OUTBOUND_QUEUE" envDefault:"64"` // Per-connection outbound buffer, a connection lagging behind this much is dropped

	// Bus broadcast backend (empty bind means the in-process bus only)
	BusBind  string   `env:"CHATD_BUS_BIND"`
	BusPeers []string `env:"CHATD_BUS_PEERS" envSeparator:","`

	// Call housekeeping
	CallSweepInterval int64 `env:"CHATD_CALL_SWEEP_INTERVAL" envDefault:"60"` // Seconds between sweeps of stale ongoing calls
	CallRingTimeout   int64 `env:"CHATD_CALL_RING_TIMEOUT" envDefault:"120"`  // Seconds an unanswered call may ring before being marked missed

	// Logging
	LogDirectory  string `env:"CHATD_LOG_DIR" envDefault:"LOG"`
	EnableLogging bool   `env:"CHATD_LOG_ENABLE" envDefault:"true"`
}

// Load parses the configuration from the process environment
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("Could not parse configuration: %w", err)
	}
	return cfg, nil
}
