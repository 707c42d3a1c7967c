package util

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

type Opts struct {
	// Addr is the server address to connect to, host:port.
	Addr string `toml:"addr"`
	// Username used for the offline-mode login sequence.
	Username string `toml:"username"`
	// Transport selects the dialer: "tcp" or "quic".
	Transport string `toml:"transport"`
	// InstanceID, when set, names an EC2 instance hosting the server. The
	// client resolves its public address (starting the instance if needed)
	// instead of using Addr.
	InstanceID string `toml:"instance_id"`
	// MaxPacketLen caps the accepted frame length in bytes.
	MaxPacketLen int32 `toml:"max_packet_len"`
	// MaxDecompressedLen caps a compressed frame's declared decompressed
	// size in bytes.
	MaxDecompressedLen int32 `toml:"max_decompressed_len"`
}

func DefaultOpts() *Opts {
	return &Opts{
		Addr:               "localhost:25565",
		Username:           "Player",
		Transport:          "tcp",
		MaxPacketLen:       1 << 21,
		MaxDecompressedLen: 1 << 23,
	}
}

// LoadOpts reads a TOML config file over the defaults.
func LoadOpts(path string) (*Opts, error) {
	opts := DefaultOpts()
	if _, err := toml.DecodeFile(path, opts); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return opts, nil
}
