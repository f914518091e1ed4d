package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/wippyai/chaincall/errors"
)

// Config is the workbench configuration, loaded from a TOML file. Flags
// override anything set here.
type Config struct {
	// NodeURL is the default chain node endpoint.
	NodeURL string `toml:"node_url"`
	// BencherPath is the frame-omni-bencher binary. Always explicit.
	BencherPath string `toml:"bencher_path"`
	// CacheDir overrides the per-user listing cache location.
	CacheDir string `toml:"cache_dir"`
	// PromptLimit caps fuzzy search results in interactive prompts.
	PromptLimit int `toml:"prompt_limit"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		NodeURL:     "ws://localhost:9944",
		BencherPath: "frame-omni-bencher",
		PromptLimit: 10,
	}
}

// Load reads the TOML file at path on top of the defaults. A missing file
// is not an error; unknown keys are.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, path)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.InvalidInput(errors.PhaseConfig,
			fmt.Sprintf("unknown keys in %s: %s", path, strings.Join(keys, ", ")))
	}
	if cfg.PromptLimit <= 0 {
		return nil, errors.InvalidInput(errors.PhaseConfig, "prompt_limit must be positive")
	}
	return cfg, nil
}
