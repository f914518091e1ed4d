package bench

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/chaincall/errors"
)

// benchSubcommand is the frame-omni-bencher subcommand for pallet benchmarks.
var benchSubcommand = []string{"v1", "benchmark", "pallet"}

// Runner executes a frame-omni-bencher binary. The path is always explicit;
// nothing is discovered from the environment.
type Runner struct {
	BinaryPath string
	Stdout     io.Writer
	Stderr     io.Writer
}

// Config is one benchmarking invocation. Zero values for Steps and Repeat
// take the bencher's defaults applied by Normalize.
type Config struct {
	Runtime              string
	Pallet               string
	Extrinsic            string
	ExcludePallets       []string
	Steps                uint32
	Repeat               uint32
	GenesisBuilder       GenesisBuilderPolicy
	GenesisBuilderPreset string
	Output               string
	Template             string
	NoMedianSlopes       bool
	NoMinSquares         bool
	NoStorageInfo        bool
	NoVerify             bool
	AllowMissingHostFns  bool
}

const (
	defaultSteps  = 50
	defaultRepeat = 20
)

// Normalize fills in bencher defaults for unset numeric fields and the
// genesis preset.
func (c *Config) Normalize() {
	if c.Steps == 0 {
		c.Steps = defaultSteps
	}
	if c.Repeat == 0 {
		c.Repeat = defaultRepeat
	}
	if c.GenesisBuilderPreset == "" {
		c.GenesisBuilderPreset = DevPreset
	}
}

// CollectArguments builds the bencher argument list. It is also what the
// CLI prints as the reproducible invocation string.
func (c *Config) CollectArguments() []string {
	args := append([]string{}, benchSubcommand...)
	args = append(args, "--runtime="+c.Runtime)

	if c.Pallet != "" {
		args = append(args, "--pallet="+c.Pallet)
	}
	if c.Extrinsic != "" {
		args = append(args, "--extrinsic="+c.Extrinsic)
	}
	if len(c.ExcludePallets) > 0 {
		args = append(args, "--exclude-pallets="+strings.Join(c.ExcludePallets, ","))
	}
	args = append(args,
		"--steps="+strconv.FormatUint(uint64(c.Steps), 10),
		"--repeat="+strconv.FormatUint(uint64(c.Repeat), 10),
		"--genesis-builder="+c.GenesisBuilder.String(),
	)
	if c.GenesisBuilder == PolicyRuntime {
		args = append(args, "--genesis-builder-preset="+c.GenesisBuilderPreset)
	}
	if c.Output != "" {
		args = append(args, "--output="+c.Output)
	}
	if c.Template != "" {
		args = append(args, "--template="+c.Template)
	}
	if c.NoMedianSlopes {
		args = append(args, "--no-median-slopes")
	}
	if c.NoMinSquares {
		args = append(args, "--no-min-squares")
	}
	if c.NoStorageInfo {
		args = append(args, "--no-storage-info")
	}
	if c.NoVerify {
		args = append(args, "--no-verify")
	}
	if c.AllowMissingHostFns {
		args = append(args, "--allow-missing-host-functions")
	}
	return args
}

// Run executes one benchmarking pass, streaming bencher output to the
// runner's writers.
func (r *Runner) Run(ctx context.Context, cfg *Config) error {
	cfg.Normalize()
	args := cfg.CollectArguments()
	Logger().Debug("running bencher",
		zap.String("binary", r.BinaryPath),
		zap.Strings("args", args))

	cmd := exec.CommandContext(ctx, r.BinaryPath, args...)
	cmd.Stdout = r.stdout()
	cmd.Stderr = r.stderr()
	if err := cmd.Run(); err != nil {
		return errors.Wrap(errors.PhaseBench, errors.KindInvalidData, err,
			fmt.Sprintf("%s %s", r.BinaryPath, strings.Join(args, " ")))
	}
	return nil
}

// ListPalletExtrinsics asks the bencher for the full pallet/extrinsic
// listing of a runtime build. The bencher prints CSV on stdout.
func (r *Runner) ListPalletExtrinsics(ctx context.Context, runtimePath string) (Listing, error) {
	args := append([]string{}, benchSubcommand...)
	args = append(args,
		"--runtime="+runtimePath,
		"--genesis-builder=none",
		"--list=all",
	)

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, r.BinaryPath, args...)
	cmd.Stdout = &out
	cmd.Stderr = r.stderr()
	if err := cmd.Run(); err != nil {
		return nil, errors.Wrap(errors.PhaseBench, errors.KindInvalidData, err,
			"list pallet extrinsics")
	}
	return parseListing(&out)
}

// parseListing reads "pallet, extrinsic" CSV rows into a Listing, skipping
// the header and anything that is not a two-field row.
func parseListing(r io.Reader) (Listing, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	listing := make(Listing)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.PhaseBench, errors.KindInvalidData, err,
				"pallet listing CSV")
		}
		if len(record) != 2 {
			continue
		}
		pallet := strings.TrimSpace(record[0])
		extrinsic := strings.TrimSpace(record[1])
		if pallet == "" || pallet == "pallet" { // header row
			continue
		}
		listing[pallet] = append(listing[pallet], extrinsic)
	}
	return listing, nil
}

func (r *Runner) stdout() io.Writer {
	if r.Stdout != nil {
		return r.Stdout
	}
	return os.Stdout
}

func (r *Runner) stderr() io.Writer {
	if r.Stderr != nil {
		return r.Stderr
	}
	return os.Stderr
}
