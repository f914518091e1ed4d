package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/chaincall/bench"
	"github.com/wippyai/chaincall/config"
	"github.com/wippyai/chaincall/errors"
	"github.com/wippyai/chaincall/runtime"
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Benchmark pallet extrinsics with frame-omni-bencher",
	Long: `bench drives a frame-omni-bencher binary against a local runtime
build. Pallet and extrinsic listings are cached per runtime hash so
repeat runs skip the expensive discovery pass.`,
	RunE: runBench,
}

func init() {
	benchCmd.Flags().String("bencher", "", "path to the frame-omni-bencher binary (overrides config)")
	benchCmd.Flags().StringP("pallet", "p", "", "pallet to benchmark ('*' for all)")
	benchCmd.Flags().StringP("extrinsic", "e", "", "extrinsic to benchmark ('*' for all)")
	benchCmd.Flags().StringSlice("exclude-pallets", nil, "pallets to skip")
	benchCmd.Flags().Uint32("steps", 0, "number of steps to sample each component range at")
	benchCmd.Flags().Uint32("repeat", 0, "repetitions per benchmark")
	benchCmd.Flags().String("genesis-builder", "none", "genesis state source: "+strings.Join(bench.Policies(), ", "))
	benchCmd.Flags().String("preset", "", "genesis builder preset (runtime policy only)")
	benchCmd.Flags().StringP("output", "o", "", "weight file output path")
	benchCmd.Flags().String("template", "", "weight file template")
	benchCmd.Flags().Bool("list", false, "list benchmarkable pallets and extrinsics, then exit")
	benchCmd.Flags().Bool("no-cache", false, "ignore and refresh the cached listing")
	benchCmd.Flags().Bool("dry-run", false, "print the bencher invocation without running it")
}

func runBench(cmd *cobra.Command, _ []string) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	runtimePath, _ := cmd.Root().PersistentFlags().GetString("runtime")
	runtimePath, err = resolveRuntimePath(runtimePath)
	if err != nil {
		return err
	}

	bencherPath, _ := cmd.Flags().GetString("bencher")
	if bencherPath == "" {
		bencherPath = cfg.BencherPath
	}
	runner := &bench.Runner{BinaryPath: bencherPath}

	policyName, _ := cmd.Flags().GetString("genesis-builder")
	policy, err := bench.ParsePolicy(policyName)
	if err != nil {
		return err
	}
	preset, _ := cmd.Flags().GetString("preset")
	if policy == bench.PolicyRuntime {
		if preset == "" {
			preset = bench.DevPreset
		}
		if err := checkPreset(cmd, runtimePath, preset); err != nil {
			return err
		}
	}

	listing, err := loadListing(cmd, cfg, runner, runtimePath)
	list, _ := cmd.Flags().GetBool("list")
	if list {
		if err != nil {
			return err
		}
		printListing(cmd, listing)
		return nil
	}
	if err != nil {
		// Discovery is advisory outside --list; the bencher itself
		// reports unknown names.
		bench.Logger().Warn("pallet listing unavailable", zap.Error(err))
	}

	palletName, _ := cmd.Flags().GetString("pallet")
	extrinsicName, _ := cmd.Flags().GetString("extrinsic")
	if listing != nil {
		if err := validateSelection(listing, palletName, extrinsicName, cfg.PromptLimit); err != nil {
			return err
		}
	}

	excluded, _ := cmd.Flags().GetStringSlice("exclude-pallets")
	steps, _ := cmd.Flags().GetUint32("steps")
	repeat, _ := cmd.Flags().GetUint32("repeat")
	output, _ := cmd.Flags().GetString("output")
	template, _ := cmd.Flags().GetString("template")

	bcfg := &bench.Config{
		Runtime:              runtimePath,
		Pallet:               palletName,
		Extrinsic:            extrinsicName,
		ExcludePallets:       excluded,
		Steps:                steps,
		Repeat:               repeat,
		GenesisBuilder:       policy,
		GenesisBuilderPreset: preset,
		Output:               output,
		Template:             template,
	}
	bcfg.Normalize()

	out := cmd.OutOrStdout()
	green := color.New(color.FgGreen)
	green.Fprintf(out, "%s %s\n", bencherPath, strings.Join(bcfg.CollectArguments(), " "))

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if dryRun {
		return nil
	}
	return runner.Run(ctx, bcfg)
}

// resolveRuntimePath turns the --runtime flag into a concrete build file.
// An empty flag searches the working directory's runtime folder; a
// directory is searched for compiled artifacts. Multiple candidates need an
// explicit choice.
func resolveRuntimePath(path string) (string, error) {
	if path == "" {
		dir, err := runtime.FindRuntimeDir(".")
		if err != nil {
			return "", errors.InvalidInput(errors.PhaseBench,
				"--runtime is required (no runtime directory found here)")
		}
		path = dir
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return path, nil
	}
	builds, err := runtime.FindRuntimeBuilds(path)
	if err != nil {
		return "", err
	}
	if len(builds) > 1 {
		return "", errors.InvalidInput(errors.PhaseBench, fmt.Sprintf(
			"multiple runtime builds under %s, pass one with --runtime: %s",
			path, strings.Join(builds, ", ")))
	}
	return builds[0], nil
}

// checkPreset loads the runtime build and verifies the preset exists before
// spending time on a bencher run that would fail late.
func checkPreset(cmd *cobra.Command, runtimePath, preset string) error {
	wasmBytes, err := os.ReadFile(runtimePath)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	engine := runtime.NewEngine(ctx)
	defer engine.Close(ctx)

	err = engine.CheckPreset(ctx, wasmBytes, &preset)
	if err == nil || !errors.IsKind(err, errors.KindNotFound) {
		return err
	}
	detail := fmt.Sprintf("genesis preset %q not found in %s", preset, runtimePath)
	if inst, lerr := engine.Load(ctx, wasmBytes); lerr == nil {
		if names, nerr := inst.PresetNames(ctx); nerr == nil && len(names) > 0 {
			detail += "; available: " + strings.Join(names, ", ")
		}
		inst.Close(ctx)
	}
	return errors.InvalidInput(errors.PhaseBench, detail)
}

// loadListing returns the pallet listing for the runtime, from cache when
// the runtime hash matches a previous discovery pass.
func loadListing(cmd *cobra.Command, cfg *config.Config, runner *bench.Runner, runtimePath string) (bench.Listing, error) {
	key, err := bench.HashRuntime(runtimePath)
	if err != nil {
		return nil, err
	}

	cacheDir := cfg.CacheDir
	if cacheDir == "" {
		cacheDir, err = bench.DefaultCacheDir()
		if err != nil {
			return nil, err
		}
	}
	cache, err := bench.OpenCache(cacheDir)
	if err != nil {
		return nil, err
	}

	noCache, _ := cmd.Flags().GetBool("no-cache")
	if !noCache {
		if listing, ok, err := cache.Get(key); err == nil && ok {
			return listing, nil
		}
	}

	listing, err := runner.ListPalletExtrinsics(cmd.Context(), runtimePath)
	if err != nil {
		return nil, err
	}
	if err := cache.Put(key, listing); err != nil {
		bench.Logger().Warn("caching pallet listing failed", zap.Error(err))
	}
	return listing, nil
}

func printListing(cmd *cobra.Command, listing bench.Listing) {
	out := cmd.OutOrStdout()
	bold := color.New(color.Bold)

	pallets := make([]string, 0, len(listing))
	for name := range listing {
		pallets = append(pallets, name)
	}
	sort.Strings(pallets)

	for _, pallet := range pallets {
		bold.Fprintln(out, pallet)
		extrinsics := append([]string(nil), listing[pallet]...)
		sort.Strings(extrinsics)
		for _, ex := range extrinsics {
			fmt.Fprintf(out, "  %s\n", ex)
		}
	}
}

// validateSelection rejects unknown pallet or extrinsic names early, with
// close matches from the listing as suggestions.
func validateSelection(listing bench.Listing, pallet, extrinsic string, limit int) error {
	if pallet == "" || pallet == "*" {
		return nil
	}
	if _, ok := listing[pallet]; !ok {
		detail := fmt.Sprintf("pallet %q is not benchmarkable", pallet)
		if matches := bench.SearchPallets(listing, pallet, limit); len(matches) > 0 {
			detail += "; close matches: " + strings.Join(matches, ", ")
		}
		return errors.InvalidInput(errors.PhaseBench, detail)
	}
	if extrinsic == "" || extrinsic == "*" {
		return nil
	}
	for _, name := range listing[pallet] {
		if name == extrinsic {
			return nil
		}
	}
	detail := fmt.Sprintf("extrinsic %q not found in pallet %s", extrinsic, pallet)
	if matches := bench.SearchExtrinsics(listing, []string{pallet}, extrinsic, limit); len(matches) > 0 {
		detail += "; close matches: " + strings.Join(matches, ", ")
	}
	return errors.InvalidInput(errors.PhaseBench, detail)
}
