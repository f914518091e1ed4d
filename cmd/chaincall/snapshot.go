package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/chaincall/client"
	"github.com/wippyai/chaincall/config"
	"github.com/wippyai/chaincall/metadata"
	"github.com/wippyai/chaincall/runtime"
)

// loadSnapshot fetches the metadata snapshot either from a local runtime
// build (--runtime) or from a node (--url, falling back to the configured
// endpoint). Returns the snapshot and a label describing its source.
func loadSnapshot(ctx context.Context, cmd *cobra.Command, cfg *config.Config) (*metadata.Snapshot, string, error) {
	runtimePath, _ := cmd.Root().PersistentFlags().GetString("runtime")
	if runtimePath != "" {
		wasmBytes, err := os.ReadFile(runtimePath)
		if err != nil {
			return nil, "", err
		}
		engine := runtime.NewEngine(ctx)
		defer engine.Close(ctx)
		if apis, err := engine.Inspect(ctx, wasmBytes); err == nil {
			runtime.Logger().Debug("runtime APIs", zap.Strings("exports", apis))
		}
		snap, err := engine.ExtractMetadata(ctx, wasmBytes)
		if err != nil {
			return nil, "", err
		}
		return snap, runtimePath, nil
	}

	url, _ := cmd.Root().PersistentFlags().GetString("url")
	if url == "" {
		url = cfg.NodeURL
	}
	c, err := client.Dial(ctx, url)
	if err != nil {
		return nil, "", err
	}
	defer c.Close()

	label := c.URL()
	if chain, err := c.SystemChain(ctx); err == nil {
		label = chain + " (" + c.URL() + ")"
	}
	if v, err := c.RuntimeVersion(ctx); err == nil {
		label = fmt.Sprintf("%s %s/%d", label, v.SpecName, v.SpecVersion)
	}
	snap, err := c.Metadata(ctx)
	if err != nil {
		return nil, "", err
	}
	return snap, label, nil
}
