package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/wippyai/chaincall/metadata"
)

var palletsCmd = &cobra.Command{
	Use:   "pallets",
	Short: "List pallets and their dispatchable extrinsics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup(cmd)
		if err != nil {
			return err
		}
		snap, label, err := loadSnapshot(cmd.Context(), cmd, cfg)
		if err != nil {
			return err
		}
		pallets, err := metadata.ParsePallets(snap)
		if err != nil {
			return err
		}

		filter, _ := cmd.Flags().GetString("pallet")

		bold := color.New(color.Bold)
		dim := color.New(color.Faint)
		warn := color.New(color.FgYellow)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "metadata v%d from %s\n\n", snap.Version, label)
		for _, p := range pallets {
			if filter != "" && !strings.EqualFold(p.Name, filter) {
				continue
			}
			bold.Fprintln(out, p.Name)
			if len(p.Extrinsics) == 0 {
				dim.Fprintln(out, "  (no dispatchable calls)")
				continue
			}
			for _, ex := range p.Extrinsics {
				if !ex.IsSupported {
					warn.Fprintf(out, "  %s  [%s]\n", ex.Name, metadata.ExtrinsicNotSupportedDocs)
					continue
				}
				fmt.Fprintf(out, "  %s", ex.Name)
				if len(ex.Params) > 0 {
					names := make([]string, len(ex.Params))
					for i, param := range ex.Params {
						names[i] = param.Name
					}
					dim.Fprintf(out, "(%s)", strings.Join(names, ", "))
				}
				fmt.Fprintln(out)
			}
		}
		return nil
	},
}

func init() {
	palletsCmd.Flags().StringP("pallet", "p", "", "show only the named pallet")
}
