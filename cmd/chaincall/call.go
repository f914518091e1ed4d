package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/wippyai/chaincall/errors"
	"github.com/wippyai/chaincall/metadata"
)

var callCmd = &cobra.Command{
	Use:   "call",
	Short: "Assemble an extrinsic call from chain metadata",
	Long: `call resolves an extrinsic's parameters from the chain's metadata and
prints the full invocation. With --pallet and --extrinsic it runs
non-interactively; without them it opens a guided prompt when attached
to a terminal.`,
	RunE: runCall,
}

func init() {
	callCmd.Flags().StringP("pallet", "p", "", "pallet name")
	callCmd.Flags().StringP("extrinsic", "e", "", "extrinsic name")
	callCmd.Flags().StringArrayP("args", "a", nil, "extrinsic argument, one per parameter (repeatable)")
}

func runCall(cmd *cobra.Command, _ []string) error {
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

	palletName, _ := cmd.Flags().GetString("pallet")
	extrinsicName, _ := cmd.Flags().GetString("extrinsic")
	args, _ := cmd.Flags().GetStringArray("args")

	if palletName == "" || extrinsicName == "" {
		if !isTerminal(os.Stdin) {
			return errors.InvalidInput(errors.PhaseResolve,
				"--pallet and --extrinsic are required outside a terminal")
		}
		return runInteractive(pallets, label)
	}

	ex, err := metadata.FindExtrinsic(pallets, palletName, extrinsicName)
	if err != nil {
		return err
	}
	if !ex.IsSupported {
		return errors.UnsupportedExtrinsic(palletName + "::" + extrinsicName)
	}
	if len(args) != len(ex.Params) {
		names := make([]string, len(ex.Params))
		for i, p := range ex.Params {
			names[i] = p.Name
		}
		return errors.InvalidInput(errors.PhaseResolve, fmt.Sprintf(
			"%s::%s takes %d argument(s) (%s), got %d",
			palletName, extrinsicName, len(ex.Params),
			strings.Join(names, ", "), len(args)))
	}

	out := cmd.OutOrStdout()
	dim := color.New(color.Faint)
	green := color.New(color.FgGreen)

	fmt.Fprintf(out, "%s::%s on %s\n", palletName, extrinsicName, label)
	for i, p := range ex.Params {
		dim.Fprintf(out, "  %s: ", p.Name)
		fmt.Fprintln(out, args[i])
	}
	green.Fprintln(out, formatCallCommand(palletName, extrinsicName, args))
	return nil
}

// formatCallCommand renders the shell line that reproduces a call
// non-interactively.
func formatCallCommand(pallet, extrinsic string, args []string) string {
	var b strings.Builder
	b.WriteString("chaincall call --pallet ")
	b.WriteString(shellQuote(pallet))
	b.WriteString(" --extrinsic ")
	b.WriteString(shellQuote(extrinsic))
	for _, a := range args {
		b.WriteString(" --args ")
		b.WriteString(shellQuote(a))
	}
	return b.String()
}

func shellQuote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\"'(),") {
		return s
	}
	return strconv.Quote(s)
}
