package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/globetex/internal/presets"
	"github.com/MeKo-Tech/globetex/internal/synth"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "Manage named parameter presets",
}

var presetsPutCmd = &cobra.Command{
	Use:   "put NAME",
	Short: "Create or replace a preset",
	Args:  cobra.ExactArgs(1),
	RunE:  runPresetsPut,
}

var presetsGetCmd = &cobra.Command{
	Use:   "get NAME",
	Short: "Print a preset",
	Args:  cobra.ExactArgs(1),
	RunE:  runPresetsGet,
}

var presetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List presets",
	Args:  cobra.NoArgs,
	RunE:  runPresetsList,
}

var presetsRmCmd = &cobra.Command{
	Use:     "rm NAME",
	Aliases: []string{"delete"},
	Short:   "Delete a preset",
	Args:    cobra.ExactArgs(1),
	RunE:    runPresetsRm,
}

func init() {
	rootCmd.AddCommand(presetsCmd)
	presetsCmd.AddCommand(presetsPutCmd, presetsGetCmd, presetsListCmd, presetsRmCmd)

	presetsPutCmd.Flags().String("mode", "bump", "Texture mode: bump or clouds")
	presetsPutCmd.Flags().String("params", "", "Texture parameters as a query string")
}

func openPresets() (*presets.Store, error) {
	path := viper.GetString("presets_db")
	if path == "" {
		return nil, fmt.Errorf("--presets-db is required")
	}
	return presets.Open(path)
}

func runPresetsPut(cmd *cobra.Command, args []string) error {
	modeName, _ := cmd.Flags().GetString("mode")
	raw, _ := cmd.Flags().GetString("params")

	mode, err := synth.ParseMode(modeName)
	if err != nil {
		return err
	}
	values, err := parseParams(raw)
	if err != nil {
		return err
	}
	// Reject params that could never render before storing them.
	if _, err := jobFromValues(mode, values); err != nil {
		return err
	}

	store, err := openPresets()
	if err != nil {
		return err
	}
	defer store.Close()

	p := presets.Preset{Name: args[0], Mode: string(mode), Query: values.Encode()}
	if err := store.Put(cmd.Context(), p); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%s)\n", p.Name, p.Mode)
	return nil
}

func runPresetsGet(cmd *cobra.Command, args []string) error {
	store, err := openPresets()
	if err != nil {
		return err
	}
	defer store.Close()

	p, err := store.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", p.Name, p.Mode, p.Query)
	return nil
}

func runPresetsList(cmd *cobra.Command, args []string) error {
	store, err := openPresets()
	if err != nil {
		return err
	}
	defer store.Close()

	list, err := store.List(cmd.Context())
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tMODE\tUPDATED\tPARAMS")
	for _, p := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Name, p.Mode, p.UpdatedAt.Format(time.RFC3339), p.Query)
	}
	return tw.Flush()
}

func runPresetsRm(cmd *cobra.Command, args []string) error {
	store, err := openPresets()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
	return nil
}
