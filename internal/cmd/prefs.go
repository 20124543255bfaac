package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"sizely/core/state"
	"sizely/internal/ui"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or reset the remembered resize options",
}

var prefsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the options used when none are given",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			prefs, err := a.state.LoadPreferences()
			if err != nil {
				return err
			}
			return ui.PrintTable(cmd.OutOrStdout(), []string{"Option", "Value"}, preferenceRows(prefs, a))
		})
	},
}

var prefsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the remembered options",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			if err := a.state.ResetPreferences(); err != nil {
				return err
			}
			ui.Success("preferences reset")
			return nil
		})
	},
}

func init() {
	prefsCmd.AddCommand(prefsShowCmd, prefsResetCmd)
	rootCmd.AddCommand(prefsCmd)
}

func preferenceRows(p state.Preferences, a *app) [][]string {
	presetLabel := "custom (" + p.CustomBase + ")"
	if pr, err := a.presets.Get(p.PresetIndex); err == nil {
		presetLabel = strconv.Itoa(p.PresetIndex+1) + ": " + pr.Label
	}
	return [][]string{
		{"mode", p.Mode},
		{"preset", presetLabel},
		{"width", p.Width},
		{"height", p.Height},
		{"format", p.Format},
		{"quality", strconv.Itoa(p.Quality)},
		{"never-upscale", strconv.FormatBool(p.NeverUpscale)},
		{"preserve-aspect", strconv.FormatBool(p.PreserveAspect)},
		{"keep-filename", strconv.FormatBool(p.KeepFilename)},
		{"strip-metadata", strconv.FormatBool(p.StripMetadata)},
		{"dest", p.Destination},
		{"out-dir", p.CustomDir},
	}
}
