// Command redub re-dubs a source video: given a project directory holding
// a video file and a translated subtitle track, it synthesizes speech for
// every cue, reconciles synthesized duration against visual duration, and
// muxes the result into a new, perceptually in-sync media file.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"redub/internal/config"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configFlag string
	var loadedConfig *config.Config

	rootCmd := &cobra.Command{
		Use:           "redub",
		Short:         "Re-dub a video's audio track from a translated subtitle file",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			if loadedConfig != nil {
				return nil
			}
			cfg, _, _, err := config.Load(configFlag)
			if err != nil {
				return err
			}
			loadedConfig = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newDubCommand(func() *config.Config { return loadedConfig }))
	rootCmd.AddCommand(newRecommendCommand(func() *config.Config { return loadedConfig }))
	rootCmd.AddCommand(newQACommand())
	rootCmd.AddCommand(newInspectCommand())
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}

// shouldSkipConfig mirrors the teacher's annotation-based opt-out: a
// subcommand (e.g. "config init") that must run before any config file
// exists marks itself so the persistent pre-run hook doesn't fail loading
// a config that isn't there yet.
func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
