package main

import (
	"github.com/spf13/cobra"

	"github.com/example/go-native-tts/internal/tts"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and clear the synthesis cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show model and cache disk usage",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLocal(cmd.Context(), cmd.OutOrStdout(), tts.MethodCacheStats, nil)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete every cached WAV file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLocal(cmd.Context(), cmd.OutOrStdout(), tts.MethodClearCache, nil)
		},
	})

	return cmd
}
