package main

import (
	"github.com/spf13/cobra"

	"github.com/example/go-native-tts/internal/tts"
)

func newModelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Model directory management commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "remove",
		Short: "Delete the installed model",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLocal(cmd.Context(), cmd.OutOrStdout(), tts.MethodRemoveModel, nil)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "import <dir>",
		Short: "Import model files from a local folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLocal(cmd.Context(), cmd.OutOrStdout(), tts.MethodImportLocal, map[string]string{"path": args[0]})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "dir",
		Short: "Print the model directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLocal(cmd.Context(), cmd.OutOrStdout(), tts.MethodModelDir, nil)
		},
	})

	return cmd
}
