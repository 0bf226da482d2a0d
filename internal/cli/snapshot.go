package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"timed-quiz-service/internal/config"
	"timed-quiz-service/internal/domain"
	"timed-quiz-service/internal/logging"
)

// NewExportCmd dumps every quiz and result from the configured store.
func NewExportCmd(configPath *string) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export quizzes and results",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			b, err := openBackend(cmd.Context(), cfg, logging.New(serviceName, cfg.Log.Level), nil)
			if err != nil {
				return err
			}
			defer b.Close()

			snap, err := b.service.Export(cmd.Context())
			if err != nil {
				return err
			}
			return writeDocument(outPath, snap)
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (.json, .yaml); stdout when empty")
	return cmd
}

// NewImportCmd loads a snapshot into the configured store.
func NewImportCmd(configPath *string) *cobra.Command {
	var inPath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import quizzes and results from a snapshot file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if inPath == "" {
				return errors.New("--file is required")
			}
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			var snap domain.Snapshot
			if err := readDocument(inPath, &snap); err != nil {
				return err
			}
			b, err := openBackend(cmd.Context(), cfg, logging.New(serviceName, cfg.Log.Level), nil)
			if err != nil {
				return err
			}
			defer b.Close()

			summary, err := b.service.Import(cmd.Context(), snap)
			if err != nil {
				return err
			}
			return writeDocument("", summary)
		},
	}
	cmd.Flags().StringVarP(&inPath, "file", "f", "", "snapshot file (.json, .yaml)")
	return cmd
}
