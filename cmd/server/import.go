package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/bizsight/internal/core"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	importUser string
	importFile string
)

var importCmd = &cobra.Command{
	Use:   "import inventory|sales",
	Short: "Import a CSV file for a user and print the outcome",
	Long: `Run a CSV import offline, exactly as the upload endpoints do, and print
the outcome as JSON.

Examples:
  bizsight import inventory --user 6f1c... --file products.csv
  bizsight import sales --user 6f1c... --file sales.csv`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"inventory", "sales"},
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, ok := core.ParseImportKind(args[0])
		if !ok {
			return fmt.Errorf("unknown import kind %q (want inventory or sales)", args[0])
		}
		userID, err := uuid.Parse(importUser)
		if err != nil {
			return fmt.Errorf("invalid --user: %w", err)
		}

		f, err := os.Open(importFile)
		if err != nil {
			return err
		}
		defer f.Close()

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		report, err := a.service.Import(cmd.Context(), core.ImportRequest{
			UserID:   userID,
			Kind:     kind,
			FileName: filepath.Base(importFile),
			Body:     f,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
		if report.Outcome == core.OutcomeFullRejection {
			return fmt.Errorf("import rejected: %s", report.Message)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importUser, "user", "", "Owning user id (required)")
	importCmd.Flags().StringVar(&importFile, "file", "", "Path to the CSV file (required)")
	importCmd.MarkFlagRequired("user")
	importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}
