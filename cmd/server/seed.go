package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gwi.com/induction-assistant/internal/logger"
	"gwi.com/induction-assistant/internal/store"
)

func newSeedCmd() *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Copy the JSON knowledge base into the SQLite database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			if from == "" {
				from = cfg.KnowledgeBasePath
			}
			if to == "" {
				to = cfg.DatabaseURL
			}

			src, err := store.NewJSONRepository(from, logger.Component(log, "json_repo"))
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", from, err)
			}
			dst, err := store.NewSQLiteRepository(to)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer dst.Close()

			n, err := store.Copy(cmd.Context(), src, dst)
			if err != nil {
				return fmt.Errorf("seed failed: %w", err)
			}
			log.Info().Int("records", n).Str("from", from).Str("to", to).Msg("Seed complete")
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d records into %s\n", n, to)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "knowledge base directory (defaults to KNOWLEDGE_BASE_PATH)")
	cmd.Flags().StringVar(&to, "to", "", "SQLite database path (defaults to DATABASE_URL)")
	return cmd
}
