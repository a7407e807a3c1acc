package commands

import (
	"github.com/spf13/cobra"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "DB 스키마 생성",
	Long: `fin 스키마의 테이블을 생성합니다 (이미 있으면 건너뜀).

Example:
  go run ./cmd/finlens migrate`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := commandContext()
	defer cancel()

	if err := a.db.Migrate(ctx); err != nil {
		return err
	}

	a.log.Info("Migration completed")
	PrintSuccess("Schema is up to date")
	return nil
}
