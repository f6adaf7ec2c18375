package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Hanyshennawy/moe-scorm-lms/storage/database"
)

func (cli *commandLine) migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate <command> [args]",
		Short: "Run a goose migration command (up, up-by-one, up-to, down, down-to, redo, reset, status, version, fix)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Usage()
				return errHelp
			}
			return cli.migrate(cmd.Context(), args)
		},
	}
}

func (cli *commandLine) migrate(ctx context.Context, args []string) error {
	return database.Run(ctx, cli.db, args[0], args[1:]...)
}
