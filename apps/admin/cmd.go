package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/Hanyshennawy/moe-scorm-lms/core/course"
	"github.com/Hanyshennawy/moe-scorm-lms/core/progress"
)

const (
	formatText = "text"
	formatJSON = "json"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db      *sqlx.DB
	courses course.Repository
	svc     *progress.Service
	out     io.Writer

	format string
}

func (cli *commandLine) rootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "admin",
		Short:         "Administer the SCORM LMS backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cli.format != formatText && cli.format != formatJSON {
				return fmt.Errorf("invalid format %q: must be one of [%s %s]", cli.format, formatText, formatJSON)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Usage()
			return errHelp
		},
	}
	cmd.SetOut(cli.out)
	cmd.SetErr(cli.out)
	cmd.PersistentFlags().StringVar(&cli.format, "format", formatText, "output format (json|text)")

	cmd.AddCommand(cli.migrateCommand())
	cmd.AddCommand(cli.coursesCommand())
	cmd.AddCommand(cli.progressCommand())
	cmd.AddCommand(cli.sessionsCommand())
	return cmd
}

// run executes the command line; args include the program name.
func (cli *commandLine) run(args []string) error {
	cmd := cli.rootCommand()
	if len(args) > 0 {
		args = args[1:]
	}
	cmd.SetArgs(args)
	return cmd.Execute()
}

// print writes v as JSON, or as rows through `rows` in text format.
func (cli *commandLine) print(v interface{}, header string, rows func(w io.Writer)) error {
	if cli.format == formatJSON {
		enc := json.NewEncoder(cli.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	if header != "" {
		fmt.Fprintln(w, header)
	}
	rows(w)
	return w.Flush()
}
