package main

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Hanyshennawy/moe-scorm-lms/core/course"
)

func (cli *commandLine) coursesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "courses",
		Short: "Manage the course catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Usage()
			return errHelp
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "import <catalog.yaml>",
		Short: "Create or update the courses listed in a YAML catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.importCourses(cmd.Context(), args[0])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all courses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.listCourses(cmd.Context())
		},
	})
	return cmd
}

func (cli *commandLine) importCourses(ctx context.Context, path string) error {
	courses, err := course.LoadCatalogFile(path)
	if err != nil {
		return err
	}
	for _, c := range courses {
		if _, err = cli.courses.UpsertCourse(ctx, c); err != nil {
			return errors.Wrapf(err, "importing course %q", c.ID)
		}
	}
	fmt.Fprintf(cli.out, "imported %d course(s)\n", len(courses))
	return nil
}

func (cli *commandLine) listCourses(ctx context.Context) error {
	courses, err := cli.courses.ListCourses(ctx)
	if err != nil {
		return err
	}
	return cli.print(courses, "ID\tTITLE\tPASSING\tACTIVE", func(w io.Writer) {
		for _, c := range courses {
			fmt.Fprintf(w, "%s\t%s\t%g\t%t\n", c.ID, c.Title, c.PassingScore, c.IsActive)
		}
	})
}
