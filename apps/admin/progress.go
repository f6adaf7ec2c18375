package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/volatiletech/null/v8"

	"github.com/Hanyshennawy/moe-scorm-lms/core/cmi"
)

func (cli *commandLine) progressCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Inspect or reset learner progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Usage()
			return errHelp
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list <learner>",
		Short: "List a learner's progress across courses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.listProgress(cmd.Context(), args[0])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show <learner> <course>",
		Short: "Show a learner's progress in a course",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.showProgress(cmd.Context(), args[0], args[1])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "eligibility <learner> <course>",
		Short: "Evaluate certificate eligibility",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.eligibility(cmd.Context(), args[0], args[1])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "reset <learner> <course>",
		Short: "Delete a learner's progress and sessions in a course",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.svc.Reset(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cli.out, "reset %s in %s\n", args[0], args[1])
			return nil
		},
	})
	return cmd
}

func (cli *commandLine) sessionsCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "sessions <learner> <course>",
		Short: "List a learner's sessions in a course, newest first",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.listSessions(cmd.Context(), args[0], args[1], limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of sessions (default 50)")
	return cmd
}

func (cli *commandLine) listProgress(ctx context.Context, learnerID string) error {
	recs, err := cli.svc.ListProgress(ctx, learnerID)
	if err != nil {
		return err
	}
	return cli.print(recs, "COURSE\tSTATUS\tSCORE\tTOTAL TIME\tCOMPLETION", func(w io.Writer) {
		for _, r := range recs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%g%%\n",
				r.CourseID, r.LessonStatus.Vocabulary(), formatScore(r.ScoreRaw), cmi.EncodeTime(r.TotalTime), r.CompletionPercentage)
		}
	})
}

func (cli *commandLine) showProgress(ctx context.Context, learnerID, courseID string) error {
	r, err := cli.svc.Progress(ctx, learnerID, courseID)
	if err != nil {
		return err
	}
	return cli.print(r, "", func(w io.Writer) {
		fmt.Fprintf(w, "status:\t%s\n", r.LessonStatus.Vocabulary())
		fmt.Fprintf(w, "score:\t%s\n", formatScore(r.ScoreRaw))
		fmt.Fprintf(w, "location:\t%s\n", r.LessonLocation)
		fmt.Fprintf(w, "total time:\t%s\n", cmi.EncodeTime(r.TotalTime))
		fmt.Fprintf(w, "completion:\t%g%%\n", r.CompletionPercentage)
		fmt.Fprintf(w, "accesses:\t%d\n", r.AccessCount)
		fmt.Fprintf(w, "completed at:\t%s\n", formatTime(r.CompletedAt))
	})
}

func (cli *commandLine) eligibility(ctx context.Context, learnerID, courseID string) error {
	v, err := cli.svc.Eligibility(ctx, learnerID, courseID)
	if err != nil {
		return err
	}
	return cli.print(v, "", func(w io.Writer) {
		fmt.Fprintf(w, "eligible:\t%t\n", v.Eligible)
		if v.Reason.Valid {
			fmt.Fprintf(w, "reason:\t%s\n", v.Reason.String)
		}
		fmt.Fprintf(w, "score:\t%g / %g\n", v.Score, v.PassingScore)
	})
}

func (cli *commandLine) listSessions(ctx context.Context, learnerID, courseID string, limit int) error {
	sessions, err := cli.svc.Sessions(ctx, learnerID, courseID, limit)
	if err != nil {
		return err
	}
	return cli.print(sessions, "ID\tSTARTED\tENDED\tDURATION", func(w io.Writer) {
		for _, s := range sessions {
			duration := "-"
			if s.Duration.Valid {
				duration = cmi.EncodeTime(s.Duration.Int64)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, s.SessionStart.Format(time.RFC3339), formatTime(s.SessionEnd), duration)
		}
	})
}

func formatScore(score null.Float64) string {
	if !score.Valid {
		return "-"
	}
	return fmt.Sprintf("%g", score.Float64)
}

func formatTime(t null.Time) string {
	if !t.Valid {
		return "-"
	}
	return t.Time.Format(time.RFC3339)
}
