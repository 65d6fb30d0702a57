package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"subtrack/internal/core"
	"subtrack/internal/export"
	"subtrack/internal/seed"
	"subtrack/internal/services"
)

func (a *app) listCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List subscriptions with their next payment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			subs, settings, err := a.svc.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			if status != "" {
				subs = filterStatus(subs, core.Status(strings.ToLower(status)))
			}
			renderSubscriptions(cmd.OutOrStdout(), subs, settings, a.now)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Only show active or paused subscriptions")
	return cmd
}

func filterStatus(subs []core.Subscription, status core.Status) []core.Subscription {
	out := subs[:0:0]
	for _, s := range subs {
		if s.Status == status {
			out = append(out, s)
		}
	}
	return out
}

func (a *app) totalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "totals",
		Short: "Show weekly, monthly and yearly spend with the budget",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ov, err := a.svc.Dashboard(cmd.Context(), a.now, a.cfg.UpcomingLimit)
			if err != nil {
				return err
			}
			renderTotals(cmd.OutOrStdout(), ov)
			return nil
		},
	}
}

func (a *app) upcomingCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "Show the next payments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 0 {
				return errors.New("--limit must not be negative")
			}
			subs, settings, err := a.svc.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			renderUpcoming(cmd.OutOrStdout(), services.Upcoming(subs, a.now, limit), settings, a.now)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 5, "Maximum number of payments, 0 for all")
	return cmd
}

func (a *app) calendarCmd() *cobra.Command {
	var year, month int
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show the billing dates of a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if year == 0 {
				year = a.now.Year()
			}
			if month == 0 {
				month = int(a.now.Month())
			}
			if month < 1 || month > 12 {
				return fmt.Errorf("invalid --month %d", month)
			}
			cal, err := a.svc.Calendar(cmd.Context(), year, time.Month(month), a.now)
			if err != nil {
				return err
			}
			settings, err := a.svc.Settings(cmd.Context())
			if err != nil {
				return err
			}
			renderCalendar(cmd.OutOrStdout(), cal, settings)
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "Year, defaults to the year of --now")
	cmd.Flags().IntVar(&month, "month", 0, "Month 1-12, defaults to the month of --now")
	return cmd
}

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Create subscriptions and settings from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := seed.Load(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if doc.Settings != nil {
				if _, err := a.svc.SaveSettings(ctx, doc.Settings.ToCore()); err != nil {
					return fmt.Errorf("import settings: %w", err)
				}
			}
			created := 0
			for _, sub := range doc.Snapshot(a.now) {
				// Imports always create new records.
				sub.ID = ""
				if _, err := a.svc.Create(ctx, sub); err != nil {
					return fmt.Errorf("import %q: %w", sub.Name, err)
				}
				created++
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d subscriptions from %s\n", created, args[0])
			return nil
		},
	}
}

func (a *app) exportCmd() *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export subscriptions as CSV, XLSX or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			subs, settings, err := a.svc.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			format = strings.ToLower(format)

			if format == "yaml" {
				if output == "" {
					output = export.Filename("yaml", a.now)
				}
				if err := seed.Save(output, seed.FromCore(subs, settings)); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", output)
				return nil
			}

			write, err := exportWriter(format, subs, settings, a.now)
			if err != nil {
				return err
			}
			if output == "" && format == "xlsx" {
				output = export.Filename("xlsx", a.now)
			}
			if output == "" || output == "-" {
				return write(cmd.OutOrStdout())
			}
			if err := writeFile(output, write); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "Output format: csv, xlsx or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, - for stdout (csv only)")
	return cmd
}

func exportWriter(format string, subs []core.Subscription, settings core.Settings, now time.Time) (func(io.Writer) error, error) {
	switch format {
	case "csv":
		return func(w io.Writer) error { return export.WriteCSV(w, subs, settings) }, nil
	case "xlsx":
		return func(w io.Writer) error { return export.WriteXLSX(w, subs, settings, now) }, nil
	default:
		return nil, fmt.Errorf("unsupported format %q: want csv, xlsx or yaml", format)
	}
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (a *app) pauseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pause <id>",
		Short: "Pause a subscription now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.transition(cmd, "Paused", func(ctx context.Context) (core.Subscription, error) {
				return a.svc.Pause(ctx, args[0])
			})
		},
	}
}

func (a *app) resumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resume <id>",
		Short: "Resume a paused subscription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.transition(cmd, "Resumed", func(ctx context.Context) (core.Subscription, error) {
				return a.svc.Resume(ctx, args[0])
			})
		},
	}
}

func (a *app) schedulePauseCmd() *cobra.Command {
	var off bool
	cmd := &cobra.Command{
		Use:   "schedule-pause <id>",
		Short: "Pause a subscription at its next renewal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			verb := "Scheduled pause for"
			if off {
				verb = "Cancelled scheduled pause for"
			}
			return a.transition(cmd, verb, func(ctx context.Context) (core.Subscription, error) {
				return a.svc.SchedulePause(ctx, args[0], !off)
			})
		},
	}
	cmd.Flags().BoolVar(&off, "off", false, "Cancel a scheduled pause")
	return cmd
}

func (a *app) transition(cmd *cobra.Command, verb string, apply func(context.Context) (core.Subscription, error)) error {
	sub, err := apply(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", verb, sub.Name, sub.ID)
	return nil
}

func (a *app) applyPausesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply-pauses",
		Short: "Apply scheduled pauses whose renewal date has passed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			processor := services.NewPauseProcessor(a.res.Store, a.res.Publisher, nil)
			count, err := processor.ProcessDuePauses(cmd.Context(), a.now)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d scheduled pauses\n", count)
			return nil
		},
	}
}

func (a *app) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print subscription events from the message broker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.res.AMQP == nil {
				return errors.New("AMQP is not configured or unreachable (set AMQP_URL)")
			}
			out := cmd.OutOrStdout()
			err := a.res.AMQP.ConsumeEvents(cmd.Context(), func(_ context.Context, e core.Event) error {
				renderEvent(out, e)
				return nil
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
