package ui

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/almanac/internal/dateutil"
	"github.com/javiermolinar/almanac/internal/event"
	"github.com/javiermolinar/almanac/internal/interval"
)

// clockLabel formats t as HH:MM, showing the midnight that ends day as
// 24:00.
func clockLabel(t, day time.Time) string {
	if t.Equal(day.AddDate(0, 0, 1)) {
		return "24:00"
	}
	return t.Format("15:04")
}

// buildInterval parses a date and HH:MM clock times into an interval.
func buildInterval(date time.Time, start, end string, allDay bool) (interval.Interval, error) {
	if allDay {
		return interval.WholeDay(date), nil
	}
	from, err := dateutil.ParseClock(date, start)
	if err != nil {
		return interval.Interval{}, fmt.Errorf("invalid start %q: %w", start, err)
	}
	to, err := dateutil.ParseClock(date, end)
	if err != nil {
		return interval.Interval{}, fmt.Errorf("invalid end %q: %w", end, err)
	}
	return interval.New(from, to), nil
}

func (a *App) addCmd() *cobra.Command {
	var (
		date        string
		start       string
		end         string
		description string
		allDay      bool
	)

	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a new event",
		Long: `Add a new event to the calendar.

Example:
  almanac add "Design review" --date=2025-02-03 --start=09:00 --end=10:30
  almanac add "Holiday" --date=2025-02-07 --all-day`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !allDay && (start == "" || end == "") {
				return fmt.Errorf("--start and --end are required unless --all-day is set")
			}
			st, err := a.openStack()
			if err != nil {
				return err
			}

			day, err := dateutil.ParseRelativeDate(date, a.now().In(st.Location))
			if err != nil {
				return fmt.Errorf("invalid date %q: %w", date, err)
			}
			iv, err := buildInterval(day, start, end, allDay)
			if err != nil {
				return err
			}
			d, err := event.NewDraft(args[0], description, iv)
			if err != nil {
				return err
			}

			e, err := st.Service.Create(cmd.Context(), d)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s %s %s\n",
				formatOK("Created"),
				e.ID,
				e.Title,
				day.Format(dateutil.DateLayout),
				spanLabel(e, st.Location),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Event date (YYYY-MM-DD or relative, default: today)")
	cmd.Flags().StringVar(&start, "start", "", "Start time (HH:MM)")
	cmd.Flags().StringVar(&end, "end", "", "End time (HH:MM, 24:00 for midnight)")
	cmd.Flags().StringVar(&description, "description", "", "Event description")
	cmd.Flags().BoolVar(&allDay, "all-day", false, "Make it an all-day event")

	return cmd
}

func (a *App) editCmd() *cobra.Command {
	var (
		title       string
		description string
		date        string
		start       string
		end         string
		allDay      bool
	)

	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Change an event",
		Long: `Change the fields of an event. Only the flags given are changed;
--date moves the event keeping its times.

Example:
  almanac edit 6f1c2a9e-... --start=10:00
  almanac edit 6f1c2a9e-... --title="Design review" --date=tomorrow`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStack()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			e, err := st.Service.Get(ctx, args[0])
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			d := e.Draft()
			if flags.Changed("title") {
				d.Title = title
			}
			if flags.Changed("description") {
				d.Description = description
			}

			if flags.Changed("date") || flags.Changed("start") || flags.Changed("end") || flags.Changed("all-day") {
				day := dateutil.TruncateToDay(e.Start.In(st.Location))
				if flags.Changed("date") {
					if day, err = dateutil.ParseRelativeDate(date, a.now().In(st.Location)); err != nil {
						return fmt.Errorf("invalid date %q: %w", date, err)
					}
				}
				if !flags.Changed("start") {
					start = e.Start.In(st.Location).Format("15:04")
				}
				if !flags.Changed("end") {
					end = clockLabel(e.End.In(st.Location), dateutil.TruncateToDay(e.Start.In(st.Location)))
				}
				if !flags.Changed("all-day") {
					allDay = interval.IsWholeDay(e.Interval) && !flags.Changed("start") && !flags.Changed("end")
				}
				if d.Interval, err = buildInterval(day, start, end, allDay); err != nil {
					return err
				}
			}

			d, err = event.NewDraft(d.Title, d.Description, d.Interval)
			if err != nil {
				return err
			}
			updated, err := st.Service.Update(ctx, &e, d)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s %s %s\n",
				formatOK("Updated"),
				updated.ID,
				updated.Title,
				updated.Start.In(st.Location).Format(dateutil.DateLayout),
				spanLabel(updated, st.Location),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&date, "date", "", "New date (YYYY-MM-DD or relative)")
	cmd.Flags().StringVar(&start, "start", "", "New start time (HH:MM)")
	cmd.Flags().StringVar(&end, "end", "", "New end time (HH:MM, 24:00 for midnight)")
	cmd.Flags().BoolVar(&allDay, "all-day", false, "Make it an all-day event")

	return cmd
}

func (a *App) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStack()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			e, err := st.Service.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if err := st.Service.Delete(ctx, &e); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n", formatOK("Deleted"), e.ID, e.Title)
			return nil
		},
	}
}

func (a *App) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show one event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStack()
			if err != nil {
				return err
			}
			e, err := st.Service.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printEventDetail(cmd.OutOrStdout(), e, st.Location)
			return nil
		},
	}
}
