package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/almanac/internal/dateutil"
	"github.com/javiermolinar/almanac/internal/event"
)

func (a *App) neighborsCmd() *cobra.Command {
	var (
		date    string
		start   string
		end     string
		exclude string
	)

	cmd := &cobra.Command{
		Use:   "neighbors",
		Short: "Show the events just before and after a time range",
		Long: `Show the closest event ending before a time range and the closest
event starting after it. These are the events that bound an edit of the
range.

Example:
  almanac neighbors --date=2025-02-03 --start=10:00 --end=11:00
  almanac neighbors --start=09:00 --end=10:00 --exclude=6f1c2a9e-...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.openStack()
			if err != nil {
				return err
			}

			day, err := dateutil.ParseRelativeDate(date, a.now().In(st.Location))
			if err != nil {
				return fmt.Errorf("invalid date %q: %w", date, err)
			}
			iv, err := buildInterval(day, start, end, false)
			if err != nil {
				return err
			}

			n, err := st.Service.Neighbors(cmd.Context(), iv, exclude)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printNeighbor(out, "Previous", n.Prev, st.Location)
			printNeighbor(out, "Next", n.Next, st.Location)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD or relative, default: today)")
	cmd.Flags().StringVar(&start, "start", "", "Start time (HH:MM, required)")
	cmd.Flags().StringVar(&end, "end", "", "End time (HH:MM, required)")
	cmd.Flags().StringVar(&exclude, "exclude", "", "ID of an event to ignore, such as the one being edited")

	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

func printNeighbor(out io.Writer, label string, e *event.Event, loc *time.Location) {
	if e == nil {
		_, _ = fmt.Fprintf(out, "%-9s %s\n", label+":", formatMuted("none"))
		return
	}
	_, _ = fmt.Fprintf(out, "%-9s %s %s %s  %s\n",
		label+":",
		e.Start.In(loc).Format(dateutil.DateLayout),
		formatEvent(spanLabel(*e, loc)),
		e.Title,
		formatMuted(shortID(e.ID)),
	)
}
