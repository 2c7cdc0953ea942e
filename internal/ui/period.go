package ui

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/almanac/internal/dateutil"
	"github.com/javiermolinar/almanac/internal/period"
	"github.com/javiermolinar/almanac/internal/summary"
)

func (a *App) dayCmd() *cobra.Command {
	return a.periodCmd(period.GranularityDay, "day", "List the events of a day")
}

func (a *App) weekCmd() *cobra.Command {
	return a.periodCmd(period.GranularityWeek, "week", "List the events of an ISO week")
}

func (a *App) monthCmd() *cobra.Command {
	return a.periodCmd(period.GranularityMonth, "month", "List the events of a month")
}

// periodCmd lists the period of granularity g containing the date argument.
func (a *App) periodCmd(g period.Granularity, use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [date]",
		Short: short,
		Long: short + `.

The date defaults to today and accepts YYYY-MM-DD, today, tomorrow,
yesterday, next-week, last-week, weekday names and next-<weekday>.`,
		Example: fmt.Sprintf(`  almanac %[1]s
  almanac %[1]s tomorrow
  almanac %[1]s 2025-02-03`, use),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStack()
			if err != nil {
				return err
			}

			var arg string
			if len(args) == 1 {
				arg = args[0]
			}
			date, err := dateutil.ParseRelativeDate(arg, a.now().In(st.Location))
			if err != nil {
				return fmt.Errorf("invalid date %q: %w", arg, err)
			}

			key := period.KeyFor(g, date)
			entry, err := st.Cache.Fetch(cmd.Context(), key)
			if err != nil {
				return err
			}
			a.logger.Debug("period listed", "key", key.String(), "events", len(entry.Events))

			days := periodDays(key, st.Location)
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "%s %s\n\n", formatHeader(g.String()), key.String())
			if printDays(out, entry.Events, days, st.Location) == 0 {
				_, _ = fmt.Fprintln(out, "No events.")
			}

			dayStart, dayEnd := a.config.DayBounds()
			s := summary.Summarize(entry.Events, days, summary.Options{DayStart: dayStart, DayEnd: dayEnd})
			printSummary(out, g, s)
			return nil
		},
	}
}

// periodDays returns midnight of every day of key.
func periodDays(key period.Key, loc *time.Location) []time.Time {
	var days []period.Day
	switch k := key.(type) {
	case period.Day:
		days = []period.Day{k}
	case period.Week:
		days = k.Days()
	case period.Month:
		days = k.Days()
	}
	out := make([]time.Time, len(days))
	for i, d := range days {
		out[i] = d.Date(loc)
	}
	return out
}
