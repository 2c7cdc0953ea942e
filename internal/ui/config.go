package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/almanac/internal/config"
	"github.com/javiermolinar/almanac/internal/tui/theme"
)

func (a *App) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		Long: `Interactive configuration management.

If no config file exists, creates one with default values.
Otherwise, displays current config and allows editing.

Example:
  almanac config`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInteractive(config.DefaultConfigPath(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func runConfigInteractive(configPath string, in io.Reader, out io.Writer) error {
	_, _ = fmt.Fprintf(out, "Config file: %s\n\n", configPath)

	// Load existing config or create defaults
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Check if file exists
	_, fileErr := os.Stat(configPath)
	if os.IsNotExist(fileErr) {
		_, _ = fmt.Fprintln(out, "No config file found. Creating with default values...")
		if err := cfg.SaveTo(configPath); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		_, _ = fmt.Fprintf(out, "Created %s\n\n", configPath)
	}

	printConfig(out, cfg)

	reader := bufio.NewReader(in)
	if !promptYesNo(reader, out, "\nWould you like to edit the configuration?") {
		return nil
	}

	p := prompter{reader: reader, out: out}
	cfg.Server.Addr = p.value("Server address", cfg.Server.Addr)
	cfg.API.BaseURL = p.value("Events API base URL (empty for the local database)", cfg.API.BaseURL)
	cfg.API.TimeoutSeconds = p.int("API timeout (seconds)", cfg.API.TimeoutSeconds)
	cfg.Calendar.Timezone = p.value("Timezone (IANA name or Local)", cfg.Calendar.Timezone)
	cfg.Calendar.MinSpanMinutes = p.int("Shortest event (minutes)", cfg.Calendar.MinSpanMinutes)
	cfg.Calendar.SnapMinutes = p.int("Resize step (minutes)", cfg.Calendar.SnapMinutes)
	cfg.Calendar.StaleAfterMinutes = p.int("Cache freshness (minutes)", cfg.Calendar.StaleAfterMinutes)
	cfg.Storage.DBPath = p.value("Database path", cfg.Storage.DBPath)
	cfg.Storage.RejectOverlaps = p.bool("Reject overlapping events", cfg.Storage.RejectOverlaps)
	cfg.UI.DayStart = p.value("Day start", cfg.UI.DayStart)
	cfg.UI.DayEnd = p.value("Day end", cfg.UI.DayEnd)
	cfg.UI.RowsPerHour = p.int("Rows per hour", cfg.UI.RowsPerHour)
	cfg.UI.Theme = p.theme(cfg.UI.Theme)

	// Validate before saving
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.SaveTo(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	_, _ = fmt.Fprintln(out, "\nConfiguration saved!")
	return nil
}

func printConfig(out io.Writer, cfg *config.Config) {
	lines := []string{
		"Current configuration:",
		"──────────────────────",
		"[server]",
		fmt.Sprintf("  addr                = %s", cfg.Server.Addr),
		"\n[api]",
		fmt.Sprintf("  base_url            = %s", cfg.API.BaseURL),
		fmt.Sprintf("  timeout_seconds     = %d", cfg.API.TimeoutSeconds),
		"\n[calendar]",
		fmt.Sprintf("  timezone            = %s", cfg.Calendar.Timezone),
		fmt.Sprintf("  min_span_minutes    = %d", cfg.Calendar.MinSpanMinutes),
		fmt.Sprintf("  snap_minutes        = %d", cfg.Calendar.SnapMinutes),
		fmt.Sprintf("  stale_after_minutes = %d", cfg.Calendar.StaleAfterMinutes),
		"\n[storage]",
		fmt.Sprintf("  db_path             = %s", cfg.Storage.DBPath),
		fmt.Sprintf("  reject_overlaps     = %t", cfg.Storage.RejectOverlaps),
		"\n[ui]",
		fmt.Sprintf("  theme               = %s", cfg.UI.Theme),
		fmt.Sprintf("  rows_per_hour       = %d", cfg.UI.RowsPerHour),
		fmt.Sprintf("  day_start           = %s", cfg.UI.DayStart),
		fmt.Sprintf("  day_end             = %s", cfg.UI.DayEnd),
	}
	_, _ = fmt.Fprintln(out, strings.Join(lines, "\n"))
}

func promptYesNo(reader *bufio.Reader, out io.Writer, question string) bool {
	_, _ = fmt.Fprintf(out, "%s [y/N]: ", question)
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

type prompter struct {
	reader *bufio.Reader
	out    io.Writer
}

func (p prompter) value(label, current string) string {
	if current == "" {
		_, _ = fmt.Fprintf(p.out, "  %s: ", label)
	} else {
		_, _ = fmt.Fprintf(p.out, "  %s [%s]: ", label, current)
	}
	input, _ := p.reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	return input
}

func (p prompter) int(label string, current int) int {
	for {
		value := p.value(label, strconv.Itoa(current))
		n, err := strconv.Atoi(value)
		if err == nil {
			return n
		}
		_, _ = fmt.Fprintf(p.out, "  Invalid number %q\n", value)
	}
}

func (p prompter) bool(label string, current bool) bool {
	for {
		value := strings.ToLower(p.value(label, strconv.FormatBool(current)))
		switch value {
		case "true", "yes", "y":
			return true
		case "false", "no", "n":
			return false
		}
		_, _ = fmt.Fprintf(p.out, "  Invalid answer %q\n", value)
	}
}

func (p prompter) theme(current string) string {
	options := strings.Join(theme.Available(), ", ")
	label := fmt.Sprintf("UI theme (%s)", options)
	for {
		value := strings.ToLower(p.value(label, current))
		if theme.IsAvailable(value) {
			return value
		}
		_, _ = fmt.Fprintf(p.out, "  Invalid theme %q. Available: %s\n", value, options)
	}
}
