package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"cloud.google.com/go/civil"
	"github.com/spf13/cobra"
	"github.com/username/workday-calendar/internal/calendar"
	"github.com/username/workday-calendar/internal/config"
	"github.com/username/workday-calendar/internal/storage"
	"github.com/username/workday-calendar/pkg/dateutil"
	"go.uber.org/zap"
)

func daysCmd() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "days",
		Short: "Count working days after --from up to and including --to",
		RunE: func(cmd *cobra.Command, args []string) error {
			calc, _, closer, err := initializeCalculator(cmd.Context(), cfg)
			defer closer()
			if err != nil {
				return err
			}

			days, err := calc.WorkingDaysBetween(from, to)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), days)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Start date (excluded)")
	cmd.Flags().StringVar(&to, "to", "", "End date (included)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func weekendCmd() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "weekend",
		Short: "Count Saturdays and Sundays after --from up to and including --to",
		RunE: func(cmd *cobra.Command, args []string) error {
			calc := newParsingCalculator(cfg)

			start, err := calc.ParseDate(from)
			if err != nil {
				return err
			}
			end, err := calc.ParseDate(to)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), calc.WeekendDays(start, end))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Start date (excluded)")
	cmd.Flags().StringVar(&to, "to", "", "End date (included)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func deltaCmd() *cobra.Command {
	var from, days string

	cmd := &cobra.Command{
		Use:   "delta",
		Short: "Project the date that is --days working days after --from",
		RunE: func(cmd *cobra.Command, args []string) error {
			calc, _, closer, err := initializeCalculator(cmd.Context(), cfg)
			defer closer()
			if err != nil {
				return err
			}

			date, err := calc.WorkingDeltaFrom(from, days)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), dateutil.Format(calc.Layout(), date))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Start date")
	cmd.Flags().StringVar(&days, "days", "", "Number of working days to add")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("days")

	return cmd
}

func monthCmd() *cobra.Command {
	var year, month int
	var list bool

	cmd := &cobra.Command{
		Use:   "month",
		Short: "Count working days in a month",
		RunE: func(cmd *cobra.Command, args []string) error {
			calc, _, closer, err := initializeCalculator(cmd.Context(), cfg)
			defer closer()
			if err != nil {
				return err
			}

			days, err := calc.WorkingDaysInMonth(year, time.Month(month))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !list {
				fmt.Fprintln(out, days)
				return nil
			}

			info, err := calc.MonthInfo(year, time.Month(month))
			if err != nil {
				return err
			}
			printMonth(out, calc.Layout(), info, days)
			return nil
		},
	}

	now := time.Now()
	cmd.Flags().IntVar(&year, "year", now.Year(), "Year")
	cmd.Flags().IntVar(&month, "month", int(now.Month()), "Month (1-12)")
	cmd.Flags().BoolVar(&list, "list", false, "List every day of the month")

	return cmd
}

func printMonth(out io.Writer, layout string, info *calendar.MonthInfo, workingDays int) {
	fmt.Fprintf(out, "📅 %s %d\n", info.Month, info.Year)
	fmt.Fprintln(out, "═══════════════════════════════════════")
	for _, day := range info.Days {
		line := fmt.Sprintf("  %s  %-3s  %-8s", dateutil.Format(layout, day.Date), dateutil.Weekday(day.Date).String()[:3], day.Type)
		if day.Note != "" {
			line += "  " + day.Note
		}
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, "───────────────────────────────────────")
	fmt.Fprintf(out, "  Workdays: %d  Weekend days: %d  Holidays: %d\n", info.WorkDays, info.Weekends, info.Holidays)
	fmt.Fprintf(out, "  Working days after the 1st: %d\n", workingDays)
}

func fiscalYearCmd() *cobra.Command {
	var year int
	var date string

	cmd := &cobra.Command{
		Use:   "fiscal-year",
		Short: "Break down the working days of a fiscal year month by month",
		RunE: func(cmd *cobra.Command, args []string) error {
			calc, _, closer, err := initializeCalculator(cmd.Context(), cfg)
			defer closer()
			if err != nil {
				return err
			}

			today := dateutil.Today()
			var fy calendar.FiscalYear
			switch {
			case year != 0:
				fy = calendar.NewFiscalYear(year)
			case date != "":
				d, err := calc.ParseDate(date)
				if err != nil {
					return err
				}
				fy = calendar.FiscalYearFor(d)
			default:
				fy = calendar.FiscalYearFor(today)
			}

			report, err := calc.FiscalYearBreakdown(fy, today)
			if err != nil {
				return err
			}

			printFiscalYear(cmd.OutOrStdout(), calc.Layout(), &cfg.FiscalYear, report)
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Fiscal year (e.g. 2007 for Oct 2006 - Sep 2007)")
	cmd.Flags().StringVar(&date, "date", "", "Any date within the fiscal year")
	cmd.MarkFlagsMutuallyExclusive("year", "date")

	return cmd
}

func printFiscalYear(out io.Writer, layout string, fyCfg *config.FiscalYearConfig, report *calendar.FiscalYearReport) {
	fy := report.FiscalYear
	fmt.Fprintf(out, "📊 %s (%s to %s)\n",
		fy.Label(fyCfg.GetDisplay(), fyCfg.Length),
		dateutil.Format(layout, fy.StartDate),
		dateutil.Format(layout, fy.EndDate))
	fmt.Fprintln(out, "═══════════════════════════════════════")
	for _, m := range report.Months {
		fmt.Fprintf(out, "  %-9s %d  %3d\n", m.Month, m.Year, m.WorkingDays)
	}
	fmt.Fprintln(out, "───────────────────────────────────────")
	fmt.Fprintf(out, "  Working days:  %d\n", report.WorkingDays)
	fmt.Fprintf(out, "  Remaining:     %d (%.1f%%)\n", report.Remaining, report.RemainingPercent())
}

func holidaysCmd() *cobra.Command {
	var year int
	var showTypes bool

	cmd := &cobra.Command{
		Use:   "holidays",
		Short: "List registered holidays or holiday types",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			layout := cfg.Calendar.GetDateFormat()

			if cfg.Storage.GetType() == config.StorageSQLite {
				listed, err := listStoredHolidays(cmd, year, showTypes)
				if err != nil || listed {
					return err
				}
			}

			// File storage, or an empty store served by the fallback source
			_, registry, closer, err := initializeCalculator(ctx, cfg)
			defer closer()
			if err != nil {
				return err
			}

			holidays := registry.All()
			if year != 0 {
				holidays = registry.Between(yearBounds(year))
			}

			if showTypes {
				printTypes(out, distinctTypes(holidays))
				return nil
			}
			printHolidays(out, layout, holidays)
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Only list holidays of this calendar year")
	cmd.Flags().BoolVar(&showTypes, "types", false, "List holiday types instead of holidays")

	return cmd
}

// listStoredHolidays answers the holidays command straight from the SQLite store.
// It reports false when the store is empty so the caller can use the fallback source.
func listStoredHolidays(cmd *cobra.Command, year int, showTypes bool) (bool, error) {
	ctx := cmd.Context()

	db, store, err := openStore(ctx, cfg)
	if err != nil {
		return false, err
	}
	defer db.Close()

	earliest, err := store.EarliestDate(ctx)
	if errors.Is(err, calendar.ErrEmptyRegistry) {
		logger.Warn("Holiday store is empty, listing fallback holidays", zap.String("dsn", cfg.Storage.DSN))
		return false, nil
	}
	if err != nil {
		return false, err
	}
	latest, err := store.LatestDate(ctx)
	if err != nil {
		return false, err
	}

	if showTypes {
		types, err := store.ListTypes(ctx)
		if err != nil {
			return false, err
		}
		printTypes(cmd.OutOrStdout(), types)
		return true, nil
	}

	lo, hi := earliest, latest
	if year != 0 {
		lo, hi = yearBounds(year)
	}

	holidays, err := store.ListRange(ctx, lo, hi)
	if err != nil {
		return false, err
	}
	count, err := store.CountInRange(ctx, lo, hi)
	if err != nil {
		return false, err
	}

	layout := cfg.Calendar.GetDateFormat()
	printHolidays(cmd.OutOrStdout(), layout, holidays)
	fmt.Fprintf(cmd.ErrOrStderr(), "%d holidays, store covers %s to %s\n",
		count, dateutil.Format(layout, earliest), dateutil.Format(layout, latest))
	return true, nil
}

func yearBounds(year int) (civil.Date, civil.Date) {
	return dateutil.Date(year, time.January, 1), dateutil.Date(year, time.December, 31)
}

func printHolidays(out io.Writer, layout string, holidays []calendar.Holiday) {
	for _, h := range holidays {
		fmt.Fprintf(out, "%s  %-3s  %s\n",
			dateutil.Format(layout, h.Date),
			dateutil.Weekday(h.Date).String()[:3],
			h.Type)
	}
}

func printTypes(out io.Writer, types []calendar.HolidayType) {
	for _, t := range types {
		fmt.Fprintf(out, "%-22s %s\n", t.ShortName, t.Name)
	}
}

func distinctTypes(holidays []calendar.Holiday) []calendar.HolidayType {
	seen := make(map[string]bool)
	var types []calendar.HolidayType
	for _, h := range holidays {
		if !seen[h.Type.ShortName] {
			seen[h.Type.ShortName] = true
			types = append(types, h.Type)
		}
	}
	sort.Slice(types, func(i, j int) bool {
		return types[i].ShortName < types[j].ShortName
	})
	return types
}

func seedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load holiday types and holidays into the SQLite store",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if file == "" {
				file = cfg.Storage.SeedFile
			}

			var types []calendar.HolidayType
			var holidays []calendar.Holiday
			var err error
			if file != "" {
				types, holidays, err = storage.NewFileSource(file, logger).LoadSeed(ctx)
			} else {
				types, holidays, err = storage.DefaultSeed(logger)
			}
			if err != nil {
				return err
			}

			db, store, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			result, err := storage.Seed(ctx, store, types, holidays, logger)
			if err != nil {
				return fmt.Errorf("seed failed: %w", err)
			}

			logger.Info("Holidays seeded", zap.String("dsn", cfg.Storage.DSN))
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Seeded %s: %d types, %d created, %d updated, %d skipped, %d fiscal years set\n",
				cfg.Storage.DSN, result.Types, result.Created, result.Updated, result.Skipped, result.FiscalYears)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Seed file (.json or text); default is storage.seed_file or the embedded seed")

	return cmd
}
