package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"burnline/internal/app"
	"burnline/internal/config"
	"burnline/internal/domain"
	"burnline/internal/sheet"
	"burnline/internal/view"
)

var rootCmd = &cobra.Command{
	Use:   "bl",
	Short: "Burnline CLI",
	Long: `Burnline turns a worksheet of project events into a burn-up dashboard.
Core concepts:
- Worksheet: a comma-separated file of dated events, imported with --file.
- Counter schema: rows are "initial", "completed" or "added" item counts;
  the running totals drive the burn-up series.
- Activity schema: rows are timed activities with a phase, a responsible
  party and a status; hours and cost drive the series instead.
- Phases: discovered from the data; the catalog in burnline.yml only adds
  labels and keeps empty phases visible.
- Everything is recomputed from scratch after every change; nothing is
  persisted beyond the worksheet you already own.`,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("BURNLINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().StringP("file", "f", "", "worksheet to load")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("phase", "all", "phase filter (all or a phase id)")
	rootCmd.PersistentFlags().String("view", "", "series view (items or hours)")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("file", rootCmd.PersistentFlags().Lookup("file"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("phase", rootCmd.PersistentFlags().Lookup("phase"))
	_ = viper.BindPFlag("view", rootCmd.PersistentFlags().Lookup("view"))
}

func registerCommands() {
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(seriesCmd())
	rootCmd.AddCommand(phasesCmd())
	rootCmd.AddCommand(peopleCmd())
	rootCmd.AddCommand(eventsCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(templateCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(configCmd())
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the dashboard headline numbers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(func(st *app.State) error {
				if viper.GetBool("json") {
					return printJSON(st.Derived.Summary)
				}
				view.RenderSummary(os.Stdout, st.Config.Project.Name, st.Derived.Summary, st.Settings.View)
				return nil
			})
		},
	}
}

func seriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "series",
		Short: "Show the running-total series",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(func(st *app.State) error {
				if viper.GetBool("json") {
					return printJSON(st.Derived.Series)
				}
				view.RenderSeries(os.Stdout, st.Derived.Series, st.Settings.View)
				return nil
			})
		},
	}
}

func phasesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "phases",
		Short: "Show per-phase rollups",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(func(st *app.State) error {
				if viper.GetBool("json") {
					return printJSON(st.Derived.Phases)
				}
				view.RenderPhases(os.Stdout, st.Derived.Phases, st.Settings.View)
				return nil
			})
		},
	}
}

func peopleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "people",
		Short: "Show per-responsible rollups",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(func(st *app.State) error {
				if viper.GetBool("json") {
					return printJSON(st.Derived.People)
				}
				view.RenderPeople(os.Stdout, st.Derived.People)
				return nil
			})
		},
	}
}

func eventsCmd() *cobra.Command {
	ev := &cobra.Command{Use: "events", Short: "Inspect and edit events"}
	ev.AddCommand(eventsListCmd())
	ev.AddCommand(eventsAddCmd())
	ev.AddCommand(eventsRemoveCmd())
	return ev
}

func eventsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List events, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(func(st *app.State) error {
				if viper.GetBool("json") {
					return printJSON(st.Store.Events())
				}
				view.RenderHistory(os.Stdout, st.Store.Events())
				return nil
			})
		},
	}
}

func eventsAddCmd() *cobra.Command {
	var (
		date, kind, description       string
		completed, added, phaseID     int
		activity, status, responsible string
		start, end                    string
		hours                         float64
		write                         bool
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a manual event",
		Long: `Add a manual event to the loaded worksheet. Use --type for counter
events (completed or added items) or --status/--activity for activities.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(func(st *app.State) error {
				var ev domain.Event
				switch {
				case kind != "":
					k, ok := counterKind(kind)
					if !ok {
						return fmt.Errorf("--type must be completed or added")
					}
					if completed <= 0 && added <= 0 {
						return fmt.Errorf("a manual event must move at least one item")
					}
					ev = domain.CounterEvent{
						Date:        st.Parser.NormalizeDate(date),
						Kind:        k,
						Completed:   max(completed, 0),
						Added:       max(added, 0),
						Phase:       max(phaseID, 1),
						Description: description,
					}
				case status != "" || activity != "":
					if description == "" {
						description = activity
					}
					if description == "" {
						return fmt.Errorf("--description or --activity is required")
					}
					a := domain.ActivityEvent{
						Date:        st.Parser.NormalizeDate(date),
						Description: description,
						Activity:    activity,
						Phase:       max(phaseID, 1),
						Responsible: responsible,
						Status:      activityStatus(status),
						Start:       start,
						End:         end,
					}
					a.Hours = st.Parser.DeriveHours(hours, start, end)
					a.LoggedAt = st.Parser.NormalizeDate("")
					ev = a
				default:
					return fmt.Errorf("--type or --status is required")
				}

				ev = st.AddEvent(ev)
				if err := writeBack(st, write); err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(ev)
				}
				fmt.Printf("Event %d added.\n", ev.EventID())
				view.RenderSummary(os.Stdout, st.Config.Project.Name, st.Derived.Summary, st.Settings.View)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "event date (defaults to today)")
	cmd.Flags().StringVar(&kind, "type", "", "counter kind: completed or added")
	cmd.Flags().IntVar(&completed, "completed", 0, "completed item count")
	cmd.Flags().IntVar(&added, "added", 0, "added item count")
	cmd.Flags().IntVar(&phaseID, "phase-id", 1, "phase id")
	cmd.Flags().StringVar(&description, "description", "", "event description")
	cmd.Flags().StringVar(&activity, "activity", "", "activity name")
	cmd.Flags().StringVar(&status, "status", "", "activity status (done, in progress, pending, cancelled)")
	cmd.Flags().StringVar(&responsible, "responsible", "", "responsible party")
	cmd.Flags().StringVar(&start, "start", "", "start time (HH:MM)")
	cmd.Flags().StringVar(&end, "end", "", "end time (HH:MM)")
	cmd.Flags().Float64Var(&hours, "hours", 0, "explicit duration in hours")
	cmd.Flags().BoolVar(&write, "write", false, "write the updated worksheet back to --file")
	return cmd
}

func eventsRemoveCmd() *cobra.Command {
	var id int
	var write bool
	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove an event by id",
		RunE: func(cmd *cobra.Command, args []string) error {
			if id <= 0 {
				return fmt.Errorf("--id required")
			}
			return withState(func(st *app.State) error {
				if err := st.RemoveEvent(id); err != nil {
					return err
				}
				if err := writeBack(st, write); err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(st.Derived.Summary)
				}
				fmt.Printf("Event %d removed.\n", id)
				view.RenderSummary(os.Stdout, st.Config.Project.Name, st.Derived.Summary, st.Settings.View)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&id, "id", 0, "event id")
	cmd.Flags().BoolVar(&write, "write", false, "write the updated worksheet back to --file")
	return cmd
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Validate a worksheet and report what it contains",
		RunE: func(cmd *cobra.Command, args []string) error {
			file := viper.GetString("file")
			if file == "" {
				return fmt.Errorf("--file required")
			}
			return withState(func(st *app.State) error {
				// withState already imported the file; re-parse for the report.
				data, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				res, _ := st.Parser.Parse(string(data))
				if viper.GetBool("json") {
					return printJSON(res)
				}
				fmt.Printf("Worksheet loaded: %d events (%s schema).\n", len(res.Events), res.Schema)
				if res.InitialBacklog > 0 {
					fmt.Printf("Initial backlog: %d\n", res.InitialBacklog)
				}
				fmt.Printf("Fingerprint: %s\n", res.Fingerprint)
				for _, issue := range res.Issues {
					fmt.Printf("skipped line %d: %s\n", issue.Line, issue.Reason)
				}
				view.RenderSummary(os.Stdout, st.Config.Project.Name, st.Derived.Summary, st.Settings.View)
				return nil
			})
		},
	}
}

func templateCmd() *cobra.Command {
	var schema, out string
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write a starter worksheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			var sc domain.Schema
			switch schema {
			case "counter":
				sc = domain.SchemaCounter
			case "activity":
				sc = domain.SchemaActivity
			default:
				return fmt.Errorf("--schema must be counter or activity")
			}
			if out == "" {
				out = sheet.TemplateFilename(sc)
			}
			if err := os.WriteFile(out, []byte(sheet.Template(sc)), 0o644); err != nil {
				return err
			}
			fmt.Printf("Template written to %s (%s)\n", out, sheet.TemplateMIME)
			return nil
		},
	}
	cmd.Flags().StringVar(&schema, "schema", "counter", "template schema (counter or activity)")
	cmd.Flags().StringVar(&out, "out", "", "output path (defaults to the canonical template name)")
	return cmd
}

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Re-render the dashboard whenever the worksheet changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			file := viper.GetString("file")
			if file == "" {
				return fmt.Errorf("--file required")
			}
			return withState(func(st *app.State) error {
				renderDashboard(st)
				return watchLoop(cmd, st, file)
			})
		},
	}
}

// watchLoop re-imports the worksheet on every change, debounced, skipping
// recomputation when the content fingerprint is unchanged. A bad rewrite
// keeps the previous derived state on screen; the loop never exits on a
// parse failure.
func watchLoop(cmd *cobra.Command, st *app.State, file string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()
	if err := w.Add(filepath.Dir(file)); err != nil {
		return err
	}

	last := sheet.Fingerprint(nil)
	if data, err := os.ReadFile(file); err == nil {
		last = sheet.Fingerprint(data)
	}

	const debounce = time.Second
	timer := time.NewTimer(debounce)
	timer.Stop()
	slog.Info("watching", "file", file)

	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(file) {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				timer.Reset(debounce)
			}
		case <-timer.C:
			data, err := os.ReadFile(file)
			if err != nil {
				slog.Error("read worksheet", "err", err)
				continue
			}
			fp := sheet.Fingerprint(data)
			if fp == last {
				continue
			}
			last = fp
			if _, err := st.ImportCSV(string(data)); err != nil {
				slog.Error("import failed, keeping previous dashboard", "err", err)
				continue
			}
			slog.Info("recomputed", "events", st.Store.Len(), "fingerprint", fp)
			renderDashboard(st)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Error("fsnotify error", "err", err)
		}
	}
}

func configCmd() *cobra.Command {
	cfg := &cobra.Command{Use: "config", Short: "Manage burnline.yml"}
	cfg.AddCommand(configInitCmd())
	cfg.AddCommand(configShowCmd())
	return cfg
}

func configInitCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default burnline.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(viper.GetString("workspace"))
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault(name)), 0o644); err != nil {
				return err
			}
			fmt.Printf("Config written to %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "My Project", "project name")
	return cmd
}

func configShowCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective config",
		RunE: func(cmd *cobra.Command, args []string) error {
			if path != "" {
				cfg, err := config.FromFile(path)
				if err != nil {
					return err
				}
				return printJSON(cfg)
			}
			cfg, err := config.LoadOptional(viper.GetString("workspace"))
			if err != nil {
				return err
			}
			if cfg == nil {
				cfg = config.Default("My Project")
			}
			return printJSON(cfg)
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "read config from an explicit file instead of the workspace")
	return cmd
}

// --- helpers ---

// withState builds the session: config, flag overrides, then the worksheet
// if one was given. A failed or empty import aborts before fn runs, leaving
// nothing half-applied.
func withState(fn func(*app.State) error) error {
	cfg, err := config.LoadOptional(viper.GetString("workspace"))
	if err != nil {
		return err
	}
	if cfg == nil {
		cfg = config.Default("My Project")
	}
	st := app.NewState(cfg)

	if p := viper.GetString("phase"); p != "" && p != "all" {
		n, err := strconv.Atoi(p)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid --phase %q: want all or a positive phase id", p)
		}
		st.Settings.PhaseFilter = n
	}
	if v := viper.GetString("view"); v != "" {
		if v != "items" && v != "hours" {
			return fmt.Errorf("invalid --view %q: want items or hours", v)
		}
		st.Settings.View = v
	}

	if file := viper.GetString("file"); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read worksheet: %w", err)
		}
		if _, err := st.ImportCSV(string(data)); err != nil {
			if errors.Is(err, sheet.ErrNoRows) {
				return fmt.Errorf("no valid rows found in %s", file)
			}
			return fmt.Errorf("could not load %s: %w", file, err)
		}
	}
	st.Recompute()
	return fn(st)
}

// writeBack exports the store to the worksheet given with --file.
func writeBack(st *app.State, write bool) error {
	if !write {
		return nil
	}
	file := viper.GetString("file")
	if file == "" {
		return fmt.Errorf("--write needs --file")
	}
	return os.WriteFile(file, []byte(sheet.Write(storeSchema(st.Store.Events()), st.Store.Events())), 0o644)
}

func storeSchema(events []domain.Event) domain.Schema {
	for _, ev := range events {
		if _, ok := ev.(domain.ActivityEvent); ok {
			return domain.SchemaActivity
		}
	}
	return domain.SchemaCounter
}

func renderDashboard(st *app.State) {
	view.RenderSummary(os.Stdout, st.Config.Project.Name, st.Derived.Summary, st.Settings.View)
	view.RenderPhases(os.Stdout, st.Derived.Phases, st.Settings.View)
	if len(st.Derived.People) > 0 {
		view.RenderPeople(os.Stdout, st.Derived.People)
	}
}

func counterKind(s string) (domain.Kind, bool) {
	switch strings.ToLower(s) {
	case "completed", "completado":
		return domain.KindCompleted, true
	case "added", "adicionado":
		return domain.KindAdded, true
	}
	return "", false
}

func activityStatus(s string) domain.Status {
	switch strings.ToLower(s) {
	case "done":
		return domain.StatusDone
	case "in progress", "in_progress":
		return domain.StatusInProgress
	case "cancelled", "canceled":
		return domain.StatusCancelled
	default:
		return domain.StatusPending
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
