package main

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/tcardoso/designa/internal/config"
	"github.com/tcardoso/designa/pkg/clients/gmailclient"
	"github.com/tcardoso/designa/pkg/core/model"
	"github.com/tcardoso/designa/pkg/core/services"
	"github.com/tcardoso/designa/pkg/postgres"
	"github.com/tcardoso/designa/pkg/utils"
	"github.com/tcardoso/designa/pkg/utils/logging"
)

// App holds the application dependencies
type App struct {
	cfg         *config.Config
	database    *postgres.DB
	gmailClient *gmailclient.Client
	session     *services.Session
	logger      *zap.Logger
	ctx         context.Context
}

var (
	env     string
	verbose bool
	app     *App
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "designa",
		Short: "Designa CLI - Manage midweek meeting assignments",
		Long:  `A CLI tool for generating, auditing and reverting congregation meeting assignments.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil {
				if app.database != nil {
					app.database.Close()
				}
				if app.logger != nil {
					app.logger.Sync()
				}
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug output on the console")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(undoCmd())
	rootCmd.AddCommand(explainCmd())
	rootCmd.AddCommand(listPublishersCmd())
	rootCmd.AddCommand(importHistoryCmd())
	rootCmd.AddCommand(notifyCmd())
	rootCmd.AddCommand(interactiveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, database and the session state
func initApp() error {
	var err error
	app = &App{
		ctx:     context.Background(),
		session: services.NewSession(),
	}

	app.logger, err = logging.InitLogger(env, verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.logger.Info("Starting application", zap.String("environment", env))

	app.logger.Info("Loading configuration")
	app.cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.logger.Debug("Configuration loaded successfully")

	app.logger.Info("Connecting to database")
	app.database, err = postgres.NewDB(app.ctx, app.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := app.database.RunMigrations(app.ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	app.logger.Debug("Database ready")

	return nil
}

// gmail lazily initializes the Gmail client so database-only commands never
// trigger the OAuth flow.
func (a *App) gmail() (*gmailclient.Client, error) {
	if a.gmailClient != nil {
		return a.gmailClient, nil
	}

	a.logger.Info("Loading OAuth client configuration")
	oauthCfg, err := config.LoadOAuthClientWithEnv(env)
	if err != nil {
		return nil, fmt.Errorf("failed to load OAuth client config: %w", err)
	}

	oauthConfig, err := utils.GetOAuthConfig(oauthCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build oauth config: %w", err)
	}

	token, err := utils.GetTokenWithFlow(a.ctx, oauthConfig, env)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain oauth token: %w", err)
	}

	a.gmailClient, err = gmailclient.NewClient(a.ctx, oauthCfg, token)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail client: %w", err)
	}
	a.logger.Debug("Gmail client initialized successfully")

	return a.gmailClient, nil
}

func generateCmd() *cobra.Command {
	var dryRun bool
	var weeks []string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate assignments for the upcoming weeks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.logger.Info("generate command",
				zap.Bool("dry_run", dryRun),
				zap.Strings("weeks", weeks))

			result, err := services.GenerateAssignments(app.ctx, app.database, app.cfg, app.logger, app.session, services.GenerateOptions{
				Weeks:  weeks,
				DryRun: dryRun,
			})
			if err != nil {
				return fmt.Errorf("failed to generate assignments: %w", err)
			}

			if result.DryRun {
				fmt.Println("\nDry run - nothing was saved")
			}
			fmt.Printf("\n%s\n\n", result.Message)
			for _, a := range result.Assigned {
				fmt.Printf("  %s  %-24s %-10s %s\n", a.Part.WeekID, a.Part.Type, a.Part.Role, a.Publisher.Name)
			}
			if len(result.Skipped) > 0 {
				fmt.Printf("\nSkipped parts:\n")
				for _, s := range result.Skipped {
					fmt.Printf("  %s  %-24s %s\n", s.Part.WeekID, s.Part.Type, s.Reason)
				}
			}
			for _, e := range result.Errors {
				fmt.Printf("  error: %s\n", e)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview the plan without saving")
	cmd.Flags().StringSliceVar(&weeks, "weeks", nil, "Restrict to specific week ids (Monday dates, YYYY-MM-DD)")
	return cmd
}

func undoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Revert the last generation run in this session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.logger.Info("undo command")

			result, err := services.UndoLast(app.ctx, app.database, app.logger, app.session)
			if err != nil {
				return fmt.Errorf("failed to undo: %w", err)
			}

			fmt.Printf("\n%s\n", result.Message)
			return nil
		},
	}
}

func explainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explain <part-id>",
		Short: "Show the ranked candidate pool for a part",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			partID := args[0]
			app.logger.Info("explain command", zap.String("part_id", partID))

			result, err := services.ExplainRanking(app.ctx, app.database, app.cfg, app.logger, partID)
			if err != nil {
				return fmt.Errorf("failed to explain ranking: %w", err)
			}

			fmt.Printf("\n%s %s (%s, %s)\n\n", result.Part.WeekID, result.Part.Type, result.Part.Role, result.Part.Section)
			if len(result.Candidates) == 0 {
				fmt.Println("No eligible candidates.")
			}
			for i, c := range result.Candidates {
				note := ""
				if c.InCooldown {
					note = " [in cooldown]"
				}
				fmt.Printf("  %2d. %s%s\n", i+1, c.Explanation, note)
			}
			if len(result.Excluded) > 0 {
				fmt.Printf("\nExcluded:\n")
				for _, e := range result.Excluded {
					fmt.Printf("  - %s: %s\n", e.Name, e.Reason)
				}
			}
			return nil
		},
	}
}

func listPublishersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "listPublishers",
		Short: "List the publisher pool with participation summaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.logger.Info("listPublishers command")

			result, err := services.ListPublishers(app.ctx, app.database, app.cfg, app.logger)
			if err != nil {
				return fmt.Errorf("failed to list publishers: %w", err)
			}

			fmt.Printf("\nFound %d publishers (%d eligible for assignments):\n\n",
				result.Stats.Total, result.Stats.Eligible)
			for _, p := range result.Publishers {
				last := "never served"
				if !p.Never {
					last = fmt.Sprintf("last served %s, %d total", p.LastDate, p.Count)
				}
				status := ""
				if !p.Publisher.IsServing {
					status = " [inactive]"
				}
				fmt.Printf("- %s (%s, %s) - %s%s\n",
					p.Publisher.Name, p.Publisher.Gender, p.Publisher.Condition, last, status)
			}
			return nil
		},
	}
}

func importHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "importHistory <file.csv>",
		Short: "Import a spreadsheet export of past assignments into the ledger",
		Long: `Import past assignments from a CSV export.

Expected columns: weekID, date, part title, role (Primary/Helper), publisher name.
Part titles are free text and are canonicalized on import; rows that cannot be
mapped to a known part type are reported and skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			app.logger.Info("importHistory command", zap.String("file", path))

			rows, err := readImportRows(path)
			if err != nil {
				return fmt.Errorf("failed to read import file: %w", err)
			}

			result, err := services.ImportHistory(app.ctx, app.database, app.logger, rows)
			if err != nil {
				return fmt.Errorf("failed to import history: %w", err)
			}

			fmt.Printf("\nImported %d records (batch %s)\n", result.Inserted, result.BatchID)
			for _, s := range result.Skipped {
				fmt.Printf("  skipped: %s\n", s)
			}
			if len(result.Unresolved) > 0 {
				names := dedupe(result.Unresolved)
				fmt.Printf("\n%d names did not match any publisher (kept with raw name):\n", len(names))
				for _, n := range names {
					fmt.Printf("  - %s\n", n)
				}
			}
			return nil
		},
	}
}

func notifyCmd() *cobra.Command {
	var weeks []string

	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Email each assigned publisher their upcoming parts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.logger.Info("notify command", zap.Strings("weeks", weeks))

			if len(weeks) == 0 {
				return fmt.Errorf("at least one --weeks value is required")
			}

			client, err := app.gmail()
			if err != nil {
				return err
			}

			result, err := services.SendConfirmations(app.ctx, app.database, client, app.cfg, app.logger, weeks)
			if err != nil {
				return fmt.Errorf("failed to send confirmations: %w", err)
			}

			fmt.Printf("\nSent %d confirmation emails\n", result.Sent)
			for _, s := range result.Skipped {
				fmt.Printf("  skipped: %s\n", s)
			}
			for _, e := range result.Errors {
				fmt.Printf("  error: %s\n", e)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&weeks, "weeks", nil, "Week ids to notify about (Monday dates, YYYY-MM-DD)")
	return cmd
}

func interactiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Start an interactive session (undo works across commands here)",
		Long: `Start an interactive session where you can run multiple commands against
one shared session. Generation runs and their undo state live in the session,
so 'generate' followed by 'undo' reverts the run.

Type 'help' to see available commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("\nStarting interactive session...")
			fmt.Println("Type 'help' for available commands, 'exit' or 'quit' to leave")

			rootCmd := cmd.Parent()
			commands := make(map[string]*cobra.Command)
			for _, subCmd := range rootCmd.Commands() {
				if subCmd.Name() != "interactive" && subCmd.Name() != "completion" && subCmd.Name() != "help" {
					commands[subCmd.Name()] = subCmd
				}
			}

			scanner := bufio.NewScanner(os.Stdin)

			for {
				fmt.Print("> ")

				if !scanner.Scan() {
					break
				}

				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}

				parts := strings.Fields(line)
				cmdName := parts[0]
				cmdArgs := parts[1:]

				if cmdName == "exit" || cmdName == "quit" {
					fmt.Println("Goodbye!")
					return nil
				}

				if cmdName == "help" {
					printInteractiveHelp(commands)
					continue
				}

				targetCmd, exists := commands[cmdName]
				if !exists {
					fmt.Printf("Unknown command: %s (type 'help' for available commands)\n\n", cmdName)
					continue
				}

				targetCmd.Flags().VisitAll(func(flag *pflag.Flag) {
					flag.Changed = false
					flag.Value.Set(flag.DefValue)
				})

				// Run the command's RunE directly so PersistentPreRunE does
				// not reinitialize the app and wipe the session's undo state.
				if err := targetCmd.ParseFlags(cmdArgs); err != nil {
					fmt.Printf("Error parsing flags: %v\n\n", err)
					continue
				}

				cmdArgs = targetCmd.Flags().Args()

				if err := targetCmd.Args(targetCmd, cmdArgs); err != nil {
					fmt.Printf("Error: %v\n\n", err)
					continue
				}

				if targetCmd.RunE != nil {
					if err := targetCmd.RunE(targetCmd, cmdArgs); err != nil {
						fmt.Printf("Error: %v\n\n", err)
					}
				}
			}

			if err := scanner.Err(); err != nil {
				return fmt.Errorf("error reading input: %w", err)
			}

			return nil
		},
	}

	return cmd
}

func printInteractiveHelp(commands map[string]*cobra.Command) {
	fmt.Println("\nAvailable commands:")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Printf("  %-30s %s\n", commands[name].Use, commands[name].Short)
	}

	fmt.Println("\n  help                           Show this help message")
	fmt.Println("  exit, quit                     Exit the interactive session")
}

// readImportRows parses a CSV export into import rows. A header line is
// detected by a non-date first column and skipped.
func readImportRows(path string) ([]services.ImportedRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 5

	var rows []services.ImportedRow
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed csv: %w", err)
		}

		if first {
			first = false
			if !strings.HasPrefix(record[0], "20") {
				continue
			}
		}

		rows = append(rows, services.ImportedRow{
			WeekID:        strings.TrimSpace(record[0]),
			Date:          strings.TrimSpace(record[1]),
			PartTitle:     strings.TrimSpace(record[2]),
			Role:          model.Role(strings.TrimSpace(record[3])),
			PublisherName: strings.TrimSpace(record[4]),
		})
	}

	return rows, nil
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
