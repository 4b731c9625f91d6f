package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gunit/internal/cli"
	"gunit/internal/config"
	"gunit/internal/discovery"
	"gunit/internal/domain"
	"gunit/internal/logging"
	"gunit/internal/metadata"
	"gunit/internal/parser"
	"gunit/internal/storage"
	"gunit/internal/ui"
)

// AssemblyName names the root suite of every discovery run
const AssemblyName = "gunit"

// Environment holds the collaborators shared by all commands, built from
// the loaded config
type Environment struct {
	Config    *config.Config
	Logger    *zap.Logger
	Catalog   *metadata.Catalog
	Scanner   *discovery.Scanner
	Assembler *discovery.Assembler
	Parser    parser.Parser
	Storage   storage.Storage
	Formatter *ui.Formatter
	Viewer    ui.Viewer
	Out       io.Writer
}

// NewEnvironment loads the config for flags and wires the collaborators
func NewEnvironment(flags *cli.Flags, catalog *metadata.Catalog, out io.Writer) (*Environment, error) {
	cfg, err := config.Load(flags.ToConfigFlags())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.NewLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	st, err := storage.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Environment{
		Config:    cfg,
		Logger:    logger,
		Catalog:   catalog,
		Scanner:   discovery.NewScanner(cfg.SkipPackages),
		Assembler: discovery.NewAssembler(logger),
		Parser:    parser.NewResultParser(),
		Storage:   st,
		Formatter: ui.NewFormatter(out),
		Viewer:    ui.NewErrorViewer(st, out, logger),
		Out:       out,
	}, nil
}

// Close releases the storage and flushes the logger
func (e *Environment) Close() error {
	_ = e.Logger.Sync()
	return e.Storage.Close()
}

// Discovery is the assembled tree and the tests selected from it
type Discovery struct {
	Root     *domain.Suite
	Filter   discovery.Filter
	Selected []*domain.TestCase
	Filtered bool
}

// Discover scans the catalog, builds the test tree and selects the tests
// matching the configured filters
func (e *Environment) Discover() (*Discovery, error) {
	types, err := e.Scanner.Scan(e.Catalog)
	if err != nil {
		return nil, err
	}
	filter, filtered, err := e.buildFilter()
	if err != nil {
		return nil, err
	}
	root := e.Assembler.Assemble(AssemblyName, types, filter)
	return &Discovery{
		Root:     root,
		Filter:   filter,
		Selected: domain.SelectLeaves(root, filter),
		Filtered: filtered,
	}, nil
}

// buildFilter combines the name, id, category and last-failures filters
func (e *Environment) buildFilter() (discovery.Filter, bool, error) {
	flags := e.Config.Flags
	var filters []discovery.Filter
	if flags.Filter != "" {
		filters = append(filters, discovery.NewNameFilter(flags.Filter))
	}
	if len(flags.IDs) > 0 {
		filters = append(filters, discovery.NewIDFilter(flags.IDs...))
	}
	if flags.Category != "" {
		filters = append(filters, discovery.NewCategoryFilter(flags.Category))
	}
	if flags.Failed {
		last, err := e.Storage.Load()
		if err != nil {
			return nil, false, fmt.Errorf("load last run: %w", err)
		}
		filters = append(filters, discovery.NewFullNameFilter(storage.FailedNames(last)...))
	}

	switch len(filters) {
	case 0:
		return discovery.Empty(), false, nil
	case 1:
		return filters[0], true, nil
	}
	return discovery.And(filters...), true, nil
}

// lastFailures returns the full names that failed in the stored run, if any
func (e *Environment) lastFailures() map[string]struct{} {
	last, err := e.Storage.Load()
	if err != nil {
		e.Logger.Debug("no stored run", zap.Error(err))
		return nil
	}
	failed := make(map[string]struct{})
	for _, name := range storage.FailedNames(last) {
		failed[name] = struct{}{}
	}
	return failed
}

// Commands registers the gunit subcommands
type Commands struct {
	catalog *metadata.Catalog
	flags   *cli.Flags
}

// NewCommands creates the commands for the fixtures registered in catalog
func NewCommands(catalog *metadata.Catalog) *Commands {
	return &Commands{catalog: catalog, flags: &cli.Flags{}}
}

func (c *Commands) environment(cmd *cobra.Command) (*Environment, error) {
	return NewEnvironment(c.flags, c.catalog, cmd.OutOrStdout())
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command) {
	flags := c.flags
	rootCmd.PersistentFlags().StringVar(&flags.ProjectPath, "project", "", "Project directory holding gunit.yaml, .env and the results storage")
	rootCmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flags.ResultsDSN, "results-dsn", "", "MySQL DSN to store run history in instead of the JSON file")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run registered tests in parallel",
		Long:  "Discover registered fixtures, build the test tree and execute it using parallel workers",
		RunE:  NewRunCommand(c).Execute,
	}
	runCmd.Flags().IntVarP(&flags.Workers, "workers", "p", 0, "Number of workers to use")
	runCmd.Flags().StringVarP(&flags.Filter, "filter", "f", "", "Filter tests by name pattern (supports wildcards, e.g. '*Calc*' or 'Add')")
	runCmd.Flags().StringSliceVar(&flags.IDs, "id", nil, "Run only the tests with these ids (see list --test-cases)")
	runCmd.Flags().StringVar(&flags.Category, "category", "", "Run only tests in this category")
	runCmd.Flags().BoolVar(&flags.FailFast, "fail-fast", false, "Stop on first test failure")
	runCmd.Flags().BoolVar(&flags.OnlyFailed, "failed", false, "Run only tests that failed in the last run")
	runCmd.Flags().DurationVar(&flags.Timeout, "timeout", 0, "Default timeout for each test (0 disables)")
	runCmd.Flags().StringVar(&flags.MetricsFile, "metrics-file", "", "Write run metrics in the Prometheus text format to this file")
	runCmd.Flags().BoolVar(&flags.OpenFailures, "open-failures", false, "Open the failures viewer when the run finishes with failures")
	rootCmd.AddCommand(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List discovered tests",
		Long:  "Build and print the test tree without executing it",
		RunE:  NewListCommand(c).Execute,
	}
	listCmd.Flags().StringVarP(&flags.Filter, "filter", "f", "", "Filter tests by name pattern (supports wildcards, e.g. '*Calc*' or 'Add')")
	listCmd.Flags().StringVar(&flags.Category, "category", "", "List only tests in this category")
	listCmd.Flags().BoolVarP(&flags.TestCases, "test-cases", "c", false, "List test cases instead of fixtures")
	rootCmd.AddCommand(listCmd)

	failuresCmd := &cobra.Command{
		Use:   "failures",
		Short: "View test failures interactively",
		Long:  "Display test failures from the last test run in an interactive viewer",
		RunE:  NewFailuresCommand(c).Execute,
	}
	failuresCmd.Flags().BoolVar(&flags.Print, "print", false, "Print the last run summary instead of opening the viewer")
	rootCmd.AddCommand(failuresCmd)
}
