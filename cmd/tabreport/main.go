package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"tabreport/adapters/api"
	"tabreport/adapters/excel"
	"tabreport/adapters/postgres"
	"tabreport/adapters/render"
	"tabreport/domain/frame"
	"tabreport/domain/table"
	"tabreport/internal"
	"tabreport/internal/augment"
	"tabreport/internal/config"
	"tabreport/internal/summarize"
	"tabreport/internal/testkit"
)

func main() {
	// Optional .env for local development
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		internal.DefaultLogger.Debug("no .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	config.SetActive(cfg)

	rootCmd := &cobra.Command{
		Use:   "tabreport",
		Short: "Build summary tables with group comparison p-values",
	}

	rootCmd.AddCommand(
		newReportCmd(),
		newServeCmd(),
		newDemoCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type reportFlags struct {
	by        string
	group     string
	include   []string
	exclude   []string
	testsJSON string
	formatter string
	output    string
	dbTable   string
	dbQuery   string
}

func (f *reportFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.by, "by", "", "Grouping column (required for p-values)")
	cmd.Flags().StringVar(&f.group, "group", "", "Column identifying correlated clusters")
	cmd.Flags().StringSliceVar(&f.include, "include", nil, "Variables to include")
	cmd.Flags().StringSliceVar(&f.exclude, "exclude", nil, "Variables to exclude from testing")
	cmd.Flags().StringVar(&f.testsJSON, "tests", "", `Per-variable test overrides as JSON, e.g. {"age":"t_test"}`)
	cmd.Flags().StringVar(&f.formatter, "pvalue-style", "", "Registered p-value formatter name")
	cmd.Flags().StringVar(&f.output, "format", "markdown", "Output format: markdown or html")
	cmd.Flags().StringVar(&f.dbTable, "db-table", "", "Load data from this database table instead of a file")
	cmd.Flags().StringVar(&f.dbQuery, "db-query", "", "Load data from this SQL query instead of a file")
}

func newReportCmd() *cobra.Command {
	flags := &reportFlags{}
	cmd := &cobra.Command{
		Use:   "report [file]",
		Short: "Summarize a dataset and attach comparison p-values",
		Long: `Read a dataset from an .xlsx or .csv file (or a database), build a
grouped summary table, attach a p-value per variable, and print it.

Example: tabreport report trial.csv --by arm --tests '{"age":"t_test"}'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, source, err := loadFrame(cmd.Context(), args, flags)
			if err != nil {
				return err
			}
			tbl, err := buildTable(data, source, flags)
			if err != nil {
				return err
			}
			return printTable(cmd, tbl, flags.output)
		},
	}
	flags.register(cmd)
	return cmd
}

func newServeCmd() *cobra.Command {
	flags := &reportFlags{}
	var port string
	cmd := &cobra.Command{
		Use:   "serve [file]",
		Short: "Serve the finished table over HTTP for preview",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, source, err := loadFrame(cmd.Context(), args, flags)
			if err != nil {
				return err
			}
			tbl, err := buildTable(data, source, flags)
			if err != nil {
				return err
			}
			server, err := api.NewServer(api.Config{Port: port}, tbl)
			if err != nil {
				return err
			}
			return server.Start()
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&port, "port", config.Active().Server.Port, "HTTP port")
	return cmd
}

func newDemoCmd() *cobra.Command {
	flags := &reportFlags{}
	var seed int64
	var subjects int
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the pipeline on generated trial data",
		RunE: func(cmd *cobra.Command, args []string) error {
			genCfg := testkit.DefaultTrialConfig()
			genCfg.Seed = seed
			genCfg.SubjectCount = subjects
			data, err := testkit.NewTrialDataGenerator(genCfg).GenerateFrame()
			if err != nil {
				return err
			}
			if flags.by == "" {
				flags.by = "arm"
			}
			tbl, err := buildTable(data, "demo", flags)
			if err != nil {
				return err
			}
			return printTable(cmd, tbl, flags.output)
		},
	}
	flags.register(cmd)
	cmd.Flags().Int64Var(&seed, "seed", 42, "Generator seed")
	cmd.Flags().IntVar(&subjects, "subjects", 200, "Number of generated subjects")
	return cmd
}

// loadFrame reads the input dataset from a file or the configured database
func loadFrame(ctx context.Context, args []string, flags *reportFlags) (*frame.Frame, string, error) {
	if flags.dbTable != "" || flags.dbQuery != "" {
		url := config.Active().Database.URL
		if url == "" {
			return nil, "", fmt.Errorf("DATABASE_URL is not configured")
		}
		db, err := postgres.Connect(ctx, url)
		if err != nil {
			return nil, "", err
		}
		defer db.Close()
		repo := postgres.NewFrameRepository(db)
		if flags.dbQuery != "" {
			f, err := repo.QueryFrame(ctx, flags.dbQuery)
			return f, "query", err
		}
		f, err := repo.TableFrame(ctx, flags.dbTable)
		return f, flags.dbTable, err
	}

	if len(args) == 0 {
		return nil, "", fmt.Errorf("a data file is required unless --db-table or --db-query is set")
	}
	f, err := excel.NewDataReader(args[0]).ReadFrame()
	return f, args[0], err
}

// buildTable summarizes the frame and attaches p-values
func buildTable(data *frame.Frame, source string, flags *reportFlags) (*table.Table, error) {
	sumOpts := []summarize.Option{summarize.Source(source)}
	if flags.by != "" {
		sumOpts = append(sumOpts, summarize.By(flags.by))
	}
	if len(flags.include) > 0 {
		include := flags.include
		if flags.group != "" && !contains(include, flags.group) {
			include = append(append([]string(nil), include...), flags.group)
		}
		sumOpts = append(sumOpts, summarize.Include(include...))
	}
	tbl, err := summarize.Summarize(data, sumOpts...)
	if err != nil {
		return nil, err
	}
	if flags.by == "" {
		return tbl, nil
	}

	addOpts := []augment.Option{}
	if flags.group != "" {
		addOpts = append(addOpts, augment.WithGroup(flags.group))
	}
	if len(flags.exclude) > 0 {
		addOpts = append(addOpts, augment.WithExclude(flags.exclude...))
	}
	if flags.formatter != "" {
		addOpts = append(addOpts, augment.WithPValueFormatter(flags.formatter))
	}
	if flags.testsJSON != "" {
		spec, err := parseTestSpec(flags.testsJSON)
		if err != nil {
			return nil, err
		}
		addOpts = append(addOpts, augment.WithTests(spec))
	}
	return augment.AddP(tbl, data, addOpts...)
}

// parseTestSpec reads the --tests JSON object into a test specification
func parseTestSpec(raw string) (map[string]interface{}, error) {
	parsed := gjson.Parse(raw)
	if !parsed.IsObject() {
		return nil, fmt.Errorf("--tests must be a JSON object of variable to test id")
	}
	spec := make(map[string]interface{})
	var parseErr error
	parsed.ForEach(func(key, value gjson.Result) bool {
		if value.Type != gjson.String {
			parseErr = fmt.Errorf("--tests entry %q must be a test identifier string", key.String())
			return false
		}
		spec[key.String()] = value.String()
		return true
	})
	return spec, parseErr
}

func printTable(cmd *cobra.Command, tbl *table.Table, output string) error {
	var body string
	var err error
	switch strings.ToLower(output) {
	case "markdown", "md":
		body, err = render.Markdown(tbl)
	case "html":
		body, err = render.HTML(tbl)
	default:
		return fmt.Errorf("unknown output format %q", output)
	}
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), body)
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
