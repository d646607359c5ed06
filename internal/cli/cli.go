package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"

	"trscan/internal/catalog"
	"trscan/internal/config"
	"trscan/internal/extract"
	"trscan/internal/filewalker"
	"trscan/internal/finalize"
	"trscan/internal/frontend"
	"trscan/internal/record"
	"trscan/internal/textutil"
	"trscan/internal/tm"
	"trscan/internal/tr"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd := &cobra.Command{
		Use:   "trscan",
		Short: "Extract translatable strings from C/C++ sources",
		Long: "trscan parses C/C++ translation units with a real compiler front end,\n" +
			"collects translation calls and annotations, resolves contexts and emits\n" +
			"a deduplicated message catalog.",
	}

	rootCmd.AddCommand(extractCmd())
	rootCmd.AddCommand(aliasesCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <directory>",
		Short: "Parse sources and emit the message catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			format, _ := cmd.Flags().GetString("format")
			jobs, _ := cmd.Flags().GetInt("jobs")
			include, _ := cmd.Flags().GetString("include")
			store, _ := cmd.Flags().GetBool("store")
			incremental, _ := cmd.Flags().GetBool("incremental")
			verbose, _ := cmd.Flags().GetBool("verbose")
			return runExtract(args[0], out, format, include, jobs, store, incremental, verbose)
		},
	}

	cmd.Flags().String("out", "catalog.json", "Output path for the catalog")
	cmd.Flags().String("format", "json", "Catalog format: json or tsv")
	cmd.Flags().Int("jobs", 0, "Parser worker count (0 = from environment)")
	cmd.Flags().String("include", "", "Doublestar glob filter relative to the root")
	cmd.Flags().Bool("store", false, "Also push the catalog into the translation memory")
	cmd.Flags().Bool("incremental", false, "Skip pushing messages the translation memory already holds")
	cmd.Flags().Bool("verbose", false, "Report dropped candidates")

	return cmd
}

func aliasesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "aliases",
		Short: "Print the effective translation function table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAliases()
		},
	}
}

// runExtract handles the `extract` command.
func runExtract(inputDir, outPath, format, include string, jobs int, store, incremental, verbose bool) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()
	if jobs <= 0 {
		jobs = cfg.WorkerCount
	}

	aliases, err := cfg.LoadAliases()
	if err != nil {
		return err
	}

	w := filewalker.NewWalker()
	w.Include = include
	paths, err := w.Walk(inputDir)
	if err != nil {
		return fmt.Errorf("walk input directory: %w", err)
	}

	opts := extract.Options{
		Workers: jobs,
		Aliases: aliases,
		Policy:  frontend.DefaultAnnotationPolicy(),
	}
	if verbose {
		opts.OnDrop = func(c record.Candidate, reason finalize.DropReason) {
			log.Warn().
				Str("reason", string(reason)).
				Str("file", c.File).
				Int("line", c.Line).
				Str("text", textutil.Truncate(c.SourceText, 40)).
				Msg("Candidate dropped")
		}
	}

	entries, stats, err := extract.Run(ctx, paths, opts)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create catalog file: %w", err)
	}
	defer f.Close()

	if err := catalog.ForFormat(format).Write(f, entries); err != nil {
		return err
	}

	log.Info().
		Str("path", outPath).
		Int("entries", stats.Entries).
		Int("units", stats.Units).
		Int("failed", stats.Failed).
		Msg("Catalog written")

	if store {
		if err := pushToMemory(ctx, cfg, entries, incremental); err != nil {
			return err
		}
	}
	return nil
}

// pushToMemory stores the catalog in the PostgreSQL translation memory.
func pushToMemory(ctx context.Context, cfg *config.Config, entries []catalog.Entry, incremental bool) error {
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect PostgreSQL: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping PostgreSQL: %w", err)
	}
	log.Info().Msg("Connected to PostgreSQL")

	memory := tm.NewStore(pool)
	if err := memory.EnsureSchema(ctx); err != nil {
		return err
	}
	if incremental {
		cache := tm.NewPushCache(pool)
		if err := cache.Preload(ctx); err != nil {
			return err
		}
		memory = memory.WithCache(cache)
	}
	if _, err := memory.Push(ctx, entries, 100); err != nil {
		return err
	}
	return nil
}

// runAliases prints the effective alias table, builtin plus configured.
func runAliases() error {
	cfg := config.Load()
	aliases, err := cfg.LoadAliases()
	if err != nil {
		return err
	}

	resolver := tr.NewResolver(aliases)
	names := resolver.Names()
	sort.Strings(names)

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tPLURAL")
	for _, name := range names {
		fn := resolver.Resolve(name)
		fmt.Fprintf(tw, "%s\t%s\t%v\n", name, fn.Kind, fn.Plural)
	}
	return tw.Flush()
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Warn().Msg("Received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}
