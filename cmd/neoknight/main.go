// Package main provides the neoknight command line: it compiles customer
// queries to Cypher, runs them against Neo4j and seeds sample data.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/whiteknight/neoknight/internal/config"
	"github.com/whiteknight/neoknight/internal/domain"
	"github.com/whiteknight/neoknight/internal/graph"
	"github.com/whiteknight/neoknight/internal/logger"
	"github.com/whiteknight/neoknight/internal/query"
	"github.com/whiteknight/neoknight/internal/repository"
	"github.com/whiteknight/neoknight/internal/translator"
)

const (
	Version = "0.1.0"
	appName = "neoknight"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type globalOptions struct {
	configPath string
	envFile    string
}

func (g *globalOptions) load(stderr io.Writer) (*config.Config, *slog.Logger, error) {
	if err := config.LoadEnvFile(g.envFile); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(g.configPath, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.LogLevel, stderr)
	logger.SetDefault(log)
	return cfg, log, nil
}

// connect opens the driver and builds the shop store. The caller closes the connector.
func (g *globalOptions) connect(ctx context.Context, stderr io.Writer) (*graph.Connector, *domain.Store, error) {
	cfg, log, err := g.load(stderr)
	if err != nil {
		return nil, nil, err
	}
	conn, err := graph.Connect(ctx, cfg.Neo4j, log)
	if err != nil {
		return nil, nil, err
	}
	store, err := domain.NewStore(repository.Features{
		Executor:             conn.Executor(),
		ClientSideEvaluation: repository.NewEvaluationPolicy(cfg.Repository.ClientSideEvaluation, log),
		Logger:               log,
	})
	if err != nil {
		_ = conn.Close(ctx)
		return nil, nil, err
	}
	return conn, store, nil
}

func rootCmd() *cobra.Command {
	g := &globalOptions{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Specification-driven repositories over Neo4j",
		Long: `neoknight compiles specification trees over the sample shop model
(customers, orders, addresses) into Cypher and runs them against Neo4j.

Settings come from an optional YAML file, a dotenv file and the
NEO4J_URI, NEO4J_USER, NEO4J_PASSWORD and NEO4J_DATABASE variables.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&g.envFile, "env-file", ".env", "dotenv file loaded before the environment is read")

	cmd.AddCommand(translateCmd(), queryCmd(g), seedCmd(g))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
		},
	})

	return cmd
}

// customerFlags are the filter, navigation, paging and ordering flags shared by translate and query.
type customerFlags struct {
	name          string
	namePrefix    string
	emailContains string
	active        string
	minAge        int
	with          string
	page          int
	size          int
	order         string
	desc          bool
}

func (f *customerFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.name, "name", "", "Exact customer name")
	fl.StringVar(&f.namePrefix, "name-prefix", "", "Customer name prefix")
	fl.StringVar(&f.emailContains, "email-contains", "", "Substring of the email address")
	fl.StringVar(&f.active, "active", "", "Filter on the active flag (true or false)")
	fl.IntVar(&f.minAge, "min-age", 0, "Minimum age, evaluated client side")
	fl.StringVar(&f.with, "with", "", "Navigation: orders, addresses, orders,addresses or orders.addresses")
	fl.IntVar(&f.page, "page", 0, "Rows to skip")
	fl.IntVar(&f.size, "size", 100, "Rows to return")
	fl.StringVar(&f.order, "order", "", "Root property to order by")
	fl.BoolVar(&f.desc, "desc", false, "Order descending")
}

func (f *customerFlags) command(cmd *cobra.Command) (query.Command[domain.Customer], error) {
	filter := domain.CustomerFilter{
		Name:          f.name,
		NamePrefix:    f.namePrefix,
		EmailContains: f.emailContains,
	}
	if f.active != "" {
		active, err := strconv.ParseBool(f.active)
		if err != nil {
			return query.Command[domain.Customer]{}, fmt.Errorf("invalid --active value %q", f.active)
		}
		filter.Active = &active
	}
	if cmd.Flags().Changed("min-age") {
		minAge := f.minAge
		filter.MinAge = &minAge
	}

	nav, ok := domain.Navigation(f.with)
	if !ok {
		return query.Command[domain.Customer]{}, fmt.Errorf("invalid --with value %q", f.with)
	}
	if f.page < 0 || f.size < 0 {
		return query.Command[domain.Customer]{}, errors.New("--page and --size must not be negative")
	}

	c := query.Where[domain.Customer](filter.Specification()).Page(f.page, f.size).Navigate(nav)
	if f.order != "" {
		c = c.OrderBy(f.order, f.desc)
	}
	return c, nil
}

func translateCmd() *cobra.Command {
	f := &customerFlags{}
	var key string

	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Print the Cypher compiled for a customer query",
		Long: `translate compiles the given filters to Cypher without connecting.
With --key it prints the single-record lookup and delete statements instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			tr, err := translator.New[domain.Customer](nil)
			if err != nil {
				return err
			}

			if key != "" {
				nav, ok := domain.Navigation(f.with)
				if !ok {
					return fmt.Errorf("invalid --with value %q", f.with)
				}
				res, err := tr.Single(query.SingleRecordCommand[domain.Customer]{Key: key, Navigation: nav})
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "query:  %s\n", res.QueryText)
				fmt.Fprintf(out, "delete: %s\n", res.WithAction(translator.ActionDelete))
				return nil
			}

			c, err := f.command(cmd)
			if err != nil {
				return err
			}
			res, err := tr.Query(c)
			if errors.Is(err, translator.ErrUnparsable) {
				fmt.Fprintf(out, "client side: %v\n", err)
				res, err = tr.All()
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "query: %s\n", res.QueryText)
			fmt.Fprintf(out, "count: %s\n", res.CountText)
			return nil
		},
	}

	f.register(cmd)
	cmd.Flags().StringVar(&key, "key", "", "Customer id for a single-record lookup")
	return cmd
}

func queryCmd(g *globalOptions) *cobra.Command {
	f := &customerFlags{}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a customer query and print the results as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := f.command(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			conn, store, err := g.connect(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer conn.Close(ctx)

			res, err := store.Customers.Query(ctx, c)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{"items": res.Records, "count": res.Count})
		},
	}

	f.register(cmd)
	return cmd
}

func seedCmd(g *globalOptions) *cobra.Command {
	var customers, orders, addresses int

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write deterministic sample customers, orders and addresses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			conn, store, err := g.connect(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer conn.Close(ctx)

			start := time.Now()
			sum, err := store.Seed(ctx, domain.SampleData(customers, orders, addresses, start))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d customers, %d orders, %d addresses and %d relationships in %s\n",
				sum.Customers, sum.Orders, sum.Addresses, sum.Relationships, time.Since(start).Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().IntVar(&customers, "customers", 28, "Number of customers")
	cmd.Flags().IntVar(&orders, "orders", 3, "Orders per customer")
	cmd.Flags().IntVar(&addresses, "addresses", 4, "Addresses per customer")
	return cmd
}
