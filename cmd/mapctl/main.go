package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/tendant/simple-maps/pkg/embeddedmaps"
	"github.com/tendant/simple-maps/pkg/embeddedmaps/config"
	"github.com/tendant/simple-maps/pkg/embeddedmaps/fixtures"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := NewRootCommand(os.Stdout)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// NewRootCommand builds the mapctl command tree writing results to out
func NewRootCommand(out io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mapctl",
		Short: "Render embedded venue maps",
		Long: `mapctl renders the map placeholder HTML for events and venues.

Uses an in-memory repository seeded from --fixtures by default; set
DATABASE_URL to read from Postgres instead.`,
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage: true,
	}
	rootCmd.SetOut(out)

	rootCmd.PersistentFlags().StringP("fixtures", "f", "", "YAML fixtures file")
	rootCmd.PersistentFlags().Bool("no-geo", false, "ignore stored venue coordinates")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")

	rootCmd.AddCommand(NewRenderCommand())
	rootCmd.AddCommand(NewAddressCommand())
	rootCmd.AddCommand(NewSeedCommand())

	return rootCmd
}

// NewRenderCommand creates the render command
func NewRenderCommand() *cobra.Command {
	var width, height string
	var force bool

	cmd := &cobra.Command{
		Use:   "render <post-id>...",
		Short: "Render map fragments for one or more posts in a single pass",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parsePostIDs(args)
			if err != nil {
				return err
			}

			renderer, err := newRendererFromFlags(cmd)
			if err != nil {
				return err
			}

			for _, id := range ids {
				fragment, err := renderer.Render(cmd.Context(), id, width, height, force)
				if err != nil {
					return fmt.Errorf("render %d: %w", id, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), fragment)
			}

			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				for _, m := range renderer.Maps() {
					fmt.Fprintf(cmd.ErrOrStderr(), "map %d: %q (%s)\n", m.Index, m.Address, m.Title)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&width, "width", "", "map width (bare numbers are pixels)")
	cmd.Flags().StringVar(&height, "height", "", "map height (bare numbers are pixels)")
	cmd.Flags().BoolVar(&force, "force", false, "embed even when no address is known")

	return cmd
}

// NewAddressCommand creates the address command
func NewAddressCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "address <post-id>",
		Short: "Print the address a map for the post would use",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parsePostIDs(args)
			if err != nil {
				return err
			}
			renderer, err := newRendererFromFlags(cmd)
			if err != nil {
				return err
			}
			address, err := renderer.Address(cmd.Context(), ids[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%q\n", address)
			return nil
		},
	}
}

// NewSeedCommand creates the seed command
func NewSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Write the fixtures file into the Postgres database named by DATABASE_URL",
		Long: `Write the fixtures file into the Postgres database named by DATABASE_URL.

The in-memory store does not outlive the process, so seeding it is refused.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("fixtures")
			if path == "" {
				return fmt.Errorf("--fixtures is required")
			}

			cfg, err := config.Load(config.WithEnv(""))
			if err != nil {
				return err
			}
			if cfg.DatabaseType != "postgres" {
				return fmt.Errorf("seed needs a persistent database: set DATABASE_URL to a postgresql:// URL")
			}

			set, err := fixtures.LoadFile(path)
			if err != nil {
				return err
			}
			store, err := cfg.BuildStore(cmd.Context())
			if err != nil {
				return err
			}
			if err := set.Apply(cmd.Context(), store); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d venues and %d events into %s\n", len(set.Venues), len(set.Events), cfg.DatabaseType)
			return nil
		},
	}
}

func newRendererFromFlags(cmd *cobra.Command) (*embeddedmaps.Renderer, error) {
	fixturesPath, _ := cmd.Flags().GetString("fixtures")
	noGeo, _ := cmd.Flags().GetBool("no-geo")
	verbose, _ := cmd.Flags().GetBool("verbose")

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	opts := []config.Option{config.WithEnv(""), config.WithEmbedLog(verbose)}
	if fixturesPath != "" {
		opts = append(opts, config.WithFixtures(fixturesPath))
	}
	cfg, err := config.Load(opts...)
	if err != nil {
		return nil, err
	}
	if noGeo {
		cfg.EnableGeoLocation = false
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	factory, _, err := cfg.BuildFactory(ctx, logger)
	if err != nil {
		return nil, err
	}
	return factory()
}

func parsePostIDs(args []string) ([]embeddedmaps.PostID, error) {
	ids := make([]embeddedmaps.PostID, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id < 0 {
			return nil, fmt.Errorf("invalid post id: %s", arg)
		}
		ids = append(ids, embeddedmaps.PostID(id))
	}
	return ids, nil
}
