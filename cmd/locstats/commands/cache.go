package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/locstats/pkg/cachefile"
	"github.com/Sumatoshi-tech/locstats/pkg/dataset"
	"github.com/Sumatoshi-tech/locstats/pkg/observability"
)

// ErrNoCachePath indicates neither --output nor cache.path names a cache file.
var ErrNoCachePath = errors.New("no cache path: set cache.path or pass --output")

// NewCacheCommand creates the cache command group.
func NewCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Build, validate or describe the precomputed cache",
		Long: `The cache holds the aggregated commits and their line records so that
later runs skip CSV parsing. A path ending in .lz4 is LZ4-compressed.`,
	}

	cmd.AddCommand(newCacheBuildCommand())
	cmd.AddCommand(newCacheValidateCommand())
	cmd.AddCommand(newCacheSchemaCommand())

	return cmd
}

func newCacheBuildCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Ingest the line log and write the cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := loadEnvironment(cmd, observability.ModeCLI)
			if err != nil {
				return err
			}

			path := output
			if path == "" {
				path = env.cfg.Cache.Path
			}

			if path == "" {
				return ErrNoCachePath
			}

			// Always ingest the raw log; an existing cache is what is being replaced.
			loader := dataset.NewLoader(dataset.Options{
				SourcePath: env.cfg.Input.Path,
				URLBase:    env.cfg.Input.CommitURLBase,
				Logger:     env.logger,
			})

			ds, err := loader.Initialize(cmd.Context())
			if err != nil {
				return fmt.Errorf("load dataset: %w", err)
			}

			saveErr := cachefile.Save(path, cachefile.Build(ds.Records, ds.Commits))
			if saveErr != nil {
				return fmt.Errorf("write cache %s: %w", path, saveErr)
			}

			env.logger.InfoContext(cmd.Context(), "cache written",
				"path", path, "commits", len(ds.Commits), "records", len(ds.Records))

			return writeLine(cmd.OutOrStdout(), path)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Cache file (default: cache.path)")

	return cmd
}

func newCacheValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [path]",
		Short: "Check that a cache file decodes and matches the schema",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string

			if len(args) > 0 {
				path = args[0]
			} else {
				env, err := loadEnvironment(cmd, observability.ModeCLI)
				if err != nil {
					return err
				}

				path = env.cfg.Cache.Path
			}

			if path == "" {
				return ErrNoCachePath
			}

			doc, err := cachefile.Load(path)
			if err != nil {
				return err
			}

			_, cs, err := doc.Restore()
			if err != nil {
				return err
			}

			return writeLine(cmd.OutOrStdout(), fmt.Sprintf("%s: ok (%d commits)", path, len(cs)))
		},
	}
}

func newCacheSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of the cache document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := cmd.OutOrStdout().Write(cachefile.Schema())
			if err != nil {
				return fmt.Errorf("write schema: %w", err)
			}

			return nil
		},
	}
}
