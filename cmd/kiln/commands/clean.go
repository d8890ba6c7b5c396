package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/kiln/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the configuration cache and other kiln state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configurationCache, _ := cmd.Flags().GetBool("configuration-cache")
			all, _ := cmd.Flags().GetBool("all")

			cache, err := cacheOptions(cmd)
			if err != nil {
				return err
			}
			workingDir, err := projectDir(cmd)
			if err != nil {
				return err
			}

			opts := app.CleanOptions{
				WorkingDir:         workingDir,
				ConfigurationCache: configurationCache,
				All:                all,
				Cache:              cache,
			}
			if !opts.ConfigurationCache && !opts.All {
				// Default behavior: clean the configuration cache
				opts.ConfigurationCache = true
			}

			return c.app.Clean(cmd.Context(), opts)
		},
	}

	cmd.Flags().Bool("configuration-cache", false, "Clear the configuration cache entries")
	cmd.Flags().BoolP("all", "a", false, "Remove the whole .kiln directory")
	cmd.Flags().String("cache-backend", "", "Configuration cache backend: file, sqlite or redis (env "+EnvCacheBackend+")")
	cmd.Flags().String("cache-dsn", "", "Connection URL of the redis backend (env "+EnvCacheDSN+")")

	return cmd
}
