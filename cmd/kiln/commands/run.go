package commands

import (
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.trai.ch/kiln/internal/app"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

// Environment variables read when the matching flag is not set.
const (
	EnvConfigurationCache = "KILN_CONFIGURATION_CACHE"
	EnvCacheBackend       = "KILN_CACHE_BACKEND"
	EnvCacheDSN           = "KILN_CACHE_DSN"
	EnvCacheTTL           = "KILN_CACHE_TTL"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [tasks...]",
		Short: "Configure the workspace and run the specified tasks",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				// Display command usage help without returning an error
				_ = cmd.Help()
				return nil
			}

			params, err := startParameters(cmd, args)
			if err != nil {
				return err
			}
			profile, _ := cmd.Flags().GetBool("profile")

			return c.app.Run(cmd.Context(), params, app.RunOptions{Profile: profile})
		},
	}
	cmd.Flags().Bool("configuration-cache", false,
		"Reuse the build model of a previous build with the same inputs (env "+EnvConfigurationCache+")")
	cmd.Flags().Bool("continue", false, "Keep going after a failure and report every failure at the end")
	cmd.Flags().Bool("dry-run", false, "Print the tasks that would run without running them")
	cmd.Flags().StringArrayP("property", "P", nil, "Set a project property (key=value)")
	cmd.Flags().String("cache-backend", "", "Configuration cache backend: file, sqlite or redis (env "+EnvCacheBackend+")")
	cmd.Flags().String("cache-dsn", "", "Connection URL of the redis backend (env "+EnvCacheDSN+")")
	cmd.Flags().Duration("cache-ttl", 0, "Lifetime of redis cache entries, 0 keeps them (env "+EnvCacheTTL+")")
	cmd.Flags().Bool("profile", false, "Log the duration of every build phase and task")
	return cmd
}

// startParameters resolves the flags of cmd, with their environment fallbacks, once per build.
func startParameters(cmd *cobra.Command, tasks []string) (domain.StartParameters, error) {
	flags := cmd.Flags()

	enabled, _ := flags.GetBool("configuration-cache")
	if !flags.Changed("configuration-cache") {
		if v, ok := lookupEnv(EnvConfigurationCache); ok {
			parsed, err := strconv.ParseBool(v)
			if err != nil {
				return domain.StartParameters{}, zerr.With(zerr.Wrap(err, "invalid boolean"), "env", EnvConfigurationCache)
			}
			enabled = parsed
		}
	}

	cache, err := cacheOptions(cmd)
	if err != nil {
		return domain.StartParameters{}, err
	}

	pairs, _ := flags.GetStringArray("property")
	properties, err := domain.ParseProperties(pairs)
	if err != nil {
		return domain.StartParameters{}, err
	}

	workingDir, err := projectDir(cmd)
	if err != nil {
		return domain.StartParameters{}, err
	}

	continueOnFailure, _ := flags.GetBool("continue")
	dryRun, _ := flags.GetBool("dry-run")

	return domain.StartParameters{
		RequestedTasks:     tasks,
		ConfigurationCache: enabled,
		ContinueOnFailure:  continueOnFailure,
		DryRun:             dryRun,
		WorkingDir:         workingDir,
		Properties:         properties,
		Environment:        domain.EnvironmentFromList(os.Environ()),
		Cache:              cache,
	}, nil
}

func cacheOptions(cmd *cobra.Command) (domain.CacheOptions, error) {
	backendName := stringFlagOrEnv(cmd, "cache-backend", EnvCacheBackend)
	backend, err := domain.ParseCacheBackend(backendName)
	if err != nil {
		return domain.CacheOptions{}, err
	}

	ttl, _ := cmd.Flags().GetDuration("cache-ttl")
	if !cmd.Flags().Changed("cache-ttl") {
		if v, ok := lookupEnv(EnvCacheTTL); ok {
			if ttl, err = time.ParseDuration(v); err != nil {
				return domain.CacheOptions{}, zerr.With(zerr.Wrap(err, "invalid duration"), "env", EnvCacheTTL)
			}
		}
	}

	return domain.CacheOptions{
		Backend: backend,
		DSN:     stringFlagOrEnv(cmd, "cache-dsn", EnvCacheDSN),
		TTL:     ttl,
	}, nil
}

func stringFlagOrEnv(cmd *cobra.Command, name, env string) string {
	v, _ := cmd.Flags().GetString(name)
	if !cmd.Flags().Changed(name) {
		if ev, ok := lookupEnv(env); ok {
			return ev
		}
	}
	return v
}

// lookupEnv treats an empty variable as unset.
func lookupEnv(name string) (string, bool) {
	v := os.Getenv(name)
	return v, v != ""
}

func projectDir(cmd *cobra.Command) (string, error) {
	dir, _ := cmd.Flags().GetString("project-dir")
	if dir != "" {
		return dir, nil
	}
	return os.Getwd()
}
