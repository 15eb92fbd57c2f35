// Command drugctl queries the drug knowledge provider from the command line
// and prints the validated result as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/giygas/drugs-api/apperrors"
	"github.com/giygas/drugs-api/config"
	"github.com/giygas/drugs-api/interfaces"
	"github.com/giygas/drugs-api/logging"
	"github.com/giygas/drugs-api/provider"
	"github.com/giygas/drugs-api/query"
	"github.com/giygas/drugs-api/validation"
)

var (
	// Flags
	apiKey   string
	language string
	timeout  time.Duration
	compact  bool
	verbose  bool

	// newService is replaced in tests
	newService = serviceFromEnv
)

var rootCmd = &cobra.Command{
	Use:   "drugctl",
	Short: "Query drug information through the text-generation provider",
	Long: `drugctl asks the configured provider about medications and prints
validated JSON. Configuration is read from the environment and .env, the
same way the API server reads it. Each run sends a single provider request,
so the server-only settings PROVIDER_BREAKER_FAILURES,
PROVIDER_BREAKER_COOLDOWN_SECONDS and DEDUPE_INFLIGHT are ignored.

Examples:
  drugctl lookup آسپرین
  drugctl search "سرماخوردگی" --limit 10
  drugctl categories
  drugctl by-category "آنتی بیوتیک"
  drugctl common --limit 20`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := "warn"
		if verbose {
			level = "debug"
		}
		logging.InitLogger(logging.Options{Level: level})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Provider API key (or set PROVIDER_API_KEY env)")
	rootCmd.PersistentFlags().StringVar(&language, "language", "", "Language replies are requested in (default from PROMPT_LANGUAGE)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Operation timeout")
	rootCmd.PersistentFlags().BoolVar(&compact, "compact", false, "Print compact JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(lookupCmd, searchCmd, categoriesCmd, byCategoryCmd, commonCmd)
}

// serviceFromEnv builds the query service the same way the server does
func serviceFromEnv() (interfaces.DrugQueryService, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	providerCfg := provider.Config{
		APIKey:      cfg.Provider.APIKey,
		BaseURL:     cfg.Provider.BaseURL,
		Model:       cfg.Provider.Model,
		Temperature: cfg.Provider.Temperature,
		MaxTokens:   cfg.Provider.MaxTokens,
		Timeout:     cfg.Provider.Timeout,
	}
	if apiKey != "" {
		providerCfg.APIKey = apiKey
	}

	lang := cfg.PromptLanguage
	if language != "" {
		lang = language
	}

	return query.NewService(provider.NewClient(providerCfg), validation.NewSchemaValidator(), query.Options{
		Language: lang,
		// One call per process, nothing to share and no failure streak to track
		DedupeInFlight: false,
	}), nil
}

// run resolves the service, bounds fn with --timeout and prints its result
func run(cmd *cobra.Command, fn func(ctx context.Context, svc interfaces.DrugQueryService) (any, error)) error {
	svc, err := newService()
	if err != nil {
		return fmt.Errorf("failed to configure: %w", err)
	}

	baseCtx := cmd.Context()
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	ctx, cancel := context.WithTimeout(baseCtx, timeout)
	defer cancel()

	result, err := fn(ctx, svc)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)
	if !compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(result)
}

// exitCode maps the error taxonomy to distinct process exit codes
func exitCode(err error) int {
	switch apperrors.Classify(err) {
	case apperrors.KindInput:
		return 2
	case apperrors.KindNotFound:
		return 3
	case apperrors.KindConfiguration:
		return 4
	case apperrors.KindTransport, apperrors.KindUpstream:
		return 5
	case apperrors.KindProtocol, apperrors.KindValidation:
		return 6
	}
	return 1
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var upstreamErr *apperrors.UpstreamError
		if errors.As(err, &upstreamErr) {
			fmt.Fprintf(os.Stderr, "Error: provider returned %d: %s\n", upstreamErr.StatusCode, upstreamErr.ProviderMessage)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(exitCode(err))
	}
}
