package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"statement-import-service/cmd/importer/config"
	"statement-import-service/internal/importer"
	"statement-import-service/internal/models"
	"statement-import-service/internal/report"
	"statement-import-service/internal/session"
	"statement-import-service/pkg/errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the import command
var (
	statementFile string
	photoFiles    []string
	outputFormat  string
	outputFile    string
	autoCommit    bool

	registryURL   string
	registryTTL   time.Duration
	geminiAPIKey  string
	geminiModel   string
	geminiTimeout time.Duration
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import transactions from a bank statement",
	Long: `Import parses a bank statement PDF or statement photos into
transactions, deduplicates them against previous imports and prints the
result.

Known bank formats are parsed with their configured line grammar. When no
bank is recognized the statement goes through the generative AI fallback,
which requires a Gemini API key (--gemini-api-key or
STATEMENT_IMPORT_GEMINI_API_KEY). Photos always use the AI path.

Examples:
  # Parse a PDF and show the preview
  importer import --file statement.pdf

  # Parse and commit categorized transactions in one run
  importer import --file statement.pdf --commit

  # Parse statement photos
  importer import --photos page1.jpg,page2.jpg --gemini-api-key $KEY

  # Machine-readable output
  importer import --file statement.pdf --output-format json --output-file result.json`,

	PreRunE: validateImportFlags,
	RunE:    runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	// Input flags
	importCmd.Flags().StringVarP(&statementFile, "file", "i", "", "path to statement PDF")
	importCmd.Flags().StringSliceVarP(&photoFiles, "photos", "p", []string{}, "comma-separated paths to statement photos (JPEG)")

	// Output flags
	importCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "output format: console, json, csv")
	importCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")
	importCmd.Flags().BoolVar(&autoCommit, "commit", false, "commit categorized transactions after parsing")

	// Pipeline flags
	importCmd.Flags().StringVar(&registryURL, "registry-url", "", "remote parser config registry URL (default: bundled configs)")
	importCmd.Flags().DurationVar(&registryTTL, "registry-ttl", 12*time.Hour, "registry cache TTL")
	importCmd.Flags().StringVar(&geminiAPIKey, "gemini-api-key", "", "Gemini API key for the AI parsing path")
	importCmd.Flags().StringVar(&geminiModel, "gemini-model", "", "Gemini model name")
	importCmd.Flags().DurationVar(&geminiTimeout, "gemini-timeout", 60*time.Second, "timeout per AI call")

	// Bind flags to viper
	viper.BindPFlag("file", importCmd.Flags().Lookup("file"))
	viper.BindPFlag("photos", importCmd.Flags().Lookup("photos"))
	viper.BindPFlag("output-format", importCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("output-file", importCmd.Flags().Lookup("output-file"))
	viper.BindPFlag("commit", importCmd.Flags().Lookup("commit"))
	viper.BindPFlag("registry-url", importCmd.Flags().Lookup("registry-url"))
	viper.BindPFlag("registry-ttl", importCmd.Flags().Lookup("registry-ttl"))
	viper.BindPFlag("gemini-api-key", importCmd.Flags().Lookup("gemini-api-key"))
	viper.BindPFlag("gemini-model", importCmd.Flags().Lookup("gemini-model"))
	viper.BindPFlag("gemini-timeout", importCmd.Flags().Lookup("gemini-timeout"))
}

func validateImportFlags(cmd *cobra.Command, args []string) error {
	// Get values from viper (allows override from config file and env)
	statementFile = viper.GetString("file")
	photoFiles = viper.GetStringSlice("photos")
	outputFormat = viper.GetString("output-format")
	outputFile = viper.GetString("output-file")
	autoCommit = viper.GetBool("commit")
	registryURL = viper.GetString("registry-url")
	registryTTL = viper.GetDuration("registry-ttl")
	geminiAPIKey = viper.GetString("gemini-api-key")
	geminiModel = viper.GetString("gemini-model")
	geminiTimeout = viper.GetDuration("gemini-timeout")

	if statementFile == "" && len(photoFiles) == 0 {
		return fmt.Errorf("either --file or --photos is required")
	}
	if statementFile != "" && len(photoFiles) > 0 {
		return fmt.Errorf("--file and --photos are mutually exclusive")
	}

	if statementFile != "" {
		if err := validateFileExists(statementFile, "statement file"); err != nil {
			return err
		}
	}
	for i, photo := range photoFiles {
		if err := validateFileExists(photo, fmt.Sprintf("photo %d", i+1)); err != nil {
			return err
		}
	}

	if _, err := report.ParseFormat(outputFormat); err != nil {
		return err
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("%s is not readable: %w", description, err)
	}
	file.Close()

	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	settings := config.Settings{
		RegistryURL:   registryURL,
		RegistryTTL:   registryTTL,
		GeminiAPIKey:  geminiAPIKey,
		GeminiModel:   geminiModel,
		GeminiTimeout: geminiTimeout,
	}

	registry, err := config.CreateRegistry(settings)
	if err != nil {
		return fmt.Errorf("failed to create parser config registry: %w", err)
	}

	generator, closeGenerator, err := config.CreateGenerator(ctx, settings)
	if err != nil {
		return fmt.Errorf("failed to create AI generator: %w", err)
	}
	defer closeGenerator()

	s, account, err := config.CreateSeededStore(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}

	service := config.CreateService(generator, registry, s)

	// The session mirrors the lifecycle a UI would drive
	run := session.NewSession()
	if err := run.StartSelection(); err != nil {
		return err
	}
	if err := run.StartParsing(); err != nil {
		return err
	}

	result, parseErr := parseInput(ctx, service)
	if parseErr != nil {
		run.Fail(parseErr)
		return parseErr
	}
	if err := previewOrFail(run, result); err != nil {
		return err
	}

	if autoCommit {
		if err := run.StartImport(); err != nil {
			return err
		}
		summary, err := service.Commit(ctx, account.ID, result, run.Overrides())
		if err != nil {
			run.Fail(err)
			return err
		}
		if err := run.Complete(); err != nil {
			return err
		}
		if viper.GetBool("verbose") {
			fmt.Fprintf(os.Stderr, "Committed %d transactions (%d skipped without category, %d duplicates at commit).\n",
				summary.Committed, summary.SkippedNoCategory, summary.DuplicatesAtCommit)
		}
	}

	return writeReport(result)
}

// previewOrFail advances the session to preview, or to the error state when
// parsing produced no rows at all and only errors — there is nothing to show.
// A result that is all duplicates still previews normally.
func previewOrFail(run *session.Session, result *models.ImportResult) error {
	if result.Total == 0 && len(result.Errors) > 0 {
		err := errors.New(errors.CategoryAI, errors.CodeBadPayload,
			fmt.Sprintf("parsing produced no transactions: %s", strings.Join(result.Errors, "; ")))
		run.Fail(err)
		return err
	}
	return run.EnterPreview(result)
}

func parseInput(ctx context.Context, service *importer.Service) (*models.ImportResult, error) {
	if statementFile != "" {
		data, err := os.ReadFile(statementFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read statement: %w", err)
		}
		return service.ImportPDF(ctx, data)
	}

	images := make([][]byte, 0, len(photoFiles))
	for _, photo := range photoFiles {
		data, err := os.ReadFile(photo)
		if err != nil {
			return nil, fmt.Errorf("failed to read photo %s: %w", photo, err)
		}
		images = append(images, data)
	}
	return service.ImportPhoto(ctx, images)
}

func writeReport(result *models.ImportResult) error {
	format, err := report.ParseFormat(outputFormat)
	if err != nil {
		return err
	}
	reporter, err := report.NewReporter(format)
	if err != nil {
		return err
	}

	output := os.Stdout
	if outputFile != "" {
		output, err = os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	}

	return reporter.Write(output, result)
}
