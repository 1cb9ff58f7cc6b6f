package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"cat-trivia-service/internal/config"
	"cat-trivia-service/internal/domain"
	"cat-trivia-service/internal/infra/postgres"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewImportCmd loads a question file into the database.
func NewImportCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import trivia questions from a YAML or JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), *configPath, file)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "question file (YAML or JSON list)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runImport(ctx context.Context, configPath, file string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	questions, err := readQuestionFile(file)
	if err != nil {
		return err
	}

	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}
	db, err := openBunDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	report, err := postgres.NewImporter(db).Import(ctx, questions)
	if err != nil {
		return err
	}
	log.Printf("import %s: read=%d invalid=%d duplicates=%d inserted=%d",
		file, report.Read, report.Invalid, report.Duplicates, report.Inserted)
	return nil
}

// readQuestionFile decodes a list of questions. JSON is valid YAML, so one decoder covers both.
func readQuestionFile(path string) ([]domain.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var questions []domain.Question
	if err := yaml.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return questions, nil
}
