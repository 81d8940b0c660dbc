package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"learnhub/internal/config"
	"learnhub/internal/domain"
	"learnhub/internal/importer"
)

// NewImportCmd loads lessons and quizzes from an xlsx workbook.
func NewImportCmd(configPath *string) *cobra.Command {
	var file, teacherEmail string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import lessons and quizzes from an Excel workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), *configPath, file, teacherEmail)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "path to the .xlsx workbook")
	cmd.Flags().StringVar(&teacherEmail, "teacher", "", "email of the teacher who will own the content")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("teacher")
	return cmd
}

func runImport(ctx context.Context, configPath, file, teacherEmail string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	if cfg.Storage.Driver != config.DriverPostgres {
		log.WithField("driver", cfg.Storage.Driver).Warn("content store is in memory; the import only validates the workbook")
	}

	svc, err := buildServices(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer svc.Close()

	user, err := svc.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(teacherEmail)))
	if err != nil {
		return fmt.Errorf("look up teacher %q: %w", teacherEmail, err)
	}
	if user.Role != domain.RoleTeacher {
		return fmt.Errorf("%s is not a teacher", teacherEmail)
	}

	result, err := importer.New(svc.learning, log).ImportFile(ctx, file, user.Profile)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
