package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"

	"newsnotes/cmd/internal/config"
	"newsnotes/cmd/internal/domain/database"
	"newsnotes/cmd/internal/domain/database/repository"
	"newsnotes/cmd/internal/domain/policy"
	"newsnotes/cmd/internal/infrastructure/aws/storage"
	"newsnotes/cmd/internal/service"
	"newsnotes/cmd/internal/utils/uid"
	"newsnotes/cmd/internal/utils/validators"
)

var (
	importFile  string
	importS3Key string
)

var importCmd = &cobra.Command{
	Use:   "import-news",
	Short: "Import news items from a JSON file",
	Long: `Reads a JSON array of {"title", "text", "date"} objects, from a local file or
from the imports/ folder of the configured S3 bucket, and stores all of them.
Nothing is stored when any item is invalid.`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importFile, "file", "", "Path to a local JSON file")
	importCmd.Flags().StringVar(&importS3Key, "s3-key", "", "Object key in S3_BUCKET_NAME")
	importCmd.MarkFlagsMutuallyExclusive("file", "s3-key")
	importCmd.MarkFlagsOneRequired("file", "s3-key")
}

func runImport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	log.SetLevel(parseLogLevel(cfg.LogLevel))

	if err = uid.Init(cfg.MachineID); err != nil {
		return err
	}

	db, err := database.Init(cfg)
	if err != nil {
		return err
	}

	var src io.ReadCloser
	switch {
	case importFile != "":
		src, err = os.Open(importFile)
	case importS3Key != "":
		var client storage.S3Client
		if client, err = storage.NewStorageClient(ctx, cfg.S3Region, cfg.S3Bucket); err == nil {
			src, err = client.OpenFile(ctx, importS3Key)
		}
	default:
		err = errors.New("either --file or --s3-key is required")
	}
	if err != nil {
		return err
	}
	defer src.Close()

	// The home cache only lives in the server process, it expires on its own
	newsService := service.NewNewsService(
		repository.NewNewsRepository(db),
		repository.NewCommentRepository(db),
		policy.NewGuard(cfg.LoginURL),
		validators.New(),
		cfg.NewsCountOnHomePage,
		0,
	)

	imported, err := newsService.ImportNews(src)
	if err != nil {
		return fmt.Errorf("import failed, nothing was stored: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d news items\n", imported)
	return nil
}
