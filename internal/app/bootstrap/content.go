package bootstrap

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	appconfig "github.com/wolfman30/contractor-leads/internal/config"
	"github.com/wolfman30/contractor-leads/internal/content"
	"github.com/wolfman30/contractor-leads/internal/http/handlers"
	"github.com/wolfman30/contractor-leads/pkg/logging"
)

// ContentRepos groups the repositories behind the admin CMS.
type ContentRepos struct {
	Projects content.Repository[content.Project]
	Reviews  content.Repository[content.Review]
	Posts    content.Repository[content.Post]
}

// BuildContentRepos uses Postgres when a pool is available, otherwise memory.
func BuildContentRepos(pool *pgxpool.Pool, logger *logging.Logger) ContentRepos {
	if pool == nil {
		if logger != nil {
			logger.Warn("DATABASE_URL not set; content is stored in memory")
		}
		return ContentRepos{
			Projects: content.NewMemoryRepository[content.Project](),
			Reviews:  content.NewMemoryRepository[content.Review](),
			Posts:    content.NewMemoryRepository[content.Post](),
		}
	}
	return ContentRepos{
		Projects: content.NewPostgresRepository[content.Project](pool),
		Reviews:  content.NewPostgresRepository[content.Review](pool),
		Posts:    content.NewPostgresRepository[content.Post](pool),
	}
}

// BuildUploader returns nil when no bucket is configured.
func BuildUploader(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) handlers.Uploader {
	if cfg.UploadsBucket == "" {
		return nil
	}
	awsCfg, err := LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config for uploads", "error", err)
		return nil
	}
	uploader := content.NewS3Uploader(NewS3Client(awsCfg, cfg), cfg.UploadsBucket, cfg.UploadsPublicBaseURL, logger)
	if !uploader.Enabled() {
		return nil
	}
	return uploader
}
