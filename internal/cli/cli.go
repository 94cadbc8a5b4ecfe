// Package cli implements the roadreport command line: staging and analyzing
// photos into a draft report, submitting it and browsing the owner's tickets.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/okian/roadreport/internal/adapters/mq/worker"
	"github.com/okian/roadreport/internal/adapters/photo"
	"github.com/okian/roadreport/internal/adapters/remote"
	"github.com/okian/roadreport/internal/adapters/upload"
	service "github.com/okian/roadreport/internal/app"
	"github.com/okian/roadreport/internal/config"
	"github.com/okian/roadreport/internal/domain/model"
	"github.com/okian/roadreport/internal/domain/staging"
	"github.com/okian/roadreport/pkg/logger"
	"github.com/spf13/cobra"
)

// Env is what every command runs against.
type Env struct {
	Service *service.Service
	Out     io.Writer
	// Err receives cobra's usage and error text; nil keeps stderr.
	Err io.Writer
}

// NewService wires the report pipeline described by cfg.
func NewService(cfg *config.Config) *service.Service {
	log := logger.Get()
	client := remote.New(cfg.APIBaseURL,
		remote.WithTimeout(time.Duration(cfg.HTTPTimeoutMS)*time.Millisecond),
		remote.WithDetectURL(cfg.DetectURL()),
		remote.WithLogger(log.Named("remote")))
	uploader := upload.New(client,
		upload.WithMaxImageBytes(cfg.MaxImageBytes),
		upload.WithLogger(log.Named("upload")))

	stagingOpts := []staging.Option{
		staging.WithCapacity(cfg.MaxPhotos),
		staging.WithPreviewer(photo.NewThumbnailPreviewer(
			photo.WithDir(cfg.PreviewDir),
			photo.WithSize(cfg.PreviewSize))),
		staging.WithLogger(log.Named("staging")),
	}
	if cfg.CapacityPolicy == config.PolicyAcceptPrefix {
		stagingOpts = append(stagingOpts, staging.WithAcceptPrefix())
	}

	return service.New(client, uploader,
		service.WithQueueSize(cfg.OutcomeQueueSize),
		service.WithPageSizes(cfg.RecentLimit, cfg.HistoryLimit),
		service.WithStagingOptions(stagingOpts...),
		service.WithLocator(photo.LocateFirst),
		service.WithHandler(outcomeLogger(log.Named("outcome"))),
		service.WithLogger(log.Named("service")))
}

// outcomeLogger records every pipeline outcome at debug level.
func outcomeLogger(l logger.Logger) worker.Handler {
	return worker.HandlerFunc(func(ctx context.Context, o model.Outcome) { //nolint:gocritic // hugeParam: handler signature
		fields := []logger.Field{
			logger.String("op", string(o.Op)),
			logger.String("session", o.SessionID),
			logger.String("uuid", o.UUID),
		}
		if o.Failed() {
			l.Debug(ctx, "operation failed", append(fields, logger.String("kind", o.Kind))...)
			return
		}
		l.Debug(ctx, "operation done", fields...)
	})
}

// Execute runs the command tree with args and stops the service afterwards,
// whether or not the command succeeded.
func Execute(ctx context.Context, env *Env, args []string) error {
	defer env.Service.Stop()
	root := RootCmd(env)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// RootCmd builds the roadreport command tree over env. The caller stops
// env.Service; Execute does.
func RootCmd(env *Env) *cobra.Command {
	root := &cobra.Command{
		Use:   "roadreport",
		Short: "Report road-surface defects from photos",
		Long: `roadreport sends pothole photos to the detection service, turns the
results into a draft report and submits it to the authorities.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return env.Service.Start(cmd.Context())
		},
	}
	root.SetOut(env.Out)
	if env.Err != nil {
		root.SetErr(env.Err)
	}

	root.AddCommand(reportCmd(env))
	root.AddCommand(submitCmd(env))
	root.AddCommand(showCmd(env))
	root.AddCommand(ticketsCmd(env))
	return root
}
