package main

import (
	"context"
	"fmt"
	"time"

	"github.com/yourusername/prop-edge/internal/artifacts"
	"github.com/yourusername/prop-edge/internal/database"
	"github.com/yourusername/prop-edge/internal/datasource"
	"github.com/yourusername/prop-edge/internal/edge"
	"github.com/yourusername/prop-edge/internal/projection"
	"github.com/yourusername/prop-edge/internal/publisher"
	"github.com/yourusername/prop-edge/internal/repository"
	"github.com/yourusername/prop-edge/internal/service"
	"github.com/yourusername/prop-edge/internal/settlement"
)

func openRepositories(ctx context.Context) (*database.DB, *repository.Repositories, error) {
	db, err := database.Initialize(ctx, cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	repos, err := repository.NewRepositories(db)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}
	return db, repos, nil
}

func newOddsSource() (datasource.OddsSource, error) {
	httpCfg := datasource.DefaultHTTPClientConfig()
	httpCfg.Timeout = cfg.OddsAPITimeout()
	httpCfg.MaxRetries = cfg.OddsAPI.RetryAttempts
	httpCfg.RequestsPerMinute = cfg.OddsAPI.RequestsPerMinute

	return datasource.NewOddsAPIClient(datasource.NewRateLimitedHTTPClient(httpCfg, logger), datasource.OddsAPIConfig{
		BaseURL:    cfg.OddsAPI.BaseURL,
		APIKey:     cfg.OddsAPI.APIKey,
		Sport:      cfg.OddsAPI.Sport,
		Regions:    cfg.OddsAPI.Regions,
		Markets:    cfg.OddsAPI.Markets,
		Bookmakers: cfg.OddsAPI.Bookmakers,
	}, logger)
}

func newBoardEngine() (*edge.Board, error) {
	priors, err := projection.NewPriors(projection.PriorsConfig{
		StdevPriors:  cfg.Model.StdevPriors,
		DefaultStdev: cfg.Model.DefaultStdev,
		ClampEpsilon: cfg.Model.ClampEpsilon,
		ModelVersion: cfg.Model.Version,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid model priors: %w", err)
	}

	weights := cfg.Model.BookWeights
	if len(weights) == 0 {
		weights = projection.DefaultBookWeights()
	}

	evaluator, err := edge.NewEvaluator(edge.EvaluatorConfig{
		Priors:         priors,
		BookWeights:    projection.NewBookWeights(weights),
		FreshnessDecay: cfg.Model.FreshnessDecay,
		Mode:           edge.ConsensusMode(cfg.Model.ConsensusMode),
	})
	if err != nil {
		return nil, err
	}
	return edge.NewBoard(evaluator, cfg.Board.Workers), nil
}

func newWriter() (*artifacts.Writer, error) {
	return artifacts.NewWriter(cfg.Output.Dir)
}

// newMirror returns nil when mirroring is disabled
func newMirror(ctx context.Context) (service.ArtifactMirror, error) {
	s3cfg := cfg.Output.S3
	if !s3cfg.Enabled {
		return nil, nil
	}
	mirror, err := artifacts.NewS3Mirror(ctx, artifacts.S3MirrorConfig{
		Bucket:         s3cfg.Bucket,
		Region:         s3cfg.Region,
		Prefix:         s3cfg.Prefix,
		Endpoint:       s3cfg.Endpoint,
		ForcePathStyle: s3cfg.ForcePathStyle,
	})
	if err != nil {
		return nil, err
	}
	return mirror, nil
}

// newPublisher returns a nil publisher and a no-op close when Redis is disabled
func newPublisher(ctx context.Context) (service.BoardPublisher, func(), error) {
	if !cfg.Redis.Enabled {
		return nil, func() {}, nil
	}
	client, err := publisher.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close redis client")
		}
	}
	return publisher.NewStreamPublisher(client, cfg.Redis.StreamPrefix, cfg.Redis.MaxLen), closeFn, nil
}

// newBoardService wires the board pipeline. repos may be nil for file-only runs.
func newBoardService(ctx context.Context, repos *repository.Repositories, snapshots *service.SnapshotStore) (*service.BoardService, func(), error) {
	board, err := newBoardEngine()
	if err != nil {
		return nil, nil, err
	}
	writer, err := newWriter()
	if err != nil {
		return nil, nil, err
	}
	mirror, err := newMirror(ctx)
	if err != nil {
		return nil, nil, err
	}
	pub, closePub, err := newPublisher(ctx)
	if err != nil {
		return nil, nil, err
	}

	svcCfg := service.BoardServiceConfig{
		Board:        board,
		ModelVersion: cfg.Model.Version,
		Publisher:    pub,
		Writer:       writer,
		Mirror:       mirror,
		Snapshots:    snapshots,
		Lookback:     cfg.BoardLookback(),
		MinEdgePct:   cfg.Board.MinEdgePct,
		MinFreshness: cfg.Board.MinFreshness,
		Logger:       logger,
	}
	if repos != nil {
		svcCfg.Quotes = repos.Quote
		svcCfg.Edges = repos.Edge
	}
	svc, err := service.NewBoardService(svcCfg)
	if err != nil {
		closePub()
		return nil, nil, err
	}
	return svc, closePub, nil
}

func newGradingService(ctx context.Context, repos *repository.Repositories, snapshots *service.SnapshotStore) (*service.GradingService, error) {
	grader, err := settlement.NewGrader(settlement.TiePolicy(cfg.Settlement.TiePolicy), cfg.Settlement.Workers, nil)
	if err != nil {
		return nil, err
	}
	writer, err := newWriter()
	if err != nil {
		return nil, err
	}
	mirror, err := newMirror(ctx)
	if err != nil {
		return nil, err
	}
	return service.NewGradingService(service.GradingServiceConfig{
		Grader:            grader,
		ModelVersion:      cfg.Model.Version,
		Picks:             repos.Pick,
		Results:           repos.Result,
		Grades:            repos.Grade,
		History:           repos.Metrics,
		Writer:            writer,
		Mirror:            mirror,
		Snapshots:         snapshots,
		StopLossThreshold: cfg.Settlement.StopLossThreshold,
		Logger:            logger,
	})
}

func snapshotTTL() time.Duration {
	return time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
}
