package archive

import (
	"context"
	"errors"
	"time"

	"github.com/hydrib/landregistry-backend/internal/clock"
	"go.uber.org/zap"
)

// ExporterService runs the archive loop: find the highest archived sequence,
// read the blocks past it from the chain, and mirror them into ClickHouse.
type ExporterService struct {
	logger            *zap.Logger
	metrics           ExporterMetrics
	sleep             func(context.Context, time.Duration) error
	sleepDuration     time.Duration
	longSleepDuration time.Duration
	source            LedgerSource
	repo              ClickhouseRepository
	writer            RowWriter
	processor         ChunkProcessor
	batchLimit        int
}

// NewExporterService builds an ExporterService with the given dependencies.
func NewExporterService(
	source LedgerSource,
	repo ClickhouseRepository,
	metrics ExporterMetrics,
	logger *zap.Logger,
) (*ExporterService, error) {
	if source == nil {
		return nil, errors.New("ledger source is required")
	}
	if repo == nil {
		return nil, errors.New("clickhouse repository is required")
	}
	if metrics == nil {
		return nil, errors.New("exporter metrics is required")
	}
	logger = logger.Named("archiveExporter")

	writer := newRowWriter(repo, logger)

	return &ExporterService{
		logger:            logger,
		metrics:           metrics,
		sleep:             clock.SleepWithContext,
		sleepDuration:     sleepDuration,
		longSleepDuration: longSleepDuration,
		source:            source,
		repo:              repo,
		writer:            writer,
		processor: &chunkProcessor{
			workerCount: defaultWorkerCount,
			writer:      writer,
			logger:      logger.Named("chunkProcessor"),
		},
		batchLimit: exportBatchLimit,
	}, nil
}

// Run starts the export loop until the context is canceled.
func (s *ExporterService) Run(ctx context.Context) error {
	writerCtx, writerCancel := context.WithCancel(ctx)
	s.processor.SetCancel(writerCancel)

	s.writer.Start(writerCtx)
	defer func() {
		writerCancel()
		s.writer.Stop()
	}()

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := s.run(ctx); err != nil {
			s.logger.Warn("export iteration failed, backing off", zap.Error(err), zap.Duration("sleep", s.sleepDuration))
			if sleepErr := s.sleep(ctx, s.sleepDuration); sleepErr != nil {
				return sleepErr
			}
		}
	}
}

func (s *ExporterService) run(ctx context.Context) error {
	started := time.Now()
	maxSequence, err := s.repo.MaxSequence(ctx)
	s.metrics.ObserveFetchTail(err, started)
	if err != nil {
		s.logger.Error("fetch archived tail failed", zap.Error(err))
		return err
	}

	blocks, err := s.source.BlocksAfter(maxSequence, s.batchLimit)
	if err != nil {
		s.logger.Error("read chain failed", zap.Uint64("after", maxSequence), zap.Error(err))
		return err
	}

	if len(blocks) == 0 {
		s.logger.Debug("archive is caught up; sleeping", zap.Duration("sleep", s.longSleepDuration))
		return s.sleep(ctx, s.longSleepDuration)
	}

	s.logger.Info("exporting blocks", zap.Uint64("after", maxSequence), zap.Int("blocks", len(blocks)))
	started = time.Now()
	if err = s.processor.Process(ctx, blocks); err != nil {
		s.metrics.ObserveExportBatch(err, len(blocks), started)
		s.logger.Error("export batch failed", zap.Int("blocks", len(blocks)), zap.Error(err))
		return err
	}
	s.metrics.ObserveExportBatch(nil, len(blocks), started)

	return s.sleep(ctx, s.sleepDuration)
}
