package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	kafka_impl "github.com/vladmycode/imager/internal/broker/kafka"
	"github.com/vladmycode/imager/internal/config"
	"github.com/vladmycode/imager/internal/domain"
	minio_repo "github.com/vladmycode/imager/internal/repository/image/cloud/minio"
	postgres_repo "github.com/vladmycode/imager/internal/repository/image/db/postgres"
	"github.com/vladmycode/imager/internal/usecase/renderer"

	"github.com/segmentio/kafka-go"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/zlog"
)

// Worker consumes composition tasks, renders them and publishes results.
type Worker struct {
	cfg       *config.Config
	logger    *zlog.Zerolog
	db        *dbpg.DB
	broker    *kafka_impl.KafkaClient
	fileRepo  *minio_repo.FileRepository
	renderer  *renderer.Renderer
	imageRepo *postgres_repo.ImagesRepository
}

func NewWorker(cfg *config.Config, logger *zlog.Zerolog) (*Worker, error) {
	dbOpts := &dbpg.Options{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	}

	db, err := dbpg.New(cfg.DBDSN(), []string{}, dbOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	fileRepo, err := minio_repo.NewFileRepository(context.Background(), cfg.Minio)
	if err != nil {
		return nil, fmt.Errorf("failed to create file repository: %w", err)
	}

	return &Worker{
		cfg:       cfg,
		logger:    logger,
		db:        db,
		broker:    kafka_impl.NewKafkaClient(cfg),
		fileRepo:  fileRepo,
		renderer:  renderer.NewRenderer(fileRepo, cfg.Compose, logger),
		imageRepo: postgres_repo.NewImagesRepository(db, cfg.DefaultRetryStrategy()),
	}, nil
}

func (w *Worker) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messages := make(chan kafka.Message, w.cfg.Worker.Concurrency)

	go w.broker.StartConsuming(ctx, messages, w.cfg.DefaultRetryStrategy())

	var wg sync.WaitGroup
	for i := 0; i < w.cfg.Worker.Concurrency; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			w.worker(ctx, id, messages)
		}(i)
	}

	w.logger.Info().Int("concurrency", w.cfg.Worker.Concurrency).Msg("worker started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	w.logger.Info().Str("signal", sig.String()).Msg("received signal, shutting down")
	cancel()

	wg.Wait()

	if err := w.broker.Close(); err != nil {
		w.logger.Error().Err(err).Msg("failed to close broker")
	}
	if w.db != nil && w.db.Master != nil {
		w.db.Master.Close()
	}

	return nil
}

func (w *Worker) worker(ctx context.Context, id int, messages <-chan kafka.Message) {
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Int("worker_id", id).Msg("worker stopped")
			return
		case msg := <-messages:
			w.processMessage(ctx, id, msg)
		}
	}
}

func (w *Worker) processMessage(ctx context.Context, workerID int, msg kafka.Message) {
	var task domain.ComposeTask
	if err := json.Unmarshal(msg.Value, &task); err != nil {
		w.logger.Error().Err(err).Int("worker_id", workerID).Msg("failed to unmarshal task")
		// Poison message, skip it.
		if err := w.broker.Commit(ctx, msg); err != nil {
			w.logger.Error().Err(err).Msg("failed to commit poison message")
		}
		return
	}

	w.logger.Info().
		Int("worker_id", workerID).
		Str("task_id", task.ID).
		Str("image_id", task.ImageID).
		Msg("processing task")

	if err := w.imageRepo.UpdateStatus(ctx, task.ImageID, domain.StatusProcessing); err != nil {
		w.logger.Warn().Err(err).Str("image_id", task.ImageID).Msg("failed to mark image processing")
	}

	data, _, err := w.fileRepo.GetObject(ctx, task.OriginalPath)
	if err != nil {
		w.logger.Error().Err(err).Str("image_id", task.ImageID).Msg("failed to get original image")
		w.failTask(ctx, task, fmt.Sprintf("failed to get original image: %v", err))
		w.commit(ctx, msg, task.ImageID)
		return
	}

	result, rendered, err := w.renderer.Process(ctx, &task, data)
	if err != nil {
		w.logger.Error().Err(err).Str("image_id", task.ImageID).Msg("composition failed")
		w.failTask(ctx, task, result.Error)
		w.commit(ctx, msg, task.ImageID)
		return
	}

	for i := range rendered {
		if err := w.imageRepo.SaveRenderedImage(ctx, &rendered[i]); err != nil {
			w.logger.Error().Err(err).
				Str("image_id", task.ImageID).
				Str("operation", string(rendered[i].Operation)).
				Msg("failed to save rendered image info")
		}
	}

	if err := w.imageRepo.UpdateStatus(ctx, task.ImageID, domain.StatusCompleted); err != nil {
		w.logger.Error().Err(err).Str("image_id", task.ImageID).Msg("failed to update image status")
	}

	if err := w.sendResult(ctx, result); err != nil {
		w.logger.Error().Err(err).Str("image_id", task.ImageID).Msg("failed to send result")
		return
	}

	w.commit(ctx, msg, task.ImageID)

	w.logger.Info().
		Int("worker_id", workerID).
		Str("image_id", task.ImageID).
		Str("status", string(result.Status)).
		Msg("task completed")
}

func (w *Worker) commit(ctx context.Context, msg kafka.Message, imageID string) {
	if err := w.broker.Commit(ctx, msg); err != nil {
		w.logger.Error().Err(err).Str("image_id", imageID).Msg("failed to commit message")
	}
}

func (w *Worker) sendResult(ctx context.Context, result *domain.ComposeResult) error {
	resultBytes, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	return w.broker.Send(ctx, w.cfg.DefaultRetryStrategy(), []byte(result.ImageID), resultBytes)
}

func (w *Worker) failTask(ctx context.Context, task domain.ComposeTask, errorMsg string) {
	if err := w.imageRepo.UpdateStatus(ctx, task.ImageID, domain.StatusFailed); err != nil {
		w.logger.Error().Err(err).Str("image_id", task.ImageID).Msg("failed to mark image failed")
	}

	result := &domain.ComposeResult{
		ID:      task.ID,
		ImageID: task.ImageID,
		Status:  domain.StatusFailed,
		Error:   errorMsg,
	}

	if err := w.sendResult(ctx, result); err != nil {
		w.logger.Error().Err(err).Str("image_id", task.ImageID).Msg("failed to send failure result")
	}
}
