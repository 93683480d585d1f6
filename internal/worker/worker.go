package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"feedsync/internal/config"
	"feedsync/internal/logger"
	"feedsync/internal/models"
	"feedsync/internal/processor"
)

// Worker consumes change events from Kafka and feeds them into the same
// processor the HTTP entry point uses. Failed events are logged and skipped;
// re-delivery is the broker's concern.
type Worker struct {
	config    *config.Config
	logger    *logger.Logger
	reader    *kafka.Reader
	processor *processor.Processor
}

func New(cfg *config.Config, logger *logger.Logger, proc *processor.Processor) *Worker {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{cfg.KafkaBrokers},
		GroupID:        "feedsync-worker",
		Topic:          cfg.KafkaTopic,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
	})

	return &Worker{
		config:    cfg,
		logger:    logger,
		reader:    reader,
		processor: proc,
	}
}

func (w *Worker) Start() {
	w.logger.Info("Worker started, listening for change events...")

	for {
		message, err := w.reader.ReadMessage(context.Background())
		if err != nil {
			w.logger.Error("Failed to read message: %v", err)
			continue
		}

		w.logger.Debug("Received message: %s", string(message.Value))

		var event models.ChangeEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			w.logger.Error("Failed to parse event: %v", err)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		summary, err := w.processor.Process(ctx, &event)
		cancel()

		if err != nil {
			w.logger.Error("Failed to process event: %v", err)
			continue
		}

		w.logger.Info("Event processed: %s", summary.Message)
	}
}

func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	w.reader.Close()
}
