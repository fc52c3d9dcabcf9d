package notify

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agribuddy/notify-engine/internal/domain"
	"github.com/agribuddy/notify-engine/internal/observability"
	"github.com/agribuddy/notify-engine/internal/queue"
)

const minWorkerConcurrency = 1

// Worker drains the notification work queue and hands each message to the
// orchestrator. Delivery outcomes are already aggregated and recorded by
// the orchestrator; the worker only decides ack versus requeue.
type Worker struct {
	orchestrator *Orchestrator
	consumer     queue.Consumer
	concurrency  int
	logger       *zap.Logger
}

func NewWorker(
	orchestrator *Orchestrator,
	consumer queue.Consumer,
	concurrency int,
	logger *zap.Logger,
) (*Worker, error) {
	if orchestrator == nil {
		return nil, fmt.Errorf("orchestrator is required")
	}
	if consumer == nil {
		return nil, fmt.Errorf("queue consumer is required")
	}
	if concurrency < minWorkerConcurrency {
		concurrency = minWorkerConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Worker{
		orchestrator: orchestrator,
		consumer:     consumer,
		concurrency:  concurrency,
		logger:       logger,
	}, nil
}

// Start runs the consumer pool until context cancellation.
func (w *Worker) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	g, groupCtx := errgroup.WithContext(ctx)
	for i := 0; i < w.concurrency; i++ {
		workerID := i + 1

		g.Go(func() error {
			w.logger.Info("worker started", zap.Int("workerId", workerID))

			err := w.consumer.Consume(groupCtx, w.processMessage)
			if err != nil {
				w.logger.Error("worker stopped with error",
					zap.Int("workerId", workerID),
					zap.Error(err),
				)
				return err
			}

			w.logger.Info("worker stopped", zap.Int("workerId", workerID))
			return nil
		})
	}

	return g.Wait()
}

func (w *Worker) processMessage(ctx context.Context, msg queue.NotificationMessage) error {
	if msg.CorrelationID != "" {
		ctx = observability.WithCorrelationID(ctx, msg.CorrelationID)
	}

	summary, err := w.orchestrator.Notify(ctx, Request{
		Recipient: Recipient{
			Name:  msg.RecipientName,
			Phone: msg.RecipientPhone,
			Email: msg.RecipientEmail,
		},
		Template: msg.Template,
		Data:     msg.Data,
		Channels: msg.Channels,
		Country:  msg.Country,
		Priority: msg.Priority,
	})
	if err != nil {
		// Request-level errors are caller bugs: an unknown template or a
		// malformed request will never succeed on redelivery, so drop the
		// message instead of requeueing it forever.
		if errors.Is(err, domain.ErrUnknownTemplate) || errors.Is(err, domain.ErrValidation) {
			w.logger.Warn("dropping unprocessable message",
				zap.String("messageId", msg.MessageID),
				zap.String("template", msg.Template),
				zap.Error(err),
			)
			return nil
		}
		return fmt.Errorf("failed to process notification message: %w", err)
	}

	w.logger.Info("queued notification processed",
		zap.String("messageId", msg.MessageID),
		zap.Int("successful", summary.Successful),
		zap.Int("failed", summary.Failed),
	)

	return nil
}
