package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/troop78/troophub/internal/blasts"
	"github.com/troop78/troophub/internal/models"
	"github.com/troop78/troophub/pkg/queue"
)

// BlastDeliveryProcessor processes blast delivery jobs: every recipient is "delivered" on every
// channel and the outcome recorded. No message leaves the process.
type BlastDeliveryProcessor struct {
	queue    queue.JobQueue
	recorder blasts.DeliveryRecorder
	logger   *zap.Logger
	backoff  time.Duration
	now      func() time.Time
}

// NewBlastDeliveryProcessor creates a blast delivery processor.
func NewBlastDeliveryProcessor(q queue.JobQueue, recorder blasts.DeliveryRecorder, logger *zap.Logger) *BlastDeliveryProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BlastDeliveryProcessor{queue: q, recorder: recorder, logger: logger, backoff: queue.RetryBackoff, now: time.Now}
}

// Deliver simulates sending one blast to one recipient on one channel.
func Deliver(blastID string, r queue.Recipient, ch models.Channel, at time.Time) models.DeliveryLog {
	log := models.DeliveryLog{
		ID:          uuid.New().String(),
		BlastID:     blastID,
		MemberID:    r.MemberID,
		Channel:     ch,
		Status:      models.DeliveryStatusSimulated,
		AttemptedAt: &at,
		CreatedAt:   at,
	}
	switch {
	case !ch.Valid():
		log.Status = models.DeliveryStatusFailed
		log.ErrorMessage = fmt.Sprintf("unsupported channel %q", ch)
	case ch == models.ChannelSMS && r.Phone == "":
		log.Status = models.DeliveryStatusFailed
		log.ErrorMessage = "no phone number on file"
	case ch == models.ChannelEmail && r.Email == "":
		log.Status = models.DeliveryStatusFailed
		log.ErrorMessage = "no email address on file"
	}
	return log
}

// Process executes one blast delivery job.
func (p *BlastDeliveryProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeBlastDelivery {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.BlastDeliveryPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	at := p.now().UTC()
	logs := make([]models.DeliveryLog, 0, len(payload.Recipients)*len(payload.Channels))
	failed := 0
	for _, r := range payload.Recipients {
		for _, ch := range payload.Channels {
			l := Deliver(payload.BlastID, r, models.Channel(ch), at)
			if l.Status == models.DeliveryStatusFailed {
				failed++
			}
			logs = append(logs, l)
		}
	}
	if err := p.recorder.Record(ctx, logs...); err != nil {
		return fmt.Errorf("record deliveries: %w", err)
	}

	p.logger.Info("blast delivered",
		zap.String("blast_id", payload.BlastID),
		zap.Bool("emergency", payload.IsEmergency),
		zap.Int("deliveries", len(logs)),
		zap.Int("failed", failed),
	)
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *BlastDeliveryProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("blast worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			p.sleep(ctx)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			p.sleep(ctx)
			continue
		}
	}
}

func (p *BlastDeliveryProcessor) sleep(ctx context.Context) {
	t := time.NewTimer(p.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
