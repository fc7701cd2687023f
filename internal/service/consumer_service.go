// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"
	"errors"

	"ai-docstore-be/internal/dto"
	"ai-docstore-be/internal/entity"
	"ai-docstore-be/internal/mapper"
	"ai-docstore-be/internal/pkg/logger"
	"ai-docstore-be/internal/repository/memory"
	"ai-docstore-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// Message types pushed to the browser over the events socket.
const (
	MessageUploadProgress = "upload_progress"
	MessageUploadFinished = "upload_finished"
)

// ProgressDelivery pushes a typed message to every connection of a user.
type ProgressDelivery interface {
	Send(userID uuid.UUID, msgType string, data interface{})
}

// EventPublisher publishes lifecycle events to the outer bus.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub    message.Subscriber
	topicName string
	jobs      *memory.UploadJobRepository
	delivery  ProgressDelivery
	events    EventPublisher
	mapper    *mapper.UploadJobMapper
	logger    logger.ILogger
}

// NewConsumerService relays upload events from the in-process topic. eventPub may
// be nil when no outer bus is available.
func NewConsumerService(
	pubSub message.Subscriber,
	topicName string,
	jobs *memory.UploadJobRepository,
	delivery ProgressDelivery,
	eventPub EventPublisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		jobs:      jobs,
		delivery:  delivery,
		events:    eventPub,
		mapper:    mapper.NewUploadJobMapper(),
		logger:    log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// apply folds one event into the job. Events at or below the job's sequence
// are stale and leave it untouched.
func apply(job *entity.UploadJob, msg dto.UploadEventMessage) bool {
	if msg.Seq <= job.Seq || job.Status.Terminal() {
		return false
	}
	job.Seq = msg.Seq

	switch msg.Kind {
	case UploadKindStarted:
		job.Status = entity.UploadJobRunning
	case UploadKindProgress:
		job.Status = entity.UploadJobRunning
		if msg.Progress != nil {
			job.Progress = *msg.Progress
		}
	default:
		job.Status = entity.UploadJobStatus(msg.Kind)
		job.Error = msg.Error
		job.ErrorKind = msg.ErrorKind
		if msg.StoreName != "" {
			job.StoreName = msg.StoreName
		}
		if msg.Files != nil {
			job.Files = msg.Files
		}
		if job.Status == entity.UploadJobSucceeded {
			job.Progress.Percent = 100
		}
	}
	return true
}

func lifecycleEvent(status entity.UploadJobStatus, kind string) (string, bool) {
	if kind == UploadKindStarted {
		return events.UploadStarted, true
	}
	switch status {
	case entity.UploadJobSucceeded:
		return events.UploadCompleted, true
	case entity.UploadJobPartial:
		return events.UploadPartial, true
	case entity.UploadJobFailed:
		return events.UploadFailed, true
	}
	return "", false
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.UploadEventMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("UploadRelay", "Failed to unmarshal message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	job, err := cs.jobs.Update(payload.JobId, func(job *entity.UploadJob) bool {
		return apply(job, payload)
	})
	if err != nil {
		if errors.Is(err, memory.ErrJobNotFound) {
			cs.logger.Warn("UploadRelay", "Event for unknown job", map[string]interface{}{"job_id": payload.JobId})
		}
		msg.Ack()
		return
	}
	if job == nil {
		cs.logger.Debug("UploadRelay", "Dropped stale event", map[string]interface{}{
			"job_id": payload.JobId,
			"seq":    payload.Seq,
		})
		msg.Ack()
		return
	}

	res := cs.mapper.ToResponse(job)
	if job.Status.Terminal() {
		cs.delivery.Send(job.UserId, MessageUploadFinished, res)
	} else {
		cs.delivery.Send(job.UserId, MessageUploadProgress, res)
	}

	if eventType, ok := lifecycleEvent(job.Status, payload.Kind); ok && cs.events != nil {
		evt := events.NewUploadEvent(eventType, job.Id.String(), job.UserId.String(), map[string]interface{}{
			"store":      job.StoreRef,
			"store_name": job.StoreName,
			"status":     string(job.Status),
			"files":      res.Files,
			"error":      job.Error,
		})
		if err := cs.events.Publish(ctx, evt); err != nil {
			cs.logger.Warn("UploadRelay", "Failed to publish lifecycle event", map[string]interface{}{
				"job_id": job.Id,
				"event":  eventType,
				"error":  err.Error(),
			})
		}
	}

	msg.Ack()
}
