package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/go-resty/resty/v2"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/htx-dental-leads/internal/leads"
)

// EmailSink mails the owner a summary of each lead.
type EmailSink struct {
	sender   EmailSender
	to       string
	siteName string
}

// NewEmailSink panics without a sender; an empty recipient is a config error.
func NewEmailSink(sender EmailSender, to, siteName string) *EmailSink {
	if sender == nil {
		panic("notify: email sender required")
	}
	if to == "" {
		panic("notify: owner email required")
	}
	return &EmailSink{sender: sender, to: to, siteName: siteName}
}

func (s *EmailSink) Name() string { return "email" }

func (s *EmailSink) Deliver(ctx context.Context, n Notification) error {
	return s.sender.Send(ctx, LeadEmail(s.siteName, s.to, n))
}

// SheetsSink appends a row through a spreadsheet webhook (an Apps Script
// endpoint or similar) that accepts the flat lead JSON.
type SheetsSink struct {
	client *resty.Client
	url    string
}

// NewSheetsSink builds a sink posting to url. Retries are disabled; delivery
// is at most once.
func NewSheetsSink(url string, timeout time.Duration) *SheetsSink {
	if url == "" {
		panic("notify: sheets webhook url required")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &SheetsSink{client: client, url: url}
}

func (s *SheetsSink) Name() string { return "sheets" }

func (s *SheetsSink) Deliver(ctx context.Context, n Notification) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(Payload(n)).
		Post(s.url)
	if err != nil {
		return fmt.Errorf("notify: sheets webhook: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("notify: sheets webhook returned status %d", resp.StatusCode())
	}
	return nil
}

type sqsAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// QueueSink hands leads to a CRM import queue.
type QueueSink struct {
	client   sqsAPI
	queueURL string
}

func NewQueueSink(client sqsAPI, queueURL string) *QueueSink {
	if client == nil {
		panic("notify: SQS client cannot be nil")
	}
	if queueURL == "" {
		panic("notify: SQS queueURL cannot be empty")
	}
	return &QueueSink{client: client, queueURL: queueURL}
}

func (q *QueueSink) Name() string { return "queue" }

func (q *QueueSink) Deliver(ctx context.Context, n Notification) error {
	body, err := json.Marshal(Payload(n))
	if err != nil {
		return fmt.Errorf("notify: encode lead: %w", err)
	}
	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(q.queueURL),
		MessageBody: aws.String(string(body)),
	}
	if _, err := q.client.SendMessage(ctx, input); err != nil {
		return fmt.Errorf("notify: failed to send SQS message: %w", err)
	}
	return nil
}

// StreamSink appends each lead to a Redis stream for downstream consumers.
type StreamSink struct {
	client redis.Cmdable
	stream string
	maxLen int64
}

// NewStreamSink caps the stream at roughly maxLen entries when maxLen > 0.
func NewStreamSink(client redis.Cmdable, stream string, maxLen int64) *StreamSink {
	if client == nil {
		panic("notify: redis client required")
	}
	if stream == "" {
		stream = "leads:inbound"
	}
	return &StreamSink{client: client, stream: stream, maxLen: maxLen}
}

func (s *StreamSink) Name() string { return "stream" }

func (s *StreamSink) Deliver(ctx context.Context, n Notification) error {
	data, err := json.Marshal(Payload(n))
	if err != nil {
		return fmt.Errorf("notify: encode lead: %w", err)
	}
	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{
			"lead_id": n.Lead.ID,
			"source":  string(n.Lead.Source),
			"data":    string(data),
		},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("notify: stream append: %w", err)
	}
	return nil
}

// RecordSink stores the lead through a repository.
type RecordSink struct {
	repo leads.Repository
}

func NewRecordSink(repo leads.Repository) *RecordSink {
	if repo == nil {
		panic("notify: lead repository required")
	}
	return &RecordSink{repo: repo}
}

func (s *RecordSink) Name() string { return "record" }

func (s *RecordSink) Deliver(ctx context.Context, n Notification) error {
	return s.repo.Save(ctx, n.Lead)
}

var errSinkPanic = errors.New("notify: sink panicked")

var (
	_ Sink = (*EmailSink)(nil)
	_ Sink = (*SheetsSink)(nil)
	_ Sink = (*QueueSink)(nil)
	_ Sink = (*StreamSink)(nil)
	_ Sink = (*RecordSink)(nil)
	_ Sink = SinkFunc{}
)
