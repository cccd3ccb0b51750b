// Package stream publishes store commits as DynamoDB Streams events and
// applies such events back to a store.
package stream

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"github.com/jacentio/canopy/keypath"
	"github.com/jacentio/canopy/reconcile"
	"github.com/jacentio/canopy/store"
	"github.com/jacentio/canopy/tree"
)

// EventSource is the EventSource of every published record.
const EventSource = "canopy"

// EventHandler consumes one batch of stream records. Handler.HandleEvent
// satisfies it.
type EventHandler func(ctx context.Context, event events.DynamoDBEvent) error

// Feed turns each commit below a location into one DynamoDB stream event,
// with one record per changed child of the location.
type Feed struct {
	store   *store.Store
	path    []string
	arn     string
	handler EventHandler
	logger  *slog.Logger

	now    func() time.Time
	seq    uint64
	cancel func()
}

// NewFeed subscribes to s and publishes changes below path to handler.
func NewFeed(s *store.Store, path string, handler EventHandler, logger *slog.Logger) (*Feed, error) {
	ref, err := s.Ref(path)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	f := &Feed{
		store:   s,
		path:    keypath.MustParse(path),
		arn:     ref.String(),
		handler: handler,
		logger:  logger,
		now:     time.Now,
	}
	f.cancel = s.Subscribe(f.publish)

	logger.Info("feed started", "path", ref.Path())
	return f, nil
}

// Close stops the feed. Commits after Close are not published.
func (f *Feed) Close() {
	f.cancel()
	f.logger.Info("feed stopped", "path", keypath.Join(f.path))
}

// publish is the store commit hook.
func (f *Feed) publish(c store.Commit) {
	records := f.Records(c)
	if len(records) == 0 {
		return
	}

	for _, r := range records {
		recordsPublished.WithLabelValues(r.EventName).Inc()
	}
	f.logger.Debug("publishing stream event",
		"path", keypath.Join(f.path),
		"operation", c.Operation,
		"records", len(records),
	)

	if err := f.handler(context.Background(), events.DynamoDBEvent{Records: records}); err != nil {
		publishErrors.Inc()
		f.logger.Error("failed to publish stream event",
			"path", keypath.Join(f.path),
			"records", len(records),
			"error", err,
		)
	}
}

// Records builds the stream records for a commit: one per changed child of
// the feed location, in lexical key order.
func (f *Feed) Records(c store.Commit) []events.DynamoDBEventRecord {
	changed := c.Changes.Lookup(f.path...)
	if changed == nil {
		return nil
	}

	prev := tree.Get(c.Prev, f.path...)
	next := tree.Get(c.Next, f.path...)

	var records []events.DynamoDBEventRecord
	for _, key := range changed.ChildKeys() {
		f.seq++
		records = append(records, events.DynamoDBEventRecord{
			EventID:        uuid.NewString(),
			EventName:      eventName(changed.Children[key].Type),
			EventSource:    EventSource,
			EventVersion:   "1.1",
			EventSourceArn: f.arn,
			Change: events.DynamoDBStreamRecord{
				ApproximateCreationDateTime: events.SecondsEpochTime{Time: f.now()},
				Keys: map[string]events.DynamoDBAttributeValue{
					KeyAttribute: events.NewStringAttribute(key),
				},
				OldImage:       ImageFromNode(tree.Get(prev, key)),
				NewImage:       ImageFromNode(tree.Get(next, key)),
				SequenceNumber: fmt.Sprintf("%021d", f.seq),
				StreamViewType: string(events.DynamoDBStreamViewTypeNewAndOldImages),
			},
		})
	}
	return records
}

func eventName(t reconcile.ChangeType) string {
	switch t {
	case reconcile.Added:
		return string(events.DynamoDBOperationTypeInsert)
	case reconcile.Removed:
		return string(events.DynamoDBOperationTypeRemove)
	}
	return string(events.DynamoDBOperationTypeModify)
}
