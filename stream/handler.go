package stream

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"

	"github.com/jacentio/canopy/keypath"
	"github.com/jacentio/canopy/store"
)

// Handler applies DynamoDB stream events to the children of a location in
// a store. Each record's key names the child it writes.
type Handler struct {
	root   *store.Reference
	logger *slog.Logger
}

// NewHandler creates a new stream handler writing below path.
func NewHandler(s *store.Store, path string, logger *slog.Logger) (*Handler, error) {
	root, err := s.Ref(path)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		root:   root,
		logger: logger,
	}, nil
}

// HandleEvent applies every record of event in order. It stops at the first
// record that fails; records before it stay applied.
// This function is designed to be used as an AWS Lambda handler.
func (h *Handler) HandleEvent(ctx context.Context, event events.DynamoDBEvent) error {
	for _, record := range event.Records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := h.processRecord(record); err != nil {
			h.logger.Error("failed to process record",
				"eventID", record.EventID,
				"error", err,
			)
			return err
		}
	}
	return nil
}

// processRecord applies a single stream record.
func (h *Handler) processRecord(record events.DynamoDBEventRecord) error {
	key := getStringAttr(record.Change.Keys, KeyAttribute)
	if key == "" {
		return ErrMissingKey
	}
	if !keypath.IsValidKey(key, false) {
		return fmt.Errorf("%w: %q", keypath.ErrInvalidKey, key)
	}
	child, err := h.root.Child(key)
	if err != nil {
		return err
	}

	switch record.EventName {
	case string(events.DynamoDBOperationTypeInsert), string(events.DynamoDBOperationTypeModify):
		err = h.apply(child, record.Change.NewImage)
	case string(events.DynamoDBOperationTypeRemove):
		err = child.Remove()
	default:
		h.logger.Debug("skipping record",
			"eventID", record.EventID,
			"eventName", record.EventName,
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s %s: %w", record.EventName, child.Path(), err)
	}

	recordsApplied.WithLabelValues(record.EventName).Inc()
	h.logger.Debug("applied record",
		"eventID", record.EventID,
		"eventName", record.EventName,
		"path", child.Path(),
	)
	return nil
}

// apply writes an image to ref: a scalar image sets the value, any other
// image replaces the child with the item it describes.
func (h *Handler) apply(ref *store.Reference, image map[string]events.DynamoDBAttributeValue) error {
	if v, ok := image[ValueAttribute]; ok && len(image) == 1 {
		val, err := scalarFromAttribute(v)
		if err != nil {
			return err
		}
		return ref.Set(val)
	}
	return ref.SetItem(ConvertImage(image))
}
