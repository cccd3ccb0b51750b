package store

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ExportItem converts the snapshot's data into a DynamoDB item. Only maps
// can be exported; scalars and missing data fail with ErrNotAnItem.
func ExportItem(snap Snapshot) (map[string]types.AttributeValue, error) {
	val, ok := snap.Val().(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotAnItem, snap.Ref().Path())
	}
	item, err := attributevalue.MarshalMap(val)
	if err != nil {
		return nil, fmt.Errorf("marshal item: %w", err)
	}
	return item, nil
}

// SetItem writes a DynamoDB item at the location. Lists become maps keyed
// by index and numbers become float64, as with any other write.
func (r *Reference) SetItem(item map[string]types.AttributeValue) error {
	var val map[string]any
	if err := attributevalue.UnmarshalMap(item, &val); err != nil {
		return fmt.Errorf("unmarshal item: %w", err)
	}
	return r.Set(val)
}
