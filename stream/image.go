package stream

import (
	"fmt"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/canopy/tree"
)

const (
	// KeyAttribute holds the child key in the Keys of every record.
	KeyAttribute = "key"

	// ValueAttribute holds a scalar child. Tree keys can never contain a
	// dot, so it cannot collide with a field of a map child.
	ValueAttribute = ".value"
)

// ImageFromNode renders a child as a stream image. A map child becomes one
// attribute per field; a scalar is stored under ValueAttribute. nil yields
// a nil image.
func ImageFromNode(n tree.Node) map[string]events.DynamoDBAttributeValue {
	if n == nil {
		return nil
	}
	m, ok := n.(tree.Map)
	if !ok {
		return map[string]events.DynamoDBAttributeValue{ValueAttribute: attributeFromNode(n)}
	}
	image := make(map[string]events.DynamoDBAttributeValue, len(m))
	for k, v := range m {
		image[k] = attributeFromNode(v)
	}
	return image
}

func attributeFromNode(n tree.Node) events.DynamoDBAttributeValue {
	switch v := n.(type) {
	case bool:
		return events.NewBooleanAttribute(v)
	case float64:
		return events.NewNumberAttribute(strconv.FormatFloat(v, 'f', -1, 64))
	case string:
		return events.NewStringAttribute(v)
	case tree.Map:
		m := make(map[string]events.DynamoDBAttributeValue, len(v))
		for k, child := range v {
			m[k] = attributeFromNode(child)
		}
		return events.NewMapAttribute(m)
	}
	return events.NewNullAttribute()
}

// ConvertImage converts a stream image into a DynamoDB item.
func ConvertImage(image map[string]events.DynamoDBAttributeValue) map[string]types.AttributeValue {
	if image == nil {
		return nil
	}
	result := make(map[string]types.AttributeValue, len(image))
	for k, v := range image {
		result[k] = convertAttribute(v)
	}
	return result
}

func convertAttribute(v events.DynamoDBAttributeValue) types.AttributeValue {
	switch v.DataType() {
	case events.DataTypeString:
		return &types.AttributeValueMemberS{Value: v.String()}
	case events.DataTypeNumber:
		return &types.AttributeValueMemberN{Value: v.Number()}
	case events.DataTypeBinary:
		return &types.AttributeValueMemberB{Value: v.Binary()}
	case events.DataTypeBoolean:
		return &types.AttributeValueMemberBOOL{Value: v.Boolean()}
	case events.DataTypeStringSet:
		return &types.AttributeValueMemberSS{Value: v.StringSet()}
	case events.DataTypeNumberSet:
		return &types.AttributeValueMemberNS{Value: v.NumberSet()}
	case events.DataTypeBinarySet:
		return &types.AttributeValueMemberBS{Value: v.BinarySet()}
	case events.DataTypeMap:
		return &types.AttributeValueMemberM{Value: ConvertImage(v.Map())}
	case events.DataTypeList:
		list := make([]types.AttributeValue, 0, len(v.List()))
		for _, item := range v.List() {
			list = append(list, convertAttribute(item))
		}
		return &types.AttributeValueMemberL{Value: list}
	}
	return &types.AttributeValueMemberNULL{Value: true}
}

// scalarFromAttribute converts the attribute of a scalar child.
func scalarFromAttribute(v events.DynamoDBAttributeValue) (any, error) {
	switch v.DataType() {
	case events.DataTypeNull:
		return nil, nil
	case events.DataTypeBoolean:
		return v.Boolean(), nil
	case events.DataTypeString:
		return v.String(), nil
	case events.DataTypeNumber:
		f, err := strconv.ParseFloat(v.Number(), 64)
		if err != nil {
			return nil, fmt.Errorf("parse number %q: %w", v.Number(), err)
		}
		return f, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnsupportedAttribute, v.DataType())
}

// getStringAttr extracts a string attribute from a DynamoDB stream image.
func getStringAttr(image map[string]events.DynamoDBAttributeValue, key string) string {
	if v, ok := image[key]; ok && v.DataType() == events.DataTypeString {
		return v.String()
	}
	return ""
}
