package streams

import (
	"errors"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var errNoImage = errors.New("stream record has no new image")

// UnmarshalNewImage decodes the NewImage of a stream record with the same
// dynamodbav tags the store writes with.
func UnmarshalNewImage[T any](record events.DynamoDBEventRecord) (T, error) {
	var out T
	if record.Change.NewImage == nil {
		return out, errNoImage
	}

	item, err := imageToItem(record.Change.NewImage)
	if err != nil {
		return out, err
	}
	if err := attributevalue.UnmarshalMap(item, &out); err != nil {
		return out, fmt.Errorf("decode stream image: %w", err)
	}
	return out, nil
}

// The Lambda event types and the SDK types describe the same wire values
// but share no code, so images are copied across field by field.
func imageToItem(image map[string]events.DynamoDBAttributeValue) (map[string]types.AttributeValue, error) {
	item := make(map[string]types.AttributeValue, len(image))
	for name, value := range image {
		converted, err := toAttributeValue(value)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", name, err)
		}
		item[name] = converted
	}
	return item, nil
}

func toAttributeValue(v events.DynamoDBAttributeValue) (types.AttributeValue, error) {
	switch v.DataType() {
	case events.DataTypeString:
		return &types.AttributeValueMemberS{Value: v.String()}, nil
	case events.DataTypeNumber:
		return &types.AttributeValueMemberN{Value: v.Number()}, nil
	case events.DataTypeBinary:
		return &types.AttributeValueMemberB{Value: v.Binary()}, nil
	case events.DataTypeBoolean:
		return &types.AttributeValueMemberBOOL{Value: v.Boolean()}, nil
	case events.DataTypeNull:
		return &types.AttributeValueMemberNULL{Value: true}, nil
	case events.DataTypeStringSet:
		return &types.AttributeValueMemberSS{Value: v.StringSet()}, nil
	case events.DataTypeNumberSet:
		return &types.AttributeValueMemberNS{Value: v.NumberSet()}, nil
	case events.DataTypeBinarySet:
		return &types.AttributeValueMemberBS{Value: v.BinarySet()}, nil
	case events.DataTypeMap:
		m, err := imageToItem(v.Map())
		if err != nil {
			return nil, err
		}
		return &types.AttributeValueMemberM{Value: m}, nil
	case events.DataTypeList:
		list := make([]types.AttributeValue, 0, len(v.List()))
		for i, elem := range v.List() {
			converted, err := toAttributeValue(elem)
			if err != nil {
				return nil, fmt.Errorf("list index %d: %w", i, err)
			}
			list = append(list, converted)
		}
		return &types.AttributeValueMemberL{Value: list}, nil
	default:
		return nil, fmt.Errorf("unsupported attribute type %v", v.DataType())
	}
}
