package domain

import (
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Payload is the opaque structured data attached to a notification.
// At the storage boundary it is serialized as a single JSON string so the
// record never depends on the shape of caller data.
type Payload map[string]any

// MarshalDynamoDBAttributeValue implements attributevalue.Marshaler.
func (p Payload) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	if len(p) == 0 {
		return &types.AttributeValueMemberS{Value: "{}"}, nil
	}
	b, err := json.Marshal(map[string]any(p))
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return &types.AttributeValueMemberS{Value: string(b)}, nil
}

// UnmarshalDynamoDBAttributeValue implements attributevalue.Unmarshaler.
func (p *Payload) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	s, ok := av.(*types.AttributeValueMemberS)
	if !ok || s.Value == "" {
		*p = Payload{}
		return nil
	}
	m := map[string]any{}
	if err := json.Unmarshal([]byte(s.Value), &m); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	*p = m
	return nil
}

// Clone returns a shallow copy that is safe to extend.
func (p Payload) Clone() Payload {
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
