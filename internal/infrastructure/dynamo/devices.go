package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/uninotify/notification-api/internal/domain"
)

// DeviceRepo provides typed DynamoDB operations for the device token table.
// The push token is the partition key, so one token maps to at most one row.
type DeviceRepo struct {
	client    api
	tableName string
}

func NewDeviceRepo(client *dynamodb.Client, tableName string) *DeviceRepo {
	return &DeviceRepo{client: client, tableName: tableName}
}

func (r *DeviceRepo) GetByToken(ctx context.Context, token string) (*domain.DeviceRegistration, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(fieldToken, token),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("device not found: %w", domain.ErrNotFound)
	}
	var d domain.DeviceRegistration
	if err := attributevalue.UnmarshalMap(out.Item, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DeviceRepo) Put(ctx context.Context, d *domain.DeviceRegistration) error {
	item, err := attributevalue.MarshalMap(d)
	if err != nil {
		return fmt.Errorf("marshal device: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// ListByUser returns the user's registrations in first-registration order
// (device ids are ULIDs and form the index range key).
func (r *DeviceRepo) ListByUser(ctx context.Context, userID string) ([]domain.DeviceRegistration, error) {
	items, err := queryAll(ctx, r.client, &dynamodb.QueryInput{
		TableName:                aws.String(r.tableName),
		IndexName:                aws.String(indexDevicesByUser),
		KeyConditionExpression:   aws.String("#uid = :uid"),
		ExpressionAttributeNames: map[string]string{"#uid": fieldUserID},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, err
	}
	devices := []domain.DeviceRegistration{}
	if err := attributevalue.UnmarshalListOfMaps(items, &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// Delete removes the row for token. With a non-empty ownerID the delete only
// applies while that user still owns the token.
func (r *DeviceRepo) Delete(ctx context.Context, token, ownerID string) error {
	in := &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(fieldToken, token),
	}
	if ownerID != "" {
		in.ConditionExpression = aws.String("attribute_not_exists(#tok) OR #uid = :uid")
		in.ExpressionAttributeNames = map[string]string{"#tok": fieldToken, "#uid": fieldUserID}
		in.ExpressionAttributeValues = map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: ownerID},
		}
	}
	_, err := r.client.DeleteItem(ctx, in)
	if isConditionFailed(err) {
		return fmt.Errorf("device belongs to another user: %w", domain.ErrForbidden)
	}
	return err
}

// DeleteByUser removes every token the user owns and returns how many rows
// were deleted. Tokens reassigned to someone else mid-way are left alone.
func (r *DeviceRepo) DeleteByUser(ctx context.Context, userID string) (int, error) {
	devices, err := r.ListByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, d := range devices {
		out, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName:                aws.String(r.tableName),
			Key:                      strKey(fieldToken, d.Token),
			ConditionExpression:      aws.String("#uid = :uid"),
			ExpressionAttributeNames: map[string]string{"#uid": fieldUserID},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":uid": &types.AttributeValueMemberS{Value: userID},
			},
			ReturnValues: types.ReturnValueAllOld,
		})
		if isConditionFailed(err) {
			continue
		}
		if err != nil {
			return n, err
		}
		if len(out.Attributes) > 0 {
			n++
		}
	}
	return n, nil
}
