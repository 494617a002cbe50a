package dynamo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/uninotify/notification-api/internal/domain"
)

// NotificationRepo provides typed DynamoDB operations for the notifications table.
type NotificationRepo struct {
	client    api
	tableName string
}

func NewNotificationRepo(client *dynamodb.Client, tableName string) *NotificationRepo {
	return &NotificationRepo{client: client, tableName: tableName}
}

func (r *NotificationRepo) Put(ctx context.Context, n *domain.Notification) error {
	item, err := attributevalue.MarshalMap(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *NotificationRepo) Get(ctx context.Context, notificationID string) (*domain.Notification, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(fieldNotificationID, notificationID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("notification not found: %w", domain.ErrNotFound)
	}
	var n domain.Notification
	if err := attributevalue.UnmarshalMap(out.Item, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// MarkRead flips is_read only while it is still false, so read_at is written
// at most once. It reports whether this call made the change.
func (r *NotificationRepo) MarkRead(ctx context.Context, notificationID string, at time.Time) (bool, error) {
	ue, err := buildUpdateExpr(map[string]interface{}{fieldIsRead: true, fieldReadAt: at})
	if err != nil {
		return false, err
	}
	ue.Names["#nid"] = fieldNotificationID
	ue.Names["#read"] = fieldIsRead
	ue.Values[":unread"] = &types.AttributeValueMemberBOOL{Value: false}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldNotificationID, notificationID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(#nid) AND #read = :unread"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if isConditionFailed(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MarkAllRead stamps every unread notification of userID with the same
// read_at and returns how many rows it flipped.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID string, at time.Time) (int, error) {
	items, err := queryAll(ctx, r.client, r.userQuery(userID, domain.NotificationFilter{UnreadOnly: true}, true))
	if err != nil {
		return 0, err
	}
	count := 0
	for _, item := range items {
		idAttr, ok := item[fieldNotificationID].(*types.AttributeValueMemberS)
		if !ok {
			continue
		}
		changed, err := r.MarkRead(ctx, idAttr.Value, at)
		if err != nil {
			return count, err
		}
		if changed {
			count++
		}
	}
	return count, nil
}

func (r *NotificationRepo) Delete(ctx context.Context, notificationID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      strKey(fieldNotificationID, notificationID),
		ConditionExpression:      aws.String("attribute_exists(#nid)"),
		ExpressionAttributeNames: map[string]string{"#nid": fieldNotificationID},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("notification not found: %w", domain.ErrNotFound)
	}
	return err
}

// List returns one page of a user's notifications, newest first, and the
// total number matching the filter. The user index has no offset support, so
// the matching rows are read in full and sliced here.
func (r *NotificationRepo) List(ctx context.Context, userID string, f domain.NotificationFilter, offset, limit int) ([]domain.Notification, int, error) {
	items, err := queryAll(ctx, r.client, r.userQuery(userID, f, false))
	if err != nil {
		return nil, 0, err
	}
	total := len(items)
	if offset < 0 || offset >= total {
		return []domain.Notification{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	notifications := []domain.Notification{}
	if err := attributevalue.UnmarshalListOfMaps(items[offset:end], &notifications); err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

func (r *NotificationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	return countAll(ctx, r.client, r.userQuery(userID, domain.NotificationFilter{UnreadOnly: true}, false))
}

// userQuery targets the user index in descending ULID order. keysOnly limits
// the projection to the primary key.
func (r *NotificationRepo) userQuery(userID string, f domain.NotificationFilter, keysOnly bool) *dynamodb.QueryInput {
	in := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(indexNotificationsByUser),
		KeyConditionExpression: aws.String("#uid = :uid"),
		ScanIndexForward:       aws.Bool(false),
		ExpressionAttributeNames: map[string]string{
			"#uid": fieldUserID,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
	}
	var filters []string
	if f.UnreadOnly {
		in.ExpressionAttributeNames["#read"] = fieldIsRead
		in.ExpressionAttributeValues[":unread"] = &types.AttributeValueMemberBOOL{Value: false}
		filters = append(filters, "#read = :unread")
	}
	if f.Type != "" {
		in.ExpressionAttributeNames["#type"] = fieldNotificationType
		in.ExpressionAttributeValues[":type"] = &types.AttributeValueMemberS{Value: f.Type}
		filters = append(filters, "#type = :type")
	}
	if len(filters) > 0 {
		in.FilterExpression = aws.String(strings.Join(filters, " AND "))
	}
	if keysOnly {
		in.ProjectionExpression = aws.String("#nid")
		in.ExpressionAttributeNames["#nid"] = fieldNotificationID
	}
	return in
}
