package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/caretaker-api/internal/domain"
)

// AlertRepo stores the append-only alert log. PK: session_id, SK: alert_id.
type AlertRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewAlertRepo(client *dynamodb.Client, tableName string) *AlertRepo {
	return &AlertRepo{client: client, tableName: tableName}
}

func (r *AlertRepo) Append(ctx context.Context, a *domain.Alert) error {
	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// ListBySession returns the session's alerts newest-first.
func (r *AlertRepo) ListBySession(ctx context.Context, sessionID string) ([]domain.Alert, error) {
	var alerts []domain.Alert
	if err := queryByPartition(ctx, r.client, r.tableName, "session_id", sessionID, true, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}
