package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/caretaker-api/internal/domain"
)

// EntryRepo stores the append-only emotion log. PK: session_id, SK: entry_id.
// Entries are never updated or deleted.
type EntryRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewEntryRepo(client *dynamodb.Client, tableName string) *EntryRepo {
	return &EntryRepo{client: client, tableName: tableName}
}

func (r *EntryRepo) Put(ctx context.Context, e *domain.EmotionEntry) error {
	item, err := attributevalue.MarshalMap(e)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// ListBySession returns the session's entries newest-first.
func (r *EntryRepo) ListBySession(ctx context.Context, sessionID string) ([]domain.EmotionEntry, error) {
	var entries []domain.EmotionEntry
	if err := queryByPartition(ctx, r.client, r.tableName, "session_id", sessionID, true, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
