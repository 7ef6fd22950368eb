package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/caretaker-api/internal/domain"
)

// ContactRepo stores emergency contacts in both lifecycle stages.
// PK: session_id, SK: contact_id; the stage attribute separates pending from
// verified, so promotion is a single overwrite under the same key.
type ContactRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewContactRepo(client *dynamodb.Client, tableName string) *ContactRepo {
	return &ContactRepo{client: client, tableName: tableName}
}

func (r *ContactRepo) Put(ctx context.Context, c *domain.Contact) error {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal contact: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *ContactRepo) Get(ctx context.Context, sessionID, contactID string) (*domain.Contact, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("session_id", sessionID, "contact_id", contactID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("contact not found: %w", domain.ErrNotFound)
	}
	var c domain.Contact
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ContactRepo) Delete(ctx context.Context, sessionID, contactID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("session_id", sessionID, "contact_id", contactID),
	})
	return err
}

func (r *ContactRepo) ListBySession(ctx context.Context, sessionID string) ([]domain.Contact, error) {
	var contacts []domain.Contact
	if err := queryByPartition(ctx, r.client, r.tableName, "session_id", sessionID, false, &contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}
