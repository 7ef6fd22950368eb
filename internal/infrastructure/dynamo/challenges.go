package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/caretaker-api/internal/domain"
)

// ChallengeRepo stores OTP challenges. PK: session_id, SK: contact_id. The
// key shape enforces the one-challenge-per-contact invariant: a reissue
// overwrites, never accumulates.
type ChallengeRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewChallengeRepo(client *dynamodb.Client, tableName string) *ChallengeRepo {
	return &ChallengeRepo{client: client, tableName: tableName}
}

func (r *ChallengeRepo) Put(ctx context.Context, ch *domain.OtpChallenge) error {
	item, err := attributevalue.MarshalMap(ch)
	if err != nil {
		return fmt.Errorf("marshal challenge: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *ChallengeRepo) Get(ctx context.Context, sessionID, contactID string) (*domain.OtpChallenge, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("session_id", sessionID, "contact_id", contactID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("challenge not found: %w", domain.ErrNotFound)
	}
	var ch domain.OtpChallenge
	if err := attributevalue.UnmarshalMap(out.Item, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

func (r *ChallengeRepo) Delete(ctx context.Context, sessionID, contactID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("session_id", sessionID, "contact_id", contactID),
	})
	return err
}
