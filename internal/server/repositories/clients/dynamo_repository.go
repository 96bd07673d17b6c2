package clients

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/gatehouse-auth/gatehouse/internal/common"
	"github.com/gatehouse-auth/gatehouse/internal/server/models"
	"github.com/gatehouse-auth/gatehouse/internal/server/repositories/dynamo"
)

type DynamoRepository struct {
	client *dynamo.Client
}

func NewDynamoRepository(client *dynamo.Client) *DynamoRepository {
	return &DynamoRepository{client: client}
}

func (r *DynamoRepository) Create(ctx context.Context, client *models.Client) error {
	item, err := client.Item()
	if err != nil {
		return fmt.Errorf("marshaling client: %w", err)
	}
	return dynamo.WithRetry(ctx, func() error {
		_, err := r.client.DB().PutItem(ctx, &dynamodb.PutItemInput{
			TableName:           aws.String(r.client.Table()),
			Item:                item,
			ConditionExpression: aws.String("attribute_not_exists(pk)"),
		})
		return dynamo.Classify(err)
	})
}

func (r *DynamoRepository) Get(ctx context.Context, clientID string) (*models.Client, error) {
	var out *dynamodb.GetItemOutput
	err := dynamo.WithRetry(ctx, func() error {
		var err error
		out, err = r.client.DB().GetItem(ctx, &dynamodb.GetItemInput{
			TableName: aws.String(r.client.Table()),
			Key: map[string]types.AttributeValue{
				"pk": &types.AttributeValueMemberS{Value: models.ClientPK(clientID)},
			},
		})
		return dynamo.Classify(err)
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, common.ErrNotFound
	}
	client, err := models.ClientFromItem(out.Item)
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *DynamoRepository) Update(ctx context.Context, client *models.Client) error {
	item, err := client.Item()
	if err != nil {
		return fmt.Errorf("marshaling client: %w", err)
	}
	return dynamo.WithRetry(ctx, func() error {
		_, err := r.client.DB().PutItem(ctx, &dynamodb.PutItemInput{
			TableName:           aws.String(r.client.Table()),
			Item:                item,
			ConditionExpression: aws.String("attribute_exists(pk)"),
		})
		err = dynamo.Classify(err)
		if errors.Is(err, common.ErrConflict) {
			return common.ErrNotFound
		}
		return err
	})
}
