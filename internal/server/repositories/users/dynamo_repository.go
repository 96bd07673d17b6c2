package users

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

func pkKey(pk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pk": &types.AttributeValueMemberS{Value: pk},
	}
}

func (r *DynamoRepository) putNew(ctx context.Context, item map[string]types.AttributeValue) error {
	return dynamo.WithRetry(ctx, func() error {
		_, err := r.client.DB().PutItem(ctx, &dynamodb.PutItemInput{
			TableName:           aws.String(r.client.Table()),
			Item:                item,
			ConditionExpression: aws.String("attribute_not_exists(pk)"),
		})
		return dynamo.Classify(err)
	})
}

func (r *DynamoRepository) CreateUser(ctx context.Context, user *models.User) error {
	item, err := user.Item()
	if err != nil {
		return fmt.Errorf("marshaling user: %w", err)
	}
	return r.putNew(ctx, item)
}

func (r *DynamoRepository) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var out *dynamodb.GetItemOutput
	err := dynamo.WithRetry(ctx, func() error {
		var err error
		out, err = r.client.DB().GetItem(ctx, &dynamodb.GetItemInput{
			TableName: aws.String(r.client.Table()),
			Key:       pkKey(models.UserPK(userID)),
		})
		return dynamo.Classify(err)
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, common.ErrNotFound
	}
	user, err := models.UserFromItem(out.Item)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *DynamoRepository) CreateCredential(ctx context.Context, cred *models.UserCredential) error {
	item, err := cred.Item()
	if err != nil {
		return fmt.Errorf("marshaling credential: %w", err)
	}
	return r.putNew(ctx, item)
}

func (r *DynamoRepository) GetCredential(ctx context.Context, username string) (*models.UserCredential, error) {
	var out *dynamodb.GetItemOutput
	err := dynamo.WithRetry(ctx, func() error {
		var err error
		out, err = r.client.DB().GetItem(ctx, &dynamodb.GetItemInput{
			TableName: aws.String(r.client.Table()),
			Key:       pkKey(models.CredentialPK(username)),
		})
		return dynamo.Classify(err)
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, common.ErrNotFound
	}
	cred, err := models.UserCredentialFromItem(out.Item)
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *DynamoRepository) GetCredentialByUserID(ctx context.Context, userID string) (*models.UserCredential, error) {
	var out *dynamodb.QueryOutput
	err := dynamo.WithRetry(ctx, func() error {
		var err error
		out, err = r.client.DB().Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.client.Table()),
			IndexName:              aws.String(dynamo.UserIDIndex),
			KeyConditionExpression: aws.String("user_id = :uid"),
			FilterExpression:       aws.String("begins_with(pk, :prefix)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":uid":    &types.AttributeValueMemberS{Value: userID},
				":prefix": &types.AttributeValueMemberS{Value: models.CredentialPK("")},
			},
		})
		return dynamo.Classify(err)
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, common.ErrNotFound
	}
	cred, err := models.UserCredentialFromItem(out.Items[0])
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *DynamoRepository) UpdateCredential(ctx context.Context, cred *models.UserCredential) error {
	item, err := cred.Item()
	if err != nil {
		return fmt.Errorf("marshaling credential: %w", err)
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

func (r *DynamoRepository) DeleteCredential(ctx context.Context, username string) error {
	return dynamo.WithRetry(ctx, func() error {
		_, err := r.client.DB().DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(r.client.Table()),
			Key:       pkKey(models.CredentialPK(username)),
		})
		return dynamo.Classify(err)
	})
}
