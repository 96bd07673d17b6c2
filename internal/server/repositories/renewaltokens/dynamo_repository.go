package renewaltokens

import (
	"context"
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

func tokenKey(clientID string, hashedToken []byte) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pk": &types.AttributeValueMemberS{Value: models.RenewalTokenPK(clientID, hashedToken)},
	}
}

func (r *DynamoRepository) Create(ctx context.Context, token *models.RenewalToken) error {
	item, err := token.Item()
	if err != nil {
		return fmt.Errorf("marshaling renewal token: %w", err)
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

// Consume deletes with ReturnValues ALL_OLD. The delete and the read are one
// operation, so two racing redeemers cannot both receive the record.
func (r *DynamoRepository) Consume(ctx context.Context, clientID string, hashedToken []byte) (*models.RenewalToken, error) {
	var out *dynamodb.DeleteItemOutput
	err := dynamo.WithRetry(ctx, func() error {
		var err error
		out, err = r.client.DB().DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName:    aws.String(r.client.Table()),
			Key:          tokenKey(clientID, hashedToken),
			ReturnValues: types.ReturnValueAllOld,
		})
		return dynamo.Classify(err)
	})
	if err != nil {
		return nil, err
	}
	if out.Attributes == nil {
		return nil, common.ErrNotFound
	}
	token, err := models.RenewalTokenFromItem(out.Attributes)
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *DynamoRepository) ListByUser(ctx context.Context, userID string) ([]models.RenewalToken, error) {
	var tokens []models.RenewalToken
	var startKey map[string]types.AttributeValue

	for {
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
					":prefix": &types.AttributeValueMemberS{Value: "RT#"},
				},
				ExclusiveStartKey: startKey,
			})
			return dynamo.Classify(err)
		})
		if err != nil {
			return nil, err
		}

		for _, item := range out.Items {
			token, err := models.RenewalTokenFromItem(item)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token)
		}

		if out.LastEvaluatedKey == nil {
			return tokens, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

func (r *DynamoRepository) Delete(ctx context.Context, clientID string, hashedToken []byte) error {
	return dynamo.WithRetry(ctx, func() error {
		_, err := r.client.DB().DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(r.client.Table()),
			Key:       tokenKey(clientID, hashedToken),
		})
		return dynamo.Classify(err)
	})
}
