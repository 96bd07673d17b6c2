// Package dynamo holds the shared DynamoDB plumbing used by the entity
// repositories: client construction, the single-table layout constants,
// error classification into the store error kinds, and the retry policy
// for transient failures.
package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// UserIDIndex is the secondary index keyed on the user_id attribute. It
// serves reverse lookups: credential record by user id, and the renewal
// tokens belonging to a user.
const UserIDIndex = "user_id-index"

type Config struct {
	Table  string
	Region string

	// Endpoint overrides the service URL, for pointing at a local
	// DynamoDB. When set, static throwaway credentials are used.
	Endpoint string
}

// Client bundles the service client with the table it operates on.
type Client struct {
	db    *dynamodb.Client
	table string
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Table == "" {
		return nil, fmt.Errorf("no table configured")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("local", "local", "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	db := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &Client{db: db, table: cfg.Table}, nil
}

// NewClientFromAPI wraps an existing service client. Used by tests running
// against DynamoDB Local.
func NewClientFromAPI(db *dynamodb.Client, table string) *Client {
	return &Client{db: db, table: table}
}

func (c *Client) DB() *dynamodb.Client { return c.db }
func (c *Client) Table() string        { return c.table }
