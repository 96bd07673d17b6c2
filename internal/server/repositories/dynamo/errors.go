package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/cenkalti/backoff/v5"

	"github.com/gatehouse-auth/gatehouse/internal/common"
)

// Classify folds a DynamoDB error into the store error kinds. A failed
// conditional write means the key already existed. Throttling, transport
// failures, and server-side errors are retryable; everything else is
// terminal.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var condFailed *types.ConditionalCheckFailedException
	if errors.As(err, &condFailed) {
		return common.ErrConflict
	}

	var notFound *types.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ProvisionedThroughputExceededException",
			"ThrottlingException",
			"RequestLimitExceeded",
			"InternalServerError",
			"ServiceUnavailable":
			return fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
		}
		return err
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	// Connection-level failures surface as non-API errors.
	return fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
}

const maxAttempts = 4

// WithRetry runs op under exponential backoff, retrying only errors that
// Classify marked as store unavailability.
func WithRetry(ctx context.Context, op func() error) error {
	wrapped := func() (struct{}, error) {
		err := op()
		if err == nil {
			return struct{}{}, nil
		}
		if errors.Is(err, common.ErrStoreUnavailable) {
			return struct{}{}, err
		}
		return struct{}{}, backoff.Permanent(err)
	}

	_, err := backoff.Retry(ctx, wrapped,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(maxAttempts),
	)
	return err
}
