package dynamodb

import (
	stderrors "errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/bbthechange/hangoutsBackend-sub012/pkg/errors"
)

// translateError maps DynamoDB failures onto the application taxonomy. A
// failed condition check is an optimistic-lock conflict; everything else is
// a repository failure.
func translateError(operation string, err error) error {
	if err == nil {
		return nil
	}

	var conditionFailed *types.ConditionalCheckFailedException
	if stderrors.As(err, &conditionFailed) {
		return errors.NewConflictError("version check failed").WithCause(err)
	}

	var canceled *types.TransactionCanceledException
	if stderrors.As(err, &canceled) {
		for _, reason := range canceled.CancellationReasons {
			if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
				return errors.NewConflictError("transactional version check failed").WithCause(err)
			}
		}
	}

	return errors.NewRepositoryError(operation, err)
}
