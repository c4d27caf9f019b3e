package ds

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/oklog/ulid/v2"
	pkgerrors "github.com/pkg/errors"

	"github.com/weegigs/wee-counter-go/we"
)

type ActionLogTableName string

type DynamoActionLog struct {
	db       *dynamodb.Client
	table    string
	revision *we.RevisionGenerator
}

func NewActionLog(client *dynamodb.Client, table ActionLogTableName) *DynamoActionLog {
	return &DynamoActionLog{db: client, table: string(table), revision: we.NewRevisionGenerator()}
}

func (ds *DynamoActionLog) Load(ctx context.Context, id we.SliceId) (we.History, error) {
	actions, err := ds.read(ctx, id)
	if err != nil {
		return we.History{}, err
	}

	return we.History{
		Id:       id,
		Revision: we.RevisionOf(actions),
		Actions:  actions,
	}, nil
}

func (ds *DynamoActionLog) Append(ctx context.Context, id we.SliceId, options we.AppendOptions, actions ...we.Action) error {
	if len(actions) == 0 {
		return we.NothingToAppend
	}

	return retry.Do(
		func() error {
			changes, err := ds.makeChangeSet(id, options, actions)
			if err != nil {
				return retry.Unrecoverable(err)
			}

			return ds.write(ctx, changes, options.ExpectedRevision)
		},
		retry.RetryIf(
			func(err error) bool {
				// a racing writer produced a later revision; regenerate and try again
				return errors.Is(err, we.RevisionConflict) && options.ExpectedRevision == ""
			},
		),
		retry.Context(ctx),
		retry.Attempts(5),
		retry.Delay(5*time.Millisecond),
		retry.LastErrorOnly(true),
	)
}

func (ds *DynamoActionLog) read(ctx context.Context, id we.SliceId) ([]we.RecordedAction, error) {
	query := expression.Key("pk").Equal(expression.Value(partitionKey(id))).And(
		expression.Key("sk").BeginsWith(changeSetPrefix),
	)

	projection := expression.NamesList(expression.Name("actions"))

	expr, err := expression.NewBuilder().WithKeyCondition(query).WithProjection(projection).Build()
	if err != nil {
		return nil, err
	}

	var actions []we.RecordedAction
	var start map[string]types.AttributeValue
	for {
		out, err := ds.db.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(ds.table),
			ExclusiveStartKey:         start,
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			KeyConditionExpression:    expr.KeyCondition(),
			ProjectionExpression:      expr.Projection(),
			ConsistentRead:            aws.Bool(true),
		})
		if err != nil {
			return nil, pkgerrors.Wrap(err, "failed to query change sets")
		}

		var items []ChangeSet
		if err = attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
			return nil, err
		}

		for _, item := range items {
			recorded, err := item.RecordedActions()
			if err != nil {
				return nil, err
			}
			actions = append(actions, recorded...)
		}

		start = out.LastEvaluatedKey
		if len(start) == 0 {
			break
		}
	}

	return actions, nil
}

func (ds *DynamoActionLog) makeChangeSet(id we.SliceId, options we.AppendOptions, actions []we.Action) (*ChangeSet, error) {
	now := time.Now()
	timestamp := we.TimestampFromTime(now)

	recorded := make([]we.RecordedAction, len(actions))
	for index, action := range actions {
		data, err := we.EncodeAction(action)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "failed to encode action")
		}

		recorded[index] = we.RecordedAction{
			SliceId:    id,
			Revision:   ds.revision.NewRevision(now),
			ActionID:   we.ActionID(ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String()),
			ActionType: we.ActionTypeOf(action),
			Timestamp:  timestamp,
			Metadata:   options.RecordedActionMetadata,
			Data:       data,
		}
	}

	return NewChangeSet(id, recorded, timestamp)
}

func latestCondition(revision we.Revision, expectedRevision we.Revision) expression.ConditionBuilder {
	if expectedRevision == "" {
		return expression.Name("revision").LessThan(expression.Value(revision)).Or(
			expression.AttributeNotExists(expression.Name("revision")),
		)
	}

	if expectedRevision == we.InitialRevision {
		return expression.AttributeNotExists(expression.Name("revision"))
	}

	return expression.Name("revision").Equal(expression.Value(expectedRevision))
}

func (ds *DynamoActionLog) write(ctx context.Context, changes *ChangeSet, expectedRevision we.Revision) error {
	latest, err := attributevalue.MarshalMap(changes.Latest())
	if err != nil {
		return retry.Unrecoverable(err)
	}

	record, err := attributevalue.MarshalMap(changes)
	if err != nil {
		return retry.Unrecoverable(err)
	}

	condition, err := expression.NewBuilder().WithCondition(
		latestCondition(changes.Revision, expectedRevision),
	).Build()
	if err != nil {
		return retry.Unrecoverable(err)
	}

	_, err = ds.db.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					Item:                                latest,
					TableName:                           aws.String(ds.table),
					ConditionExpression:                 condition.Condition(),
					ExpressionAttributeNames:            condition.Names(),
					ExpressionAttributeValues:           condition.Values(),
					ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureNone,
				},
			},
			{
				Put: &types.Put{
					Item:      record,
					TableName: aws.String(ds.table),
				},
			},
		},
	})

	return maybeRevisionConflict(err)
}

func maybeRevisionConflict(err error) error {
	if err == nil {
		return nil
	}

	var tc *types.TransactionCanceledException
	if errors.As(err, &tc) {
		for _, reason := range tc.CancellationReasons {
			if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
				return we.RevisionConflict
			}
		}
	}

	var api smithy.APIError
	if errors.As(err, &api) && api.ErrorCode() == "ConditionalCheckFailedException" {
		return we.RevisionConflict
	}

	return pkgerrors.Wrap(err, "failed to write change set")
}

// Remove deletes every item recorded for id and returns the number of items
// removed, including the latest revision marker.
func (ds *DynamoActionLog) Remove(ctx context.Context, id we.SliceId) (int, error) {
	type key struct {
		PartitionKey string `dynamodbav:"pk"`
		SortKey      string `dynamodbav:"sk"`
	}

	query := expression.Key("pk").Equal(expression.Value(partitionKey(id)))
	projection := expression.NamesList(expression.Name("pk"), expression.Name("sk"))

	expr, err := expression.NewBuilder().WithKeyCondition(query).WithProjection(projection).Build()
	if err != nil {
		return 0, err
	}

	var count int
	var start map[string]types.AttributeValue
	for {
		out, err := ds.db.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(ds.table),
			ExclusiveStartKey:         start,
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			KeyConditionExpression:    expr.KeyCondition(),
			ProjectionExpression:      expr.Projection(),
			Limit:                     aws.Int32(25),
		})
		if err != nil {
			return count, err
		}

		if len(out.Items) > 0 {
			var items []key
			if err = attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
				return count, err
			}

			deletes := make([]types.TransactWriteItem, 0, len(items))
			for _, item := range items {
				k, err := attributevalue.MarshalMap(item)
				if err != nil {
					return count, err
				}

				deletes = append(deletes, types.TransactWriteItem{
					Delete: &types.Delete{
						Key:       k,
						TableName: aws.String(ds.table),
					},
				})
			}

			if _, err = ds.db.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: deletes}); err != nil {
				return count, err
			}

			count += len(items)
		}

		start = out.LastEvaluatedKey
		if len(start) == 0 {
			break
		}
	}

	return count, nil
}
