package ds

import (
	"errors"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/wire"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"

	"github.com/weegigs/wee-counter-go/support"
	"github.com/weegigs/wee-counter-go/we"
)

const TableNameVariable = "DYNAMODB_EVENTS_TABLE_NAME"

var Live = wire.NewSet(
	support.AWSConfig,
	Client,
	LiveTableName,
	NewActionLog,
	wire.Bind(new(we.ActionLog), new(*DynamoActionLog)),
)

var Local = wire.NewSet(
	LocalActionLog,
	wire.Bind(new(we.ActionLog), new(*DynamoActionLog)),
)

func LiveTableName() (ActionLogTableName, error) {
	table := os.Getenv(TableNameVariable)
	if len(table) == 0 {
		return "", errors.New(TableNameVariable + " is not set")
	}

	return ActionLogTableName(table), nil
}

func Client(cfg aws.Config) *dynamodb.Client {
	otelaws.AppendMiddlewares(&cfg.APIOptions)
	return dynamodb.NewFromConfig(cfg)
}
