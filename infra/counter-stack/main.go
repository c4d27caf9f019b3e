package main

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsdynamodb"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	"github.com/weegigs/wee-counter-go/stores/ds"
)

type CounterStackProps struct {
	awscdk.StackProps
	Asset string
}

func NewCounterStack(scope constructs.Construct, id string, props *CounterStackProps) awscdk.Stack {
	stack := awscdk.NewStack(scope, &id, &props.StackProps)

	table := awsdynamodb.NewTable(stack, jsii.String("Actions"), &awsdynamodb.TableProps{
		PartitionKey:  &awsdynamodb.Attribute{Name: jsii.String("pk"), Type: awsdynamodb.AttributeType_STRING},
		SortKey:       &awsdynamodb.Attribute{Name: jsii.String("sk"), Type: awsdynamodb.AttributeType_STRING},
		BillingMode:   awsdynamodb.BillingMode_PAY_PER_REQUEST,
		RemovalPolicy: awscdk.RemovalPolicy_RETAIN,
	})

	fn := awslambda.NewFunction(stack, jsii.String("Counter"), &awslambda.FunctionProps{
		Runtime: awslambda.Runtime_PROVIDED_AL2(),
		Handler: jsii.String("bootstrap"),
		Code:    awslambda.Code_FromAsset(jsii.String(props.Asset), nil),
		Environment: &map[string]*string{
			ds.TableNameVariable: table.TableName(),
		},
		Tracing: awslambda.Tracing_ACTIVE,
	})

	table.GrantReadWriteData(fn)

	awscdk.NewCfnOutput(stack, jsii.String("FunctionName"), &awscdk.CfnOutputProps{Value: fn.FunctionName()})
	awscdk.NewCfnOutput(stack, jsii.String("TableName"), &awscdk.CfnOutputProps{Value: table.TableName()})

	return stack
}

func main() {
	app := awscdk.NewApp(nil)

	NewCounterStack(app, "WeeCounter", &CounterStackProps{
		StackProps: awscdk.StackProps{Env: env()},
		Asset:      "dist/counter-lambda",
	})

	app.Synth(nil)
}

// env returns nil to synthesize an environment agnostic stack.
func env() *awscdk.Environment {
	return nil
}
