package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDBSettings configures the DynamoDB client.
//
// Endpoint points the client at DynamoDB Local (http://dynamodb:8000). Keys
// are optional: without them the SDK default chain is used, except for a
// local endpoint, which still needs some static credentials to sign with.
type DynamoDBSettings struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

func (s DynamoDBSettings) local() bool { return s.Endpoint != "" }

// OpenDynamoDB builds a client from s.
func OpenDynamoDB(ctx context.Context, s DynamoDBSettings) (*dynamodb.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(valueOr(s.Region, "us-east-1"))}

	key, secret := s.AccessKeyID, s.SecretAccessKey
	if s.local() {
		key, secret = valueOr(key, "local"), valueOr(secret, "local")
	}
	if key != "" && secret != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(key, secret, "")))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if s.local() {
			o.BaseEndpoint = aws.String(s.Endpoint)
		}
	}), nil
}

// TableAdmin is the part of the client needed to provision tables.
type TableAdmin interface {
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// TableNames are the four tables the repositories use.
type TableNames struct {
	Budgets   string
	Sequences string
	Customers string
	Payments  string
}

// Schemas describes every table with the keys the repositories query by.
func (n TableNames) Schemas() []*dynamodb.CreateTableInput {
	byID := func(name string) *dynamodb.CreateTableInput {
		return &dynamodb.CreateTableInput{
			TableName:            aws.String(name),
			BillingMode:          types.BillingModePayPerRequest,
			AttributeDefinitions: []types.AttributeDefinition{{AttributeName: aws.String("id"), AttributeType: types.ScalarAttributeTypeS}},
			KeySchema:            []types.KeySchemaElement{{AttributeName: aws.String("id"), KeyType: types.KeyTypeHash}},
		}
	}

	sequences := &dynamodb.CreateTableInput{
		TableName:            aws.String(n.Sequences),
		BillingMode:          types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{{AttributeName: aws.String("year"), AttributeType: types.ScalarAttributeTypeN}},
		KeySchema:            []types.KeySchemaElement{{AttributeName: aws.String("year"), KeyType: types.KeyTypeHash}},
	}

	payments := byID(n.Payments)
	payments.AttributeDefinitions = append(payments.AttributeDefinitions,
		types.AttributeDefinition{AttributeName: aws.String("budget_id"), AttributeType: types.ScalarAttributeTypeS},
		types.AttributeDefinition{AttributeName: aws.String("date"), AttributeType: types.ScalarAttributeTypeS},
	)
	payments.GlobalSecondaryIndexes = []types.GlobalSecondaryIndex{{
		IndexName: aws.String("budget_id-date-index"),
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("budget_id"), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String("date"), KeyType: types.KeyTypeRange},
		},
		Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
	}}

	return []*dynamodb.CreateTableInput{byID(n.Budgets), sequences, byID(n.Customers), payments}
}

// EnsureTables creates whichever tables are missing and waits for them.
// Meant for DynamoDB Local; real deployments provision tables separately.
func EnsureTables(ctx context.Context, api TableAdmin, schemas []*dynamodb.CreateTableInput, wait time.Duration) error {
	for _, in := range schemas {
		name := aws.ToString(in.TableName)
		_, err := api.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: in.TableName})
		if err == nil {
			continue
		}
		var missing *types.ResourceNotFoundException
		if !errors.As(err, &missing) {
			return fmt.Errorf("describe table %s: %w", name, err)
		}

		if _, err := api.CreateTable(ctx, in); err != nil {
			var inUse *types.ResourceInUseException
			if !errors.As(err, &inUse) {
				return fmt.Errorf("create table %s: %w", name, err)
			}
		}
		waiter := dynamodb.NewTableExistsWaiter(api, func(o *dynamodb.TableExistsWaiterOptions) {
			o.MinDelay = 200 * time.Millisecond
			o.MaxDelay = 2 * time.Second
		})
		if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: in.TableName}, wait); err != nil {
			return fmt.Errorf("wait for table %s: %w", name, err)
		}
		log.Printf("[database][dynamodb] created table %s", name)
	}
	return nil
}

func valueOr(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
