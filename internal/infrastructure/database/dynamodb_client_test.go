package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdmin struct {
	tables   map[string]bool
	created  []string
	describe error
}

func (f *fakeAdmin) DescribeTable(_ context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	if f.describe != nil {
		return nil, f.describe
	}
	name := aws.ToString(in.TableName)
	if !f.tables[name] {
		return nil, &types.ResourceNotFoundException{Message: aws.String("no table " + name)}
	}
	return &dynamodb.DescribeTableOutput{Table: &types.TableDescription{
		TableName:   in.TableName,
		TableStatus: types.TableStatusActive,
	}}, nil
}

func (f *fakeAdmin) CreateTable(_ context.Context, in *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	name := aws.ToString(in.TableName)
	f.tables[name] = true
	f.created = append(f.created, name)
	return &dynamodb.CreateTableOutput{}, nil
}

func names() TableNames {
	return TableNames{Budgets: "budgets", Sequences: "budget_sequences", Customers: "customers", Payments: "billing_payments"}
}

func TestTableNames_Schemas(t *testing.T) {
	schemas := names().Schemas()
	require.Len(t, schemas, 4)

	seq := schemas[1]
	assert.Equal(t, "budget_sequences", aws.ToString(seq.TableName))
	assert.Equal(t, types.ScalarAttributeTypeN, seq.AttributeDefinitions[0].AttributeType)

	payments := schemas[3]
	require.Len(t, payments.GlobalSecondaryIndexes, 1)
	gsi := payments.GlobalSecondaryIndexes[0]
	assert.Equal(t, "budget_id-date-index", aws.ToString(gsi.IndexName))
	assert.Equal(t, types.KeyTypeRange, gsi.KeySchema[1].KeyType)
	assert.Len(t, payments.AttributeDefinitions, 3)
}

func TestEnsureTables(t *testing.T) {
	ctx := context.Background()

	t.Run("creates only what is missing", func(t *testing.T) {
		f := &fakeAdmin{tables: map[string]bool{"budgets": true}}
		require.NoError(t, EnsureTables(ctx, f, names().Schemas(), time.Second))
		assert.Equal(t, []string{"budget_sequences", "customers", "billing_payments"}, f.created)

		f.created = nil
		require.NoError(t, EnsureTables(ctx, f, names().Schemas(), time.Second))
		assert.Empty(t, f.created)
	})

	t.Run("other describe errors abort", func(t *testing.T) {
		f := &fakeAdmin{tables: map[string]bool{}, describe: errors.New("connection refused")}
		err := EnsureTables(ctx, f, names().Schemas(), time.Second)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "describe table budgets")
		assert.Empty(t, f.created)
	})
}

func TestOpenDynamoDB_LocalEndpoint(t *testing.T) {
	t.Setenv("AWS_PROFILE", "")
	client, err := OpenDynamoDB(context.Background(), DynamoDBSettings{Endpoint: "http://localhost:8000"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", aws.ToString(client.Options().BaseEndpoint))
	assert.Equal(t, "us-east-1", client.Options().Region)
}
