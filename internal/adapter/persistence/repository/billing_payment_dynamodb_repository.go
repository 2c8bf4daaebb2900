package repository

import (
	"context"
	"errors"
	"fmt"

	"marcenaria_mdf/internal/domain/entities"
	"marcenaria_mdf/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	defaultPaymentsTableName = "billing_payments"
	paymentsByBudgetIndex    = "budget_id-date-index"
)

// ErrDuplicatePayment is returned when a provider payment id is recorded twice.
var ErrDuplicatePayment = errors.New("payment already recorded")

type billingPaymentItem struct {
	ID               string `dynamodbav:"id"`
	BudgetID         string `dynamodbav:"budget_id"`
	BudgetNumber     string `dynamodbav:"budget_number"`
	Amount           string `dynamodbav:"amount"`
	Method           string `dynamodbav:"method"`
	Status           string `dynamodbav:"status"`
	ProviderStatus   string `dynamodbav:"provider_status"`
	Simulated        bool   `dynamodbav:"simulated"`
	Date             string `dynamodbav:"date"`
	ProviderResponse string `dynamodbav:"provider_response,omitempty"`
}

// BillingPaymentDynamoRepository stores budget charges.
//
// Table: PK id. GSI budget_id-date-index (PK budget_id, SK date) so a
// budget's history comes back already ordered.
type BillingPaymentDynamoRepository struct {
	ddb   DynamoAPI
	table string
}

var _ interfaces.IBillingPaymentRepository = (*BillingPaymentDynamoRepository)(nil)

func NewBillingPaymentDynamoRepository(ddb DynamoAPI, tableName string) *BillingPaymentDynamoRepository {
	return &BillingPaymentDynamoRepository{ddb: ddb, table: valueOr(tableName, defaultPaymentsTableName)}
}

func (r *BillingPaymentDynamoRepository) Create(ctx context.Context, p entities.BillingPayment) (entities.BillingPayment, error) {
	av, err := attributevalue.MarshalMap(toBillingPaymentItem(p))
	if err != nil {
		return entities.BillingPayment{}, fmt.Errorf("marshal payment: %w", err)
	}
	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.table),
		Item:                     av,
		ConditionExpression:      aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{"#id": "id"},
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return entities.BillingPayment{}, fmt.Errorf("%w: %s", ErrDuplicatePayment, p.ID)
	}
	if err != nil {
		return entities.BillingPayment{}, err
	}
	return p, nil
}

func (r *BillingPaymentDynamoRepository) GetByID(ctx context.Context, id string) (entities.BillingPayment, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table),
		Key:            map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.BillingPayment{}, err
	}
	if len(out.Item) == 0 {
		return entities.BillingPayment{}, nil
	}
	return decodeBillingPayment(out.Item)
}

// ListByBudgetID walks every page of the budget's index partition, oldest first.
func (r *BillingPaymentDynamoRepository) ListByBudgetID(ctx context.Context, budgetID string) ([]entities.BillingPayment, error) {
	pages := dynamodb.NewQueryPaginator(r.ddb, &dynamodb.QueryInput{
		TableName:                aws.String(r.table),
		IndexName:                aws.String(paymentsByBudgetIndex),
		KeyConditionExpression:   aws.String("#b = :b"),
		ExpressionAttributeNames: map[string]string{"#b": "budget_id"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":b": &types.AttributeValueMemberS{Value: budgetID},
		},
		ScanIndexForward: aws.Bool(true),
	})

	payments := make([]entities.BillingPayment, 0)
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range page.Items {
			p, err := decodeBillingPayment(raw)
			if err != nil {
				return nil, err
			}
			payments = append(payments, p)
		}
	}
	return payments, nil
}

func decodeBillingPayment(av map[string]types.AttributeValue) (entities.BillingPayment, error) {
	var it billingPaymentItem
	if err := attributevalue.UnmarshalMap(av, &it); err != nil {
		return entities.BillingPayment{}, fmt.Errorf("unmarshal payment: %w", err)
	}
	return fromBillingPaymentItem(it), nil
}

// toBillingPaymentItem is shared with the SQLite repository.
func toBillingPaymentItem(p entities.BillingPayment) billingPaymentItem {
	return billingPaymentItem{
		ID:               p.ID,
		BudgetID:         p.BudgetID,
		BudgetNumber:     p.BudgetNumber,
		Amount:           p.Amount.String(),
		Method:           p.Method,
		Status:           string(p.Status),
		ProviderStatus:   p.ProviderStatus,
		Simulated:        p.Simulated,
		Date:             formatTime(p.Date),
		ProviderResponse: string(p.ProviderResponse),
	}
}

func fromBillingPaymentItem(it billingPaymentItem) entities.BillingPayment {
	p := entities.BillingPayment{
		ID:             it.ID,
		BudgetID:       it.BudgetID,
		BudgetNumber:   it.BudgetNumber,
		Amount:         parseDecimal(it.Amount),
		Method:         it.Method,
		Status:         entities.PaymentStatus(it.Status),
		ProviderStatus: it.ProviderStatus,
		Simulated:      it.Simulated,
		Date:           parseTime(it.Date),
	}
	if it.ProviderResponse != "" {
		p.ProviderResponse = []byte(it.ProviderResponse)
	}
	return p
}
