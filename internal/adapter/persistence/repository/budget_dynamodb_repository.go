package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"marcenaria_mdf/internal/domain/entities"
	"marcenaria_mdf/internal/domain/numbering"
	"marcenaria_mdf/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	defaultBudgetsTableName   = "budgets"
	defaultSequencesTableName = "budget_sequences"
	maxNumberingAttempts      = 5
)

var (
	ErrDuplicateBudgetID = errors.New("budget id already exists")
	ErrNumberContention  = errors.New("could not reserve a sequential number")
)

type budgetLineItem struct {
	Description string `dynamodbav:"description" json:"description"`
	UnitType    string `dynamodbav:"unit_type" json:"unit_type"`
	Quantity    string `dynamodbav:"quantity" json:"quantity"`
	UnitPrice   string `dynamodbav:"unit_price" json:"unit_price"`
	TotalPrice  string `dynamodbav:"total_price" json:"total_price"`
}

type budgetItem struct {
	ID                string           `dynamodbav:"id"`
	SequentialNumber  string           `dynamodbav:"sequential_number"`
	Title             string           `dynamodbav:"title"`
	CustomerID        string           `dynamodbav:"customer_id"`
	Items             []budgetLineItem `dynamodbav:"items"`
	SubtotalAmount    string           `dynamodbav:"subtotal_amount"`
	DiscountType      string           `dynamodbav:"discount_type"`
	DiscountValue     string           `dynamodbav:"discount_value"`
	FinalAmount       string           `dynamodbav:"final_amount"`
	Status            string           `dynamodbav:"status"`
	PaymentConditions string           `dynamodbav:"payment_conditions"`
	PaymentMethods    []string         `dynamodbav:"payment_methods"`
	DrawingRef        string           `dynamodbav:"drawing_ref"`
	CreatedAt         string           `dynamodbav:"created_at"`
	UpdatedAt         string           `dynamodbav:"updated_at"`
	Version           int64            `dynamodbav:"version"`
}

// BudgetDynamoRepository persists Budget entities in DynamoDB.
//
// Table requirements:
//   - budgets: PK id (string)
//   - budget_sequences: PK year (number), attribute last_value (number)
//
// Create reserves the number and inserts the budget in one TransactWriteItems
// call. The counter update is conditioned on the value read just before, so
// two writers racing for the same year cannot both succeed; the loser re-reads
// and retries.
type BudgetDynamoRepository struct {
	ddb            DynamoAPI
	tableName      string
	sequencesTable string
	loc            *time.Location
}

var _ interfaces.IBudgetRepository = (*BudgetDynamoRepository)(nil)

// NewBudgetDynamoRepository builds the repository. Empty table names fall back
// to the defaults; loc decides the numbering year (UTC when nil).
func NewBudgetDynamoRepository(ddb DynamoAPI, tableName, sequencesTable string, loc *time.Location) *BudgetDynamoRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &BudgetDynamoRepository{
		ddb:            ddb,
		tableName:      valueOr(tableName, defaultBudgetsTableName),
		sequencesTable: valueOr(sequencesTable, defaultSequencesTableName),
		loc:            loc,
	}
}

func (r *BudgetDynamoRepository) Create(ctx context.Context, b entities.Budget) (entities.Budget, error) {
	year := numbering.YearOf(b.CreatedAt, r.loc)
	b.Version = 1

	for attempt := 1; attempt <= maxNumberingAttempts; attempt++ {
		current, exists, err := r.currentSequence(ctx, year)
		if err != nil {
			return entities.Budget{}, err
		}
		next := current + 1
		b.SequentialNumber = numbering.Format(year, next)

		av, err := attributevalue.MarshalMap(toBudgetItem(b))
		if err != nil {
			return entities.Budget{}, err
		}

		_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
			TransactItems: []types.TransactWriteItem{
				{Update: r.counterUpdate(year, current, next, exists)},
				{Put: &types.Put{
					TableName:                aws.String(r.tableName),
					Item:                     av,
					ConditionExpression:      aws.String("attribute_not_exists(#id)"),
					ExpressionAttributeNames: map[string]string{"#id": "id"},
				}},
			},
		})
		if err == nil {
			return b, nil
		}

		var tce *types.TransactionCanceledException
		if !errors.As(err, &tce) {
			return entities.Budget{}, err
		}
		if cancelledBy(tce, 1) {
			return entities.Budget{}, ErrDuplicateBudgetID
		}
		log.Printf("[budget][repository] numbering conflict year=%d attempt=%d", year, attempt)
	}
	return entities.Budget{}, fmt.Errorf("%w: year %d", ErrNumberContention, year)
}

func (r *BudgetDynamoRepository) currentSequence(ctx context.Context, year int) (int, bool, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.sequencesTable),
		Key:            sequenceKey(year),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return 0, false, err
	}
	raw, ok := out.Item["last_value"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, false, nil
	}
	v, err := strconv.Atoi(raw.Value)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt sequence for year %d: %w", year, err)
	}
	return v, true, nil
}

func (r *BudgetDynamoRepository) counterUpdate(year, current, next int, exists bool) *types.Update {
	cond := "attribute_not_exists(last_value)"
	values := map[string]types.AttributeValue{
		":next": &types.AttributeValueMemberN{Value: strconv.Itoa(next)},
	}
	if exists {
		cond = "last_value = :cur"
		values[":cur"] = &types.AttributeValueMemberN{Value: strconv.Itoa(current)}
	}
	return &types.Update{
		TableName:                 aws.String(r.sequencesTable),
		Key:                       sequenceKey(year),
		UpdateExpression:          aws.String("SET last_value = :next"),
		ConditionExpression:       aws.String(cond),
		ExpressionAttributeValues: values,
	}
}

func (r *BudgetDynamoRepository) GetByID(ctx context.Context, id string) (entities.Budget, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Budget{}, err
	}
	if len(out.Item) == 0 {
		return entities.Budget{}, nil
	}

	var it budgetItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Budget{}, err
	}
	return fromBudgetItem(it), nil
}

func (r *BudgetDynamoRepository) List(ctx context.Context) ([]entities.Budget, error) {
	p := dynamodb.NewScanPaginator(r.ddb, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	})

	var budgets []entities.Budget
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range page.Items {
			var it budgetItem
			if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
				return nil, err
			}
			budgets = append(budgets, fromBudgetItem(it))
		}
	}
	return budgets, nil
}

// Update overwrites every mutable attribute when the stored version still
// equals b.Version, and bumps it. The number and creation time never change.
// A missing item yields a zero Budget; a newer stored version yields
// entities.ErrStaleBudget.
func (r *BudgetDynamoRepository) Update(ctx context.Context, b entities.Budget) (entities.Budget, error) {
	next := b
	next.Version = b.Version + 1
	av, err := attributevalue.MarshalMap(toBudgetItem(next))
	if err != nil {
		return entities.Budget{}, err
	}
	expr, values, names := setExpression(av, "id", "sequential_number", "created_at")

	// items written before versioning have no attribute at all
	cond := "attribute_exists(#id) AND attribute_not_exists(#version)"
	if b.Version > 0 {
		cond = "attribute_exists(#id) AND #version = :expected_version"
		values[":expected_version"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(b.Version, 10)}
	}

	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: b.ID},
		},
		ConditionExpression:                 aws.String(cond),
		UpdateExpression:                    aws.String(expr),
		ExpressionAttributeValues:           values,
		ExpressionAttributeNames:            mergeNames(names, map[string]string{"#id": "id", "#version": "version"}),
		ReturnValues:                        types.ReturnValueAllNew,
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			if len(cfe.Item) == 0 {
				return entities.Budget{}, nil
			}
			log.Printf("[budget][repository] stale update id=%s version=%d", b.ID, b.Version)
			return entities.Budget{}, entities.ErrStaleBudget
		}
		return entities.Budget{}, err
	}
	if len(out.Attributes) == 0 {
		return entities.Budget{}, nil
	}
	var it budgetItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &it); err != nil {
		return entities.Budget{}, err
	}
	return fromBudgetItem(it), nil
}

func (r *BudgetDynamoRepository) Delete(ctx context.Context, id string) (bool, error) {
	out, err := r.ddb.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return false, err
	}
	return len(out.Attributes) > 0, nil
}

func sequenceKey(year int) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"year": &types.AttributeValueMemberN{Value: strconv.Itoa(year)},
	}
}

// cancelledBy reports whether the transaction item at idx failed its condition.
func cancelledBy(tce *types.TransactionCanceledException, idx int) bool {
	if idx >= len(tce.CancellationReasons) {
		return false
	}
	return aws.ToString(tce.CancellationReasons[idx].Code) == "ConditionalCheckFailed"
}

func toBudgetItem(b entities.Budget) budgetItem {
	lines := make([]budgetLineItem, 0, len(b.Items))
	for _, it := range b.Items {
		lines = append(lines, budgetLineItem{
			Description: it.Description,
			UnitType:    string(it.UnitType),
			Quantity:    it.Quantity.String(),
			UnitPrice:   it.UnitPrice.String(),
			TotalPrice:  it.TotalPrice.String(),
		})
	}
	methods := b.PaymentMethods
	if methods == nil {
		methods = []string{}
	}
	return budgetItem{
		ID:                b.ID,
		SequentialNumber:  b.SequentialNumber,
		Title:             b.Title,
		CustomerID:        b.CustomerID,
		Items:             lines,
		SubtotalAmount:    b.SubtotalAmount.String(),
		DiscountType:      string(b.Discount.Type),
		DiscountValue:     b.Discount.Value.String(),
		FinalAmount:       b.FinalAmount.String(),
		Status:            string(b.Status),
		PaymentConditions: b.PaymentConditions,
		PaymentMethods:    methods,
		DrawingRef:        b.DrawingRef,
		CreatedAt:         formatTime(b.CreatedAt),
		UpdatedAt:         formatTime(b.UpdatedAt),
		Version:           b.Version,
	}
}

func fromBudgetItem(it budgetItem) entities.Budget {
	items := make([]entities.BudgetItem, 0, len(it.Items))
	for _, l := range it.Items {
		items = append(items, entities.BudgetItem{
			Description: l.Description,
			UnitType:    entities.UnitType(l.UnitType),
			Quantity:    parseDecimal(l.Quantity),
			UnitPrice:   parseDecimal(l.UnitPrice),
			TotalPrice:  parseDecimal(l.TotalPrice),
		})
	}
	discount := entities.Discount{Type: entities.DiscountType(it.DiscountType), Value: parseDecimal(it.DiscountValue)}
	if discount.Type == "" {
		discount.Type = entities.DiscountTypeFixed
	}
	var methods []string
	if len(it.PaymentMethods) > 0 {
		methods = it.PaymentMethods
	}
	return entities.Budget{
		ID:                it.ID,
		SequentialNumber:  it.SequentialNumber,
		Title:             it.Title,
		CustomerID:        it.CustomerID,
		Items:             items,
		SubtotalAmount:    parseDecimal(it.SubtotalAmount),
		Discount:          discount,
		FinalAmount:       parseDecimal(it.FinalAmount),
		Status:            entities.BudgetStatus(it.Status),
		PaymentConditions: it.PaymentConditions,
		PaymentMethods:    methods,
		DrawingRef:        it.DrawingRef,
		CreatedAt:         parseTime(it.CreatedAt),
		UpdatedAt:         parseTime(it.UpdatedAt),
		Version:           it.Version,
	}
}
