package repository

import (
	"context"

	"mealchange_service/internal/domain/entities"
	"mealchange_service/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	defaultOrdersTableName = "orders"
	ordersUserDateIndex    = "user_id-delivery_date-index"
)

type orderLineItem struct {
	Name     string `dynamodbav:"name"`
	Category string `dynamodbav:"category"`
	Price    string `dynamodbav:"price"`
	Quantity int    `dynamodbav:"quantity"`
}

type orderItem struct {
	ID             string          `dynamodbav:"id"`
	UserID         string          `dynamodbav:"user_id"`
	SubscriptionID string          `dynamodbav:"subscription_id"`
	DeliveryDate   string          `dynamodbav:"delivery_date"`
	DeliverySlot   string          `dynamodbav:"delivery_slot"`
	Items          []orderLineItem `dynamodbav:"items"`
	TotalAmount    string          `dynamodbav:"total_amount"`
	FinalAmount    string          `dynamodbav:"final_amount"`
	Notes          []string        `dynamodbav:"notes,omitempty"`
	UpdatedAt      string          `dynamodbav:"updated_at,omitempty"`
}

// OrderDynamoRepository reads and rewrites delivery orders.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: user_id-delivery_date-index (PK: user_id, SK: delivery_date)
type OrderDynamoRepository struct {
	ddb       DynamoDBAPI
	tableName string
}

var _ interfaces.IOrderRepository = (*OrderDynamoRepository)(nil)

func NewOrderDynamoRepository(ddb DynamoDBAPI) *OrderDynamoRepository {
	return &OrderDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("ORDERS_TABLE", defaultOrdersTableName),
	}
}

func (r *OrderDynamoRepository) FindOrder(ctx context.Context, userID, date string, slot entities.DeliverySlot, subscriptionID string) (entities.Order, error) {
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(ordersUserDateIndex),
		KeyConditionExpression: aws.String("user_id = :uid AND delivery_date = :date"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid":  stringValue(userID),
			":date": stringValue(date),
		},
	})
	if err != nil {
		return entities.Order{}, err
	}
	for _, raw := range out.Items {
		var it orderItem
		if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
			return entities.Order{}, err
		}
		if it.DeliverySlot == string(slot) && it.SubscriptionID == subscriptionID {
			return fromOrderItem(it), nil
		}
	}
	return entities.Order{}, nil
}

// SaveOrder overwrites an existing order. It never creates one.
func (r *OrderDynamoRepository) SaveOrder(ctx context.Context, o entities.Order) error {
	av, err := attributevalue.MarshalMap(toOrderItem(o))
	if err != nil {
		return err
	}
	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.tableName),
		Item:                     av,
		ConditionExpression:      aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames: map[string]string{"#id": "id"},
	})
	return err
}

func toOrderItem(o entities.Order) orderItem {
	it := orderItem{
		ID:             o.ID,
		UserID:         o.UserID,
		SubscriptionID: o.SubscriptionID,
		DeliveryDate:   o.DeliveryDate,
		DeliverySlot:   string(o.DeliverySlot),
		TotalAmount:    o.TotalAmount.String(),
		FinalAmount:    o.FinalAmount.String(),
		Notes:          o.Notes,
		UpdatedAt:      formatTime(o.UpdatedAt),
	}
	for _, i := range o.Items {
		it.Items = append(it.Items, orderLineItem{
			Name:     i.Name,
			Category: i.Category,
			Price:    i.Price.String(),
			Quantity: i.Quantity,
		})
	}
	return it
}

func fromOrderItem(it orderItem) entities.Order {
	o := entities.Order{
		ID:             it.ID,
		UserID:         it.UserID,
		SubscriptionID: it.SubscriptionID,
		DeliveryDate:   it.DeliveryDate,
		DeliverySlot:   entities.DeliverySlot(it.DeliverySlot),
		TotalAmount:    parseDecimal(it.TotalAmount),
		FinalAmount:    parseDecimal(it.FinalAmount),
		Notes:          it.Notes,
		UpdatedAt:      parseTime(it.UpdatedAt),
	}
	for _, i := range it.Items {
		o.Items = append(o.Items, entities.OrderItem{
			Name:     i.Name,
			Category: i.Category,
			Price:    parseDecimal(i.Price),
			Quantity: i.Quantity,
		})
	}
	return o
}
