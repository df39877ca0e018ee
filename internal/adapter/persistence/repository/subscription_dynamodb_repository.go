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
	defaultSubscriptionsTableName = "subscriptions"
	subscriptionsUserIDIndex      = "user_id-index"
)

type subscriptionItem struct {
	ID        string `dynamodbav:"id"`
	UserID    string `dynamodbav:"user_id"`
	Tier      string `dynamodbav:"tier"`
	Status    string `dynamodbav:"status"`
	StartDate string `dynamodbav:"start_date"`
	EndDate   string `dynamodbav:"end_date,omitempty"`
	CreatedAt string `dynamodbav:"created_at"`
}

// SubscriptionDynamoRepository reads subscriptions owned by the billing cycle.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: user_id-index (PK: user_id)
type SubscriptionDynamoRepository struct {
	ddb       DynamoDBAPI
	tableName string
}

var _ interfaces.ISubscriptionRepository = (*SubscriptionDynamoRepository)(nil)

func NewSubscriptionDynamoRepository(ddb DynamoDBAPI) *SubscriptionDynamoRepository {
	return &SubscriptionDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("SUBSCRIPTIONS_TABLE", defaultSubscriptionsTableName),
	}
}

// GetActiveSubscription returns the newest active subscription covering date.
func (r *SubscriptionDynamoRepository) GetActiveSubscription(ctx context.Context, userID, date string) (entities.Subscription, error) {
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(subscriptionsUserIDIndex),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": stringValue(userID),
		},
	})
	if err != nil {
		return entities.Subscription{}, err
	}

	var best entities.Subscription
	for _, raw := range out.Items {
		var it subscriptionItem
		if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
			return entities.Subscription{}, err
		}
		s := fromSubscriptionItem(it)
		if !s.CoversDate(date) {
			continue
		}
		if best.ID == "" || s.CreatedAt.After(best.CreatedAt) {
			best = s
		}
	}
	return best, nil
}

func fromSubscriptionItem(it subscriptionItem) entities.Subscription {
	tier, _ := entities.ParsePlanTier(it.Tier)
	return entities.Subscription{
		ID:        it.ID,
		UserID:    it.UserID,
		Tier:      tier,
		Status:    entities.SubscriptionStatus(it.Status),
		StartDate: it.StartDate,
		EndDate:   it.EndDate,
		CreatedAt: parseTime(it.CreatedAt),
	}
}
