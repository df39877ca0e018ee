package repository

import (
	"context"
	"time"

	"mealchange_service/internal/domain/entities"
	"mealchange_service/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	defaultMealChangesTableName = "meal_change_requests"
	defaultSlotsTableName       = "meal_change_slots"
	mealChangesUserIndex        = "user_id-requested_at-index"
	mealChangesStatusIndex      = "status-cutoff_at-index"
	defaultTTLGrace             = 24 * time.Hour
)

type customItemItem struct {
	Name        string `dynamodbav:"name"`
	Description string `dynamodbav:"description,omitempty"`
	Price       string `dynamodbav:"price"`
	Quantity    int    `dynamodbav:"quantity"`
}

type mealSnapshotItem struct {
	PlanTier    string           `dynamodbav:"plan_tier"`
	Items       []menuItemItem   `dynamodbav:"items"`
	BasePrice   string           `dynamodbav:"base_price"`
	CustomItems []customItemItem `dynamodbav:"custom_items,omitempty"`
	TotalPrice  string           `dynamodbav:"total_price"`
}

type mealChangeItem struct {
	ID              string           `dynamodbav:"id"`
	UserID          string           `dynamodbav:"user_id"`
	SubscriptionID  string           `dynamodbav:"subscription_id"`
	OrderID         string           `dynamodbav:"order_id,omitempty"`
	ChangeDate      string           `dynamodbav:"change_date"`
	DeliverySlot    string           `dynamodbav:"delivery_slot"`
	SlotKey         string           `dynamodbav:"slot_key"`
	OriginalMeal    mealSnapshotItem `dynamodbav:"original_meal"`
	NewMeal         mealSnapshotItem `dynamodbav:"new_meal"`
	PriceAdjustment string           `dynamodbav:"price_adjustment"`
	Reason          string           `dynamodbav:"reason"`
	Status          string           `dynamodbav:"status"`
	PaymentRequired bool             `dynamodbav:"payment_required"`
	PaymentStatus   string           `dynamodbav:"payment_status"`
	PaymentRail     string           `dynamodbav:"payment_rail,omitempty"`
	TransactionID   string           `dynamodbav:"transaction_id,omitempty"`
	RefundStatus    string           `dynamodbav:"refund_status,omitempty"`
	OrderSyncStatus string           `dynamodbav:"order_sync_status,omitempty"`
	CutoffTime      string           `dynamodbav:"cutoff_time"`
	CutoffAt        int64            `dynamodbav:"cutoff_at"`
	RequestedAt     string           `dynamodbav:"requested_at"`
	ProcessedAt     string           `dynamodbav:"processed_at,omitempty"`
	RejectionReason string           `dynamodbav:"rejection_reason,omitempty"`
	Notes           string           `dynamodbav:"notes,omitempty"`
	Version         int64            `dynamodbav:"version"`
	ExpiresAt       int64            `dynamodbav:"expires_at,omitempty"`
}

type slotGuardItem struct {
	SlotKey   string `dynamodbav:"slot_key"`
	RequestID string `dynamodbav:"request_id"`
	ExpiresAt int64  `dynamodbav:"expires_at"`
}

// MealChangeDynamoRepository persists MealChangeRequest entities in DynamoDB.
//
// Table requirements:
//   - meal_change_requests: PK id (string)
//     GSI user_id-requested_at-index (PK user_id, SK requested_at)
//     GSI status-cutoff_at-index (PK status, SK cutoff_at number)
//     TTL attribute expires_at, present only while the request is pending
//   - meal_change_slots: PK slot_key (string), TTL attribute expires_at
//
// A slot guard item holds (user, date, slot) for the active request and is
// written in the same transaction as the request itself.
type MealChangeDynamoRepository struct {
	ddb        DynamoDBAPI
	tableName  string
	slotsTable string
	ttlGrace   time.Duration
	now        func() time.Time
}

var _ interfaces.IMealChangeRepository = (*MealChangeDynamoRepository)(nil)

func NewMealChangeDynamoRepository(ddb DynamoDBAPI) *MealChangeDynamoRepository {
	return &MealChangeDynamoRepository{
		ddb:        ddb,
		tableName:  getenvDefault("MEAL_CHANGES_TABLE", defaultMealChangesTableName),
		slotsTable: getenvDefault("MEAL_CHANGE_SLOTS_TABLE", defaultSlotsTableName),
		ttlGrace:   getenvDuration("TTL_GRACE", defaultTTLGrace),
		now:        time.Now,
	}
}

func (r *MealChangeDynamoRepository) Create(ctx context.Context, m entities.MealChangeRequest) (entities.MealChangeRequest, error) {
	m.Version = 1
	av, err := attributevalue.MarshalMap(toMealChangeItem(m, r.ttlGrace))
	if err != nil {
		return entities.MealChangeRequest{}, err
	}
	guard, err := attributevalue.MarshalMap(slotGuardItem{
		SlotKey:   m.SlotKey(),
		RequestID: m.ID,
		ExpiresAt: m.CutoffTime.Add(r.ttlGrace).Unix(),
	})
	if err != nil {
		return entities.MealChangeRequest{}, err
	}

	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:                aws.String(r.tableName),
				Item:                     av,
				ConditionExpression:      aws.String("attribute_not_exists(#id)"),
				ExpressionAttributeNames: map[string]string{"#id": "id"},
			}},
			{Put: &types.Put{
				TableName:           aws.String(r.slotsTable),
				Item:                guard,
				ConditionExpression: aws.String("attribute_not_exists(#slot_key) OR #expires_at < :now"),
				ExpressionAttributeNames: map[string]string{
					"#slot_key":   "slot_key",
					"#expires_at": "expires_at",
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":now": int64Value(r.now().Unix()),
				},
			}},
		},
	})
	if err != nil {
		if failed, ok := cancellationReasons(err); ok && len(failed) > 1 && failed[1] {
			return entities.MealChangeRequest{}, interfaces.ErrSlotTaken
		}
		return entities.MealChangeRequest{}, err
	}
	return m, nil
}

func (r *MealChangeDynamoRepository) GetByID(ctx context.Context, id string) (entities.MealChangeRequest, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": stringValue(id),
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.MealChangeRequest{}, err
	}
	if len(out.Item) == 0 {
		return entities.MealChangeRequest{}, nil
	}

	var it mealChangeItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.MealChangeRequest{}, err
	}
	return fromMealChangeItem(it), nil
}

func (r *MealChangeDynamoRepository) GetActiveBySlot(ctx context.Context, userID, changeDate string, slot entities.DeliverySlot) (entities.MealChangeRequest, error) {
	key := entities.SlotKey(userID, changeDate, slot)
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.slotsTable),
		Key: map[string]types.AttributeValue{
			"slot_key": stringValue(key),
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.MealChangeRequest{}, err
	}
	if len(out.Item) == 0 {
		return entities.MealChangeRequest{}, nil
	}
	var guard slotGuardItem
	if err := attributevalue.UnmarshalMap(out.Item, &guard); err != nil {
		return entities.MealChangeRequest{}, err
	}
	// TTL deletion lags; an expired guard no longer holds the slot.
	if guard.ExpiresAt < r.now().Unix() {
		return entities.MealChangeRequest{}, nil
	}

	req, err := r.GetByID(ctx, guard.RequestID)
	if err != nil {
		return entities.MealChangeRequest{}, err
	}
	if req.ID == "" || !req.Status.IsActive() || req.SlotKey() != key {
		return entities.MealChangeRequest{}, nil
	}
	return req, nil
}

func (r *MealChangeDynamoRepository) Update(ctx context.Context, m entities.MealChangeRequest, expectedVersion int64) (entities.MealChangeRequest, error) {
	m.Version = expectedVersion + 1
	put, err := r.versionedPut(m, expectedVersion)
	if err != nil {
		return entities.MealChangeRequest{}, err
	}

	if m.Status.IsActive() {
		err = r.putRequest(ctx, put)
		if err != nil {
			return entities.MealChangeRequest{}, err
		}
		return m, nil
	}

	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: put},
			{Delete: &types.Delete{
				TableName: aws.String(r.slotsTable),
				Key: map[string]types.AttributeValue{
					"slot_key": stringValue(m.SlotKey()),
				},
				ConditionExpression: aws.String("attribute_not_exists(#slot_key) OR #request_id = :id"),
				ExpressionAttributeNames: map[string]string{
					"#slot_key":   "slot_key",
					"#request_id": "request_id",
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":id": stringValue(m.ID),
				},
			}},
		},
	})
	if err != nil {
		failed, ok := cancellationReasons(err)
		switch {
		case ok && len(failed) > 0 && failed[0]:
			return entities.MealChangeRequest{}, interfaces.ErrVersionConflict
		case ok && len(failed) > 1 && failed[1]:
			// The guard already belongs to a newer request; leave it alone.
			if err := r.putRequest(ctx, put); err != nil {
				return entities.MealChangeRequest{}, err
			}
			return m, nil
		}
		return entities.MealChangeRequest{}, err
	}
	return m, nil
}

func (r *MealChangeDynamoRepository) versionedPut(m entities.MealChangeRequest, expectedVersion int64) (*types.Put, error) {
	av, err := attributevalue.MarshalMap(toMealChangeItem(m, r.ttlGrace))
	if err != nil {
		return nil, err
	}
	return &types.Put{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("#version = :expected"),
		ExpressionAttributeNames: map[string]string{
			"#version": "version",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":expected": int64Value(expectedVersion),
		},
	}, nil
}

func (r *MealChangeDynamoRepository) putRequest(ctx context.Context, put *types.Put) error {
	_, err := r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 put.TableName,
		Item:                      put.Item,
		ConditionExpression:       put.ConditionExpression,
		ExpressionAttributeNames:  put.ExpressionAttributeNames,
		ExpressionAttributeValues: put.ExpressionAttributeValues,
	})
	if isConditionalCheckFailed(err) {
		return interfaces.ErrVersionConflict
	}
	return err
}

func (r *MealChangeDynamoRepository) ListByUser(ctx context.Context, userID string, status entities.RequestStatus) ([]entities.MealChangeRequest, error) {
	in := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(mealChangesUserIndex),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": stringValue(userID),
		},
		ScanIndexForward: aws.Bool(false),
	}
	if status != "" {
		in.FilterExpression = aws.String("#status = :status")
		in.ExpressionAttributeNames = map[string]string{"#status": "status"}
		in.ExpressionAttributeValues[":status"] = stringValue(string(status))
	}
	return r.query(ctx, in, 0)
}

func (r *MealChangeDynamoRepository) ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]entities.MealChangeRequest, error) {
	in := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(mealChangesStatusIndex),
		KeyConditionExpression: aws.String("#status = :pending AND cutoff_at <= :cutoff"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pending": stringValue(string(entities.RequestStatusPending)),
			":cutoff":  int64Value(cutoff.Unix()),
		},
	}
	if limit > 0 {
		in.Limit = aws.Int32(int32(limit))
	}
	return r.query(ctx, in, limit)
}

// query follows LastEvaluatedKey until the result is exhausted or limit
// items were read. limit <= 0 reads everything.
func (r *MealChangeDynamoRepository) query(ctx context.Context, in *dynamodb.QueryInput, limit int) ([]entities.MealChangeRequest, error) {
	var items []entities.MealChangeRequest
	for {
		out, err := r.ddb.Query(ctx, in)
		if err != nil {
			return nil, err
		}
		for _, raw := range out.Items {
			var it mealChangeItem
			if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
				return nil, err
			}
			items = append(items, fromMealChangeItem(it))
			if limit > 0 && len(items) == limit {
				return items, nil
			}
		}
		if len(out.LastEvaluatedKey) == 0 {
			return items, nil
		}
		in.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

func toMealChangeItem(m entities.MealChangeRequest, ttlGrace time.Duration) mealChangeItem {
	it := mealChangeItem{
		ID:              m.ID,
		UserID:          m.UserID,
		SubscriptionID:  m.SubscriptionID,
		OrderID:         m.OrderID,
		ChangeDate:      m.ChangeDate,
		DeliverySlot:    string(m.DeliverySlot),
		SlotKey:         m.SlotKey(),
		OriginalMeal:    toMealSnapshotItem(m.OriginalMeal),
		NewMeal:         toMealSnapshotItem(m.NewMeal),
		PriceAdjustment: m.PriceAdjustment.String(),
		Reason:          string(m.Reason),
		Status:          string(m.Status),
		PaymentRequired: m.PaymentRequired,
		PaymentStatus:   string(m.PaymentStatus),
		PaymentRail:     string(m.PaymentRail),
		TransactionID:   m.TransactionID,
		RefundStatus:    string(m.RefundStatus),
		OrderSyncStatus: string(m.OrderSyncStatus),
		CutoffTime:      formatTime(m.CutoffTime),
		CutoffAt:        m.CutoffTime.Unix(),
		RequestedAt:     formatTime(m.RequestedAt),
		RejectionReason: m.RejectionReason,
		Notes:           m.Notes,
		Version:         m.Version,
	}
	if m.ProcessedAt != nil {
		it.ProcessedAt = formatTime(*m.ProcessedAt)
	}
	if m.Status == entities.RequestStatusPending {
		it.ExpiresAt = m.CutoffTime.Add(ttlGrace).Unix()
	}
	return it
}

func fromMealChangeItem(it mealChangeItem) entities.MealChangeRequest {
	m := entities.MealChangeRequest{
		ID:              it.ID,
		UserID:          it.UserID,
		SubscriptionID:  it.SubscriptionID,
		OrderID:         it.OrderID,
		ChangeDate:      it.ChangeDate,
		DeliverySlot:    entities.DeliverySlot(it.DeliverySlot),
		OriginalMeal:    fromMealSnapshotItem(it.OriginalMeal),
		NewMeal:         fromMealSnapshotItem(it.NewMeal),
		PriceAdjustment: parseDecimal(it.PriceAdjustment),
		Reason:          entities.ChangeReason(it.Reason),
		Status:          entities.RequestStatus(it.Status),
		PaymentRequired: it.PaymentRequired,
		PaymentStatus:   entities.PaymentStatus(it.PaymentStatus),
		PaymentRail:     entities.RailKind(it.PaymentRail),
		TransactionID:   it.TransactionID,
		RefundStatus:    entities.RefundStatus(it.RefundStatus),
		OrderSyncStatus: entities.OrderSyncStatus(it.OrderSyncStatus),
		CutoffTime:      parseTime(it.CutoffTime),
		RequestedAt:     parseTime(it.RequestedAt),
		RejectionReason: it.RejectionReason,
		Notes:           it.Notes,
		Version:         it.Version,
	}
	if it.ProcessedAt != "" {
		t := parseTime(it.ProcessedAt)
		m.ProcessedAt = &t
	}
	return m
}

func toMealSnapshotItem(s entities.MealSnapshot) mealSnapshotItem {
	it := mealSnapshotItem{
		PlanTier:   string(s.PlanTier),
		Items:      toMenuItemItems(s.Items),
		BasePrice:  s.BasePrice.String(),
		TotalPrice: s.TotalPrice.String(),
	}
	for _, c := range s.CustomItems {
		it.CustomItems = append(it.CustomItems, customItemItem{
			Name:        c.Name,
			Description: c.Description,
			Price:       c.Price.String(),
			Quantity:    c.Quantity,
		})
	}
	return it
}

func fromMealSnapshotItem(it mealSnapshotItem) entities.MealSnapshot {
	s := entities.MealSnapshot{
		PlanTier:   entities.PlanTier(it.PlanTier),
		Items:      fromMenuItemItems(it.Items),
		BasePrice:  parseDecimal(it.BasePrice),
		TotalPrice: parseDecimal(it.TotalPrice),
	}
	for _, c := range it.CustomItems {
		s.CustomItems = append(s.CustomItems, entities.CustomItem{
			Name:        c.Name,
			Description: c.Description,
			Price:       parseDecimal(c.Price),
			Quantity:    c.Quantity,
		})
	}
	return s
}
