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

const defaultMenusTableName = "daily_menus"

type menuItemItem struct {
	Name        string `dynamodbav:"name"`
	Description string `dynamodbav:"description,omitempty"`
	Category    string `dynamodbav:"category,omitempty"`
	Price       string `dynamodbav:"price"`
}

type slotMenuItem struct {
	Items []menuItemItem `dynamodbav:"items"`
	Price string         `dynamodbav:"price"`
}

type dailyMenuItem struct {
	Date  string                             `dynamodbav:"date"`
	Tiers map[string]map[string]slotMenuItem `dynamodbav:"tiers"`
}

// MenuDynamoRepository reads daily menus published by the catalog team.
//
// Table requirements:
//   - PK: date (string, YYYY-MM-DD)
type MenuDynamoRepository struct {
	ddb       DynamoDBAPI
	tableName string
}

var _ interfaces.IMenuRepository = (*MenuDynamoRepository)(nil)

func NewMenuDynamoRepository(ddb DynamoDBAPI) *MenuDynamoRepository {
	return &MenuDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("MENUS_TABLE", defaultMenusTableName),
	}
}

func (r *MenuDynamoRepository) GetDailyMenu(ctx context.Context, date string) (entities.DailyMenu, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"date": stringValue(date),
		},
	})
	if err != nil {
		return entities.DailyMenu{}, err
	}
	if len(out.Item) == 0 {
		return entities.DailyMenu{}, nil
	}

	var it dailyMenuItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.DailyMenu{}, err
	}
	return fromDailyMenuItem(it), nil
}

func fromDailyMenuItem(it dailyMenuItem) entities.DailyMenu {
	menu := entities.DailyMenu{
		Date:  it.Date,
		Tiers: make(map[entities.PlanTier]map[entities.DeliverySlot]entities.SlotMenu, len(it.Tiers)),
	}
	for tier, slots := range it.Tiers {
		t, ok := entities.ParsePlanTier(tier)
		if !ok {
			continue
		}
		bySlot := make(map[entities.DeliverySlot]entities.SlotMenu, len(slots))
		for slot, sm := range slots {
			s, ok := entities.ParseDeliverySlot(slot)
			if !ok {
				continue
			}
			bySlot[s] = entities.SlotMenu{
				Items: fromMenuItemItems(sm.Items),
				Price: parseDecimal(sm.Price),
			}
		}
		menu.Tiers[t] = bySlot
	}
	return menu
}

func toMenuItemItems(items []entities.MenuItem) []menuItemItem {
	out := make([]menuItemItem, 0, len(items))
	for _, i := range items {
		out = append(out, menuItemItem{
			Name:        i.Name,
			Description: i.Description,
			Category:    i.Category,
			Price:       i.Price.String(),
		})
	}
	return out
}

func fromMenuItemItems(items []menuItemItem) []entities.MenuItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]entities.MenuItem, 0, len(items))
	for _, i := range items {
		out = append(out, entities.MenuItem{
			Name:        i.Name,
			Description: i.Description,
			Category:    i.Category,
			Price:       parseDecimal(i.Price),
		})
	}
	return out
}
