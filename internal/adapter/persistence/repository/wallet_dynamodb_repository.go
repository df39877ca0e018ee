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
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultWalletsTableName = "wallets"
	defaultLedgerTableName  = "wallet_ledger"
)

type walletItem struct {
	UserID    string        `dynamodbav:"user_id"`
	Balance   decimalNumber `dynamodbav:"balance"`
	UpdatedAt string        `dynamodbav:"updated_at,omitempty"`
}

type ledgerItem struct {
	ID        string `dynamodbav:"id"`
	UserID    string `dynamodbav:"user_id"`
	Type      string `dynamodbav:"type"`
	Amount    string `dynamodbav:"amount"`
	Note      string `dynamodbav:"note"`
	RefID     string `dynamodbav:"ref_id"`
	CreatedAt string `dynamodbav:"created_at"`
}

// decimalNumber stores a decimal as a DynamoDB number so balance arithmetic
// and conditions run server side.
type decimalNumber struct{ decimal.Decimal }

func (d decimalNumber) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	return numberValue(d.Decimal), nil
}

func (d *decimalNumber) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	switch v := av.(type) {
	case *types.AttributeValueMemberN:
		d.Decimal = parseDecimal(v.Value)
	case *types.AttributeValueMemberS:
		d.Decimal = parseDecimal(v.Value)
	default:
		d.Decimal = decimal.Zero
	}
	return nil
}

// WalletDynamoRepository is the internal balance rail.
//
// Table requirements:
//   - wallets: PK user_id (string), balance (number)
//   - wallet_ledger: PK id (string), GSI user_id-index (PK: user_id)
//
// Every debit or credit updates the balance and puts one ledger line in a
// single TransactWriteItems call.
type WalletDynamoRepository struct {
	ddb         DynamoDBAPI
	tableName   string
	ledgerTable string
	now         func() time.Time
}

var _ interfaces.IWalletRepository = (*WalletDynamoRepository)(nil)

func NewWalletDynamoRepository(ddb DynamoDBAPI) *WalletDynamoRepository {
	return &WalletDynamoRepository{
		ddb:         ddb,
		tableName:   getenvDefault("WALLETS_TABLE", defaultWalletsTableName),
		ledgerTable: getenvDefault("WALLET_LEDGER_TABLE", defaultLedgerTableName),
		now:         time.Now,
	}
}

func (r *WalletDynamoRepository) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"user_id": stringValue(userID),
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return decimal.Zero, err
	}
	if len(out.Item) == 0 {
		return decimal.Zero, nil
	}
	var it walletItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return decimal.Zero, err
	}
	return it.Balance.Decimal, nil
}

// Debit fails with ErrInsufficientBalance when the wallet is missing or holds
// less than amount. The check and the decrement are one conditional write.
func (r *WalletDynamoRepository) Debit(ctx context.Context, userID string, amount decimal.Decimal, note, refID string) (entities.LedgerEntry, error) {
	if !amount.IsPositive() {
		return entities.LedgerEntry{}, interfaces.ErrInsufficientBalance
	}
	entry := r.newEntry(userID, entities.LedgerDebit, amount, note, refID)
	update := &types.Update{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"user_id": stringValue(userID),
		},
		UpdateExpression:    aws.String("SET #balance = #balance - :amount, #updated_at = :now"),
		ConditionExpression: aws.String("attribute_exists(#user_id) AND #balance >= :amount"),
		ExpressionAttributeNames: map[string]string{
			"#user_id":    "user_id",
			"#balance":    "balance",
			"#updated_at": "updated_at",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":amount": numberValue(amount),
			":now":    stringValue(formatTime(entry.CreatedAt)),
		},
	}
	if err := r.apply(ctx, update, entry); err != nil {
		if failed, ok := cancellationReasons(err); ok && len(failed) > 0 && failed[0] {
			return entities.LedgerEntry{}, interfaces.ErrInsufficientBalance
		}
		return entities.LedgerEntry{}, err
	}
	return entry, nil
}

// Credit creates the wallet on first use.
func (r *WalletDynamoRepository) Credit(ctx context.Context, userID string, amount decimal.Decimal, note, refID string) (entities.LedgerEntry, error) {
	entry := r.newEntry(userID, entities.LedgerCredit, amount, note, refID)
	update := &types.Update{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"user_id": stringValue(userID),
		},
		UpdateExpression: aws.String("SET #balance = if_not_exists(#balance, :zero) + :amount, #updated_at = :now"),
		ExpressionAttributeNames: map[string]string{
			"#balance":    "balance",
			"#updated_at": "updated_at",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":amount": numberValue(amount),
			":zero":   numberValue(decimal.Zero),
			":now":    stringValue(formatTime(entry.CreatedAt)),
		},
	}
	if err := r.apply(ctx, update, entry); err != nil {
		return entities.LedgerEntry{}, err
	}
	return entry, nil
}

func (r *WalletDynamoRepository) newEntry(userID string, typ entities.LedgerEntryType, amount decimal.Decimal, note, refID string) entities.LedgerEntry {
	return entities.LedgerEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      typ,
		Amount:    amount,
		Note:      note,
		RefID:     refID,
		CreatedAt: r.now().UTC(),
	}
}

func (r *WalletDynamoRepository) apply(ctx context.Context, update *types.Update, entry entities.LedgerEntry) error {
	av, err := attributevalue.MarshalMap(ledgerItem{
		ID:        entry.ID,
		UserID:    entry.UserID,
		Type:      string(entry.Type),
		Amount:    entry.Amount.String(),
		Note:      entry.Note,
		RefID:     entry.RefID,
		CreatedAt: formatTime(entry.CreatedAt),
	})
	if err != nil {
		return err
	}
	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Update: update},
			{Put: &types.Put{
				TableName:                aws.String(r.ledgerTable),
				Item:                     av,
				ConditionExpression:      aws.String("attribute_not_exists(#id)"),
				ExpressionAttributeNames: map[string]string{"#id": "id"},
			}},
		},
	})
	return err
}
