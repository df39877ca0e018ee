package notification

import (
	"context"
	"os"
	"sync"
	"time"

	"mealchange_service/internal/domain/entities"
	"mealchange_service/internal/usecase/interfaces"
	"mealchange_service/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"
)

const (
	defaultNotificationsTableName = "notifications"
	defaultQueueSize              = 256
	writeTimeout                  = 5 * time.Second
)

type putItemAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

type notificationItem struct {
	ID        string            `dynamodbav:"id"`
	UserID    string            `dynamodbav:"user_id"`
	Title     string            `dynamodbav:"title"`
	Message   string            `dynamodbav:"message"`
	Type      string            `dynamodbav:"type"`
	Data      map[string]string `dynamodbav:"data,omitempty"`
	Read      bool              `dynamodbav:"read"`
	CreatedAt string            `dynamodbav:"created_at"`
}

// DynamoNotifier writes user notifications from a background worker.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: user_id-index (PK: user_id)
//
// Notify never blocks: when the queue is full the notification is dropped
// and logged.
type DynamoNotifier struct {
	ddb       putItemAPI
	tableName string
	log       logger.Logger
	queue     chan entities.Notification
	wg        sync.WaitGroup
	closeOnce sync.Once
}

var _ interfaces.INotifier = (*DynamoNotifier)(nil)

func NewDynamoNotifier(ddb putItemAPI, log logger.Logger, queueSize int) *DynamoNotifier {
	if log == nil {
		log = logger.NewNop()
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	tableName := os.Getenv("NOTIFICATIONS_TABLE")
	if tableName == "" {
		tableName = defaultNotificationsTableName
	}
	n := &DynamoNotifier{
		ddb:       ddb,
		tableName: tableName,
		log:       log,
		queue:     make(chan entities.Notification, queueSize),
	}
	n.wg.Add(1)
	go n.run()
	return n
}

func (n *DynamoNotifier) Notify(_ context.Context, msg entities.Notification) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	defer func() {
		// Notify after Close must not panic the caller.
		if recover() != nil {
			n.log.Warn("[notification] notifier closed, dropping", "user_id", msg.UserID, "title", msg.Title)
		}
	}()
	select {
	case n.queue <- msg:
	default:
		n.log.Warn("[notification] queue full, dropping", "user_id", msg.UserID, "title", msg.Title)
	}
}

// Close stops accepting notifications and waits for queued ones to be
// written, or for ctx to end.
func (n *DynamoNotifier) Close(ctx context.Context) error {
	n.closeOnce.Do(func() { close(n.queue) })
	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (n *DynamoNotifier) run() {
	defer n.wg.Done()
	for msg := range n.queue {
		n.write(msg)
	}
}

func (n *DynamoNotifier) write(msg entities.Notification) {
	av, err := attributevalue.MarshalMap(notificationItem{
		ID:        msg.ID,
		UserID:    msg.UserID,
		Title:     msg.Title,
		Message:   msg.Message,
		Type:      string(msg.Type),
		Data:      msg.Data,
		CreatedAt: msg.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		n.log.Error("[notification] marshal failed", "id", msg.ID, "err", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if _, err := n.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(n.tableName),
		Item:      av,
	}); err != nil {
		n.log.Error("[notification] write failed", "id", msg.ID, "user_id", msg.UserID, "err", err)
		return
	}
	n.log.Debug("[notification] written", "id", msg.ID, "user_id", msg.UserID)
}
