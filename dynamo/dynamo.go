// Package dynamo provides a storage backend over an Amazon DynamoDB table.
//
// Items are keyed by a sharded partition key (see [Config.NumShards]) and the
// storage key as sort key. A non-zero expiry is written to the "ttl" attribute, so
// enable DynamoDB TTL on it to have expired items removed; until then Get already
// treats them as missing.
//
// Register the backend and expose a [Table] as its raw store:
//
//	table, err := dynamo.Open(ctx, dynamo.DefaultConfig())
//	reg := dynamo.Register(storage.DefaultRegistry())
//	env := storage.NewEnvironment(storage.WithWindowStore(dynamo.BackendName, table))
//	f, err := storage.New(ctx, dynamo.BackendName, storage.WithRegistry(reg), storage.WithEnvironment(env))
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/jacentio/webstorage/internal/shard"
	"github.com/jacentio/webstorage/storage"
)

// BackendName is the registry name of the DynamoDB backend.
const BackendName = "dynamodb"

// API is the subset of *dynamodb.Client used by the backend.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// Config holds configuration for a Table.
type Config struct {
	// Table is the DynamoDB table name. It needs a string partition key "pk"
	// and a string sort key "sk".
	// Default: "webstorage_items"
	Table string

	// Namespace prefixes every partition key, so several applications can share
	// one table.
	// Default: "default"
	Namespace string

	// NumShards spreads one namespace over several partitions.
	// Default: 1, Max: 256
	NumShards int
}

// DefaultConfig returns sensible defaults for a single application.
func DefaultConfig() Config {
	return Config{
		Table:     "webstorage_items",
		Namespace: "default",
		NumShards: 1,
	}
}

// validate ensures config values are within acceptable bounds.
func (c *Config) validate() {
	if c.Table == "" {
		c.Table = "webstorage_items"
	}
	if c.Namespace == "" {
		c.Namespace = "default"
	}
	if c.NumShards < 1 {
		c.NumShards = 1
	}
	if c.NumShards > shard.MaxShards {
		c.NumShards = shard.MaxShards
	}
}

// Table is the raw store handed to the DynamoDB adapter.
type Table struct {
	client API
	config Config
	now    func() time.Time
}

// NewTable creates a Table over client.
func NewTable(client API, cfg Config) *Table {
	cfg.validate()
	return &Table{
		client: client,
		config: cfg,
		now:    time.Now,
	}
}

// Open creates a Table using the default AWS configuration chain.
func Open(ctx context.Context, cfg Config, optFns ...func(*config.LoadOptions) error) (*Table, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewTable(dynamodb.NewFromConfig(awsCfg), cfg), nil
}

// Config returns the table configuration.
func (t *Table) Config() Config {
	return t.config
}

// record is the item layout of a stored key.
type record struct {
	PK        string `dynamodbav:"pk"`
	SK        string `dynamodbav:"sk"`
	Value     string `dynamodbav:"value"`
	TTL       int64  `dynamodbav:"ttl,omitempty"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

func (t *Table) key(k string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pk": &types.AttributeValueMemberS{Value: shard.PartitionKey(t.config.Namespace, k, t.config.NumShards)},
		"sk": &types.AttributeValueMemberS{Value: k},
	}
}

// IsExpired checks if an item carries a ttl at or before now.
func IsExpired(item map[string]types.AttributeValue, now time.Time) bool {
	ttlAttr, exists := item["ttl"]
	if !exists {
		return false // No TTL = never expires
	}
	ttlNum, ok := ttlAttr.(*types.AttributeValueMemberN)
	if !ok {
		return false
	}
	ttl, err := strconv.ParseInt(ttlNum.Value, 10, 64)
	if err != nil {
		return false
	}
	return ttl <= now.Unix()
}

// Adapter returns the storage.Adapter for DynamoDB tables.
func Adapter() storage.Adapter {
	return adapter{}
}

// Register returns a copy of reg with the DynamoDB backend added. A nil reg
// stands for the built-in registry.
func Register(reg *storage.Registry) *storage.Registry {
	frag := storage.NewRegistry()
	frag.Register(BackendName, adapter{})
	return storage.MergeRegistry(reg, frag)
}

type adapter struct{}

func (adapter) SetItem(ctx context.Context, key string, value any, expiry time.Time, store any) error {
	t, err := table(store)
	if err != nil {
		return err
	}
	encoded, err := storage.Encode(value)
	if err != nil {
		return err
	}

	rec := record{
		PK:        shard.PartitionKey(t.config.Namespace, key, t.config.NumShards),
		SK:        key,
		Value:     encoded,
		UpdatedAt: t.now().UTC().Format(time.RFC3339),
	}
	if !expiry.IsZero() {
		rec.TTL = expiry.Unix()
	}
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}

	_, err = t.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(t.config.Table),
		Item:      item,
	})
	return mapError(err)
}

func (adapter) GetItem(ctx context.Context, key string, _ time.Time, store any) (any, error) {
	t, err := table(store)
	if err != nil {
		return nil, err
	}

	result, err := t.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(t.config.Table),
		Key:            t.key(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, mapError(err)
	}
	if result.Item == nil || IsExpired(result.Item, t.now()) {
		return nil, nil
	}

	var rec record
	if err := attributevalue.UnmarshalMap(result.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return storage.Decode(rec.Value)
}

func (adapter) RemoveItem(ctx context.Context, key string, _ time.Time, store any) error {
	t, err := table(store)
	if err != nil {
		return err
	}
	_, err = t.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(t.config.Table),
		Key:       t.key(key),
	})
	return mapError(err)
}

func table(store any) (*Table, error) {
	t, ok := store.(*Table)
	if !ok || t == nil {
		return nil, fmt.Errorf("%w: want *dynamo.Table, got %T", storage.ErrInvalidStore, store)
	}
	return t, nil
}

// mapError reports access denials as storage.ErrPermissionDenied, so a table the
// caller's role cannot use is treated as a disabled backend.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "AccessDeniedException" {
		return fmt.Errorf("%w: %v", storage.ErrPermissionDenied, err)
	}
	return err
}
