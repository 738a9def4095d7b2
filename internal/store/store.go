// Package store is the Item Store client. It wraps the DynamoDB API
// with the handful of typed operations the system needs: get and put
// by id, delete, name key lookups through a secondary index, and a
// paginated full scan.
package store

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	db "github.com/aws/aws-sdk-go/service/dynamodb"
	dbattribute "github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"

	"github.com/smaartit/GroceryRestockingSystem/internal/item"
)

// ErrNoSuchItem is returned when no item is found for the given id.
var ErrNoSuchItem = errors.New("store: no such item")

// ScanPageLimit is the number of rows fetched per scan page.
const ScanPageLimit = 100

// Store performs item operations against DynamoDB tables.
type Store struct {
	db dynamodbiface.DynamoDBAPI
}

// New creates a store backed by the given DynamoDB client.
func New(dbapi dynamodbiface.DynamoDBAPI) *Store {
	return &Store{db: dbapi}
}

// Get fetches an item by id. It returns
// ErrNoSuchItem if the row does not exist.
func (s *Store) Get(tableName, id string) (item.Item, error) {
	resp, err := s.db.GetItem(&db.GetItemInput{
		Key: map[string]*db.AttributeValue{
			"Id": {S: aws.String(id)},
		},
		TableName: aws.String(tableName),
	})
	if err != nil {
		return item.Item{}, fmt.Errorf("store: cannot get item (%v)", err)
	}
	if len(resp.Item) == 0 {
		return item.Item{}, ErrNoSuchItem
	}

	var it item.Item
	err = dbattribute.UnmarshalMap(resp.Item, &it)
	if err != nil {
		return item.Item{}, fmt.Errorf("store: invalid item (%v)", err)
	}

	return it, nil
}

// Put upserts an item by id, overwriting the whole row. The item
// passes through the normalization boundary before it is written.
func (s *Store) Put(tableName string, it item.Item) error {
	mitem, err := dbattribute.MarshalMap(it.Normalize())
	if err != nil {
		return fmt.Errorf("store: invalid item (%v)", err)
	}

	_, err = s.db.PutItem(&db.PutItemInput{
		Item:      mitem,
		TableName: aws.String(tableName),
	})
	if err != nil {
		return fmt.Errorf("store: cannot put item (%v)", err)
	}

	return nil
}

// Delete removes an item by id. Deleting
// an absent row is not an error.
func (s *Store) Delete(tableName, id string) error {
	_, err := s.db.DeleteItem(&db.DeleteItemInput{
		Key: map[string]*db.AttributeValue{
			"Id": {S: aws.String(id)},
		},
		TableName: aws.String(tableName),
	})
	if err != nil {
		return fmt.Errorf("store: cannot delete item (%v)", err)
	}

	return nil
}

// QueryByNameKey returns the rows whose name key matches exactly,
// via the given secondary index. A failed query is returned as an
// error and is never mistaken for an empty result.
func (s *Store) QueryByNameKey(tableName, indexName, nameKey string) ([]item.Item, error) {
	resp, err := s.db.Query(&db.QueryInput{
		TableName:              aws.String(tableName),
		IndexName:              aws.String(indexName),
		KeyConditionExpression: aws.String("#NK = :nk"),
		ExpressionAttributeNames: map[string]*string{
			"#NK": aws.String("NameKey"),
		},
		ExpressionAttributeValues: map[string]*db.AttributeValue{
			":nk": {S: aws.String(nameKey)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("store: cannot query items (%v)", err)
	}

	items := make([]item.Item, 0, len(resp.Items))
	for _, mitem := range resp.Items {
		var it item.Item
		err = dbattribute.UnmarshalMap(mitem, &it)
		if err != nil {
			return nil, fmt.Errorf("store: invalid item (%v)", err)
		}
		items = append(items, it)
	}

	return items, nil
}

// ScanAll returns every row in the table, following the last
// evaluated key until the scan is exhausted. pageLimit caps the
// rows fetched per request.
func (s *Store) ScanAll(tableName string, pageLimit int64) ([]item.Item, error) {
	input := &db.ScanInput{
		TableName: aws.String(tableName),
		Limit:     aws.Int64(pageLimit),
	}

	var items []item.Item
	for {
		resp, err := s.db.Scan(input)
		if err != nil {
			return nil, fmt.Errorf("store: cannot scan table (%v)", err)
		}

		for _, mitem := range resp.Items {
			var it item.Item
			err = dbattribute.UnmarshalMap(mitem, &it)
			if err != nil {
				return nil, fmt.Errorf("store: invalid item (%v)", err)
			}
			items = append(items, it)
		}

		if len(resp.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = resp.LastEvaluatedKey
	}

	return items, nil
}
