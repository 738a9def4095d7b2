package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/suite"

	"github.com/smaartit/GroceryRestockingSystem/internal/config"
	"github.com/smaartit/GroceryRestockingSystem/internal/item"
	"github.com/smaartit/GroceryRestockingSystem/internal/listcache"
	"github.com/smaartit/GroceryRestockingSystem/internal/store"
)

// fakeStore is a programmable api.Store.
type fakeStore struct {
	getItem  item.Item
	getErr   error
	putErr   error
	delErr   error
	queryOut []item.Item
	queryErr error
	scanOut  []item.Item
	scanErr  error

	gets    []string
	puts    []item.Item
	deletes []string
	scans   int
	queries []string
	tables  []string
}

func (f *fakeStore) Get(tableName, id string) (item.Item, error) {
	f.tables = append(f.tables, tableName)
	f.gets = append(f.gets, id)
	return f.getItem, f.getErr
}

func (f *fakeStore) Put(tableName string, it item.Item) error {
	f.tables = append(f.tables, tableName)
	if f.putErr != nil {
		return f.putErr
	}
	f.puts = append(f.puts, it)
	return nil
}

func (f *fakeStore) Delete(tableName, id string) error {
	f.tables = append(f.tables, tableName)
	if f.delErr != nil {
		return f.delErr
	}
	f.deletes = append(f.deletes, id)
	return nil
}

func (f *fakeStore) QueryByNameKey(tableName, indexName, nameKey string) ([]item.Item, error) {
	f.tables = append(f.tables, tableName)
	f.queries = append(f.queries, nameKey)
	return f.queryOut, f.queryErr
}

func (f *fakeStore) ScanAll(tableName string, pageLimit int64) ([]item.Item, error) {
	f.tables = append(f.tables, tableName)
	f.scans++
	return f.scanOut, f.scanErr
}

type HandlerTestSuite struct {
	suite.Suite

	store   *fakeStore
	handler *Handler
}

func (suite *HandlerTestSuite) SetupTest() {
	suite.store = &fakeStore{}
	suite.handler = NewHandler(suite.store, testConfig(), nil)
}

func testConfig() *config.Config {
	return &config.Config{
		PantryTable:      "PantryItems",
		GroceryTable:     "GroceryList",
		PantryNameIndex:  "NameKeyIndex",
		GroceryNameIndex: "NameKeyIndex",
	}
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func post(body string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{HTTPMethod: http.MethodPost, Body: body}
}

func (suite *HandlerTestSuite) TestPreflight() {
	assert := suite.Assert()
	require := suite.Require()

	preflight := events.APIGatewayProxyRequest{HTTPMethod: http.MethodOptions}
	handlers := map[string]func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error){
		"AddItem":        suite.handler.AddItem,
		"ConsumeItem":    suite.handler.ConsumeItem,
		"DeleteListItem": suite.handler.DeleteListItem,
		"GetPantryItems": suite.handler.GetPantryItems,
		"GetGroceryList": suite.handler.GetGroceryList,
		"UpdateStock":    suite.handler.UpdateStock,
	}

	for name, handle := range handlers {
		resp, err := handle(context.Background(), preflight)
		require.Nil(err, name)
		assert.Equal(http.StatusOK, resp.StatusCode, name)
		assert.Empty(resp.Body, name)
		assert.Equal("*", resp.Headers["Access-Control-Allow-Origin"], name)
	}

	// Preflight must not touch the store.
	suite.Assert().Empty(suite.store.tables)
}

func (suite *HandlerTestSuite) TestAddItemBlankName() {
	resp, err := suite.handler.AddItem(context.Background(), post(`{"name":"   "}`))
	suite.Require().Nil(err)
	suite.Assert().Equal(http.StatusBadRequest, resp.StatusCode)
	// Validation failures perform no store mutation.
	suite.Assert().Empty(suite.store.tables)
}

func (suite *HandlerTestSuite) TestAddItemInvalidBody() {
	resp, err := suite.handler.AddItem(context.Background(), post(`{not json`))
	suite.Require().Nil(err)
	suite.Assert().Equal(http.StatusBadRequest, resp.StatusCode)
}

func (suite *HandlerTestSuite) TestAddItemCreates() {
	assert := suite.Assert()
	require := suite.Require()

	resp, err := suite.handler.AddItem(context.Background(), post(`{"name":"Milk"}`))
	require.Nil(err)
	assert.Equal(http.StatusOK, resp.StatusCode)
	assert.Equal("Item 'Milk' added successfully", resp.Body)

	require.Len(suite.store.queries, 1)
	assert.Equal("milk", suite.store.queries[0])

	require.Len(suite.store.puts, 1)
	it := suite.store.puts[0]
	assert.NotEmpty(it.Id)
	assert.Equal("Milk", it.Name)
	assert.Equal(item.DefaultCategory, it.Category)
	assert.Equal(1, it.Quantity) // defaulted, floored at 1
	assert.Zero(it.Price)
}

func (suite *HandlerTestSuite) TestAddItemOverwritesExisting() {
	assert := suite.Assert()
	require := suite.Require()

	existing := item.New("p-1", "Milk", "Dairy", 1, 1.5)
	suite.store.queryOut = []item.Item{existing}

	resp, err := suite.handler.AddItem(context.Background(),
		post(`{"name":"milk","category":"DAIRY","quantity":4,"price":2.5}`))
	require.Nil(err)
	assert.Equal(http.StatusOK, resp.StatusCode)

	require.Len(suite.store.puts, 1)
	it := suite.store.puts[0]
	assert.Equal("p-1", it.Id)
	assert.Equal(4, it.Quantity)
	assert.Equal(2.5, it.Price)
}

func (suite *HandlerTestSuite) TestAddItemLookupError() {
	suite.store.queryErr = errors.New("index offline")

	resp, err := suite.handler.AddItem(context.Background(), post(`{"name":"Milk"}`))
	suite.Require().Nil(err)
	suite.Assert().Equal(http.StatusInternalServerError, resp.StatusCode)
	suite.Assert().Equal("Failed to add item", resp.Body)
	suite.Assert().Empty(suite.store.puts)
}

func (suite *HandlerTestSuite) TestConsumeItemEmptyBody() {
	resp, err := suite.handler.ConsumeItem(context.Background(), post(""))
	suite.Require().Nil(err)
	suite.Assert().Equal(http.StatusBadRequest, resp.StatusCode)
}

func (suite *HandlerTestSuite) TestConsumeItemMissingId() {
	resp, err := suite.handler.ConsumeItem(context.Background(), post(`{}`))
	suite.Require().Nil(err)
	suite.Assert().Equal(http.StatusBadRequest, resp.StatusCode)
	suite.Assert().Empty(suite.store.gets)
}

func (suite *HandlerTestSuite) TestConsumeItemNotFound() {
	suite.store.getErr = store.ErrNoSuchItem

	resp, err := suite.handler.ConsumeItem(context.Background(), post(`{"itemId":"missing"}`))
	suite.Require().Nil(err)
	suite.Assert().Equal(http.StatusNotFound, resp.StatusCode)
}

func (suite *HandlerTestSuite) TestConsumeItemDecrements() {
	assert := suite.Assert()
	require := suite.Require()

	suite.store.getItem = item.New("p-1", "Milk", "Dairy", 3, 0)

	resp, err := suite.handler.ConsumeItem(context.Background(), post(`{"itemId":"p-1"}`))
	require.Nil(err)
	assert.Equal(http.StatusOK, resp.StatusCode)
	assert.Equal("Item 'Milk' consumed. Remaining quantity: 2", resp.Body)

	require.Len(suite.store.puts, 1)
	assert.Equal(2, suite.store.puts[0].Quantity)
}

func (suite *HandlerTestSuite) TestConsumeItemFloorsAtZero() {
	require := suite.Require()

	suite.store.getItem = item.New("p-1", "Milk", "Dairy", 0, 0)

	resp, err := suite.handler.ConsumeItem(context.Background(), post(`{"itemId":"p-1"}`))
	require.Nil(err)
	suite.Assert().Equal(http.StatusOK, resp.StatusCode)

	require.Len(suite.store.puts, 1)
	suite.Assert().Equal(0, suite.store.puts[0].Quantity)
}

func (suite *HandlerTestSuite) TestDeleteListItemMissingId() {
	req := events.APIGatewayProxyRequest{HTTPMethod: http.MethodDelete}

	resp, err := suite.handler.DeleteListItem(context.Background(), req)
	suite.Require().Nil(err)
	suite.Assert().Equal(http.StatusBadRequest, resp.StatusCode)
	suite.Assert().Empty(suite.store.deletes)
}

func (suite *HandlerTestSuite) TestDeleteListItem() {
	assert := suite.Assert()
	require := suite.Require()

	req := events.APIGatewayProxyRequest{
		HTTPMethod:     http.MethodDelete,
		PathParameters: map[string]string{"id": "g-1"},
	}

	resp, err := suite.handler.DeleteListItem(context.Background(), req)
	require.Nil(err)
	assert.Equal(http.StatusOK, resp.StatusCode)

	require.Len(suite.store.deletes, 1)
	assert.Equal("g-1", suite.store.deletes[0])
	assert.Equal("GroceryList", suite.store.tables[0])
}

func (suite *HandlerTestSuite) TestUpdateStockNotFound() {
	suite.store.getErr = store.ErrNoSuchItem

	req := events.APIGatewayProxyRequest{
		HTTPMethod:     http.MethodPut,
		PathParameters: map[string]string{"id": "missing"},
		Body:           `{"quantity":5}`,
	}

	resp, err := suite.handler.UpdateStock(context.Background(), req)
	suite.Require().Nil(err)
	suite.Assert().Equal(http.StatusNotFound, resp.StatusCode)
}

func (suite *HandlerTestSuite) TestUpdateStock() {
	assert := suite.Assert()
	require := suite.Require()

	suite.store.getItem = item.New("p-1", "Milk", "Dairy", 1, 0)

	req := events.APIGatewayProxyRequest{
		HTTPMethod:     http.MethodPut,
		PathParameters: map[string]string{"id": "p-1"},
		Body:           `{"quantity":5}`,
	}

	resp, err := suite.handler.UpdateStock(context.Background(), req)
	require.Nil(err)
	assert.Equal(http.StatusOK, resp.StatusCode)
	assert.Equal("Item 'Milk' stock updated to 5", resp.Body)

	require.Len(suite.store.puts, 1)
	assert.Equal(5, suite.store.puts[0].Quantity)
}

func (suite *HandlerTestSuite) TestUpdateStockFloorsNegative() {
	require := suite.Require()

	suite.store.getItem = item.New("p-1", "Milk", "Dairy", 1, 0)

	req := events.APIGatewayProxyRequest{
		HTTPMethod:     http.MethodPut,
		PathParameters: map[string]string{"id": "p-1"},
		Body:           `{"quantity":-3}`,
	}

	_, err := suite.handler.UpdateStock(context.Background(), req)
	require.Nil(err)
	require.Len(suite.store.puts, 1)
	suite.Assert().Equal(0, suite.store.puts[0].Quantity)
}

func (suite *HandlerTestSuite) TestGetPantryItems() {
	assert := suite.Assert()
	require := suite.Require()

	suite.store.scanOut = []item.Item{
		item.New("p-1", "Milk", "Dairy", 3, 2.5),
		item.New("p-2", "Bread", "Bakery", 1, 0),
	}

	req := events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet}
	resp, err := suite.handler.GetPantryItems(context.Background(), req)
	require.Nil(err)
	assert.Equal(http.StatusOK, resp.StatusCode)
	assert.Equal("application/json", resp.Headers["Content-Type"])

	var entries []map[string]interface{}
	require.Nil(json.Unmarshal([]byte(resp.Body), &entries))
	require.Len(entries, 2)
	assert.Equal("Milk", entries[0]["Name"])
	assert.Equal(false, entries[0]["finished"])
	// The aggregation key is internal and never leaves the service.
	assert.NotContains(entries[0], "NameKey")
}

func (suite *HandlerTestSuite) TestGetPantryItemsError() {
	suite.store.scanErr = errors.New("throttled")

	req := events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet}
	resp, err := suite.handler.GetPantryItems(context.Background(), req)
	suite.Require().Nil(err)
	suite.Assert().Equal(http.StatusInternalServerError, resp.StatusCode)
	suite.Assert().Equal("Failed to get pantry items", resp.Body)
}

func (suite *HandlerTestSuite) TestGetGroceryListUsesCache() {
	assert := suite.Assert()
	require := suite.Require()

	clk := testclock.NewClock(time.Now())
	handler := NewHandler(suite.store, testConfig(), listcache.New(clk, 30*time.Second))

	suite.store.scanOut = []item.Item{item.New("g-1", "Milk", "Dairy", 2, 0)}

	req := events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet}
	first, err := handler.GetGroceryList(context.Background(), req)
	require.Nil(err)
	assert.Equal(http.StatusOK, first.StatusCode)
	assert.Equal(1, suite.store.scans)

	// Within the TTL the scan is skipped even if the store breaks.
	suite.store.scanErr = fmt.Errorf("table offline")
	second, err := handler.GetGroceryList(context.Background(), req)
	require.Nil(err)
	assert.Equal(http.StatusOK, second.StatusCode)
	assert.Equal(first.Body, second.Body)
	assert.Equal(1, suite.store.scans)

	// Past the TTL the scan happens again.
	clk.Advance(31 * time.Second)
	suite.store.scanErr = nil
	_, err = handler.GetGroceryList(context.Background(), req)
	require.Nil(err)
	assert.Equal(2, suite.store.scans)
}

func (suite *HandlerTestSuite) TestGetGroceryListWithoutCache() {
	require := suite.Require()

	suite.store.scanOut = []item.Item{item.New("g-1", "Milk", "Dairy", 2, 0)}

	req := events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet}
	_, err := suite.handler.GetGroceryList(context.Background(), req)
	require.Nil(err)
	_, err = suite.handler.GetGroceryList(context.Background(), req)
	require.Nil(err)
	suite.Assert().Equal(2, suite.store.scans)
}
