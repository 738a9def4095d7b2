// Package api implements the request handlers behind the HTTP
// surface. Each handler is a stateless function of the incoming
// proxy request; all of them answer preflight requests, attach the
// permissive cross-origin header set to every response, and map
// unexpected failures to a generic 500 without leaking detail.
package api

import (
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/juju/loggo"

	"github.com/smaartit/GroceryRestockingSystem/internal/config"
	"github.com/smaartit/GroceryRestockingSystem/internal/item"
	"github.com/smaartit/GroceryRestockingSystem/internal/listcache"
)

var logger = loggo.GetLogger("grocery.api")

// Store is the slice of the item store the handlers use.
type Store interface {
	Get(tableName, id string) (item.Item, error)
	Put(tableName string, it item.Item) error
	Delete(tableName, id string) error
	QueryByNameKey(tableName, indexName, nameKey string) ([]item.Item, error)
	ScanAll(tableName string, pageLimit int64) ([]item.Item, error)
}

// Handler bundles the request handlers with their dependencies.
// cache applies to the grocery listing only and may be nil.
type Handler struct {
	store Store
	cfg   *config.Config
	cache *listcache.Cache
}

// NewHandler creates a request handler set.
func NewHandler(store Store, cfg *config.Config, cache *listcache.Cache) *Handler {
	return &Handler{store: store, cfg: cfg, cache: cache}
}

func corsHeaders() map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type,Authorization,X-Amz-Date,X-Api-Key,X-Amz-Security-Token",
		"Access-Control-Allow-Methods": "GET,POST,PUT,DELETE,OPTIONS",
		"Content-Type":                 "application/json",
	}
}

func respond(statusCode int, body string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Body:       body,
		Headers:    corsHeaders(),
	}
}

func isPreflight(request events.APIGatewayProxyRequest) bool {
	return request.HTTPMethod == http.MethodOptions
}
