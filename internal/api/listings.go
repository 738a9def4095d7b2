package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/smaartit/GroceryRestockingSystem/internal/item"
	"github.com/smaartit/GroceryRestockingSystem/internal/store"
)

// GetPantryItems returns every pantry row as a JSON array.
func (h *Handler) GetPantryItems(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if isPreflight(request) {
		return respond(http.StatusOK, ""), nil
	}

	body, err := h.listing(h.cfg.PantryTable)
	if err != nil {
		logger.Errorf("error listing pantry items: %v", err)
		return respond(http.StatusInternalServerError, "Failed to get pantry items"), nil
	}

	return respond(http.StatusOK, body), nil
}

// GetGroceryList returns every grocery list row as a JSON array. The
// scan is fronted by a short-TTL cache when one is configured; a
// stale-but-recent listing is acceptable here because the pipeline
// fills the list asynchronously anyway.
func (h *Handler) GetGroceryList(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if isPreflight(request) {
		return respond(http.StatusOK, ""), nil
	}

	if body, ok := h.cache.Get(); ok {
		logger.Debugf("returning cached grocery list")
		return respond(http.StatusOK, body), nil
	}

	body, err := h.listing(h.cfg.GroceryTable)
	if err != nil {
		logger.Errorf("error listing grocery list items: %v", err)
		return respond(http.StatusInternalServerError, "Failed to get grocery list items"), nil
	}

	h.cache.Put(body)
	return respond(http.StatusOK, body), nil
}

func (h *Handler) listing(tableName string) (string, error) {
	items, err := h.store.ScanAll(tableName, store.ScanPageLimit)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(item.Entries(items))
	if err != nil {
		return "", err
	}

	return string(body), nil
}
