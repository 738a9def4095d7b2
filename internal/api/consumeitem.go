package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/smaartit/GroceryRestockingSystem/internal/store"
)

type consumeItemRequest struct {
	ItemId string `json:"itemId"`
}

// ConsumeItem decrements a pantry item's quantity by one, floored at
// zero. The write lands on the pantry table, so the change feed picks
// it up and the pipeline reflects the consumption into the grocery
// list asynchronously.
func (h *Handler) ConsumeItem(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if isPreflight(request) {
		return respond(http.StatusOK, ""), nil
	}

	if strings.TrimSpace(request.Body) == "" {
		return respond(http.StatusBadRequest, "Request body cannot be empty"), nil
	}

	var body consumeItemRequest
	if err := json.Unmarshal([]byte(request.Body), &body); err != nil {
		logger.Errorf("cannot parse consume item request: %v", err)
		return respond(http.StatusBadRequest, "Invalid request payload"), nil
	}

	id := strings.TrimSpace(body.ItemId)
	if id == "" {
		return respond(http.StatusBadRequest, "Item id is required"), nil
	}

	it, err := h.store.Get(h.cfg.PantryTable, id)
	if err == store.ErrNoSuchItem {
		return respond(http.StatusNotFound, fmt.Sprintf("Item with Id '%s' not found", id)), nil
	}
	if err != nil {
		logger.Errorf("error loading pantry item %s: %v", id, err)
		return respond(http.StatusInternalServerError, "Failed to consume item"), nil
	}

	it.Quantity--
	if it.Quantity < 0 {
		it.Quantity = 0
	}

	if err := h.store.Put(h.cfg.PantryTable, it); err != nil {
		logger.Errorf("error writing pantry item %s: %v", id, err)
		return respond(http.StatusInternalServerError, "Failed to consume item"), nil
	}

	return respond(http.StatusOK, fmt.Sprintf("Item '%s' consumed. Remaining quantity: %d", it.Name, it.Quantity)), nil
}
