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

type stockUpdateRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateStock overwrites a pantry item's quantity.
func (h *Handler) UpdateStock(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if isPreflight(request) {
		return respond(http.StatusOK, ""), nil
	}

	id := strings.TrimSpace(request.PathParameters["id"])
	if id == "" {
		return respond(http.StatusBadRequest, "Item ID is required"), nil
	}

	var body stockUpdateRequest
	if err := json.Unmarshal([]byte(request.Body), &body); err != nil {
		logger.Errorf("cannot parse stock update request: %v", err)
		return respond(http.StatusBadRequest, "Invalid request payload"), nil
	}

	it, err := h.store.Get(h.cfg.PantryTable, id)
	if err == store.ErrNoSuchItem {
		return respond(http.StatusNotFound, fmt.Sprintf("Item with Id '%s' not found", id)), nil
	}
	if err != nil {
		logger.Errorf("error loading pantry item %s: %v", id, err)
		return respond(http.StatusInternalServerError, "Failed to update stock"), nil
	}

	it.Quantity = body.Quantity
	if it.Quantity < 0 {
		it.Quantity = 0
	}

	if err := h.store.Put(h.cfg.PantryTable, it); err != nil {
		logger.Errorf("error writing pantry item %s: %v", id, err)
		return respond(http.StatusInternalServerError, "Failed to update stock"), nil
	}

	return respond(http.StatusOK, fmt.Sprintf("Item '%s' stock updated to %d", it.Name, it.Quantity)), nil
}
