package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"github.com/smaartit/GroceryRestockingSystem/internal/item"
)

type addItemRequest struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// AddItem upserts a pantry item by (name, category). An existing
// row keeps its id and gets its quantity and price overwritten; a
// new row is created otherwise.
func (h *Handler) AddItem(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if isPreflight(request) {
		return respond(http.StatusOK, ""), nil
	}

	var body addItemRequest
	if err := json.Unmarshal([]byte(request.Body), &body); err != nil {
		logger.Errorf("cannot parse add item request: %v", err)
		return respond(http.StatusBadRequest, "Invalid request payload"), nil
	}

	name := strings.TrimSpace(body.Name)
	if name == "" {
		return respond(http.StatusBadRequest, "Item name is required"), nil
	}

	category := strings.TrimSpace(body.Category)
	if category == "" {
		category = item.DefaultCategory
	}
	quantity := body.Quantity
	if quantity < 1 {
		quantity = 1
	}
	price := body.Price
	if price < 0 {
		price = 0
	}

	matches, err := h.store.QueryByNameKey(h.cfg.PantryTable, h.cfg.PantryNameIndex, item.NameKeyOf(name))
	if err != nil {
		logger.Errorf("error looking up pantry item %q: %v", name, err)
		return respond(http.StatusInternalServerError, "Failed to add item"), nil
	}

	existing, found := matchCategory(matches, category)
	if found {
		existing.Quantity = quantity
		existing.Price = price
		if err := h.store.Put(h.cfg.PantryTable, existing); err != nil {
			logger.Errorf("error updating pantry item %q: %v", name, err)
			return respond(http.StatusInternalServerError, "Failed to add item"), nil
		}
		return respond(http.StatusOK, fmt.Sprintf("Item '%s' updated successfully", name)), nil
	}

	it := item.New(uuid.NewString(), name, category, quantity, price)
	if err := h.store.Put(h.cfg.PantryTable, it); err != nil {
		logger.Errorf("error adding pantry item %q: %v", name, err)
		return respond(http.StatusInternalServerError, "Failed to add item"), nil
	}

	return respond(http.StatusOK, fmt.Sprintf("Item '%s' added successfully", name)), nil
}

func matchCategory(items []item.Item, category string) (item.Item, bool) {
	for _, it := range items {
		if strings.EqualFold(strings.TrimSpace(it.Category), category) {
			return it, true
		}
	}
	return item.Item{}, false
}
