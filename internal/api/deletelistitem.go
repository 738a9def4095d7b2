package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// DeleteListItem removes a row from the grocery list by id.
func (h *Handler) DeleteListItem(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if isPreflight(request) {
		return respond(http.StatusOK, ""), nil
	}

	id := strings.TrimSpace(request.PathParameters["id"])
	if id == "" {
		return respond(http.StatusBadRequest, "Item ID is required"), nil
	}

	if err := h.store.Delete(h.cfg.GroceryTable, id); err != nil {
		logger.Errorf("error deleting grocery list item %s: %v", id, err)
		return respond(http.StatusInternalServerError, "Failed to delete item"), nil
	}

	return respond(http.StatusOK, fmt.Sprintf("Item with ID '%s' deleted successfully", id)), nil
}
