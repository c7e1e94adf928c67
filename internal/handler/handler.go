package handler

import (
	"errors"
	"net/http"

	"github.com/SheetMetalConnect/eryxon-flow-sub010/internal/apperr"
	"github.com/SheetMetalConnect/eryxon-flow-sub010/internal/events"
	"github.com/SheetMetalConnect/eryxon-flow-sub010/internal/service"
	"github.com/gin-gonic/gin"
)

// Handlers is the HTTP handler collection.
type Handlers struct {
	Cell       *CellHandler
	Operation  *OperationHandler
	Routing    *RoutingHandler
	Production *ProductionHandler
	Quality    *QualityHandler
	SSE        *SSEHandler
}

func NewHandlers(services *service.Services, hub *events.Hub) *Handlers {
	return &Handlers{
		Cell:       NewCellHandler(services.Capacity),
		Operation:  NewOperationHandler(services.Operation),
		Routing:    NewRoutingHandler(services.Routing),
		Production: NewProductionHandler(services.Production),
		Quality:    NewQualityHandler(services.Quality),
		SSE:        NewSSEHandler(hub),
	}
}

// GetUserID returns the authenticated user id set by the JWT middleware.
func GetUserID(c *gin.Context) string {
	return c.GetString("user_id")
}

// GetTenantID returns the tenant id set by the JWT middleware.
func GetTenantID(c *gin.Context) string {
	return c.GetString("tenant_id")
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": data})
}

// respondError maps the error taxonomy onto HTTP. Validation failures carry
// the offending field so clients can render actionable feedback.
func respondError(c *gin.Context, err error) {
	var (
		validationErr  *apperr.ValidationError
		notFoundErr    *apperr.NotFoundError
		capacityErr    *apperr.CapacityExceededError
		concurrencyErr *apperr.ConcurrencyConflictError
	)
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    10001,
			"message": validationErr.Error(),
			"detail":  validationErr,
		})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"code": 10002, "message": notFoundErr.Error()})
	case errors.As(err, &capacityErr):
		c.JSON(http.StatusConflict, gin.H{
			"code":    10003,
			"message": capacityErr.Error(),
			"detail": gin.H{
				"cell_id":     capacityErr.CellID,
				"current_wip": capacityErr.CurrentWIP,
				"limit":       capacityErr.Limit,
			},
		})
	case errors.As(err, &concurrencyErr):
		c.JSON(http.StatusConflict, gin.H{"code": 10005, "message": concurrencyErr.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
	}
}
