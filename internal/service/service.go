package service

import (
	"github.com/SheetMetalConnect/eryxon-flow-sub010/internal/events"
	"github.com/SheetMetalConnect/eryxon-flow-sub010/internal/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services is the service collection.
type Services struct {
	Capacity   *CapacityService
	Operation  *OperationService
	Routing    *RoutingService
	Production *ProductionService
	Quality    *QualityService
}

func NewServices(repos *repository.Repositories, db *gorm.DB, rdb *redis.Client, dispatcher events.Dispatcher, logger *zap.Logger) *Services {
	if dispatcher == nil {
		dispatcher = events.NopDispatcher{}
	}
	quality := NewQualityService(repos.Quantity, repos.Issue, rdb, logger)
	return &Services{
		Capacity:   NewCapacityService(repos.Cell),
		Operation:  NewOperationService(db, repos.Operation, repos.Cell, dispatcher, logger),
		Routing:    NewRoutingService(repos.Operation),
		Production: NewProductionService(repos.Quantity, repos.Operation, repos.ScrapReason, quality, dispatcher, logger),
		Quality:    quality,
	}
}
