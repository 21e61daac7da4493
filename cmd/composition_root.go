package cmd

import (
	"log/slog"
	"time"

	httpadapter "fulfillment/internal/adapters/in/http"
	"fulfillment/internal/adapters/out/notify"
	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/adapters/out/shiprocket"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/application/webhook"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/jobs"
	"fulfillment/internal/pkg/pacer"

	"gorm.io/gorm"
)

// carrierPaceDefault spaces successive carrier calls in bulk runs and poll
// sweeps when no interval is configured.
const carrierPaceDefault = time.Second

type CompositionRoot struct {
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory
	provider   ports.ShipmentProviderClient
	notifier   ports.NotificationSink
	mapper     *services.StatusMapper
	config     Config
	logger     *slog.Logger
}

func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) CompositionRoot {
	return CompositionRoot{
		gormDB:     gormDB,
		uowFactory: *postgres.NewGormUnitOfWorkFactory(gormDB),
		provider: shiprocket.NewClient(shiprocket.Config{
			BaseURL:  config.ShiprocketBaseURL,
			Email:    config.ShiprocketEmail,
			Password: config.ShiprocketPassword,
		}, logger),
		notifier: notify.NewWhatsAppRelay(config.NotifyRelayURL, logger),
		mapper:   services.NewStatusMapper(),
		config:   config,
		logger:   logger,
	}
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) carrierPacer() *pacer.Pacer {
	interval := carrierPaceDefault
	if c.config.CarrierPaceInterval != "" {
		if parsed, err := time.ParseDuration(c.config.CarrierPaceInterval); err == nil {
			interval = parsed
		} else {
			c.logger.Warn("invalid CARRIER_PACE_INTERVAL, using default",
				"value", c.config.CarrierPaceInterval)
		}
	}
	return pacer.New(interval)
}

func (c *CompositionRoot) CreateCreateShipmentCommandHandler() commands.CreateShipmentCommandHandler {
	return commands.NewCreateShipmentCommandHandler(c.orderUoWFactory(), c.provider, c.notifier, c.logger)
}

func (c *CompositionRoot) CreateCancelShipmentCommandHandler() commands.CancelShipmentCommandHandler {
	return commands.NewCancelShipmentCommandHandler(c.orderUoWFactory(), c.provider, c.notifier, c.logger)
}

func (c *CompositionRoot) CreateUpdateStatusCommandHandler() commands.UpdateStatusCommandHandler {
	return commands.NewUpdateStatusCommandHandler(c.orderUoWFactory(), c.notifier, c.logger)
}

func (c *CompositionRoot) CreateApplyExternalStatusCommandHandler() commands.ApplyExternalStatusCommandHandler {
	return commands.NewApplyExternalStatusCommandHandler(c.orderUoWFactory(), c.mapper, c.notifier, c.logger)
}

func (c *CompositionRoot) CreateRefreshTrackingCommandHandler() commands.RefreshTrackingCommandHandler {
	applyHandler := c.CreateApplyExternalStatusCommandHandler()
	return commands.NewRefreshTrackingCommandHandler(c.orderUoWFactory(), c.provider, &applyHandler, c.logger)
}

func (c *CompositionRoot) CreateGenerateDocumentCommandHandler() commands.GenerateDocumentCommandHandler {
	return commands.NewGenerateDocumentCommandHandler(c.orderUoWFactory(), c.provider, c.logger)
}

func (c *CompositionRoot) CreateSchedulePickupCommandHandler() commands.SchedulePickupCommandHandler {
	return commands.NewSchedulePickupCommandHandler(c.orderUoWFactory(), c.provider, c.logger)
}

func (c *CompositionRoot) CreateBulkOperationCommandHandler() commands.BulkOperationCommandHandler {
	createHandler := c.CreateCreateShipmentCommandHandler()
	pickupHandler := c.CreateSchedulePickupCommandHandler()
	documentHandler := c.CreateGenerateDocumentCommandHandler()

	return commands.NewBulkOperationCommandHandler(
		&createHandler, &pickupHandler, &documentHandler,
		c.orderUoWFactory(), c.carrierPacer(), c.logger)
}

func (c *CompositionRoot) CreateCheckServiceabilityQueryHandler() queries.CheckServiceabilityQueryHandler {
	return queries.NewCheckServiceabilityQueryHandler(c.provider)
}

func (c *CompositionRoot) CreateGetActiveShipmentsQueryHandler() queries.GetActiveShipmentsQueryHandler {
	return queries.NewGetActiveShipmentsQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateWebhookIngestor() (*webhook.Ingestor, error) {
	applyHandler := c.CreateApplyExternalStatusCommandHandler()
	return webhook.NewIngestor(c.orderUoWFactory(), &applyHandler, c.logger)
}

func (c *CompositionRoot) CreateHTTPServer() (*httpadapter.Server, error) {
	ingestor, err := c.CreateWebhookIngestor()
	if err != nil {
		return nil, err
	}

	return httpadapter.NewServer(
		c.CreateCreateShipmentCommandHandler(),
		c.CreateCancelShipmentCommandHandler(),
		c.CreateUpdateStatusCommandHandler(),
		c.CreateRefreshTrackingCommandHandler(),
		c.CreateGenerateDocumentCommandHandler(),
		c.CreateSchedulePickupCommandHandler(),
		c.CreateBulkOperationCommandHandler(),
		c.CreateCheckServiceabilityQueryHandler(),
		c.CreateGetActiveShipmentsQueryHandler(),
		ingestor,
	), nil
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	refreshHandler := c.CreateRefreshTrackingCommandHandler()

	schedule := c.config.TrackingPollSchedule
	if schedule == "" {
		schedule = "0 */10 * * * *"
	}

	pollJob := jobs.NewTrackingPollJob(
		c.CreateGetActiveShipmentsQueryHandler(),
		&refreshHandler,
		c.carrierPacer(),
		schedule,
		c.logger,
	)

	return jobs.NewJobManager(pollJob)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}
