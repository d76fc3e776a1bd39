package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"

	"github.com/edaexpress/fooddelivery/delivery/internal/cache"
	"github.com/edaexpress/fooddelivery/delivery/internal/otel"
	"github.com/edaexpress/fooddelivery/delivery/pkg/pricing"
	"github.com/edaexpress/fooddelivery/delivery/pkg/request"
	"github.com/edaexpress/fooddelivery/delivery/pkg/response"
	"github.com/edaexpress/fooddelivery/internal/config"
	inErrors "github.com/edaexpress/fooddelivery/internal/errors"
	"github.com/edaexpress/fooddelivery/internal/log"
	"github.com/edaexpress/fooddelivery/internal/repository"
)

const unavailableLabel = "Доставка недоступна"

type DeliveryService struct {
	pool    *pgxpool.Pool
	queries *repository.Queries
	cache   *redis.Client
	config  config.Delivery
}

func NewDeliveryService(
	pool *pgxpool.Pool,
	queries *repository.Queries,
	cache *redis.Client,
	config config.Delivery,
) DeliveryService {
	return DeliveryService{pool: pool, queries: queries, cache: cache, config: config}
}

func (s DeliveryService) GetSettings(c context.Context) (response.DeliverySettings, error) {
	c, span := otel.Tracer.Start(c, "DeliveryService GetSettings")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "DeliveryService GetSettings").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding latest delivery settings").Logger()
	setting, err := s.queries.FindLatestDeliverySettings(c)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Info().Msg("no delivery settings stored yet")
			return response.DeliverySettings{}, inErrors.ErrSettingsNotFound
		}
		err = fmt.Errorf("failed finding latest delivery settings with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.DeliverySettings{}, err
	}
	logger.Info().Msg("found latest delivery settings")

	resp, err := setting.Response()
	if err != nil {
		err = fmt.Errorf("failed mapping delivery settings with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.DeliverySettings{}, err
	}
	return resp, nil
}

// CalculateCost resolves the delivery quote for an order subtotal. When no
// settings row exists or delivery is switched off, the quote degrades to
// zero cost with an unavailability label instead of failing.
func (s DeliveryService) CalculateCost(
	c context.Context,
	param request.CalculateCost,
) (pricing.Quote, error) {
	c, span := otel.Tracer.Start(c, "DeliveryService CalculateCost")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "DeliveryService CalculateCost").
		Str(log.KeySubtotal, param.OrderAmount.String()).
		Str(log.KeyZoneID, param.DeliveryZone).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding latest delivery settings").Logger()
	setting, err := s.queries.FindLatestDeliverySettings(c)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		err = fmt.Errorf("failed finding latest delivery settings with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return pricing.Quote{}, err
	}
	if errors.Is(err, pgx.ErrNoRows) || !setting.IsDeliveryAvailable {
		logger.Info().Msg("delivery is unavailable, returning zero-cost quote")
		return pricing.Quote{
			ZoneID:       param.DeliveryZone,
			Cost:         decimal.Zero,
			IsFree:       true,
			DeliveryTime: unavailableLabel,
		}, nil
	}

	logger = logger.With().Str(log.KeyProcess, "resolving quote").Logger()
	zones, err := setting.Zones()
	if err != nil {
		err = fmt.Errorf("failed decoding delivery zones with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return pricing.Quote{}, err
	}

	resolver := pricing.NewResolver(zones, pricing.Defaults{
		BaseCost:              repository.DecimalFromNumeric(setting.BaseDeliveryCost),
		FreeDeliveryThreshold: repository.DecimalFromNumeric(setting.FreeDeliveryThreshold),
		TimeMinMinutes:        int(setting.DeliveryTimeMin),
		TimeMaxMinutes:        int(setting.DeliveryTimeMax),
	})
	quote := resolver.Resolve(param.OrderAmount, param.DeliveryZone, param.Address)
	logger.Info().
		Str(log.KeyQuote, quote.Cost.String()).
		Bool("isFreeDelivery", quote.IsFree).
		Msg("resolved quote")
	return quote, nil
}

// CheckAvailability reports whether orders can be placed right now, taking
// both the availability switch and the weekly schedule into account.
func (s DeliveryService) CheckAvailability(
	c context.Context,
	now time.Time,
) (response.Availability, error) {
	c, span := otel.Tracer.Start(c, "DeliveryService CheckAvailability")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "DeliveryService CheckAvailability").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding latest delivery settings").Logger()
	setting, err := s.queries.FindLatestDeliverySettings(c)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Info().Msg("no delivery settings stored yet, delivery is unavailable")
			return response.Availability{
				IsAvailable: false,
				Zones:       map[string]pricing.Zone{},
			}, nil
		}
		err = fmt.Errorf("failed finding latest delivery settings with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Availability{}, err
	}

	zones, err := s.GetZones(c)
	if err != nil {
		return response.Availability{}, err
	}

	if !setting.IsDeliveryAvailable {
		logger.Info().Msg("delivery availability switch is off")
		return response.Availability{IsAvailable: false, Zones: zones}, nil
	}

	logger = logger.With().Str(log.KeyProcess, "checking weekly schedule").Logger()
	schedule, err := setting.Schedule()
	if err != nil || schedule == nil {
		// Malformed or absent working hours never block orders.
		if err != nil {
			logger.Info().Err(err).Msg("malformed working hours, treating delivery as open")
		}
		return response.Availability{IsAvailable: true, Zones: zones}, nil
	}

	available := schedule.AvailableAt(now)
	resp := response.Availability{IsAvailable: available, Zones: zones}
	if !available {
		resp.NextOpening = schedule.NextOpeningAt(now)
	}
	logger.Info().Bool("isAvailable", available).Msg("checked weekly schedule")
	return resp, nil
}

// GetZones reads the zone table through the redis cache.
func (s DeliveryService) GetZones(c context.Context) (map[string]pricing.Zone, error) {
	c, span := otel.Tracer.Start(c, "DeliveryService GetZones")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "DeliveryService GetZones").
		Str(log.KeyCacheKey, cache.KeyZones).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding zones in cache").Logger()
	cached, err := s.cache.Get(c, cache.KeyZones).Result()
	if err == nil {
		zones := map[string]pricing.Zone{}
		if err := json.Unmarshal([]byte(cached), &zones); err == nil {
			logger.Info().Msg("found zones in cache")
			return zones, nil
		}
		logger.Info().Msg("cached zones are malformed, falling back to database")
	} else if !errors.Is(err, redis.Nil) {
		logger.Info().Err(err).Msg("failed reading zones from cache, falling back to database")
	}

	logger = logger.With().Str(log.KeyProcess, "finding zones in database").Logger()
	setting, err := s.queries.FindLatestDeliverySettings(c)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return map[string]pricing.Zone{}, nil
		}
		err = fmt.Errorf("failed finding latest delivery settings with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	zones, err := setting.Zones()
	if err != nil {
		logger.Info().Err(err).Msg("stored zones are malformed, returning no zones")
		return map[string]pricing.Zone{}, nil
	}

	logger = logger.With().Str(log.KeyProcess, "caching zones").Logger()
	encoded, err := json.Marshal(zones)
	if err == nil {
		if err := s.cache.Set(c, cache.KeyZones, encoded, cache.TTL).Err(); err != nil {
			logger.Info().Err(err).Msg("failed caching zones")
		} else {
			logger.Info().Msg("cached zones")
		}
	}
	return zones, nil
}

func (s DeliveryService) GetWorkingHours(c context.Context) (pricing.WeeklySchedule, error) {
	c, span := otel.Tracer.Start(c, "DeliveryService GetWorkingHours")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "DeliveryService GetWorkingHours").
		Logger()

	empty := pricing.WeeklySchedule{Days: map[string]pricing.DayHours{}}

	logger = logger.With().Str(log.KeyProcess, "finding latest delivery settings").Logger()
	setting, err := s.queries.FindLatestDeliverySettings(c)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return empty, nil
		}
		err = fmt.Errorf("failed finding latest delivery settings with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return pricing.WeeklySchedule{}, err
	}

	schedule, err := setting.Schedule()
	if err != nil || schedule == nil {
		return empty, nil
	}
	return *schedule, nil
}

// UpdateSettings merges the provided fields into the latest settings row,
// creating one from the configured defaults when none exists. Empty zone
// maps never overwrite a populated zone table.
func (s DeliveryService) UpdateSettings(
	c context.Context,
	param request.UpdateDeliverySettings,
) (response.DeliverySettings, error) {
	c, span := otel.Tracer.Start(c, "DeliveryService UpdateSettings")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "DeliveryService UpdateSettings").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding latest delivery settings").Logger()
	existing, err := s.queries.FindLatestDeliverySettings(c)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		err = fmt.Errorf("failed finding latest delivery settings with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.DeliverySettings{}, err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		existing = s.defaultSetting()
	}

	logger = logger.With().Str(log.KeyProcess, "merging settings").Logger()
	merged := repository.UpdateDeliverySettingsParams{
		ID:                    existing.ID,
		BaseDeliveryCost:      existing.BaseDeliveryCost,
		FreeDeliveryThreshold: existing.FreeDeliveryThreshold,
		DeliveryZones:         existing.DeliveryZones,
		DeliveryTimeMin:       existing.DeliveryTimeMin,
		DeliveryTimeMax:       existing.DeliveryTimeMax,
		IsDeliveryAvailable:   existing.IsDeliveryAvailable,
		DeliveryWorkingHours:  existing.DeliveryWorkingHours,
		MaxProductsPerOrder:   existing.MaxProductsPerOrder,
	}
	if param.BaseDeliveryCost != nil {
		merged.BaseDeliveryCost = repository.NumericFromDecimal(*param.BaseDeliveryCost)
	}
	if param.FreeDeliveryThreshold != nil {
		merged.FreeDeliveryThreshold = repository.NumericFromDecimal(*param.FreeDeliveryThreshold)
	}
	if len(param.DeliveryZones) > 0 {
		encoded, err := json.Marshal(param.DeliveryZones)
		if err != nil {
			err = fmt.Errorf("failed encoding delivery zones with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.DeliverySettings{}, err
		}
		merged.DeliveryZones = encoded
	}
	if param.DeliveryTimeMin != nil {
		merged.DeliveryTimeMin = *param.DeliveryTimeMin
	}
	if param.DeliveryTimeMax != nil {
		merged.DeliveryTimeMax = *param.DeliveryTimeMax
	}
	if param.IsDeliveryAvailable != nil {
		merged.IsDeliveryAvailable = *param.IsDeliveryAvailable
	}
	if param.DeliveryWorkingHours != nil {
		encoded, err := json.Marshal(param.DeliveryWorkingHours)
		if err != nil {
			err = fmt.Errorf("failed encoding working hours with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.DeliverySettings{}, err
		}
		merged.DeliveryWorkingHours = encoded
	}
	if param.MaxProductsPerOrder != nil {
		merged.MaxProductsPerOrder = *param.MaxProductsPerOrder
	}

	logger = logger.With().Str(log.KeyProcess, "saving settings").Logger()
	var saved repository.DeliverySetting
	if existing.ID == uuid.Nil {
		saved, err = s.queries.InsertDeliverySettings(c, repository.InsertDeliverySettingsParams{
			BaseDeliveryCost:      merged.BaseDeliveryCost,
			FreeDeliveryThreshold: merged.FreeDeliveryThreshold,
			DeliveryZones:         merged.DeliveryZones,
			DeliveryTimeMin:       merged.DeliveryTimeMin,
			DeliveryTimeMax:       merged.DeliveryTimeMax,
			IsDeliveryAvailable:   merged.IsDeliveryAvailable,
			DeliveryWorkingHours:  merged.DeliveryWorkingHours,
			MaxProductsPerOrder:   merged.MaxProductsPerOrder,
		})
	} else {
		saved, err = s.queries.UpdateDeliverySettings(c, merged)
	}
	if err != nil {
		err = fmt.Errorf("failed saving delivery settings with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.DeliverySettings{}, err
	}
	logger.Info().Msg("saved delivery settings")

	s.invalidateCache(c, logger)

	resp, err := saved.Response()
	if err != nil {
		err = fmt.Errorf("failed mapping delivery settings with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.DeliverySettings{}, err
	}
	return resp, nil
}

func (s DeliveryService) UpdateWorkingHours(
	c context.Context,
	schedule pricing.WeeklySchedule,
) (response.WorkingHours, error) {
	c, span := otel.Tracer.Start(c, "DeliveryService UpdateWorkingHours")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "DeliveryService UpdateWorkingHours").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding latest delivery settings").Logger()
	existing, err := s.queries.FindLatestDeliverySettings(c)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return response.WorkingHours{}, inErrors.ErrSettingsNotFound
		}
		err = fmt.Errorf("failed finding latest delivery settings with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.WorkingHours{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "saving working hours").Logger()
	encoded, err := json.Marshal(schedule)
	if err != nil {
		err = fmt.Errorf("failed encoding working hours with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.WorkingHours{}, err
	}
	if _, err := s.queries.UpdateDeliveryWorkingHours(c, repository.UpdateDeliveryWorkingHoursParams{
		ID:                   existing.ID,
		DeliveryWorkingHours: encoded,
	}); err != nil {
		err = fmt.Errorf("failed saving working hours with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.WorkingHours{}, err
	}
	logger.Info().Msg("saved working hours")

	s.invalidateCache(c, logger)

	return response.WorkingHours{
		Message:      "Рабочие часы обновлены",
		WorkingHours: schedule,
	}, nil
}

// CreateZone adds a zone under the next free zone_N id. Ids of deleted
// zones are reused so the numbering stays dense.
func (s DeliveryService) CreateZone(
	c context.Context,
	param request.CreateZone,
) (string, pricing.Zone, error) {
	c, span := otel.Tracer.Start(c, "DeliveryService CreateZone")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "DeliveryService CreateZone").
		Logger()

	setting, zones, err := s.settingWithZones(c, span, logger)
	if err != nil {
		return "", pricing.Zone{}, err
	}

	zoneID := ""
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("zone_%d", n)
		if _, taken := zones[candidate]; !taken {
			zoneID = candidate
			break
		}
	}

	zone := pricing.Zone{
		Name:         param.Name,
		Cost:         param.Cost,
		DeliveryTime: param.DeliveryTime,
		Radius:       5,
	}
	if param.MinOrderAmount != nil {
		zone.MinOrderAmount = *param.MinOrderAmount
	}
	if param.FreeDeliveryThreshold != nil {
		zone.FreeDeliveryThreshold = *param.FreeDeliveryThreshold
	}
	if param.Radius != nil {
		zone.Radius = *param.Radius
	}
	if zone.DeliveryTime == "" {
		zone.DeliveryTime = "30-60 мин"
	}
	zones[zoneID] = zone

	if err := s.saveZones(c, span, logger, setting, zones); err != nil {
		return "", pricing.Zone{}, err
	}
	logger.Info().Str(log.KeyZoneID, zoneID).Msg("created zone")
	return zoneID, zone, nil
}

func (s DeliveryService) UpdateZone(
	c context.Context,
	zoneID string,
	param request.UpdateZone,
) (pricing.Zone, error) {
	c, span := otel.Tracer.Start(c, "DeliveryService UpdateZone")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "DeliveryService UpdateZone").
		Str(log.KeyZoneID, zoneID).
		Logger()

	setting, zones, err := s.settingWithZones(c, span, logger)
	if err != nil {
		return pricing.Zone{}, err
	}

	zone, ok := zones[zoneID]
	if !ok {
		return pricing.Zone{}, inErrors.ErrZoneNotFound
	}
	if param.Name != nil {
		zone.Name = *param.Name
	}
	if param.Cost != nil {
		zone.Cost = *param.Cost
	}
	if param.MinOrderAmount != nil {
		zone.MinOrderAmount = *param.MinOrderAmount
	}
	if param.FreeDeliveryThreshold != nil {
		zone.FreeDeliveryThreshold = *param.FreeDeliveryThreshold
	}
	if param.DeliveryTime != nil {
		zone.DeliveryTime = *param.DeliveryTime
	}
	if param.Radius != nil {
		zone.Radius = *param.Radius
	}
	zones[zoneID] = zone

	if err := s.saveZones(c, span, logger, setting, zones); err != nil {
		return pricing.Zone{}, err
	}
	logger.Info().Msg("updated zone")
	return zone, nil
}

func (s DeliveryService) DeleteZone(c context.Context, zoneID string) error {
	c, span := otel.Tracer.Start(c, "DeliveryService DeleteZone")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "DeliveryService DeleteZone").
		Str(log.KeyZoneID, zoneID).
		Logger()

	setting, zones, err := s.settingWithZones(c, span, logger)
	if err != nil {
		return err
	}
	if _, ok := zones[zoneID]; !ok {
		return inErrors.ErrZoneNotFound
	}
	delete(zones, zoneID)

	if err := s.saveZones(c, span, logger, setting, zones); err != nil {
		return err
	}
	logger.Info().Msg("deleted zone")
	return nil
}

func (s DeliveryService) settingWithZones(
	c context.Context,
	span trace.Span,
	logger zerolog.Logger,
) (repository.DeliverySetting, map[string]pricing.Zone, error) {
	logger = logger.With().Str(log.KeyProcess, "finding latest delivery settings").Logger()
	setting, err := s.queries.FindLatestDeliverySettings(c)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.DeliverySetting{}, nil, inErrors.ErrSettingsNotFound
		}
		err = fmt.Errorf("failed finding latest delivery settings with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return repository.DeliverySetting{}, nil, err
	}
	zones, err := setting.Zones()
	if err != nil {
		logger.Info().Err(err).Msg("stored zones are malformed, starting from an empty table")
		zones = map[string]pricing.Zone{}
	}
	return setting, zones, nil
}

func (s DeliveryService) saveZones(
	c context.Context,
	span trace.Span,
	logger zerolog.Logger,
	setting repository.DeliverySetting,
	zones map[string]pricing.Zone,
) error {
	logger = logger.With().Str(log.KeyProcess, "saving zones").Logger()
	encoded, err := json.Marshal(zones)
	if err != nil {
		err = fmt.Errorf("failed encoding delivery zones with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	if _, err := s.queries.UpdateDeliveryZones(c, repository.UpdateDeliveryZonesParams{
		ID:            setting.ID,
		DeliveryZones: encoded,
	}); err != nil {
		err = fmt.Errorf("failed saving delivery zones with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	s.invalidateCache(c, logger)
	return nil
}

func (s DeliveryService) invalidateCache(c context.Context, logger zerolog.Logger) {
	logger = logger.With().Str(log.KeyProcess, "invalidating cache").Logger()
	if err := s.cache.Del(c, cache.KeyZones, cache.KeySettings).Err(); err != nil {
		logger.Info().Err(err).Msg("failed invalidating cache")
		return
	}
	logger.Info().Msg("invalidated cache")
}

func (s DeliveryService) defaultSetting() repository.DeliverySetting {
	return repository.DeliverySetting{
		BaseDeliveryCost:      repository.NumericFromDecimal(decimal.NewFromFloat(s.config.BaseCost)),
		FreeDeliveryThreshold: repository.NumericFromDecimal(decimal.NewFromFloat(s.config.FreeDeliveryThreshold)),
		DeliveryTimeMin:       int32(s.config.TimeMinMinutes),
		DeliveryTimeMax:       int32(s.config.TimeMaxMinutes),
		IsDeliveryAvailable:   true,
		MaxProductsPerOrder:   s.config.MaxProductsPerOrder,
	}
}
