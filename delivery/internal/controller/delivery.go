package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/edaexpress/fooddelivery/delivery/internal/otel"
	"github.com/edaexpress/fooddelivery/delivery/internal/service"
	"github.com/edaexpress/fooddelivery/delivery/pkg/pricing"
	"github.com/edaexpress/fooddelivery/delivery/pkg/request"
	"github.com/edaexpress/fooddelivery/internal/constants"
	inErrors "github.com/edaexpress/fooddelivery/internal/errors"
	inHttp "github.com/edaexpress/fooddelivery/internal/http"
	"github.com/edaexpress/fooddelivery/internal/log"
	"github.com/edaexpress/fooddelivery/internal/middleware"
)

type DeliveryController struct {
	service *service.DeliveryService
}

func AttachDeliveryController(router *mux.Router, service *service.DeliveryService) {
	controller := DeliveryController{service: service}

	public := router.PathPrefix("/delivery").Subrouter()
	public.HandleFunc("/settings", controller.GetSettings).Methods(http.MethodGet)
	public.HandleFunc("/calculate", controller.CalculateCost).Methods(http.MethodGet)
	public.HandleFunc("/available", controller.CheckAvailability).Methods(http.MethodGet)
	public.HandleFunc("/zones", controller.GetZones).Methods(http.MethodGet)
	public.HandleFunc("/working-hours", controller.GetWorkingHours).Methods(http.MethodGet)

	admin := router.PathPrefix("/delivery").Subrouter()
	admin.Use(middleware.Auth(constants.AppDeliveryService))
	admin.HandleFunc("/settings", controller.UpdateSettings).Methods(http.MethodPut)
	admin.HandleFunc("/zones", controller.CreateZone).Methods(http.MethodPost)
	admin.HandleFunc("/zones/{zoneId}", controller.UpdateZone).Methods(http.MethodPut)
	admin.HandleFunc("/zones/{zoneId}", controller.DeleteZone).Methods(http.MethodDelete)
	admin.HandleFunc("/working-hours", controller.UpdateWorkingHours).Methods(http.MethodPut)
}

func (t DeliveryController) GetSettings(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "DeliveryController GetSettings")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "DeliveryController GetSettings").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "getting settings").Logger()
	logger.Info().Msg("getting settings")
	c = logger.WithContext(c)
	settings, err := t.service.GetSettings(c)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, inErrors.ErrSettingsNotFound) {
			statusCode = http.StatusNotFound
		}
		err = fmt.Errorf("failed getting settings with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCode,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("got settings")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully got delivery settings",
		"data": map[string]interface{}{
			"settings": settings,
		},
	})
}

func (t DeliveryController) CalculateCost(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "DeliveryController CalculateCost")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "DeliveryController CalculateCost").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "parsing query params").Logger()
	logger.Info().Msg("parsing query params")
	query := r.URL.Query()
	orderAmount, err := decimal.NewFromString(query.Get("order_amount"))
	if err != nil {
		err = fmt.Errorf("failed parsing order_amount with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	if orderAmount.IsNegative() {
		err = errors.New("order_amount cannot be negative")
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	reqBody := request.CalculateCost{
		OrderAmount:  orderAmount,
		DeliveryZone: query.Get("delivery_zone"),
		Address:      query.Get("address"),
	}
	logger.Info().Msg("parsed query params")

	logger = logger.With().
		Str(log.KeyProcess, "calculating cost").
		Str(log.KeySubtotal, orderAmount.String()).
		Logger()
	logger.Info().Msg("calculating cost")
	c = logger.WithContext(c)
	quote, err := t.service.CalculateCost(c, reqBody)
	if err != nil {
		err = fmt.Errorf("failed calculating cost with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("calculated cost")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully calculated delivery cost",
		"data": map[string]interface{}{
			"quote": quote,
		},
	})
}

func (t DeliveryController) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "DeliveryController CheckAvailability")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "DeliveryController CheckAvailability").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "checking availability").Logger()
	logger.Info().Msg("checking availability")
	c = logger.WithContext(c)
	availability, err := t.service.CheckAvailability(c, time.Now())
	if err != nil {
		err = fmt.Errorf("failed checking availability with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("checked availability")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully checked delivery availability",
		"data":       availability,
	})
}

func (t DeliveryController) GetZones(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "DeliveryController GetZones")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "DeliveryController GetZones").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "getting zones").Logger()
	logger.Info().Msg("getting zones")
	c = logger.WithContext(c)
	zones, err := t.service.GetZones(c)
	if err != nil {
		err = fmt.Errorf("failed getting zones with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("got zones")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully got delivery zones",
		"data": map[string]interface{}{
			"zones": zones,
		},
	})
}

func (t DeliveryController) GetWorkingHours(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "DeliveryController GetWorkingHours")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "DeliveryController GetWorkingHours").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "getting working hours").Logger()
	logger.Info().Msg("getting working hours")
	c = logger.WithContext(c)
	schedule, err := t.service.GetWorkingHours(c)
	if err != nil {
		err = fmt.Errorf("failed getting working hours with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("got working hours")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully got working hours",
		"data": map[string]interface{}{
			"working_hours": schedule,
		},
	})
}

func (t DeliveryController) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "DeliveryController UpdateSettings")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "DeliveryController UpdateSettings").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding requestbody").Logger()
	logger.Info().Msg("decoding requestbody")
	reqBody := request.UpdateDeliverySettings{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "validating requestbody").Logger()
	logger.Info().Msg("validating request body")
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("validated request body")

	logger = logger.With().Str(log.KeyProcess, "updating settings").Logger()
	logger.Info().Msg("updating settings")
	c = logger.WithContext(c)
	settings, err := t.service.UpdateSettings(c, reqBody)
	if err != nil {
		err = fmt.Errorf("failed updating settings with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("updated settings")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully updated delivery settings",
		"data": map[string]interface{}{
			"settings": settings,
		},
	})
}

func (t DeliveryController) CreateZone(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "DeliveryController CreateZone")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "DeliveryController CreateZone").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding requestbody").Logger()
	logger.Info().Msg("decoding requestbody")
	reqBody := request.CreateZone{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "validating requestbody").Logger()
	logger.Info().Msg("validating request body")
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("validated request body")

	logger = logger.With().Str(log.KeyProcess, "creating zone").Logger()
	logger.Info().Msg("creating zone")
	c = logger.WithContext(c)
	zoneID, zone, err := t.service.CreateZone(c, reqBody)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, inErrors.ErrSettingsNotFound) {
			statusCode = http.StatusNotFound
		}
		err = fmt.Errorf("failed creating zone with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCode,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Str(log.KeyZoneID, zoneID).Msg("created zone")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusCreated,
		"message":    "successfully created delivery zone",
		"data": map[string]interface{}{
			"id":   zoneID,
			"zone": zone,
		},
	})
}

func (t DeliveryController) UpdateZone(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "DeliveryController UpdateZone")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "DeliveryController UpdateZone").
		Logger()

	pathValues := mux.Vars(r)
	zoneID := pathValues["zoneId"]
	logger = logger.With().Str(log.KeyZoneID, zoneID).Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding requestbody").Logger()
	logger.Info().Msg("decoding requestbody")
	reqBody := request.UpdateZone{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "updating zone").Logger()
	logger.Info().Msg("updating zone")
	c = logger.WithContext(c)
	zone, err := t.service.UpdateZone(c, zoneID, reqBody)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, inErrors.ErrZoneNotFound) ||
			errors.Is(err, inErrors.ErrSettingsNotFound) {
			statusCode = http.StatusNotFound
		}
		err = fmt.Errorf("failed updating zone with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCode,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("updated zone")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully updated delivery zone",
		"data": map[string]interface{}{
			"id":   zoneID,
			"zone": zone,
		},
	})
}

func (t DeliveryController) DeleteZone(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "DeliveryController DeleteZone")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "DeliveryController DeleteZone").
		Logger()

	pathValues := mux.Vars(r)
	zoneID := pathValues["zoneId"]
	logger = logger.With().Str(log.KeyZoneID, zoneID).Logger()

	logger = logger.With().Str(log.KeyProcess, "deleting zone").Logger()
	logger.Info().Msg("deleting zone")
	c = logger.WithContext(c)
	if err := t.service.DeleteZone(c, zoneID); err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, inErrors.ErrZoneNotFound) ||
			errors.Is(err, inErrors.ErrSettingsNotFound) {
			statusCode = http.StatusNotFound
		}
		err = fmt.Errorf("failed deleting zone with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCode,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("deleted zone")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully deleted delivery zone",
	})
}

func (t DeliveryController) UpdateWorkingHours(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "DeliveryController UpdateWorkingHours")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "DeliveryController UpdateWorkingHours").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding requestbody").Logger()
	logger.Info().Msg("decoding requestbody")
	reqBody := pricing.WeeklySchedule{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "updating working hours").Logger()
	logger.Info().Msg("updating working hours")
	c = logger.WithContext(c)
	workingHours, err := t.service.UpdateWorkingHours(c, reqBody)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, inErrors.ErrSettingsNotFound) {
			statusCode = http.StatusNotFound
		}
		err = fmt.Errorf("failed updating working hours with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCode,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("updated working hours")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully updated working hours",
		"data":       workingHours,
	})
}
