package otel

import (
	"go.opentelemetry.io/otel"

	"github.com/edaexpress/fooddelivery/internal/constants"
)

var Tracer = otel.Tracer(constants.AppCartService)
