package log

// Common field names for structured logging.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status"
	FieldDuration   = "duration_ms"
	FieldError      = "error"

	FieldSubscriptionID = "subscription_id"
	FieldName           = "name"
	FieldPriceCents     = "price_cents"
	FieldCurrency       = "currency"
	FieldCycle          = "cycle"
	FieldCategory       = "category"
	FieldBaseCurrency   = "base_currency"
	FieldViewMode       = "view_mode"
	FieldBackend        = "backend"
	FieldFallback       = "fallback_rates"
)

// Standard component names.
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentStore   = "store"
	ComponentRates   = "rates"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
	ComponentStorage = "storage"
)
