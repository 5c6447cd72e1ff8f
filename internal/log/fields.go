package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldShopID      = "shop_id"
	FieldBillID      = "bill_id"
	FieldPaymentID   = "payment_id"
	FieldBillNumber  = "bill_number"
	FieldAmountPaise = "amount_paise"
	FieldAccount     = "account"
	FieldRawAmount   = "raw_amount"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentBilling = "billing"
	ComponentLedger  = "ledger"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
	ComponentCache   = "cache"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpApply    = "apply"
	OpReverse  = "reverse"
	OpSync     = "sync"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)
