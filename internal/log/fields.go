package log

// Field names shared across components.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldOwnerID    = "owner_id"
	FieldRecordID   = "record_id"
	FieldTitle      = "title"
	FieldAmount     = "amount"
	FieldRecordType = "record_type"
	FieldCurrency   = "currency"
	FieldEventKind  = "event_kind"
	FieldCacheSize  = "cache_size"
)

// Component names.
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentRecords   = "records"
	ComponentAuth      = "auth"
	ComponentAnalytics = "analytics"
	ComponentCache     = "cache"
	ComponentPrefs     = "prefs"
	ComponentEvents    = "events"
	ComponentWorker    = "worker"
)

// Operation names.
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpReset    = "reset"
	OpAnalyze  = "analyze"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
