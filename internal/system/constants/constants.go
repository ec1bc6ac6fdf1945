package constants

const (
	APIBasePath             = "/api/v1"
	ContentTypeHeaderName   = "Content-Type"
	CorrelationIDHeaderName = "X-Correlation-ID"
	ContentTypeJSON         = "application/json"
	ContentTypeCSV          = "text/csv; charset=utf-8"
	ContentTypeHTML         = "text/html; charset=utf-8"
	ContentTypeXLSX         = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// Aliases for convenience
	HeaderContentType   = ContentTypeHeaderName
	HeaderCorrelationID = CorrelationIDHeaderName
)
