package chi

// ErrorCode is a machine-readable error identifier returned in ErrorResponse.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest             ErrorCode = "bad_request"
	CodeUnauthorized           ErrorCode = "unauthorized"
	CodeValidationFailed       ErrorCode = "validation_failed"
	CodeRebuildInProgress      ErrorCode = "rebuild_in_progress"
	CodeKnowledgeEmpty         ErrorCode = "knowledge_empty"
	CodeEmbeddingProviderError ErrorCode = "embedding_provider_error"
	CodeUpstreamTimeout        ErrorCode = "upstream_timeout"
	CodeIndexUnavailable       ErrorCode = "index_unavailable"
	CodeInternalError          ErrorCode = "internal_error"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}
