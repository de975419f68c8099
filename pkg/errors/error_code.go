package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidPeriod        ErrorCode = 102
	ErrCodeInvalidType          ErrorCode = 103
	ErrCodeMissingParameter     ErrorCode = 104
	ErrCodeExclusiveParameters  ErrorCode = 105
	ErrCodeInvalidSeries        ErrorCode = 106

	// Graph errors (200-299)
	ErrCodeMissingInput    ErrorCode = 200
	ErrCodeCyclicGraph     ErrorCode = 201
	ErrCodeUnresolvedInput ErrorCode = 202
	ErrCodeUnknownBlock    ErrorCode = 203
	ErrCodeBlockEvaluation ErrorCode = 204

	// Block registry errors (300-399)
	ErrCodeBlockNotFound      ErrorCode = 300
	ErrCodeBlockAlreadyExists ErrorCode = 301

	// Position/trade errors (400-499)
	ErrCodeConsistencyGuard ErrorCode = 400
	ErrCodePositionNotFound ErrorCode = 401

	// Data source errors (500-599)
	ErrCodeDataSource     ErrorCode = 500
	ErrCodeDataNotFound   ErrorCode = 501
	ErrCodeDataMisaligned ErrorCode = 502

	// Store errors (600-699)
	ErrCodeStoreQuery         ErrorCode = 600
	ErrCodeStoreInit          ErrorCode = 601
	ErrCodeSchemaIncompatible ErrorCode = 602

	// Job/runner errors (700-799)
	ErrCodeJobNotFound      ErrorCode = 700
	ErrCodeJobCancelled     ErrorCode = 701
	ErrCodeStrategyRunning  ErrorCode = 702
	ErrCodeStrategyLimit    ErrorCode = 703
	ErrCodeStrategyNotFound ErrorCode = 704
)
