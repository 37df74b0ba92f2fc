package http

import "time"

const (
	// DefaultTimeout is the default timeout duration for HTTP requests.
	DefaultTimeout = 60 * time.Second

	// DefaultUserAgent is the User-Agent string sent when the caller does not set one.
	DefaultUserAgent = "httplog (+https://github.com/oshokin/httplog)"

	// DefaultProtocol is reported in the request line when the request carries no protocol.
	DefaultProtocol = "HTTP/1.1"
)

// Markers and placeholders written into the log blocks.
const (
	requestPrefix  = "-->"
	responsePrefix = "<--"

	failedLinePrefix  = "<-- HTTP FAILED: "
	responseTrailer   = "<-- END HTTP"
	loggingFailedText = "LOGGING FAILED:"

	emptyBodyPlaceholder          = "(empty body)"
	binaryRequestBodyPlaceholder  = "(binary body omitted)"
	binaryResponseBodyPlaceholder = "(binary or non-text body omitted)"
)
