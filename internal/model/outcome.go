package model

// ErrorKind classifies a failed download attempt.
type ErrorKind string

const (
	KindInvalidInput   ErrorKind = "InvalidInput"
	KindNotFound       ErrorKind = "NotFound"
	KindClientError    ErrorKind = "ClientError"
	KindServerError    ErrorKind = "ServerError"
	KindNetworkError   ErrorKind = "NetworkError"
	KindIOError        ErrorKind = "IOError"
	KindInvalidContent ErrorKind = "InvalidContent"
)

// Retryable reports whether a failure of this kind is worth another attempt.
// Only upstream and transport faults are; a 404 is an answer, not a fault.
func (k ErrorKind) Retryable() bool {
	return k == KindServerError || k == KindNetworkError
}

// Outcome is the result of fetching one pair. It is either a success carrying
// the image bytes, or a failure carrying a Kind and Message.
type Outcome struct {
	Data    []byte
	Status  int
	Kind    ErrorKind
	Message string

	// Attempts is how many requests were issued, including retries.
	Attempts int
}

// Success returns a successful Outcome.
func Success(data []byte, status int) Outcome {
	return Outcome{Data: data, Status: status}
}

// Failure returns a failed Outcome. status is 0 when no response was received.
func Failure(kind ErrorKind, message string, status int) Outcome {
	return Outcome{Kind: kind, Message: message, Status: status}
}

// OK reports whether the outcome is a success.
func (o Outcome) OK() bool {
	return o.Kind == ""
}
