package models

// Envelope is the wire format of every response.
//
//	success: {code: 0, message: "success", data}
//	warning: {code: <negative>, message, data: {}} with HTTP 200
//	error:   {code: 0, message, data: {}} with a non-200 HTTP status
type Envelope struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// NewSuccessEnvelope wraps data in a success envelope.
func NewSuccessEnvelope(data interface{}) Envelope {
	if data == nil {
		data = struct{}{}
	}
	return Envelope{Code: 0, Message: "success", Data: data}
}

// NewWarningEnvelope signals a recoverable validation failure. code must be
// negative; the caller fixes its input and resubmits.
func NewWarningEnvelope(message string, code int) Envelope {
	return Envelope{Code: code, Message: message, Data: struct{}{}}
}

// NewErrorEnvelope signals a terminal failure; the HTTP status carries the
// class (401 authentication, 403 authorization, 500 anything unanticipated).
func NewErrorEnvelope(message string) Envelope {
	return Envelope{Code: 0, Message: message, Data: struct{}{}}
}
