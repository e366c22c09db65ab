package model

// Envelope wraps every response body.
type Envelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Data    interface{}  `json:"data"`
	Errors  []FieldError `json:"errors,omitempty"`
}

func OK(message string, data interface{}) Envelope {
	return Envelope{Success: true, Message: message, Data: data}
}

func Fail(message string) Envelope {
	return Envelope{Success: false, Message: message}
}
