package room

// Response is a message pushed to websocket clients
type Response struct {
	Key   string      `json:"key"`
	Value string      `json:"value,omitempty"`
	Data  interface{} `json:"data,omitempty"`
}

// Response keys
const (
	KeyRound   = "round"
	KeyBalance = "balance"
	KeyError   = "error"
)

// NewErrorResponse returns an error response
func NewErrorResponse(err error) *Response {
	return &Response{
		Key:   KeyError,
		Value: err.Error(),
	}
}
