package relay

import "time"

const (
	FrameStatusRequest = "status_request"
	FrameDeliver       = "deliver"
	FrameError         = "error"

	parseModeHTML = "html"
)

// InboundFrame is a message sent by the chat front end.
type InboundFrame struct {
	Type        string     `json:"type"`
	RecipientID string     `json:"recipient_id"`
	RequestedAt *time.Time `json:"requested_at,omitempty"`
}

// DeliverFrame asks the front end to send text to a recipient.
type DeliverFrame struct {
	Type        string `json:"type"`
	RequestID   string `json:"request_id,omitempty"`
	RecipientID string `json:"recipient_id"`
	Text        string `json:"text"`
	ParseMode   string `json:"parse_mode"`
}

type ErrorFrame struct {
	Type        string `json:"type"`
	Message     string `json:"message"`
	RecipientID string `json:"recipient_id,omitempty"`
}
