package domain

import "encoding/json"

// MessageType enumerates the closed set of coordinator requests.
type MessageType string

const (
	MsgGetSites           MessageType = "GET_SITES"
	MsgSaveSite           MessageType = "SAVE_SITE"
	MsgUpdateSite         MessageType = "UPDATE_SITE"
	MsgDeleteSite         MessageType = "DELETE_SITE"
	MsgMarkVisited        MessageType = "MARK_VISITED"
	MsgMarkCheckedIn      MessageType = "MARK_CHECKED_IN"
	MsgSiteVisited        MessageType = "SITE_VISITED"
	MsgCheckURLMatch      MessageType = "CHECK_URL_MATCH"
	MsgGetSettings        MessageType = "GET_SETTINGS"
	MsgUpdateSettings     MessageType = "UPDATE_SETTINGS"
	MsgClearAllSites      MessageType = "CLEAR_ALL_SITES"
	MsgResetAllStatus     MessageType = "RESET_ALL_STATUS"
	MsgNotificationAction MessageType = "NOTIFICATION_ACTION"
	MsgOpenPopup          MessageType = "OPEN_POPUP"
)

// Request is a typed message from any frontend surface.
type Request struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response is the uniform result envelope. Exactly one of Data/Error is
// meaningful, discriminated by Success. Error is a human-readable
// message, not a structured code.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func OK(data any) Response {
	return Response{Success: true, Data: data}
}

func Fail(err error) Response {
	return Response{Success: false, Error: err.Error()}
}

func Failf(msg string) Response {
	return Response{Success: false, Error: msg}
}
