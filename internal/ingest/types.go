package ingest

import (
	"bytes"
	"encoding/json"
)

// Raw message filter: only group chat messages (type 321) survive, and
// sub_type 101 (system notices) is dropped.
const (
	keepType    = 321
	dropSubType = 101
)

// Media type codes in the raw export.
const (
	mediaTypeText  = 0
	mediaTypeImage = 1
)

// Origin annotation value for messages sent from the web client.
const webSendFrom = "webchat"

// FlexString unmarshals from either a JSON string or a JSON number.
// Raw exports are inconsistent about whether ids are quoted.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	*s = FlexString(data)
	return nil
}

// RawUser is the sender object embedded in a raw message.
type RawUser struct {
	ScreenName string `json:"screen_name"`
}

// RawAnnotations carries client origin markers.
type RawAnnotations struct {
	SendFrom string `json:"send_from"`
}

// RawRecord is one line of a raw chat export. The export carries many more
// fields; only the ones the normalization pass reads are declared.
type RawRecord struct {
	ID          FlexString      `json:"id"`
	Time        int64           `json:"time"`
	Type        int             `json:"type"`
	SubType     int             `json:"sub_type"`
	FromUID     FlexString      `json:"from_uid"`
	FromUser    *RawUser        `json:"from_user"`
	MediaType   *int            `json:"media_type"`
	Annotations *RawAnnotations `json:"annotations"`
	Content     string          `json:"content"`
	AppID       *int64          `json:"appid"`
}

// Record is a normalized message, written one per line to the processed
// ndjson files. Created once by the pipeline and never mutated.
type Record struct {
	ID         string `json:"id"`
	Time       int64  `json:"time"`
	FromUID    string `json:"from_uid"`
	ScreenName string `json:"screen_name"`

	IsWeb   bool `json:"is_web"`
	IsImage bool `json:"is_image"`
	IsText  bool `json:"is_text"`

	IsRedpacket     bool     `json:"is_redpacket"`
	RedpacketAmount *float64 `json:"redpacket_amount"`

	ContentLen int `json:"content_len"`
	TokenCount int `json:"token_count"`

	MediaType *int   `json:"media_type"`
	AppID     *int64 `json:"appid"`
}
