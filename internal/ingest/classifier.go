package ingest

import "errors"

// ErrNoTokenCounter is returned when a text message is encountered but no
// token counter was configured. Counting is never silently skipped.
var ErrNoTokenCounter = errors.New("text message encountered but no token counter configured")

// Classifier decides keep/drop for one raw record and computes the derived
// fields of the normalized record. Pure apart from the injected counter.
type Classifier struct {
	tokens TokenCounter
}

func NewClassifier(tokens TokenCounter) *Classifier {
	return &Classifier{tokens: tokens}
}

// Classify returns the normalized record for raw, or nil if the record is
// dropped. Absent optional fields default to false/0/null; only a missing
// token counter on a text message is an error.
func (c *Classifier) Classify(raw *RawRecord) (*Record, error) {
	if raw.Type != keepType || raw.SubType == dropSubType {
		return nil, nil
	}

	isWeb := raw.Annotations != nil && raw.Annotations.SendFrom == webSendFrom
	isImage := raw.MediaType != nil && *raw.MediaType == mediaTypeImage
	isText := raw.MediaType != nil && *raw.MediaType == mediaTypeText

	isRed, amount := DetectRedpacketThanks(raw.Content)

	// Token counts apply to text messages only; image content is a
	// post-hoc description and is not counted.
	tokenCount := 0
	if isText {
		if c.tokens == nil {
			return nil, ErrNoTokenCounter
		}
		if raw.Content != "" {
			tokenCount = c.tokens.CountTokens(raw.Content)
		}
	}

	screenName := ""
	if raw.FromUser != nil {
		screenName = raw.FromUser.ScreenName
	}

	return &Record{
		ID:              string(raw.ID),
		Time:            raw.Time,
		FromUID:         string(raw.FromUID),
		ScreenName:      screenName,
		IsWeb:           isWeb,
		IsImage:         isImage,
		IsText:          isText,
		IsRedpacket:     isRed,
		RedpacketAmount: amount,
		ContentLen:      contentLength(raw.Content),
		TokenCount:      tokenCount,
		MediaType:       raw.MediaType,
		AppID:           raw.AppID,
	}, nil
}
