package ingest

import (
	"testing"
)

// fakeCounter returns a fixed count for any non-empty text.
type fakeCounter struct{ n int }

func (f fakeCounter) CountTokens(text string) int { return f.n }

func intPtr(v int) *int { return &v }

func TestClassifyDropRules(t *testing.T) {
	c := NewClassifier(fakeCounter{n: 3})

	tests := []struct {
		name string
		raw  RawRecord
		keep bool
	}{
		{"wrong type", RawRecord{Type: 1, SubType: 0}, false},
		{"system notice", RawRecord{Type: 321, SubType: 101}, false},
		{"kept", RawRecord{Type: 321, SubType: 0}, true},
		{"kept other subtype", RawRecord{Type: 321, SubType: 5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := c.Classify(&tt.raw)
			if err != nil {
				t.Fatalf("Classify returned error: %v", err)
			}
			if (rec != nil) != tt.keep {
				t.Errorf("Classify keep = %v, want %v", rec != nil, tt.keep)
			}
		})
	}
}

func TestClassifyDerivedFields(t *testing.T) {
	c := NewClassifier(fakeCounter{n: 7})

	raw := RawRecord{
		ID:          "42",
		Time:        1700000000,
		Type:        321,
		FromUID:     "1001",
		FromUser:    &RawUser{ScreenName: "alice"},
		MediaType:   intPtr(0),
		Annotations: &RawAnnotations{SendFrom: "webchat"},
		Content:     "0.52元，@某人",
	}

	rec, err := c.Classify(&raw)
	if err != nil {
		t.Fatal(err)
	}
	if rec == nil {
		t.Fatal("record dropped")
	}

	if !rec.IsWeb {
		t.Error("IsWeb = false, want true")
	}
	if !rec.IsText || rec.IsImage {
		t.Errorf("IsText = %v, IsImage = %v, want true/false", rec.IsText, rec.IsImage)
	}
	if !rec.IsRedpacket || rec.RedpacketAmount == nil || *rec.RedpacketAmount != 0.52 {
		t.Errorf("redpacket = (%v, %v), want (true, 0.52)", rec.IsRedpacket, rec.RedpacketAmount)
	}
	if rec.TokenCount != 7 {
		t.Errorf("TokenCount = %d, want 7", rec.TokenCount)
	}
	if rec.ContentLen != 9 {
		t.Errorf("ContentLen = %d, want 9 (runes, not bytes)", rec.ContentLen)
	}
	if rec.ScreenName != "alice" || rec.FromUID != "1001" {
		t.Errorf("identity = (%s, %s)", rec.FromUID, rec.ScreenName)
	}
}

func TestClassifyTextImageDisjoint(t *testing.T) {
	c := NewClassifier(fakeCounter{n: 1})

	for _, mt := range []*int{nil, intPtr(0), intPtr(1), intPtr(3)} {
		raw := RawRecord{Type: 321, MediaType: mt, Content: "hi"}
		rec, err := c.Classify(&raw)
		if err != nil {
			t.Fatal(err)
		}
		if rec.IsText && rec.IsImage {
			t.Errorf("media_type %v: both IsText and IsImage set", mt)
		}
	}

	// Codes other than 0/1 yield neither.
	rec, _ := c.Classify(&RawRecord{Type: 321, MediaType: intPtr(3)})
	if rec.IsText || rec.IsImage {
		t.Error("media_type 3 should be neither text nor image")
	}
}

func TestClassifyTokenCountRules(t *testing.T) {
	c := NewClassifier(fakeCounter{n: 9})

	// Non-text messages never get a token count, content notwithstanding.
	rec, err := c.Classify(&RawRecord{Type: 321, MediaType: intPtr(1), Content: "an image caption"})
	if err != nil {
		t.Fatal(err)
	}
	if rec.TokenCount != 0 {
		t.Errorf("image TokenCount = %d, want 0", rec.TokenCount)
	}

	// Empty text counts zero without consulting the counter.
	rec, err = c.Classify(&RawRecord{Type: 321, MediaType: intPtr(0), Content: ""})
	if err != nil {
		t.Fatal(err)
	}
	if rec.TokenCount != 0 {
		t.Errorf("empty text TokenCount = %d, want 0", rec.TokenCount)
	}
}

func TestClassifyMissingCounterFailsFast(t *testing.T) {
	c := NewClassifier(nil)

	// Non-text records pass through without a counter.
	if _, err := c.Classify(&RawRecord{Type: 321, MediaType: intPtr(1)}); err != nil {
		t.Fatalf("image record should not need a counter: %v", err)
	}

	// Text records fail.
	_, err := c.Classify(&RawRecord{Type: 321, MediaType: intPtr(0), Content: "hello"})
	if err != ErrNoTokenCounter {
		t.Errorf("err = %v, want ErrNoTokenCounter", err)
	}
}

func TestClassifyMissingOptionalFields(t *testing.T) {
	c := NewClassifier(fakeCounter{n: 1})

	rec, err := c.Classify(&RawRecord{Type: 321})
	if err != nil {
		t.Fatal(err)
	}
	if rec == nil {
		t.Fatal("record dropped")
	}
	if rec.IsWeb || rec.IsText || rec.IsImage || rec.IsRedpacket {
		t.Error("flags should default to false")
	}
	if rec.MediaType != nil || rec.AppID != nil || rec.RedpacketAmount != nil {
		t.Error("absent optional fields should stay null")
	}
	if rec.ContentLen != 0 || rec.TokenCount != 0 {
		t.Error("counts should default to 0")
	}
}
