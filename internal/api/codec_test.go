package api

import (
	"strings"
	"testing"
)

func TestJSONCodec(t *testing.T) {
	codec := JSONCodec{}
	if codec.Name() != "json" {
		t.Errorf("expected codec name 'json', got %q", codec.Name())
	}

	data, err := codec.Marshal(&AddExpenseRequest{
		EventID:      "2024-05-01_2024-05-03_제주",
		Payer:        "김민우",
		Item:         "치킨",
		Amount:       30000,
		Participants: []string{"김민우"},
		Receipts:     []ReceiptUpload{{Name: "a.png", Data: []byte{0x89, 'P', 'N', 'G'}}},
	})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	for _, want := range []string{`"event_id":`, `"participants":["김민우"]`, `"data":"iVBORw=="`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("expected %s in %s", want, data)
		}
	}
	if strings.Contains(string(data), "split_mode") {
		t.Errorf("expected empty split_mode to be omitted: %s", data)
	}

	var back AddExpenseRequest
	if err := codec.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if back.Payer != "김민우" || string(back.Receipts[0].Data) != "\x89PNG" {
		t.Errorf("unexpected decoded message: %+v", back)
	}
}

func TestJSONCodecEmptyBody(t *testing.T) {
	var req ListEventsRequest
	if err := (JSONCodec{}).Unmarshal(nil, &req); err != nil {
		t.Errorf("expected empty body to decode, got %v", err)
	}
}
