package decode

import "testing"

type roomPayload struct {
	Room string `json:"room"`
	Max  int    `json:"max"`
}

func TestDecodeMapWeakTyping(t *testing.T) {
	p, err := DecodeMap[roomPayload](map[string]any{
		"room": "math-101",
		"max":  float64(30), // json numbers arrive as float64
	})
	if err != nil {
		t.Fatalf("DecodeMap: %v", err)
	}
	if p.Room != "math-101" || p.Max != 30 {
		t.Fatalf("decoded: %+v", p)
	}
}

func TestDecodeMapNilInput(t *testing.T) {
	if _, err := DecodeMap[roomPayload](nil); err == nil {
		t.Fatalf("nil map must fail")
	}
}

func TestDecodeMapIgnoresUnknownKeys(t *testing.T) {
	p, err := DecodeMap[roomPayload](map[string]any{
		"room":  "r1",
		"extra": "ignored",
	})
	if err != nil {
		t.Fatalf("DecodeMap: %v", err)
	}
	if p.Room != "r1" {
		t.Fatalf("decoded: %+v", p)
	}
}
