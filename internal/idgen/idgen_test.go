package idgen

import (
	"strings"
	"testing"
	"time"
)

func TestEncodeBase36(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		length int
		want   string
	}{
		{"zero pads to length", []byte{0x00}, 5, "00000"},
		{"highest single digit", []byte{0x23}, 5, "0000z"}, // 35 = 'z'
		{"rolls over base", []byte{0x24}, 5, "00010"},      // 36 = '10'
		{"truncates to least significant", []byte{0x24}, 1, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EncodeBase36(tt.data, tt.length); got != tt.want {
				t.Errorf("EncodeBase36(%v, %d) = %q, want %q", tt.data, tt.length, got, tt.want)
			}
		})
	}
}

func TestGenerateRecipeID(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	id := GenerateRecipeID("r", "Coq au vin", "alice", ts, 0)
	if !strings.HasPrefix(id, "r-") {
		t.Errorf("ID %q missing prefix", id)
	}
	if len(id) != len("r-")+DefaultLength {
		t.Errorf("ID %q has wrong length", id)
	}

	// Same inputs are deterministic.
	if again := GenerateRecipeID("r", "Coq au vin", "alice", ts, 0); again != id {
		t.Errorf("Same inputs produced %q and %q", id, again)
	}

	// A bumped nonce must change the hash, or collision retries would spin.
	if bumped := GenerateRecipeID("r", "Coq au vin", "alice", ts, 1); bumped == id {
		t.Error("Nonce bump did not change the ID")
	}
}
