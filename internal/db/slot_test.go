package db

import "testing"

func TestHashSlot(t *testing.T) {
	tests := []struct {
		key  string
		want uint16
	}{
		{"123456789", 0x31C3 % SlotCount},
		{"foo", 12182},
		{"{foo}:bar", 12182},
		{"a:{foo}:b:{x}", 12182},
		{"{}foo", crc16("{}foo") % SlotCount},
	}
	for _, tt := range tests {
		if got := HashSlot(tt.key); got != tt.want {
			t.Errorf("HashSlot(%q) = %d, want %d", tt.key, got, tt.want)
		}
	}
}
