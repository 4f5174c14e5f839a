package fnbound_test

import (
	"errors"
	"testing"

	"github.com/maxgio92/fnbound"
)

func TestDetectAlignment(t *testing.T) {
	tests := []struct {
		name     string
		table    fnbound.AddressTable
		want     fnbound.AlignmentMode
		wantWarn bool
	}{
		{
			name:  "AllSixteen",
			table: fnbound.AddressTable{0x1000: 16, 0x1010: 32, 0x1030: 8},
			want:  fnbound.Align4,
		},
		{
			name:  "AllEven",
			table: fnbound.AddressTable{0x1002: 4, 0x1006: 4, 0x100a: 4},
			want:  fnbound.Align2,
		},
		{
			// Half the starts are 16-byte aligned and the rest merely even.
			name:  "MixedEven",
			table: fnbound.AddressTable{0x1000: 4, 0x1004: 4, 0x1010: 4, 0x1016: 4},
			want:  fnbound.Align2,
		},
		{
			name:     "Odd",
			table:    fnbound.AddressTable{0x1000: 4, 0x1001: 4, 0x1003: 4, 0x1005: 4},
			want:     fnbound.Align1,
			wantWarn: true,
		},
		{
			name:     "Empty",
			table:    fnbound.AddressTable{},
			want:     fnbound.Align1,
			wantWarn: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fnbound.DetectAlignment(tt.table)
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
			if tt.wantWarn != errors.Is(err, fnbound.ErrAlignmentIndeterminate) {
				t.Errorf("unexpected warning state: %v", err)
			}
		})
	}
}

func TestDetectAlignment_Threshold(t *testing.T) {
	// 9 of 10 is not more than 90%.
	table := fnbound.AddressTable{0x1001: 1}
	for i := range 9 {
		table[uint64(0x2000+i*0x10)] = 16
	}
	if got, _ := fnbound.DetectAlignment(table); got != fnbound.Align1 {
		t.Fatalf("expected align1 at exactly 90%%, got %s", got)
	}

	table[0x3000] = 16
	if got, _ := fnbound.DetectAlignment(table); got != fnbound.Align4 {
		t.Fatalf("expected align4 above 90%%, got %s", got)
	}
}

func TestAlignmentMode_Tolerance(t *testing.T) {
	for mode, want := range map[fnbound.AlignmentMode]int64{
		fnbound.Align4: 15,
		fnbound.Align2: 1,
		fnbound.Align1: 1,
	} {
		if got := mode.Tolerance(); got != want {
			t.Errorf("%s: expected tolerance %d, got %d", mode, want, got)
		}
	}
}
