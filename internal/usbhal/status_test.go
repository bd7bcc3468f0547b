package usbhal

import "testing"

func TestTransferStatus_String(t *testing.T) {
	tests := []struct {
		status TransferStatus
		want   string
	}{
		{TransferStatusSuccess, "success"},
		{TransferStatusStall, "stall"},
		{TransferStatusNAK, "nak"},
		{TransferStatusTimeout, "timeout"},
		{TransferStatusCancelled, "cancelled"},
		{TransferStatus(99), "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.status.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTransferStatus_Err(t *testing.T) {
	if err := TransferStatusSuccess.Err(); err != nil {
		t.Errorf("Success.Err() = %v, want nil", err)
	}
	if err := TransferStatusStall.Err(); err != ErrStall {
		t.Errorf("Stall.Err() = %v, want ErrStall", err)
	}
}
