package model

import "testing"

func TestTransferStatusTerminal(t *testing.T) {
	cases := []struct {
		status   TransferStatus
		terminal bool
	}{
		{TransferPending, false},
		{TransferApproved, true},
		{TransferRejected, true},
		{TransferCompleted, true},
	}

	for _, c := range cases {
		if got := c.status.Terminal(); got != c.terminal {
			t.Errorf("Terminal() for %q: got %v, want %v", c.status, got, c.terminal)
		}
	}
}
