package events

import (
	"context"

	"github.com/0x6d61/burrow/internal/stats"
)

// StatsHandler adapts a *stats.Stats to the Handler interface, owning the
// AddRequest/AddError/AddStatus/AddToUsizeField/SubtractFromUsizeField
// slice of the command contract.
type StatsHandler struct {
	Stats *stats.Stats
}

func (h StatsHandler) Handle(_ context.Context, cmd Command) {
	switch cmd.Kind {
	case AddRequest:
		h.Stats.AddRequest()
	case AddError:
		h.Stats.AddError(stats.ErrorKind(cmd.ErrorKind))
	case AddStatus:
		h.Stats.AddStatus(cmd.Status)
	case AddToUsizeField:
		h.Stats.AddToUsizeField(stats.Field(cmd.Field), cmd.Delta)
	case SubtractFromUsizeField:
		h.Stats.SubtractFromUsizeField(stats.Field(cmd.Field), cmd.Delta)
	case AddToF64Field:
		if cmd.Field == "scan_duration" {
			h.Stats.AddScanDuration(cmd.FDelta)
		}
	case Sync:
		if cmd.Reply != nil {
			close(cmd.Reply)
		}
	case Ping, Exit:
		// no-op; Exit's drain-then-terminate behavior lives in Bus.Run
	}
}
