package events

import (
	"context"

	"github.com/0x6d61/burrow/internal/filters"
)

// FilterHandler adapts a *filters.Collection to the Handler interface,
// owning AddFilter and RemoveFilters.
type FilterHandler struct {
	Filters *filters.Collection
}

func (h FilterHandler) Handle(_ context.Context, cmd Command) {
	switch cmd.Kind {
	case AddFilter:
		f, ok := cmd.Filter.(filters.Filter)
		if !ok {
			return
		}
		added := h.Filters.Add(f)
		if cmd.BoolReply != nil {
			select {
			case cmd.BoolReply <- added:
			default:
			}
		}
	case RemoveFilters:
		h.Filters.Remove(cmd.Indices)
	case Sync:
		if cmd.Reply != nil {
			close(cmd.Reply)
		}
	}
}
