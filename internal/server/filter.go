package server

import (
	"strings"

	"github.com/yourusername/prop-edge/internal/models"
	"github.com/yourusername/prop-edge/internal/service"
)

func filterByStat(snap *service.BoardSnapshot, stat string) *service.BoardSnapshot {
	out := *snap
	out.Entries = make([]models.BoardEntry, 0, len(snap.Entries))
	for _, e := range snap.Entries {
		if strings.EqualFold(e.StatType, stat) {
			out.Entries = append(out.Entries, e)
		}
	}
	return &out
}
