package stats

import (
	"context"

	"github.com/verte-zerg/tuiread/internal/model"
	"github.com/verte-zerg/tuiread/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Readings []model.ReadingSession
	Library  []model.DocumentSummary
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	readings, err := st.ListReadings(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(readings) > cfg.Last {
		readings = readings[len(readings)-cfg.Last:]
	}
	library, err := st.ListDocuments(ctx)
	if err != nil {
		return Report{}, err
	}
	if cfg.DocumentID != "" {
		library = filterLibrary(library, cfg.DocumentID)
	}
	return Report{Readings: readings, Library: library}, nil
}

func filterLibrary(docs []model.DocumentSummary, id string) []model.DocumentSummary {
	out := docs[:0:0]
	for _, d := range docs {
		if d.ID == id {
			out = append(out, d)
		}
	}
	return out
}
