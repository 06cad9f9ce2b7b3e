package metrics

import "github.com/AngelCh415/spark-tracker/internal/models"

// AggregateStages sums the stage counters of every entry regardless of platform.
// The stages are independent tallies; they are not reconciled with activeChats.
func AggregateStages(entries []models.OutreachEntry) models.StageDistribution {
	var d models.StageDistribution
	for _, e := range entries {
		d.Connect += e.ConnectStage
		d.Qualify += e.QualifyStage
		d.Convert += e.ConvertStage
	}
	d.Total = d.Connect + d.Qualify + d.Convert
	d.ConnectPercent = percent(d.Connect, d.Total)
	d.QualifyPercent = percent(d.Qualify, d.Total)
	d.ConvertPercent = percent(d.Convert, d.Total)
	return d
}
