package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AngelCh415/spark-tracker/internal/models"
)

func TestAggregateStagesAcrossPlatforms(t *testing.T) {
	d := AggregateStages(sampleEntries())
	assert.Equal(t, int64(13), d.Connect)
	assert.Equal(t, int64(8), d.Qualify)
	assert.Equal(t, int64(4), d.Convert)
	assert.Equal(t, int64(25), d.Total)
	assert.InDelta(t, 52.0, d.ConnectPercent, 1e-9)
	assert.InDelta(t, 32.0, d.QualifyPercent, 1e-9)
	assert.InDelta(t, 16.0, d.ConvertPercent, 1e-9)
}

func TestAggregateStagesEmpty(t *testing.T) {
	assert.Equal(t, models.StageDistribution{}, AggregateStages(nil))
	assert.Equal(t, models.StageDistribution{}, AggregateStages([]models.OutreachEntry{{Platform: models.PlatformFacebook}}))
}

func TestStagesIndependentOfActiveChats(t *testing.T) {
	// connect+qualify+convert (6) no coincide con activeChats (2) y se respeta tal cual
	d := AggregateStages([]models.OutreachEntry{
		{Platform: models.PlatformInstagram, ActiveChats: 2, ConnectStage: 3, QualifyStage: 2, ConvertStage: 1},
	})
	assert.Equal(t, int64(6), d.Total)
	assert.InDelta(t, 50.0, d.ConnectPercent, 1e-9)
}
