package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeAppliesOnlySetFields(t *testing.T) {
	table := Table{ID: 1, TableNumber: "T1", Capacity: 4, Shape: ShapeCircle, Status: TableAvailable, XPosition: 100, YPosition: 100}

	merged := table.Merge(StatusDelta(1, TableOccupied))

	assert.Equal(t, TableOccupied, merged.Status)
	assert.Equal(t, "T1", merged.TableNumber)
	assert.Equal(t, 4, merged.Capacity)
	assert.Equal(t, 100, merged.XPosition)
}

func TestMergePosition(t *testing.T) {
	table := Table{ID: 1, Status: TableReserved, XPosition: 100, YPosition: 100}

	merged := table.Merge(PositionDelta(1, 250, 300))

	assert.Equal(t, 250, merged.XPosition)
	assert.Equal(t, 300, merged.YPosition)
	assert.Equal(t, TableReserved, merged.Status)
}

// A full Table payload decodes into a delta with every field set, so a
// pushed entity and a sparse delta share one merge path.
func TestFullTablePayloadDecodesAsCompleteDelta(t *testing.T) {
	payload, err := json.Marshal(Table{
		ID: 3, TableNumber: "T3", Capacity: 6, Shape: ShapeRectangle,
		Status: TableOccupied, XPosition: 500, YPosition: 400, Rotation: 45,
		IsOutdoor: true, CompanyID: 7,
	})
	assert.NoError(t, err)

	var delta TableDelta
	assert.NoError(t, json.Unmarshal(payload, &delta))

	merged := Table{ID: 3, TableNumber: "stale", Status: TableAvailable}.Merge(delta)
	assert.Equal(t, "T3", merged.TableNumber)
	assert.Equal(t, 6, merged.Capacity)
	assert.Equal(t, TableOccupied, merged.Status)
	assert.Equal(t, 45, merged.Rotation)
	assert.True(t, merged.IsOutdoor)
	assert.Equal(t, uint(7), merged.CompanyID)
}
