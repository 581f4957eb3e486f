package extract

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/umarshaikh/physiosync/internal/engine"
)

// WriteCSV writes a recorded trajectory in the MediaPipe wrist schema
// with a leading per-sample timestamp column. Files written here load
// back through FromReader unchanged.
func WriteCSV(w io.Writer, traj engine.Trajectory, timestampsMs []int64) error {
	if len(timestampsMs) != len(traj) {
		return fmt.Errorf("have %d timestamps for %d samples", len(timestampsMs), len(traj))
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"timestamp_ms", "Wrist_x", "Wrist_y", "Wrist_z"}); err != nil {
		return err
	}

	for i, p := range traj {
		record := []string{
			strconv.FormatInt(timestampsMs[i], 10),
			formatCoord(p.X),
			formatCoord(p.Y),
			formatCoord(p.Z),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
