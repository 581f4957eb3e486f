// Package extract turns recorded motion files into engine trajectories.
// Recordings arrive as CSV with one row per sample; the x/y/z columns
// are located by trying a list of known column schemas so files from
// Xsens exports, MediaPipe pipelines and plain generic recorders all
// load without configuration.
package extract

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/umarshaikh/physiosync/internal/engine"
)

// Arm side labels used in Xsens column names.
const (
	SideLeft  = "Left"
	SideRight = "Right"
)

// ErrNoSchema is returned when none of the known column schemas matches
// the file's header row.
var ErrNoSchema = fmt.Errorf("no x/y/z column schema recognized")

// ArmSide detects the recorded arm from the filename. Files exported
// with "(L)" in the name are left-arm recordings; everything else is
// treated as right.
func ArmSide(filename string) string {
	if strings.Contains(strings.ToUpper(filepath.Base(filename)), "(L)") {
		return SideLeft
	}
	return SideRight
}

// columnSchemas returns the candidate x/y/z header triples in priority
// order for the given arm side.
func columnSchemas(side string) [][3]string {
	return [][3]string{
		{side + " Hand x", side + " Hand y", side + " Hand z"}, // Xsens standard
		{"Wrist_x", "Wrist_y", "Wrist_z"},                      // MediaPipe standard
		{"x", "y", "z"},                                        // Generic
	}
}

// FromFile reads the trajectory from a CSV recording, detecting the arm
// side from the filename.
func FromFile(path string) (engine.Trajectory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}
	defer f.Close()

	traj, err := FromReader(f, ArmSide(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return traj, nil
}

// FromReader reads a trajectory from CSV data using the column schema
// priority for the given arm side. Rows with missing or non-numeric
// values in the selected columns are dropped. At least 2 clean rows
// must survive.
func FromReader(r io.Reader, side string) (engine.Trajectory, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[cleanHeader(name)] = i
	}

	cols, ok := selectColumns(index, side)
	if !ok {
		return nil, ErrNoSchema
	}

	var traj engine.Trajectory
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		point, ok := parsePoint(record, cols)
		if !ok {
			continue // dropped: incomplete or non-numeric row
		}
		traj = append(traj, point)
	}

	if len(traj) < 2 {
		return nil, fmt.Errorf("only %d usable samples, need at least 2", len(traj))
	}

	return traj, nil
}

// selectColumns finds the first schema whose three columns are all
// present in the header.
func selectColumns(index map[string]int, side string) ([3]int, bool) {
	for _, schema := range columnSchemas(side) {
		var cols [3]int
		found := true
		for axis, name := range schema {
			i, ok := index[name]
			if !ok {
				found = false
				break
			}
			cols[axis] = i
		}
		if found {
			return cols, true
		}
	}
	return [3]int{}, false
}

// parsePoint extracts the x/y/z values from one record. Rows that are
// too short, empty, non-numeric or non-finite in any selected column
// are rejected.
func parsePoint(record []string, cols [3]int) (engine.Point3D, bool) {
	var values [3]float64
	for axis, col := range cols {
		if col >= len(record) {
			return engine.Point3D{}, false
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(record[col]), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return engine.Point3D{}, false
		}
		values[axis] = v
	}
	return engine.Point3D{X: values[0], Y: values[1], Z: values[2]}, true
}

// cleanHeader trims whitespace and a UTF-8 BOM from a header cell.
func cleanHeader(name string) string {
	return strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF"))
}
