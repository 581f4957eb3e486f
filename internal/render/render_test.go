package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/umarshaikh/physiosync/internal/engine"
)

func testTrajectories() (engine.Trajectory, engine.Trajectory, []engine.PathPair) {
	ref := engine.Trajectory{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0.5, Z: 0.1},
		{X: 2, Y: 1.0, Z: 0.2},
	}
	pat := engine.Trajectory{
		{X: 0.1, Y: 0, Z: 0},
		{X: 1.1, Y: 0.4, Z: 0.1},
		{X: 2.1, Y: 0.9, Z: 0.2},
	}
	path := []engine.PathPair{{I: 0, J: 0}, {I: 1, J: 1}, {I: 2, J: 2}}
	return ref, pat, path
}

func TestWriteComparison(t *testing.T) {
	ref, pat, path := testTrajectories()

	var buf bytes.Buffer
	if err := WriteComparison(&buf, "Score: 95.50", ref, pat, path); err != nil {
		t.Fatalf("failed to render comparison page: %v", err)
	}

	html := buf.String()
	if !strings.Contains(html, "Score: 95.50") {
		t.Error("page title missing from rendered HTML")
	}
	for _, want := range []string{"reference", "patient", "X axis", "Y axis", "Z axis", "Wrist path"} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered HTML missing %q", want)
		}
	}
}

func TestComparisonPage_ChartCount(t *testing.T) {
	ref, pat, path := testTrajectories()

	page := ComparisonPage("comparison", ref, pat, path)
	if len(page.Charts) != 4 {
		t.Errorf("page has %d charts, want 3 axis charts plus the 3D view", len(page.Charts))
	}
}
