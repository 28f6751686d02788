// Package visualization renders controller snapshots for displays. It only
// reads snapshots and never touches the controller.
package visualization

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/anggasct/junction"
)

// DOTGenerator generates Graphviz DOT representations of an intersection snapshot
type DOTGenerator struct {
	snapshot junction.Snapshot
	options  DOTOptions
}

// DOTOptions configures the DOT generation
type DOTOptions struct {
	ShowCarCounts bool
	ShowPhase     bool
	RankDirection string // "TB", "LR", "BT", "RL"
	LaneShape     string
	CenterShape   string
	GreenColor    string
	RedColor      string
}

// DefaultDOTOptions returns sensible default options for DOT generation
func DefaultDOTOptions() DOTOptions {
	return DOTOptions{
		ShowCarCounts: true,
		ShowPhase:     true,
		RankDirection: "LR",
		LaneShape:     "box",
		CenterShape:   "circle",
		GreenColor:    "palegreen",
		RedColor:      "lightcoral",
	}
}

// NewDOTGenerator creates a new DOT generator for the given snapshot
func NewDOTGenerator(snapshot junction.Snapshot, options ...DOTOptions) *DOTGenerator {
	opts := DefaultDOTOptions()
	if len(options) > 0 {
		opts = options[0]
	}

	return &DOTGenerator{
		snapshot: snapshot,
		options:  opts,
	}
}

// Generate creates a DOT representation of the intersection
func (g *DOTGenerator) Generate() (string, error) {
	var dot strings.Builder

	dot.WriteString("digraph Intersection {\n")
	dot.WriteString(fmt.Sprintf("  rankdir=%s;\n", g.options.RankDirection))
	dot.WriteString(fmt.Sprintf("  node [shape=%s];\n", g.options.LaneShape))
	dot.WriteString("  edge [fontsize=10];\n\n")

	if g.options.ShowPhase {
		dot.WriteString(fmt.Sprintf("  label=\"%s\";\n  labelloc=t;\n\n", g.title()))
	}

	if err := g.generateLanes(&dot); err != nil {
		return "", fmt.Errorf("failed to generate lanes: %w", err)
	}

	if err := g.generateApproaches(&dot); err != nil {
		return "", fmt.Errorf("failed to generate approaches: %w", err)
	}

	dot.WriteString("}\n")

	return dot.String(), nil
}

func (g *DOTGenerator) title() string {
	name := g.snapshot.Name
	if name == "" {
		name = "intersection"
	}
	if !g.snapshot.Started {
		return fmt.Sprintf("%s: all red", name)
	}
	return fmt.Sprintf("%s: cycle %d, %s green", name, g.snapshot.Cycle, g.snapshot.Axis)
}

// generateLanes generates one node per lane plus the center node
func (g *DOTGenerator) generateLanes(dot *strings.Builder) error {
	dot.WriteString("  // Lanes\n")
	dot.WriteString(fmt.Sprintf("  \"center\" [shape=%s label=\"\"];\n", g.options.CenterShape))

	for _, lane := range junction.Lanes {
		color := g.options.RedColor
		if g.snapshot.Signals.Color(lane) == junction.Green {
			color = g.options.GreenColor
		}

		label := lane.String()
		if g.options.ShowCarCounts {
			label = fmt.Sprintf("%s\\n%d cars", lane, g.snapshot.Queues.Len(lane))
		}

		dot.WriteString(fmt.Sprintf("  \"%s\" [style=\"filled\" fillcolor=%s label=\"%s\"];\n", lane, color, label))
	}

	return nil
}

// generateApproaches generates an edge from every lane into the center
func (g *DOTGenerator) generateApproaches(dot *strings.Builder) error {
	dot.WriteString("  // Approaches\n")

	for _, lane := range junction.Lanes {
		style := "dashed"
		if g.snapshot.Signals.Color(lane) == junction.Green {
			style = "bold"
		}
		dot.WriteString(fmt.Sprintf("  \"%s\" -> \"center\" [style=%s label=\"%s\"];\n", lane, style, g.snapshot.Signals.Color(lane)))
	}

	return nil
}

// GenerateToFile writes the DOT representation to a file
func (g *DOTGenerator) GenerateToFile(filename string) error {
	content, err := g.Generate()
	if err != nil {
		return err
	}

	return os.WriteFile(filename, []byte(content), 0644)
}

// SVGGenerator generates SVG representations by calling Graphviz
type SVGGenerator struct {
	dotGenerator *DOTGenerator
}

// NewSVGGenerator creates a new SVG generator
func NewSVGGenerator(snapshot junction.Snapshot, options ...DOTOptions) *SVGGenerator {
	return &SVGGenerator{
		dotGenerator: NewDOTGenerator(snapshot, options...),
	}
}

// Generate creates an SVG representation of the intersection
func (g *SVGGenerator) Generate() (string, error) {
	dotContent, err := g.dotGenerator.Generate()
	if err != nil {
		return "", err
	}

	cmd := exec.Command("dot", "-Tsvg")
	cmd.Stdin = strings.NewReader(dotContent)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to execute dot command: %w (make sure Graphviz is installed)", err)
	}

	return out.String(), nil
}
