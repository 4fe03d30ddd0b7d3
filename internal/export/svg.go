// Package export renders recorded trajectories to static files.
package export

import (
	"fmt"
	"io"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/lagrangian/internal/collision"
	"github.com/san-kum/lagrangian/internal/trajectory"
)

var palette = []string{"#00ff00", "#ff6b6b", "#4dabf7", "#ffd43b", "#cc5de8", "#20c997"}

// PathsSVG draws every particle's path inside box, with the final
// positions marked. The image is width pixels wide and keeps the box's
// aspect ratio.
func PathsSVG(w io.Writer, traj *trajectory.Trajectory, box collision.Box, width int) error {
	extent := r2.Sub(box.Max, box.Min)
	if !(extent.X > 0) || !(extent.Y > 0) || width < 1 {
		return fmt.Errorf("export: cannot draw box %v at width %d", box, width)
	}
	scale := float64(width) / extent.X
	height := extent.Y * scale

	toPixel := func(q r2.Vec) (float64, float64) {
		return (q.X - box.Min.X) * scale, height - (q.Y-box.Min.Y)*scale
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%.0f" viewBox="0 0 %d %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	last := traj.Last()
	for i, id := range traj.IDs() {
		path, err := traj.Series(id)
		if err != nil {
			return err
		}
		color := palette[i%len(palette)]

		if len(path) > 1 {
			sb.WriteString(fmt.Sprintf(`<path id="%s" fill="none" stroke="%s" stroke-width="1.5" d="M`, id, color))
			for j, q := range path {
				x, y := toPixel(q)
				if j == 0 {
					sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
				} else {
					sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
				}
			}
			sb.WriteString("\"/>\n")
		}

		x, y := toPixel(last.Qs[id])
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="3" fill="%s"/>
`, x, y, color))
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}
