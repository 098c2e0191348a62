//go:build tinygo && baremetal && picocalc

package main

import (
	"voronoi/app"
	"voronoi/config"
	"voronoi/hal"
)

// The panel is 320x320; the reference session keeps its 320x240 layout and
// leaves the bottom band black.
func main() {
	_ = app.Run(hal.New(), config.Default())
	select {}
}
