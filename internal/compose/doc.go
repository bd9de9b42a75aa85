// Package compose renders one aligned frame set into a single 2x3 composite
// raster.
//
// Each band's observation is decoded, scaled into a fixed-size cell with
// aspect ratio preserved (letterboxed on black), and placed at the band's
// canonical grid position. Cells with no usable observation get a uniform
// placeholder tile. Composition is deterministic: the same frame set over
// the same files yields byte-identical output.
package compose
