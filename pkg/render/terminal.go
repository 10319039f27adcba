package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw presents the framebuffer on a terminal screen. Each cell shows two
// framebuffer rows with the upper half block: foreground is the top pixel
// and background the bottom one. The framebuffer height should be twice
// the area height.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		y := (row - area.Min.Y) * 2
		for col := area.Min.X; col < area.Max.X; col++ {
			x := col - area.Min.X
			if x >= fb.Width {
				break
			}
			scr.SetCell(col, row, &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: cellColor(fb.Pixel(x, y)),
					Bg: cellColor(fb.Pixel(x, y+1)),
				},
			})
		}
	}
}

// cellColor maps out-of-range (zero) pixels to the terminal default.
func cellColor(p Pixel) color.Color {
	if p>>24 == 0 {
		return nil
	}
	return Unpack(p)
}
