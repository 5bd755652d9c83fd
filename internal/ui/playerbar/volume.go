package playerbar

import "fmt"

// RenderVolume renders the volume level, "vol  70%" or "mute" at zero.
func RenderVolume(volume float64) string {
	if volume <= 0 {
		return progressTimeStyle().Render("mute")
	}
	pct := int(volume*100 + 0.5)
	return progressTimeStyle().Render(fmt.Sprintf("vol %3d%%", pct))
}
