package render

import (
	"image/color"

	"kiosk/kiosk/model"
)

var (
	colorBG         = color.RGBA{R: 15, G: 15, B: 15, A: 0xff}
	colorCardBG     = color.RGBA{R: 25, G: 25, B: 25, A: 0xff}
	colorCardBorder = color.RGBA{R: 45, G: 45, B: 45, A: 0xff}
	colorSelBG      = color.RGBA{R: 40, G: 40, B: 40, A: 0xff}

	colorText  = color.RGBA{R: 255, G: 255, B: 255, A: 0xff}
	colorMuted = color.RGBA{R: 140, G: 140, B: 140, A: 0xff}

	colorAccent      = color.RGBA{R: 99, G: 205, B: 218, A: 0xff}
	colorDestructive = color.RGBA{R: 255, G: 107, B: 107, A: 0xff}
	colorSuccess     = color.RGBA{R: 46, G: 213, B: 115, A: 0xff}

	colorOverdue  = color.RGBA{R: 255, G: 107, B: 107, A: 0xff}
	colorToday    = color.RGBA{R: 255, G: 159, B: 67, A: 0xff}
	colorTomorrow = color.RGBA{R: 255, G: 206, B: 84, A: 0xff}
	colorWeek     = color.RGBA{R: 46, G: 213, B: 115, A: 0xff}
	colorUpcoming = color.RGBA{R: 116, G: 185, B: 255, A: 0xff}

	colorFaultBG = color.RGBA{R: 255, G: 255, B: 255, A: 0xff}
	colorFaultFG = color.RGBA{R: 0, G: 0, B: 0, A: 0xff}
)

func urgencyColor(u model.Urgency) color.RGBA {
	switch u {
	case model.Overdue:
		return colorOverdue
	case model.Today:
		return colorToday
	case model.Tomorrow:
		return colorTomorrow
	case model.Week:
		return colorWeek
	default:
		return colorUpcoming
	}
}

func filterColor(filter string) color.RGBA {
	switch filter {
	case model.FilterOverdue:
		return colorOverdue
	case model.FilterToday:
		return colorToday
	case model.FilterWeek:
		return colorWeek
	default:
		return colorAccent
	}
}
