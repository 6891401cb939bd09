// Package ui draws the board, the heads-up display and the control panel.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// Theme holds UI styling constants.
type Theme struct {
	PanelBg       rl.Color
	PanelBorder   rl.Color
	SectionHeader rl.Color
	LabelColor    rl.Color
	ValueColor    rl.Color
	BarBg         rl.Color
	BarFill       rl.Color

	// Board palette
	Sky        rl.Color
	Pipe       rl.Color
	PipeEdge   rl.Color
	Bird       rl.Color
	BestBird   rl.Color
	HumanBird  rl.Color
	GameOver   rl.Color
	BoardFrame rl.Color

	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	BarHeight      int32
	FontSize       int32
	HeaderFontSize int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:       rl.Color{R: 20, G: 25, B: 30, A: 240},
		PanelBorder:   rl.Color{R: 60, G: 70, B: 80, A: 255},
		SectionHeader: rl.Yellow,
		LabelColor:    rl.LightGray,
		ValueColor:    rl.RayWhite,
		BarBg:         rl.Color{R: 40, G: 40, B: 40, A: 255},
		BarFill:       rl.Color{R: 100, G: 200, B: 100, A: 255},

		Sky:        rl.Color{R: 112, G: 197, B: 206, A: 255},
		Pipe:       rl.Color{R: 83, G: 160, B: 60, A: 255},
		PipeEdge:   rl.Color{R: 40, G: 90, B: 30, A: 255},
		Bird:       rl.Color{R: 250, G: 210, B: 50, A: 110},
		BestBird:   rl.Color{R: 230, G: 80, B: 40, A: 255},
		HumanBird:  rl.Color{R: 250, G: 210, B: 50, A: 255},
		GameOver:   rl.Color{R: 200, G: 40, B: 40, A: 255},
		BoardFrame: rl.Color{R: 60, G: 70, B: 80, A: 255},

		Padding:        10,
		LineHeight:     18,
		LabelWidth:     90,
		BarHeight:      12,
		FontSize:       14,
		HeaderFontSize: 16,
	}
}
