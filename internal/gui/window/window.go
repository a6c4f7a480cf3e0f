// Package window shows a gui.Scene in a raylib window.
package window

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/AntonZelenin/planet-gravity/internal/gui"
)

var (
	colText    = rl.NewColor(140, 140, 140, 255)
	colTextDim = rl.NewColor(60, 60, 60, 255)
	colError   = rl.NewColor(255, 90, 90, 255)
)

// Run opens the window and blocks until it is closed. It returns the state
// error that stopped the world, if any.
func Run(sc *gui.Scene) error {
	w, h := sc.Size()
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(w), int32(h), sc.Title())
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)

	for !rl.WindowShouldClose() {
		if rl.IsKeyPressed(rl.KeyQ) || rl.IsKeyPressed(rl.KeyEscape) {
			break
		}
		update(sc)
		draw(sc)
	}
	return sc.Err()
}

func update(sc *gui.Scene) {
	if rl.IsWindowResized() {
		sc.SetSize(int(rl.GetScreenWidth()), int(rl.GetScreenHeight()))
	}

	switch {
	case rl.IsKeyPressed(rl.KeySpace):
		sc.TogglePause()
	case rl.IsKeyPressed(rl.KeyR):
		sc.Reset()
	case rl.IsKeyPressed(rl.KeyEqual), rl.IsKeyPressed(rl.KeyKpAdd):
		sc.ZoomIn()
	case rl.IsKeyPressed(rl.KeyMinus), rl.IsKeyPressed(rl.KeyKpSubtract):
		sc.ZoomOut()
	}

	sc.Advance(float64(rl.GetFrameTime()))
}

func draw(sc *gui.Scene) {
	rl.BeginDrawing()
	rl.ClearBackground(gui.Background)

	for _, d := range sc.Discs() {
		rl.DrawCircleV(rl.NewVector2(d.X, d.Y), d.Radius, d.Color)
	}

	rl.DrawText(fmt.Sprintf("t=%.2fs  steps=%d  scale=%.2f", sc.Time(), sc.Steps(), sc.Scale()), 10, 10, 20, colText)
	switch {
	case sc.Err() != nil:
		rl.DrawText(sc.Err().Error(), 10, 36, 20, colError)
	case sc.Paused():
		rl.DrawText("PAUSED", 10, 36, 20, colText)
	}
	_, h := sc.Size()
	rl.DrawText("SPACE pause  R reset  +/- zoom  Q quit", 10, int32(h-30), 18, colTextDim)

	rl.EndDrawing()
}
