//go:build tinygo && baremetal

package main

import (
	"kiosk/app"
	"kiosk/hal"
	"kiosk/internal/config"
	"kiosk/kiosk/store"
)

func main() {
	cfg := config.Default("")
	cfg.Store.Backend = config.StoreMemory
	app.Run(hal.NewWithPins(cfg.Pins), cfg, app.Deps{Store: store.NewMemory()})
}
