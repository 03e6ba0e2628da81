package cmd

import "prism/internal/tui"

func runTUI() error {
	engine, err := loadEngine(true)
	if err != nil {
		return err
	}
	return tui.Run(engine)
}
