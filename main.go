package main

import (
	"amoeba-trading/app"
	"amoeba-trading/config"
)

func main() {
	cfg := config.LoadFromEnv()
	app.New(cfg).Start()
}
