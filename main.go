package main

import "canvasSync/cmd/app"

func main() {
	app.GetApp().LetsGo()
}
