// cmd/predsim/main.go
package main

import (
	"predsim/internal/app"
	"predsim/internal/appshell"
)

func main() {
	appshell.Main(app.RunContext)
}
