package main

import (
	"github.com/casey/mailsweep/internal/app"
)

func main() {
	app.Execute()
}
