package main

import (
	"github.com/okeefe/typeduel/internal/cli"
)

func main() {
	cli.Execute()
}
