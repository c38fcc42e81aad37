package main

import (
	"github.com/robotalks/robolink/pkg/cli/sh"
	"github.com/robotalks/robolink/pkg/env"
)

//go-build: CGO_ENABLED=0

func init() {
	env.SetupFlags()
}

func main() {
	sh.Main()
}
