package main

import (
	"github.com/robotalks/bean.go/pkg/cli/sh"
	env "github.com/robotalks/bean.go/pkg/l1/env/connector"

	_ "github.com/robotalks/bean.go/pkg/cli/cmds/bean"
)

//go-build: CGO_ENABLED=0

func init() {
	env.SetupFlags()
}

func main() {
	sh.Main()
}
