package main

import (
	"github.com/samber/lo"
	"github.com/streamcap/streamcap/cmd"
	"github.com/streamcap/streamcap/config"
	"github.com/streamcap/streamcap/log"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
