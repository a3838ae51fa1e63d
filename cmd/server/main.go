package main

import (
	"github.com/TRI-AMDD/causeway/backend/internal/server"
	"github.com/TRI-AMDD/causeway/backend/internal/util"
	"github.com/TRI-AMDD/causeway/backend/pkg/logger"
	"github.com/TRI-AMDD/causeway/backend/pkg/logger/console"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.New(console.Params{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
