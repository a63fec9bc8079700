package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/drafthook/drafthook/backend/internal/router"
	"github.com/drafthook/drafthook/backend/internal/setup"
	"github.com/drafthook/drafthook/shared/config"
	"github.com/drafthook/drafthook/shared/logger"
)

func main() {
	log.SetFlags(log.Lshortfile)

	var configFolder string
	flag.StringVar(&configFolder, "config_folder", "backend/config", "path to folder with configs")
	flag.Parse()

	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.Log.Level, cfg.Public.Log.JSON)

	deps, err := setup.SetupDependencies(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer deps.Storage.Cleanup()

	r := router.New(deps)

	httpPort := os.Getenv("PORT")
	if httpPort == "" {
		httpPort = fmt.Sprint(cfg.Public.Server.Port)
	}
	log.Printf("Server started on :%s", httpPort)
	log.Fatal(http.ListenAndServe(":"+httpPort, r))
}
