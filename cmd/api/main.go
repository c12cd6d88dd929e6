package main

import (
	"log"

	"stocktagger/cmd"
)

func main() {
	apiHandler, cfg, err := cmd.InitializeDependencies()
	if err != nil {
		log.Fatal(err)
	}
	defer cmd.CloseDependencies(apiHandler)

	err = apiHandler.StartApi(cfg.Api.Port)
	if err != nil {
		log.Fatal(err)
	}
}
