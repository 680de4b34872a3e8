package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Batman16012001/Locally-Connector-New/internal/cache"
	"github.com/Batman16012001/Locally-Connector-New/internal/config"
	"github.com/Batman16012001/Locally-Connector-New/internal/controller"
)

type Server struct {
	sc     controller.ServerController
	jc     controller.JobController
	ic     controller.IngestController
	cache  cache.Cache
	config *config.Config
}

func New(config *config.Config, sc controller.ServerController, jc controller.JobController,
	ic controller.IngestController, cache cache.Cache) *http.Server {
	server := Server{
		sc:     sc,
		jc:     jc,
		ic:     ic,
		cache:  cache,
		config: config,
	}

	return &http.Server{
		Addr:         fmt.Sprintf(":%v", config.Port),
		Handler:      server.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}
