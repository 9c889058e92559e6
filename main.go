package main

import (
	"fmt"
	"github.com/bookclub/bookpoll/api/database"
	"github.com/bookclub/bookpoll/api/env"
	"github.com/bookclub/bookpoll/logger"
	"github.com/bookclub/bookpoll/modules"
	"github.com/gin-gonic/gin"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	defer func() {
		err := logger.Close()
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Error closing logger: %s", err.Error())
		}
	}()

	defer database.Close()

	if _, err := database.Get(); err != nil {
		logger.Err().Printf("Unable to connect to database: %s", err.Error())
		os.Exit(1)
	}

	if !env.GetBool("debug") {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.Default()

	enabled := env.GetStringArray("modules", ",")
	if len(enabled) == 1 && enabled[0] == "" {
		enabled = []string{"all"}
	}
	modules.Load(engine, enabled)
	logger.Out().Printf("Serving %d modules\n", len(modules.GetLoaded()))

	server := &http.Server{
		Addr:    ":" + env.GetOr("web.port", "8080"),
		Handler: engine,
	}

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			logger.Err().Print(err.Error())
			os.Exit(1)
		}
	}()

	// Wait for a CTRL-C
	fmt.Println(`Now running. Press CTRL-C to exit.`)
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc
	fmt.Println("Shutting down")

	_ = server.Close()
}
