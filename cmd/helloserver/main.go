package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpserver "github.com/semsion/go-multithreaded-http-server"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:7878", "listen address")
	workers := flag.Int("workers", 4, "number of pool workers")
	contentDir := flag.String("content", ".", "directory holding hello.html and 404.html")
	dbPath := flag.String("db", "", "path to the sqlite access archive (empty disables it)")
	sleepFor := flag.Duration("sleep", 5*time.Second, "delay applied by the /sleep route")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	srv, err := httpserver.NewServer(&httpserver.Config{
		Addr:    *addr,
		Workers: *workers,
		DbPath:  *dbPath,
		Mux:     httpserver.NewFileMux(*contentDir, *sleepFor),
		Logger:  logger,
	})
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		<-sigs

		if shutdownErr := srv.Shutdown(); shutdownErr != nil {
			logger.Error(shutdownErr.Error())
		}
	}()

	if err = srv.Serve(); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	// Serve returned because the listener was closed; wait for the
	// in-flight Shutdown to finish draining the pool.
	if err = srv.Shutdown(); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}
