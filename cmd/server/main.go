package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"raftregister/internal/cluster"
	"raftregister/internal/raftkv"
	"raftregister/internal/transport"
)

func main() {
	idEnv := os.Getenv("SERVER_ID")
	id, err := strconv.Atoi(idEnv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "SERVER_ID must be set to an integer server id, got %q\n", idEnv)
		os.Exit(1)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	roster := cluster.DefaultRoster()
	if _, ok := roster.Addr(id); !ok {
		logger.Fatalf("server id %d is not a member of the roster", id)
	}

	client := transport.NewHTTPClient()
	node := raftkv.NewNode(id, roster, client, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	node.Start(ctx)

	srv := transport.NewServer(node, logger)
	port := cluster.BasePort + id

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%d", port),
		Handler: srv.Handler(),
	}

	go func() {
		logger.WithFields(logrus.Fields{"id": id, "addr": httpServer.Addr}).Info("listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("server stopped: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("graceful shutdown failed")
	}
}
