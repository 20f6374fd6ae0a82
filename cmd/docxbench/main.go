package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"docxbench/engine/internal/appdirs"
	"docxbench/engine/internal/engine"
	"docxbench/engine/internal/envfile"
	"docxbench/engine/internal/envutil"
	"docxbench/engine/internal/errinfo"
	"docxbench/engine/internal/logging"
	"docxbench/engine/internal/mcpserver"
	"docxbench/engine/internal/rpc"
	"docxbench/engine/internal/settings"
)

func main() {
	envResult := envfile.Load()
	debug := envutil.Bool("DOCXBENCH_DEBUG")
	dataDir, err := appdirs.DataDir()
	if err != nil {
		log.Fatalf("docxbench init failed: %v", err)
	}
	logSetup, logErr := logging.NewFileLogger(appdirs.LogsDir(dataDir), debug)
	logger := logSetup.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	logger = logger.With("component", "docxbench")
	if logSetup.Enabled {
		logger.Info("engine.logging_enabled", "path", logSetup.Path)
	}
	if envResult.Loaded() {
		logger.Debug("engine.env_loaded", "path", envResult.Path, "applied", envResult.Applied, "shadowed", envResult.Shadowed)
	}
	if envResult.Err != nil {
		logger.Warn("engine.env_load_failed", "path", envResult.Path, "error", envResult.Err.Error())
	}
	if logErr != nil {
		logger.Warn("engine.log_setup_failed", "error", logErr.Error())
	}
	if logSetup.Close != nil {
		defer logSetup.Close()
	}

	eng, err := engine.New(engine.WithLogger(logger))
	if err != nil {
		logger.Error("engine.init_failed", "error", err.Error())
		log.Fatalf("engine init failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	transport := eng.Settings().Transport
	logger.Info("engine.transport", "transport", transport)
	switch transport {
	case settings.TransportJSONRPC:
		err = serveJSONRPC(ctx, eng, logger)
	default:
		err = mcpserver.New(eng, logger.With("transport", "mcp")).Serve(ctx, os.Stdin, os.Stdout)
	}
	if err != nil && ctx.Err() == nil {
		logger.Error("engine.server_error", "transport", transport, "error", err.Error())
		log.Fatalf("server error: %v", err)
	}
}

func serveJSONRPC(ctx context.Context, eng *engine.Engine, logger *slog.Logger) error {
	server := rpc.NewServer(engine.APIVersion, os.Stdin, os.Stdout, logger.With("transport", "jsonrpc"))

	register := func(method string, fn func(context.Context, json.RawMessage) (any, *errinfo.ErrorInfo)) {
		server.Register(method, func(ctx context.Context, params json.RawMessage) (any, *rpc.Error) {
			result, errInfo := fn(ctx, params)
			if errInfo != nil {
				return nil, &rpc.Error{Message: errInfo.Error(), Data: errInfo}
			}
			return result, nil
		})
	}

	register("EngineGetInfo", eng.EngineGetInfo)
	register("DocxRead", eng.DocxRead)
	register("DocxWrite", eng.DocxWrite)
	register("DocxEditParagraph", eng.DocxEditParagraph)
	register("DocxInsert", eng.DocxInsert)

	return server.Serve(ctx)
}
