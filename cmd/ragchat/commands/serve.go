package commands

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/akolanti/ragchain/internal/app"
	"github.com/akolanti/ragchain/internal/config"
	"github.com/akolanti/ragchain/internal/data/redisStore"
	"github.com/akolanti/ragchain/internal/data/store"
	"github.com/akolanti/ragchain/internal/domain/jobModel"
	"github.com/akolanti/ragchain/internal/handlers"
	"github.com/akolanti/ragchain/internal/job"
	"github.com/akolanti/ragchain/internal/middleware"
	"github.com/akolanti/ragchain/internal/rag"
	"github.com/akolanti/ragchain/internal/server"
	"github.com/akolanti/ragchain/internal/worker"
	"github.com/akolanti/ragchain/pkg/logger_i"
)

var (
	listenAddr string
	uploadDir  string
)

// NewServeCmd creates serve command
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the asynchronous chat and ingestion API",
		Long: `Serve the HTTP API. Chat and ingest requests are queued as jobs and
processed by an elastic worker pool; poll /status/{id} for the result.

  POST /chat         {"message": "...", "chat_id": "..."}
  POST /ingest       {"source": "...", "document_name": "..."} or multipart upload
  GET  /status/{id}
  GET  /health
  GET  /metrics

Jobs and chat history are kept in Redis, or in memory when Redis is not
reachable.

Examples:
  ragchat serve
  ragchat serve --listen-addr :8080`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&listenAddr, "listen-addr", "", "Server listen address (default LISTEN_ADDR or "+config.ServerListenAddr+")")
	cmd.Flags().StringVar(&uploadDir, "upload-dir", config.UploadDir, "Directory for uploaded documents")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if listenAddr != "" {
		cfg.ListenAddr = listenAddr
	}
	logger := logger_i.NewLogger("main")

	//init buffered job channel
	jobChannel := make(chan jobModel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel := make(chan bool, 1)
	var workerWaitGroup sync.WaitGroup

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	jobStore, chatStore, closeStores := openStores(serviceContext, cfg, logger)
	defer closeStores()

	logger.Info("Starting job service")
	service := job.InitJobService(job.ServiceConfig{
		JobChannel:        jobChannel,
		DispatcherChannel: dispatcherChannel,
		JobStore:          jobStore,
		ChatStore:         chatStore,
	})

	sess, err := app.Open(serviceContext, cfg, app.NeedModel|app.NeedRetrieval)
	if err != nil {
		logger.Error("One or more external services failed to initialize. Shutting down.", "error", err)
		return err
	}
	defer sess.Close()

	ingester, err := sess.Ingester()
	if err != nil {
		return err
	}
	ragService := rag.NewService(sess.ConversationalRAG(), chatStore, ingester, config.JobTimeout)

	//init worker pool
	pool := worker.NewPool(service, ragService, stopWorkerChannel, &workerWaitGroup)
	pool.Start()

	mw := middleware.New(cfg.AuthToken, cfg.NoAuthBypass)
	go mw.Limiter().RunJanitor(serviceContext, config.LimiterSweepInterval, config.LimiterIdleTTL)
	srv := server.New(cfg.ListenAddr, server.NewRouter(handlers.NewJobHandler(service, uploadDir), mw))

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(gracefulShutdown)
	stopExecution := make(chan bool, 1)

	go srv.ShutDownHandler(server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	})

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.ListenAndServe() }()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
		<-stopExecution
	case <-stopExecution:
	}
	logger.Info("Server stopped")
	return nil
}

// openStores connects the job store and the chat history store to Redis and
// falls back to in-memory stores when Redis is offline.
func openStores(ctx context.Context, cfg *config.Config, logger *logger_i.Logger) (jobModel.JobStore, jobModel.ChatStore, func()) {
	jobsRedis, err := redisStore.New(ctx, cfg.RedisAddr, cfg.RedisPassword, config.RedisJobStore)
	if err != nil {
		logger.Error("Redis stores are offline", "error", err)
		return store.InitInMemoryJobStore(), store.InitInMemoryHistoryStore(), func() {}
	}
	historyRedis, err := redisStore.New(ctx, cfg.RedisAddr, cfg.RedisPassword, config.RedisHistoryStore)
	if err != nil {
		logger.Error("Redis stores are offline", "error", err)
		_ = jobsRedis.Close()
		return store.InitInMemoryJobStore(), store.InitInMemoryHistoryStore(), func() {}
	}

	closeFn := func() {
		_ = jobsRedis.Close()
		_ = historyRedis.Close()
	}
	return store.NewRedisJobStore(jobsRedis), store.NewRedisHistoryStore(historyRedis, config.RedisHistoryStoreTTL), closeFn
}
