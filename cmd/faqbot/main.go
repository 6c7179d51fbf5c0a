package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/micro"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/flarexio/faqbot"
	"github.com/flarexio/faqbot/auth"
	"github.com/flarexio/faqbot/history"
	"github.com/flarexio/faqbot/llm/openai"
	"github.com/flarexio/faqbot/persistence/chromem"
	"github.com/flarexio/faqbot/persistence/milvus"
	"github.com/flarexio/faqbot/persistence/redis"
	"github.com/flarexio/faqbot/vector"

	mcpE "github.com/flarexio/faqbot/mcp"
	httpT "github.com/flarexio/faqbot/transport/http"
	natsT "github.com/flarexio/faqbot/transport/nats"
)

func main() {
	cmd := &cli.Command{
		Name:  "faqbot",
		Usage: "FAQ question answering service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "path",
				Usage:   "Path to the FAQBot working directory",
				Sources: cli.EnvVars("FAQBOT_PATH"),
			},
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Config file (defaults to <path>/config.yaml)",
				Sources: cli.EnvVars("FAQBOT_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Serve the HTTP API, the MCP endpoint and optionally NATS",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "http-addr",
						Usage:   "HTTP server address",
						Value:   ":3000",
						Sources: cli.EnvVars("HTTP_ADDR"),
					},
					&cli.StringFlag{
						Name:    "nats",
						Usage:   "NATS server URL, NATS transport is disabled when empty",
						Sources: cli.EnvVars("NATS_URL"),
					},
					&cli.StringFlag{
						Name:    "nats-creds",
						Usage:   "NATS user credentials file",
						Sources: cli.EnvVars("NATS_CREDS"),
					},
					&cli.StringFlag{
						Name:    "topic",
						Usage:   "NATS subject prefix of the service endpoints",
						Value:   "faqbot",
						Sources: cli.EnvVars("NATS_TOPIC"),
					},
					&cli.BoolFlag{
						Name:  "warmup",
						Usage: "Index the corpus at startup instead of on the first query",
					},
				},
				Action: serve,
			},
			{
				Name:   "index",
				Usage:  "Index the corpus once and exit",
				Action: index,
			},
		},
	}

	err := cmd.Run(context.Background(), os.Args)
	if err != nil {
		log.Fatal(err.Error())
	}
}

func workDir(cmd *cli.Command) (string, error) {
	path := cmd.String("path")
	if path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".flarex", "faqbot"), nil
}

func setup(ctx context.Context, cmd *cli.Command) (AppConfig, *zap.Logger, error) {
	path, err := workDir(cmd)
	if err != nil {
		return AppConfig{}, nil, err
	}

	log, err := zap.NewDevelopment()
	if err != nil {
		return AppConfig{}, nil, err
	}

	zap.ReplaceGlobals(log)

	cfg, err := loadConfig(path, cmd.String("config"))
	if err != nil {
		return AppConfig{}, nil, err
	}

	return cfg, log, nil
}

// newService wires the pipeline to the configured providers and vector
// backend. The returned cleanup releases the backend connection.
func newService(ctx context.Context, cfg faqbot.Config, log *zap.Logger) (faqbot.Service, func(), error) {
	embedder, err := openai.NewEmbedder(cfg.Embedding)
	if err != nil {
		return nil, nil, err
	}

	completer, err := openai.NewCompleter(cfg.Completion)
	if err != nil {
		return nil, nil, err
	}

	var (
		db      vector.VectorDB
		cleanup = func() {}
	)

	switch cfg.Vector.Backend {
	case vector.BackendChromem:
		db, err = chromem.NewChromemVectorDB(cfg.Vector, embedder)
		if err != nil {
			return nil, nil, err
		}

	case vector.BackendMilvus:
		m, err := milvus.NewMilvusVectorDB(ctx, cfg.Vector.Milvus)
		if err != nil {
			return nil, nil, err
		}

		db = m
		cleanup = func() {
			if err := m.Close(context.Background()); err != nil {
				log.Warn(err.Error(), zap.String("backend", vector.BackendMilvus))
			}
		}

	default:
		return nil, nil, fmt.Errorf("%w: %s", vector.ErrUnsupportedBackend, cfg.Vector.Backend)
	}

	collection, err := db.Collection(ctx, cfg.Vector.Namespace)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	svc, err := faqbot.NewService(ctx, cfg, embedder, completer, collection)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	svc = faqbot.LoggingMiddleware(log)(svc)

	return svc, cleanup, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, log, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	svc, cleanup, err := newService(ctx, cfg.Config, log)
	if err != nil {
		return err
	}
	defer cleanup()
	defer svc.Close()

	endpoints := faqbot.MakeEndpoints(svc)

	r := gin.Default()
	httpT.UseCORS(r, cfg.HTTP.CORSOrigins)
	httpT.AddRouters(r, endpoints)
	httpT.AddStreamableRouters(r, mcpE.MakeEndpoints(svc))

	if cfg.AuthEnabled() {
		client, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer client.Close()

		authSvc, err := auth.NewService(cfg.Auth, redis.NewUserRepository(client))
		if err != nil {
			return err
		}

		authSvc = auth.LoggingMiddleware(log)(authSvc)

		historySvc := history.NewService(cfg.History, redis.NewHistoryRepository(client))
		historySvc = history.LoggingMiddleware(log)(historySvc)

		authEndpoints := auth.MakeEndpoints(authSvc)

		cookie := httpT.CookieConfig{
			MaxAge: cfg.Auth.TokenTTL,
			Secure: cfg.HTTP.SecureCookie,
		}

		httpT.AddAuthRouters(r, authEndpoints, cookie)
		httpT.AddHistoryRouters(r, history.MakeEndpoints(historySvc), authEndpoints)
	} else {
		log.Warn("auth and history disabled, JWT_SECRET and REDIS_ADDR are required")
	}

	// Add NATS Transport
	if natsURL := cmd.String("nats"); natsURL != "" {
		opts := []nats.Option{
			nats.Name("FAQBot Server"),
		}

		if creds := cmd.String("nats-creds"); creds != "" {
			opts = append(opts, nats.UserCredentials(creds))
		}

		nc, err := nats.Connect(natsURL, opts...)
		if err != nil {
			return err
		}
		defer nc.Drain()

		srv, err := micro.AddService(nc, micro.Config{
			Name:    "faqbot",
			Version: "1.0.0",
		})

		if err != nil {
			return err
		}
		defer srv.Stop()

		root := srv.AddGroup(cmd.String("topic"))
		if err := natsT.AddEndpoints(root, endpoints); err != nil {
			return err
		}
	}

	if cmd.Bool("warmup") {
		go svc.Reindex(ctx)
	}

	httpAddr := cmd.String("http-addr")
	go r.Run(httpAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sign := <-quit

	log.Info("graceful shutdown", zap.String("signal", sign.String()))
	return nil
}

func index(ctx context.Context, cmd *cli.Command) error {
	cfg, log, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.Vector.Backend == vector.BackendChromem && !cfg.Vector.Persistent {
		log.Warn("in-memory vector store, the index is discarded on exit")
	}

	svc, cleanup, err := newService(ctx, cfg.Config, log)
	if err != nil {
		return err
	}
	defer cleanup()
	defer svc.Close()

	n, err := svc.Reindex(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("indexed %d documents\n", n)
	return nil
}
