package faqbot

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/flarexio/faqbot/llm"
	"github.com/flarexio/faqbot/llm/openai"
	"github.com/flarexio/faqbot/vector"
)

// Service defines the question answering pipeline.
type Service interface {

	// Query answers a question from the indexed corpus. The first call
	// indexes the corpus. Pipeline failures surface only as ErrQueryFailed.
	Query(ctx context.Context, query string) (string, error)

	// Reindex runs the indexer again and returns the number of documents written.
	Reindex(ctx context.Context) (int, error)

	// State reports the lifecycle state of the index.
	State(ctx context.Context) (State, error)

	// Documents reports how many chunks the store holds.
	Documents(ctx context.Context) (int, error)

	// Close cancels in-flight indexing.
	Close() error
}

type ServiceMiddleware func(Service) Service

const flightKey = "index"

func NewService(ctx context.Context, cfg Config, embedder llm.Embedder, completer llm.Completer, collection vector.Collection) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := zap.L().With(
		zap.String("service", "faqbot"),
	)

	ctx, cancel := context.WithCancel(ctx)

	svc := &service{
		indexer:   NewIndexer(cfg, embedder, collection),
		retriever: NewRetriever(embedder, collection),
		completer: completer,
		store:     collection,

		cfg:    cfg,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}

	return svc, nil
}

type service struct {
	indexer   *Indexer
	retriever *Retriever
	completer llm.Completer
	store     vector.Collection

	state  atomic.Int32
	flight singleflight.Group

	cfg    Config
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func (svc *service) Close() error {
	if svc.cancel != nil {
		svc.cancel()
	}

	return nil
}

func (svc *service) Query(ctx context.Context, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", ErrInvalidQuery
	}

	log := svc.log.With(
		zap.String("action", "query"),
	)

	if err := svc.ensureReady(ctx); err != nil {
		svc.logFailure(log, err)
		return "", ErrQueryFailed
	}

	retrieveCtx, cancel := withTimeout(ctx, svc.cfg.Timeouts.Retrieve.Duration())
	chunks, err := svc.retriever.Retrieve(retrieveCtx, query, svc.cfg.Retrieval.TopK)
	cancel()
	if err != nil {
		svc.logFailure(log, err)
		return "", ErrQueryFailed
	}

	log.Debug("context retrieved", zap.Int("chunks", len(chunks)))

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	prompt := ComposePrompt(texts, query)

	completeCtx, cancel := withTimeout(ctx, svc.cfg.Timeouts.Complete.Duration())
	answer, err := svc.completer.Complete(completeCtx, prompt)
	cancel()
	if err != nil {
		svc.logFailure(log, &StageError{StageComplete, ErrCompletion, err})
		return "", ErrQueryFailed
	}

	return answer, nil
}

func (svc *service) Reindex(ctx context.Context) (int, error) {
	return svc.initialize(ctx, true)
}

func (svc *service) State(ctx context.Context) (State, error) {
	return State(svc.state.Load()), nil
}

func (svc *service) Documents(ctx context.Context) (int, error) {
	n, err := svc.store.Count(ctx)
	if err != nil {
		return 0, &StageError{StageRetrieve, ErrRetrieval, err}
	}

	return n, nil
}

func (svc *service) ensureReady(ctx context.Context) error {
	if State(svc.state.Load()) == StateReady {
		return nil
	}

	_, err := svc.initialize(ctx, false)
	return err
}

// initialize runs the indexer at most once at a time. Callers arriving while
// a run is in flight share its result. The run itself is bound to the
// service lifetime, so a caller giving up does not abort it for the others.
func (svc *service) initialize(ctx context.Context, force bool) (int, error) {
	ch := svc.flight.DoChan(flightKey, func() (any, error) {
		prev := State(svc.state.Load())
		if prev == StateReady && !force {
			return 0, nil
		}

		log := svc.log.With(
			zap.String("action", "initialize"),
			zap.Bool("force", force),
		)

		if prev != StateReady {
			svc.state.Store(int32(StateInitializing))
		}

		ctx, cancel := withTimeout(svc.ctx, svc.cfg.Timeouts.Index.Duration())
		defer cancel()

		n, err := svc.indexer.Index(ctx)
		if err != nil {
			if prev != StateReady {
				svc.state.Store(int32(StateUninitialized))
			}

			return 0, err
		}

		svc.state.Store(int32(StateReady))

		log.Info("index ready", zap.Int("documents", n))
		return n, nil
	})

	select {
	case <-ctx.Done():
		return 0, ctx.Err()

	case result := <-ch:
		if result.Err != nil {
			return 0, result.Err
		}

		n, _ := result.Val.(int)
		return n, nil
	}
}

func (svc *service) logFailure(log *zap.Logger, err error) {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		log = log.With(
			zap.String("stage", string(stageErr.Stage)),
			zap.String("kind", stageErr.Kind.Error()),
		)
	}

	if status := openai.StatusCode(err); status != 0 {
		log = log.With(zap.Int("status", status))
	}

	log.Error(err.Error())
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, d)
}
