package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/mertcetin/docbase/internal/api/handlers"
	"github.com/mertcetin/docbase/internal/api/middleware"
	"github.com/mertcetin/docbase/internal/cache"
	"github.com/mertcetin/docbase/internal/config"
	"github.com/mertcetin/docbase/internal/document"
	"github.com/mertcetin/docbase/internal/embedding"
	"github.com/mertcetin/docbase/internal/llm"
	"github.com/mertcetin/docbase/internal/queue"
	"github.com/mertcetin/docbase/internal/rag"
	"github.com/mertcetin/docbase/internal/vectorstore"
)

type Router struct {
	mux   *chi.Mux
	db    *pgxpool.Pool
	redis *redis.Client
	cfg   *config.Config
	llmGW llm.Gateway
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config) *Router {
	return &Router{
		mux:   chi.NewRouter(),
		db:    db,
		redis: rdb,
		cfg:   cfg,
		llmGW: llm.NewGateway(cfg.LLM),
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	rl := middleware.NewRateLimiter(100, 200)
	r.Use(rl.Limit)

	// Health endpoints
	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	// Services
	var store vectorstore.Store
	if rt.db != nil {
		store = vectorstore.NewPgStore(rt.db, rt.cfg.Embedding.Dimensions)
	} else {
		store = vectorstore.NewMemoryStore(rt.cfg.Embedding.Dimensions)
	}

	embedSvc := embedding.NewService(rt.llmGW,
		rt.cfg.Embedding.Provider,
		rt.cfg.Embedding.Model,
		rt.cfg.Embedding.Dimensions,
		rt.cfg.Ingest.EmbedWorkers,
	)
	extractor := document.NewPDFExtractor()
	ingestor := rag.NewIngestor(extractor, embedSvc, store)

	generator := rag.NewGenerator(rt.llmGW, rt.cfg.LLM.DefaultProvider, rt.cfg.LLM.ChatModel)
	answerer := rag.NewAnswerer(embedSvc, store, generator, rt.cfg.Retrieval)

	var queueClient *queue.Client
	if rt.redis != nil {
		answerer = answerer.WithCache(cache.NewCache(rt.redis))
		queueClient = queue.NewClient(rt.cfg.Redis)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		docH := handlers.NewDocumentHandler(ingestor, store, queueClient, rt.cfg.Ingest)
		r.Route("/documents", func(r chi.Router) {
			r.Post("/", docH.Upload)
			r.Post("/async", docH.UploadAsync)
			r.Get("/", docH.List)
			r.Get("/{id}", docH.Get)
		})

		askH := handlers.NewAskHandler(answerer)
		r.Post("/ask", askH.Ask)
	})

	return r
}
