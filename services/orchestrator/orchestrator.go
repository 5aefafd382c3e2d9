// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package orchestrator provides the core CourseCompass query service.
//
// This package contains the main Orchestrator type that coordinates all
// components of the service: HTTP routing, the LLM client, the policy
// engine, the course vector store, document ingestion, and observability
// infrastructure.
//
// # Usage
//
//	cfg := orchestrator.Config{Port: 12210, LLMBackend: "anthropic"}
//	svc, err := orchestrator.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svc.Run()
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/AleutianAI/CourseCompass/services/ingest"
	"github.com/AleutianAI/CourseCompass/services/llm"
	"github.com/AleutianAI/CourseCompass/services/orchestrator/datatypes"
	"github.com/AleutianAI/CourseCompass/services/orchestrator/middleware"
	"github.com/AleutianAI/CourseCompass/services/orchestrator/observability"
	"github.com/AleutianAI/CourseCompass/services/orchestrator/routes"
	"github.com/AleutianAI/CourseCompass/services/orchestrator/services"
	"github.com/AleutianAI/CourseCompass/services/orchestrator/session"
	"github.com/AleutianAI/CourseCompass/services/orchestrator/vectorstore"
	"github.com/AleutianAI/CourseCompass/services/policy_engine"
)

// =============================================================================
// Interface Definition
// =============================================================================

// Service defines the contract for the orchestrator service.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use. Run() blocks and should
// only be called once per instance.
type Service interface {
	// Run starts the HTTP server and blocks until shutdown or error.
	Run() error

	// Router returns the underlying Gin engine for testing.
	//
	// # Limitations
	//
	//   - Should not be used to modify routes after construction
	Router() *gin.Engine
}

// =============================================================================
// Configuration
// =============================================================================

// Config holds orchestrator configuration options.
//
// # Description
//
// Config centralizes all configuration for the orchestrator service.
// Values can be populated from environment variables, config files,
// or programmatically for testing. All fields have defaults applied
// by New().
type Config struct {
	// Port is the HTTP server port. Default: 12210
	Port int

	// LLMBackend specifies the LLM provider.
	// Valid values: "anthropic", "claude", "openai"
	// Default: "anthropic"
	LLMBackend string

	// WeaviateURL is the Weaviate vector database URL.
	// If empty, an in-memory store is used instead.
	// Example: "http://localhost:8080"
	WeaviateURL string

	// OTelEndpoint is the OpenTelemetry collector endpoint.
	// Default: "coursecompass-otel-collector:4317"
	OTelEndpoint string

	// DisableMetrics turns off the Prometheus metrics endpoint.
	// Metrics are enabled by default; the zero value keeps them on.
	DisableMetrics bool

	// GinMode sets the Gin framework mode.
	// Valid values: "debug", "release", "test"
	// Default: uses GIN_MODE env var or "debug"
	GinMode string

	// MaxResults caps how many chunks a content search returns.
	// A value of 0 is honored as-is: searches report a configuration
	// error instead of results. Default: 5 when negative.
	MaxResults int

	// MaxHistory is how many prior exchanges each session retains.
	// Default: 2
	MaxHistory int

	// CourseDocsDir is the folder of course documents loaded at startup.
	// If empty, no documents are loaded.
	CourseDocsDir string

	// WatchCourseDocs enables a filesystem watcher that re-ingests
	// documents written to CourseDocsDir while the server runs.
	WatchCourseDocs bool

	// SessionSweepInterval is how often idle sessions are reclaimed.
	// Default: 10 minutes.
	SessionSweepInterval time.Duration

	// SessionMaxIdle is how long a session may sit untouched before the
	// sweeper deletes it. Default: 2 hours.
	SessionMaxIdle time.Duration
}

// =============================================================================
// Implementation
// =============================================================================

// service implements Service for production use.
//
// # Description
//
// service coordinates:
//   - HTTP routing via Gin
//   - The LLM client for answer generation
//   - The policy engine scanning outbound queries
//   - The course vector store (Weaviate or in-memory)
//   - Startup ingestion and the optional folder watcher
//   - OpenTelemetry tracing and Prometheus metrics
//
// # Thread Safety
//
// Thread-safe after construction. All fields are read-only after New()
// returns.
type service struct {
	config         Config
	router         *gin.Engine
	llmClient      llm.LLMClient
	policyEngine   *policy_engine.PolicyEngine
	store          vectorstore.Store
	rag            *services.RAGSystem
	weaviateClient *weaviate.Client
	watcher        *ingest.FolderWatcher
	sweeper        *session.Sweeper
	tracerCleanup  func(context.Context)
	bgCancel       context.CancelFunc
}

// =============================================================================
// Constructor
// =============================================================================

// New creates a new orchestrator Service with the given configuration.
//
// # Description
//
// New initializes all orchestrator components:
//  1. Applies default configuration for missing values
//  2. Initializes OpenTelemetry tracing
//  3. Initializes Prometheus metrics
//  4. Creates the vector store (Weaviate if configured, in-memory otherwise)
//  5. Initializes the policy engine and LLM client
//  6. Builds the RAG system and loads course documents from disk
//  7. Starts the folder watcher and session sweeper
//  8. Sets up HTTP routes
//
// # Inputs
//
//   - cfg: Service configuration. Zero values use defaults.
//
// # Outputs
//
//   - Service: Ready-to-run orchestrator service
//   - error: Non-nil if initialization fails
//
// # Limitations
//
//   - LLM client creation fails if the provider's API key is missing
//   - Weaviate connection is optional; the in-memory store is the fallback
//
// # Assumptions
//
//   - Environment variables are set for LLM providers (API keys, URLs)
func New(cfg Config) (Service, error) {
	s := &service{
		config: applyConfigDefaults(cfg),
	}

	cleanup, err := s.initTracer()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}
	s.tracerCleanup = cleanup

	if !s.config.DisableMetrics {
		observability.InitMetrics()
		slog.Info("Initialized Prometheus metrics")
	}

	s.initStore()

	s.policyEngine, err = policy_engine.NewPolicyEngine()
	if err != nil {
		s.cleanup()
		return nil, fmt.Errorf("failed to initialize policy engine: %w", err)
	}

	if err := s.initLLMClient(); err != nil {
		s.cleanup()
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}

	s.rag, err = services.NewRAGSystem(s.store, s.llmClient, s.config.LLMBackend, s.config.MaxHistory)
	if err != nil {
		s.cleanup()
		return nil, fmt.Errorf("failed to build RAG system: %w", err)
	}

	bgCtx, cancel := context.WithCancel(context.Background())
	s.bgCancel = cancel

	s.loadCourseDocuments(bgCtx)
	s.startWatcher(bgCtx)
	s.startSweeper(bgCtx)

	s.initRouter()

	return s, nil
}

// =============================================================================
// Service Interface Methods
// =============================================================================

// Run starts the HTTP server and blocks until shutdown or error.
func (s *service) Run() error {
	defer s.cleanup()

	addr := fmt.Sprintf(":%d", s.config.Port)
	slog.Info("Starting orchestrator server", "port", s.config.Port)

	return s.router.Run(addr)
}

// Router returns the underlying Gin engine for testing.
func (s *service) Router() *gin.Engine {
	return s.router
}

// =============================================================================
// Private Initialization Methods
// =============================================================================

// applyConfigDefaults fills in missing configuration values.
func applyConfigDefaults(cfg Config) Config {
	if cfg.Port == 0 {
		cfg.Port = 12210
	}
	if cfg.LLMBackend == "" {
		cfg.LLMBackend = "anthropic"
	}
	if cfg.OTelEndpoint == "" {
		cfg.OTelEndpoint = "coursecompass-otel-collector:4317"
	}
	// MaxResults of exactly 0 is a deliberate misconfiguration surface and
	// must survive defaulting; only negatives fall back.
	if cfg.MaxResults < 0 {
		cfg.MaxResults = 5
	}
	if cfg.MaxHistory <= 0 {
		cfg.MaxHistory = session.DefaultMaxHistory
	}
	if cfg.SessionSweepInterval == 0 {
		cfg.SessionSweepInterval = session.DefaultSweeperConfig().Interval
	}
	if cfg.SessionMaxIdle == 0 {
		cfg.SessionMaxIdle = session.DefaultSweeperConfig().MaxIdle
	}
	return cfg
}

// initTracer initializes OpenTelemetry distributed tracing.
//
// # Limitations
//
//   - Uses insecure gRPC connection (appropriate for internal networks)
func (s *service) initTracer() (func(context.Context), error) {
	ctx := context.Background()

	conn, err := grpc.NewClient(s.config.OTelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection: %w", err)
	}

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("coursecompass-orchestrator")))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))

	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	cleanup := func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}

	return cleanup, nil
}

// initStore builds the course vector store.
//
// # Description
//
// When a Weaviate URL is configured the store is backed by Weaviate with
// the embedding sidecar providing vectors. Otherwise the service runs in
// lightweight mode: an in-memory store with deterministic hash embeddings,
// suitable for development and tests.
func (s *service) initStore() {
	weaviateURL := strings.Trim(s.config.WeaviateURL, "\"' ")

	if weaviateURL == "" || !strings.Contains(weaviateURL, "http") {
		slog.Info("Weaviate URL not configured, running in lightweight mode")
		s.store = vectorstore.NewMemoryStore(vectorstore.NewHashEmbedder(), s.config.MaxResults)
		return
	}

	parsedURL, err := url.Parse(weaviateURL)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		slog.Warn("Invalid Weaviate URL, running in lightweight mode", "url", weaviateURL)
		s.store = vectorstore.NewMemoryStore(vectorstore.NewHashEmbedder(), s.config.MaxResults)
		return
	}

	clientConf := weaviate.Config{
		Host:   parsedURL.Host,
		Scheme: parsedURL.Scheme,
	}
	client, err := weaviate.NewClient(clientConf)
	if err != nil {
		slog.Warn("Failed to create Weaviate client, running in lightweight mode", "error", err)
		s.store = vectorstore.NewMemoryStore(vectorstore.NewHashEmbedder(), s.config.MaxResults)
		return
	}

	datatypes.EnsureWeaviateSchema(client)
	s.weaviateClient = client
	s.store = vectorstore.NewWeaviateStore(client, vectorstore.NewServiceEmbedder(), s.config.MaxResults)
	slog.Info("Weaviate store initialized", "url", weaviateURL)
}

// initLLMClient creates the LLM client for the configured backend.
func (s *service) initLLMClient() error {
	var err error

	switch s.config.LLMBackend {
	case "anthropic", "claude":
		s.llmClient, err = llm.NewAnthropicClient()
		slog.Info("Using Anthropic (Claude) LLM backend")
	case "openai":
		s.llmClient, err = llm.NewOpenAIClient()
		slog.Info("Using OpenAI LLM backend")
	default:
		slog.Warn("Unknown LLM backend, defaulting to anthropic", "backend", s.config.LLMBackend)
		s.llmClient, err = llm.NewAnthropicClient()
	}

	return err
}

// loadCourseDocuments ingests the configured docs folder at startup.
func (s *service) loadCourseDocuments(ctx context.Context) {
	if s.config.CourseDocsDir == "" {
		return
	}

	courses, chunks, err := s.rag.AddCourseFolder(ctx, s.config.CourseDocsDir)
	if err != nil {
		slog.Warn("Startup course ingestion failed",
			"dir", s.config.CourseDocsDir,
			"error", err)
		return
	}
	slog.Info("Loaded course documents",
		"dir", s.config.CourseDocsDir,
		"courses_added", courses,
		"chunks_added", chunks)
}

// startWatcher begins watching the docs folder for new course documents.
func (s *service) startWatcher(ctx context.Context) {
	if !s.config.WatchCourseDocs || s.config.CourseDocsDir == "" {
		return
	}

	watcher, err := ingest.NewFolderWatcher(s.config.CourseDocsDir, func(path string) {
		course, chunks, err := s.rag.AddCourseDocument(ctx, path)
		if err != nil {
			slog.Warn("Failed to ingest watched document", "path", path, "error", err)
			return
		}
		slog.Info("Ingested watched document",
			"path", path,
			"course", course.Title,
			"chunks", chunks)
	})
	if err != nil {
		slog.Warn("Folder watcher unavailable", "dir", s.config.CourseDocsDir, "error", err)
		return
	}

	s.watcher = watcher
	go watcher.Start(ctx)
}

// startSweeper launches the idle-session sweeper.
func (s *service) startSweeper(ctx context.Context) {
	s.sweeper = session.NewSweeper(s.rag.Sessions(), session.SweeperConfig{
		Interval: s.config.SessionSweepInterval,
		MaxIdle:  s.config.SessionMaxIdle,
	})
	if err := s.sweeper.Start(ctx); err != nil {
		slog.Warn("Session sweeper failed to start", "error", err)
	}
}

// initRouter sets up the Gin HTTP router with all routes.
func (s *service) initRouter() {
	if s.config.GinMode != "" {
		gin.SetMode(s.config.GinMode)
	}
	s.router = gin.Default()
	s.router.Use(otelgin.Middleware("coursecompass-orchestrator"))
	s.router.Use(middleware.RequestID())

	routes.SetupRoutes(s.router, s.rag, s.policyEngine)
}

// cleanup releases all resources held by the service.
func (s *service) cleanup() {
	if s.sweeper != nil {
		s.sweeper.Stop()
	}
	if s.watcher != nil {
		if err := s.watcher.Stop(); err != nil {
			slog.Warn("Folder watcher stop error", "error", err)
		}
	}
	if s.bgCancel != nil {
		s.bgCancel()
	}
	if s.tracerCleanup != nil {
		s.tracerCleanup(context.Background())
	}
}

// =============================================================================
// Compile-time Interface Compliance
// =============================================================================

var _ Service = (*service)(nil)
