// Command voxaura runs the VoxAura voice assistant server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/voxaura-ai/voxaura/internal/config"
	"github.com/voxaura-ai/voxaura/internal/health"
	"github.com/voxaura-ai/voxaura/internal/observe"
	"github.com/voxaura-ai/voxaura/internal/orchestrator"
	"github.com/voxaura-ai/voxaura/internal/resilience"
	"github.com/voxaura-ai/voxaura/internal/server"
	"github.com/voxaura-ai/voxaura/internal/session"
	"github.com/voxaura-ai/voxaura/internal/skill"
	"github.com/voxaura-ai/voxaura/internal/stream"
	doclocal "github.com/voxaura-ai/voxaura/pkg/provider/docextract/local"
	"github.com/voxaura-ai/voxaura/pkg/provider/llm"
	"github.com/voxaura-ai/voxaura/pkg/provider/llm/gemini"
	"github.com/voxaura-ai/voxaura/pkg/provider/llm/openai"
	"github.com/voxaura-ai/voxaura/pkg/provider/search/duckduckgo"
	"github.com/voxaura-ai/voxaura/pkg/provider/search/kb"
	"github.com/voxaura-ai/voxaura/pkg/provider/stt/assemblyai"
	"github.com/voxaura-ai/voxaura/pkg/provider/tts"
	ttslocal "github.com/voxaura-ai/voxaura/pkg/provider/tts/local"
	"github.com/voxaura-ai/voxaura/pkg/provider/tts/murf"
	"github.com/voxaura-ai/voxaura/pkg/provider/weather/openweather"
	"github.com/voxaura-ai/voxaura/pkg/provider/weather/weatherapi"
)

const serviceVersion = "0.1.0"

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "voxaura: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "voxaura: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	slog.SetDefault(newLogger(cfg.Server.LogLevel))

	slog.Info("voxaura starting",
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Metrics ───────────────────────────────────────────────────────────────
	metricsShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "voxaura",
		ServiceVersion: serviceVersion,
	})
	if err != nil {
		slog.Error("failed to initialise metrics", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsShutdown(shutdownCtx); err != nil {
			slog.Warn("metrics shutdown error", "err", err)
		}
	}()

	// ── Providers ─────────────────────────────────────────────────────────────
	transcribe, err := assemblyai.New(cfg.Providers.AssemblyAIKey)
	if err != nil {
		slog.Error("failed to create speech recognition provider", "err", err)
		return 1
	}

	chat, err := buildChatProvider(ctx, cfg)
	if err != nil {
		slog.Error("failed to create generation provider", "err", err)
		return 1
	}

	synth := buildSynthProvider(cfg)
	handlers := buildSkillHandlers(cfg, chat)

	// ── Session store ─────────────────────────────────────────────────────────
	store, checkers, err := buildSessionStore(cfg)
	if err != nil {
		slog.Error("failed to create session store", "err", err)
		return 1
	}

	// ── Orchestrator + server ─────────────────────────────────────────────────
	orch := orchestrator.New(store, transcribe, chat, synth, doclocal.New(), handlers)

	streamOpts := []stream.Option{stream.WithChunkSize(cfg.Stream.ChunkSize)}
	if cfg.Stream.PaceMillis > 0 {
		streamOpts = append(streamOpts, stream.WithPace(time.Duration(cfg.Stream.PaceMillis)*time.Millisecond))
	}

	srv := server.New(cfg.Server.ListenAddr, orch,
		server.WithStreamer(stream.NewStreamer(streamOpts...)),
		server.WithHealth(health.New(checkers...)),
	)

	slog.Info("server ready — press Ctrl+C to shut down")

	if err := srv.Run(ctx); err != nil {
		slog.Error("run error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// buildChatProvider assembles the generation chain: Gemini primary with an
// OpenAI fallback when both keys are present, whichever is configured
// otherwise. At least one key is required.
func buildChatProvider(ctx context.Context, cfg *config.Config) (llm.Provider, error) {
	var primary llm.Provider
	primaryName := ""

	if cfg.Providers.GeminiKey != "" {
		var opts []gemini.Option
		if cfg.Providers.GeminiModel != "" {
			opts = append(opts, gemini.WithModel(cfg.Providers.GeminiModel))
		}
		p, err := gemini.New(ctx, cfg.Providers.GeminiKey, opts...)
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		primary = p
		primaryName = "gemini"
	}

	var secondary llm.Provider
	if cfg.Providers.OpenAIKey != "" {
		p, err := openai.New(cfg.Providers.OpenAIKey)
		if err != nil {
			return nil, fmt.Errorf("openai: %w", err)
		}
		if primary == nil {
			primary = p
			primaryName = "openai"
		} else {
			secondary = p
		}
	}

	if primary == nil {
		return nil, errors.New("at least one of GEMINI_API_KEY or OPENAI_API_KEY is required")
	}

	chain := resilience.NewLLMFallback(primary, primaryName, resilience.FallbackConfig{})
	if secondary != nil {
		chain.AddFallback("openai", secondary)
	}
	slog.Info("generation provider ready", "primary", primaryName, "fallback", secondary != nil)
	return chain, nil
}

// buildSynthProvider assembles the synthesis chain: Murf when configured,
// always backed by the local clip generator so a reply can be spoken even
// with every remote backend down.
func buildSynthProvider(cfg *config.Config) tts.Provider {
	if cfg.Providers.MurfKey == "" {
		slog.Warn("MURF_API_KEY not set — using local synthesis only")
		return ttslocal.New()
	}
	primary, err := murf.New(cfg.Providers.MurfKey)
	if err != nil {
		slog.Warn("failed to create murf provider — using local synthesis only", "err", err)
		return ttslocal.New()
	}
	chain := resilience.NewTTSFallback(primary, "murf", resilience.FallbackConfig{})
	chain.AddFallback("local", ttslocal.New())
	return chain
}

// buildSkillHandlers wires the skill handlers the classifier can route to.
// Weather is only installed when a weather backend is configured; weather
// questions fall through to plain chat otherwise.
func buildSkillHandlers(cfg *config.Config, chat llm.Provider) map[skill.Skill]skill.Handler {
	searchChain := resilience.NewSearchFallback(duckduckgo.New(), "duckduckgo", resilience.FallbackConfig{})
	searchChain.AddFallback("kb", kb.New())

	handlers := map[skill.Skill]skill.Handler{
		skill.SkillSearch:   skill.NewSearchHandler(searchChain),
		skill.SkillStudy:    skill.NewStudyHandler(chat),
		skill.SkillDocument: skill.NewDocumentHandler(chat),
	}

	if h := buildWeatherHandler(cfg); h != nil {
		handlers[skill.SkillWeather] = h
	}
	return handlers
}

func buildWeatherHandler(cfg *config.Config) skill.Handler {
	var chain *resilience.WeatherFallback

	if cfg.Providers.WeatherAPIKey != "" {
		p, err := weatherapi.New(cfg.Providers.WeatherAPIKey)
		if err != nil {
			slog.Warn("failed to create weatherapi provider", "err", err)
		} else {
			chain = resilience.NewWeatherFallback(p, "weatherapi", resilience.FallbackConfig{})
		}
	}
	if cfg.Providers.OpenWeatherKey != "" {
		p, err := openweather.New(cfg.Providers.OpenWeatherKey)
		if err != nil {
			slog.Warn("failed to create openweather provider", "err", err)
		} else if chain == nil {
			chain = resilience.NewWeatherFallback(p, "openweather", resilience.FallbackConfig{})
		} else {
			chain.AddFallback("openweather", p)
		}
	}

	if chain == nil {
		slog.Warn("no weather backend configured — weather questions go to chat")
		return nil
	}
	return skill.NewWeatherHandler(chain)
}

// buildSessionStore creates the configured session backend plus the
// readiness checkers that go with it.
func buildSessionStore(cfg *config.Config) (session.Store, []health.Checker, error) {
	switch cfg.Sessions.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Sessions.RedisAddr,
			Password: cfg.Sessions.RedisPassword,
		})
		ttl := time.Duration(cfg.Sessions.TTLHours) * time.Hour
		store := session.NewRedisStore(client, ttl)
		slog.Info("session store ready", "backend", "redis", "addr", cfg.Sessions.RedisAddr)
		return store, []health.Checker{health.Ping("redis", store.Ping)}, nil
	case "memory", "":
		slog.Info("session store ready", "backend", "memory")
		return session.NewMemStore(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", cfg.Sessions.Backend)
	}
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
