package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/htx-dental-leads/cmd/mainconfig"
	"github.com/wolfman30/htx-dental-leads/internal/catalog"
	"github.com/wolfman30/htx-dental-leads/internal/chat"
	"github.com/wolfman30/htx-dental-leads/internal/classify"
	appconfig "github.com/wolfman30/htx-dental-leads/internal/config"
	"github.com/wolfman30/htx-dental-leads/internal/dialogue"
	"github.com/wolfman30/htx-dental-leads/internal/distribution"
	httpmiddleware "github.com/wolfman30/htx-dental-leads/internal/http/middleware"
	"github.com/wolfman30/htx-dental-leads/internal/leads"
	"github.com/wolfman30/htx-dental-leads/internal/llm"
	"github.com/wolfman30/htx-dental-leads/internal/matching"
	"github.com/wolfman30/htx-dental-leads/internal/notify"
	"github.com/wolfman30/htx-dental-leads/internal/observability/metrics"
	"github.com/wolfman30/htx-dental-leads/internal/voice"
	"github.com/wolfman30/htx-dental-leads/pkg/logging"
)

// streamMaxLen keeps the Redis lead stream bounded.
const streamMaxLen = 10000

// app holds every long-lived component of the API process.
type app struct {
	metricsHandler http.Handler
	dispatcher     *notify.Dispatcher
	leads          *leads.Handler
	voice          *voice.Handler
	chat           *chat.Handler
	browse         *matching.BrowseHandler
	limiter        *httpmiddleware.RateLimiter

	closers []func()
}

// Close releases connections in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func (a *app) onClose(fn func()) { a.closers = append(a.closers, fn) }

func buildApp(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*app, error) {
	a := &app{}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	reg, pipelineMetrics := setupMetrics()
	a.metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})

	var awsCfg *aws.Config
	if mainconfig.AWSEnabled(cfg) {
		loaded, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		awsCfg = &loaded
	}

	providers, chatModel, closeProviders := buildModelProviders(ctx, cfg, awsCfg, logger)
	a.onClose(closeProviders)

	var classifierClient llm.Client
	if len(providers) > 0 {
		classifierClient = llm.NewFallbackClient(logger, providers...)
	}
	classifier := classify.New(classify.Options{
		Client:  classifierClient,
		Timeout: cfg.ClassifierTimeout,
		Logger:  logger,
		Metrics: pipelineMetrics,
	})

	cat, err := catalog.NewFileCatalog(cfg.CatalogPath, logger)
	if err != nil {
		return nil, fmt.Errorf("load provider catalog: %w", err)
	}
	a.onClose(func() { _ = cat.Close() })
	go cat.Watch(ctx)

	sinks, closeSinks, err := buildSinks(ctx, cfg, awsCfg, logger)
	if err != nil {
		return nil, err
	}
	a.onClose(closeSinks)

	a.dispatcher = notify.NewDispatcher(sinks,
		notify.WithSinkTimeout(cfg.SinkTimeout),
		notify.WithLogger(logger),
		notify.WithMetrics(pipelineMetrics),
	)
	distributor := distribution.NewService(cat, a.dispatcher,
		distribution.WithLogger(logger),
		distribution.WithMetrics(pipelineMetrics),
	)

	builder := leads.NewBuilder(cfg.DefaultArea)
	machineOpts := []dialogue.Option{dialogue.WithLogger(logger), dialogue.WithMetrics(pipelineMetrics)}
	chatScript := dialogue.ChatScript{SiteName: cfg.SiteName, PhoneDisplay: cfg.PhoneDisplay}
	voiceMachine := dialogue.NewMachine(dialogue.VoiceFlow,
		dialogue.VoiceScript{SpokenName: cfg.SiteName, DefaultArea: cfg.DefaultArea},
		classifier, builder, machineOpts...)
	chatMachine := dialogue.NewMachine(dialogue.ChatFlow, chatScript, classifier, builder, machineOpts...)
	quoteMachine := dialogue.NewMachine(dialogue.QuoteFlow, chatScript, classifier, builder, machineOpts...)

	a.leads = leads.NewHandler(builder, distributor, logger)
	a.voice = voice.NewHandler(voiceMachine, distributor, voice.Config{
		AuthToken:       cfg.TwilioAuthToken,
		PublicBaseURL:   cfg.PublicBaseURL,
		DispatchTimeout: cfg.SinkTimeout * 2,
	}, logger)

	agent, err := buildAgent(chatModel, builder, distributor, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.chat = chat.NewHandler(agent, chat.NewGuided(chatMachine, quoteMachine, distributor, logger), cfg.PhoneDisplay, logger)
	a.browse = matching.NewBrowseHandler(cat, logger)

	a.limiter = httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	stopSweep := make(chan struct{})
	go a.limiter.Run(stopSweep)
	a.onClose(func() { close(stopSweep) })

	ok = true
	return a, nil
}

// setupMetrics registers the pipeline collectors plus the process and Go
// runtime collectors on a private registry.
func setupMetrics() (*prometheus.Registry, *metrics.PipelineMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, metrics.NewPipelineMetrics(reg)
}

// buildModelProviders returns the classifier provider chain in preference
// order (OpenAI, Gemini, Bedrock) and the OpenAI chat model when configured.
// Providers without credentials are skipped.
func buildModelProviders(ctx context.Context, cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) ([]llm.Client, *openai.ChatModel, func()) {
	var (
		providers []llm.Client
		chatModel *openai.ChatModel
		closers   []func()
	)

	if strings.TrimSpace(cfg.OpenAIAPIKey) != "" {
		cm, err := llm.NewOpenAIChatModel(ctx, cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
		if err != nil {
			logger.Warn("openai model unavailable", "error", err)
		} else {
			chatModel = cm
			providers = append(providers, llm.NewEinoClient(cm))
		}
	}

	if strings.TrimSpace(cfg.GeminiAPIKey) != "" {
		gc, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Warn("gemini client unavailable", "error", err)
		} else {
			providers = append(providers, gc)
			closers = append(closers, func() { _ = gc.Close() })
		}
	}

	if cfg.BedrockModelID != "" && awsCfg != nil {
		providers = append(providers, llm.NewBedrockClient(bedrockruntime.NewFromConfig(*awsCfg), cfg.BedrockModelID))
	}

	if len(providers) == 0 {
		logger.Info("no model provider configured; classification uses keywords only")
	}
	return providers, chatModel, func() {
		for _, c := range closers {
			c()
		}
	}
}

func buildAgent(chatModel *openai.ChatModel, builder *leads.Builder, distributor leads.Distributor, cfg *appconfig.Config, logger *logging.Logger) (*chat.Agent, error) {
	if chatModel == nil {
		logger.Info("chat agent disabled; chat runs in guided mode")
		return nil, nil
	}
	agent, err := chat.NewAgent(chatModel, builder, distributor, chat.AgentConfig{
		SiteName:     cfg.SiteName,
		SiteURL:      cfg.PublicBaseURL,
		PhoneDisplay: cfg.PhoneDisplay,
		Model:        cfg.OpenAIModel,
		Temperature:  cfg.ChatTemperature,
		MaxTokens:    cfg.ChatMaxTokens,
		Timeout:      cfg.ChatTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create chat agent: %w", err)
	}
	return agent, nil
}

// newEmailSender picks the owner-email transport. "auto" prefers SendGrid,
// then SES; the stub only runs in development. Nil means no email sink.
func newEmailSender(cfg *appconfig.Config, ses *sesv2.Client, logger *logging.Logger) notify.EmailSender {
	sendgrid := func() notify.EmailSender {
		if s := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); s != nil {
			return s
		}
		return nil
	}
	sesSender := func() notify.EmailSender {
		if ses == nil {
			return nil
		}
		if s := notify.NewSESSender(ses, notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SiteName,
		}, logger); s != nil {
			return s
		}
		return nil
	}

	switch cfg.EmailProvider {
	case "sendgrid":
		return sendgrid()
	case "ses":
		return sesSender()
	case "stub":
		return notify.NewStubEmailSender(logger)
	}
	if s := sendgrid(); s != nil {
		return s
	}
	if s := sesSender(); s != nil {
		return s
	}
	if cfg.IsDevelopment() {
		return notify.NewStubEmailSender(logger)
	}
	return nil
}

// buildSinks constructs every configured lead sink. A sink whose
// credentials are absent is left out of the fan-out set.
func buildSinks(ctx context.Context, cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) ([]notify.Sink, func(), error) {
	var (
		sinks   []notify.Sink
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var sesClient *sesv2.Client
	if awsCfg != nil && (cfg.EmailProvider == "ses" || cfg.SESFromEmail != "") {
		sesClient = sesv2.NewFromConfig(*awsCfg)
	}
	if sender := newEmailSender(cfg, sesClient, logger); sender != nil && cfg.OwnerEmail != "" {
		sinks = append(sinks, notify.NewEmailSink(sender, cfg.OwnerEmail, cfg.SiteName))
	} else {
		logger.Warn("email sink disabled")
	}

	if cfg.SheetsWebhookURL != "" {
		sinks = append(sinks, notify.NewSheetsSink(cfg.SheetsWebhookURL, cfg.SinkTimeout))
	}

	if cfg.LeadQueueURL != "" && awsCfg != nil {
		sinks = append(sinks, notify.NewQueueSink(sqs.NewFromConfig(*awsCfg), cfg.LeadQueueURL))
	}

	if cfg.RedisAddr != "" {
		rdb := newRedisClient(cfg)
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable at startup; stream sink will retry per lead", "addr", cfg.RedisAddr, "error", err)
		}
		closers = append(closers, func() { _ = rdb.Close() })
		sinks = append(sinks, notify.NewStreamSink(rdb, cfg.LeadStream, streamMaxLen))
	}

	if cfg.DatabaseURL != "" {
		pool, err := connectPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, pool.Close)
		sinks = append(sinks, notify.NewRecordSink(leads.NewPostgresRepository(pool)))
	}

	return sinks, closeAll, nil
}

func newRedisClient(cfg *appconfig.Config) *redis.Client {
	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return redis.NewClient(opts)
}

func connectPostgresPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}
