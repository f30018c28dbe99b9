package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/tanpawarit/clinical-scribe/agent/agents/clinical"
	"github.com/tanpawarit/clinical-scribe/agent/agents/orchestrator"
	audiox "github.com/tanpawarit/clinical-scribe/agent/audio"
	"github.com/tanpawarit/clinical-scribe/agent/conversation"
	llmx "github.com/tanpawarit/clinical-scribe/agent/llm"
	recordx "github.com/tanpawarit/clinical-scribe/agent/record"
	retryx "github.com/tanpawarit/clinical-scribe/agent/retry"
	"github.com/tanpawarit/clinical-scribe/agent/session"
	statex "github.com/tanpawarit/clinical-scribe/agent/state"
	toolx "github.com/tanpawarit/clinical-scribe/agent/tool"
	configx "github.com/tanpawarit/clinical-scribe/pkg/config"
	_ "github.com/tanpawarit/clinical-scribe/pkg/logger/autoload"
	postgresx "github.com/tanpawarit/clinical-scribe/pkg/postgres"
	whisperx "github.com/tanpawarit/clinical-scribe/pkg/whisper"
)

type AppConfig struct {
	Retry        retryx.Config       `split_words:"true"`
	Conversation conversation.Config `split_words:"true"`
	Audio        audiox.Config       `split_words:"true"`
	Records      recordx.Config      `split_words:"true"`
	SessionStore bool                `envconfig:"SESSION_STORE" split_words:"true" default:"false"`
	EnsureSchema bool                `envconfig:"ENSURE_SCHEMA" split_words:"true" default:"true"`
}

func main() {
	visitID := flag.Int64("visit", 0, "visit id to document")
	threadID := flag.String("thread", "", "existing thread id (a new one is created when empty)")
	transcript := flag.String("transcript", "", "transcript text of the visit")
	audioPath := flag.String("audio", "", "path of the recorded audio file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.Logger.WithContext(ctx)

	appCfg := configx.MustNew[AppConfig]("SCRIBE")
	llmCfg := configx.MustNew[llmx.Config]("LLM")
	whisperCfg := configx.MustNew[whisperx.Config]("WHISPER")
	postgresCfg := configx.MustNew[postgresx.Config]("POSTGRES")

	db := postgresx.MustOpen(*postgresCfg)
	defer db.Close()

	records, err := recordx.NewStore(db, appCfg.Records)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize record store")
	}
	if appCfg.EnsureSchema {
		if err := records.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to ensure database schema")
		}
	}

	bridge, err := toolx.NewBridge(
		whisperx.MustNew(*whisperCfg),
		audiox.NewFFmpegNormalizer(appCfg.Audio),
		records,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tool bridge")
	}

	agents, err := clinical.NewRegistry(ctx, *llmCfg, bridge)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create agents")
	}

	conv, err := conversation.NewOrchestrator(agents, appCfg.Conversation)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize conversation orchestrator")
	}

	var sessionOpts []session.Option
	if appCfg.SessionStore {
		upstashCfg := configx.MustNew[statex.UpstashRedisConfig]("UPSTASH_REDIS")
		store, err := statex.NewUpstashRedisStore(*upstashCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize session store")
		}
		sessionOpts = append(sessionOpts, session.WithStore(store))
	}
	sessions, err := session.NewRegistry(session.UUIDThreads{}, sessionOpts...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize session registry")
	}

	svc, err := orchestrator.New(sessions, conv, retryx.New(appCfg.Retry))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize documentation service")
	}

	thread := *threadID
	if thread == "" {
		thread, err = svc.CreateSession(ctx, *visitID)
		if err != nil {
			log.Fatal().Err(err).Int64("visit_id", *visitID).Msg("failed to create session")
		}
	}

	turns, err := svc.ProcessTurn(ctx, orchestrator.ProcessRequest{
		ThreadID:   thread,
		VisitID:    *visitID,
		AudioPath:  *audioPath,
		Transcript: *transcript,
	})
	if err != nil {
		log.Fatal().Err(err).Int64("visit_id", *visitID).Msg("documentation failed")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(turns); err != nil {
		log.Fatal().Err(err).Msg("failed to write turns")
	}
}
