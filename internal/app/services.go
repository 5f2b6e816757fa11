package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/journey-backend/internal/platform/logger"
	"github.com/yungbote/journey-backend/internal/realtime"
	"github.com/yungbote/journey-backend/internal/realtime/bus"
	"github.com/yungbote/journey-backend/internal/services"
)

type Services struct {
	Auth       services.AuthService
	Journey    services.JourneyService
	Run        services.RunService
	BlockState services.BlockStateService
	Notifier   services.RunNotifier
	Flow       services.FlowService
	AIHelp     services.AIHelpService

	// SSEBus is non-nil when events fan out through Redis instead of the
	// in-process hub; Start wires its forwarder back into the hub.
	SSEBus bus.Bus
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, sseHub *realtime.SSEHub) (Services, error) {
	log.Info("Wiring services...")

	var (
		sseBus  bus.Bus
		emitter services.SSEEmitter
	)
	if cfg.RedisAddr != "" {
		b, err := bus.NewRedisBus(log)
		if err != nil {
			return Services{}, err
		}
		sseBus = b
		emitter = &services.RedisEmitter{Bus: b, Log: log}
		log.Info("SSE events routed through redis", "addr", cfg.RedisAddr)
	} else {
		emitter = &services.HubEmitter{Hub: sseHub}
	}

	authService := services.NewAuthService(log, cfg.JWTSecretKey)
	journeyService := services.NewJourneyService(db, log, reposet.Journey)
	runService := services.NewRunService(db, log, reposet.Run, reposet.BlockState)
	blockStateService := services.NewBlockStateService(db, log, reposet.BlockState)
	notifier := services.NewRunNotifier(emitter)

	flowService := services.NewFlowService(
		log,
		journeyService,
		runService,
		blockStateService,
		reposet.RunTransition,
		reposet.Tx,
		notifier,
	)

	aiHelpService := services.NewAIHelpService(log, cfg.AIHelpBaseURL, cfg.AIHelpAPIKey)

	return Services{
		Auth:       authService,
		Journey:    journeyService,
		Run:        runService,
		BlockState: blockStateService,
		Notifier:   notifier,
		Flow:       flowService,
		AIHelp:     aiHelpService,
		SSEBus:     sseBus,
	}, nil
}
