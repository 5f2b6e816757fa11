package app

import (
	httpH "github.com/yungbote/journey-backend/internal/http/handlers"
	"github.com/yungbote/journey-backend/internal/platform/logger"
	"github.com/yungbote/journey-backend/internal/realtime"
)

type Handlers struct {
	Health   *httpH.HealthHandler
	Journey  *httpH.JourneyHandler
	Run      *httpH.RunHandler
	Flow     *httpH.FlowHandler
	AIHelp   *httpH.AIHelpHandler
	Realtime *httpH.RealtimeHandler
}

func wireHandlers(log *logger.Logger, serviceset Services, sseHub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(),
		Journey:  httpH.NewJourneyHandler(log, serviceset.Journey),
		Run:      httpH.NewRunHandler(log, serviceset.Flow, sseHub),
		Flow:     httpH.NewFlowHandler(log, serviceset.Flow, sseHub),
		AIHelp:   httpH.NewAIHelpHandler(log, serviceset.AIHelp),
		Realtime: httpH.NewRealtimeHandler(log, sseHub),
	}
}
