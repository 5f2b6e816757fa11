package app

import (
	internalhttp "github.com/yungbote/journey-backend/internal/http"
	"github.com/yungbote/journey-backend/internal/platform/logger"
)

func wireRouter(log *logger.Logger, handlerset Handlers, mw Middleware) *internalhttp.Server {
	return internalhttp.NewServer(internalhttp.RouterConfig{
		Log:            log,
		AuthMiddleware: mw.Auth,

		JourneyHandler:  handlerset.Journey,
		RunHandler:      handlerset.Run,
		FlowHandler:     handlerset.Flow,
		AIHelpHandler:   handlerset.AIHelp,
		RealtimeHandler: handlerset.Realtime,

		HealthHandler: handlerset.Health,
	})
}
