package deps

import (
	"time"

	"github.com/MrSnakeDoc/revisit/internal/logger"
	"github.com/MrSnakeDoc/revisit/internal/push"
	"github.com/MrSnakeDoc/revisit/internal/router"
)

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	Router       *router.Router // message protocol dispatch
	Hub          *push.Hub      // websocket event fan-out
	AllowedCIDRS []string       // IPs allowed to reach the API (empty = no filter)
	TrustProxy   bool           // true if running behind a trusted reverse proxy
}
