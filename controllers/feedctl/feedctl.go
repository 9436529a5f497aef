package feedctl

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"nexusbet/feed"
	"nexusbet/helpers"
	"nexusbet/settlement"
	"nexusbet/store"
)

type Controller struct {
	engine *settlement.Engine
}

func New(engine *settlement.Engine) *Controller {
	return &Controller{engine: engine}
}

// MatchFinished is the ingestion webhook for terminal match results. The
// parse step rejects malformed payloads whole; the engine makes re-delivery
// of an identical result a no-op.
func (ctl *Controller) MatchFinished(c *fiber.Ctx) error {
	result, err := feed.ParseMatchFinished(c.Body())
	if err != nil {
		return helpers.JSONError(c, "INVALID_MATCH_EVENT")
	}

	if err := ctl.engine.HandleMatchFinished(result); err != nil {
		if errors.Is(err, store.ErrResultConflict) {
			return helpers.JSONErrorStatus(c, fiber.StatusConflict, "RESULT_CONFLICT")
		}
		return helpers.JSONError(c, "FAILED_TO_PROCESS_RESULT")
	}

	return helpers.JSONSuccess(c, "Match result processed", fiber.Map{
		"match_id": result.MatchID,
		"category": result.Category,
	})
}
