package support

import "smm-bot/internal/telegram/states"

type (
	stateManager interface {
		Begin(actorID int64)
		Get(actorID int64) states.Session
		Update(actorID int64, fn func(s *states.Session))
	}

	localizer interface {
		Get(lang, key string, params map[string]interface{}) string
	}
)
