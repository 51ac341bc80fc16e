package character

import "go.uber.org/zap"

// EffectHolder is a Derivable whose effect list can be replaced.
type EffectHolder[T any] interface {
	Derivable[T]
	WithEffects(effects []Effect) T
}

// ExpireEffects advances every timed effect by one turn. Effects with a
// negative duration are permanent and untouched; the rest lose one turn and
// are removed on reaching zero. When anything expires, the character is
// re-derived so its modified values never go stale.
//
// Postcondition: c is not modified; the returned names are the expired effects.
func ExpireEffects[T EffectHolder[T]](c T, logger *zap.Logger) (T, []string) {
	current := c.ActiveEffects()
	if len(current) == 0 {
		return c, nil
	}
	kept := make([]Effect, 0, len(current))
	var expired []string
	for _, e := range current {
		if e.Duration < 0 {
			kept = append(kept, e)
			continue
		}
		e.Duration--
		if e.Duration <= 0 {
			expired = append(expired, e.Name)
			continue
		}
		kept = append(kept, e)
	}
	next := c.WithEffects(kept)
	if len(expired) > 0 {
		logger.Debug("effects expired", zap.Strings("effects", expired))
		next = Derive(next, logger)
	}
	return next, expired
}
