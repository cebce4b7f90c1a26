package action

import (
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/rs/zerolog"
	"github.com/tkw1536/keyseq/logging"
)

var missLogger zerolog.Logger

func init() {
	logging.ComponentLogger("action.Miss", &missLogger)
}

// Closest returns the pattern that most closely resembles sequence, or "" when none does
func Closest(sequence string, patterns []string) string {
	ranks := fuzzy.RankFindFold(sequence, patterns)
	if len(ranks) == 0 {
		return ""
	}

	best := ranks[0]
	for _, rank := range ranks[1:] {
		if rank.Distance < best.Distance {
			best = rank
		}
	}
	return best.Target
}

// MissLogger returns a function that logs sequences that did not match any of patterns.
// It is intended to be used as keyseq.Config.Miss.
func MissLogger(patterns []string) func(sequence string) {
	return func(sequence string) {
		event := missLogger.Debug().Str("sequence", sequence)
		if closest := Closest(sequence, patterns); closest != "" {
			event = event.Str("closest", closest)
		}
		event.Msg("no action for sequence")
	}
}
