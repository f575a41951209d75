package dto

import (
	"sort"
	"strings"

	"github.com/audioforge/studio/internal/domain"
	apperrors "github.com/audioforge/studio/pkg/util"
)

// ValidateMusic checks that req carries the parameters op needs and fills the
// defaults of a plain generation.
func ValidateMusic(op domain.MusicOperation, req MusicRequest) error {
	rules, ok := musicRules[op]
	if !ok {
		return apperrors.NewNotFound("Unknown music operation")
	}
	if req == nil {
		req = MusicRequest{}
	}

	failed := validate.ValidateMap(req, rules)
	if len(failed) > 0 {
		missing := make([]string, 0, len(failed))
		for field := range failed {
			missing = append(missing, field)
		}
		sort.Strings(missing)
		return apperrors.NewValidationError(
			"Missing or invalid parameters: "+strings.Join(missing, ", "),
			map[string]any{"fields": missing},
		)
	}

	if op == domain.MusicGenerate {
		setDefault(req, "prompt", "")
		setDefault(req, "lyrics", "")
		setDefault(req, "audio_duration", 30)
		setDefault(req, "format", "wav")
	}
	return nil
}

func setDefault(req MusicRequest, key string, value any) {
	if _, ok := req[key]; !ok {
		req[key] = value
	}
}
