// internal/chat/menu/delegated.go
package menu

import (
	"context"
	"fmt"
	"strings"

	"chatfood-service/internal/common/logger"
)

// Completer is the single-prompt slice of the generative client used for
// delegated extraction.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

const delegatedPrompt = `Extract up to three recommended dish names from the reply below.
Answer with the dish names only, separated by commas.
Prefer dishes that match what the user asked for.

Reply: %s

Example answer: Kimchi Jjigae, Bibimbap, Sundubu Jjigae`

// DelegatedExtractor asks the generative provider itself to name the dishes
// mentioned in a reply. Alternate strategy to the vocabulary matcher; it
// costs a second provider round-trip per turn.
type DelegatedExtractor struct {
	completer Completer
	logger    logger.Logger
}

func NewDelegatedExtractor(completer Completer, log logger.Logger) *DelegatedExtractor {
	return &DelegatedExtractor{
		completer: completer,
		logger: log.With(map[string]interface{}{
			"component": "menu-extract",
		}),
	}
}

func (e *DelegatedExtractor) Extract(ctx context.Context, reply string) []string {
	answer, err := e.completer.Complete(ctx, fmt.Sprintf(delegatedPrompt, reply))
	if err != nil {
		e.logger.Warn("delegated extraction failed, using default dishes", map[string]interface{}{
			"error": err.Error(),
		})
		return DefaultFoodNames()
	}

	names := make([]string, 0, maxExtracted)
	seen := make(map[string]bool, maxExtracted)
	for _, part := range strings.Split(answer, ",") {
		name := strings.TrimSpace(part)
		if name == "" || seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true
		names = append(names, name)
		if len(names) == maxExtracted {
			break
		}
	}
	if len(names) == 0 {
		return DefaultFoodNames()
	}
	return names
}
