package narration

import (
	"bytes"
	_ "embed"
	"text/template"

	"github.com/tatianab/arena-of-gods/internal/models"
)

//go:embed prompts/battle_outcome.txt
var battleOutcomePrompt string

var battleOutcomeTmpl = template.Must(template.New("battle_outcome").Parse(battleOutcomePrompt))

// BuildPrompt renders the narration request for one exchange.
func BuildPrompt(cc models.CombatContext) (string, error) {
	var buf bytes.Buffer
	if err := battleOutcomeTmpl.Execute(&buf, cc); err != nil {
		return "", err
	}
	return buf.String(), nil
}
