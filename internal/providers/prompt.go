package providers

import (
	"fmt"
	"strings"
)

// DefaultInstruction is appended to every diff.
const DefaultInstruction = "Give me a code review based on the git diff above. Be as critical as possible."

// ReviewCategories are the sections the structured response must contain.
var ReviewCategories = []string{
	"code_quality",
	"readability",
	"maintainability",
	"performance",
	"security",
	"accessibility",
}

// BuildPrompt concatenates the diff with the critique instruction and, when
// requested, the JSON response shape.
func BuildPrompt(diff string, cfg ReviewConfig) string {
	instruction := cfg.Instruction
	if instruction == "" {
		instruction = DefaultInstruction
	}

	var b strings.Builder
	b.WriteString(diff)
	b.WriteString("\n")
	b.WriteString(instruction)
	if cfg.JSONSchema {
		b.WriteString("\n\n")
		b.WriteString(schemaInstruction())
	}
	return b.String()
}

func schemaInstruction() string {
	var b strings.Builder
	b.WriteString("Respond only with a JSON object of exactly this shape. Scores are integers from 0 to 10.\n")
	b.WriteString("{\n")
	b.WriteString(`  "summary": {"overall_score": 0, "verdict": "", "highlights": [], "concerns": []},` + "\n")
	for i, category := range ReviewCategories {
		sep := ","
		if i == len(ReviewCategories)-1 {
			sep = ""
		}
		fmt.Fprintf(&b, `  %q: {"score": 0, "feedback": "", "suggestions": []}%s`+"\n", category, sep)
	}
	b.WriteString("}")
	return b.String()
}
