package extract

import (
	"fmt"
	"strings"

	"docextract/internal/models"
)

// Prompt is the instruction sent with every image.
var Prompt = BuildPrompt(models.IdentityFields)

// BuildPrompt renders the extraction instruction for fields, showing the
// expected reply as a JSON template.
func BuildPrompt(fields []models.Field) string {
	var sb strings.Builder
	sb.WriteString("Extract information from the image and return it in valid JSON format:\n")
	sb.WriteString("{\n")
	fmt.Fprintf(&sb, "    %q: {\n", models.RelevantInfoKey)
	for i, f := range fields {
		fmt.Fprintf(&sb, "        %q: %q", f.Name, f.Example)
		if i < len(fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("    }\n")
	sb.WriteString("}\n")
	sb.WriteString("Important: Return only the JSON object, no markdown formatting or additional text.")
	return sb.String()
}
