package presenter

import (
	"context"
	"encoding/json"
	"strings"

	"lazy-tourist-be/internal/pkg/logger"
	"lazy-tourist-be/pkg/llm"
)

// OracleFormatter asks the language model to write the document and falls
// back to the markdown renderer when that fails.
type OracleFormatter struct {
	llmProvider llm.LLMProvider
	fallback    Renderer
	logger      logger.ILogger
}

var _ Renderer = &OracleFormatter{}

func NewOracleFormatter(llmProvider llm.LLMProvider, log logger.ILogger) *OracleFormatter {
	return &OracleFormatter{
		llmProvider: llmProvider,
		fallback:    MarkdownRenderer{},
		logger:      log,
	}
}

func (f *OracleFormatter) Render(ctx context.Context, doc Document) (string, error) {
	history := []llm.Message{
		{Role: llm.RoleSystem, Content: formatterSystemPrompt},
		{Role: llm.RoleUser, Content: buildFormatterPrompt(doc)},
	}

	response, err := f.llmProvider.Chat(ctx, history, llm.WithTemperature(0.3))
	if err != nil {
		f.logger.Warn("PRESENTER", "Formatter call failed, using markdown renderer", map[string]interface{}{"error": err.Error()})
		return f.fallback.Render(ctx, doc)
	}

	markdown := llm.StripCodeFence(response)
	if markdown == "" {
		f.logger.Warn("PRESENTER", "Formatter returned nothing, using markdown renderer", nil)
		return f.fallback.Render(ctx, doc)
	}
	return markdown, nil
}

const formatterSystemPrompt = `You are an expert travel itinerary formatter. Create a well-structured markdown document with:
1. A creative title
2. Trip Overview
3. Flight Details (outbound and return)
4. Accommodation
5. Day-by-Day Itinerary with every activity
6. Budget Breakdown as a table
7. Destination Tips (if available)
8. A closing message
Use headers, bold text, lists, tables and horizontal rules. No emojis. Include every detail provided.
Images must use HTML tags with an explicit width: <img src="URL" alt="description" width="80mm">.`

func buildFormatterPrompt(doc Document) string {
	var prompt strings.Builder

	prompt.WriteString("Create the markdown itinerary document from this travel data:\n\n")
	prompt.WriteString("<travel_data>\n")
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		data = []byte("{}")
	}
	prompt.Write(data)
	prompt.WriteString("\n</travel_data>\n\n")

	if doc.Notes != "" {
		prompt.WriteString("<presentation_requests>\n")
		prompt.WriteString(doc.Notes)
		prompt.WriteString("\n</presentation_requests>\n\n")
	}

	prompt.WriteString("Return ONLY the markdown content, no additional text or explanation.")
	return prompt.String()
}
