package optimizer

import (
	"encoding/json"
	"regexp"
	"strings"
)

const systemPrompt = `You are an expert at writing prompts for AI image generation. When the user gives you a prompt:

1. Optimize it: improve the structure, add art style, lighting, atmosphere and composition details, and write it in English, since most image models understand English best.
2. Translate the optimized prompt into Chinese so the user can read it.
3. Describe in one or two sentences the scene and mood the optimized prompt aims for.

Reply strictly in the following JSON format without any other text:
{
  "optimizedPrompt": "the optimized English prompt",
  "chineseTranslation": "Chinese translation of the optimized prompt",
  "description": "a short description of the scene, e.g. a dreamy ink-wash painting with a distant, tranquil mood"
}

Notes:
- Keep the optimized prompt concise and strong; do not pile up keywords.
- The English prompt is used for generation, the translation is only for display.
- Keep the description short and vivid.`

const greeting = "Hi! I'm the prompt optimizer.\n\nTell me what image you want and I will:\n\n" +
	"• restructure the prompt\n• add art style and details\n• translate it into English the model understands\n• describe the resulting scene\n\n" +
	`Try "a cat" or "a Chinese landscape painting".`

const clearedDescription = "Conversation cleared.\n\nTell me what you want to generate next!"

const fallbackReply = "Sorry, I could not process this request."

// Suggestion is the structured reply the assistant is asked to produce
type Suggestion struct {
	OptimizedPrompt    string `json:"optimizedPrompt"`
	ChineseTranslation string `json:"chineseTranslation"`
	Description        string `json:"description"`
}

var (
	fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	bareObject = regexp.MustCompile(`(?s)\{.*\}`)
)

// ParseSuggestion reads the assistant reply. Replies that are not JSON, or
// JSON without an optimized prompt, fall back to using the whole text.
func ParseSuggestion(content string) Suggestion {
	for _, candidate := range jsonCandidates(content) {
		var s Suggestion
		if err := json.Unmarshal([]byte(candidate), &s); err != nil {
			continue
		}
		if s.OptimizedPrompt == "" && s.Description == "" && s.ChineseTranslation == "" {
			continue
		}
		return s
	}
	return Suggestion{OptimizedPrompt: content}
}

func jsonCandidates(content string) []string {
	trimmed := strings.TrimSpace(content)
	candidates := []string{trimmed}
	if m := fencedJSON.FindStringSubmatch(trimmed); m != nil {
		candidates = append(candidates, m[1])
	}
	if m := bareObject.FindString(trimmed); m != "" && m != trimmed {
		candidates = append(candidates, m)
	}
	return candidates
}

func suggestionJSON(s Suggestion) string {
	data, _ := json.Marshal(s)
	return string(data)
}
