package generator

import (
	"fmt"

	"NanoVision/server/internal/models"
)

// ChatPayload is the chat-completions request used by image-capable chat models
type ChatPayload struct {
	Model    string        `json:"model"`
	Stream   bool          `json:"stream"`
	Size     string        `json:"size"`
	Messages []ChatMessage `json:"messages"`
}

type ChatMessage struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

type ContentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ImagesPayload is the standard images/generations request
type ImagesPayload struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format"`
	NegativePrompt string `json:"negative_prompt,omitempty"`
}

func sizeString(width, height int) string {
	return fmt.Sprintf("%dx%d", width, height)
}

// EnhancePrompt appends the aspect ratio and pixel size to the prompt text
func EnhancePrompt(prompt, ratio string, width, height int) string {
	return fmt.Sprintf("%s\n\n[Image specifications: aspect ratio %s, resolution %dx%dpx]", prompt, ratio, width, height)
}

func BuildChatPayload(params models.GenerationParams, model string, width, height int) ChatPayload {
	return ChatPayload{
		Model:  model,
		Stream: false,
		Size:   sizeString(width, height),
		Messages: []ChatMessage{
			{
				Role: "user",
				Content: []ContentPart{
					{Type: "text", Text: EnhancePrompt(params.Prompt, params.AspectRatio, width, height)},
				},
			},
		},
	}
}

func BuildImagesPayload(params models.GenerationParams, model string, width, height int) ImagesPayload {
	return ImagesPayload{
		Model:          model,
		Prompt:         params.Prompt,
		N:              1,
		Size:           sizeString(width, height),
		ResponseFormat: "url",
		NegativePrompt: params.NegativePrompt,
	}
}
