package emotion

import (
	"context"
	"encoding/base64"
	"fmt"
	log "log/slog"
	"strings"

	openai "github.com/openai/openai-go/v3"

	"shopvoice/pkg/audioenc"
)

const prosodyPrompt = `
You analyze the emotional tone of a shopper's voice.
You receive one short audio clip and its transcript.

Respond with EXACTLY ONE of these words and nothing else:
neutral
happy
frustrated
confused

Judge primarily from vocal tone (pace, pitch, tension), using the
transcript only as secondary evidence. If unsure, answer neutral.
`

// ProsodyClient sends consented audio to the hosted tone-analysis
// model. It implements Inferencer.
type ProsodyClient struct {
	api   openai.Client
	model string
}

func NewProsodyClient(api openai.Client, model string) *ProsodyClient {
	if model == "" {
		model = "gpt-4o-audio-preview"
	}
	return &ProsodyClient{api: api, model: model}
}

func (p *ProsodyClient) Infer(ctx context.Context, transcript string, pcm16k []float32) (State, error) {
	wavBytes, err := audioenc.EncodeWAV16k(pcm16k)
	if err != nil {
		return "", fmt.Errorf("encode sample: %w", err)
	}

	resp, err := p.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prosodyPrompt),
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart("Transcript: " + transcript),
				openai.InputAudioContentPart(openai.ChatCompletionContentPartInputAudioInputAudioParam{
					Data:   base64.StdEncoding.EncodeToString(wavBytes),
					Format: "wav",
				}),
			}),
		},
		Model: p.model,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	word := strings.ToLower(strings.TrimSpace(resp.Choices[0].Message.Content))
	log.Debug("Prosody inference", "state", word)

	state := State(word)
	if !state.Valid() {
		return "", fmt.Errorf("unexpected inference output: %q", word)
	}
	return state, nil
}
