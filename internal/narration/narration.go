// Package narration turns structured action outcomes into flavor text via
// the OpenAI Chat Completions API. Narration is strictly optional: every
// failure degrades to the mechanical description, never to an error the
// player sees.
package narration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ravoni/battlegrid/internal/constants"
	"github.com/ravoni/battlegrid/internal/dedupe"
	"github.com/ravoni/battlegrid/internal/keys"
	"github.com/ravoni/battlegrid/internal/logging"
)

// promptTemplate can be set at application startup to customize the prompt
// sent to OpenAI. Use the token "{{outcome}}" where the mechanical
// description will be substituted.
var promptTemplate string

// SetPromptTemplate sets a custom narration prompt template. Call from
// main after loading configuration.
func SetPromptTemplate(t string) {
	promptTemplate = strings.TrimSpace(t)
}

// Enabled reports whether narration is configured at all.
func Enabled() bool {
	return os.Getenv(constants.EnvOpenAIAPIKey) != ""
}

// Outcome is the structured input for one narration request.
type Outcome struct {
	Actor       string
	Targets     []string
	Description string
	Round       int
}

func callOpenAI(o Outcome) (string, error) {
	apiKey := os.Getenv(constants.EnvOpenAIAPIKey)
	if apiKey == "" {
		return "", fmt.Errorf("%s not set", constants.EnvOpenAIAPIKey)
	}

	prompt := promptTemplate
	if prompt == "" {
		prompt = "Narrate this combat moment in one vivid sentence, present tense, no dice numbers: {{outcome}}"
	}
	prompt = strings.ReplaceAll(prompt, "{{outcome}}", o.Description)

	logging.Info("narration openai prompt", logging.Fields{constants.LogFieldActor: o.Actor, "prompt": prompt})

	payload := map[string]interface{}{
		"model": constants.OpenAIChatModel,
		"messages": []map[string]string{
			{"role": "system", "content": "You are a dungeon master narrating tabletop combat."},
			{"role": "user", "content": prompt},
		},
		"max_completion_tokens": 3100,
		"service_tier":          "default",
	}

	b, _ := json.Marshal(payload)
	req, err := http.NewRequest("POST", constants.OpenAIBaseURL+constants.OpenAIChatCompletionsPath, bytes.NewBuffer(b))
	if err != nil {
		return "", err
	}
	req.Header.Set(constants.HeaderAuthorization, constants.BearerPrefix+apiKey)
	req.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("openai error: %d %s", resp.StatusCode, string(body))
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenAI")
	}

	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if idx := strings.Index(text, "\n"); idx >= 0 {
		text = text[:idx]
	}
	return strings.Trim(text, "\"' "), nil
}

// Narrate produces flavor text for an outcome. Concurrent requests for
// the same actor/target set and round are collapsed through singleflight
// so watchers do not fan out duplicate API calls. On any failure the
// mechanical description is returned unchanged.
func Narrate(o Outcome) string {
	if !Enabled() {
		return o.Description
	}

	sfKey := fmt.Sprintf("%s:%d", keys.OutcomeKeyFromNames(append([]string{o.Actor}, o.Targets...)), o.Round)
	v, err, _ := dedupe.NarrationGroup.Do(sfKey, func() (interface{}, error) {
		return callOpenAI(o)
	})
	if err != nil {
		logging.Error("narration generation failed", err, logging.Fields{constants.LogFieldActor: o.Actor})
		return o.Description
	}
	text, ok := v.(string)
	if !ok || text == "" {
		return o.Description
	}
	return text
}
