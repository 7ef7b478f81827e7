// Package copywriter drafts site copy with a generative text backend. Drafts
// are suggestions: applying one is a normal admin edit.
package copywriter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"frailes/internal/model"
	"frailes/internal/utils"

	"github.com/rs/zerolog/log"
)

var ErrEmptyDraft = errors.New("generator returned an empty draft")

type Request struct {
	Instruction string
	Prompt      string
	// JSON asks the backend for a JSON document.
	JSON bool
}

type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Truncator bounds the size of the user text sent to the backend.
type Truncator interface {
	Truncate(s string, budget int) string
}

type Options struct {
	TokenBudget   int
	RetryTimeout  time.Duration
	RetryInterval time.Duration
	RetryAttempts int
}

type Writer struct {
	gen       Generator
	truncator Truncator
	options   Options

	mu    sync.Mutex
	cache map[string]string
}

func New(gen Generator, truncator Truncator, options Options) *Writer {
	if options.RetryTimeout <= 0 {
		options.RetryTimeout = time.Second * 30
	}
	if options.RetryInterval <= 0 {
		options.RetryInterval = time.Second * 2
	}
	if options.RetryAttempts <= 0 {
		options.RetryAttempts = 3
	}
	return &Writer{
		gen:       gen,
		truncator: truncator,
		options:   options,
		cache:     make(map[string]string),
	}
}

// Improve rewrites text for the page section described by section.
func (w *Writer) Improve(ctx context.Context, text, section string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("improve: %w", ErrEmptyDraft)
	}

	return w.draft(ctx, Request{
		Instruction: fmt.Sprintf(IMPROVE_INSTRUCTION, section),
		Prompt:      fmt.Sprintf(IMPROVE_PROMPT, w.bound(text)),
	})
}

// Translate renders text in language ("es" or "en").
func (w *Writer) Translate(ctx context.Context, text, language string) (string, error) {
	name, ok := languageNames[language]
	if !ok {
		return "", fmt.Errorf("translate: unsupported language %q", language)
	}

	return w.draft(ctx, Request{
		Instruction: TRANSLATE_INSTRUCTION,
		Prompt:      fmt.Sprintf(TRANSLATE_PROMPT, name, w.bound(strings.TrimSpace(text))),
	})
}

func (w *Writer) ActivityGuide(ctx context.Context, activity model.Activity) (model.ActivityGuide, error) {
	response, err := w.draft(ctx, Request{
		Instruction: GUIDE_INSTRUCTION,
		Prompt:      fmt.Sprintf(GUIDE_PROMPT, activity.Title, w.bound(activity.Description)),
		JSON:        true,
	})
	if err != nil {
		return model.ActivityGuide{}, err
	}
	return responseToGuide(response)
}

// Directions drafts short travel directions to an ally.
func (w *Writer) Directions(ctx context.Context, ally model.Ally) (string, error) {
	address := ally.Address
	if address == "" {
		address = "Puerto López/Machalilla, Manabí"
	}
	return w.draft(ctx, Request{Prompt: fmt.Sprintf(DIRECTIONS_PROMPT, ally.Name, address)})
}

func (w *Writer) bound(s string) string {
	if w.truncator == nil {
		return s
	}
	return w.truncator.Truncate(s, w.options.TokenBudget)
}

func (w *Writer) draft(ctx context.Context, req Request) (string, error) {
	key := utils.Hash(req.Instruction, req.Prompt, fmt.Sprint(req.JSON))

	w.mu.Lock()
	cached, ok := w.cache[key]
	w.mu.Unlock()
	if ok {
		return cached, nil
	}

	var response string
	retry := utils.NewRetryHandler(w.options.RetryTimeout, w.options.RetryInterval, w.options.RetryAttempts)
	err := retry.DoContext(ctx, func(ctx context.Context) error {
		r, err := w.gen.Generate(ctx, req)
		if err != nil {
			return err
		}
		response = strings.TrimSpace(r)
		if response == "" {
			return ErrEmptyDraft
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("copywriter: failed to draft")
		return "", err
	}

	w.mu.Lock()
	w.cache[key] = response
	w.mu.Unlock()
	return response, nil
}

func responseToGuide(response string) (model.ActivityGuide, error) {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")

	guide := model.ActivityGuide{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(response)), &guide); err != nil {
		return model.ActivityGuide{}, fmt.Errorf("activity guide: %w", err)
	}
	return guide, nil
}
