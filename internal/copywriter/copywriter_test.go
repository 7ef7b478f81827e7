package copywriter

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"frailes/internal/model"

	"github.com/go-playground/assert/v2"
)

type fakeGenerator struct {
	responses []string
	errs      []error
	requests  []Request
}

func (f *fakeGenerator) Generate(ctx context.Context, req Request) (string, error) {
	f.requests = append(f.requests, req)
	i := len(f.requests) - 1
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return f.responses[len(f.responses)-1], nil
}

type wordTruncator struct{}

func (wordTruncator) Truncate(s string, budget int) string {
	words := strings.Fields(s)
	if budget <= 0 || len(words) <= budget {
		return s
	}
	return strings.Join(words[:budget], " ")
}

func newWriter(gen Generator) *Writer {
	return New(gen, wordTruncator{}, Options{TokenBudget: 3, RetryInterval: time.Millisecond, RetryAttempts: 3})
}

func TestImprove(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"  Aguas turquesas y arena blanca.  "}}
	w := newWriter(gen)

	got, err := w.Improve(context.Background(), "playa bonita con agua", "hero")
	assert.Equal(t, err, nil)
	assert.Equal(t, got, "Aguas turquesas y arena blanca.")
	assert.Equal(t, strings.Contains(gen.requests[0].Instruction, "Contexto: hero."), true)
	assert.Equal(t, gen.requests[0].Prompt, `Mejora este texto: "playa bonita con"`)

	// the same request is served from cache
	_, err = w.Improve(context.Background(), "playa bonita con agua", "hero")
	assert.Equal(t, err, nil)
	assert.Equal(t, len(gen.requests), 1)
}

func TestImproveRetries(t *testing.T) {
	gen := &fakeGenerator{
		responses: []string{"", "", "listo"},
		errs:      []error{errors.New("unavailable"), nil},
	}
	w := newWriter(gen)

	got, err := w.Improve(context.Background(), "texto", "about")
	assert.Equal(t, err, nil)
	assert.Equal(t, got, "listo")
	assert.Equal(t, len(gen.requests), 3)
}

func TestImproveEmptyText(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"x"}}
	_, err := newWriter(gen).Improve(context.Background(), "   ", "hero")
	assert.Equal(t, errors.Is(err, ErrEmptyDraft), true)
	assert.Equal(t, len(gen.requests), 0)
}

func TestTranslate(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"Turquoise water."}}
	w := newWriter(gen)

	got, err := w.Translate(context.Background(), "Agua turquesa.", "en")
	assert.Equal(t, err, nil)
	assert.Equal(t, got, "Turquoise water.")
	assert.Equal(t, strings.Contains(gen.requests[0].Prompt, "inglés"), true)

	_, err = w.Translate(context.Background(), "Agua", "fr")
	assert.NotEqual(t, err, nil)
}

func TestActivityGuide(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"```json\n{\"extendedDescription\":\"Sendero\",\"whatToBring\":[\"agua\",\"gorra\"],\"bestTime\":\"mañana\",\"safetyTips\":[\"no nadar lejos\"]}\n```"}}
	w := newWriter(gen)

	guide, err := w.ActivityGuide(context.Background(), model.Activity{Title: "Mirador", Description: "Vista"})
	assert.Equal(t, err, nil)
	assert.Equal(t, guide.ExtendedDescription, "Sendero")
	assert.Equal(t, guide.WhatToBring, []string{"agua", "gorra"})
	assert.Equal(t, guide.SafetyTips, []string{"no nadar lejos"})
	assert.Equal(t, gen.requests[0].JSON, true)
}

func TestActivityGuideRejectsProse(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"Lo siento, no puedo."}}
	_, err := newWriter(gen).ActivityGuide(context.Background(), model.Activity{Title: "Mirador"})
	assert.NotEqual(t, err, nil)
}

func TestDirectionsDefaultsAddress(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"Tome la ruta E15."}}
	_, err := newWriter(gen).Directions(context.Background(), model.Ally{Name: "Hostal Sol"})
	assert.Equal(t, err, nil)
	assert.Equal(t, strings.Contains(gen.requests[0].Prompt, "Hostal Sol ubicado en Puerto López/Machalilla, Manabí"), true)
}
