// Package language normalizes queries to English and localizes answers back.
package language

import (
	"context"

	"agribot/internal/common/logger"
)

// Translator is the slice of the GenAI provider the bridge consumes.
type Translator interface {
	Detect(ctx context.Context, text string) (string, float64, error)
	Translate(ctx context.Context, text, from, to string) (string, error)
}

// Detection is the advisory language-detection outcome. The pipeline proceeds
// regardless of confidence.
type Detection struct {
	Language   string
	Confidence float64
}

// Translation carries the translated text plus the degraded flag. Degraded
// means the provider failed and the original text was passed through.
type Translation struct {
	Text     string
	Degraded bool
}

type Bridge struct {
	translator Translator
	supported  map[string]bool
	defaultLng string
	threshold  float64
	disabled   bool
	logger     logger.Logger
}

type Options struct {
	Supported          []string
	DefaultLanguage    string
	DetectionThreshold float64
	// Disabled passes text through untranslated. Deployments that only serve
	// one language set this to skip the provider round trips entirely.
	Disabled bool
}

func NewBridge(translator Translator, opts Options, log logger.Logger) *Bridge {
	supported := make(map[string]bool, len(opts.Supported))
	for _, l := range opts.Supported {
		supported[l] = true
	}
	if opts.DefaultLanguage == "" {
		opts.DefaultLanguage = "en"
	}
	if opts.DetectionThreshold == 0 {
		opts.DetectionThreshold = 0.5
	}
	return &Bridge{
		translator: translator,
		supported:  supported,
		defaultLng: opts.DefaultLanguage,
		threshold:  opts.DetectionThreshold,
		disabled:   opts.Disabled,
		logger:     log.With(map[string]interface{}{"component": "language"}),
	}
}

// Detect identifies the query language. Inconclusive or failed detection
// falls back to the default language; detection never fails the pipeline.
func (b *Bridge) Detect(ctx context.Context, text string) Detection {
	lang, confidence, err := b.translator.Detect(ctx, text)
	if err != nil {
		b.logger.Warn("language detection failed, using default", map[string]interface{}{
			"error":   err.Error(),
			"default": b.defaultLng,
		})
		return Detection{Language: b.defaultLng, Confidence: 0}
	}

	if confidence < b.threshold || !b.supported[lang] {
		return Detection{Language: b.defaultLng, Confidence: confidence}
	}
	return Detection{Language: lang, Confidence: confidence}
}

// ToEnglish translates text into English for classification and dispatch.
// Provider failure returns the original text flagged as degraded.
func (b *Bridge) ToEnglish(ctx context.Context, text, from string) Translation {
	return b.translate(ctx, text, from, "en")
}

// FromEnglish localizes the synthesized answer back to the query language.
func (b *Bridge) FromEnglish(ctx context.Context, text, to string) Translation {
	return b.translate(ctx, text, "en", to)
}

func (b *Bridge) translate(ctx context.Context, text, from, to string) Translation {
	if b.disabled || from == to || text == "" {
		return Translation{Text: text}
	}

	translated, err := b.translator.Translate(ctx, text, from, to)
	if err != nil {
		b.logger.Warn("translation degraded, original text used", map[string]interface{}{
			"from":  from,
			"to":    to,
			"error": err.Error(),
		})
		return Translation{Text: text, Degraded: true}
	}
	return Translation{Text: translated}
}
