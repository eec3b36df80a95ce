// Package conversation holds dialogue-level reference data: the order
// confirmation sentinel, language detection, greetings, and UI text.
//
// DESIGN: Data lives in languages.json, embedded as the default and
// overridable from config for deployments that localize differently.
package conversation

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"
)

//go:embed languages.json
var embeddedLanguages []byte

// Data is the parsed language data set.
type Data struct {
	// ConfirmationToken is the out-of-band sentinel the chat model appends
	// to its final message to signal order confirmation.
	ConfirmationToken string `json:"orderConfirmationToken"`

	InitialLanguage string                       `json:"initialLanguage"`
	LanguageNames   map[string]string            `json:"languageNames"`
	UIMessages      map[string]map[string]string `json:"uiMessages"`
	Greetings       map[string]string            `json:"greetings"`
}

// Load parses language data from path, or the embedded default when path
// is empty. A broken override file falls back to the embedded data with a
// warning rather than failing startup.
func Load(path string) *Data {
	raw := embeddedLanguages
	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			raw = data
		} else {
			log.Warn().Str("path", path).Err(err).Msg("language data override unreadable, using embedded defaults")
		}
	}

	var d Data
	if err := json.Unmarshal(raw, &d); err != nil {
		log.Warn().Err(err).Msg("language data malformed, using embedded defaults")
		_ = json.Unmarshal(embeddedLanguages, &d)
	}
	return &d
}

// DetectLanguage guesses a BCP-47 code from the script of the text.
// Unknown or empty text maps to the initial language.
func (d *Data) DetectLanguage(text string) string {
	sample := strings.TrimSpace(text)
	if sample == "" {
		return d.InitialLanguage
	}

	for _, r := range sample {
		switch {
		case r >= 0xAC00 && r <= 0xD7A3:
			return "ko-KR"
		case r >= 0x3040 && r <= 0x30FF:
			return "ja-JP"
		case r >= 0x4E00 && r <= 0x9FFF:
			return "zh-CN"
		case unicode.Is(unicode.Cyrillic, r):
			return "ru-RU"
		case r >= 0x0590 && r <= 0x05FF:
			return "he-IL"
		}
	}

	lowered := strings.ToLower(sample)
	switch {
	case strings.ContainsAny(lowered, "áéíóúñü¿¡"):
		return "es-ES"
	case strings.ContainsAny(lowered, "äöüß"):
		return "de-DE"
	case strings.ContainsAny(lowered, "êéèàçôûîœ"):
		return "fr-FR"
	}
	return "en-US"
}

// LanguageInstruction builds the system override pinning the reply
// language.
func (d *Data) LanguageInstruction(langCode string) string {
	name := d.LanguageNames[langCode]
	if name == "" {
		name = langCode
	}
	return fmt.Sprintf(
		"System override: The customer is communicating in %s. "+
			"Respond exclusively in %s, mirror their tone, and do not switch to another language "+
			"unless the customer changes languages again and explicitly signals the change.",
		name, name,
	)
}

// Greeting renders the localized greeting for the customer name.
func (d *Data) Greeting(langCode, customerName string) string {
	name := customerName
	if name == "" {
		name = "고객님"
	}
	template, ok := d.Greetings[langCode]
	if !ok {
		template = d.Greetings["ko-KR"]
	}
	if template == "" {
		template = "안녕하세요, {name} 고객님."
	}
	return strings.ReplaceAll(template, "{name}", name)
}

// UIText returns the UI message map for the language, falling back to
// English.
func (d *Data) UIText(langCode string) map[string]string {
	if messages, ok := d.UIMessages[langCode]; ok {
		return messages
	}
	return d.UIMessages["en-US"]
}
