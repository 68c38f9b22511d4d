// Package language holds the section-header vocabularies used when summaries
// are rendered to text and parsed back for the digest. Supported languages
// are Spanish and English; the code is carried explicitly through the
// pipeline instead of being read from the environment at use sites.
package language

import (
	"fmt"
	"strings"

	"NewsDigest/internal/domain"
)

// Code selects a summary language.
type Code string

const (
	ES  Code = "ES"
	ENG Code = "ENG"
)

// Vocabulary maps the four summary sections to their header text.
type Vocabulary struct {
	Code              Code
	Name              string
	Overview          string
	KeyPoints         string
	WhyItMatters      string
	SimpleExplanation string

	// Display* are the human-facing labels used in the digest HTML.
	DisplayOverview          string
	DisplayKeyPoints         string
	DisplayWhyItMatters      string
	DisplaySimpleExplanation string
}

var vocabularies = []Vocabulary{
	{
		Code:                     ES,
		Name:                     "Spanish",
		Overview:                 "RESUMEN",
		KeyPoints:                "PUNTOS CLAVE",
		WhyItMatters:             "POR QUÉ IMPORTA",
		SimpleExplanation:        "EXPLICACIÓN SIMPLE",
		DisplayOverview:          "Resumen:",
		DisplayKeyPoints:         "Puntos Clave:",
		DisplayWhyItMatters:      "Por Qué Importa:",
		DisplaySimpleExplanation: "Explicación Simple:",
	},
	{
		Code:                     ENG,
		Name:                     "English",
		Overview:                 "OVERVIEW",
		KeyPoints:                "KEY POINTS",
		WhyItMatters:             "WHY IT MATTERS",
		SimpleExplanation:        "SIMPLE EXPLANATION",
		DisplayOverview:          "Overview:",
		DisplayKeyPoints:         "Key Points:",
		DisplayWhyItMatters:      "Why It Matters:",
		DisplaySimpleExplanation: "Simple Explanation:",
	},
}

// Parse validates a language code string, defaulting to ES like the rest of
// the configuration surface.
func Parse(value string) (Code, error) {
	switch Code(strings.ToUpper(strings.TrimSpace(value))) {
	case ES, "":
		return ES, nil
	case ENG, "EN":
		return ENG, nil
	default:
		return "", fmt.Errorf("unsupported language %q (want ES or ENG)", value)
	}
}

// Lookup returns the vocabulary for a code, falling back to Spanish.
func Lookup(code Code) Vocabulary {
	for _, v := range vocabularies {
		if v.Code == code {
			return v
		}
	}
	return vocabularies[0]
}

// All returns every supported vocabulary, used when the language of a stored
// summary has to be inferred from its headers.
func All() []Vocabulary {
	return vocabularies
}

// FormatSummary renders a structured summary into the labelled plain-text
// block stored alongside the article. The digest builder parses this format
// back by header.
func FormatSummary(v Vocabulary, s domain.Summary) string {
	var b strings.Builder
	b.WriteString(v.Overview + ":\n" + s.Overview + "\n\n")
	b.WriteString(v.KeyPoints + ":\n")
	for _, point := range s.KeyPoints {
		b.WriteString("• " + point + "\n")
	}
	b.WriteString("\n" + v.WhyItMatters + ":\n" + s.WhyItMatters + "\n\n")
	b.WriteString(v.SimpleExplanation + ":\n" + s.SimpleExplanation)
	return b.String()
}
