package quiz

import (
	"html"
	"math/rand/v2"
	"strings"

	"github.com/hjson/hjson-go/v4"

	"quizme-gateway/internal/models"
	"quizme-gateway/internal/opentdb"
)

// entityReplacer rewrites the HTML entities the upstream embeds in its
// JSON text. &quot; becomes a single quote so the payload stays valid.
var entityReplacer = strings.NewReplacer(
	"&#039;", "'",
	"&quot;", "'",
	"&eacute;", "é",
	"&aacute;", "á",
	"&amp;", "&",
	"&shy;", "-",
	"&ocirc;", "ô",
	"&rsquo;", "’",
	"&Delta;", "Δ",
	"&Uuml;", "Ü",
	"&oacute;", "ó",
	"&Aring;", "Å",
	"&iacute;", "í",
	"&epsilon;", "ε",
	"&Phi;", "Φ",
	"&euml;", "ë",
	"&deg;", "°",
	"&ntilde;", "ñ",
	"&prime;", "′",
	"&Prime;", "″",
	"&sup2;", "²",
	"&ouml;", "ö",
	"&Eacute;", "É",
)

type upstreamPayload struct {
	ResponseCode int                   `json:"response_code"`
	Results      []opentdb.RawQuestion `json:"results"`
}

// Normalize decodes an upstream questions payload into the client schema.
// Single-quoted strings are accepted. Options are reshuffled on every call.
func Normalize(body []byte) (*models.QuizResponse, error) {
	cleaned := entityReplacer.Replace(string(body))

	var payload upstreamPayload
	if err := hjson.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, &DecodeError{Err: err}
	}

	resp := &models.QuizResponse{
		StatusCode: MapStatus(payload.ResponseCode),
		Questions:  make([]models.QuestionRecord, 0, len(payload.Results)),
	}
	for _, raw := range payload.Results {
		resp.Questions = append(resp.Questions, toRecord(raw))
	}
	return resp, nil
}

func toRecord(raw opentdb.RawQuestion) models.QuestionRecord {
	correct := html.UnescapeString(raw.CorrectAnswer)

	options := make([]string, 0, len(raw.IncorrectAnswers)+1)
	for _, answer := range raw.IncorrectAnswers {
		answer = html.UnescapeString(answer)
		if answer == correct {
			continue
		}
		options = append(options, answer)
	}
	options = append(options, correct)
	rand.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	return models.QuestionRecord{
		Category:      html.UnescapeString(raw.Category),
		Type:          raw.Type,
		Difficulty:    raw.Difficulty,
		QuestionText:  html.UnescapeString(raw.Question),
		CorrectAnswer: correct,
		Options:       options,
		Score:         Score(raw.Difficulty),
	}
}

// Score returns the points for a question of the given difficulty.
// Unknown difficulties score 0.
func Score(difficulty string) int {
	switch strings.ToLower(difficulty) {
	case "easy":
		return 1
	case "medium":
		return 5
	case "hard":
		return 10
	default:
		return 0
	}
}

// MapStatus converts the upstream response_code into an HTTP-style code.
func MapStatus(code int) int {
	switch code {
	case 0, 1:
		return 200
	case 2:
		return 400
	default:
		return code
	}
}
