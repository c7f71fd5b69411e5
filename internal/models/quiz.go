package models

// Category is one upstream trivia category. Names are unique and are the
// lookup key; IDs are opaque upstream tokens.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// QuestionRecord is a single question as served to the client app.
type QuestionRecord struct {
	Category      string   `json:"category"`
	Type          string   `json:"type"`
	Difficulty    string   `json:"difficulty"`
	QuestionText  string   `json:"question"`
	CorrectAnswer string   `json:"answer"`
	Options       []string `json:"options"`
	Score         int      `json:"score"`
}

type QuizResponse struct {
	StatusCode int              `json:"response_code"`
	Questions  []QuestionRecord `json:"questions"`
}

type CategoriesResponse struct {
	Categories []string `json:"categories"`
}
