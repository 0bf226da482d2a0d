package cli

import "timed-quiz-service/internal/domain"

// sampleQuiz exercises most question kinds so a fresh server has something to take.
func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		Title:            "General knowledge sampler",
		Description:      "One question of most kinds.",
		Category:         "General",
		Difficulty:       domain.DifficultyEasy,
		TimeLimitMinutes: 10,
		PassingScore:     60,
		Questions: []domain.Question{
			{ID: "capital", Prompt: "What is the capital of Australia?", Body: &domain.SingleChoice{
				Options:       []string{"Sydney", "Canberra", "Melbourne"},
				CorrectAnswer: 1,
			}},
			{ID: "primes", Prompt: "Select the prime numbers.", Body: &domain.MultiChoice{
				Options:        []string{"2", "4", "7", "9"},
				CorrectAnswers: []int{0, 2},
			}},
			{ID: "boiling", Prompt: "Water boils at 100°C at sea level.", Body: &domain.TrueFalse{CorrectAnswer: true}},
			{ID: "planets", Prompt: "Fill in the blanks.", Body: &domain.FillBlank{
				Text: "The largest planet is ___ and the closest to the sun is ___.",
				Blanks: []domain.Blank{
					{CorrectAnswer: "Jupiter"},
					{CorrectAnswer: "Mercury", Hint: "starts with M"},
				},
			}},
			{ID: "authors", Prompt: "Match each book to its author.", Body: &domain.Matching{
				CorrectMatches: []domain.MatchPair{
					{Left: "Hamlet", Right: "Shakespeare"},
					{Left: "1984", Right: "Orwell"},
					{Left: "Dracula", Right: "Stoker"},
				},
			}},
			{ID: "history", Prompt: "Order these events, earliest first.", Body: &domain.Ranking{
				Items: []domain.RankItem{
					{ID: "moon", Text: "Moon landing"},
					{ID: "wall", Text: "Fall of the Berlin Wall"},
					{ID: "print", Text: "Printing press"},
				},
				CorrectOrder: []string{"print", "moon", "wall"},
			}},
			{ID: "photosynthesis", Prompt: "Describe photosynthesis briefly.", Points: 5, Body: &domain.Descriptive{
				MinWords: 5,
				MaxWords: 80,
				Keywords: []string{"light", "carbon", "oxygen"},
			}},
			{ID: "passage", Prompt: "Read the passage and answer.", Body: &domain.ReadingComprehension{
				Title:   "Bees",
				Passage: "Honey bees live in colonies of up to sixty thousand workers led by a single queen.",
				Questions: []domain.SubQuestion{
					{Kind: domain.SubTrueFalse, Prompt: "A colony has several queens.", CorrectBool: false},
					{Kind: domain.SubSingleChoice, Prompt: "How many workers at most?", Options: []string{"600", "6,000", "60,000"}, CorrectIndex: 2},
				},
			}},
		},
	}
}
