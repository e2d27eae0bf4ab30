package domain

// BuiltinQuestions is the static fallback set used whenever the remote trivia
// provider is unavailable or returns nothing. A session never fails for lack
// of questions.
func BuiltinQuestions() []Question {
	return []Question{
		{
			ID:               "1",
			Prompt:           "What is the capital of France?",
			CorrectAnswer:    "Paris",
			IncorrectAnswers: []string{"London", "Berlin", "Madrid"},
			Category:         "Geography",
			Difficulty:       "easy",
		},
		{
			ID:               "2",
			Prompt:           "Which planet is known as the Red Planet?",
			CorrectAnswer:    "Mars",
			IncorrectAnswers: []string{"Venus", "Jupiter", "Mercury"},
			Category:         "Science",
			Difficulty:       "easy",
		},
		{
			ID:               "3",
			Prompt:           "Who painted the Mona Lisa?",
			CorrectAnswer:    "Leonardo da Vinci",
			IncorrectAnswers: []string{"Pablo Picasso", "Vincent van Gogh", "Michelangelo"},
			Category:         "Art",
			Difficulty:       "easy",
		},
		{
			ID:               "4",
			Prompt:           "What is the largest ocean on Earth?",
			CorrectAnswer:    "Pacific Ocean",
			IncorrectAnswers: []string{"Atlantic Ocean", "Indian Ocean", "Arctic Ocean"},
			Category:         "Geography",
			Difficulty:       "easy",
		},
		{
			ID:               "5",
			Prompt:           "In which year did World War II end?",
			CorrectAnswer:    "1945",
			IncorrectAnswers: []string{"1939", "1941", "1950"},
			Category:         "History",
			Difficulty:       "medium",
		},
		{
			ID:               "6",
			Prompt:           "Which element has the chemical symbol \"O\"?",
			CorrectAnswer:    "Oxygen",
			IncorrectAnswers: []string{"Gold", "Silver", "Iron"},
			Category:         "Science",
			Difficulty:       "easy",
		},
		{
			ID:               "7",
			Prompt:           "What is the capital of Japan?",
			CorrectAnswer:    "Tokyo",
			IncorrectAnswers: []string{"Beijing", "Seoul", "Bangkok"},
			Category:         "Geography",
			Difficulty:       "easy",
		},
		{
			ID:               "8",
			Prompt:           "Who wrote \"Romeo and Juliet\"?",
			CorrectAnswer:    "William Shakespeare",
			IncorrectAnswers: []string{"Charles Dickens", "Jane Austen", "Mark Twain"},
			Category:         "Literature",
			Difficulty:       "easy",
		},
		{
			ID:               "9",
			Prompt:           "What is the tallest mountain in the world?",
			CorrectAnswer:    "Mount Everest",
			IncorrectAnswers: []string{"K2", "Kangchenjunga", "Makalu"},
			Category:         "Geography",
			Difficulty:       "easy",
		},
		{
			ID:               "10",
			Prompt:           "Which country is known as the Land of the Rising Sun?",
			CorrectAnswer:    "Japan",
			IncorrectAnswers: []string{"China", "South Korea", "Vietnam"},
			Category:         "Geography",
			Difficulty:       "easy",
		},
	}
}
