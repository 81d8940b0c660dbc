package memory

import (
	"time"

	"learnhub/internal/app"
	"learnhub/internal/domain"
)

// DemoPassword is shared by every demo account.
const DemoPassword = "demo123"

// DemoUsers returns the demo students and teachers with hashed passwords.
func DemoUsers(cost int) ([]domain.User, error) {
	hash, err := app.HashPassword(DemoPassword, cost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	profiles := []domain.Profile{
		{ID: "1", Email: "rajesh@student.com", FullName: "Rajesh Kumar", Role: domain.RoleStudent},
		{ID: "2", Email: "priya@student.com", FullName: "Priya Singh", Role: domain.RoleStudent},
		{ID: "3", Email: "sunil@teacher.com", FullName: "Dr. Sunil Sharma", Role: domain.RoleTeacher},
		{ID: "4", Email: "kavita@teacher.com", FullName: "Mrs. Kavita Patel", Role: domain.RoleTeacher},
	}
	users := make([]domain.User, len(profiles))
	for i, p := range profiles {
		users[i] = domain.User{Profile: p, PasswordHash: hash, CreatedAt: now}
	}
	return users, nil
}

// DemoLessons provides a minimal set of lessons for the memory driver.
func DemoLessons() []domain.Lesson {
	now := time.Now()
	return []domain.Lesson{
		{
			ID:          "1",
			Title:       "Introduction to Basic Mathematics",
			Description: "Learn fundamental math concepts including addition, subtraction, multiplication, and division.",
			Content: "Welcome to Basic Mathematics!\n\n" +
				"In this lesson, we will cover the four basic operations:\n\n" +
				"1. Addition (+)\nAddition means combining numbers to get a larger number.\nExample: 5 + 3 = 8\n\n" +
				"2. Subtraction (-)\nSubtraction means taking away one number from another.\nExample: 8 - 3 = 5\n\n" +
				"3. Multiplication (x)\nMultiplication is repeated addition.\nExample: 4 x 3 = 12\n\n" +
				"4. Division (/)\nDivision means splitting a number into equal parts.\nExample: 12 / 3 = 4\n\n" +
				"Practice these operations with different numbers to become more comfortable with basic math!",
			Duration:  30,
			Level:     domain.LevelBeginner,
			Subject:   "Mathematics",
			TeacherID: "3",
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:          "2",
			Title:       "English Grammar Basics",
			Description: "Understanding nouns, verbs, and adjectives in English language.",
			Content: "English Grammar Fundamentals\n\n" +
				"Let's learn about the basic parts of speech:\n\n" +
				"1. Nouns\nNouns are words that name people, places, things, or ideas.\nExamples: teacher, school, book, happiness\n\n" +
				"2. Verbs\nVerbs are action words or words that show a state of being.\nExamples: run, jump, is, are\n\n" +
				"3. Adjectives\nAdjectives describe or modify nouns.\nExamples: big, small, beautiful, smart\n\n" +
				"Practice identifying these parts of speech in sentences around you!",
			Duration:  25,
			Level:     domain.LevelBeginner,
			Subject:   "English",
			TeacherID: "4",
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:          "3",
			Title:       "Digital Literacy: Using a Computer",
			Description: "Learn basic computer skills including mouse, keyboard, and file management.",
			Content: "Introduction to Computer Basics\n\n" +
				"1. Parts of a Computer\n- Monitor\n- Keyboard\n- Mouse\n- CPU\n\n" +
				"2. Using the Mouse\n- Left click: Select items\n- Right click: Open menus\n- Double click: Open programs\n\n" +
				"3. Using the Keyboard\n- Space bar for spaces\n- Enter for a new line\n- Backspace to delete mistakes\n\n" +
				"4. Basic File Management\n- Files are documents, pictures, or programs\n- Folders help organize files\n\n" +
				"Practice these skills to become comfortable with computers!",
			Duration:  40,
			Level:     domain.LevelBeginner,
			Subject:   "Computer Science",
			TeacherID: "3",
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

// DemoQuizzes provides a minimal set of quizzes for the memory driver.
func DemoQuizzes() []domain.Quiz {
	now := time.Now()
	return []domain.Quiz{
		{
			ID:          "1",
			Title:       "Basic Math Quiz",
			Description: "Test your knowledge of basic mathematical operations",
			LessonID:    "1",
			TeacherID:   "3",
			CreatedAt:   now,
			UpdatedAt:   now,
			Questions: []domain.QuizQuestion{
				{
					ID:            "1",
					Question:      "What is 5 + 3?",
					Options:       []string{"6", "7", "8", "9"},
					CorrectAnswer: 2,
					Explanation:   "5 + 3 = 8. When adding, we combine the two numbers together.",
				},
				{
					ID:            "2",
					Question:      "What is 12 / 4?",
					Options:       []string{"2", "3", "4", "5"},
					CorrectAnswer: 1,
					Explanation:   "12 / 4 = 3. Splitting 12 into 4 equal groups leaves 3 in each.",
				},
			},
		},
	}
}
