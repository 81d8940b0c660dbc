package domain

import "time"

// Role distinguishes learners from content authors.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// Level is the difficulty band of a lesson.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Unanswered marks a quiz question the learner has not answered.
const Unanswered = -1

// Profile is the authenticated actor driving a session.
type Profile struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     Role   `json:"role"`
}

// IsStudent reports whether progress and attempts should be persisted for the profile.
func (p Profile) IsStudent() bool {
	return p.Role == RoleStudent
}

// User is a profile plus its credential hash, as kept by user stores.
type User struct {
	Profile
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Lesson struct {
	ID          string    `json:"id"`
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"required"`
	Content     string    `json:"content" validate:"required"`
	Duration    int       `json:"duration" validate:"min=1"` // minutes
	Level       Level     `json:"level" validate:"required,oneof=beginner intermediate advanced"`
	Subject     string    `json:"subject" validate:"required"`
	TeacherID   string    `json:"teacherId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// LessonProgress is the latest completion state of a student against a lesson.
// Rows are keyed by (StudentID, LessonID) and replaced on every write.
type LessonProgress struct {
	StudentID          string     `json:"studentId"`
	LessonID           string     `json:"lessonId"`
	Completed          bool       `json:"completed"`
	ProgressPercentage int        `json:"progressPercentage"`
	TimeSpent          int        `json:"timeSpent"` // seconds
	CompletedAt        *time.Time `json:"completedAt,omitempty"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// QuizQuestion is a multiple choice question; CorrectAnswer indexes Options.
type QuizQuestion struct {
	ID            string   `json:"id"`
	Question      string   `json:"question" validate:"required"`
	Options       []string `json:"options" validate:"min=2,dive,required"`
	CorrectAnswer int      `json:"correctAnswer" validate:"min=0"`
	Explanation   string   `json:"explanation,omitempty"`
}

type Quiz struct {
	ID          string         `json:"id"`
	Title       string         `json:"title" validate:"required,max=200"`
	Description string         `json:"description"`
	Questions   []QuizQuestion `json:"questions" validate:"min=1,dive"`
	LessonID    string         `json:"lessonId"`
	TeacherID   string         `json:"teacherId"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// QuizAttempt is one submitted pass through a quiz. Attempts are append-only.
type QuizAttempt struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"studentId"`
	QuizID      string    `json:"quizId"`
	Answers     []int     `json:"answers"`
	Score       int       `json:"score"`
	CompletedAt time.Time `json:"completedAt"`
}
