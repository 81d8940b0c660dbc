package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"learnhub/internal/domain"
)

// OptionState classifies an option when a submitted quiz is reviewed.
type OptionState string

const (
	OptionCorrect   OptionState = "correct"
	OptionIncorrect OptionState = "incorrect"
	OptionNeutral   OptionState = "neutral"
)

// QuizSnapshot is a read-only view of an attempt session.
type QuizSnapshot struct {
	QuizID         string `json:"quizId"`
	Question       int    `json:"question"`
	TotalQuestions int    `json:"totalQuestions"`
	Answers        []int  `json:"answers"`
	Percentage     int    `json:"percentage"`
	Elapsed        string `json:"elapsed"`
	Submitted      bool   `json:"submitted"`
	Score          int    `json:"score"`
}

// QuizResult is what a submission produces, whether or not it was persisted.
type QuizResult struct {
	QuizID    string              `json:"quizId"`
	Score     int                 `json:"score"`
	Correct   int                 `json:"correct"`
	Total     int                 `json:"total"`
	Persisted bool                `json:"persisted"`
	Attempt   *domain.QuizAttempt `json:"attempt,omitempty"`
	Review    []QuestionReview    `json:"review"`
}

// QuestionReview shows one question after submission.
type QuestionReview struct {
	QuestionID    string         `json:"questionId"`
	Question      string         `json:"question"`
	Selected      int            `json:"selected"`
	CorrectAnswer int            `json:"correctAnswer"`
	IsCorrect     bool           `json:"isCorrect"`
	Explanation   string         `json:"explanation,omitempty"`
	Options       []OptionReview `json:"options"`
}

type OptionReview struct {
	Index    int         `json:"index"`
	Text     string      `json:"text"`
	Selected bool        `json:"selected"`
	State    OptionState `json:"state"`
}

// QuizEngine tracks answers for one attempt and scores it on submit.
// An engine belongs to a single session and is not safe for concurrent use.
type QuizEngine struct {
	quiz    domain.Quiz
	actor   domain.Profile
	gateway PersistenceGateway
	now     func() time.Time
	watch   stopwatch

	answers   []int
	current   int
	submitted bool
	result    QuizResult
}

// NewQuizEngine validates the quiz and starts an attempt with every question unanswered.
func NewQuizEngine(quiz domain.Quiz, actor domain.Profile, gateway PersistenceGateway) (*QuizEngine, error) {
	return NewQuizEngineWithClock(quiz, actor, gateway, time.Now)
}

// NewQuizEngineWithClock allows deterministic timestamps in tests.
func NewQuizEngineWithClock(quiz domain.Quiz, actor domain.Profile, gateway PersistenceGateway, now func() time.Time) (*QuizEngine, error) {
	if err := domain.ValidateQuiz(quiz); err != nil {
		return nil, err
	}
	answers := make([]int, len(quiz.Questions))
	for i := range answers {
		answers[i] = domain.Unanswered
	}
	return &QuizEngine{
		quiz:    quiz,
		actor:   actor,
		gateway: gateway,
		now:     now,
		watch:   newStopwatch(now),
		answers: answers,
	}, nil
}

// SelectAnswer records the option for the current question, replacing any earlier choice.
func (e *QuizEngine) SelectAnswer(option int) (QuizSnapshot, error) {
	if e.submitted {
		return e.Snapshot(), domain.ErrAlreadySubmitted
	}
	if option < 0 || option >= len(e.quiz.Questions[e.current].Options) {
		return e.Snapshot(), domain.NewValidationError("option", "out of range")
	}
	e.answers[e.current] = option
	return e.Snapshot(), nil
}

// Next advances to the following question, or submits from the last one.
// It is rejected while the current question is unanswered.
func (e *QuizEngine) Next(ctx context.Context) (QuizSnapshot, *QuizResult, error) {
	if e.submitted {
		return e.Snapshot(), nil, domain.ErrAlreadySubmitted
	}
	if e.answers[e.current] == domain.Unanswered {
		return e.Snapshot(), nil, domain.ErrUnanswered
	}
	if e.current < len(e.quiz.Questions)-1 {
		e.current++
		return e.Snapshot(), nil, nil
	}
	result, err := e.Submit(ctx)
	return e.Snapshot(), &result, err
}

// Previous moves back one question.
func (e *QuizEngine) Previous() (QuizSnapshot, error) {
	if e.submitted {
		return e.Snapshot(), domain.ErrAlreadySubmitted
	}
	if e.current > 0 {
		e.current--
	}
	return e.Snapshot(), nil
}

// Submit scores the attempt. For students it appends a QuizAttempt to the gateway.
// Repeat calls return the first result without recomputing or writing again.
func (e *QuizEngine) Submit(ctx context.Context) (QuizResult, error) {
	if e.submitted {
		return e.result, nil
	}
	e.watch.stop()

	correct := 0
	for i, q := range e.quiz.Questions {
		if e.answers[i] == q.CorrectAnswer {
			correct++
		}
	}
	total := len(e.quiz.Questions)
	e.submitted = true
	e.result = QuizResult{
		QuizID:  e.quiz.ID,
		Score:   Percent(correct, total),
		Correct: correct,
		Total:   total,
	}
	e.result.Review = e.Review()

	if !e.actor.IsStudent() {
		return e.result, nil
	}

	attempt := domain.QuizAttempt{
		ID:          uuid.NewString(),
		StudentID:   e.actor.ID,
		QuizID:      e.quiz.ID,
		Answers:     e.answersCopy(),
		Score:       e.result.Score,
		CompletedAt: e.now(),
	}
	if err := domain.ValidateAnswers(e.quiz, attempt.Answers); err != nil {
		return e.result, err
	}
	saved, err := e.gateway.InsertQuizAttempt(ctx, attempt)
	if err != nil {
		return e.result, &domain.PersistenceError{Op: "insert quiz attempt", Err: err}
	}
	e.result.Persisted = true
	e.result.Attempt = &saved
	return e.result, nil
}

// Review classifies every option of every question. It is empty before submission.
func (e *QuizEngine) Review() []QuestionReview {
	if !e.submitted {
		return nil
	}
	out := make([]QuestionReview, 0, len(e.quiz.Questions))
	for i, q := range e.quiz.Questions {
		selected := e.answers[i]
		options := make([]OptionReview, len(q.Options))
		for j, text := range q.Options {
			state := OptionNeutral
			switch {
			case j == q.CorrectAnswer:
				state = OptionCorrect
			case j == selected:
				state = OptionIncorrect
			}
			options[j] = OptionReview{Index: j, Text: text, Selected: j == selected, State: state}
		}
		out = append(out, QuestionReview{
			QuestionID:    q.ID,
			Question:      q.Question,
			Selected:      selected,
			CorrectAnswer: q.CorrectAnswer,
			IsCorrect:     selected == q.CorrectAnswer,
			Explanation:   q.Explanation,
			Options:       options,
		})
	}
	return out
}

// Quiz returns the quiz this attempt was validated against.
func (e *QuizEngine) Quiz() domain.Quiz {
	q := e.quiz
	q.Questions = append([]domain.QuizQuestion(nil), e.quiz.Questions...)
	return q
}

// Submitted reports whether the attempt was scored.
func (e *QuizEngine) Submitted() bool {
	return e.submitted
}

// Snapshot returns the question pointer, answers copy and, once submitted, the score.
func (e *QuizEngine) Snapshot() QuizSnapshot {
	total := len(e.quiz.Questions)
	return QuizSnapshot{
		QuizID:         e.quiz.ID,
		Question:       e.current,
		TotalQuestions: total,
		Answers:        e.answersCopy(),
		Percentage:     Percent(e.current+1, total),
		Elapsed:        FormatElapsed(e.watch.elapsed()),
		Submitted:      e.submitted,
		Score:          e.result.Score,
	}
}

func (e *QuizEngine) answersCopy() []int {
	out := make([]int, len(e.answers))
	copy(out, e.answers)
	return out
}
