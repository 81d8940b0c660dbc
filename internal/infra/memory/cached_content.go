package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"learnhub/internal/app"
	"learnhub/internal/domain"
)

// CachedContent caches lessons and quizzes with TTL to avoid repeated backing store hits.
// Writes go straight to the backing repository and drop the cached entry.
type CachedContent struct {
	app.ContentRepository

	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group
	rnd   *rand.Rand
	rndMu sync.Mutex

	mu      sync.RWMutex
	lessons map[string]cachedLesson
	quizzes map[string]cachedQuiz
}

type cachedLesson struct {
	lesson    domain.Lesson
	expiresAt time.Time
}

type cachedQuiz struct {
	quiz      domain.Quiz
	expiresAt time.Time
}

func NewCachedContent(backing app.ContentRepository, ttl time.Duration) *CachedContent {
	return &CachedContent{
		ContentRepository: backing,
		ttl:               ttl,
		clock:             time.Now,
		rnd:               rand.New(rand.NewSource(time.Now().UnixNano())),
		lessons:           make(map[string]cachedLesson),
		quizzes:           make(map[string]cachedQuiz),
	}
}

func (c *CachedContent) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	if quiz, ok := c.cachedQuiz(quizID); ok {
		return cloneQuiz(quiz), nil
	}

	result, err, _ := c.sf.Do("quiz:"+quizID, func() (interface{}, error) {
		// Re-check in case another caller filled the entry.
		if quiz, ok := c.cachedQuiz(quizID); ok {
			return quiz, nil
		}
		quiz, err := c.ContentRepository.GetQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}
		c.mu.Lock()
		c.quizzes[quizID] = cachedQuiz{quiz: quiz, expiresAt: c.clock().Add(c.ttlWithJitter())}
		c.mu.Unlock()
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return cloneQuiz(result.(domain.Quiz)), nil
}

func (c *CachedContent) GetLesson(ctx context.Context, lessonID string) (domain.Lesson, error) {
	if lesson, ok := c.cachedLesson(lessonID); ok {
		return lesson, nil
	}

	result, err, _ := c.sf.Do("lesson:"+lessonID, func() (interface{}, error) {
		if lesson, ok := c.cachedLesson(lessonID); ok {
			return lesson, nil
		}
		lesson, err := c.ContentRepository.GetLesson(ctx, lessonID)
		if err != nil {
			return domain.Lesson{}, err
		}
		c.mu.Lock()
		c.lessons[lessonID] = cachedLesson{lesson: lesson, expiresAt: c.clock().Add(c.ttlWithJitter())}
		c.mu.Unlock()
		return lesson, nil
	})
	if err != nil {
		return domain.Lesson{}, err
	}
	return result.(domain.Lesson), nil
}

func (c *CachedContent) UpdateLesson(ctx context.Context, lesson domain.Lesson) (domain.Lesson, error) {
	c.forgetLesson(lesson.ID)
	updated, err := c.ContentRepository.UpdateLesson(ctx, lesson)
	c.forgetLesson(lesson.ID)
	return updated, err
}

func (c *CachedContent) DeleteLesson(ctx context.Context, lessonID string) error {
	err := c.ContentRepository.DeleteLesson(ctx, lessonID)
	c.forgetLesson(lessonID)
	return err
}

func (c *CachedContent) DeleteQuiz(ctx context.Context, quizID string) error {
	err := c.ContentRepository.DeleteQuiz(ctx, quizID)
	c.mu.Lock()
	delete(c.quizzes, quizID)
	c.mu.Unlock()
	return err
}

func (c *CachedContent) cachedQuiz(quizID string) (domain.Quiz, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.quizzes[quizID]
	if !ok || !entry.expiresAt.After(c.clock()) {
		return domain.Quiz{}, false
	}
	return entry.quiz, true
}

func (c *CachedContent) cachedLesson(lessonID string) (domain.Lesson, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.lessons[lessonID]
	if !ok || !entry.expiresAt.After(c.clock()) {
		return domain.Lesson{}, false
	}
	return entry.lesson, true
}

func (c *CachedContent) forgetLesson(lessonID string) {
	c.mu.Lock()
	delete(c.lessons, lessonID)
	c.mu.Unlock()
}

func (c *CachedContent) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
