package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"learnhub/internal/app"
	"learnhub/internal/domain"
)

// CachedContent caches lessons and quizzes in Redis as JSON and falls back to the
// backing repository on a miss.
//
//	SET content:quiz:{quizID}     {quiz json}   EX ttl
//	SET content:lesson:{lessonID} {lesson json} EX ttl
//
// Cache errors are treated as misses; writes delete the cached key. A zero ttl disables caching.
type CachedContent struct {
	app.ContentRepository

	client *redis.Client
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewCachedContent(client *redis.Client, backing app.ContentRepository, ttl time.Duration) *CachedContent {
	return &CachedContent{
		ContentRepository: backing,
		client:            client,
		ttl:               ttl,
		rnd:               rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *CachedContent) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	key := quizKey(quizID)
	var quiz domain.Quiz
	if c.load(ctx, key, &quiz) {
		return quiz, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		var cached domain.Quiz
		if c.load(ctx, key, &cached) {
			return cached, nil
		}
		quiz, err := c.ContentRepository.GetQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}
		c.store(ctx, key, quiz)
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (c *CachedContent) GetLesson(ctx context.Context, lessonID string) (domain.Lesson, error) {
	key := lessonKey(lessonID)
	var lesson domain.Lesson
	if c.load(ctx, key, &lesson) {
		return lesson, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		var cached domain.Lesson
		if c.load(ctx, key, &cached) {
			return cached, nil
		}
		lesson, err := c.ContentRepository.GetLesson(ctx, lessonID)
		if err != nil {
			return domain.Lesson{}, err
		}
		c.store(ctx, key, lesson)
		return lesson, nil
	})
	if err != nil {
		return domain.Lesson{}, err
	}
	return result.(domain.Lesson), nil
}

func (c *CachedContent) UpdateLesson(ctx context.Context, lesson domain.Lesson) (domain.Lesson, error) {
	updated, err := c.ContentRepository.UpdateLesson(ctx, lesson)
	_ = c.client.Del(ctx, lessonKey(lesson.ID)).Err()
	return updated, err
}

func (c *CachedContent) DeleteLesson(ctx context.Context, lessonID string) error {
	err := c.ContentRepository.DeleteLesson(ctx, lessonID)
	_ = c.client.Del(ctx, lessonKey(lessonID)).Err()
	return err
}

func (c *CachedContent) DeleteQuiz(ctx context.Context, quizID string) error {
	err := c.ContentRepository.DeleteQuiz(ctx, quizID)
	_ = c.client.Del(ctx, quizKey(quizID)).Err()
	return err
}

func (c *CachedContent) load(ctx context.Context, key string, dst any) bool {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

// store is best effort; a failed write only costs a later miss.
func (c *CachedContent) store(ctx context.Context, key string, v any) {
	if c.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, key, raw, c.ttlWithJitter()).Err()
}

func quizKey(quizID string) string {
	return "content:quiz:" + quizID
}

func lessonKey(lessonID string) string {
	return "content:lesson:" + lessonID
}

func (c *CachedContent) ttlWithJitter() time.Duration {
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
