package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"learnhub/internal/domain"
)

// ProgressGateway persists progress and attempts in Redis.
//
//	HSET progress:{studentID} {lessonID} {progress json}          (upsert by field)
//	ZADD attempts:{studentID} {score} {attempt json}              (append)
//	ZADD attempts:{studentID}:quiz:{quizID} {score} {attempt json}
//	INCR attempts:{studentID}:seq
//
// The score is completedAt in milliseconds with the insert sequence in the low three
// digits, so attempts sharing a millisecond list newest insert first.
type ProgressGateway struct {
	client *redis.Client
}

func NewProgressGateway(client *redis.Client) *ProgressGateway {
	return &ProgressGateway{client: client}
}

func (g *ProgressGateway) UpsertLessonProgress(ctx context.Context, p domain.LessonProgress) (domain.LessonProgress, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return domain.LessonProgress{}, fmt.Errorf("marshal progress: %w", err)
	}
	if err := g.client.HSet(ctx, progressKey(p.StudentID), p.LessonID, raw).Err(); err != nil {
		return domain.LessonProgress{}, fmt.Errorf("upsert progress: %w", err)
	}
	return p, nil
}

func (g *ProgressGateway) GetLessonProgress(ctx context.Context, studentID, lessonID string) (domain.LessonProgress, error) {
	raw, err := g.client.HGet(ctx, progressKey(studentID), lessonID).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.LessonProgress{}, domain.ErrProgressNotFound
	}
	if err != nil {
		return domain.LessonProgress{}, fmt.Errorf("get progress: %w", err)
	}
	var p domain.LessonProgress
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.LessonProgress{}, fmt.Errorf("unmarshal progress: %w", err)
	}
	return p, nil
}

func (g *ProgressGateway) ListLessonProgress(ctx context.Context, studentID string) ([]domain.LessonProgress, error) {
	rows, err := g.client.HGetAll(ctx, progressKey(studentID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	out := make([]domain.LessonProgress, 0, len(rows))
	for lessonID, raw := range rows {
		var p domain.LessonProgress
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, fmt.Errorf("unmarshal progress %s: %w", lessonID, err)
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (g *ProgressGateway) InsertQuizAttempt(ctx context.Context, a domain.QuizAttempt) (domain.QuizAttempt, error) {
	raw, err := json.Marshal(a)
	if err != nil {
		return domain.QuizAttempt{}, fmt.Errorf("marshal attempt: %w", err)
	}
	seq, err := g.client.Incr(ctx, attemptSeqKey(a.StudentID)).Result()
	if err != nil {
		return domain.QuizAttempt{}, fmt.Errorf("insert attempt: %w", err)
	}
	member := redis.Z{Score: attemptScore(a.CompletedAt, seq), Member: raw}
	_, err = g.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, attemptsKey(a.StudentID), member)
		pipe.ZAdd(ctx, quizAttemptsKey(a.StudentID, a.QuizID), member)
		return nil
	})
	if err != nil {
		return domain.QuizAttempt{}, fmt.Errorf("insert attempt: %w", err)
	}
	return a, nil
}

func (g *ProgressGateway) ListQuizAttempts(ctx context.Context, studentID, quizID string) ([]domain.QuizAttempt, error) {
	key := attemptsKey(studentID)
	if quizID != "" {
		key = quizAttemptsKey(studentID, quizID)
	}
	members, err := g.client.ZRevRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	out := make([]domain.QuizAttempt, 0, len(members))
	for _, raw := range members {
		var a domain.QuizAttempt
		if err := json.Unmarshal([]byte(raw), &a); err != nil {
			return nil, fmt.Errorf("unmarshal attempt: %w", err)
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CompletedAt.After(out[j].CompletedAt)
	})
	return out, nil
}

func attemptScore(completedAt time.Time, seq int64) float64 {
	return float64(completedAt.UnixMilli()*1000 + seq%1000)
}

func progressKey(studentID string) string {
	return "progress:" + studentID
}

func attemptsKey(studentID string) string {
	return "attempts:" + studentID
}

func attemptSeqKey(studentID string) string {
	return "attempts:" + studentID + ":seq"
}

func quizAttemptsKey(studentID, quizID string) string {
	return "attempts:" + studentID + ":quiz:" + quizID
}
