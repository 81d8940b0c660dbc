package integration

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"

	"learnhub/internal/app"
	"learnhub/internal/domain"
	"learnhub/internal/infra/memory"
	pgstore "learnhub/internal/infra/postgres"
	redisstore "learnhub/internal/infra/redis"
)

var student = domain.Profile{ID: "1", Email: "rajesh@student.com", FullName: "Rajesh Kumar", Role: domain.RoleStudent}

func TestPostgresSessionsEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := pgstore.OpenBun(pgURL)
	defer db.Close()
	applied, err := pgstore.Migrate(ctx, db)
	require.NoError(t, err)
	assert.Len(t, applied, 4)

	pool, err := pgxpool.Connect(ctx, pgURL)
	require.NoError(t, err)
	defer pool.Close()

	content := pgstore.NewContentStore(pool)
	for _, l := range memory.DemoLessons() {
		_, err := content.CreateLesson(ctx, l)
		require.NoError(t, err)
	}
	for _, q := range memory.DemoQuizzes() {
		_, err := content.CreateQuiz(ctx, q)
		require.NoError(t, err)
	}
	users, err := memory.DemoUsers(bcrypt.MinCost)
	require.NoError(t, err)
	userStore := pgstore.NewUserStore(db)
	require.NoError(t, userStore.SeedUsers(ctx, users))
	require.NoError(t, userStore.SeedUsers(ctx, users), "seeding twice is a no-op")

	redisClient, err := redisClientFromURL(redisURL)
	require.NoError(t, err)
	defer redisClient.Close()

	log, _ := test.NewNullLogger()
	gateway := pgstore.NewProgressGateway(db)
	learning := app.NewLearningService(redisstore.NewCachedContent(redisClient, content, 5*time.Minute), gateway, log)
	auth := app.NewAuthService(userStore, "secret", time.Hour, log)

	profile, _, err := auth.SignIn(ctx, student.Email, memory.DemoPassword)
	require.NoError(t, err)
	assert.Equal(t, student.ID, profile.ID)
	_, _, err = auth.SignUp(ctx, app.SignUpRequest{Email: student.Email, Password: "secret1", FullName: "Dup", Role: domain.RoleStudent})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	tracker, err := learning.StartLesson(ctx, profile, "1")
	require.NoError(t, err)
	for !tracker.Completed() {
		_, err := tracker.Next(ctx)
		require.NoError(t, err)
	}
	progress, err := learning.LessonProgress(ctx, profile, "1")
	require.NoError(t, err)
	assert.True(t, progress.Completed)
	assert.Equal(t, 100, progress.ProgressPercentage)
	require.NotNil(t, progress.CompletedAt)

	for _, answers := range [][]int{{2, 1}, {0, 1}} {
		engine, err := learning.StartQuiz(ctx, profile, "1")
		require.NoError(t, err)
		for _, a := range answers {
			_, err := engine.SelectAnswer(a)
			require.NoError(t, err)
			_, _, err = engine.Next(ctx)
			require.NoError(t, err)
		}
		require.True(t, engine.Submitted())
	}

	attempts, err := learning.Attempts(ctx, profile, "1")
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, 50, attempts[0].Score, "newest first")
	assert.Equal(t, []int{0, 1}, attempts[0].Answers)
	assert.Equal(t, 100, attempts[1].Score)

	dash, err := learning.Dashboard(ctx, profile)
	require.NoError(t, err)
	require.NotNil(t, dash.Student)
	assert.Equal(t, 75, dash.Student.AverageScore)
	assert.Equal(t, 1, dash.Student.CompletedLessons)

	tied := time.Now().UTC().Truncate(time.Millisecond)
	for _, id := range []string{"tie-b", "tie-a"} {
		_, err := gateway.InsertQuizAttempt(ctx, domain.QuizAttempt{
			ID: id, StudentID: "99", QuizID: "1", Answers: []int{0, 0}, CompletedAt: tied,
		})
		require.NoError(t, err)
	}
	tiedAttempts, err := gateway.ListQuizAttempts(ctx, "99", "")
	require.NoError(t, err)
	require.Len(t, tiedAttempts, 2)
	assert.Equal(t, "tie-a", tiedAttempts[0].ID, "equal timestamps come back newest insert first")

	exists, err := redisClient.Exists(ctx, "content:quiz:1").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists)
}

func TestRedisGatewayEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	redisURL, cleanup := startRedis(t, ctx)
	defer cleanup()
	client, err := redisClientFromURL(redisURL)
	require.NoError(t, err)
	defer client.Close()

	g := redisstore.NewProgressGateway(client)
	now := time.Now().UTC().Truncate(time.Millisecond)
	_, err = g.UpsertLessonProgress(ctx, domain.LessonProgress{StudentID: "s1", LessonID: "l1", ProgressPercentage: 100, Completed: true, UpdatedAt: now})
	require.NoError(t, err)
	_, err = g.UpsertLessonProgress(ctx, domain.LessonProgress{StudentID: "s1", LessonID: "l1", ProgressPercentage: 100, Completed: true, TimeSpent: 9, UpdatedAt: now})
	require.NoError(t, err)
	rows, err := g.ListLessonProgress(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 9, rows[0].TimeSpent)

	for i := 0; i < 3; i++ {
		_, err := g.InsertQuizAttempt(ctx, domain.QuizAttempt{
			ID: fmt.Sprintf("a%d", i), StudentID: "s1", QuizID: "q1", Answers: []int{i}, Score: i * 10,
			CompletedAt: now.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}
	attempts, err := g.ListQuizAttempts(ctx, "s1", "q1")
	require.NoError(t, err)
	require.Len(t, attempts, 3)
	assert.Equal(t, "a2", attempts[0].ID)
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "learnhub", "POSTGRES_PASSWORD": "learnhub", "POSTGRES_DB": "learnhub"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)
	dsn := fmt.Sprintf("postgres://learnhub:learnhub@%s:%s/learnhub?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped in -short mode")
	}
	provider, err := tc.NewDockerProvider()
	if err != nil {
		t.Skipf("docker not available: %v", err)
	}
	defer provider.Close()
	if err := provider.Health(context.Background()); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
