package cli

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnhub/internal/config"
	"learnhub/internal/infra/memory"
)

func TestBuildServicesPerDriver(t *testing.T) {
	mr := miniredis.RunT(t)
	cases := []struct {
		name  string
		setup func(*config.Config)
	}{
		{"memory", func(c *config.Config) { c.Storage.Driver = config.DriverMemory }},
		{"redis", func(c *config.Config) {
			c.Storage.Driver = config.DriverRedis
			c.Redis.Addr = mr.Addr()
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			var cfg config.Config
			cfg.Auth.JWTSecret = "secret"
			tc.setup(&cfg)
			log, _ := test.NewNullLogger()

			svc, err := buildServices(ctx, cfg, log)
			require.NoError(t, err)
			defer svc.Close()

			profile, token, err := svc.auth.SignIn(ctx, "rajesh@student.com", memory.DemoPassword)
			require.NoError(t, err)
			assert.NotEmpty(t, token)

			engine, err := svc.learning.StartQuiz(ctx, profile, "1")
			require.NoError(t, err)
			_, err = engine.SelectAnswer(2)
			require.NoError(t, err)
			_, err = engine.Submit(ctx)
			require.NoError(t, err)

			attempts, err := svc.learning.Attempts(ctx, profile, "1")
			require.NoError(t, err)
			assert.Len(t, attempts, 1)
		})
	}
	assert.True(t, mr.Exists("attempts:1"))
}
