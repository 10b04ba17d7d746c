package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"text-adventure/internal/database"
	"text-adventure/internal/model"
	"text-adventure/internal/repository"

	"github.com/docker/docker/client"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// StoreIntegrationSuite runs the same scenarios against PostgreSQL and Redis containers.
type StoreIntegrationSuite struct {
	suite.Suite
	ctx         context.Context
	logger      *zap.Logger
	pgContainer *postgres.PostgresContainer
	rdContainer *tcredis.RedisContainer
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	stores      map[string]repository.PlayerStateRepository
}

func (s *StoreIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = zap.NewNop()
	t := s.T()

	pgContainer, err := postgres.Run(s.ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute)),
	)
	require.NoError(t, err, "failed to start postgres container")
	s.pgContainer = pgContainer

	dsn, err := pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, database.ApplyMigrations(dsn, s.logger))

	s.pgPool, err = database.Connect(s.ctx, database.PoolConfig{
		DSN:         dsn,
		MaxConns:    4,
		MaxAttempts: 5,
		RetryDelay:  time.Second,
	}, s.logger)
	require.NoError(t, err, "failed to connect to postgres")

	rdContainer, err := tcredis.Run(s.ctx,
		"docker.io/redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("* Ready to accept connections").
				WithStartupTimeout(1*time.Minute)),
	)
	require.NoError(t, err, "failed to start redis container")
	s.rdContainer = rdContainer

	host, err := rdContainer.Host(s.ctx)
	require.NoError(t, err)
	port, err := rdContainer.MappedPort(s.ctx, "6379/tcp")
	require.NoError(t, err)
	s.redisClient = redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	require.NoError(t, s.redisClient.Ping(s.ctx).Err())

	s.stores = map[string]repository.PlayerStateRepository{
		"postgres": repository.NewPostgresRepository(s.pgPool, s.logger),
		"redis":    repository.NewRedisRepository(s.redisClient, "", s.logger),
	}
}

func (s *StoreIntegrationSuite) TearDownSuite() {
	if s.pgPool != nil {
		s.pgPool.Close()
	}
	if s.redisClient != nil {
		s.redisClient.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(s.ctx); err != nil {
			s.T().Logf("failed to terminate postgres container: %v", err)
		}
	}
	if s.rdContainer != nil {
		if err := s.rdContainer.Terminate(s.ctx); err != nil {
			s.T().Logf("failed to terminate redis container: %v", err)
		}
	}
}

func (s *StoreIntegrationSuite) SetupTest() {
	require.NoError(s.T(), s.redisClient.FlushDB(s.ctx).Err())
	_, err := s.pgPool.Exec(s.ctx, "TRUNCATE TABLE player_saves")
	require.NoError(s.T(), err)
}

func TestStoreIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		t.Skipf("Docker client init error: %v", err)
	}
	if _, err := cli.Ping(context.Background()); err != nil {
		cli.Close()
		t.Skipf("Docker daemon is not reachable: %v", err)
	}
	cli.Close()

	suite.Run(t, new(StoreIntegrationSuite))
}

func (s *StoreIntegrationSuite) TestSaveLoadOverwrite() {
	for name, store := range s.stores {
		s.Run(name, func() {
			st := newState(s.T(), "阿明")
			s.Require().NoError(store.Save(s.ctx, st))

			got, err := store.Load(s.ctx, "阿明")
			s.Require().NoError(err)
			s.Equal(st, got)

			st.Level = 3
			st.Inventory = append(st.Inventory, "魔法卷轴")
			s.Require().NoError(store.Save(s.ctx, st))

			got, err = store.Load(s.ctx, "阿明")
			s.Require().NoError(err)
			s.Equal(3, got.Level)
			s.Equal([]string{"治疗药水", "铁剑", "魔法卷轴"}, got.Inventory)
		})
	}
}

func (s *StoreIntegrationSuite) TestLoadMissing() {
	for name, store := range s.stores {
		s.Run(name, func() {
			got, err := store.Load(s.ctx, "无名氏")
			s.Nil(got)
			s.ErrorIs(err, model.ErrNotFound)
			s.NotErrorIs(err, model.ErrCorruptRecord)
		})
	}
}

func (s *StoreIntegrationSuite) TestList() {
	for name, store := range s.stores {
		s.Run(name, func() {
			for _, player := range []string{"小红", "Bob", "Alice"} {
				s.Require().NoError(store.Save(s.ctx, newState(s.T(), player)))
			}
			names, err := store.List(s.ctx)
			s.Require().NoError(err)
			s.Equal([]string{"Alice", "Bob", "小红"}, names)
		})
	}
}

func (s *StoreIntegrationSuite) TestCorruptRecord() {
	const broken = `{"player_name": "阿明", "level": 2}`

	_, err := s.pgPool.Exec(s.ctx,
		`INSERT INTO player_saves (player_name, record) VALUES ($1, $2)`, "阿明", broken)
	s.Require().NoError(err)
	require.NoError(s.T(), s.redisClient.Set(s.ctx, repository.DefaultRedisKeyPrefix+"阿明", broken, 0).Err())

	for name, store := range s.stores {
		s.Run(name, func() {
			got, err := store.Load(s.ctx, "阿明")
			s.Nil(got)
			s.ErrorIs(err, model.ErrNotFound)
			s.ErrorIs(err, model.ErrCorruptRecord)
		})
	}
}

func (s *StoreIntegrationSuite) TestPostgresSummaries() {
	repo := repository.NewPostgresRepository(s.pgPool, s.logger)
	before := time.Now().Add(-time.Minute)
	s.Require().NoError(repo.Save(s.ctx, newState(s.T(), "阿明")))

	summaries, err := repo.ListSummaries(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(summaries, 1)
	s.Equal("阿明", summaries[0].PlayerName)
	s.True(summaries[0].UpdatedAt.After(before))
}
