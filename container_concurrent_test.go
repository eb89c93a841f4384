package bootstrap_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	bootstrap "github.com/K-John/createrington-sub002"
	"github.com/K-John/createrington-sub002/mock"
	"github.com/stretchr/testify/suite"
)

type ConcurrentTestSuite struct {
	suite.Suite
	c *bootstrap.Container
}

func (s *ConcurrentTestSuite) SetupTest() {
	s.c = bootstrap.New(bootstrap.WithLogger(quietLogger()))
}

func (s *ConcurrentTestSuite) TestSingleFactoryInvocationUnderContention() {
	counter := &mock.Counter{}
	db := &mock.Plain{Name: "db"}
	s.NoError(s.c.Register("database", mock.Factory(db, counter, 20*time.Millisecond)))

	const callers = 50
	results := make([]any, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = s.c.Get(context.Background(), "database")
		}(i)
	}
	wg.Wait()

	s.Equal(1, counter.Count())
	for i := 0; i < callers; i++ {
		s.NoError(errs[i])
		s.Same(db, results[i])
	}
}

func (s *ConcurrentTestSuite) TestConcurrentCallersShareFailure() {
	counter := &mock.Counter{}
	boom := errors.New("login rejected")
	s.NoError(s.c.Register("bot", func(ctx context.Context, c *bootstrap.Container) (any, error) {
		counter.Inc()
		time.Sleep(10 * time.Millisecond)
		return nil, boom
	}))

	const callers = 20
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.c.Get(context.Background(), "bot")
		}(i)
	}
	wg.Wait()

	s.Equal(1, counter.Count())
	for i := 0; i < callers; i++ {
		s.ErrorIs(errs[i], boom)
		// Every caller observes the same stored error value.
		s.Equal(errs[0], errs[i])
	}
}

func (s *ConcurrentTestSuite) TestDependencyReadyBeforeDependentFactory() {
	var mu sync.Mutex
	var observed []bootstrap.State

	s.NoError(s.c.Register("database", mock.Factory(&mock.Plain{}, nil, 10*time.Millisecond)))
	s.NoError(s.c.Register("cache", func(ctx context.Context, c *bootstrap.Container) (any, error) {
		state, _ := c.State("database")
		mu.Lock()
		observed = append(observed, state)
		mu.Unlock()
		return &mock.Plain{}, nil
	}, bootstrap.WithDependencies("database")))

	const callers = 20
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.c.Get(context.Background(), "cache")
			s.NoError(err)
		}()
	}
	wg.Wait()

	s.Len(observed, 1)
	s.Equal(bootstrap.StateReady, observed[0])
}

func (s *ConcurrentTestSuite) TestResolutionFollowsDependencyChainOnly() {
	const (
		dbDelay    = 50 * time.Millisecond
		cacheDelay = 25 * time.Millisecond
	)

	var mu sync.Mutex
	var order []string
	record := func(name string) {
		mu.Lock()
		order = append(order, name)
		mu.Unlock()
	}

	s.NoError(s.c.Register("database", func(ctx context.Context, c *bootstrap.Container) (any, error) {
		time.Sleep(dbDelay)
		record("database")
		return &mock.Plain{}, nil
	}))
	s.NoError(s.c.Register("cache", func(ctx context.Context, c *bootstrap.Container) (any, error) {
		time.Sleep(cacheDelay)
		record("cache")
		return &mock.Plain{}, nil
	}, bootstrap.WithDependencies("database")))
	s.NoError(s.c.Register("api", func(ctx context.Context, c *bootstrap.Container) (any, error) {
		record("api")
		return &mock.Plain{}, nil
	}, bootstrap.WithDependencies("cache")))

	start := time.Now()
	_, err := s.c.Get(context.Background(), "api")
	elapsed := time.Since(start)

	s.NoError(err)
	s.Equal([]string{"database", "cache", "api"}, order)

	// The chain serializes to db + cache; anything close to double that
	// means dependents were resolved sequentially instead of fanned out.
	s.GreaterOrEqual(elapsed, dbDelay+cacheDelay)
	s.Less(elapsed, 2*(dbDelay+cacheDelay))

	for name, state := range s.c.States() {
		s.Equal(bootstrap.StateReady, state, "service %s", name)
	}
}

func (s *ConcurrentTestSuite) TestWaiterContextCancellation() {
	release := make(chan struct{})
	s.NoError(s.c.Register("database", func(ctx context.Context, c *bootstrap.Container) (any, error) {
		<-release
		return &mock.Plain{}, nil
	}))

	go s.c.Get(context.Background(), "database") //nolint:errcheck

	s.Eventually(func() bool {
		state, _ := s.c.State("database")
		return state == bootstrap.StateInitializing
	}, time.Second, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := s.c.Get(ctx, "database")
	s.ErrorIs(err, context.DeadlineExceeded)

	// The initialization itself was not cancelled.
	close(release)
	got, err := s.c.Get(context.Background(), "database")
	s.NoError(err)
	s.NotNil(got)
}

func (s *ConcurrentTestSuite) TestInitiatorContextCancellationDoesNotFailService() {
	release := make(chan struct{})
	s.NoError(s.c.Register("database", func(ctx context.Context, c *bootstrap.Container) (any, error) {
		<-release
		return &mock.Plain{Name: "db"}, nil
	}))

	apiRuns := &mock.Counter{}
	api := &mock.Plain{Name: "api"}
	s.NoError(s.c.Register("api", mock.Factory(api, apiRuns, 0), bootstrap.WithDependencies("database")))

	go s.c.Get(context.Background(), "database") //nolint:errcheck
	s.Eventually(func() bool {
		state, _ := s.c.State("database")
		return state == bootstrap.StateInitializing
	}, time.Second, time.Millisecond)

	// The first caller for api gives up while its dependency is still
	// initializing. That abandons the wait, nothing more.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := s.c.Get(ctx, "api")
	s.ErrorIs(err, context.DeadlineExceeded)

	// Once the dependency settles, api must initialize normally instead of
	// carrying the deserter's deadline as a terminal failure.
	close(release)
	got, err := s.c.Get(context.Background(), "api")
	s.NoError(err)
	s.Same(api, got)
	s.Equal(1, apiRuns.Count())

	state, _ := s.c.State("api")
	s.Equal(bootstrap.StateReady, state)
}

func TestConcurrentSuite(t *testing.T) {
	suite.Run(t, new(ConcurrentTestSuite))
}
