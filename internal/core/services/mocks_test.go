package services

import (
	"context"
	"sync"
	"time"

	"nowplaying/internal/core/domain"

	"github.com/stretchr/testify/mock"
)

type MockBeatmapFetcher struct {
	mock.Mock
}

func (m *MockBeatmapFetcher) FetchBeatmap(ctx context.Context, beatmapID int, mode domain.GameMode) (domain.BeatmapMetadata, bool) {
	args := m.Called(ctx, beatmapID, mode)
	return args.Get(0).(domain.BeatmapMetadata), args.Bool(1)
}

func (m *MockBeatmapFetcher) Configured() bool {
	args := m.Called()
	return args.Bool(0)
}

type MockCooldownStore struct {
	mock.Mock
}

func (m *MockCooldownStore) TryAdmit(ctx context.Context, recipient domain.RecipientID, now time.Time) (bool, error) {
	args := m.Called(ctx, recipient, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockCooldownStore) Record(ctx context.Context, recipient domain.RecipientID, now time.Time) error {
	args := m.Called(ctx, recipient, now)
	return args.Error(0)
}

func (m *MockCooldownStore) Release(ctx context.Context, recipient domain.RecipientID) error {
	args := m.Called(ctx, recipient)
	return args.Error(0)
}

func (m *MockCooldownStore) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockDeliverer struct {
	mock.Mock
}

func (m *MockDeliverer) Deliver(ctx context.Context, recipient domain.RecipientID, text string) error {
	args := m.Called(ctx, recipient, text)
	return args.Error(0)
}

type MockStatusComposer struct {
	mock.Mock
}

func (m *MockStatusComposer) Compose(ctx context.Context) (domain.StatusSnapshot, bool) {
	args := m.Called(ctx)
	return args.Get(0).(domain.StatusSnapshot), args.Bool(1)
}

type feedRead struct {
	snap domain.FeedSnapshot
	ok   bool
}

// scriptedFeed replays a fixed initial read and a sequence of re-polls; the
// last re-poll repeats once the script runs out.
type scriptedFeed struct {
	mu        sync.Mutex
	initial   feedRead
	polls     []feedRead
	pollCalls int
}

func (f *scriptedFeed) Fetch(ctx context.Context) (domain.FeedSnapshot, bool) {
	return f.initial.snap, f.initial.ok
}

func (f *scriptedFeed) Poll(ctx context.Context) (domain.FeedSnapshot, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.pollCalls++
	if len(f.polls) == 0 {
		return f.initial.snap, f.initial.ok
	}
	i := f.pollCalls - 1
	if i >= len(f.polls) {
		i = len(f.polls) - 1
	}
	return f.polls[i].snap, f.polls[i].ok
}

func (f *scriptedFeed) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pollCalls
}

type fakeMetrics struct {
	mu              sync.Mutex
	outcomes        []domain.Outcome
	modeCorrections int
	composes        int
	liveComposes    int
}

func (m *fakeMetrics) RecordOutcome(outcome domain.Outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

func (m *fakeMetrics) ObserveCompose(_ time.Duration, live bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.composes++
	if live {
		m.liveComposes++
	}
}

func (m *fakeMetrics) RecordRemoteFetch(string) {}

func (m *fakeMetrics) RecordModeCorrection() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modeCorrections++
}

func (m *fakeMetrics) RelayConnected()    {}
func (m *fakeMetrics) RelayDisconnected() {}
