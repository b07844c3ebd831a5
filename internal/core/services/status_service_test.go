package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"nowplaying/internal/core/domain"
	"nowplaying/internal/infrastructure/repositories/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

var sampleSnapshot = domain.StatusSnapshot{
	Mode:             domain.ModeStandard,
	ModeLabel:        "std",
	DifficultyRating: 5.12,
	Modifiers:        domain.ModifierSet{"HD"},
	MapLabel:         "A - B [C]",
	MapLink:          "https://osu.ppy.sh/b/123",
	LengthLabel:      "1:30",
}

func statusRequest(recipient string, at time.Time) domain.StatusRequest {
	return domain.StatusRequest{RequestID: "req-1", RecipientID: domain.RecipientID(recipient), RequestedAt: at}
}

func newService(store *MockCooldownStore, composer *MockStatusComposer) (*statusService, *fakeMetrics) {
	metrics := &fakeMetrics{}
	s := NewStatusService(store, composer, metrics, zap.NewNop().Sugar())
	return s.(*statusService), metrics
}

func TestHandle_Delivered(t *testing.T) {
	at := time.Unix(1000, 0)
	store := new(MockCooldownStore)
	store.On("TryAdmit", mock.Anything, domain.RecipientID("r1"), at).Return(true, nil)
	store.On("Record", mock.Anything, domain.RecipientID("r1"), at).Return(nil)
	composer := new(MockStatusComposer)
	composer.On("Compose", mock.Anything).Return(sampleSnapshot, true)
	out := new(MockDeliverer)
	out.On("Deliver", mock.Anything, domain.RecipientID("r1"), RenderStatus(sampleSnapshot)).Return(nil)

	s, metrics := newService(store, composer)
	outcome := s.Handle(context.Background(), statusRequest("r1", at), out)

	assert.Equal(t, domain.OutcomeDelivered, outcome)
	assert.Equal(t, []domain.Outcome{domain.OutcomeDelivered}, metrics.outcomes)
	store.AssertExpectations(t)
	out.AssertExpectations(t)
	store.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
}

func TestHandle_SuppressedSkipsCompose(t *testing.T) {
	store := new(MockCooldownStore)
	store.On("TryAdmit", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
	composer := new(MockStatusComposer)
	out := new(MockDeliverer)

	s, _ := newService(store, composer)
	outcome := s.Handle(context.Background(), statusRequest("r1", time.Now()), out)

	assert.Equal(t, domain.OutcomeSuppressed, outcome)
	composer.AssertNotCalled(t, "Compose", mock.Anything)
	out.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandle_StoreErrorSuppresses(t *testing.T) {
	store := new(MockCooldownStore)
	store.On("TryAdmit", mock.Anything, mock.Anything, mock.Anything).Return(false, errors.New("redis down"))
	composer := new(MockStatusComposer)

	s, _ := newService(store, composer)
	outcome := s.Handle(context.Background(), statusRequest("r1", time.Now()), new(MockDeliverer))

	assert.Equal(t, domain.OutcomeSuppressed, outcome)
	composer.AssertNotCalled(t, "Compose", mock.Anything)
}

func TestHandle_SilentReleasesReservation(t *testing.T) {
	store := new(MockCooldownStore)
	store.On("TryAdmit", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	store.On("Release", mock.Anything, domain.RecipientID("r1")).Return(nil)
	composer := new(MockStatusComposer)
	composer.On("Compose", mock.Anything).Return(domain.StatusSnapshot{}, false)
	out := new(MockDeliverer)

	s, _ := newService(store, composer)
	outcome := s.Handle(context.Background(), statusRequest("r1", time.Now()), out)

	assert.Equal(t, domain.OutcomeSilent, outcome)
	store.AssertExpectations(t)
	store.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything)
	out.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandle_DeliveryFailureReleases(t *testing.T) {
	store := new(MockCooldownStore)
	store.On("TryAdmit", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	store.On("Release", mock.Anything, domain.RecipientID("r1")).Return(nil)
	composer := new(MockStatusComposer)
	composer.On("Compose", mock.Anything).Return(sampleSnapshot, true)
	out := new(MockDeliverer)
	out.On("Deliver", mock.Anything, mock.Anything, mock.Anything).Return(domain.ErrRelayClosed)

	s, _ := newService(store, composer)
	outcome := s.Handle(context.Background(), statusRequest("r1", time.Now()), out)

	assert.Equal(t, domain.OutcomeFailed, outcome)
	store.AssertExpectations(t)
	store.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandle_MissingTimestampUsesClock(t *testing.T) {
	now := time.Unix(5000, 0)
	store := new(MockCooldownStore)
	store.On("TryAdmit", mock.Anything, mock.Anything, now).Return(false, nil)

	s, _ := newService(store, new(MockStatusComposer))
	s.now = func() time.Time { return now }

	assert.Equal(t, domain.OutcomeSuppressed, s.Handle(context.Background(), statusRequest("r1", time.Time{}), new(MockDeliverer)))
	store.AssertExpectations(t)
}

func TestHandle_CooldownWindowWithMemoryStore(t *testing.T) {
	composer := new(MockStatusComposer)
	composer.On("Compose", mock.Anything).Return(sampleSnapshot, true)
	out := new(MockDeliverer)
	out.On("Deliver", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	s := NewStatusService(memory.NewCooldownRepository(45*time.Second), composer, &fakeMetrics{}, zap.NewNop().Sugar())
	ctx := context.Background()
	t0 := time.Unix(1000, 0)

	assert.Equal(t, domain.OutcomeDelivered, s.Handle(ctx, statusRequest("r1", t0), out))
	assert.Equal(t, domain.OutcomeSuppressed, s.Handle(ctx, statusRequest("r1", t0.Add(30*time.Second)), out))
	assert.Equal(t, domain.OutcomeDelivered, s.Handle(ctx, statusRequest("r2", t0.Add(30*time.Second)), out))
	assert.Equal(t, domain.OutcomeDelivered, s.Handle(ctx, statusRequest("r1", t0.Add(45*time.Second)), out))
	out.AssertNumberOfCalls(t, "Deliver", 3)
}

func TestHandle_SilentDoesNotStartCooldown(t *testing.T) {
	composer := new(MockStatusComposer)
	composer.On("Compose", mock.Anything).Return(domain.StatusSnapshot{}, false).Once()
	composer.On("Compose", mock.Anything).Return(sampleSnapshot, true).Once()
	out := new(MockDeliverer)
	out.On("Deliver", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	s := NewStatusService(memory.NewCooldownRepository(45*time.Second), composer, &fakeMetrics{}, zap.NewNop().Sugar())
	ctx := context.Background()
	t0 := time.Unix(1000, 0)

	assert.Equal(t, domain.OutcomeSilent, s.Handle(ctx, statusRequest("r1", t0), out))
	assert.Equal(t, domain.OutcomeDelivered, s.Handle(ctx, statusRequest("r1", t0.Add(time.Second)), out))
}

func TestPreview(t *testing.T) {
	composer := new(MockStatusComposer)
	composer.On("Compose", mock.Anything).Return(sampleSnapshot, true).Once()
	composer.On("Compose", mock.Anything).Return(domain.StatusSnapshot{}, false).Once()
	store := new(MockCooldownStore)

	s, _ := newService(store, composer)

	text, ok := s.Preview(context.Background())
	assert.True(t, ok)
	assert.Equal(t, RenderStatus(sampleSnapshot), text)

	_, ok = s.Preview(context.Background())
	assert.False(t, ok)
	store.AssertNotCalled(t, "TryAdmit", mock.Anything, mock.Anything, mock.Anything)
}
