package factory

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/okeefe/typeduel/internal/dependencies/mocks"
	"github.com/okeefe/typeduel/internal/services/session"
	"github.com/okeefe/typeduel/internal/storage/memory"
	"github.com/okeefe/typeduel/internal/testutil"
	"github.com/okeefe/typeduel/internal/ws"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	FakeClock  *clockwork.FakeClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	fakeClock := clockwork.NewFakeClockAt(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(
		store,
		fakeClock,
		mockRandom,
		session.DefaultConfig(),
		ws.DefaultConfig(),
		testutil.NopLogger(),
	)

	return &TestApp{
		App:        app,
		FakeClock:  fakeClock,
		MockRandom: mockRandom,
	}
}
