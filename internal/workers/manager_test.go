package workers

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeWorker struct {
	name     string
	startErr error
	events   *[]string
}

func (f *fakeWorker) Start() error {
	if f.startErr != nil {
		return f.startErr
	}
	*f.events = append(*f.events, "start "+f.name)
	return nil
}

func (f *fakeWorker) Stop() { *f.events = append(*f.events, "stop "+f.name) }

func (f *fakeWorker) Name() string { return f.name }

func TestManagerStopsInReverseOrder(t *testing.T) {
	var events []string
	m := NewManager(slog.Default(),
		&fakeWorker{name: "a", events: &events},
		&fakeWorker{name: "b", events: &events},
	)

	require.NoError(t, m.Start())
	m.Stop()

	require.Equal(t, []string{"start a", "start b", "stop b", "stop a"}, events)
}

func TestManagerUnwindsOnStartFailure(t *testing.T) {
	var events []string
	boom := errors.New("bad schedule")
	m := NewManager(slog.Default(),
		&fakeWorker{name: "a", events: &events},
		&fakeWorker{name: "b", events: &events, startErr: boom},
	)

	err := m.Start()

	require.ErrorIs(t, err, boom)
	require.Equal(t, []string{"start a", "stop a"}, events)
}
