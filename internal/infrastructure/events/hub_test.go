package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bodegas-api/internal/application/inventory"
	"github.com/jhoicas/bodegas-api/internal/infrastructure/events"
)

type fakeConn struct {
	mu       sync.Mutex
	messages [][]byte
	closed   bool
	fail     bool
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broken pipe")
	}
	f.messages = append(f.messages, data)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

func TestHub_DifundeEventos(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := events.NewHub(8, nil)
	go hub.Run(ctx)

	conn := &fakeConn{}
	hub.Register(conn)
	hub.Publish(inventory.ChangeEvent{Type: inventory.EventTransfer, Action: "created", ID: "t1"})

	require.Eventually(t, func() bool { return conn.count() == 1 }, time.Second, 5*time.Millisecond)
	var got inventory.ChangeEvent
	conn.mu.Lock()
	require.NoError(t, json.Unmarshal(conn.messages[0], &got))
	conn.mu.Unlock()
	assert.Equal(t, "transfer", got.Type)
	assert.Equal(t, "t1", got.ID)
}

func TestHub_QuitaClienteConError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := events.NewHub(8, nil)
	go hub.Run(ctx)

	bad := &fakeConn{fail: true}
	hub.Register(bad)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)
	hub.Publish(inventory.ChangeEvent{Type: inventory.EventMovement, ID: "m1"})

	require.Eventually(t, func() bool { return hub.Clients() == 0 }, time.Second, 5*time.Millisecond)
	bad.mu.Lock()
	assert.True(t, bad.closed)
	bad.mu.Unlock()
}

func TestHub_PublishNoBloqueaConBufferLleno(t *testing.T) {
	hub := events.NewHub(1, nil) // sin Run: nadie consume
	done := make(chan struct{})
	go func() {
		hub.Publish(inventory.ChangeEvent{Type: "a"})
		hub.Publish(inventory.ChangeEvent{Type: "b"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish bloqueó")
	}
}

func TestHub_AltasYBajasNoBloqueanTrasDetenerse(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := events.NewHub(8, nil)
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	conn := &fakeConn{}
	hub.Register(conn)
	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Run no terminó")
	}

	done := make(chan struct{})
	late := &fakeConn{}
	go func() {
		hub.Unregister(conn)
		hub.Register(late)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Register/Unregister bloqueados con el hub detenido")
	}
	assert.Equal(t, 0, hub.Clients())
	late.mu.Lock()
	assert.True(t, late.closed)
	late.mu.Unlock()
}
