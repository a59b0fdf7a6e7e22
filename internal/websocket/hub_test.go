package websocket

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockClient is a test double for Client that captures sent messages
type mockClient struct {
	id       string
	userID   uuid.UUID
	messages [][]byte
	mu       sync.Mutex
	closed   bool
}

func newMockClient(id string, userID uuid.UUID) *mockClient {
	return &mockClient{
		id:       id,
		userID:   userID,
		messages: make([][]byte, 0),
	}
}

func (m *mockClient) ID() string {
	return m.id
}

func (m *mockClient) UserID() uuid.UUID {
	return m.userID
}

func (m *mockClient) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClientClosed
	}
	m.messages = append(m.messages, data)
	return nil
}

func (m *mockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockClient) GetMessages() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([][]byte, len(m.messages))
	copy(copied, m.messages)
	return copied
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()

	alice := uuid.New()
	bob := uuid.New()

	client1 := newMockClient("client-1", alice)
	client2 := newMockClient("client-2", alice)
	client3 := newMockClient("client-3", bob)

	hub.Register(client1)
	hub.Register(client2)
	hub.Register(client3)

	assert.Equal(t, 2, hub.ClientCount(alice))
	assert.Equal(t, 1, hub.ClientCount(bob))
	assert.Equal(t, 0, hub.ClientCount(uuid.New()))
	assert.Equal(t, 3, hub.TotalClientCount())

	hub.Unregister(client1)
	assert.Equal(t, 1, hub.ClientCount(alice))

	hub.Unregister(client2)
	hub.Unregister(client3)
	assert.Equal(t, 0, hub.ClientCount(alice))
	assert.Equal(t, 0, hub.ClientCount(bob))
}

func TestHub_Broadcast_UserIsolation(t *testing.T) {
	hub := NewHub()

	alice := uuid.New()
	bob := uuid.New()

	clientA1 := newMockClient("client-a1", alice)
	clientA2 := newMockClient("client-a2", alice)
	clientB := newMockClient("client-b", bob)

	hub.Register(clientA1)
	hub.Register(clientA2)
	hub.Register(clientB)

	hub.Broadcast(alice, ExpenseCreated(map[string]any{"id": 42}))

	// Sends are async
	require.Eventually(t, func() bool {
		return len(clientA1.GetMessages()) == 1 && len(clientA2.GetMessages()) == 1
	}, time.Second, 10*time.Millisecond)

	assert.Empty(t, clientB.GetMessages(), "other user must not receive the event")

	var got Event
	require.NoError(t, json.Unmarshal(clientA1.GetMessages()[0], &got))
	assert.Equal(t, "expense.created", got.Type)
	assert.Equal(t, EntityTypeExpense, got.Entity)
}

func TestHub_Broadcast_NoClients(t *testing.T) {
	hub := NewHub()
	// Must not panic or block
	hub.Broadcast(uuid.New(), BudgetUpdated(nil))
}

func TestHub_Broadcast_ClosedClient(t *testing.T) {
	hub := NewHub()

	alice := uuid.New()
	client := newMockClient("client-1", alice)
	hub.Register(client)
	require.NoError(t, client.Close())

	// Send fails but broadcast must not panic
	hub.Broadcast(alice, BillPaid(nil))
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, client.GetMessages())
}

func TestHub_ConcurrentAccess(t *testing.T) {
	hub := NewHub()
	alice := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			c := newMockClient(uuid.New().String(), alice)
			hub.Register(c)
			hub.Broadcast(alice, BudgetUpdated(map[string]int{"n": n}))
			hub.Unregister(c)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, hub.ClientCount(alice))
}
