package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents the type of event (created, updated, deleted)
type EventType string

const (
	EventTypeCreated EventType = "created"
	EventTypeUpdated EventType = "updated"
	EventTypeDeleted EventType = "deleted"
	EventTypePaid    EventType = "paid"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeExpense EntityType = "expense"
	EntityTypeBudget  EntityType = "budget"
	EntityTypeBill    EntityType = "bill"
	EntityTypeGoal    EntityType = "goal"
	EntityTypeDebt    EntityType = "debt"
)

// Additional event types for specific events
const (
	EventTypeRolledOver EventType = "rolled_over"
	EventTypeDeposited  EventType = "deposited"
	EventTypeReminder   EventType = "reminder"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "expense.created"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "expense"
	Payload   interface{} `json:"payload"`   // Full entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ExpenseCreated creates an expense.created event
func ExpenseCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeExpense, payload)
}

// ExpenseDeleted creates an expense.deleted event
func ExpenseDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeExpense, payload)
}

// BudgetUpdated creates a budget.updated event
func BudgetUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeBudget, payload)
}

// BudgetRolledOver creates a budget.rolled_over event
func BudgetRolledOver(payload interface{}) Event {
	return NewEvent(EventTypeRolledOver, EntityTypeBudget, payload)
}

// BillCreated creates a bill.created event
func BillCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeBill, payload)
}

// BillPaid creates a bill.paid event
func BillPaid(payload interface{}) Event {
	return NewEvent(EventTypePaid, EntityTypeBill, payload)
}

// BillReminder creates a bill.reminder event
func BillReminder(payload interface{}) Event {
	return NewEvent(EventTypeReminder, EntityTypeBill, payload)
}

// GoalCreated creates a goal.created event
func GoalCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeGoal, payload)
}

// GoalDeposited creates a goal.deposited event
func GoalDeposited(payload interface{}) Event {
	return NewEvent(EventTypeDeposited, EntityTypeGoal, payload)
}

// GoalDeleted creates a goal.deleted event
func GoalDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeGoal, payload)
}

// DebtPaid creates a debt.paid event
func DebtPaid(payload interface{}) Event {
	return NewEvent(EventTypePaid, EntityTypeDebt, payload)
}

// DebtUpdated creates a debt.updated event
func DebtUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeDebt, payload)
}
