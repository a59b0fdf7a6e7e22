package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	before := time.Now().UTC()
	event := NewEvent(EventTypeCreated, EntityTypeExpense, map[string]int{"id": 1})
	after := time.Now().UTC()

	assert.Equal(t, "expense.created", event.Type)
	assert.Equal(t, EntityTypeExpense, event.Entity)
	assert.False(t, event.Timestamp.Before(before))
	assert.False(t, event.Timestamp.After(after))
}

func TestEvent_ToJSON(t *testing.T) {
	event := BillPaid(map[string]any{"id": 7, "title": "Rent"})

	data, err := event.ToJSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "bill.paid", decoded["type"])
	assert.Equal(t, "bill", decoded["entity"])

	payload, ok := decoded["payload"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Rent", payload["title"])
}

func TestEventConstructors(t *testing.T) {
	tests := []struct {
		name     string
		event    Event
		wantType string
		entity   EntityType
	}{
		{"expense created", ExpenseCreated(nil), "expense.created", EntityTypeExpense},
		{"expense deleted", ExpenseDeleted(nil), "expense.deleted", EntityTypeExpense},
		{"budget updated", BudgetUpdated(nil), "budget.updated", EntityTypeBudget},
		{"budget rolled over", BudgetRolledOver(nil), "budget.rolled_over", EntityTypeBudget},
		{"bill created", BillCreated(nil), "bill.created", EntityTypeBill},
		{"bill paid", BillPaid(nil), "bill.paid", EntityTypeBill},
		{"bill reminder", BillReminder(nil), "bill.reminder", EntityTypeBill},
		{"goal created", GoalCreated(nil), "goal.created", EntityTypeGoal},
		{"goal deposited", GoalDeposited(nil), "goal.deposited", EntityTypeGoal},
		{"goal deleted", GoalDeleted(nil), "goal.deleted", EntityTypeGoal},
		{"debt paid", DebtPaid(nil), "debt.paid", EntityTypeDebt},
		{"debt updated", DebtUpdated(nil), "debt.updated", EntityTypeDebt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.event.Type)
			assert.Equal(t, tt.entity, tt.event.Entity)
		})
	}
}
