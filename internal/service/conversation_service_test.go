package service

import (
	"context"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/swisscoin/internal/calculator"
	"github.com/mmynk/swisscoin/pkg/api"
)

func TestGetConversation_Pairwise(t *testing.T) {
	env := setupTestServer(t)
	alice := env.newUser(t, "Alice")
	bob := env.newUser(t, "Bob")
	carol := env.newUser(t, "Carol")
	ctx := context.Background()

	dinner := time.Date(2020, time.March, 1, 19, 0, 0, 0, time.UTC)
	paidBack := time.Date(2020, time.March, 2, 9, 0, 0, 0, time.UTC)

	_, err := env.splits.CreateExpense(ctx, as(alice, &api.CreateExpenseRequest{
		Title:          "Dinner",
		Amount:         d("40"),
		Date:           dinner,
		ParticipantIDs: []string{alice.id, bob.id},
	}))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	// Not between Alice and Bob.
	_, err = env.splits.CreateExpense(ctx, as(alice, &api.CreateExpenseRequest{
		Title:          "Cinema",
		Amount:         d("30"),
		Date:           dinner,
		ParticipantIDs: []string{alice.id, carol.id},
	}))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	_, err = env.settlements.CreateSettlement(ctx, as(bob, &api.CreateSettlementRequest{
		ToID:   alice.id,
		Amount: d("5"),
		Date:   paidBack,
	}))
	if err != nil {
		t.Fatalf("CreateSettlement failed: %v", err)
	}
	_, err = env.settlements.CreateReminder(ctx, as(alice, &api.CreateReminderRequest{RecipientID: bob.id, Amount: d("15")}))
	if err != nil {
		t.Fatalf("CreateReminder failed: %v", err)
	}
	_, err = env.conversations.SendMessage(ctx, as(bob, &api.SendMessageRequest{ToID: alice.id, Text: "will pay soon"}))
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	resp, err := env.conversations.GetConversation(ctx, as(alice, &api.GetConversationRequest{CounterpartID: bob.id}))
	if err != nil {
		t.Fatalf("GetConversation failed: %v", err)
	}

	if !resp.Msg.Balance.Valid {
		t.Fatal("expected a pairwise balance")
	}
	assertAmount(t, "balance", resp.Msg.Balance.Decimal, "15")

	var items []api.ConversationItem
	for _, day := range resp.Msg.Days {
		items = append(items, day.Items...)
	}
	if len(items) != 4 {
		t.Fatalf("items: expected 4, got %d: %+v", len(items), items)
	}

	days := resp.Msg.Days
	if n := len(days); n < 3 || days[n-2].Date != "2020-03-02" || days[n-1].Date != "2020-03-01" {
		t.Fatalf("expected the oldest days to be 2020-03-02 and 2020-03-01, got %+v", days)
	}

	oldest := days[len(days)-1].Items
	if len(oldest) != 1 || oldest[0].Kind != "expense" || oldest[0].Expense == nil {
		t.Fatalf("expected the dinner alone on the first day, got %+v", oldest)
	}
	if oldest[0].Expense.Title != "Dinner" {
		t.Errorf("title: expected 'Dinner', got '%s'", oldest[0].Expense.Title)
	}
	assertAmount(t, "dinner effect", oldest[0].Amount.Decimal, "20")

	settled := days[len(days)-2].Items
	if len(settled) != 1 || settled[0].Settlement == nil {
		t.Fatalf("expected the settlement on the second day, got %+v", settled)
	}

	kinds := make(map[string]int)
	for _, item := range items {
		kinds[item.Kind]++
		if item.Kind == "message" && item.Amount.Valid {
			t.Error("messages should carry no amount")
		}
	}
	for _, kind := range []string{"expense", "settlement", "reminder", "message"} {
		if kinds[kind] != 1 {
			t.Errorf("%s items: expected 1, got %d", kind, kinds[kind])
		}
	}

	// Bob sees the same feed with the expense from his side.
	bobResp, err := env.conversations.GetConversation(ctx, as(bob, &api.GetConversationRequest{CounterpartID: alice.id}))
	if err != nil {
		t.Fatalf("GetConversation failed: %v", err)
	}
	assertAmount(t, "bob's balance", bobResp.Msg.Balance.Decimal, "-15")
	bobDays := bobResp.Msg.Days
	assertAmount(t, "dinner effect for bob", bobDays[len(bobDays)-1].Items[0].Amount.Decimal, "-20")
}

func TestGetConversation_Group(t *testing.T) {
	env := setupTestServer(t)
	alice := env.newUser(t, "Alice")
	bob := env.newUser(t, "Bob")
	eve := env.newUser(t, "Eve")
	ctx := context.Background()

	groupResp, err := env.groups.CreateGroup(ctx, as(alice, &api.CreateGroupRequest{Name: "Flat", MemberIDs: []string{bob.id}}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	groupID := groupResp.Msg.Group.ID

	_, err = env.splits.CreateExpense(ctx, as(bob, &api.CreateExpenseRequest{
		Title:          "Internet",
		Amount:         d("60"),
		GroupID:        groupID,
		ParticipantIDs: []string{alice.id, bob.id},
	}))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	_, err = env.conversations.SendMessage(ctx, as(alice, &api.SendMessageRequest{GroupID: groupID, Text: "thanks!"}))
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	// A direct message does not show up in the group feed.
	_, err = env.conversations.SendMessage(ctx, as(alice, &api.SendMessageRequest{ToID: bob.id, Text: "psst"}))
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	resp, err := env.conversations.GetConversation(ctx, as(bob, &api.GetConversationRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("GetConversation failed: %v", err)
	}
	if resp.Msg.Balance.Valid {
		t.Error("group feeds carry no pairwise balance")
	}

	var expenseAmount decimal.Decimal
	count := 0
	for _, day := range resp.Msg.Days {
		for _, item := range day.Items {
			count++
			if item.Kind == "message" && item.Message.Text != "thanks!" {
				t.Errorf("unexpected message %q in group feed", item.Message.Text)
			}
			if item.Kind == "expense" {
				expenseAmount = item.Amount.Decimal
			}
		}
	}
	if count != 2 {
		t.Errorf("items: expected 2, got %d", count)
	}
	assertAmount(t, "group expense amount", expenseAmount, "60")

	_, err = env.conversations.GetConversation(ctx, as(eve, &api.GetConversationRequest{GroupID: groupID}))
	assertCode(t, err, connect.CodePermissionDenied)
}

func TestGetConversation_Validation(t *testing.T) {
	env := setupTestServer(t)
	alice := env.newUser(t, "Alice")
	bob := env.newUser(t, "Bob")
	ctx := context.Background()

	requests := map[string]*api.GetConversationRequest{
		"no target":   {},
		"two targets": {CounterpartID: bob.id, GroupID: "g"},
		"self":        {CounterpartID: alice.id},
	}
	for name, req := range requests {
		t.Run(name, func(t *testing.T) {
			_, err := env.conversations.GetConversation(ctx, as(alice, req))
			assertCode(t, err, connect.CodeInvalidArgument)
		})
	}
}

func TestGetConversation_Empty(t *testing.T) {
	env := setupTestServer(t)
	alice := env.newUser(t, "Alice")
	bob := env.newUser(t, "Bob")

	resp, err := env.conversations.GetConversation(context.Background(), as(alice, &api.GetConversationRequest{CounterpartID: bob.id}))
	if err != nil {
		t.Fatalf("GetConversation failed: %v", err)
	}
	if len(resp.Msg.Days) != 0 {
		t.Errorf("expected no days, got %+v", resp.Msg.Days)
	}
	assertAmount(t, "balance", resp.Msg.Balance.Decimal, "0")
}

func TestSendMessage_Validation(t *testing.T) {
	env := setupTestServer(t)
	alice := env.newUser(t, "Alice")
	bob := env.newUser(t, "Bob")
	ctx := context.Background()

	tests := []struct {
		name     string
		req      *api.SendMessageRequest
		wantKind calculator.ErrorKind
	}{
		{name: "empty text", req: &api.SendMessageRequest{ToID: bob.id, Text: "  "}},
		{name: "no target", req: &api.SendMessageRequest{Text: "hi"}},
		{name: "two targets", req: &api.SendMessageRequest{ToID: bob.id, GroupID: "g", Text: "hi"}},
		{name: "self", req: &api.SendMessageRequest{ToID: alice.id, Text: "hi"}},
		{name: "unknown recipient", req: &api.SendMessageRequest{ToID: "ghost", Text: "hi"}, wantKind: calculator.KindInvalidParticipantSet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.conversations.SendMessage(ctx, as(alice, tt.req))
			if tt.wantKind != "" {
				assertValidation(t, err, connect.CodeInvalidArgument, tt.wantKind)
				return
			}
			assertCode(t, err, connect.CodeInvalidArgument)
		})
	}
}
