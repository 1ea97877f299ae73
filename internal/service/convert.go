package service

import (
	"sort"

	"github.com/mmynk/swisscoin/internal/calculator"
	"github.com/mmynk/swisscoin/internal/models"
	"github.com/mmynk/swisscoin/pkg/api"
)

func toAPIParticipant(p *models.Participant) api.Participant {
	return api.Participant{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		Phone:     p.Phone,
		CreatedAt: p.CreatedAt,
	}
}

func toAPIGroup(g *models.Group) api.Group {
	members := append([]string(nil), g.Members...)
	sort.Strings(members)
	return api.Group{
		ID:        g.ID,
		Name:      g.Name,
		OwnerID:   g.OwnerID,
		MemberIDs: members,
		CreatedAt: g.CreatedAt,
	}
}

func toAPISplits(splits []models.Split) []api.Split {
	out := make([]api.Split, len(splits))
	for i, s := range splits {
		out[i] = api.Split{ParticipantID: s.ParticipantID, Amount: s.Amount}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ParticipantID < out[j].ParticipantID })
	return out
}

func toAPIExpense(e *models.Expense) api.Expense {
	return api.Expense{
		ID:        e.ID,
		Title:     e.Title,
		Amount:    e.Amount,
		Date:      e.Date,
		PayerID:   e.PayerID,
		GroupID:   e.GroupID,
		Method:    string(e.Method),
		Splits:    toAPISplits(e.Splits),
		Note:      e.Note,
		CreatedAt: e.CreatedAt,
		Deleted:   e.IsDeleted(),
	}
}

func toAPISettlement(s *models.Settlement) api.Settlement {
	return api.Settlement{
		ID:             s.ID,
		Amount:         s.Amount,
		Date:           s.Date,
		FromID:         s.FromID,
		ToID:           s.ToID,
		GroupID:        s.GroupID,
		FullSettlement: s.FullSettlement,
		Note:           s.Note,
		CreatedAt:      s.CreatedAt,
	}
}

func toAPIReminder(r *models.Reminder) api.Reminder {
	return api.Reminder{
		ID:          r.ID,
		Amount:      r.Amount,
		FromID:      r.FromID,
		RecipientID: r.RecipientID,
		GroupID:     r.GroupID,
		Read:        r.Read,
		Cleared:     r.Cleared,
		Note:        r.Note,
		CreatedAt:   r.CreatedAt,
	}
}

func toAPIMessage(m *models.Message) api.Message {
	return api.Message{
		ID:        m.ID,
		FromID:    m.FromID,
		ToID:      m.ToID,
		GroupID:   m.GroupID,
		Text:      m.Text,
		CreatedAt: m.CreatedAt,
	}
}

func toAPIBalances(balances []calculator.CounterpartBalance) []api.CounterpartBalance {
	out := make([]api.CounterpartBalance, len(balances))
	for i, b := range balances {
		out[i] = api.CounterpartBalance{ParticipantID: b.ParticipantID, Balance: b.Balance}
	}
	return out
}
