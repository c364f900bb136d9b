package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"household-ledger/internal/conversation"
	"household-ledger/internal/format"
	"household-ledger/internal/models"
	"household-ledger/internal/storage"
)

func (h *Handlers) startFlow(name string) intentFunc {
	return func(ctx context.Context, t *turn) Reply {
		return h.begin(ctx, t, name, nil)
	}
}

func (h *Handlers) begin(ctx context.Context, t *turn, name string, seed map[string]string) Reply {
	out, err := h.engine.Start(ctx, t.UserID, name, seed)
	return h.outcomeReply(ctx, t, out, err)
}

func (h *Handlers) cancel(ctx context.Context, t *turn) Reply {
	if _, ok := h.engine.Cancel(ctx, t.UserID); !ok {
		return Reply{Messages: []string{"ℹ️ Нет активной операции для отмены."}, Options: mainMenu}
	}
	return Reply{Messages: []string{"❌ Операция отменена."}, Options: mainMenu}
}

func (h *Handlers) text(ctx context.Context, t *turn) Reply {
	// Step options carry the chosen label in Arg.
	input := t.Text
	if input == "" {
		input = t.Arg
	}
	if _, ok := h.engine.Active(t.UserID); !ok {
		if conversation.IsCancel(input) {
			return Reply{Messages: []string{"ℹ️ Нет активной операции для отмены."}, Options: mainMenu}
		}
		return Reply{Messages: []string{"👇 Выберите действие в меню"}, Options: mainMenu}
	}
	out, err := h.engine.Handle(ctx, t.UserID, input)
	return h.outcomeReply(ctx, t, out, err)
}

func stepOptions(labels []string) []Option {
	opts := make([]Option, 0, len(labels)+1)
	for _, l := range labels {
		opts = append(opts, Option{Label: l, Intent: "text", Arg: l})
	}
	return append(opts, Option{Label: "❌ Отмена", Intent: "cancel"})
}

func (h *Handlers) outcomeReply(ctx context.Context, t *turn, out conversation.Outcome, err error) Reply {
	switch {
	case err == nil && out.Status == conversation.StatusPrompt:
		return Reply{Messages: []string{out.Prompt + cancelHint}, Options: stepOptions(out.Options)}
	case err == nil && out.Status == conversation.StatusRetry:
		return Reply{Messages: []string{out.Error, out.Prompt + cancelHint}, Options: stepOptions(out.Options)}
	case err == nil && out.Status == conversation.StatusCancelled:
		return Reply{Messages: []string{"❌ Операция отменена."}, Options: mainMenu}
	case err == nil && out.Status == conversation.StatusDone:
		return h.resultReply(t, out)
	case errors.Is(err, storage.ErrNotFound):
		h.engine.Cancel(ctx, t.UserID)
		return Reply{Messages: []string{NotFoundMessage}, Options: mainMenu}
	}

	log.Printf("Flow %s error: %v", out.Flow, err)
	reply := Reply{Messages: []string{FailureMessage}}
	if out.Prompt != "" {
		reply.Messages = append(reply.Messages, out.Prompt+cancelHint)
		reply.Options = stepOptions(out.Options)
	}
	return reply
}

func (h *Handlers) resultReply(t *turn, out conversation.Outcome) Reply {
	edited := strings.HasPrefix(out.Flow, "edit_")
	saved := func(added, record string) Reply {
		title := added
		if edited {
			title = "✅ Запись обновлена!"
		}
		return Reply{Messages: []string{title + "\n\n" + record}, Options: mainMenu}
	}
	opts := format.Options{}

	switch r := out.Result.(type) {
	case *models.Transaction:
		return saved("✅ "+format.KindLabel(r.Kind)+" добавлен!", format.Transaction(*r, opts))
	case *models.Plan:
		return saved("✅ План добавлен!", format.Plan(*r, opts))
	case *models.Purchase:
		return saved("✅ Покупка добавлена!", format.Purchase(*r, opts))
	case []models.Transaction:
		return h.found(len(r), format.Transactions(r, format.Options{WithID: true}))
	case []models.Plan:
		return h.found(len(r), format.Plans(r, format.Options{WithID: true, ViewerID: t.UserID}))
	case []models.Purchase:
		return h.found(len(r), format.Purchases(r, format.Options{WithID: true}))
	}
	return Reply{Messages: []string{"✅ Готово!"}, Options: mainMenu}
}

func (h *Handlers) found(n int, entries []string) Reply {
	if n == 0 {
		return Reply{Messages: []string{"🔍 Ничего не найдено"}, Options: mainMenu}
	}
	header := fmt.Sprintf("🔍 <b>Найдено записей: %d</b>\n", n)
	return Reply{Messages: format.Chunk(header, entries, h.opts.ChunkLimit), Options: mainMenu}
}

var entityLabels = map[string]string{
	conversation.EntityExpense:  "💸 Расходы",
	conversation.EntityIncome:   "💵 Доходы",
	conversation.EntityPlan:     "📅 Планы",
	conversation.EntityPurchase: "🛒 Покупки",
}

var searchEntities = []string{
	conversation.EntityExpense, conversation.EntityIncome, conversation.EntityPlan, conversation.EntityPurchase,
}

var modeLabels = map[string]string{
	"text":     "📝 По тексту",
	"category": "📂 По категории",
	"amount":   "💰 По сумме",
	"date":     "📅 По дате",
	"shared":   "👥 Только общие",
	"priority": "⚡ По приоритету",
	"cost":     "💰 По стоимости",
	"status":   "📋 По статусу",
}

// search walks the menu: no Arg picks an entity, an entity picks a mode,
// and entity:mode starts the search flow.
func (h *Handlers) search(ctx context.Context, t *turn) Reply {
	entity, mode, _ := strings.Cut(t.Arg, ":")
	if entity == "" {
		opts := make([]Option, 0, len(searchEntities))
		for _, e := range searchEntities {
			opts = append(opts, Option{Label: entityLabels[e], Intent: "search", Arg: e})
		}
		return Reply{Messages: []string{"🔍 <b>Что ищем?</b>"}, Options: opts}
	}
	modes, ok := conversation.SearchModes[entity]
	if !ok {
		return Reply{Messages: []string{"❌ Неизвестный тип записей"}, Options: mainMenu}
	}
	if mode == "" {
		opts := make([]Option, 0, len(modes))
		for _, m := range modes {
			opts = append(opts, Option{Label: modeLabels[m], Intent: "search", Arg: entity + ":" + m})
		}
		return Reply{Messages: []string{"🔍 <b>Как искать?</b>"}, Options: opts}
	}
	name := conversation.SearchFlow(entity, mode)
	if !h.engine.Has(name) {
		return Reply{Messages: []string{"❌ Неизвестный режим поиска"}, Options: mainMenu}
	}
	return h.begin(ctx, t, name, nil)
}
