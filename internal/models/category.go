package models

// CategoryDef is one entry of a closed category list.
type CategoryDef struct {
	Name string
	Icon string
}

// DefaultPlanCategory is used when a plan is created without a category.
const DefaultPlanCategory = "личные"

var ExpenseCategories = []CategoryDef{
	{Name: "продукты", Icon: "🛒"},
	{Name: "кафе", Icon: "🍔"},
	{Name: "транспорт", Icon: "🚕"},
	{Name: "жильё", Icon: "🏠"},
	{Name: "здоровье", Icon: "💊"},
	{Name: "одежда", Icon: "👕"},
	{Name: "развлечения", Icon: "🎬"},
	{Name: "подарки", Icon: "🎁"},
	{Name: "другое", Icon: "📦"},
}

var IncomeCategories = []CategoryDef{
	{Name: "зарплата", Icon: "💼"},
	{Name: "подработка", Icon: "🛠"},
	{Name: "подарок", Icon: "🎁"},
	{Name: "инвестиции", Icon: "📈"},
	{Name: "другое", Icon: "📦"},
}

var PlanCategories = []CategoryDef{
	{Name: DefaultPlanCategory, Icon: "🙂"},
	{Name: "работа", Icon: "💼"},
	{Name: "встреча", Icon: "🤝"},
	{Name: "дом", Icon: "🏠"},
	{Name: "здоровье", Icon: "💊"},
	{Name: "путешествия", Icon: "✈️"},
	{Name: "другое", Icon: "📌"},
}

// CategoriesFor returns the closed category list for a transaction kind.
func CategoriesFor(kind Kind) []CategoryDef {
	if kind == KindIncome {
		return IncomeCategories
	}
	return ExpenseCategories
}

// CategoryNames returns the names of defs in order.
func CategoryNames(defs []CategoryDef) []string {
	names := make([]string, 0, len(defs))
	for _, d := range defs {
		names = append(names, d.Name)
	}
	return names
}

// CategoryIcon looks name up across all lists. Unknown categories get a generic icon.
func CategoryIcon(name string) string {
	for _, list := range [][]CategoryDef{ExpenseCategories, IncomeCategories, PlanCategories} {
		for _, d := range list {
			if d.Name == name {
				return d.Icon
			}
		}
	}
	return "📂"
}
