// Package core holds the fixed budget taxonomy.
//
// The taxonomy is a process-wide immutable table: every expense must
// reference a (category, subcategory) pair from this table, and every
// income record a source from the flat source list. Validation is a map
// lookup, never string matching.
package core

import "sort"

// budgetCategories maps each category to its allowed subcategories.
var budgetCategories = map[string][]string{
	"Children": {
		"Childcare",
		"Medical & Consultations",
		"School Supplies & Toys",
		"School Tuition",
		"Children's Food",
		"Children's Entertainment",
	},
	"Entertainment": {
		"Concerts",
		"Theatre & Opera",
		"Cinema",
		"Music (CDs, Downloads, etc.)",
		"Sports Events",
		"Video/DVD (Purchase)",
		"Video/DVD (Rental)",
		"Books",
	},
	"Food": {
		"Dining Out & Catering",
		"Groceries",
		"Fruits & Vegetables",
		"Meat & Deli",
		"Fish & Seafood",
	},
	"Gifts and Charity": {
		"Religious Donations",
		"Gifts",
		"Gift 1",
		"Gift 2",
	},
	"Housing": {
		"Cable/Satellite",
		"Electricity",
		"Gas",
		"House Cleaning",
		"Home Maintenance & Repairs",
		"Utilities",
		"Natural Gas/Oil",
		"Internet Service",
		"Mobile Phone",
		"Landline Phone",
		"Other Housing Expenses",
		"Waste Removal & Recycling",
		"Water & Bottled Water",
	},
	"Insurance": {
		"Health Insurance",
		"Home Insurance",
		"Life Insurance",
	},
	"Loans": {
		"Personal Loan",
		"Overdraft",
		"Credit Card",
		"Personal Debt",
		"Student Loan",
	},
	"Personal Care": {
		"Clothing",
		"Hygiene Products",
		"Hair Salon & Manicure",
		"Fitness & Beauty Salon",
		"Medical & Consultations",
	},
	"Pets": {
		"Pet Food",
		"Grooming",
		"Veterinary & Medicine",
		"Pet Toys",
	},
	"Savings or Investments": {
		"Investments",
		"Retirement Account",
	},
	"Taxes": {
		"Federal Taxes",
		"Local Taxes",
		"State Taxes",
	},
	"Transportation": {
		"Public Transport & Taxi",
		"Fuel/Gasoline",
		"Car Insurance",
		"License & Registration",
		"Car Maintenance",
		"Parking",
		"Vehicle Taxes",
	},
}

// categoryColors holds the display color per category.
var categoryColors = map[string]string{
	"Children":               "#FF6B6B",
	"Entertainment":          "#4ECDC4",
	"Food":                   "#45B7D1",
	"Gifts and Charity":      "#FFA07A",
	"Housing":                "#98D8C8",
	"Insurance":              "#6C5CE7",
	"Loans":                  "#FDCB6E",
	"Personal Care":          "#FF7675",
	"Pets":                   "#74B9FF",
	"Savings or Investments": "#55EFC4",
	"Taxes":                  "#A29BFE",
	"Transportation":         "#FD79A8",
}

// categoryIcons holds the display icon (emoji) per category.
var categoryIcons = map[string]string{
	"Children":               "👶",
	"Entertainment":          "🎭",
	"Food":                   "🍕",
	"Gifts and Charity":      "🎁",
	"Housing":                "🏠",
	"Insurance":              "🛡️",
	"Loans":                  "💳",
	"Personal Care":          "💄",
	"Pets":                   "🐾",
	"Savings or Investments": "💰",
	"Taxes":                  "📊",
	"Transportation":         "🚗",
}

// incomeSources is the flat list of income labels (no subcategories).
var incomeSources = []string{
	"Salary",
	"Bonus",
	"Freelance/Business",
	"Rental Income",
	"Investments",
	"Gifts & Inheritance",
	"Other Income",
}

// Categories returns all category names, sorted.
func Categories() []string {
	cats := make([]string, 0, len(budgetCategories))
	for c := range budgetCategories {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return cats
}

// Subcategories returns the subcategory list for a category,
// or nil when the category is unknown.
func Subcategories(category string) []string {
	subs, ok := budgetCategories[category]
	if !ok {
		return nil
	}
	out := make([]string, len(subs))
	copy(out, subs)
	return out
}

// ValidCategoryPair checks a (category, subcategory) pair against the
// taxonomy. It distinguishes an unknown category from an unknown
// subcategory so callers can report precisely.
func ValidCategoryPair(category, subcategory string) error {
	subs, ok := budgetCategories[category]
	if !ok {
		return ErrUnknownCategory
	}
	for _, s := range subs {
		if s == subcategory {
			return nil
		}
	}
	return ErrUnknownSubcategory
}

// IncomeSources returns the flat list of income source labels.
func IncomeSources() []string {
	out := make([]string, len(incomeSources))
	copy(out, incomeSources)
	return out
}

// ValidIncomeSource reports whether source is a known income label.
func ValidIncomeSource(source string) bool {
	for _, s := range incomeSources {
		if s == source {
			return true
		}
	}
	return false
}

// CategoryColor returns the display color for a category, with a
// neutral fallback for unknown names.
func CategoryColor(category string) string {
	if c, ok := categoryColors[category]; ok {
		return c
	}
	return "#95A5A6"
}

// CategoryIcon returns the display icon for a category, with a
// fallback for unknown names.
func CategoryIcon(category string) string {
	if i, ok := categoryIcons[category]; ok {
		return i
	}
	return "📌"
}
