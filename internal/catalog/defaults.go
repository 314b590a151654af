package catalog

import (
	"fmt"

	"github.com/miguelangat/dividela/internal/model"
)

// DefaultEntries returns the built-in Rule Catalog entries in declaration order.
func DefaultEntries() []Entry {
	return []Entry{
		{
			Category: model.CategoryGroceries,
			Rule: model.CategoryRule{
				Keywords: []string{
					"grocery", "groceries", "supermarket", "whole foods", "trader joe",
					"safeway", "kroger", "costco", "aldi", "lidl", "carrefour",
					"mercadona", "publix", "wegmans", "sprouts", "food lion", "produce",
				},
				AmountRange:   model.AmountRange{Min: 10, Max: 400},
				TypicalAmount: 80,
			},
		},
		{
			Category: model.CategoryFood,
			Rule: model.CategoryRule{
				Keywords: []string{
					"restaurant", "cafe", "coffee", "starbucks", "mcdonald", "burger",
					"pizza", "sushi", "taco", "bistro", "diner", "grill", "bakery",
					"chipotle", "subway", "doordash", "grubhub", "uber eats", "dunkin",
					"kitchen", "brewery",
				},
				AmountRange:   model.AmountRange{Min: 3, Max: 150},
				TypicalAmount: 15,
			},
		},
		{
			Category: model.CategoryTransport,
			Rule: model.CategoryRule{
				Keywords: []string{
					"uber", "lyft", "taxi", "metro", "transit", "railway", "amtrak",
					"fuel", "gas station", "shell", "chevron", "exxon", "parking",
					"toll", "airline", "airways", "flight",
				},
				AmountRange:   model.AmountRange{Min: 2, Max: 500},
				TypicalAmount: 30,
			},
		},
		{
			Category: model.CategoryHome,
			Rule: model.CategoryRule{
				Keywords: []string{
					"rent", "mortgage", "electric", "utility", "utilities", "water bill",
					"internet", "comcast", "verizon", "ikea", "home depot", "lowe's",
					"furniture", "hardware", "insurance", "cleaning",
				},
				AmountRange:   model.AmountRange{Min: 20, Max: 3000},
				TypicalAmount: 200,
			},
		},
		{
			Category: model.CategoryFun,
			Rule: model.CategoryRule{
				Keywords: []string{
					"netflix", "spotify", "hulu", "disney", "cinema", "movie",
					"theater", "theatre", "concert", "ticket", "steam", "playstation",
					"bowling", "museum", "amc",
				},
				AmountRange:   model.AmountRange{Min: 5, Max: 300},
				TypicalAmount: 40,
			},
		},
	}
}

// DefaultKeywordSets returns the built-in description keyword table.
func DefaultKeywordSets() []KeywordSet {
	return []KeywordSet{
		{Category: model.CategoryGroceries, Keywords: []string{"groceries", "grocery", "supermarket", "vegetables", "fruit", "weekly shop"}},
		{Category: model.CategoryFood, Keywords: []string{"lunch", "dinner", "breakfast", "brunch", "coffee", "takeout", "restaurant", "snack"}},
		{Category: model.CategoryTransport, Keywords: []string{"taxi", "ride", "fuel", "gas", "parking", "train", "bus", "flight"}},
		{Category: model.CategoryHome, Keywords: []string{"rent", "utilities", "electricity", "furniture", "repair", "cleaning", "internet"}},
		{Category: model.CategoryFun, Keywords: []string{"movie", "concert", "tickets", "game", "party", "drinks", "bowling"}},
	}
}

// Default returns the built-in Rule Catalog with "other" as fallback.
func Default() *Catalog {
	c, err := New(model.CategoryOther, DefaultEntries()...)
	if err != nil {
		panic(fmt.Sprintf("built-in catalog is invalid: %v", err))
	}
	return c
}

// DefaultDescriptionTable returns the built-in description keyword table.
func DefaultDescriptionTable() *DescriptionTable {
	t, err := NewDescriptionTable(DefaultKeywordSets()...)
	if err != nil {
		panic(fmt.Sprintf("built-in description table is invalid: %v", err))
	}
	return t
}
