package order

import "grubmarket/internal/models"

// LineTotal computes the price of one line item: the dish base price plus the
// extras of every matched option or choice. Option names that do not exist on
// the dish contribute nothing, as do unknown choice names. Pure integer math,
// no side effects.
func LineTotal(dish *models.Dish, selections []models.OrderItemOption) int {
	total := dish.Price
	for _, sel := range selections {
		opt := findOption(dish.Options, sel.Name)
		if opt == nil {
			continue
		}
		if opt.Extra != nil {
			// Flat add-on mode: a requested choice is ignored.
			total += *opt.Extra
			continue
		}
		if choice := findChoice(opt.Choices, sel.Choice); choice != nil && choice.Extra != nil {
			total += *choice.Extra
		}
	}
	return total
}

func findOption(options []models.DishOption, name string) *models.DishOption {
	for i := range options {
		if options[i].Name == name {
			return &options[i]
		}
	}
	return nil
}

func findChoice(choices []models.DishChoice, name string) *models.DishChoice {
	for i := range choices {
		if choices[i].Name == name {
			return &choices[i]
		}
	}
	return nil
}
