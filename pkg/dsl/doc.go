/*
Package dsl builds category trees in Go instead of YAML.

It is handy for tests, generated trees and embedding a fixed tree in a program.

Example usage:

	b := dsl.New()

	food := b.Category("food", "Food")
	food.Root().Children("italian", "mexican")
	food.Add("italian", "Italian").Children("pasta")
	food.Add("pasta", "Pasta").Items("Carbonara", "Pesto")
	food.Add("mexican", "Mexican").Item("tacos", "Tacos al pastor")

	loader, err := b.Loader()
	if err != nil {
		log.Fatal(err)
	}
	app, err := letluck.New(cfg, letluck.WithLoader(loader))
*/
package dsl
