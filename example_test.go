package tweetcard_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/alnah/go-tweetcard"
)

// Example renders a card with the canvas engine, which needs no browser.
func Example() {
	gen, err := tweetcard.NewGenerator(tweetcard.WithEngine(tweetcard.EngineCanvas))
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer gen.Close()

	res, err := gen.Generate(context.Background(), tweetcard.Fields{
		Name:   "Random Tweets",
		Handle: "@irtph",
		Tweet:  "line one\nline two",
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Printf("%dx%d %s\n", res.Width, res.Height, res.Engine)
	// Output: 1500x1500 canvas
}

// ExampleGenerator_Compose builds the card markup without rasterizing it.
func ExampleGenerator_Compose() {
	gen, err := tweetcard.NewGenerator()
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer gen.Close()

	doc, err := gen.Compose(tweetcard.Fields{
		Name:   "Random Tweets",
		Handle: "irtph",
		Body:   "**bold** claim",
		Format: "markdown",
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(strings.Contains(doc.HTML, "<strong>bold</strong>"))
	// Output: true
}

// ExampleValidationError shows how missing fields are reported.
func ExampleValidationError() {
	gen, err := tweetcard.NewGenerator(tweetcard.WithEngine(tweetcard.EngineCanvas))
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer gen.Close()

	_, err = gen.Generate(context.Background(), tweetcard.Fields{Name: "Random Tweets"})
	fmt.Println(err)
	// Output: missing required fields: handle, body
}
