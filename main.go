// The main package for the product-sitemap-scraper executable.
package main

import (
	"github.com/JakeFAU/product-sitemap-scraper/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
