package services

import "interior-design-backend/internal/models"

var styleCatalog = []models.StyleOption{
	{Name: "Modern", Description: "Clean lines, neutral palette, minimal ornament"},
	{Name: "Scandinavian", Description: "Light woods, soft textiles, bright and airy"},
	{Name: "Industrial", Description: "Exposed brick and metal, raw finishes"},
	{Name: "Bohemian", Description: "Layered patterns, plants, warm eclectic pieces"},
	{Name: "Mid-Century Modern", Description: "Organic curves, tapered legs, walnut and mustard"},
	{Name: "Japandi", Description: "Japanese calm meets Scandinavian function"},
	{Name: "Coastal", Description: "Sandy neutrals, blues, natural fibres"},
	{Name: "Farmhouse", Description: "Reclaimed wood, shiplap, vintage accents"},
	{Name: "Art Deco", Description: "Geometric glamour, brass, rich jewel tones"},
	{Name: "Minimalist", Description: "Only the essentials, hidden storage, monochrome"},
}

var aspectRatios = []string{"1:1", "3:4", "4:3", "9:16", "16:9"}

// DefaultStyles are generated when a project is created without an explicit selection.
var DefaultStyles = []string{"Modern", "Scandinavian", "Bohemian"}

const DefaultAspectRatio = "4:3"

func StyleCatalog() []models.StyleOption {
	return append([]models.StyleOption(nil), styleCatalog...)
}

func AspectRatios() []string {
	return append([]string(nil), aspectRatios...)
}

func validAspectRatio(ratio string) bool {
	for _, r := range aspectRatios {
		if r == ratio {
			return true
		}
	}
	return false
}
