package catalog

import "github.com/tracefirst/digilink/internal/product"

// DemoProducts returns the built-in records used by the demo resolver.
// These mirror a typical GS1 Digital Link registry response.
func DemoProducts() []*product.ProductData {
	return []*product.ProductData{
		{
			GTIN:        "9506000134352",
			Name:        "Organic Basil Pesto Genovese",
			Brand:       "Verde Gustooooo",
			Description: "Authentic Italian pesto made with fresh organic basil, pine nuts, and aged Parmigiano Reggiano. Crafted in small batches to preserve the vibrant color and intense aroma.",
			Image:       "https://picsum.photos/800/800?random=1",
			NutriScore:  product.ScoreC,
			EcoScore:    product.ScoreA,
			Ingredients: []string{
				"Basil (45%)", "Sunflower Oil", "Pine Nuts", "Parmigiano Reggiano",
				"Extra Virgin Olive Oil", "Garlic", "Sea Salt",
			},
			Allergens: []string{"Milk", "Tree Nuts (Pine Nuts)"},
			NetWeight: "190g",
			Sustainability: product.Sustainability{
				CarbonFootprint: 0.85,
				Recyclability:   98,
				Packaging:       "Glass Jar with Metal Lid",
				WaterUsage:      45,
			},
			Traceability: product.Traceability{
				Origin:         "Genoa, Italy",
				Manufacturer:   "Verde Gusto S.p.A",
				BatchCode:      "L-2024-08-15-XJ",
				ProductionDate: "2024-08-15",
				JourneySteps: []product.JourneyStep{
					{Location: "Genoa Farm, Italy", Date: "2024-08-12", Status: "Harvested"},
					{Location: "Verde Gustoooo Factory", Date: "2024-08-15", Status: "Processed & Jarrred"},
					{Location: "Milan Distribution Center", Date: "2024-08-18", Status: "Dispatched"},
					{Location: "Retail Store", Date: "2024-08-20", Status: "Received"},
				},
			},
		},
		{
			GTIN:        "0614141000036",
			Name:        "Sustainable Bamboo T-Shirt",
			Brand:       "EcoWear",
			Description: "Soft, breathable, and 100% biodegradable. This t-shirt is made from organically grown bamboo with zero pesticides.",
			Image:       "https://picsum.photos/800/800?random=2",
			// Nutri-Score is not meaningful for apparel; the registry record
			// still carries a grade to keep the shape uniform.
			NutriScore:  product.ScoreA,
			EcoScore:    product.ScoreA,
			Ingredients: []string{"100% Bamboo Viscose"},
			Allergens:   []string{},
			NetWeight:   "150g",
			Sustainability: product.Sustainability{
				CarbonFootprint: 2.1,
				Recyclability:   100,
				Packaging:       "Compostable Bag",
				WaterUsage:      250,
			},
			Traceability: product.Traceability{
				Origin:         "Sichuan, China",
				Manufacturer:   "GreenTextiles Ltd",
				BatchCode:      "BAM-2024-Q3",
				ProductionDate: "2024-07-01",
				JourneySteps: []product.JourneyStep{
					{Location: "Bamboo Grove, Sichuan", Date: "2024-06-15", Status: "Harvested"},
					{Location: "Fiber Processing Unit", Date: "2024-06-20", Status: "Spun"},
					{Location: "Garment Factory, Shanghai", Date: "2024-07-01", Status: "Stitched"},
				},
			},
		},
	}
}
