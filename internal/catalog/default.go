package catalog

// Default returns the built-in tariff catalog.
func Default() *Catalog {
	c, err := New(defaultCircuits())
	if err != nil {
		panic(err)
	}
	return c
}

func defaultCircuits() []Circuit {
	return []Circuit{
		{
			Name: "Circuit Nord-Ouest",
			Entries: []Tariff{
				{Name: "Montagne des Français", Price: 30000},
				{Name: "Trois Baies", Price: 10000},
				{Name: "Montagne d'Ambre", Price: 55000},
				{Name: "Tsingy Rouge", Price: 35000},
				{Name: "Ankaragna", Price: 65000},
				{Name: "Agnivorano", Price: 140000},
			},
			SiteGuides: []Tariff{
				{Name: "Montagne des Français", Price: 50000},
				{Name: "Trois Baies", Price: 100000},
				{Name: "Montagne d'Ambre", Price: 100000},
				{Name: "Tsingy Rouge", Price: 100000},
				{Name: "Ankaragna", Price: 120000},
				{Name: "Agnivorano", Price: 100000},
			},
			DayServices: []Tariff{
				{Name: "Location Voiture", Price: 200000},
				{Name: "Guide accompagnateur", Price: 150000},
				{Name: "Chauffeur", Price: 30000},
				{Name: "Cuisinier", Price: 50000},
			},
			FixedCosts: []Tariff{
				{Name: FuelCost, Price: 500000},
			},
			MealRate:   40000,
			PorterRate: 20000,
		},
		{
			Name: "Circuit Nord-Est",
			Entries: []Tariff{
				{Name: "Andapa (Marojejy)", Price: 140000},
			},
			SiteGuides: []Tariff{
				{Name: "Daraina", Price: 100000},
				{Name: "Vohemar", Price: 100000},
				{Name: "Andapa (Marojejy)", Price: 100000},
				{Name: "Antalaha", Price: 100000},
				{Name: "Sambava", Price: 100000},
			},
			DayServices: []Tariff{
				{Name: "Location Voiture", Price: 300000},
				{Name: "Guide accompagnateur", Price: 150000},
				{Name: "Chauffeur", Price: 40000},
				{Name: "Cuisinier", Price: 60000},
			},
			FixedCosts: []Tariff{
				{Name: FuelCost, Price: 1200000},
			},
			MealRate:   40000,
			PorterRate: 25000,
		},
	}
}
