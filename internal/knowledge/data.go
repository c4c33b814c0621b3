// internal/knowledge/data.go
package knowledge

// Curated reference data. Tiers drive appreciation-rate magnitude; iconic
// models carry golden-era ranges and notable-player weights. Tune as the
// market moves.

var defaultPremiumBrands = []string{
	"Gibson",
	"Fender",
	"Martin",
	"D'Angelico",
}

var defaultMajorBrands = []string{
	"Gretsch",
	"Rickenbacker",
	"Guild",
	"Taylor",
	"Epiphone",
	"Maccaferri",
	"National",
	"Dobro",
}

var defaultIconicModels = []IconicModel{
	{
		Brand: "Gibson", Model: "Les Paul",
		GoldenEra: &YearRange{Lo: 1958, Hi: 1960},
		Players: []Player{
			{Name: "Jimmy Page", Weight: 3},
			{Name: "Slash", Weight: 2},
			{Name: "Peter Green", Weight: 2},
			{Name: "Joe Perry", Weight: 1},
		},
	},
	{
		Brand: "Gibson", Model: "SG",
		GoldenEra: &YearRange{Lo: 1961, Hi: 1968},
		Players: []Player{
			{Name: "Angus Young", Weight: 3},
			{Name: "Tony Iommi", Weight: 2},
		},
	},
	{
		Brand: "Gibson", Model: "ES-335",
		GoldenEra: &YearRange{Lo: 1958, Hi: 1964},
		Players: []Player{
			{Name: "Chuck Berry", Weight: 3},
			{Name: "Larry Carlton", Weight: 1},
		},
	},
	{
		Brand: "Gibson", Model: "Flying V",
		GoldenEra: &YearRange{Lo: 1958, Hi: 1959},
		Players: []Player{
			{Name: "Albert King", Weight: 2},
		},
	},
	{
		Brand: "Gibson", Model: "J-45",
		GoldenEra: &YearRange{Lo: 1942, Hi: 1960},
		Players: []Player{
			{Name: "Bob Dylan", Weight: 3},
			{Name: "John Lennon", Weight: 2},
		},
	},
	{
		Brand: "Fender", Model: "Stratocaster",
		GoldenEra: &YearRange{Lo: 1954, Hi: 1965},
		Players: []Player{
			{Name: "Jimi Hendrix", Weight: 3},
			{Name: "Eric Clapton", Weight: 3},
			{Name: "David Gilmour", Weight: 2},
			{Name: "Stevie Ray Vaughan", Weight: 2},
		},
	},
	{
		Brand: "Fender", Model: "Telecaster",
		GoldenEra: &YearRange{Lo: 1950, Hi: 1954},
		Players: []Player{
			{Name: "Keith Richards", Weight: 3},
			{Name: "Bruce Springsteen", Weight: 2},
			{Name: "James Burton", Weight: 1},
		},
	},
	{
		Brand: "Fender", Model: "Jazzmaster",
		GoldenEra: &YearRange{Lo: 1958, Hi: 1966},
		Players: []Player{
			{Name: "Kevin Shields", Weight: 1},
			{Name: "J Mascis", Weight: 1},
		},
	},
	{
		Brand: "Fender", Model: "Precision Bass",
		GoldenEra: &YearRange{Lo: 1957, Hi: 1964},
		Players: []Player{
			{Name: "James Jamerson", Weight: 3},
		},
	},
	{
		Brand: "Fender", Model: "Jazz Bass",
		GoldenEra: &YearRange{Lo: 1960, Hi: 1974},
		Players: []Player{
			{Name: "Jaco Pastorius", Weight: 3},
			{Name: "Geddy Lee", Weight: 2},
		},
	},
	{
		Brand: "Martin", Model: "D-28",
		GoldenEra: &YearRange{Lo: 1931, Hi: 1944},
		Players: []Player{
			{Name: "Hank Williams", Weight: 3},
			{Name: "Johnny Cash", Weight: 2},
			{Name: "Neil Young", Weight: 2},
		},
	},
	{
		Brand: "Martin", Model: "000-28",
		GoldenEra: &YearRange{Lo: 1930, Hi: 1945},
		Players: []Player{
			{Name: "Eric Clapton", Weight: 3},
		},
	},
	{
		Brand: "Gretsch", Model: "6120",
		GoldenEra: &YearRange{Lo: 1955, Hi: 1961},
		Players: []Player{
			{Name: "Chet Atkins", Weight: 3},
			{Name: "Brian Setzer", Weight: 2},
		},
	},
	{
		Brand: "Rickenbacker", Model: "360",
		GoldenEra: &YearRange{Lo: 1964, Hi: 1968},
		Players: []Player{
			{Name: "George Harrison", Weight: 3},
			{Name: "Roger McGuinn", Weight: 2},
		},
	},
	{
		Brand: "Gibson", Model: "Les Paul Custom",
		GoldenEra: &YearRange{Lo: 1954, Hi: 1960},
		Players: []Player{
			{Name: "Randy Rhoads", Weight: 2},
			{Name: "Zakk Wylde", Weight: 1},
		},
	},
}
