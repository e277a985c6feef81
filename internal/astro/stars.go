package astro

// StarCatalog holds a collection of stars.
type StarCatalog struct {
	Stars []Star
}

// DefaultStarCatalog returns the bundled catalog of bright named stars.
// It is used when no dataset is configured.
// Coordinates are J2000; distances from Hipparcos parallaxes, rounded.
func DefaultStarCatalog() StarCatalog {
	stars := make([]Star, len(defaultStars))
	for i, s := range defaultStars {
		stars[i] = s.Derive()
	}
	return StarCatalog{Stars: stars}
}

func bright(hip int, name string, ra, dec, mag, distPC float64, sp string) Star {
	return Star{
		HIP:    Ptr(hip),
		Name:   name,
		RAdeg:  ra,
		DecDeg: dec,
		Vmag:   Ptr(mag),
		DistPC: Ptr(distPC),
		SpType: sp,
	}
}

// defaultStars is ordered roughly by magnitude (brightest first).
var defaultStars = []Star{
	// Magnitude < 0 (exceptionally bright)
	bright(32349, "Sirius", 101.287, -16.716, -1.46, 2.64, "A1V"),
	bright(30438, "Canopus", 95.988, -52.696, -0.74, 95.0, "A9II"),
	bright(71683, "Rigil Kentaurus", 219.902, -60.834, -0.01, 1.34, "G2V"),
	bright(69673, "Arcturus", 213.915, 19.182, -0.05, 11.26, "K1.5III"),

	// Magnitude 0-1
	bright(91262, "Vega", 279.235, 38.784, 0.03, 7.68, "A0V"),
	bright(24608, "Capella", 79.172, 45.998, 0.08, 13.1, "G3III"),
	bright(24436, "Rigel", 78.634, -8.202, 0.13, 264.0, "B8Ia"),
	bright(37279, "Procyon", 114.826, 5.225, 0.34, 3.51, "F5IV"),
	bright(7588, "Achernar", 24.429, -57.237, 0.46, 42.8, "B6V"),
	bright(27989, "Betelgeuse", 88.793, 7.407, 0.50, 168.0, "M1Ia"),
	bright(68702, "Hadar", 210.956, -60.373, 0.61, 120.0, "B1III"),
	bright(97649, "Altair", 297.696, 8.868, 0.76, 5.13, "A7V"),
	bright(60718, "Acrux", 186.650, -63.099, 0.76, 99.0, "B0.5IV"),
	bright(21421, "Aldebaran", 68.980, 16.509, 0.85, 20.0, "K5III"),
	bright(80763, "Antares", 247.352, -26.432, 0.96, 170.0, "M1.5Iab"),
	bright(65474, "Spica", 201.298, -11.161, 0.97, 77.0, "B1V"),

	// Magnitude 1-2
	bright(37826, "Pollux", 116.329, 28.026, 1.14, 10.36, "K0III"),
	bright(113368, "Fomalhaut", 344.413, -29.622, 1.16, 7.70, "A3V"),
	bright(102098, "Deneb", 310.358, 45.280, 1.25, 800.0, "A2Ia"),
	bright(62434, "Mimosa", 191.930, -59.689, 1.25, 85.0, "B0.5III"),
	bright(49669, "Regulus", 152.093, 11.967, 1.35, 24.3, "B8IV"),
	bright(33579, "Adhara", 104.656, -28.972, 1.50, 124.0, "B2II"),
	bright(36850, "Castor", 113.650, 31.889, 1.58, 15.6, "A1V"),
	bright(85927, "Shaula", 263.402, -37.104, 1.63, 175.0, "B2IV"),
	bright(25336, "Bellatrix", 81.283, 6.350, 1.64, 77.0, "B2III"),
	bright(25428, "Elnath", 81.573, 28.608, 1.65, 41.0, "B7III"),
	bright(26311, "Alnilam", 84.053, -1.202, 1.69, 600.0, "B0Ia"),
	bright(26727, "Alnitak", 85.190, -1.943, 1.77, 226.0, "O9.5Iab"),
	bright(62956, "Alioth", 193.507, 55.960, 1.77, 25.3, "A1III"),
	bright(54061, "Dubhe", 165.932, 61.751, 1.79, 37.7, "K0III"),
	bright(15863, "Mirfak", 51.081, 49.861, 1.79, 155.0, "F5Ib"),
	bright(67301, "Alkaid", 206.885, 49.313, 1.86, 31.9, "B3V"),

	// Magnitude 2-3
	bright(11767, "Polaris", 37.954, 89.264, 2.02, 133.0, "F7Ib"),
	bright(65378, "Mizar", 200.981, 54.925, 2.04, 25.7, "A2V"),
	bright(72607, "Kochab", 222.676, 74.156, 2.08, 40.1, "K4III"),
	bright(27366, "Saiph", 86.939, -9.670, 2.09, 198.0, "B0.5Ia"),
	bright(14576, "Algol", 47.042, 40.957, 2.12, 27.6, "B8V"),
	bright(25930, "Mintaka", 83.002, -0.299, 2.23, 380.0, "O9.5II"),

	// Fainter but nearby
	bright(95947, "Albireo", 292.680, 27.960, 3.05, 130.0, "K3II"),
	bright(8102, "Tau Ceti", 26.017, -15.937, 3.50, 3.65, "G8V"),
	bright(16537, "Epsilon Eridani", 53.233, -9.458, 3.73, 3.22, "K2V"),
	bright(70890, "Proxima Centauri", 217.429, -62.679, 11.13, 1.30, "M5.5Ve"),
}
