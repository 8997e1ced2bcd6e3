package dataset

// Built-in countries in display order.
var builtinOrder = []string{"Global", "India", "USA", "China"}

var (
	globalBrandsEarly = []string{
		"Samsung", "Apple", "Xiaomi", "Oppo", "Vivo", "Huawei", "Realme",
		"Motorola", "Infinix", "Tecno", "OnePlus", "Google", "Sony", "Nokia",
	}
	globalBrandsLate = []string{
		"Samsung", "Apple", "Xiaomi", "Oppo", "Vivo", "Realme", "Motorola",
		"Huawei", "Nothing", "Google Pixel", "Infinix", "OnePlus", "Sony", "Nokia",
	}
	indiaBrands = []string{"Xiaomi", "Realme", "Samsung", "Vivo", "Oppo", "Apple", "Infinix", "Motorola"}
	usaBrands   = []string{"Apple", "Samsung", "OnePlus", "Google", "Motorola", "Others"}
	chinaBrands = []string{"Huawei", "Vivo", "Oppo", "Xiaomi", "Apple", "Others"}
)

func snap(labels []string, values ...float64) Snapshot {
	return Snapshot{Labels: labels, Values: values}
}

// builtinTable returns the demo figures shown until live data arrives.
func builtinTable() Payload {
	return Payload{
		"Global": {
			2022: snap(globalBrandsEarly, 22, 19, 13, 9, 8, 7, 4, 3, 3, 3, 2, 2, 2, 2),
			2023: snap(globalBrandsEarly, 21, 19, 13, 9, 8, 6, 5, 4, 3, 3, 2, 2, 2, 2),
			2024: snap(globalBrandsEarly, 21, 18, 12, 9, 8, 6, 5, 4, 3, 3, 3, 3, 2, 2),
			2025: snap(globalBrandsLate, 20, 18, 12, 9, 8, 6, 4, 5, 3, 3, 3, 2, 2, 2),
			2026: snap(globalBrandsLate, 19, 18, 12, 10, 8, 6, 5, 5, 3, 3, 3, 2, 2, 2),
		},
		"India": {
			2022: snap(indiaBrands, 26, 16, 15, 12, 9, 10, 6, 6),
			2023: snap(indiaBrands, 25, 17, 15, 12, 9, 11, 6, 5),
			2024: snap(indiaBrands, 24, 18, 15, 12, 9, 12, 5, 5),
			2025: snap(indiaBrands, 23, 18, 16, 12, 9, 13, 5, 4),
			2026: snap(indiaBrands, 22, 19, 16, 12, 9, 14, 5, 3),
		},
		"USA": {
			2022: snap(usaBrands, 49, 27, 6, 6, 4, 8),
			2023: snap(usaBrands, 50, 26, 6, 6, 4, 8),
			2024: snap(usaBrands, 51, 25, 6, 6, 4, 8),
			2025: snap(usaBrands, 51, 25, 6, 6, 4, 8),
			2026: snap([]string{"Apple", "Samsung", "Google", "OnePlus", "Motorola", "Others"}, 50, 26, 7, 6, 4, 7),
		},
		"China": {
			2022: snap(chinaBrands, 28, 18, 15, 15, 9, 15),
			2023: snap(chinaBrands, 27, 19, 15, 15, 9, 15),
			2024: snap(chinaBrands, 26, 19, 15, 15, 10, 15),
			2025: snap(chinaBrands, 26, 19, 15, 15, 10, 15),
			2026: snap([]string{"Xiaomi", "Vivo", "Oppo", "Huawei", "Apple", "Others"}, 27, 19, 15, 13, 9, 17),
		},
	}
}
