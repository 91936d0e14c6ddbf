package service

// MicroPreset is a tracked nutrient with its daily goal.
type MicroPreset struct {
	ID    string
	Label string
	Unit  string
	Goal  float64
	Hint  string
}

var MicroPresets = []MicroPreset{
	{ID: "vitamin_c", Label: "Vitamina C", Unit: "mg", Goal: 90, Hint: "Sistema inmune"},
	{ID: "vitamin_d", Label: "Vitamina D", Unit: "IU", Goal: 600, Hint: "Salud osea"},
	{ID: "magnesium", Label: "Magnesio", Unit: "mg", Goal: 350, Hint: "Funcion muscular"},
	{ID: "iron", Label: "Hierro", Unit: "mg", Goal: 18, Hint: "Transporte de oxigeno"},
	{ID: "calcium", Label: "Calcio", Unit: "mg", Goal: 1000, Hint: "Huesos fuertes"},
	{ID: "potassium", Label: "Potasio", Unit: "mg", Goal: 3500, Hint: "Equilibrio electrolitico"},
	{ID: "fiber", Label: "Fibra", Unit: "g", Goal: 30, Hint: "Salud digestiva"},
	{ID: "zinc", Label: "Zinc", Unit: "mg", Goal: 11, Hint: "Recuperacion muscular"},
}

func PresetByID(id string) (MicroPreset, bool) {
	id = normalizeName(id)
	for _, p := range MicroPresets {
		if p.ID == id {
			return p, true
		}
	}
	return MicroPreset{}, false
}
