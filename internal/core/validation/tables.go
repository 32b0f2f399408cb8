package validation

// Reference tables. Treat them as read-only; rules only look values up.

// GenusDefaultSpecies names the species to suggest when a tree of the genus has none.
var GenusDefaultSpecies = map[string]string{
	"Malus": "Malus domestica",
	"Pyrus": "Pyrus communis",
}

// Correction is the replacement for a deprecated species value.
type Correction struct {
	Species string
	Genus   string
}

// DeprecatedSpecies maps legacy capitalised binomials to their correct spelling.
var DeprecatedSpecies = map[string]Correction{
	"Malus Domestica":    {Species: "Malus domestica", Genus: "Malus"},
	"Sorbus Domestica":   {Species: "Sorbus domestica", Genus: "Sorbus"},
	"Pyrus Communis":     {Species: "Pyrus communis", Genus: "Pyrus"},
	"Prunus Avium":       {Species: "Prunus avium", Genus: "Prunus"},
	"Cydonia Oblonga":    {Species: "Cydonia oblonga", Genus: "Cydonia"},
	"Juglans Regia":      {Species: "Juglans regia", Genus: "Juglans"},
	"Mespilus Germanica": {Species: "Mespilus germanica", Genus: "Mespilus"},
	"Prunus Domestica":   {Species: "Prunus domestica", Genus: "Prunus"},
	"Prunus Cerasus":     {Species: "Prunus cerasus", Genus: "Prunus"},
	"Cornus Mas":         {Species: "Cornus mas", Genus: "Cornus"},
	"Castanea Sativa":    {Species: "Castanea sativa", Genus: "Castanea"},
	"Corylus Avellana":   {Species: "Corylus avellana", Genus: "Corylus"},
}

func fruitTree(genus, wikidata string) map[string]string {
	return map[string]string{
		"genus":            genus,
		"species:wikidata": wikidata,
		"leaf_type":        "broadleaved",
		"leaf_cycle":       "deciduous",
	}
}

func withTag(m map[string]string, key, value string) map[string]string {
	m[key] = value
	return m
}

// SpeciesReference maps a canonical species to the tags every tree of it should carry.
var SpeciesReference = map[string]map[string]string{
	"Malus domestica":    fruitTree("Malus", "Q18674606"),
	"Sorbus domestica":   withTag(fruitTree("Sorbus", "Q159558"), "species:wikipedia", "de:Speierling"),
	"Pyrus communis":     fruitTree("Pyrus", "Q146281"),
	"Prunus avium":       fruitTree("Prunus", "Q165137"),
	"Cydonia oblonga":    fruitTree("Cydonia", "Q43300"),
	"Juglans regia":      fruitTree("Juglans", "Q46871"),
	"Mespilus germanica": fruitTree("Mespilus", "Q146186"),
	"Prunus domestica":   fruitTree("Prunus", "Q44120"),
	"Prunus cerasus":     fruitTree("Prunus", "Q165145"),
	"Cornus mas":         fruitTree("Cornus", "Q148734"),
	"Castanea sativa":    fruitTree("Castanea", "Q147821"),
	"Corylus avellana":   fruitTree("Corylus", "Q124969"),
}

// CultivarReference maps a canonical cultivar name to the tags implied by it.
var CultivarReference = map[string]map[string]string{
	"Boskoop":                   {"genus": "Malus", "species": "Malus domestica"},
	"Jonagold":                  {"genus": "Malus", "species": "Malus domestica"},
	"Elstar":                    {"genus": "Malus", "species": "Malus domestica"},
	"Topaz":                     {"genus": "Malus", "species": "Malus domestica"},
	"Gravensteiner":             {"genus": "Malus", "species": "Malus domestica"},
	"Rheinischer Bohnapfel":     {"genus": "Malus", "species": "Malus domestica"},
	"Conference":                {"genus": "Pyrus", "species": "Pyrus communis"},
	"Williams Christ":           {"genus": "Pyrus", "species": "Pyrus communis"},
	"Gellerts Butterbirne":      {"genus": "Pyrus", "species": "Pyrus communis"},
	"Hedelfinger Riesenkirsche": {"genus": "Prunus", "species": "Prunus avium"},
	"Schattenmorelle":           {"genus": "Prunus", "species": "Prunus cerasus"},
	"Hauszwetschge":             {"genus": "Prunus", "species": "Prunus domestica"},
}

// FruitGenera lists the genera the scheduler keeps when zoomed out.
var FruitGenera = []string{
	"Malus", "Pyrus", "Prunus", "Sorbus", "Cydonia",
	"Mespilus", "Juglans", "Castanea", "Corylus", "Cornus",
}

// Denotation suggested for trees standing inside an orchard.
const (
	DenotationKey          = "denotation"
	DenotationAgricultural = "agricultural"
)
