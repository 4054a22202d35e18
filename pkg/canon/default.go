package canon

// defaultProducts maps canonical product -> (category, surface forms).
// Plural forms that the singularizer cannot recover (perfumes -> perfum) are listed explicitly.
var defaultProducts = map[string]struct {
	category string
	forms    []string
}{
	"iphone":       {"celular", []string{"iphone", "iphones", "apple", "ifone"}},
	"galaxy":       {"celular", []string{"galaxy", "samsung"}},
	"motorola":     {"celular", []string{"motorola", "moto g", "motog", "moto"}},
	"xiaomi":       {"celular", []string{"xiaomi", "redmi"}},
	"macbook":      {"notebook", []string{"macbook", "macbooks", "mac"}},
	"notebook":     {"notebook", []string{"notebook", "notebooks", "laptop", "laptops", "portatil", "portatiles"}},
	"ipad":         {"tablet", []string{"ipad", "ipads"}},
	"tablet":       {"tablet", []string{"tablet", "tablets", "tablete"}},
	"smart tv":     {"tv", []string{"smart tv", "smarttv", "televisao", "televisor", "televisores", "televisoes"}},
	"airpods":      {"audio", []string{"airpods", "airpod"}},
	"fone":         {"audio", []string{"fone", "fones", "fone de ouvido", "fones de ouvido", "headphone", "headphones", "auricular", "auriculares", "audifonos"}},
	"caixa de som": {"audio", []string{"caixa de som", "caixinha", "jbl", "parlante", "parlantes"}},
	"perfume":      {"perfumaria", []string{"perfume", "perfumes", "fragrancia", "fragrancias", "colonia", "colonias"}},
	"drone":        {"drone", []string{"drone", "drones", "dron", "dji"}},
	"playstation":  {"videogame", []string{"playstation", "ps5", "ps4"}},
	"xbox":         {"videogame", []string{"xbox"}},
	"nintendo":     {"videogame", []string{"nintendo", "switch"}},
	"smartwatch":   {"relogio", []string{"smartwatch", "apple watch", "relogio inteligente"}},
	"camiseta":     {"roupa", []string{"camiseta", "camisetas", "camisa", "camisas", "remera", "remeras", "playera"}},
	"tenis":        {"calcado", []string{"tenis", "zapatilla", "zapatillas", "sneaker", "sneakers"}},
	"carregador":   {"acessorio", []string{"carregador", "carregadores", "cargador", "cargadores"}},
	"capinha":      {"acessorio", []string{"capinha", "capinhas", "capa", "capas", "funda", "fundas", "case"}},
	"pelicula":     {"acessorio", []string{"pelicula", "peliculas", "protector de pantalla"}},
	"cabo":         {"acessorio", []string{"cabo", "cabos", "cable", "cables"}},
	"camera":       {"camera", []string{"camera", "cameras", "camara", "camaras", "gopro"}},
}

var defaultCategories = map[string][]string{
	"celular":    {"celular", "celulares", "smartphone", "smartphones", "telefone", "telefono", "telefonos", "movil", "moviles"},
	"notebook":   {"computador", "computadores", "computadora", "computadoras", "pc"},
	"tablet":     {},
	"tv":         {"tv", "tvs", "tele"},
	"audio":      {"audio", "som"},
	"perfumaria": {"perfumaria", "perfumeria", "cosmetico", "cosmeticos"},
	"drone":      {},
	"videogame":  {"videogame", "videogames", "console", "consoles", "consola", "consolas", "game", "games"},
	"relogio":    {"relogio", "relogios", "reloj", "relojes"},
	"roupa":      {"roupa", "roupas", "ropa", "vestuario"},
	"calcado":    {"calcado", "calcados", "sapato", "sapatos", "calzado", "zapato", "zapatos"},
	"acessorio":  {"acessorio", "acessorios", "accesorio", "accesorios"},
	"camera":     {"fotografia"},
}

// Default returns a fresh copy of the compiled-in table.
func Default() *Dictionary {
	d := &Dictionary{
		ProductCanon:      make(map[string]string),
		CategoryCanon:     make(map[string]string),
		ProductToCategory: make(map[string]string),
	}
	for product, entry := range defaultProducts {
		d.ProductCanon[product] = product
		for _, form := range entry.forms {
			d.ProductCanon[form] = product
		}
		d.ProductToCategory[product] = entry.category
	}
	for category, forms := range defaultCategories {
		d.CategoryCanon[category] = category
		for _, form := range forms {
			d.CategoryCanon[form] = category
		}
	}
	return d
}
