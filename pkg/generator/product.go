// Package generator генерирует случайные поля продуктов для наполнения сервиса.
//
// Источник случайности инкапсулирован в Generator и может быть засеян,
// поэтому свойства генерируемых данных проверяются детерминированно.
package generator

import (
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/ilkoid/pagination-seeder/pkg/api"
)

// Диапазон цен продукта.
const (
	MinPrice = 10.0
	MaxPrice = 5000.0
)

// Границы количества слов в описании и категорий у продукта.
const (
	minDescriptionWords = 3
	maxDescriptionWords = 6
	maxCategories       = 3
)

// DescriptionConnective соединяет слова описания.
const DescriptionConnective = " y "

// ProductNames — пул базовых названий продуктов.
var ProductNames = []string{
	"Laptop Gaming", "Monitor 4K", "Teclado Mecánico", "Ratón Gamer", "Mousepad XL",
	"Auriculares Inalámbricos", "Webcam Full HD", "Micrófono USB", "Hub USB-C",
	"Cargador Rápido", "Cable HDMI", "Adaptador USBC", "SSD 1TB", "RAM DDR4",
	"Refrigeración Líquida", "Ventilador RGB", "Fuente de Poder", "Carcasa Gaming",
	"Procesador Intel", "Tarjeta Gráfica", "Disco Duro 2TB", "Router 5G",
	"Impresora Láser", "Scanner Documento", "Monitor LED", "Escritorio Gamer",
	"Silla Gamer", "Iluminación RGB", "Control Remoto", "Power Bank",
	"Dock Multi-función", "Adaptador HDMI", "Cable Ethernet", "Panel Solar",
	"Batería Externa", "Cargador Inalámbrico", "Protector Pantalla", "Funda Laptop",
	"Mochila Antirobo", "Organizador Cables", "Pasta Térmica", "Limpiador Pantalla",
	"Alfombrilla Refrigerante", "Soporte Monitor", "Brazo Articulado", "Luz LED",
	"Concentrador USB", "Cable Lightning", "Adaptador USB", "Capacitores",
	"Resistencias", "Transistores", "Diodos", "Circuitos Integrados",
	"Placa Madre", "Procesador AMD", "Memoria Cache", "Acelerador Gráfico",
}

// NameSuffixes — суффиксы, которые с вероятностью 0.5 добавляются к названию.
var NameSuffixes = []string{"Pro", "Ultra", "Max", "X", "2024", "Gaming", "Professional"}

// DescriptionWords — пул слов для описаний.
var DescriptionWords = []string{
	"Potente", "Rápido", "Eficiente", "Duradero", "Moderno",
	"Elegante", "Compacto", "Ligero", "Resistente", "Premium",
	"Profesional", "Gaming", "Portátil", "Silencioso", "Económico",
	"Alto rendimiento", "Bajo consumo", "Conectividad", "Sincronización",
	"Compatible", "Versátil", "Intuitivo", "Confiable", "Innovador",
	"Ergonómico", "Seguro", "Rápida carga", "Batería duradera", "Precisión",
}

// Generator — генератор случайных данных продукта.
//
// Не потокобезопасен: *rand.Rand используется без блокировок,
// весь прогон идёт в одной горутине.
type Generator struct {
	rnd *rand.Rand
}

// New создаёт генератор. seed == 0 — seed от текущего времени.
func New(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Name возвращает базовое название, в половине случаев с суффиксом.
func (g *Generator) Name() string {
	base := ProductNames[g.rnd.Intn(len(ProductNames))]
	if g.rnd.Float64() < 0.5 {
		return base + " " + NameSuffixes[g.rnd.Intn(len(NameSuffixes))]
	}
	return base
}

// Description собирает описание из 3–6 различных слов пула.
func (g *Generator) Description() string {
	k := minDescriptionWords + g.rnd.Intn(maxDescriptionWords-minDescriptionWords+1)
	idx := g.rnd.Perm(len(DescriptionWords))[:k]

	words := make([]string, k)
	for i, j := range idx {
		words[i] = DescriptionWords[j]
	}
	return "Producto " + strings.Join(words, DescriptionConnective) + ". Ideal para profesionales y entusiastas."
}

// Price возвращает цену в [MinPrice, MaxPrice], округлённую до центов.
func (g *Generator) Price() float64 {
	p := MinPrice + g.rnd.Float64()*(MaxPrice-MinPrice)
	p = math.Round(p*100) / 100
	return math.Min(math.Max(p, MinPrice), MaxPrice)
}

// Owner выбирает владельца из ids. Пустой ids — паника:
// вызывающий код обязан проверить наличие пользователей.
func (g *Generator) Owner(ids []int64) int64 {
	return ids[g.rnd.Intn(len(ids))]
}

// Categories выбирает от 1 до 3 различных категорий из ids.
// Размер выборки не превышает len(ids).
func (g *Generator) Categories(ids []int64) []int64 {
	k := 1 + g.rnd.Intn(maxCategories)
	if k > len(ids) {
		k = len(ids)
	}

	out := make([]int64, k)
	for i, j := range g.rnd.Perm(len(ids))[:k] {
		out[i] = ids[j]
	}
	return out
}

// Product генерирует тело запроса на создание продукта.
func (g *Generator) Product(userIDs, categoryIDs []int64) api.ProductRequest {
	return api.ProductRequest{
		Name:        g.Name(),
		Price:       g.Price(),
		Description: g.Description(),
		UserID:      g.Owner(userIDs),
		CategoryIDs: g.Categories(categoryIDs),
	}
}
