// Package console печатает человекочитаемые статусные строки прогона.
//
// Каждая строка начинается с цветного тега [OK], [ERROR], [INFO] или [WARNING].
// Цвета рендерит lipgloss: если вывод не терминал, теги печатаются без ANSI.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/termenv"
)

// Level — уровень статусного сообщения.
type Level string

const (
	LevelOK      Level = "OK"
	LevelError   Level = "ERROR"
	LevelInfo    Level = "INFO"
	LevelWarning Level = "WARNING"
)

// Ширина разделителя секций.
const ruleWidth = 60

// Palette — цвета тегов. ANSI коды, как в обычном терминале.
var Palette = map[Level]lipgloss.Color{
	LevelOK:      lipgloss.Color("10"), // зелёный
	LevelError:   lipgloss.Color("9"),  // красный
	LevelInfo:    lipgloss.Color("12"), // синий
	LevelWarning: lipgloss.Color("11"), // жёлтый
}

// Printer пишет статусные строки в io.Writer.
type Printer struct {
	mu     sync.Mutex
	out    io.Writer
	styles map[Level]lipgloss.Style
}

// New создаёт Printer с цветами, определёнными по out.
func New(out io.Writer) *Printer {
	return newPrinter(out, lipgloss.NewRenderer(out))
}

// NewPlain создаёт Printer без ANSI последовательностей (тесты, пайпы).
func NewPlain(out io.Writer) *Printer {
	r := lipgloss.NewRenderer(out)
	r.SetColorProfile(termenv.Ascii)
	return newPrinter(out, r)
}

func newPrinter(out io.Writer, r *lipgloss.Renderer) *Printer {
	styles := make(map[Level]lipgloss.Style, len(Palette))
	for level, color := range Palette {
		styles[level] = r.NewStyle().Foreground(color)
	}
	return &Printer{out: out, styles: styles}
}

// Tag возвращает тег уровня в квадратных скобках.
func (p *Printer) Tag(level Level) string {
	tag := "[" + string(level) + "]"
	if style, ok := p.styles[level]; ok {
		return style.Render(tag)
	}
	return tag
}

// Status печатает строку "[LEVEL] message".
func (p *Printer) Status(level Level, format string, args ...any) {
	p.println(p.Tag(level) + " " + fmt.Sprintf(format, args...))
}

// OK, Error, Info, Warning — сокращения для Status.
func (p *Printer) OK(format string, args ...any)      { p.Status(LevelOK, format, args...) }
func (p *Printer) Error(format string, args ...any)   { p.Status(LevelError, format, args...) }
func (p *Printer) Info(format string, args ...any)    { p.Status(LevelInfo, format, args...) }
func (p *Printer) Warning(format string, args ...any) { p.Status(LevelWarning, format, args...) }

// Section печатает заголовок секции между двумя линиями "=".
func (p *Printer) Section(title string) {
	rule := strings.Repeat("=", ruleWidth)
	p.println("\n" + rule + "\n  " + title + "\n" + rule)
}

// Banner печатает заголовок всего прогона.
func (p *Printer) Banner(lines ...string) {
	rule := strings.Repeat("=", ruleWidth)
	var b strings.Builder
	b.WriteString("\n" + rule + "\n")
	for _, l := range lines {
		b.WriteString("  " + l + "\n")
	}
	b.WriteString(rule)
	p.println(b.String())
}

// Block печатает подпись и под ней строки с отступом.
func (p *Printer) Block(title string, lines ...string) {
	body := indent.String(strings.Join(lines, "\n"), 4)
	p.println(indent.String(title, 2) + "\n" + body + "\n")
}

// Blank печатает пустую строку.
func (p *Printer) Blank() {
	p.println("")
}

func (p *Printer) println(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, s)
}
