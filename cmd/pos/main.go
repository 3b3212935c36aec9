package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/RamadanuGIT/inventory-go/pos"
)

// focus marks which input the keyboard is driving.
type focus int

const (
	focusSearch focus = iota
	focusQuantity
)

// While a load or commit runs on bubbletea's command goroutine the session
// state belongs to that goroutine: all input except quit is dropped and the
// view renders the body snapshot taken at dispatch. Reads resume once the
// result message arrives back on the update loop.
type model struct {
	ctl    *pos.Controller
	focus  focus
	qty    string
	status string
	busy   bool
	frozen string
}

type catalogLoaded struct {
	err error
}

type commitResult struct {
	ack *pos.CommitAck
	err error
}

func initialModel(ctl *pos.Controller) model {
	m := model{
		ctl:    ctl,
		busy:   true,
		status: "Loading catalog...",
	}
	m.frozen = m.body()
	return m
}

func (m model) Init() tea.Cmd {
	return loadCatalogCmd(m.ctl)
}

func loadCatalogCmd(ctl *pos.Controller) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return catalogLoaded{err: ctl.Load(ctx)}
	}
}

func commitCmd(ctl *pos.Controller) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		ack, err := ctl.Commit(ctx)
		return commitResult{ack: ack, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.busy {
			return m, nil
		}
		switch msg.String() {
		case "ctrl+r":
			m.busy = true
			m.frozen = m.body()
			m.status = "Reloading catalog..."
			return m, loadCatalogCmd(m.ctl)
		case "ctrl+k":
			if m.ctl.Cart().LineCount() == 0 {
				m.status = "Cart is empty"
				return m, nil
			}
			m.busy = true
			m.frozen = m.body()
			m.status = "Committing..."
			return m, commitCmd(m.ctl)
		case "ctrl+d":
			lines := m.ctl.Cart().Lines()
			if len(lines) > 0 {
				last := lines[len(lines)-1]
				m.ctl.RemoveFromCart(last.ItemID)
				m.status = fmt.Sprintf("Removed %s", last.Code)
			}
			return m, nil
		}
		if m.focus == focusQuantity {
			return m.updateQuantity(msg)
		}
		return m.updateSearch(msg)

	case catalogLoaded:
		m.busy = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Catalog load failed: %v", msg.err)
		} else {
			m.status = fmt.Sprintf("Catalog loaded (%d items)", len(m.ctl.Catalog().Snapshot()))
		}

	case commitResult:
		m.busy = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Commit failed: %v", msg.err)
		} else {
			m.status = fmt.Sprintf("Committed %d lines (request %s)", msg.ack.Applied, msg.ack.RequestID)
		}
	}
	return m, nil
}

func (m model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up":
		m.ctl.Prev()
	case "down":
		m.ctl.Next()
	case "enter":
		if item, ok := m.ctl.Confirm(); ok {
			m.focus = focusQuantity
			m.qty = ""
			m.status = fmt.Sprintf("Selected %s (%s), enter quantity", item.Name, item.Code)
		}
	case "esc":
		m.ctl.SetQuery("")
		m.status = "Ready"
	case "backspace":
		q := m.ctl.Query()
		if len(q) > 0 {
			m.ctl.SetQuery(q[:len(q)-1])
		}
	default:
		if len(msg.Runes) > 0 {
			m.ctl.SetQuery(m.ctl.Query() + string(msg.Runes))
		}
	}
	return m, nil
}

func (m model) updateQuantity(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		quantity, err := strconv.Atoi(m.qty)
		if err != nil {
			m.status = "Quantity must be a number"
			return m, nil
		}
		if err := m.ctl.AddToCart(quantity); err != nil {
			m.status = fmt.Sprintf("Cannot add: %v", err)
			return m, nil
		}
		m.focus = focusSearch
		m.qty = ""
		m.status = fmt.Sprintf("Added to cart (%d lines)", m.ctl.Cart().LineCount())
	case "esc":
		m.focus = focusSearch
		m.qty = ""
		m.status = "Selection cancelled"
	case "backspace":
		if len(m.qty) > 0 {
			m.qty = m.qty[:len(m.qty)-1]
		}
	default:
		if len(msg.Runes) == 1 && msg.Runes[0] >= '0' && msg.Runes[0] <= '9' {
			m.qty += string(msg.Runes)
		}
	}
	return m, nil
}

// body renders everything that reads session state. Only called while no
// background command is running.
func (m model) body() string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "Search: %s_\n", m.ctl.Query())
	for i, item := range m.ctl.Candidates() {
		marker := " "
		if i == m.ctl.Highlight() {
			marker = ">"
		}
		fmt.Fprintf(b, " %s [%s] %s  qty=%d  price=%s\n", marker, item.Code, item.Name, item.QuantityOnHand, item.UnitPrice.StringFixed(2))
	}

	if m.focus == focusQuantity {
		if item, ok := m.ctl.Selected(); ok {
			fmt.Fprintf(b, "\nQuantity for %s: %s_\n", item.Code, m.qty)
		}
	}

	fmt.Fprintln(b, "")
	fmt.Fprintln(b, "Cart:")
	lines := m.ctl.Cart().Lines()
	if len(lines) == 0 {
		fmt.Fprintln(b, " (empty)")
	}
	for _, line := range lines {
		fmt.Fprintf(b, " [%s] %s  x%d  @%s = %s\n",
			line.Code, line.Name, line.Quantity,
			line.UnitPrice.StringFixed(2), line.Total().StringFixed(2))
	}
	fmt.Fprintf(b, " Total: %s\n", m.ctl.Cart().Total().StringFixed(2))
	return b.String()
}

func (m model) View() string {
	body := m.frozen
	if !m.busy {
		body = m.body()
	}

	b := &strings.Builder{}
	fmt.Fprintln(b, "Stock-Out Terminal")
	fmt.Fprintln(b, "")
	b.WriteString(body)
	fmt.Fprintln(b, "")
	fmt.Fprintf(b, "Status: %s\n", m.status)
	fmt.Fprintln(b, "\nControls: type to search, up/down highlight, enter select, ctrl+k commit, ctrl+d remove last, ctrl+r reload, ctrl+c quit")
	return b.String()
}

func main() {
	baseURL := getenv("INVENTORY_BASE_URL", "http://localhost:8080")

	client := pos.NewInventoryClient(baseURL)
	ctl := pos.NewController(client)

	p := tea.NewProgram(initialModel(ctl))
	if _, err := p.Run(); err != nil {
		log.Fatalf("❌ terminal error: %v", err)
	}
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
