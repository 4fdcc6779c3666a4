package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"optifolio/config"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *AppModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "q":
		// Typing states need the letter; everywhere else it backs out.
		if m.State == StateAssistant || m.State == StateConfigure {
			break
		}
		if m.State == StateMenu {
			return m, tea.Quit
		}
		m.State = StateMenu
		m.Error = ""
		return m, nil

	case "esc":
		if m.State == StateConfigure {
			m.saveSettings()
		}
		m.State = StateMenu
		m.Error = ""
		return m, nil

	case "f5":
		if m.State == StateMarket && !m.Loading {
			m.Error = ""
			m.Loading = true
			return m, m.loadMarketCmd()
		}
		return m, nil
	}

	switch m.State {
	case StateMenu:
		return m.handleMenuKeys(msg)
	case StateConfigure:
		return m.handleConfigureKeys(msg)
	case StatePortfolio:
		return m.handlePortfolioKeys(msg)
	case StateMarket:
		return m.handleMarketKeys(msg)
	case StateAssistant:
		return m.handleAssistantKeys(msg)
	case StateStore:
		return m.handleStoreKeys(msg)
	}

	return m, nil
}

func (m *AppModel) handleMenuKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Choices)-1 {
			m.Cursor++
		}
	case "enter", " ":
		return m.handleMenuSelection()
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		idx := int(msg.String()[0] - '1')
		if idx < len(m.Choices) {
			m.Cursor = idx
			return m.handleMenuSelection()
		}
	}
	return m, nil
}

func (m *AppModel) handleMenuSelection() (tea.Model, tea.Cmd) {
	switch m.Cursor {
	case 0: // Configure
		m.State = StateConfigure
		m.ConfigCursor = 0
		m.Error = ""
	case 1: // Generate
		if m.Loading {
			return m, nil
		}
		m.Error = ""
		m.Loading = true
		m.State = StatePortfolio
		return m, m.generatePortfolioCmd()
	case 2: // Market
		m.State = StateMarket
		m.Error = ""
		if m.Market == nil && !m.Loading {
			m.Loading = true
			return m, tea.Batch(m.loadMarketCmd(), tickEvery(time.Minute))
		}
	case 3: // Insights
		m.State = StateInsights
	case 4: // Assistant
		m.State = StateAssistant
	case 5: // Store
		m.State = StateStore
		m.StoreError = ""
	case 6: // Diagnostics
		m.State = StateDiagnostics
		return m, m.pingCmd()
	case 7: // Help
		m.State = StateHelp
	case 8: // Exit
		return m, tea.Quit
	}
	return m, nil
}

func (m *AppModel) handleConfigureKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	fieldCount := fieldSectorsStart + len(m.sectorNames)

	switch msg.String() {
	case "up", "k":
		if m.ConfigCursor > 0 {
			m.ConfigCursor--
		}
	case "down", "j":
		if m.ConfigCursor < fieldCount-1 {
			m.ConfigCursor++
		}

	case "left", "h":
		switch m.ConfigCursor {
		case fieldRiskProfile:
			m.cycleRiskProfile(-1)
		case fieldMaxAssets:
			if m.Settings.MaxAssets > 1 {
				m.Settings.MaxAssets--
			}
		}
	case "right", "l":
		switch m.ConfigCursor {
		case fieldRiskProfile:
			m.cycleRiskProfile(1)
		case fieldMaxAssets:
			if m.Settings.MaxAssets < 20 {
				m.Settings.MaxAssets++
			}
		}

	case " ":
		if m.ConfigCursor >= fieldSectorsStart {
			m.toggleSector(m.sectorNames[m.ConfigCursor-fieldSectorsStart])
		}

	case "enter":
		if !m.commitAmount() {
			return m, nil
		}
		m.saveSettings()
		if m.Loading {
			return m, nil
		}
		m.Error = ""
		m.Loading = true
		m.State = StatePortfolio
		return m, m.generatePortfolioCmd()

	case "backspace":
		if m.ConfigCursor == fieldAmount && len(m.AmountInput) > 0 {
			m.AmountInput = m.AmountInput[:len(m.AmountInput)-1]
		}

	default:
		if m.ConfigCursor == fieldAmount {
			key := msg.String()
			if len(key) == 1 && (key[0] >= '0' && key[0] <= '9' || key[0] == '.') {
				m.AmountInput += key
			}
		}
	}
	return m, nil
}

func (m *AppModel) cycleRiskProfile(dir int) {
	order := []string{"low", "medium", "high"}
	idx := 1
	for i, p := range order {
		if p == m.Settings.RiskProfile {
			idx = i
		}
	}
	idx = (idx + dir + len(order)) % len(order)
	m.Settings.RiskProfile = order[idx]
}

func (m *AppModel) toggleSector(name string) {
	for i, s := range m.Settings.Sectors {
		if s == name {
			m.Settings.Sectors = append(m.Settings.Sectors[:i], m.Settings.Sectors[i+1:]...)
			return
		}
	}
	m.Settings.Sectors = append(m.Settings.Sectors, name)
}

func (m *AppModel) sectorSelected(name string) bool {
	for _, s := range m.Settings.Sectors {
		if s == name {
			return true
		}
	}
	return false
}

// commitAmount parses the amount input field into the settings,
// reporting a validation error inline on failure.
func (m *AppModel) commitAmount() bool {
	amount, err := strconv.ParseFloat(strings.TrimSpace(m.AmountInput), 64)
	if err != nil || amount <= 0 {
		m.Error = "Investment amount must be a positive number"
		return false
	}
	m.Settings.InvestmentAmount = amount
	m.Error = ""
	return true
}

func (m *AppModel) saveSettings() {
	if len(m.Settings.Sectors) == 0 {
		// The optimizer falls back to top market cap anyway, but keep
		// the persisted settings meaningful.
		m.Settings.Sectors = []string{"DeFi", "Layer 1"}
	}
	if err := config.SaveSettings(m.Settings); err != nil {
		m.Log.Warn().Err(err).Msg("failed to persist settings")
	}
}

func (m *AppModel) handlePortfolioKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "g":
		if m.Loading {
			return m, nil
		}
		m.Error = ""
		m.Loading = true
		return m, m.generatePortfolioCmd()
	case "s":
		m.State = StateStore
		m.StoreError = ""
	case "c":
		if m.Result != nil {
			clipboard.WriteAll(m.Result.RunID.String())
		}
	}
	return m, nil
}

func (m *AppModel) handleMarketKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "r":
		if !m.Loading {
			m.Error = ""
			m.Loading = true
			return m, m.loadMarketCmd()
		}
	}
	return m, nil
}

func (m *AppModel) handleAssistantKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		question := strings.TrimSpace(m.ChatInput)
		if question == "" {
			return m, nil
		}
		m.ChatHistory = append(m.ChatHistory, ChatTurn{
			Question: question,
			Answer:   m.Assistant.Reply(question),
		})
		m.ChatInput = ""

	case "backspace":
		if len(m.ChatInput) > 0 {
			m.ChatInput = m.ChatInput[:len(m.ChatInput)-1]
		}

	case "ctrl+v":
		if text, err := clipboard.ReadAll(); err == nil {
			m.ChatInput += text
		}

	default:
		if msg.Type == tea.KeyRunes {
			m.ChatInput += string(msg.Runes)
		} else if msg.Type == tea.KeySpace {
			m.ChatInput += " "
		}
	}
	return m, nil
}

func (m *AppModel) handleStoreKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "y":
		if m.StorePending {
			return m, nil
		}
		if m.Result == nil {
			m.StoreError = "No portfolio to store. Generate one first."
			return m, nil
		}
		m.StorePending = true
		m.StoreError = ""
		m.StoreResult = ""
		return m, m.storePortfolioCmd()
	case "c":
		if m.StoreResult != "" {
			clipboard.WriteAll(m.StoreResult)
		}
	}
	return m, nil
}

// sectorLabel renders a toggle row for the configure view.
func (m *AppModel) sectorLabel(name string) string {
	mark := "[ ]"
	if m.sectorSelected(name) {
		mark = "[x]"
	}
	return fmt.Sprintf("%s %s (%d assets)", mark, name, len(m.Sectors[name]))
}
