package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPicker() pickerModel {
	return pickerModel{
		title: "Select wallet",
		items: []PickerItem{
			{Label: "alice", SubLabel: "0xf39F…2266", Value: "alice"},
			{Label: "bob", SubLabel: "0x7099…79C8", Value: "bob"},
		},
		keys: defaultPickerKeys,
	}
}

func send(m pickerModel, msg tea.KeyMsg) pickerModel {
	next, _ := m.Update(msg)
	return next.(pickerModel)
}

func TestPickerNavigateAndSelect(t *testing.T) {
	m := testPicker()
	m = send(m, tea.KeyMsg{Type: tea.KeyDown})
	m = send(m, tea.KeyMsg{Type: tea.KeyDown}) // clamped
	assert.Equal(t, 1, m.cursor)
	m = send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	assert.Equal(t, 0, m.cursor)
	m = send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})

	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, m.selected)
	assert.Equal(t, "bob", m.selected.Value)
}

func TestPickerCancel(t *testing.T) {
	m := send(testPicker(), tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, m.quitting)
	assert.Nil(t, m.selected)
	assert.Empty(t, m.View())
}

func TestPickerView(t *testing.T) {
	view := testPicker().View()
	assert.Contains(t, view, "Select wallet")
	assert.Contains(t, view, "alice")
	assert.Contains(t, view, "0x7099…79C8")
}

func TestPickItemEmpty(t *testing.T) {
	_, err := PickItem("x", nil)
	assert.Error(t, err)
}
