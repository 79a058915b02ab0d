package terminal

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Toggle     key.Binding
	Reset      key.Binding
	Skip       key.Binding
	Preset     key.Binding
	Audio      key.Binding
	Source     key.Binding
	BreakAudio key.Binding
	Preview    key.Binding
	Up         key.Binding
	Down       key.Binding
	Add        key.Binding
	Done       key.Binding
	Delete     key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Toggle:     key.NewBinding(key.WithKeys(" ", "s"), key.WithHelp("space", "start/pause")),
		Reset:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Skip:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "skip phase")),
		Preset:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "next preset")),
		Audio:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "audio on/off")),
		Source:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "next sound")),
		BreakAudio: key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "break audio")),
		Preview:    key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "test sound")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/↓", "select task")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↑/↓", "select task")),
		Add:        key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add task")),
		Done:       key.NewBinding(key.WithKeys("x", "enter"), key.WithHelp("x", "toggle task")),
		Delete:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete task")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Reset, k.Skip, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Reset, k.Skip, k.Preset},
		{k.Audio, k.Source, k.BreakAudio, k.Preview},
		{k.Up, k.Add, k.Done, k.Delete},
		{k.Help, k.Quit},
	}
}
