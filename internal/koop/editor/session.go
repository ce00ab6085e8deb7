package editor

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bep/debounce"

	"github.com/tarimkoop/koop/internal/koop/editor/edtypes"
)

const (
	DefaultSettleDelay = 200 * time.Millisecond
	DefaultLoadDelay   = 60 * time.Millisecond
	DefaultPlaceholder = "İçeriğinizi yazın..."
)

type Config struct {
	SettleDelay  time.Duration
	LoadDelay    time.Duration
	HistoryDepth int
	Placeholder  string
}

func DefaultConfig() Config {
	return Config{
		SettleDelay:  DefaultSettleDelay,
		LoadDelay:    DefaultLoadDelay,
		HistoryDepth: DefaultHistoryDepth,
		Placeholder:  DefaultPlaceholder,
	}
}

// Input - начальное содержимое сессии.
type Input struct {
	Value           string
	InitialSnapshot string
	Placeholder     string
}

// Output - получатели результатов экспорта. OnSnapshotChange и OnError необязательны.
// Колбэки вызываются из горутины таймера и не должны вызывать Close.
type Output struct {
	OnChange         func(markup string)
	OnSnapshotChange func(snapshot string)
	OnError          func(err error)
}

// Session владеет документом одного редактора: загрузка с задержкой,
// команды и отложенный экспорт после затихания изменений.
type Session struct {
	cfg Config
	in  Input
	out Output

	mu         sync.Mutex
	ed         *Editor
	loaded     bool
	lastMarkup string
	loadTimer  *time.Timer

	debounced func(f func())
	emitMu    sync.Mutex
	closed    atomic.Bool
}

// Mount создает сессию и планирует загрузку содержимого через LoadDelay.
func Mount(cfg Config, in Input, out Output) *Session {
	def := DefaultConfig()
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = def.SettleDelay
	}
	if cfg.LoadDelay < 0 {
		cfg.LoadDelay = def.LoadDelay
	}
	if cfg.HistoryDepth <= 0 {
		cfg.HistoryDepth = def.HistoryDepth
	}
	if cfg.Placeholder == "" {
		cfg.Placeholder = def.Placeholder
	}

	s := &Session{
		cfg:       cfg,
		in:        in,
		out:       out,
		ed:        NewEditor(nil, cfg.HistoryDepth),
		debounced: debounce.New(cfg.SettleDelay),
	}
	s.mu.Lock()
	s.loadTimer = time.AfterFunc(cfg.LoadDelay, s.Load)
	s.mu.Unlock()
	return s
}

// Load загружает начальное содержимое. Повторные вызовы ничего не делают.
func (s *Session) Load() {
	if s.closed.Load() {
		return
	}
	s.mu.Lock()
	changed := s.loadLocked()
	s.mu.Unlock()
	if changed {
		s.schedule()
	}
}

func (s *Session) loadLocked() bool {
	if s.loaded {
		return false
	}
	s.loaded = true
	if s.loadTimer != nil {
		s.loadTimer.Stop()
	}

	if strings.TrimSpace(s.in.Value) == "" && strings.TrimSpace(s.in.InitialSnapshot) == "" {
		return false
	}
	s.ed.Reset(LoadDocument(s.in.Value, s.in.InitialSnapshot))
	return true
}

func (s *Session) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

type CommandType string

const (
	CommandSelect          CommandType = "select"
	CommandToggleFormat    CommandType = "toggle_format"
	CommandSetBlockType    CommandType = "set_block_type"
	CommandToggleList      CommandType = "toggle_list"
	CommandSetAlign        CommandType = "set_align"
	CommandSetTextColor    CommandType = "set_text_color"
	CommandSetBgColor      CommandType = "set_bg_color"
	CommandUndo            CommandType = "undo"
	CommandRedo            CommandType = "redo"
	CommandInsertText      CommandType = "insert_text"
	CommandInsertParagraph CommandType = "insert_paragraph"
	CommandDeleteBackward  CommandType = "delete_backward"
)

// Command - команда панели форматирования или ввода в виде, пригодном для передачи по сети.
type Command struct {
	Type      CommandType   `json:"type"`
	Selection *Selection    `json:"selection,omitempty"`
	Format    Format        `json:"format,omitempty"`
	BlockType BlockType     `json:"block_type,omitempty"`
	Ordered   bool          `json:"ordered,omitempty"`
	Align     edtypes.Align `json:"align,omitempty"`
	Color     string        `json:"color,omitempty"`
	Text      string        `json:"text,omitempty"`
}

// Dispatch применяет команду. Выделение команды, если задано, устанавливается до ее выполнения.
// Изменение документа перезапускает таймер экспорта.
func (s *Session) Dispatch(cmd Command) (ToolbarState, error) {
	if s.closed.Load() {
		return ToolbarState{}, ErrSessionClosed
	}

	s.mu.Lock()
	loadChanged := s.loadLocked()
	if cmd.Selection != nil {
		s.ed.Select(cmd.Selection)
	}
	changed, err := s.apply(cmd)
	state := s.ed.ToolbarState()
	s.mu.Unlock()

	if changed || loadChanged {
		s.schedule()
	}
	return state, err
}

func (s *Session) apply(cmd Command) (bool, error) {
	switch cmd.Type {
	case CommandSelect:
		return false, nil
	case CommandToggleFormat:
		return s.ed.ToggleFormat(cmd.Format)
	case CommandSetBlockType:
		return s.ed.SetBlockType(cmd.BlockType)
	case CommandToggleList:
		return s.ed.ToggleList(cmd.Ordered)
	case CommandSetAlign:
		return s.ed.SetAlignment(cmd.Align)
	case CommandSetTextColor:
		return s.ed.SetTextColor(cmd.Color)
	case CommandSetBgColor:
		return s.ed.SetBackgroundColor(cmd.Color)
	case CommandUndo:
		return s.ed.Undo()
	case CommandRedo:
		return s.ed.Redo()
	case CommandInsertText:
		return s.ed.InsertText(cmd.Text)
	case CommandInsertParagraph:
		return s.ed.InsertParagraph()
	case CommandDeleteBackward:
		return s.ed.DeleteBackward()
	}
	return false, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Type)
}

func (s *Session) schedule() {
	if s.closed.Load() {
		return
	}
	s.debounced(s.flush)
}

// flush экспортирует документ после затихания изменений.
// Разметка и снимок строятся из одной копии дерева.
func (s *Session) flush() {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()
	if s.closed.Load() {
		return
	}

	s.mu.Lock()
	doc, err := cloneDocument(s.ed.Document())
	s.mu.Unlock()

	var markup, snapshot string
	if err == nil {
		markup, snapshot, err = Export(doc)
	}
	if err != nil {
		slog.Error("Editor export failed, keep last markup", "err", err)
		if s.out.OnError != nil {
			s.out.OnError(err)
		}
		return
	}

	s.mu.Lock()
	s.lastMarkup = markup
	s.mu.Unlock()

	if s.out.OnChange != nil {
		s.out.OnChange(markup)
	}
	if s.out.OnSnapshotChange != nil {
		s.out.OnSnapshotChange(snapshot)
	}
}

func cloneDocument(doc *edtypes.Document) (res *edtypes.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("%w: clone: %v", ErrExport, r)
		}
	}()
	return doc.Clone(), nil
}

// Flush выполняет ожидающий экспорт немедленно.
func (s *Session) Flush() {
	s.debounced(func() {})
	s.flush()
}

// Close отменяет загрузку и ожидающий экспорт. После возврата колбэки не вызываются.
func (s *Session) Close() {
	if s.closed.Swap(true) {
		return
	}
	s.mu.Lock()
	if s.loadTimer != nil {
		s.loadTimer.Stop()
	}
	s.mu.Unlock()

	s.debounced(func() {})
	// дожидаемся экспорта, который уже начался
	s.emitMu.Lock()
	s.emitMu.Unlock()
}

func (s *Session) Closed() bool {
	return s.closed.Load()
}

// Document возвращает копию текущего документа.
func (s *Session) Document() *edtypes.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ed.Document().Clone()
}

func (s *Session) ToolbarState() ToolbarState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ed.ToolbarState()
}

// Markup возвращает последнюю успешно экспортированную разметку.
func (s *Session) Markup() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastMarkup
}

// Placeholder возвращает подсказку для пустого документа или пустую строку.
func (s *Session) Placeholder() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ed.Document().IsEmpty() {
		return ""
	}
	if s.in.Placeholder != "" {
		return s.in.Placeholder
	}
	return s.cfg.Placeholder
}
