package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/papercomputeco/trickle/pkg/llm"
	"github.com/papercomputeco/trickle/pkg/logger"
)

// DefaultScript is replayed when no script file is configured.
const DefaultScript = `Here are the three highest peaks of Bulgaria:
1. Musala (2925 m) is the highest summit of the Rila range and of the whole Balkans.
2. Vihren (2914 m) rises above the marble ridges of Pirin.
3. Kutelo (2908 m) stands right next to Vihren and is often climbed the same day.
Each of them is a classic summer hike, so start early and carry water!`

// tokenPattern approximates model tokens: short word pieces with their
// leading space, single punctuation marks, and leftover whitespace.
var tokenPattern = regexp.MustCompile(`[ \t]*[\pL\pN]{1,4}|[ \t]*[^\s\pL\pN]|\s+`)

// Tokenize splits text into model-like tokens. Joining the result gives
// back text.
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(text, -1)
}

// ScriptGenerator replays a fixed text as a token stream, ignoring the
// prompt. It stands in for a model when no upstream is configured.
type ScriptGenerator struct {
	mu     sync.RWMutex
	tokens []string

	delay  time.Duration
	path   string
	logger *slog.Logger
}

// NewScriptGenerator replays text with delay between tokens.
func NewScriptGenerator(text string, delay time.Duration) *ScriptGenerator {
	return &ScriptGenerator{
		tokens: Tokenize(text),
		delay:  delay,
		logger: logger.Nop(),
	}
}

// LoadScriptGenerator replays the file at path. Call Watch to pick up edits.
func LoadScriptGenerator(path string, delay time.Duration, log *slog.Logger) (*ScriptGenerator, error) {
	g := NewScriptGenerator("", delay)
	g.path = path
	if log != nil {
		g.logger = log
	}

	if err := g.reload(); err != nil {
		return nil, err
	}
	return g, nil
}

// Tokens returns a copy of the current token list.
func (g *ScriptGenerator) Tokens() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]string(nil), g.tokens...)
}

func (g *ScriptGenerator) Generate(ctx context.Context, _ *llm.ChatRequest, _ http.Header, emit Emit) error {
	tokens := g.Tokens()

	for i, tok := range tokens {
		if i > 0 && g.delay > 0 {
			timer := time.NewTimer(g.delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := emit(tok); err != nil {
			return err
		}
	}
	return nil
}

// Watch reloads the script whenever its file is written or replaced, until
// ctx is done. It is a no-op for generators built from text.
func (g *ScriptGenerator) Watch(ctx context.Context) error {
	if g.path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating script watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file, so watch the directory.
	if err := watcher.Add(filepath.Dir(g.path)); err != nil {
		return fmt.Errorf("watching script dir: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(g.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := g.reload(); err != nil {
				g.logger.Warn("script reload failed", "path", g.path, "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("script watcher error: %w", err)
		}
	}
}

func (g *ScriptGenerator) reload() error {
	data, err := os.ReadFile(g.path)
	if err != nil {
		return fmt.Errorf("reading script: %w", err)
	}

	tokens := Tokenize(string(data))
	if len(tokens) == 0 {
		return errors.New("script is empty")
	}

	g.mu.Lock()
	g.tokens = tokens
	g.mu.Unlock()

	g.logger.Info("script loaded", "path", g.path, "tokens", len(tokens))
	return nil
}
