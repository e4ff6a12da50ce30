package main

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"loreline/engine-go/pkg/driver"
	"loreline/engine-go/pkg/interpreter"
	"loreline/engine-go/pkg/snapshot"
	"loreline/engine-go/pkg/translation"
)

type playConfig struct {
	target   string
	beat     string
	lang     string
	savePath string
	loadPath string
	strict   bool
}

// runPlay starts the interactive player for a script or a story manifest.
func runPlay(args []string) int {
	var cfg playConfig
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--beat":
			if i++; i >= len(args) {
				fmt.Fprintln(os.Stderr, "loreline run: --beat expects a value")
				return 1
			}
			cfg.beat = args[i]
		case "--lang":
			if i++; i >= len(args) {
				fmt.Fprintln(os.Stderr, "loreline run: --lang expects a value")
				return 1
			}
			cfg.lang = args[i]
		case "--save":
			if i++; i >= len(args) {
				fmt.Fprintln(os.Stderr, "loreline run: --save expects a file")
				return 1
			}
			cfg.savePath = args[i]
		case "--load":
			if i++; i >= len(args) {
				fmt.Fprintln(os.Stderr, "loreline run: --load expects a file")
				return 1
			}
			cfg.loadPath = args[i]
		case "--strict":
			cfg.strict = true
		default:
			if strings.HasPrefix(args[i], "-") {
				fmt.Fprintf(os.Stderr, "loreline run: unknown flag %q\n", args[i])
				return 1
			}
			if cfg.target != "" {
				fmt.Fprintln(os.Stderr, "loreline run: multiple targets given")
				return 1
			}
			cfg.target = args[i]
		}
	}
	if cfg.target == "" {
		fmt.Fprintln(os.Stderr, "loreline run: no story given")
		return 1
	}

	scriptPath := cfg.target
	title := cfg.target
	if strings.HasSuffix(cfg.target, ".yml") || strings.HasSuffix(cfg.target, ".yaml") {
		manifest, err := driver.LoadManifest(cfg.target)
		if err != nil {
			fmt.Fprintf(os.Stderr, "loreline run: %v\n", err)
			return 1
		}
		scriptPath = manifest.ScriptPath()
		if manifest.Name != "" {
			title = manifest.Name
		}
		if cfg.beat == "" {
			cfg.beat = manifest.Beat
		}
		if cfg.lang == "" {
			cfg.lang = manifest.Language
		}
		cfg.strict = cfg.strict || manifest.Strict
	}

	story, err := driver.LoadStory(scriptPath)
	if err != nil {
		reportParseError(scriptPath, err)
		return 1
	}

	var table *translation.Table
	if cfg.lang != "" {
		table = story.Translations[cfg.lang]
		if table == nil {
			log.Warn().Str("lang", cfg.lang).Msg("no translation found, using original text")
		}
	}

	sink := &eventSink{}
	opts := interpreter.Options{StrictAccess: cfg.strict, Translations: table}

	var in *interpreter.Interpreter
	if cfg.loadPath != "" {
		data, err := os.ReadFile(cfg.loadPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "loreline run: %v\n", err)
			return 1
		}
		snap, err := snapshot.Decode(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "loreline run: %v\n", err)
			return 1
		}
		in, err = interpreter.Resume(story.Script, sink.handlers(), snap, cfg.beat, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "loreline run: %v\n", err)
			return 1
		}
	} else {
		in, err = interpreter.Play(story.Script, sink.handlers(), cfg.beat, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "loreline run: %v\n", err)
			return 1
		}
	}

	model := newPlayerModel(title, in, story, sink, cfg.savePath)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "loreline run: %v\n", err)
		return 1
	}
	return 0
}

// eventSink captures the interpreter's pending event between key presses.
// The handlers never advance by themselves; the player decides when.
type eventSink struct {
	dialogue *interpreter.DialogueEvent
	advance  *interpreter.Advance
	choice   *interpreter.ChoiceEvent
	sel      *interpreter.Select
	finished bool
}

func (s *eventSink) handlers() interpreter.Handlers {
	return interpreter.Handlers{
		Dialogue: func(_ *interpreter.Interpreter, ev interpreter.DialogueEvent, adv *interpreter.Advance) {
			s.dialogue, s.advance = &ev, adv
		},
		Choice: func(_ *interpreter.Interpreter, ev interpreter.ChoiceEvent, sel *interpreter.Select) {
			s.choice, s.sel = &ev, sel
		},
		Finish: func(*interpreter.Interpreter) {
			s.finished = true
		},
	}
}

func (s *eventSink) clear() {
	s.dialogue, s.advance = nil, nil
	s.choice, s.sel = nil, nil
}
