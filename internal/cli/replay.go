package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/MomoChenisMe/xyflow-sub001/pkg/engine"
	xerrors "github.com/MomoChenisMe/xyflow-sub001/pkg/errors"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/interaction"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/pipeline"
)

// =============================================================================
// Gesture Scripts
// =============================================================================

// Step actions.
const (
	actionDown     = "down"
	actionMove     = "move"
	actionUp       = "up"
	actionCancel   = "cancel"
	actionClick    = "click"
	actionDrag     = "drag"
	actionWheel    = "wheel"
	actionDblClick = "dblclick"
	actionKey      = "key"
	actionPan      = "pan"
	actionFit      = "fit"
	actionZoomIn   = "zoom_in"
	actionZoomOut  = "zoom_out"
)

// replayScript is a TOML list of input events in container pixels:
//
//	width = 800
//	height = 600
//	fit = true
//
//	[[step]]
//	action = "drag"
//	x = 120
//	y = 40
//	to_x = 300
//	to_y = 40
//
//	[[step]]
//	action = "key"
//	key = "Delete"
type replayScript struct {
	Width  float64      `toml:"width"`
	Height float64      `toml:"height"`
	Fit    bool         `toml:"fit"`
	Steps  []replayStep `toml:"step"`
}

type replayStep struct {
	Action string  `toml:"action"`
	X      float64 `toml:"x"`
	Y      float64 `toml:"y"`
	ToX    float64 `toml:"to_x"`
	ToY    float64 `toml:"to_y"`
	DX     float64 `toml:"dx"`
	DY     float64 `toml:"dy"`
	Button string  `toml:"button"` // primary (default), middle, secondary
	Key    string  `toml:"key"`
	Shift  bool    `toml:"shift"`
	Ctrl   bool    `toml:"ctrl"`
	Meta   bool    `toml:"meta"`
	Alt    bool    `toml:"alt"`
}

// loadReplayScript decodes a script file, rejecting unknown keys.
func loadReplayScript(path string) (replayScript, error) {
	var s replayScript
	md, err := toml.DecodeFile(path, &s)
	if err != nil {
		return replayScript{}, xerrors.Wrap(xerrors.ErrCodeInvalidInput, err, "parse script %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return replayScript{}, xerrors.New(xerrors.ErrCodeInvalidInput,
			"unknown keys in script %s: %s", path, strings.Join(keys, ", "))
	}
	for i, st := range s.Steps {
		if err := st.validate(); err != nil {
			return replayScript{}, xerrors.Wrap(xerrors.ErrCodeInvalidInput, err, "step %d", i+1)
		}
	}
	return s, nil
}

func (st replayStep) validate() error {
	switch st.Action {
	case actionDown, actionMove, actionUp, actionCancel, actionClick, actionDrag,
		actionWheel, actionDblClick, actionPan, actionFit, actionZoomIn, actionZoomOut:
	case actionKey:
		if st.Key == "" {
			return fmt.Errorf("key step without a key")
		}
	default:
		return fmt.Errorf("unknown action %q", st.Action)
	}
	if _, err := parseButton(st.Button); err != nil {
		return err
	}
	return nil
}

func parseButton(s string) (interaction.Button, error) {
	switch strings.ToLower(s) {
	case "", "primary", "left":
		return interaction.ButtonPrimary, nil
	case "middle":
		return interaction.ButtonMiddle, nil
	case "secondary", "right":
		return interaction.ButtonSecondary, nil
	}
	return 0, fmt.Errorf("unknown button %q", s)
}

func (st replayStep) modifiers() interaction.Modifiers {
	return interaction.Modifiers{Shift: st.Shift, Ctrl: st.Ctrl, Meta: st.Meta, Alt: st.Alt}
}

func (st replayStep) pointer(x, y float64) interaction.PointerEvent {
	b, _ := parseButton(st.Button)
	return interaction.PointerEvent{X: x, Y: y, Button: b, Modifiers: st.modifiers()}
}

// apply feeds one step to the instance.
func (st replayStep) apply(inst *engine.Instance) {
	m := inst.Machine()
	switch st.Action {
	case actionDown:
		m.PointerDown(st.pointer(st.X, st.Y))
	case actionMove:
		m.PointerMove(st.pointer(st.X, st.Y))
	case actionUp:
		m.PointerUp(st.pointer(st.X, st.Y))
	case actionCancel:
		m.PointerCancel(st.pointer(st.X, st.Y))
	case actionClick:
		m.PointerDown(st.pointer(st.X, st.Y))
		m.PointerUp(st.pointer(st.X, st.Y))
	case actionDrag:
		m.PointerDown(st.pointer(st.X, st.Y))
		m.PointerMove(st.pointer((st.X+st.ToX)/2, (st.Y+st.ToY)/2))
		m.PointerMove(st.pointer(st.ToX, st.ToY))
		m.PointerUp(st.pointer(st.ToX, st.ToY))
	case actionWheel:
		m.Wheel(interaction.WheelEvent{X: st.X, Y: st.Y, DeltaX: st.DX, DeltaY: st.DY, Modifiers: st.modifiers()})
	case actionDblClick:
		m.DoubleClick(st.pointer(st.X, st.Y))
	case actionKey:
		m.KeyDown(interaction.KeyEvent{Key: st.Key, Modifiers: st.modifiers()})
	case actionPan:
		inst.PanBy(st.DX, st.DY)
	case actionFit:
		inst.FitView()
	case actionZoomIn:
		inst.ZoomIn()
	case actionZoomOut:
		inst.ZoomOut()
	}
}

// replayResult summarizes a replay.
type replayResult struct {
	Events map[engine.EventKind]int
	State  interaction.State
}

// replay applies every step of s to inst and counts the events it caused.
func replay(inst *engine.Instance, s replayScript) replayResult {
	res := replayResult{Events: make(map[engine.EventKind]int)}
	unsubscribe := inst.Subscribe(func(ev engine.Event) { res.Events[ev.Kind]++ })
	defer unsubscribe()

	for _, st := range s.Steps {
		st.apply(inst)
	}
	res.State = inst.Machine().State()
	return res
}

// =============================================================================
// Command
// =============================================================================

// replayCommand creates the replay command.
func (c *CLI) replayCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "replay [flow.json] [script.toml]",
		Short: "Apply a scripted gesture sequence to a flow and write the result",
		Long: `Replay pointer, wheel and key input against a flow document.

The script is a TOML file of [[step]] tables. Each step has an action (down,
move, up, cancel, click, drag, wheel, dblclick, key, pan, fit, zoom_in,
zoom_out) and the coordinates, deltas, key and modifiers it needs. Pointer
coordinates are container pixels; nodes, handles and edges under the pointer
are hit-tested exactly as in an interactive session.

The resulting flow document, including the final viewport and selection, is
written to --output (default: <input>.replayed.json).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runReplay(cmd.Context(), args[0], args[1], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.replayed.json, - for stdout)")

	return cmd
}

func (c *CLI) runReplay(ctx context.Context, input, scriptPath, output string) error {
	logger := loggerFromContext(ctx)

	doc, err := pipeline.Load(ctx, input)
	if err != nil {
		return err
	}
	script, err := loadReplayScript(scriptPath)
	if err != nil {
		return err
	}

	cfg := c.settings()
	if script.Width <= 0 {
		script.Width = cfg.Viewport.Width
	}
	if script.Height <= 0 {
		script.Height = cfg.Viewport.Height
	}

	eo := c.engineOptions()
	eo.FitViewOnInit = script.Fit
	inst := engine.New(eo)
	inst.FromObject(doc)
	inst.Measure(pipeline.HeadlessMeasurement(doc, eo, script.Width, script.Height))

	prog := newProgress(logger)
	res := replay(inst, script)
	prog.done(fmt.Sprintf("Replayed %d steps", len(script.Steps)))

	outputPath := output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(input, filepath.Ext(input)) + ".replayed.json"
	}
	if err := writeDocument(outputPath, inst.ToObject()); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}
	if outputPath == stdoutPath {
		return nil
	}

	printSuccess("Replay complete")
	printFile(outputPath)
	printKeyValue("Viewport", formatViewport(inst.Viewport()))
	printKeyValue("Selected", fmt.Sprintf("%d nodes, %d edges", len(inst.SelectedNodes()), len(inst.SelectedEdges())))
	printKeyValue("Events", formatEventCounts(res.Events))
	if res.State != interaction.Idle {
		printWarning("script ended mid-gesture (%s)", res.State)
	}
	return nil
}

func formatEventCounts(counts map[engine.EventKind]int) string {
	kinds := []engine.EventKind{
		engine.EventNodes, engine.EventEdges, engine.EventSelection, engine.EventViewport, engine.EventConnection,
	}
	var parts []string
	for _, k := range kinds {
		if n := counts[k]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, k))
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}
