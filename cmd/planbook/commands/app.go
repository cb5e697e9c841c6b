package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/valksor/go-planbook/internal/actions"
	"github.com/valksor/go-planbook/internal/config"
	"github.com/valksor/go-planbook/internal/events"
	"github.com/valksor/go-planbook/internal/log"
	"github.com/valksor/go-planbook/internal/session"
	"github.com/valksor/go-planbook/internal/storage"
	"github.com/valksor/go-planbook/internal/ui"
)

// EnvSession selects the session id when no flag is given.
const EnvSession = "PLANBOOK_SESSION"

// newUI builds the user interface for a command. Tests replace it.
var newUI = func(cmd *cobra.Command) ui.UI {
	if !noInput {
		t := ui.NewTerminal(ui.WithInput(cmd.InOrStdin()), ui.WithOutput(cmd.OutOrStdout()))
		if t.Interactive() {
			return t
		}
	}
	return ui.NewHeadless(cmd.ErrOrStderr())
}

// app wires the store, engine and session coordinator for one invocation.
type app struct {
	out   io.Writer
	store *storage.Store
	bus   *events.Bus
	eng   *actions.Engine
	coord *session.Coordinator
	ui    ui.UI

	prefs      *config.Preferences
	prefsDirty bool
}

type appOptions struct {
	// indicators receive status and panel updates; nil discards them.
	indicators session.Indicators
}

func openApp(cmd *cobra.Command, opts ...func(*appOptions)) (*app, error) {
	var o appOptions
	for _, opt := range opts {
		opt(&o)
	}

	prefs, err := config.LoadPreferences(workDir)
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}

	a := &app{
		out:   cmd.OutOrStdout(),
		bus:   events.NewBus(),
		ui:    newUI(cmd),
		prefs: prefs,
	}

	sessionID := a.resolveSessionID()

	policy, err := session.LoadPolicy(cfg.ResolvePolicyFile(workDir))
	if err != nil {
		return nil, err
	}

	stale := storage.StaleReport
	if stealStale {
		stale = storage.StaleBreak
	}
	root := storage.ResolveRoot(workDir, os.Getenv)
	locks := storage.NewLockManager(storage.NewFileLeaser(root), storage.WithStalePolicy(stale))
	a.store = storage.OpenStore(root, storage.WithLockManager(locks))

	state, err := session.LoadState(session.StatePath(config.Dir(workDir), sessionID))
	if err != nil {
		log.Warn("ignoring unreadable session state", log.Err(err))
	}

	indicators := o.indicators
	if indicators == nil {
		indicators = ui.NewHeadless(io.Discard)
	}
	a.coord = session.NewCoordinator(a.store, sessionID,
		session.WithPolicy(policy),
		session.WithState(state),
		session.WithIndicators(indicators),
	)
	a.coord.Attach(a.bus)
	a.bus.SubscribeAll(func(e events.Event) {
		log.Debug("event", "type", string(e.Type), "data", e.Data)
	})

	a.eng = actions.NewEngine(a.store, actions.WithBus(a.bus))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a.coord.Refresh(ctx)
	return a, nil
}

func withIndicators(i session.Indicators) func(*appOptions) {
	return func(o *appOptions) { o.indicators = i }
}

// resolveSessionID picks the flag, then $PLANBOOK_SESSION, then config.yaml,
// then an id generated once per workspace.
func (a *app) resolveSessionID() string {
	for _, candidate := range []string{sessionArg, os.Getenv(EnvSession), cfg.SessionID, a.prefs.SessionID} {
		if candidate != "" {
			return candidate
		}
	}
	a.prefs.SessionID = uuid.NewString()
	a.prefsDirty = true
	log.Debug("generated session id", log.Session(a.prefs.SessionID))
	return a.prefs.SessionID
}

func (a *app) caller() actions.Caller {
	return a.coord.Caller(ui.ConfirmFunc(a.ui))
}

// do runs one action and remembers the plan it touched.
func (a *app) do(ctx context.Context, req actions.Request) (*actions.Result, error) {
	res, err := a.eng.Do(ctx, a.caller(), req)
	if err != nil {
		return nil, err
	}
	if res.Plan != nil && req.Action.Mutating() {
		if req.Action == actions.ActionDelete {
			a.prefs.ForgetPlan(res.Plan.ID)
		} else {
			a.prefs.AddRecentPlan(res.Plan.ID)
		}
		a.prefsDirty = true
	}
	return res, nil
}

// close persists the session state and preferences.
func (a *app) close() {
	a.coord.Detach()

	// Saved under the session in effect now; serve may have switched it.
	statePath := session.StatePath(config.Dir(workDir), a.coord.SessionID())
	if err := session.SaveState(statePath, a.coord.State()); err != nil {
		log.Warn("failed to save session state", log.Err(err))
	}
	if a.prefsDirty {
		if err := a.prefs.Save(); err != nil {
			log.Warn("failed to save preferences", log.Err(err))
		}
	}
}

// runWithApp opens the app, runs fn and closes the app.
func runWithApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error, opts ...func(*appOptions)) error {
	a, err := openApp(cmd, opts...)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(cmd.Context(), a)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// printf writes unless --quiet is set.
func printf(w io.Writer, format string, args ...any) {
	if quiet {
		return
	}
	_, _ = fmt.Fprintf(w, format, args...)
}

// jsonOutput reports whether results are printed as JSON, by flag or by the
// ui.format setting.
func jsonOutput(flag bool) bool {
	return flag || (cfg != nil && cfg.UI.Format == "json")
}
